package pipeline

import "strings"

// Static agency knowledge base interpolated into generation prompts. The
// generators only ever present facts from these sections; the system prompt
// forbids the model from inventing names, clients, or metrics beyond them.

const companyOverview = `Sells Group is a full-service digital agency serving government, enterprise, and commercial clients for over a decade. The firm specializes in accessible, standards-compliant web platforms and measurable digital marketing programs, delivered by in-house strategy, design, engineering, and analytics teams.`

const serviceCapabilities = `Core service lines:
- Web Development: responsive sites and portals, CMS implementations, custom applications, WCAG 2.1 AA accessibility remediation
- E-Commerce: storefront builds, payment and fulfillment integrations, catalog migrations
- Digital Marketing: paid media management, conversion optimization, marketing automation
- SEO: technical audits, content strategy, local and national search programs
- Branding: identity systems, messaging frameworks, style guides
- Consulting: digital strategy, platform selection, analytics and reporting programs`

const pastProjects = `Representative engagements:
- Municipal services portal consolidating permit, payment, and records workflows for a mid-size city government, delivered on schedule with WCAG 2.1 AA conformance
- Statewide tourism marketing program combining site rebuild, SEO, and seasonal paid-media campaigns
- B2B manufacturer e-commerce replatform with ERP integration and dealer-specific pricing
- Regional healthcare network brand refresh and patient-portal content strategy`

const methodology = `Delivery methodology: discovery and requirements validation, followed by iterative design and build sprints with client review gates, structured QA including accessibility and performance audits, and a managed launch with a post-launch support window. Every engagement is priced on deliverable-based milestones with a named project lead and weekly status reporting.`

const techStack = `Technology practice: modern web frameworks and headless CMS platforms, cloud hosting with infrastructure as code, automated CI/CD pipelines, analytics instrumentation, and security review as part of the standard QA gate.`

// generationSystemPrompt is the strict instruction set shared by the
// document generators.
const generationSystemPrompt = `You are a senior proposal writer at a digital agency. Write polished, professional proposal content in markdown.

Rules:
- Use ONLY the facts supplied in the prompt. Never invent client names, team member names, past projects, statistics, or metrics.
- Never mention the client's internal budget figures or budget documents.
- Write in confident, plain business prose. No filler, no placeholder text.
- Address every requirement stated in the solicitation summary.`

// knowledgeBase concatenates the static sections for prompt interpolation.
func knowledgeBase() string {
	return strings.Join([]string{
		"## About the Firm\n" + companyOverview,
		"## Service Capabilities\n" + serviceCapabilities,
		"## Past Performance\n" + pastProjects,
		"## Methodology\n" + methodology,
		"## Technology Practice\n" + techStack,
	}, "\n\n")
}
