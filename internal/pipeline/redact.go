package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/proposal-cli/internal/model"
)

const redactedPlaceholder = "[confidential]"

// RedactBudgetFigures removes the client's internal budget intelligence from
// client-facing text. Every known budget figure is scrubbed in its common
// renderings (plain, comma-grouped, $-prefixed, "$2.5M", "2.5 million"),
// along with the budget source citation. The justification builder and the
// document generators both run their output through this before returning
// it; prompt instructions alone are not trusted to keep figures out.
func RedactBudgetFigures(text string, budget *model.AdoptedBudgetData) string {
	if budget == nil {
		return text
	}
	for _, v := range []*float64{
		budget.TotalAnnualBudget,
		budget.RelevantDepartmentBudget,
		budget.CapitalProgramBudget,
	} {
		if v == nil {
			continue
		}
		text = figurePattern(*v).ReplaceAllString(text, redactedPlaceholder)
	}
	if budget.BudgetSource != "" {
		text = sourcePattern(budget.BudgetSource).ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}

// figurePattern matches one budget figure in its common textual renderings.
func figurePattern(v float64) *regexp.Regexp {
	plain := strconv.FormatFloat(v, 'f', -1, 64)
	alts := []string{
		regexp.QuoteMeta(groupThousands(plain)),
		regexp.QuoteMeta(plain),
	}
	if v >= 1_000_000 {
		millions := strconv.FormatFloat(v/1_000_000, 'f', -1, 64)
		alts = append(alts,
			regexp.QuoteMeta(millions)+`\s?(?:m\b|mm\b|million)`,
		)
	}
	return regexp.MustCompile(`(?i)\$?\b(?:` + strings.Join(alts, "|") + `)\b`)
}

func sourcePattern(source string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(source))
}

// groupThousands inserts comma separators into the integer part of a
// decimal string.
func groupThousands(s string) string {
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	n := len(intPart)
	for i, r := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
