package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/proposal-cli/internal/model"
)

// loadBid reads a bid request from a YAML or JSON file, chosen by extension.
func loadBid(path string) (model.BidRequest, error) {
	var bid model.BidRequest

	data, err := os.ReadFile(path)
	if err != nil {
		return bid, eris.Wrap(err, "read bid file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &bid); err != nil {
			return bid, eris.Wrap(err, "parse bid JSON")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &bid); err != nil {
			return bid, eris.Wrap(err, "parse bid YAML")
		}
	default:
		return bid, eris.Errorf("unsupported bid file extension: %s", filepath.Ext(path))
	}

	if bid.Title == "" && bid.Description == "" {
		return bid, eris.New("bid file has no title or description")
	}
	return bid, nil
}
