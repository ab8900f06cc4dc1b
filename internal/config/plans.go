package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var defaultPlansYAML []byte

// PlanTier is one entry of the public pricing catalog.
type PlanTier struct {
	ID       string   `yaml:"id" json:"id"`
	Label    string   `yaml:"label" json:"label"`
	Price    int      `yaml:"price" json:"price"`
	Credits  int      `yaml:"credits" json:"credits"`
	Daily    bool     `yaml:"daily" json:"daily"`
	Features []string `yaml:"features" json:"features,omitempty"`
}

// PaymentInstructions describe the manual payment channel users pay through before appealing.
type PaymentInstructions struct {
	Method       string `yaml:"method" json:"method"`
	Account      string `yaml:"account" json:"account"`
	Instructions string `yaml:"instructions" json:"instructions"`
}

// PlanCatalog is the pricing page content.
type PlanCatalog struct {
	Currency string              `yaml:"currency" json:"currency"`
	Payment  PaymentInstructions `yaml:"payment" json:"payment"`
	Plans    []PlanTier          `yaml:"plans" json:"plans"`
}

// LoadPlanCatalog reads the catalog from path, or the embedded default when path is empty.
func LoadPlanCatalog(path string) (*PlanCatalog, error) {
	data := defaultPlansYAML
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read plans file %s: %w", path, err)
		}
		data = fileData
	}
	return ParsePlanCatalog(data)
}

// ParsePlanCatalog decodes and validates catalog YAML.
func ParsePlanCatalog(data []byte) (*PlanCatalog, error) {
	var catalog PlanCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse plans: %w", err)
	}
	if len(catalog.Plans) == 0 {
		return nil, errors.New("plan catalog has no plans")
	}
	seen := make(map[string]bool, len(catalog.Plans))
	for _, p := range catalog.Plans {
		if p.ID == "" {
			return nil, errors.New("plan catalog entry without id")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate plan id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return &catalog, nil
}

// Tier returns the catalog entry with the given id.
func (c *PlanCatalog) Tier(id string) (PlanTier, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return PlanTier{}, false
}
