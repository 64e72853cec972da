package template

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// SeedFile is the YAML document describing a template set. References
// between templates use codes, which become IDs when the set is built.
type SeedFile struct {
	ActivityTemplates    []ActivitySeed    `yaml:"activity_templates"`
	AcquisitionTemplates []AcquisitionSeed `yaml:"acquisition_templates"`
}

// RuleSeed is a date rule in seed form. When After is set the rule reads
// the Endpoint date of the template with that code; Milestone is kept as
// the fallback anchor.
type RuleSeed struct {
	Milestone string `yaml:"milestone"`
	After     string `yaml:"after,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Offset    int    `yaml:"offset"`
}

type ActivitySeed struct {
	Code     string   `yaml:"code"`
	Sequence int      `yaml:"sequence"`
	Phase    string   `yaml:"phase"`
	Name     string   `yaml:"name"`
	Start    RuleSeed `yaml:"start"`
	End      RuleSeed `yaml:"end"`
}

type AcquisitionSeed struct {
	Code        string   `yaml:"code"`
	Sequence    int      `yaml:"sequence"`
	Phase       string   `yaml:"phase"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Start       RuleSeed `yaml:"start"`
	End         RuleSeed `yaml:"end"`
	DependsOn   []string `yaml:"depends_on,omitempty"`
}

// ParseSeed decodes a seed document.
func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing template seed: %w", err)
	}
	return &seed, nil
}

// LoadDefaults returns the embedded standard template set.
func LoadDefaults() (*SeedFile, error) {
	return ParseSeed(defaultsYAML)
}
