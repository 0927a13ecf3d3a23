package router

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"intentrouter/internal/types"
)

//go:embed scenarios.yaml
var defaultScenarios []byte

// Scenario is one entry of the equivalence corpus.
type Scenario struct {
	Name     string            `yaml:"name"`
	Intent   string            `yaml:"intent"`
	Entities map[string]string `yaml:"entities"`
	Source   string            `yaml:"source"`
	Expect   string            `yaml:"expect"` // accepted | rejected | missing(<field>)
	Tool     string            `yaml:"tool"`   // optional expected Native tool
}

// Payload builds the intent payload the scenario describes.
func (s Scenario) Payload() (types.IntentPayload, error) {
	var e types.Entities
	for name, value := range s.Entities {
		v := value
		switch name {
		case "topic":
			e.Topic = &v
		case "query":
			e.Query = &v
		case "location":
			e.Location = &v
		case "date":
			e.Date = &v
		case "date_end":
			e.DateEnd = &v
		case "recipient":
			e.Recipient = &v
		case "priority":
			e.Priority = &v
		case "weather_query":
			wq, ok := types.ParseWeatherQuery(v)
			if !ok {
				return types.IntentPayload{}, fmt.Errorf("scenario %q: invalid weather_query %q", s.Name, v)
			}
			e.WeatherQuery = &wq
		default:
			return types.IntentPayload{}, fmt.Errorf("scenario %q: unknown entity %q", s.Name, name)
		}
	}

	p := types.NewPayload(types.ParseIntentType(s.Intent), e)
	if s.Source != "" {
		p.Constraints.SourcePreference = types.ParseSourcePreference(s.Source)
	}
	return p, nil
}

// DefaultScenarios returns the built-in corpus.
func DefaultScenarios() ([]Scenario, error) {
	return ParseScenarios(defaultScenarios)
}

// LoadScenarios reads a YAML corpus from path, or the built-in corpus when path is empty.
func LoadScenarios(path string) ([]Scenario, error) {
	if path == "" {
		return DefaultScenarios()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario corpus: %w", err)
	}
	return ParseScenarios(data)
}

// ParseScenarios decodes a YAML list of scenarios.
func ParseScenarios(data []byte) ([]Scenario, error) {
	var scenarios []Scenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("failed to parse scenario corpus: %w", err)
	}
	for i, s := range scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("scenario %d has no name", i)
		}
	}
	return scenarios, nil
}
