package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ModeEmit      = "emit"
	ModeAggregate = "aggregate"
)

type MacroEntry struct {
	Name  string
	Value any
}

type MacroList []MacroEntry

// UnmarshalYAML implements custom YAML unmarshaling that preserves macro definition order
func (ml *MacroList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("macros must be a mapping")
	}

	// yaml.Node.Content for a mapping contains alternating key/value nodes
	entries := make([]MacroEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]

		var name string
		if err := keyNode.Decode(&name); err != nil {
			return fmt.Errorf("failed to decode macro name: %w", err)
		}

		var val any
		if err := valueNode.Decode(&val); err != nil {
			return fmt.Errorf("failed to decode macro value for '%s': %w", name, err)
		}

		entries = append(entries, MacroEntry{Name: name, Value: val})
	}

	*ml = entries
	return nil
}

// Get retrieves a macro value by name
func (ml MacroList) Get(name string) (any, bool) {
	for _, entry := range ml {
		if entry.Name == name {
			return entry.Value, true
		}
	}
	return nil, false
}

var (
	macroNameRegex    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	macroPatternRegex = regexp.MustCompile(`\$\{([a-zA-Z0-9_-]+)\}`)
)

type TracingConfig struct {
	// OTLP/HTTP endpoint (host:port), empty disables span export
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"serviceName"`
}

type ScenarioConfig struct {
	Name       string    `yaml:"name"`
	Mode       string    `yaml:"mode"`
	Arg        int       `yaml:"arg"`
	Iterations int       `yaml:"iterations"`
	Callbacks  []string  `yaml:"callbacks"`
	Locked     []int     `yaml:"locked"`
	Owned      []int     `yaml:"owned"`
	CloseSlots bool      `yaml:"closeSlots"`
	LockSignal bool      `yaml:"lockSignal"`
	Macros     MacroList `yaml:"macros"`

	// parsed from Callbacks after macro substitution
	Ops []Op `yaml:"-"`
}

// set default values for ScenarioConfig
func (c *ScenarioConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawScenarioConfig ScenarioConfig
	defaults := rawScenarioConfig{
		Mode:      ModeEmit,
		Callbacks: []string{},
		Locked:    []int{},
		Owned:     []int{},
	}

	if err := value.Decode(&defaults); err != nil {
		return err
	}

	*c = ScenarioConfig(defaults)
	return nil
}

type Config struct {
	LogLevel      string           `yaml:"logLevel"`
	LogTimeFormat string           `yaml:"logTimeFormat"`
	Iterations    int              `yaml:"iterations"`
	Tracing       TracingConfig    `yaml:"tracing"`
	Macros        MacroList        `yaml:"macros"`
	Scenarios     []ScenarioConfig `yaml:"scenarios"`
}

// FindScenario returns the scenario with the given name.
func (c *Config) FindScenario(name string) (ScenarioConfig, bool) {
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return ScenarioConfig{}, false
}

func LoadConfig(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

func LoadConfigFromReader(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	// default configuration values
	config := Config{
		LogLevel:      "info",
		LogTimeFormat: "",
		Iterations:    1000,
		Tracing: TracingConfig{
			ServiceName: "sigbench",
		},
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return Config{}, err
	}

	if config.Iterations < 1 {
		return Config{}, fmt.Errorf("iterations must be greater than 0")
	}

	if len(config.Scenarios) == 0 {
		return Config{}, fmt.Errorf("no scenarios defined")
	}

	for _, macro := range config.Macros {
		if err = validateMacro(macro.Name, macro.Value); err != nil {
			return Config{}, err
		}
	}

	seen := make(map[string]bool, len(config.Scenarios))
	for i := range config.Scenarios {
		scenario := &config.Scenarios[i]

		if scenario.Name == "" {
			return Config{}, fmt.Errorf("scenario #%d: name is required", i+1)
		}
		if seen[scenario.Name] {
			return Config{}, fmt.Errorf("duplicate scenario name: %s", scenario.Name)
		}
		seen[scenario.Name] = true

		if err := config.prepareScenario(scenario); err != nil {
			return Config{}, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	return config, nil
}

func (c *Config) prepareScenario(s *ScenarioConfig) error {
	switch s.Mode {
	case ModeEmit, ModeAggregate:
	default:
		return fmt.Errorf("unknown mode '%s', must be %s or %s", s.Mode, ModeEmit, ModeAggregate)
	}

	if s.Iterations == 0 {
		s.Iterations = c.Iterations
	} else if s.Iterations < 0 {
		return fmt.Errorf("iterations must be greater than 0")
	}

	if len(s.Callbacks) == 0 {
		return fmt.Errorf("at least one callback is required")
	}

	for _, macro := range s.Macros {
		if err := validateMacro(macro.Name, macro.Value); err != nil {
			return err
		}
	}

	// Merge global and scenario macros. Scenario macros take precedence
	merged := make(MacroList, 0, len(c.Macros)+len(s.Macros)+1)
	merged = append(merged, MacroEntry{Name: "SCENARIO", Value: s.Name})
	merged = append(merged, c.Macros...)
	for _, entry := range s.Macros {
		idx := slices.IndexFunc(merged, func(m MacroEntry) bool { return m.Name == entry.Name })
		if idx >= 0 {
			merged[idx] = entry
		} else {
			merged = append(merged, entry)
		}
	}

	s.Ops = make([]Op, 0, len(s.Callbacks))
	for i, spec := range s.Callbacks {
		// Substitute in reverse order (LIFO) so later macros can reference earlier ones
		for j := len(merged) - 1; j >= 0; j-- {
			entry := merged[j]
			spec = strings.ReplaceAll(spec, fmt.Sprintf("${%s}", entry.Name), fmt.Sprintf("%v", entry.Value))
		}
		if matches := macroPatternRegex.FindAllStringSubmatch(spec, -1); len(matches) > 0 {
			return fmt.Errorf("callback #%d: unknown macro '${%s}'", i, matches[0][1])
		}
		s.Callbacks[i] = spec

		op, err := ParseOp(spec)
		if err != nil {
			return fmt.Errorf("callback #%d: %w", i, err)
		}
		s.Ops = append(s.Ops, op)
	}

	if err := checkIndexes("locked", s.Locked, len(s.Ops)); err != nil {
		return err
	}
	if err := checkIndexes("owned", s.Owned, len(s.Ops)); err != nil {
		return err
	}
	return nil
}

func checkIndexes(field string, indexes []int, n int) error {
	seen := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%s index %d out of range, %d callbacks defined", field, idx, n)
		}
		if seen[idx] {
			return fmt.Errorf("%s index %d listed twice", field, idx)
		}
		seen[idx] = true
	}
	return nil
}

// validateMacro validates macro name and value constraints
func validateMacro(name string, value any) error {
	if len(name) >= 64 {
		return fmt.Errorf("macro name '%s' exceeds maximum length of 63 characters", name)
	}
	if !macroNameRegex.MatchString(name) {
		return fmt.Errorf("macro name '%s' contains invalid characters, must match pattern ^[a-zA-Z0-9_-]+$", name)
	}

	// Validate that value is a scalar type
	switch v := value.(type) {
	case string:
		if len(v) >= 1024 {
			return fmt.Errorf("macro value for '%s' exceeds maximum length of 1024 characters", name)
		}
		// Check for self-reference
		macroSlug := fmt.Sprintf("${%s}", name)
		if strings.Contains(v, macroSlug) {
			return fmt.Errorf("macro '%s' contains self-reference", name)
		}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool:
		// These types are allowed
	default:
		return fmt.Errorf("macro '%s' has invalid type %T, must be a scalar type (string, int, float, or bool)", name, value)
	}

	if name == "SCENARIO" {
		return fmt.Errorf("macro name '%s' is reserved", name)
	}

	return nil
}
