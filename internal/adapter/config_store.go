package adapter

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	m "testgate.dev/pkg/testgate/internal/model"
)

// ConfigStore loads and validates the declarative modules document.
type ConfigStore interface {
	LoadModules(path m.Path) ([]m.Module, error)
}

// modulesDocument is the root of the modules configuration file.
type modulesDocument struct {
	Modules []m.ModuleConfig `yaml:"modules" validate:"required,min=1,dive"`
}

// YAMLConfigStore reads the modules document from a YAML file and compiles
// it into immutable module definitions.
type YAMLConfigStore struct {
	validate *validator.Validate
}

// NewYAMLConfigStore constructs a YAMLConfigStore.
func NewYAMLConfigStore() *YAMLConfigStore {
	return &YAMLConfigStore{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoadModules reads, validates and compiles the modules document. Every
// schema or pattern problem surfaces as a ConfigError so the run aborts
// before any module is evaluated.
func (s *YAMLConfigStore) LoadModules(path m.Path) ([]m.Module, error) {
	raw, err := os.ReadFile(string(path))
	if err != nil {
		return nil, &m.ConfigError{Reason: fmt.Sprintf("cannot read modules file %q", path), Err: err}
	}

	var doc modulesDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &m.ConfigError{Reason: fmt.Sprintf("cannot parse modules file %q", path), Err: err}
	}

	if err := s.validate.Struct(doc); err != nil {
		return nil, &m.ConfigError{Reason: "modules document failed validation", Err: err}
	}

	modules := make([]m.Module, 0, len(doc.Modules))
	seen := make(map[string]bool, len(doc.Modules))

	for _, cfg := range doc.Modules {
		if seen[cfg.Name] {
			return nil, &m.ConfigError{Reason: fmt.Sprintf("duplicate module name %q", cfg.Name)}
		}

		seen[cfg.Name] = true

		module, err := compileModule(cfg)
		if err != nil {
			return nil, err
		}

		modules = append(modules, module)
	}

	return modules, nil
}

func compileModule(cfg m.ModuleConfig) (m.Module, error) {
	if !strings.Contains(cfg.RunNewTestsCommand, m.ScopePlaceholder) {
		return m.Module{}, &m.ConfigError{
			Reason: fmt.Sprintf("module %q: run_new_tests_command is missing the %s placeholder", cfg.Name, m.ScopePlaceholder),
		}
	}

	codeRules, err := compileRules(cfg.Name, "code_patterns", cfg.CodePatterns)
	if err != nil {
		return m.Module{}, err
	}

	testRules, err := compileRules(cfg.Name, "test_patterns", cfg.TestPatterns)
	if err != nil {
		return m.Module{}, err
	}

	var testName *regexp.Regexp

	if cfg.TestNamePattern != "" {
		testName, err = regexp.Compile(cfg.TestNamePattern)
		if err != nil {
			return m.Module{}, &m.ConfigError{
				Reason: fmt.Sprintf("module %q: invalid test_name_pattern", cfg.Name),
				Err:    err,
			}
		}
	}

	return m.Module{
		Name:        cfg.Name,
		CodeRules:   codeRules,
		TestRules:   testRules,
		Setup:       cfg.SetupCommands,
		RunNewTests: cfg.RunNewTestsCommand,
		RunAllTests: cfg.RunAllTestsCommand,
		TestName:    testName,
	}, nil
}

// compileRules turns the configured glob list into ordered include/exclude
// rules. A leading '!' marks an exclusion.
func compileRules(module, field string, patterns []string) ([]m.PatternRule, error) {
	rules := make([]m.PatternRule, 0, len(patterns))

	for _, pattern := range patterns {
		rule := m.PatternRule{Glob: pattern}
		if strings.HasPrefix(pattern, "!") {
			rule.Exclude = true
			rule.Glob = pattern[1:]
		}

		if rule.Glob == "" || !doublestar.ValidatePattern(rule.Glob) {
			return nil, &m.ConfigError{
				Reason: fmt.Sprintf("module %q: malformed glob %q in %s", module, pattern, field),
			}
		}

		rules = append(rules, rule)
	}

	return rules, nil
}
