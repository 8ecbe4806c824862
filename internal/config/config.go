package config

import (
	"fmt"
	"os"

	"github.com/san-kum/hydrosim/internal/engine"
	"github.com/san-kum/hydrosim/internal/gen"
	"gopkg.in/yaml.v3"
)

const (
	DefaultExecutor = "chunked"
	DefaultSteps    = 1000
	DefaultCases    = 100
	DefaultSeed     = 42
	DefaultScale    = 1.0
)

type Config struct {
	Name     string        `yaml:"name"`
	Executor string        `yaml:"executor"`
	Workers  int           `yaml:"workers"`
	Steps    int           `yaml:"steps"`
	Cases    int           `yaml:"cases"`
	Seed     int64         `yaml:"seed"`
	Scale    float64       `yaml:"scale"`
	Params   []ParamConfig `yaml:"params,omitempty"`
	Input    []float64     `yaml:"input,omitempty"`
}

// ParamConfig uses pointers so a record that omits a coefficient can be told
// apart from one that sets it to zero.
type ParamConfig struct {
	Alpha *float64 `yaml:"alpha"`
	Beta  *float64 `yaml:"beta"`
	Gamma *float64 `yaml:"gamma"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "reservoir",
		Executor: DefaultExecutor,
		Steps:    DefaultSteps,
		Cases:    DefaultCases,
		Seed:     DefaultSeed,
		Scale:    DefaultScale,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file onto cfg; keys absent from the file keep their values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", c.Steps)
	}
	if c.Cases < 0 {
		return fmt.Errorf("cases must be non-negative, got %d", c.Cases)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if _, err := engine.NewExecutor(c.Executor, c.Workers); err != nil {
		return err
	}
	return nil
}

// ParameterSet returns the explicit cases when any are configured, otherwise
// Cases generated from g.
func (c *Config) ParameterSet(g *gen.Generator) (engine.ParameterSet, error) {
	if len(c.Params) == 0 {
		return g.Parameters(c.Cases), nil
	}

	records := make([][]float64, len(c.Params))
	for i, p := range c.Params {
		rec := make([]float64, 0, 3)
		for _, v := range []*float64{p.Alpha, p.Beta, p.Gamma} {
			if v != nil {
				rec = append(rec, *v)
			}
		}
		records[i] = rec
	}
	return engine.NewParameterSet(records)
}

// InputSeries returns the explicit input when configured, otherwise Steps
// values generated from g.
func (c *Config) InputSeries(g *gen.Generator) engine.InputSeries {
	if len(c.Input) > 0 {
		in := make(engine.InputSeries, len(c.Input))
		copy(in, c.Input)
		return in
	}
	return g.Precipitation(c.Steps, c.Scale)
}

func (c *Config) NewExecutor() (engine.Executor, error) {
	return engine.NewExecutor(c.Executor, c.Workers)
}
