package config

import "sort"

var Presets = map[string]*Config{
	"notebook": {
		Name: "notebook", Executor: "chunked", Steps: 1000, Cases: 1000, Seed: 42, Scale: 1.0,
	},
	"small": {
		Name: "small", Executor: "sequential", Steps: 100, Cases: 10, Seed: 1, Scale: 1.0,
	},
	"wide": {
		Name: "wide", Executor: "pool", Steps: 365, Cases: 20000, Seed: 7, Scale: 5.0,
	},
}

// GetPreset returns a copy so callers may override fields freely.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
