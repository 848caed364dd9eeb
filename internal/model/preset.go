package model

import "strings"

// Preset is a named set of search settings.
type Preset struct {
	Name        string       `json:"name" toml:"name"`
	Description string       `json:"description" toml:"description"`
	Settings    PackSettings `json:"settings" toml:"settings"`
	IsBuiltIn   bool         `json:"-" toml:"-"`
}

// BuiltInPresets returns the presets that ship with the tool.
func BuiltInPresets() []Preset {
	return []Preset{
		{
			Name:        "default",
			Description: "10px height steps, no height bounds",
			Settings:    DefaultSettings(),
			IsBuiltIn:   true,
		},
		{
			Name:        "thorough",
			Description: "Try every height",
			Settings:    PackSettings{HeightStep: 1, Workers: 4},
			IsBuiltIn:   true,
		},
		{
			Name:        "quick",
			Description: "Coarse 32px height steps",
			Settings:    PackSettings{HeightStep: 32, Workers: 1},
			IsBuiltIn:   true,
		},
		{
			Name:        "texture-2048",
			Description: "Keep the sheet within a 2048px texture height",
			Settings:    PackSettings{MaxHeight: 2048, HeightStep: DefaultHeightStep, Workers: 4},
			IsBuiltIn:   true,
		},
	}
}

// FindPreset looks name up case-insensitively, custom presets first.
func FindPreset(name string, custom []Preset) (Preset, bool) {
	for _, list := range [][]Preset{custom, BuiltInPresets()} {
		for _, p := range list {
			if strings.EqualFold(p.Name, name) {
				return p, true
			}
		}
	}
	return Preset{}, false
}
