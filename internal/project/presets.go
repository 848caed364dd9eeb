package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/spritepack/internal/model"
)

// DefaultPresetsPath returns the default file path for custom presets.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.json")
}

// SaveCustomPresets saves custom presets to a JSON file.
func SaveCustomPresets(path string, presets []model.Preset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomPresets loads custom presets from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomPresets(path string) ([]model.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Preset{}, nil
		}
		return nil, err
	}

	var presets []model.Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	if presets == nil {
		presets = []model.Preset{}
	}
	return presets, nil
}

// UpsertPreset replaces the custom preset with the same name or appends it.
func UpsertPreset(presets []model.Preset, p model.Preset) []model.Preset {
	p.IsBuiltIn = false
	for i := range presets {
		if presets[i].Name == p.Name {
			presets[i] = p
			return presets
		}
	}
	return append(presets, p)
}

// ExportPreset exports a single preset to a JSON file (for sharing).
func ExportPreset(path string, preset model.Preset) error {
	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportPreset imports a single preset from a JSON file.
func ImportPreset(path string) (model.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Preset{}, err
	}

	var preset model.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return model.Preset{}, err
	}

	if preset.Name == "" {
		return model.Preset{}, errors.New("imported preset has no name")
	}
	return preset, nil
}
