package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/piwi3910/spritepack/internal/model"
)

// BackupVersion is written into every backup. Imports accept any backup
// with the same major version.
const BackupVersion = "2.0"

// ErrBackupVersion is returned when a backup was written by an incompatible
// release.
var ErrBackupVersion = errors.New("unsupported backup version")

// BackupData bundles the preferences and custom presets into one file.
type BackupData struct {
	Version   string          `json:"version" toml:"version"`
	CreatedAt string          `json:"created_at" toml:"created_at"`
	Config    model.AppConfig `json:"config" toml:"config"`
	Presets   []model.Preset  `json:"presets" toml:"presets"`

	// Dropped names the presets left out on import, with the reason.
	Dropped []string `json:"-" toml:"-"`
}

// ExportAllData writes config and presets to exportPath, as TOML when the
// path ends in .toml and as JSON otherwise.
func ExportAllData(exportPath string, config model.AppConfig, presets []model.Preset) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Presets:   presets,
	}

	var (
		data []byte
		err  error
	)
	if isTOML(exportPath) {
		data, err = toml.Marshal(backup)
	} else {
		data, err = json.MarshalIndent(backup, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup written by ExportAllData. Presets that are
// unnamed, reuse a built-in name or repeat an earlier name are dropped and
// listed in Dropped. The caller applies the result.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}

	var backup BackupData
	if isTOML(importPath) {
		err = toml.Unmarshal(data, &backup)
	} else {
		err = json.Unmarshal(data, &backup)
	}
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if major(backup.Version) != major(BackupVersion) {
		return BackupData{}, fmt.Errorf("%w %s (expected %s.x)", ErrBackupVersion, backup.Version, major(BackupVersion))
	}

	if backup.Config.RecentSources == nil {
		backup.Config.RecentSources = []string{}
	}
	if backup.Config.ExtraFormats == nil {
		backup.Config.ExtraFormats = []string{}
	}
	backup.Presets, backup.Dropped = sanitizePresets(backup.Presets)
	return backup, nil
}

func major(version string) string {
	v, _, _ := strings.Cut(version, ".")
	return v
}

func sanitizePresets(in []model.Preset) ([]model.Preset, []string) {
	kept := []model.Preset{}
	var dropped []string
	seen := map[string]bool{}
	for _, b := range model.BuiltInPresets() {
		seen[strings.ToLower(b.Name)] = true
	}
	for i, p := range in {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		switch {
		case key == "":
			dropped = append(dropped, fmt.Sprintf("preset %d: missing name", i+1))
		case seen[key]:
			dropped = append(dropped, fmt.Sprintf("preset %q: name already in use", p.Name))
		default:
			seen[key] = true
			kept = append(kept, p)
		}
	}
	return kept, dropped
}
