package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default search settings applied to every run
	DefaultMinHeight  int `json:"default_min_height" toml:"default_min_height"`
	DefaultMaxHeight  int `json:"default_max_height" toml:"default_max_height"`
	DefaultHeightStep int `json:"default_height_step" toml:"default_height_step"`
	DefaultWorkers    int `json:"default_workers" toml:"default_workers"`

	// Output preferences
	StagingDir    string   `json:"staging_dir" toml:"staging_dir"`       // "" = system temp directory
	KeepStaging   bool     `json:"keep_staging" toml:"keep_staging"`     // Leave cropped frames on disk
	ExtraFormats  []string `json:"extra_formats" toml:"extra_formats"`   // "xlsx", "pdf", "cards", "dxf"
	RecentSources []string `json:"recent_sources" toml:"recent_sources"` // Recently packed sequences
	Theme         string   `json:"theme" toml:"theme"`                   // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultMinHeight:  defaults.MinHeight,
		DefaultMaxHeight:  defaults.MaxHeight,
		DefaultHeightStep: defaults.HeightStep,
		DefaultWorkers:    defaults.Workers,
		ExtraFormats:      []string{},
		RecentSources:     []string{},
		Theme:             "system",
	}
}

// ApplyToSettings copies the default values from AppConfig into a PackSettings struct.
func (c AppConfig) ApplyToSettings(s *PackSettings) {
	s.MinHeight = c.DefaultMinHeight
	s.MaxHeight = c.DefaultMaxHeight
	s.HeightStep = c.DefaultHeightStep
	s.Workers = c.DefaultWorkers
}

// Validate checks the default search settings the config would apply.
func (c AppConfig) Validate() error {
	s := DefaultSettings()
	c.ApplyToSettings(&s)
	return s.Validate()
}

// maxRecentSources bounds the recent sequence list.
const maxRecentSources = 10

// AddRecentSource moves path to the front of the recent list.
func (c *AppConfig) AddRecentSource(path string) {
	recent := []string{path}
	for _, p := range c.RecentSources {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentSources {
		recent = recent[:maxRecentSources]
	}
	c.RecentSources = recent
}
