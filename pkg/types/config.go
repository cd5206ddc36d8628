package types

// ExtractionConfig holds settings for the extraction pipeline.
type ExtractionConfig struct {
	// Tolerance is the allowed deviation from 100 for a closed grading
	// scheme (default 2).
	Tolerance float64 `json:"tolerance" mapstructure:"tolerance" yaml:"tolerance"`

	// PercentPrecision is the number of decimals kept when points are
	// converted to percents (default 0).
	PercentPrecision int `json:"percent_precision" mapstructure:"percent_precision" yaml:"percent_precision"`

	// JunkPhrases extends the built-in stoplist of non-assessment phrases.
	JunkPhrases []string `json:"junk_phrases,omitempty" mapstructure:"junk_phrases" yaml:"junk_phrases,omitempty"`

	// DepartmentCorrections maps confusable department prefixes to the
	// canonical department (default {"MA": "M"}).
	DepartmentCorrections map[string]string `json:"department_corrections,omitempty" mapstructure:"department_corrections" yaml:"department_corrections,omitempty"`

	// LocationMaxLen bounds an accepted location string (default 50).
	LocationMaxLen int `json:"location_max_len" mapstructure:"location_max_len" yaml:"location_max_len"`

	// LocationWindow is how many characters after a header statement are
	// searched for a labelled location (default 150).
	LocationWindow int `json:"location_window" mapstructure:"location_window" yaml:"location_window"`
}

// BatchConfig holds settings for batch extraction over a directory.
type BatchConfig struct {
	// SyllabiDir is the base directory (contains text/, extracted/, index/).
	SyllabiDir string `json:"syllabi_dir" mapstructure:"syllabi_dir" yaml:"syllabi_dir"`

	// Workers is the number of documents processed in parallel
	// (default GOMAXPROCS).
	Workers int `json:"workers" mapstructure:"workers" yaml:"workers"`

	// Force re-extracts documents whose content hash is unchanged.
	Force bool `json:"force" mapstructure:"force" yaml:"force"`
}

// IndexConfig holds settings for the SQLite run index.
type IndexConfig struct {
	// Dir is the directory holding the index database (default syllabi/index).
	Dir string `json:"dir" mapstructure:"dir" yaml:"dir"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" mapstructure:"level" yaml:"level"`

	// Format is json or console.
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// Config groups all configuration sections.
type Config struct {
	Extraction ExtractionConfig `json:"extraction" mapstructure:"extraction" yaml:"extraction"`
	Batch      BatchConfig      `json:"batch" mapstructure:"batch" yaml:"batch"`
	Index      IndexConfig      `json:"index" mapstructure:"index" yaml:"index"`
	Log        LogConfig        `json:"log" mapstructure:"log" yaml:"log"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c ExtractionConfig) WithDefaults() ExtractionConfig {
	if c.Tolerance <= 0 {
		c.Tolerance = 2
	}
	if c.PercentPrecision < 0 {
		c.PercentPrecision = 0
	}
	if c.DepartmentCorrections == nil {
		c.DepartmentCorrections = map[string]string{"MA": "M"}
	}
	if c.LocationMaxLen <= 0 {
		c.LocationMaxLen = 50
	}
	if c.LocationWindow <= 0 {
		c.LocationWindow = 150
	}
	return c
}
