// Package config provides configuration loading and defaults for interlog.
package config

import (
	"time"

	"github.com/blackwell-systems/interlog/internal/analyzer"
)

// DefaultConfigDir is the default location for interlog configuration.
const DefaultConfigDir = "~/.config/interlog"

// DefaultDBName is the filename for the SQLite analysis history database.
const DefaultDBName = "interlog.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix is the prefix for environment variable overrides
// (e.g. INTERLOG_ANALYSIS_BUCKET_WIDTH).
const EnvPrefix = "INTERLOG"

// DefaultAnalysis holds the default analysis parameters.
var DefaultAnalysis = Analysis{
	BucketWidth: analyzer.DefaultBucketWidth,
	RageClick: RageClick{
		TimeWindow: analyzer.DefaultRageWindow,
		RadiusPx:   analyzer.DefaultRageRadiusPx,
		MinClicks:  analyzer.DefaultRageMinClicks,
	},
	PauseThreshold: analyzer.DefaultPauseThreshold,
}

// DefaultCapture holds the default recording settings.
var DefaultCapture = Capture{
	OutputDir:     ".",
	Privacy:       false,
	FlushInterval: 500 * time.Millisecond,
	FlushSize:     10,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultWatch holds the default live-monitoring settings.
var DefaultWatch = Watch{
	Interval:  5 * time.Second,
	LongPause: 30,
}
