package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/blackwell-systems/interlog/internal/analyzer"
)

// Config is the top-level interlog configuration.
type Config struct {
	Analysis Analysis `mapstructure:"analysis"`
	Capture  Capture  `mapstructure:"capture"`
	Output   Output   `mapstructure:"output"`
	Watch    Watch    `mapstructure:"watch"`
	DBPath   string   `mapstructure:"db_path"`
}

// Analysis defines the analysis parameters.
type Analysis struct {
	BucketWidth    float64   `mapstructure:"bucket_width"`
	RageClick      RageClick `mapstructure:"rage_click"`
	PauseThreshold float64   `mapstructure:"pause_threshold"`
}

// RageClick defines rage-click clustering thresholds.
type RageClick struct {
	TimeWindow float64 `mapstructure:"time_window"`
	RadiusPx   float64 `mapstructure:"radius_px"`
	MinClicks  int     `mapstructure:"min_clicks"`
}

// Capture defines recording settings.
type Capture struct {
	OutputDir     string        `mapstructure:"output_dir"`
	Privacy       bool          `mapstructure:"privacy"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	FlushSize     int           `mapstructure:"flush_size"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Watch defines live-monitoring settings.
type Watch struct {
	Interval  time.Duration `mapstructure:"interval"`
	LongPause float64       `mapstructure:"long_pause"`
}

// AnalyzerConfig converts the analysis section into an analyzer.Config.
func (a Analysis) AnalyzerConfig() analyzer.Config {
	return analyzer.Config{
		BucketWidth: a.BucketWidth,
		RageClick: analyzer.RageClickConfig{
			TimeWindow: a.RageClick.TimeWindow,
			RadiusPx:   a.RageClick.RadiusPx,
			MinClicks:  a.RageClick.MinClicks,
		},
		PauseThreshold: a.PauseThreshold,
	}
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Environment variables with
// the INTERLOG_ prefix override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("analysis.bucket_width", DefaultAnalysis.BucketWidth)
	v.SetDefault("analysis.rage_click.time_window", DefaultAnalysis.RageClick.TimeWindow)
	v.SetDefault("analysis.rage_click.radius_px", DefaultAnalysis.RageClick.RadiusPx)
	v.SetDefault("analysis.rage_click.min_clicks", DefaultAnalysis.RageClick.MinClicks)
	v.SetDefault("analysis.pause_threshold", DefaultAnalysis.PauseThreshold)
	v.SetDefault("capture.output_dir", DefaultCapture.OutputDir)
	v.SetDefault("capture.privacy", DefaultCapture.Privacy)
	v.SetDefault("capture.flush_interval", DefaultCapture.FlushInterval)
	v.SetDefault("capture.flush_size", DefaultCapture.FlushSize)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("watch.interval", DefaultWatch.Interval)
	v.SetDefault("watch.long_pause", DefaultWatch.LongPause)
	v.SetDefault("db_path", filepath.Join(DefaultConfigDir, DefaultDBName))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, filepath.Ext(DefaultConfigFile)))
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Capture.OutputDir = expandPath(cfg.Capture.OutputDir)
	cfg.DBPath = expandPath(cfg.DBPath)

	return &cfg, nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
