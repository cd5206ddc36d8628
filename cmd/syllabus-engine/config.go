// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/syllabus-engine/pkg/types"
)

// envKeyReplacer maps nested keys to environment names:
// extraction.tolerance → SYLLABUS_ENGINE_EXTRACTION_TOLERANCE.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults(v *viper.Viper) {
	v.SetDefault("extraction.tolerance", 2.0)
	v.SetDefault("extraction.percent_precision", 0)
	v.SetDefault("extraction.location_max_len", 50)
	v.SetDefault("extraction.location_window", 150)
	v.SetDefault("extraction.department_corrections", map[string]string{"MA": "M"})
	v.SetDefault("batch.syllabi_dir", "syllabi")
	v.SetDefault("batch.workers", runtime.GOMAXPROCS(0))
	v.SetDefault("batch.force", false)
	v.SetDefault("index.dir", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// bindFlags binds a command's flags to config keys. Binding happens when
// the command runs so commands sharing a key do not shadow each other.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig unmarshals the merged file, environment, and flag settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.Extraction = cfg.Extraction.WithDefaults()
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = filepath.Join(cfg.Batch.SyllabiDir, "index")
	}
	return cfg, nil
}

func logConfig() types.LogConfig {
	return types.LogConfig{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	}
}

// newLogger builds a zap logger writing to stderr so stdout stays clean for
// results.
func newLogger(cfg types.LogConfig) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case "console", "":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q: use console or json", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named("syllabus-engine"), nil
}
