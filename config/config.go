// Package config loads the bot's configuration: defaults underneath, a
// TOML file when one is given, ELF_ prefixed environment variables on
// top.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// DriverOff disables the archive; the bot then runs memory only. The
// other accepted drivers are the storage package's.
const DriverOff = "off"

// Default returns the configuration before any file or environment
// input. Credentials have no default; Validate refuses their zero
// values.
func Default() *Config {
	return &Config{
		Log: Log{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
		AOC: AOC{
			BaseURL: "https://adventofcode.com",
			Timeout: Duration(5 * time.Second),
		},
		Schedule: Schedule{
			PrivateRefreshCron:  "0 */15 * * * *",
			GlobalWatchCron:     "5 0 5 1-25 12 *",
			DailyChallengeCron:  "10 0 5 1-25 12 *",
			SolutionsThreadCron: "0 0 5 1-25 12 *",
			DailySummaryCron:    "0 55 4 2-26 12 *",
			GlobalPollInterval:  Duration(5 * time.Minute),
		},
		Storage:   Storage{Driver: DriverOff},
		Server:    Server{Listen: ":8080"},
		Telemetry: Telemetry{Insecure: true},
	}
}

// Load builds the configuration: defaults, then the TOML file when path
// is not empty, then environment overrides, then validation. Unknown
// file keys are rejected so a typoed option fails loudly instead of
// silently keeping its default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
