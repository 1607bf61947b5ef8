package config

import "time"

// Duration decodes TOML strings like "5s" or "15m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Log configures the process logger.
type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Slack holds the chat credentials and channel routing. Bot authored
// messages are ignored unless their bot id is whitelisted.
type Slack struct {
	BotToken          string   `toml:"bot_token"`
	AppToken          string   `toml:"app_token"`
	DefaultChannel    string   `toml:"default_channel"`
	MonitoringChannel string   `toml:"monitoring_channel"`
	BotsAuthorizedIDs []string `toml:"bots_authorized_ids"`
}

// AOC configures the Advent of Code client.
type AOC struct {
	BaseURL              string   `toml:"base_url"`
	SessionCookie        string   `toml:"session_cookie"`
	PrivateLeaderboardID int64    `toml:"private_leaderboard_id"`
	Timeout              Duration `toml:"timeout"`
	AllYears             bool     `toml:"all_years"`
}

// Schedule carries the cron specs, six fields with seconds, all UTC.
type Schedule struct {
	PrivateRefreshCron  string   `toml:"private_refresh_cron"`
	GlobalWatchCron     string   `toml:"global_watch_cron"`
	DailyChallengeCron  string   `toml:"daily_challenge_cron"`
	SolutionsThreadCron string   `toml:"solutions_thread_cron"`
	DailySummaryCron    string   `toml:"daily_summary_cron"`
	GlobalPollInterval  Duration `toml:"global_poll_interval"`
}

// Storage selects the archive backend.
type Storage struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// Server configures the admin HTTP listener. An empty address disables
// it.
type Server struct {
	Listen string `toml:"listen"`
}

// Telemetry configures the OTLP export. An empty endpoint disables it.
type Telemetry struct {
	Endpoint string `toml:"endpoint"`
	Insecure bool   `toml:"insecure"`
}

// Config is the full runtime configuration of the bot.
type Config struct {
	Log       Log       `toml:"log"`
	Slack     Slack     `toml:"slack"`
	AOC       AOC       `toml:"aoc"`
	Schedule  Schedule  `toml:"schedule"`
	Storage   Storage   `toml:"storage"`
	Server    Server    `toml:"server"`
	Telemetry Telemetry `toml:"telemetry"`
}
