package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/gcalmettes/christmas-elf-officer/storage"
)

// cronParser accepts the six field specs of the schedule section,
// seconds included, matching the scheduler's parser.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks the assembled configuration. Messages carry the TOML
// key so the operator can fix the file or the matching ELF_ variable.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack.bot_token is required")
	}
	if c.Slack.AppToken == "" {
		return fmt.Errorf("slack.app_token is required")
	}
	if c.Slack.DefaultChannel == "" {
		return fmt.Errorf("slack.default_channel is required")
	}
	if c.AOC.SessionCookie == "" {
		return fmt.Errorf("aoc.session_cookie is required")
	}
	if c.AOC.PrivateLeaderboardID <= 0 {
		return fmt.Errorf("aoc.private_leaderboard_id is required")
	}
	if c.AOC.Timeout.Std() <= 0 {
		return fmt.Errorf("aoc.timeout must be positive")
	}
	if c.Schedule.GlobalPollInterval.Std() <= 0 {
		return fmt.Errorf("schedule.global_poll_interval must be positive")
	}
	for key, spec := range map[string]string{
		"schedule.private_refresh_cron":  c.Schedule.PrivateRefreshCron,
		"schedule.global_watch_cron":     c.Schedule.GlobalWatchCron,
		"schedule.daily_challenge_cron":  c.Schedule.DailyChallengeCron,
		"schedule.solutions_thread_cron": c.Schedule.SolutionsThreadCron,
		"schedule.daily_summary_cron":    c.Schedule.DailySummaryCron,
	} {
		if _, err := cronParser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	switch c.Storage.Driver {
	case DriverOff:
	case storage.DriverSQLite, storage.DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be off, sqlite or postgres, got %q", c.Storage.Driver)
	}
	return nil
}
