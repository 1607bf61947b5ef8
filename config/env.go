package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnv lays ELF_ prefixed variables over the configuration. Variable
// names join the section and key with underscores, so slack.bot_token is
// ELF_SLACK_BOT_TOKEN.
func applyEnv(cfg *Config) error {
	for env, dst := range map[string]*string{
		"ELF_LOG_LEVEL":                      &cfg.Log.Level,
		"ELF_LOG_FILE":                       &cfg.Log.File,
		"ELF_SLACK_BOT_TOKEN":                &cfg.Slack.BotToken,
		"ELF_SLACK_APP_TOKEN":                &cfg.Slack.AppToken,
		"ELF_SLACK_DEFAULT_CHANNEL":          &cfg.Slack.DefaultChannel,
		"ELF_SLACK_MONITORING_CHANNEL":       &cfg.Slack.MonitoringChannel,
		"ELF_AOC_BASE_URL":                   &cfg.AOC.BaseURL,
		"ELF_AOC_SESSION_COOKIE":             &cfg.AOC.SessionCookie,
		"ELF_SCHEDULE_PRIVATE_REFRESH_CRON":  &cfg.Schedule.PrivateRefreshCron,
		"ELF_SCHEDULE_GLOBAL_WATCH_CRON":     &cfg.Schedule.GlobalWatchCron,
		"ELF_SCHEDULE_DAILY_CHALLENGE_CRON":  &cfg.Schedule.DailyChallengeCron,
		"ELF_SCHEDULE_SOLUTIONS_THREAD_CRON": &cfg.Schedule.SolutionsThreadCron,
		"ELF_SCHEDULE_DAILY_SUMMARY_CRON":    &cfg.Schedule.DailySummaryCron,
		"ELF_STORAGE_DRIVER":                 &cfg.Storage.Driver,
		"ELF_STORAGE_DSN":                    &cfg.Storage.DSN,
		"ELF_SERVER_LISTEN":                  &cfg.Server.Listen,
		"ELF_TELEMETRY_ENDPOINT":             &cfg.Telemetry.Endpoint,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}

	for env, dst := range map[string]*Duration{
		"ELF_AOC_TIMEOUT":                   &cfg.AOC.Timeout,
		"ELF_SCHEDULE_GLOBAL_POLL_INTERVAL": &cfg.Schedule.GlobalPollInterval,
	} {
		if v, ok := os.LookupEnv(env); ok {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
		}
	}

	for env, dst := range map[string]*bool{
		"ELF_AOC_ALL_YEARS":      &cfg.AOC.AllYears,
		"ELF_TELEMETRY_INSECURE": &cfg.Telemetry.Insecure,
	} {
		if v, ok := os.LookupEnv(env); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
			*dst = parsed
		}
	}

	for env, dst := range map[string]*int{
		"ELF_LOG_MAX_SIZE_MB": &cfg.Log.MaxSizeMB,
		"ELF_LOG_MAX_BACKUPS": &cfg.Log.MaxBackups,
	} {
		if v, ok := os.LookupEnv(env); ok {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
			*dst = parsed
		}
	}

	if v, ok := os.LookupEnv("ELF_AOC_PRIVATE_LEADERBOARD_ID"); ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ELF_AOC_PRIVATE_LEADERBOARD_ID: %w", err)
		}
		cfg.AOC.PrivateLeaderboardID = parsed
	}
	if v, ok := os.LookupEnv("ELF_SLACK_BOTS_AUTHORIZED_IDS"); ok {
		cfg.Slack.BotsAuthorizedIDs = splitList(v)
	}
	return nil
}

// splitList parses a comma separated environment value.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
