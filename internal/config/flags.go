package config

import (
	"flag"
	"strings"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-server-url ledger server base URL
//	-password ledger server account password
//	-data-dir budget cache directory
//	-request-timeout ledger request timeout (e.g., "30s", "1m")
//	-sync-ids comma-separated budget sync IDs
//	-sync-passwords comma-separated budget encryption passwords (positional)
//	-cron cron expression for the sync cycle
//	-timezone IANA timezone for the cron expression
//	-run-on-start run one sync cycle immediately at startup
//	-journal attempt journal SQLite file path
//	-log-file rotated log file path
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var serverURL string
	var password string
	var dataDir string
	var requestTimeout time.Duration
	var syncIDs commaList
	var syncPasswords commaList
	var cronExpression string
	var timezone string
	var runOnStart bool
	var journalPath string
	var logFilePath string
	var jsonConfigPath string

	flag.StringVar(&serverURL, "server-url", "", "Ledger server base URL")
	flag.StringVar(&password, "password", "", "Ledger server account password")
	flag.StringVar(&dataDir, "data-dir", "", "Budget cache directory")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.Var(&syncIDs, "sync-ids", "Comma-separated budget sync IDs")
	flag.Var(&syncPasswords, "sync-passwords", "Comma-separated budget encryption passwords")
	flag.StringVar(&cronExpression, "cron", "", "Cron expression for the sync cycle")
	flag.StringVar(&timezone, "timezone", "", "IANA timezone for the cron expression")
	flag.BoolVar(&runOnStart, "run-on-start", false, "Run one sync cycle immediately at startup")
	flag.StringVar(&journalPath, "journal", "", "Attempt journal SQLite file path")
	flag.StringVar(&logFilePath, "log-file", "", "Rotated log file path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Ledger: Ledger{
			ServerURL:      serverURL,
			Password:       password,
			DataDir:        dataDir,
			RequestTimeout: requestTimeout,
		},
		Sync: Sync{
			BudgetSyncIDs:   syncIDs,
			BudgetPasswords: syncPasswords,
			CronExpression:  cronExpression,
			Timezone:        timezone,
			RunOnStart:      runOnStart,
		},
		Storage: Storage{
			JournalPath: journalPath,
		},
		Log: Log{
			FilePath: logFilePath,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// commaList is a comma-separated string slice flag. Empty elements are kept
// as-is: an empty slot in -sync-passwords means "no password for that index".
// It implements the flag.Value interface.
type commaList []string

// String returns the canonical comma-joined form of the list.
func (l *commaList) String() string {
	return strings.Join(*l, ",")
}

// Set splits the input on commas and replaces the list. A fully empty input
// leaves the list nil so mergo treats the flag as unset.
func (l *commaList) Set(s string) error {
	if s == "" {
		*l = nil
		return nil
	}
	*l = strings.Split(s, ",")
	return nil
}
