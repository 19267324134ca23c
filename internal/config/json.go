package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Ledger struct {
		ServerURL      string   `json:"server_url"`
		Password       string   `json:"password"`
		DataDir        string   `json:"data_dir"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"ledger,omitempty"`

	Sync struct {
		BudgetSyncIDs   []string `json:"budget_sync_ids"`
		BudgetPasswords []string `json:"budget_passwords"`
		CronExpression  string   `json:"cron"`
		Timezone        string   `json:"timezone"`
		RunOnStart      bool     `json:"run_on_start"`
	} `json:"sync,omitempty"`

	Storage struct {
		JournalPath string `json:"journal_path"`
	} `json:"storage,omitempty"`

	Log struct {
		FilePath   string `json:"file_path"`
		MaxSizeMB  int    `json:"max_size_mb"`
		MaxBackups int    `json:"max_backups"`
		MaxAgeDays int    `json:"max_age_days"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Ledger: Ledger{
			ServerURL:      jsonCfg.Ledger.ServerURL,
			Password:       jsonCfg.Ledger.Password,
			DataDir:        jsonCfg.Ledger.DataDir,
			RequestTimeout: time.Duration(jsonCfg.Ledger.RequestTimeout),
		},
		Sync: Sync{
			BudgetSyncIDs:   jsonCfg.Sync.BudgetSyncIDs,
			BudgetPasswords: jsonCfg.Sync.BudgetPasswords,
			CronExpression:  jsonCfg.Sync.CronExpression,
			Timezone:        jsonCfg.Sync.Timezone,
			RunOnStart:      jsonCfg.Sync.RunOnStart,
		},
		Storage: Storage{
			JournalPath: jsonCfg.Storage.JournalPath,
		},
		Log: Log{
			FilePath:   jsonCfg.Log.FilePath,
			MaxSizeMB:  jsonCfg.Log.MaxSizeMB,
			MaxBackups: jsonCfg.Log.MaxBackups,
			MaxAgeDays: jsonCfg.Log.MaxAgeDays,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
