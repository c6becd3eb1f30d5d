package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags. Durations
// accept both Go duration strings ("30s") and integer nanoseconds.
type StructuredJSONConfig struct {
	App struct {
		HashKey              string `json:"hash_key"`
		DeviceName           string `json:"device_name"`
		EncryptionPassphrase string `json:"encryption_passphrase"`
		LogLevel             string `json:"log_level"`
		LogFile              string `json:"log_file"`
		ConflictStrategy     string `json:"conflict_strategy"`
		SyncOnce             bool   `json:"sync_once"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		PullPageSize   int      `json:"pull_page_size"`
	} `json:"adapter,omitempty"`

	Workers struct {
		SyncInterval        Duration `json:"sync_interval"`
		DebounceDelay       Duration `json:"debounce_delay"`
		MinAutoSyncGap      Duration `json:"min_auto_sync_gap"`
		HealthCheckInterval Duration `json:"health_check_interval"`
	} `json:"workers,omitempty"`
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
		App: App{
			HashKey:              jsonCfg.App.HashKey,
			DeviceName:           jsonCfg.App.DeviceName,
			EncryptionPassphrase: jsonCfg.App.EncryptionPassphrase,
			LogLevel:             jsonCfg.App.LogLevel,
			LogFile:              jsonCfg.App.LogFile,
			ConflictStrategy:     jsonCfg.App.ConflictStrategy,
			SyncOnce:             jsonCfg.App.SyncOnce,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			PullPageSize:   jsonCfg.Adapter.PullPageSize,
		},
		Workers: Workers{
			SyncInterval:        time.Duration(jsonCfg.Workers.SyncInterval),
			DebounceDelay:       time.Duration(jsonCfg.Workers.DebounceDelay),
			MinAutoSyncGap:      time.Duration(jsonCfg.Workers.MinAutoSyncGap),
			HealthCheckInterval: time.Duration(jsonCfg.Workers.HealthCheckInterval),
		},
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
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
