package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSONConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON_AllFields(t *testing.T) {
	path := writeJSONConfig(t, `{
		"app": {
			"hash_key": "k",
			"device_name": "desktop",
			"encryption_passphrase": "p",
			"log_level": "info",
			"log_file": "/var/log/syncd.log",
			"sync_once": true
		},
		"storage": {"db": {"dsn": "file:tasks.db"}},
		"server": {"http_address": "127.0.0.1:7070", "request_timeout": "5s"},
		"adapter": {"http_address": "https://sync.example.com", "request_timeout": "20s", "pull_page_size": 75},
		"workers": {
			"sync_interval": "5m",
			"debounce_delay": 3000000000,
			"min_auto_sync_gap": "15s",
			"health_check_interval": "5m"
		}
	}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "k", cfg.App.HashKey)
	assert.Equal(t, "desktop", cfg.App.DeviceName)
	assert.Equal(t, "p", cfg.App.EncryptionPassphrase)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "/var/log/syncd.log", cfg.App.LogFile)
	assert.True(t, cfg.App.SyncOnce)
	assert.Equal(t, "file:tasks.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "127.0.0.1:7070", cfg.Server.HTTPAddress)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "https://sync.example.com", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 20*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 75, cfg.Adapter.PullPageSize)
	assert.Equal(t, 5*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 3*time.Second, cfg.Workers.DebounceDelay)
	assert.Equal(t, 15*time.Second, cfg.Workers.MinAutoSyncGap)
	assert.Equal(t, 5*time.Minute, cfg.Workers.HealthCheckInterval)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_Malformed(t *testing.T) {
	path := writeJSONConfig(t, `{"app": `)

	_, err := parseJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestParseJSON_InvalidDuration(t *testing.T) {
	path := writeJSONConfig(t, `{"workers": {"sync_interval": "later"}}`)

	_, err := parseJSON(path)
	require.Error(t, err)
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(b))
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"45s"`, want: 45 * time.Second},
		{name: "nanoseconds", input: `1000`, want: time.Microsecond},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}
