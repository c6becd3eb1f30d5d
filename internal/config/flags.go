package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags from the process arguments.
//
// Flags:
//
//	-a control API address in format [host]:[port]
//	-s sync server base URL
//	-d database DSN
//	-c/-config json file path with configs
//	-device-name device label
//	-log-level log level (debug, info, warn, error)
//	-log-file log file path
//	-once run a single sync and exit
//	-passphrase encryption passphrase
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-pull-page-size tasks per pull page
//	-sync-interval automatic sync period (e.g., "5m")
//	-debounce quiet period after a local change (e.g., "3s")
//	-min-auto-sync-gap floor between automatic syncs (e.g., "15s")
//	-health-interval health check period (e.g., "5m")
//	-hash-key security hash key
func ParseFlags() (*StructuredConfig, error) {
	return parseFlags(os.Args[0], os.Args[1:])
}

func parseFlags(name string, args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	var controlAddress NetAddress
	var serverURL string
	var databaseDSN string
	var jsonConfigPath string
	var deviceName string
	var logLevel string
	var logFile string
	var syncOnce bool
	var passphrase string
	var requestTimeout time.Duration
	var pullPageSize int
	var syncInterval time.Duration
	var debounce time.Duration
	var minAutoSyncGap time.Duration
	var healthInterval time.Duration
	var hashKey string

	fs.Var(&controlAddress, "a", "Control API net address host:port")
	fs.StringVar(&serverURL, "s", "", "Sync server base URL")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&deviceName, "device-name", "", "Device name")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.StringVar(&logFile, "log-file", "", "Log file path")
	fs.BoolVar(&syncOnce, "once", false, "Run a single sync and exit")
	fs.StringVar(&passphrase, "passphrase", "", "Encryption passphrase")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.IntVar(&pullPageSize, "pull-page-size", 0, "Tasks per pull page")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Automatic sync period (e.g., 5m)")
	fs.DurationVar(&debounce, "debounce", 0, "Quiet period after a local change (e.g., 3s)")
	fs.DurationVar(&minAutoSyncGap, "min-auto-sync-gap", 0, "Floor between automatic syncs (e.g., 15s)")
	fs.DurationVar(&healthInterval, "health-interval", 0, "Health check period (e.g., 5m)")
	fs.StringVar(&hashKey, "hash-key", "", "Security hash key")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			HashKey:              hashKey,
			DeviceName:           deviceName,
			EncryptionPassphrase: passphrase,
			LogLevel:             logLevel,
			LogFile:              logFile,
			SyncOnce:             syncOnce,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress: controlAddress.String(),
		},
		Adapter: Adapter{
			HTTPAddress:    serverURL,
			RequestTimeout: requestTimeout,
			PullPageSize:   pullPageSize,
		},
		Workers: Workers{
			SyncInterval:        syncInterval,
			DebounceDelay:       debounce,
			MinAutoSyncGap:      minAutoSyncGap,
			HealthCheckInterval: healthInterval,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
