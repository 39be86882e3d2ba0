package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/opsfleet/process-supervisor/pkg/log"
)

const (
	envHTTPPort               = "HTTP_PORT"
	envSigtermTimeoutSecs     = "SIGTERM_TIMEOUT_SECS"
	envMaxChildrenCount       = "MAX_CHILDREN_COUNT"
	envObtainProcessURL       = "OBTAIN_PROCESS_URL"
	envReportProcessFinishURL = "REPORT_PROCESS_FINISH_URL"
	envHostName               = "HOST_NAME"
	envWorkerCommand          = "WORKER_COMMAND"
	envLogLevel               = "LOG_LEVEL"
	envLogJSON                = "LOG_JSON"

	defaultHTTPPort           = 8080
	defaultSigtermTimeoutSecs = 20
	defaultMaxChildrenCount   = 10
)

// DefaultWorkerCommand is the command the launcher spawns when
// WORKER_COMMAND is unset, matching the original fixed command.
var DefaultWorkerCommand = []string{"php", "worker/worker.php"}

// Config holds the supervisor's environment-derived configuration. Every
// field here corresponds to one of the environment variables in the
// external-interfaces section; HostName is the only required one.
type Config struct {
	HTTPPort               uint16
	SigtermTimeoutSecs     uint64
	MaxChildrenCount       int
	ObtainProcessURL       string
	ReportProcessFinishURL string
	HostName               string
	WorkerCommand          []string
	LogLevel               log.Level
	LogJSON                bool
}

// Load reads Config from the environment, applying defaults where the spec
// defines one and failing only for HOST_NAME, which is required.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:               uint16(envUintOr(envHTTPPort, defaultHTTPPort)),
		SigtermTimeoutSecs:     envUintOr(envSigtermTimeoutSecs, defaultSigtermTimeoutSecs),
		MaxChildrenCount:       int(envUintOr(envMaxChildrenCount, defaultMaxChildrenCount)),
		ObtainProcessURL:       os.Getenv(envObtainProcessURL),
		ReportProcessFinishURL: os.Getenv(envReportProcessFinishURL),
		WorkerCommand:          workerCommandOr(DefaultWorkerCommand),
		LogLevel:               log.Level(envStringOr(envLogLevel, string(log.InfoLevel))),
		LogJSON:                envBoolOr(envLogJSON, true),
	}

	hostName := os.Getenv(envHostName)
	if hostName == "" {
		return nil, fmt.Errorf("config: required environment variable %s is unset", envHostName)
	}
	cfg.HostName = hostName

	return cfg, nil
}

func envStringOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUintOr(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolOr(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func workerCommandOr(fallback []string) []string {
	v := os.Getenv(envWorkerCommand)
	if v == "" {
		return fallback
	}
	return splitFields(v)
}

func splitFields(s string) []string {
	var fields []string
	var cur []rune
	for _, r := range s {
		if r == ' ' {
			if len(cur) > 0 {
				fields = append(fields, string(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		fields = append(fields, string(cur))
	}
	return fields
}
