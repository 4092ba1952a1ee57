package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	LedgerProgramAddress string
	LedgerAuthority      string

	VerifierMaxAttempts int
	VerifierRetryDelay  time.Duration

	EnableDeadlineCloser  bool
	DeadlineSweepInterval time.Duration
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "agora"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	programAddress := os.Getenv("LEDGER_PROGRAM_ADDRESS")
	if programAddress == "" {
		programAddress = "0x00000000000000000000000000000000a602a000"
	}
	authority := os.Getenv("LEDGER_AUTHORITY")
	if authority == "" {
		authority = "0x0000000000000000000000000000000000000a11"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		LedgerProgramAddress: programAddress,
		LedgerAuthority:      authority,

		VerifierMaxAttempts: envInt("VERIFIER_MAX_ATTEMPTS", 3),
		VerifierRetryDelay:  envDuration("VERIFIER_RETRY_DELAY", 200*time.Millisecond),

		EnableDeadlineCloser:  envBool("ENABLE_DEADLINE_CLOSER", true),
		DeadlineSweepInterval: envDuration("DEADLINE_SWEEP_INTERVAL", 30*time.Second),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
