package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix is shared by every environment variable this package reads.
const EnvPrefix = "TOOLGAUGE_"

// FromEnv translates TOOLGAUGE_* environment variables into options.
// Unset variables contribute nothing; malformed values are an error rather
// than a silent fallback.
func FromEnv() ([]Option, error) {
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) ([]Option, error) {
	var opts []Option

	if v := getenv(EnvPrefix + "API_URL"); v != "" {
		opts = append(opts, WithAPIURL(v))
	}

	if v := getenv(EnvPrefix + "TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid %sTIMEOUT %q: want a positive integer of seconds", EnvPrefix, v)
		}
		opts = append(opts, WithTimeout(time.Duration(secs)*time.Second))
	}

	if v := getenv(EnvPrefix + "MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid %sMAX_WORKERS %q: want a positive integer", EnvPrefix, v)
		}
		opts = append(opts, WithMaxWorkers(n))
	}

	if v := getenv(EnvPrefix + "OUTPUT_DIR"); v != "" {
		opts = append(opts, WithOutputDir(v))
	}

	if v := getenv(EnvPrefix + "DB_PATH"); v != "" {
		opts = append(opts, WithDBPath(v))
	}

	return opts, nil
}
