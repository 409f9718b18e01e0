package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Secrets
	ObserverTokenSalt string

	// Engine tuning
	AlertRadiusMiles float64
	VoteQuorum       int
	DenyRatio        float64
	ThreatCooldown   time.Duration
	LocationMaxAge   time.Duration

	// SMS gateway (optional; alerts are logged when unset)
	SMSGatewayURL string
	SMSGatewayKey string
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("safehaven", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.ObserverTokenSalt, "token-salt", "", "Observer token salt (prefer env)")

	// Engine tuning
	fs.Float64Var(&cfg.AlertRadiusMiles, "radius", 0, "Alert radius in miles")
	fs.IntVar(&cfg.VoteQuorum, "quorum", 0, "Minimum votes before a threat can resolve")
	fs.Float64Var(&cfg.DenyRatio, "deny-ratio", 0, "Deny fraction required to resolve")
	fs.DurationVar(&cfg.ThreatCooldown, "cooldown", 0, "Idle time before a threat goes inactive")
	fs.DurationVar(&cfg.LocationMaxAge, "location-max-age", 0, "Observer position staleness cutoff")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	// Secrets - MUST be provided
	if cfg.ObserverTokenSalt == "" {
		cfg.ObserverTokenSalt = os.Getenv("OBSERVER_TOKEN_SALT")
	}
	if cfg.ObserverTokenSalt == "" {
		return Config{}, errors.New("OBSERVER_TOKEN_SALT required")
	}

	if cfg.AlertRadiusMiles == 0 {
		if v := os.Getenv("ALERT_RADIUS_MILES"); v != "" {
			radius, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Config{}, errors.New("invalid ALERT_RADIUS_MILES env variable")
			}
			cfg.AlertRadiusMiles = radius
		} else {
			cfg.AlertRadiusMiles = 5.0 // default
		}
	}
	if cfg.AlertRadiusMiles <= 0 {
		return Config{}, errors.New("alert radius must be positive")
	}

	if cfg.VoteQuorum == 0 {
		if v := os.Getenv("VOTE_QUORUM"); v != "" {
			quorum, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, errors.New("invalid VOTE_QUORUM env variable")
			}
			cfg.VoteQuorum = quorum
		} else {
			cfg.VoteQuorum = 2 // default
		}
	}
	if cfg.VoteQuorum < 1 {
		return Config{}, errors.New("vote quorum must be at least 1")
	}

	if cfg.DenyRatio == 0 {
		if v := os.Getenv("DENY_RATIO"); v != "" {
			ratio, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Config{}, errors.New("invalid DENY_RATIO env variable")
			}
			cfg.DenyRatio = ratio
		} else {
			cfg.DenyRatio = 0.5 // default
		}
	}
	if cfg.DenyRatio <= 0 || cfg.DenyRatio > 1 {
		return Config{}, errors.New("deny ratio must be in (0, 1]")
	}

	if cfg.ThreatCooldown == 0 {
		if v := os.Getenv("THREAT_COOLDOWN"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, errors.New("invalid THREAT_COOLDOWN env variable")
			}
			cfg.ThreatCooldown = d
		} else {
			cfg.ThreatCooldown = 5 * time.Minute // default
		}
	}

	if cfg.LocationMaxAge == 0 {
		if v := os.Getenv("LOCATION_MAX_AGE"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, errors.New("invalid LOCATION_MAX_AGE env variable")
			}
			cfg.LocationMaxAge = d
		} else {
			cfg.LocationMaxAge = 10 * time.Minute // default
		}
	}

	// SMS gateway is env-only and optional
	cfg.SMSGatewayURL = os.Getenv("SMS_GATEWAY_URL")
	cfg.SMSGatewayKey = os.Getenv("SMS_GATEWAY_KEY")

	return cfg, nil
}
