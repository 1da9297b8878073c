package config

import (
	"sort"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DRAWSTORM_"

// envMapping maps environment variables to setting paths.
var envMapping = map[string]string{
	EnvPrefix + "HISTORY_STRATEGY":    "history.strategy",
	EnvPrefix + "HISTORY_MAX_ENTRIES": "history.max_entries",
	EnvPrefix + "LOG_LEVEL":           "logging.level",
	EnvPrefix + "SCRIPTING_ENABLED":   "scripting.enabled",
}

// EnvVars returns the supported environment variables, sorted.
func EnvVars() []string {
	names := make([]string, 0, len(envMapping))
	for name := range envMapping {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	for _, name := range EnvVars() {
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		val := strings.TrimSpace(raw)
		switch path := envMapping[name]; path {
		case "history.strategy":
			cfg.History.Strategy = Strategy(strings.ToLower(val))
		case "history.max_entries":
			n, err := strconv.Atoi(val)
			if err != nil {
				return &ValidationError{Path: name, Value: raw, Message: "must be an integer"}
			}
			cfg.History.MaxEntries = n
		case "logging.level":
			cfg.Logging.Level = strings.ToLower(val)
		case "scripting.enabled":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return &ValidationError{Path: name, Value: raw, Message: "must be a boolean"}
			}
			cfg.Scripting.Enabled = b
		}
	}
	return nil
}
