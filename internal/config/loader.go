package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PAYMENT_VERIFIER_"

// Load reads configuration from the YAML file at path (missing file is
// fine, defaults apply), then overrides with environment variables.
//
// Environment variables are uppercased with an underscore delimiter:
//
//	PAYMENT_VERIFIER_GMAIL_WATCH_QUERY          -> gmail.watch_query
//	PAYMENT_VERIFIER_VERIFICATION_TIME_WINDOW_HOURS -> verification.time_window_hours
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults plus environment only.
		case err != nil:
			return nil, fmt.Errorf("os.ReadFile failed: %w", err)
		default:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config file %s failed to parse: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyTransform), nil); err != nil {
		return nil, fmt.Errorf("env provider failed: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("k.Unmarshal failed: %w", err)
	}

	return cfg, nil
}

// envKeyTransform maps PAYMENT_VERIFIER_SECTION_SOME_KEY to
// section.some_key. Section names carry no underscores, so the first
// underscore is the section delimiter; top-level app_name is the one
// exception.
func envKeyTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if s == "app_name" {
		return s
	}

	section, key, found := strings.Cut(s, "_")
	if !found {
		return s
	}

	return section + "." + key
}
