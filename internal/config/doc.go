// Package config provides typed configuration for the jaro tools.
//
// Configuration is assembled in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← applied by cmd/jaro
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← JARO_MATCHER_LIMIT=5
//	├─────────────────────────────┤
//	│  2. Config File             │  ← jaro.toml or jaro.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Each source is read into a generic map by the loader sub-package, the maps
// are deep-merged, and the result is decoded into Config and validated.
//
// # Basic Usage
//
//	cfg, err := config.Load("jaro.toml")
//	if err != nil {
//	    return err
//	}
//	opts, err := cfg.Matcher.Options()
//
// # Environment Variables
//
// Any variable with the JARO_ prefix maps onto a setting: the first segment
// names the section and the remainder the key, so JARO_SERVER_MAX_INPUT sets
// server.max_input. JARO_LOG_LEVEL and JARO_LOG_FORMAT are shorthands for
// the logging section.
package config
