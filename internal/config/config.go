// Package config loads and validates the merged configuration of §6:
// explicit --config, repo-root .hotspotsrc.json, hotspots.config.json,
// or package.json#hotspots, validated against a fixed JSON schema (so
// unknown keys fail validation) via viper plus
// santhosh-tekuri/jsonschema/v6, grounded on the teacher's own
// viper-based loader (internal/config/loader.go: SetDefault per key,
// tolerant ReadInConfig, Unmarshal, then a Validate pass).
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/viper"

	"github.com/hotspots-dev/hotspots/internal/herrors"
	"github.com/hotspots-dev/hotspots/internal/policy"
	"github.com/hotspots-dev/hotspots/internal/risk"
)

const (
	rcFileName      = ".hotspotsrc.json"
	configFileName  = "hotspots.config.json"
	packageJSONName = "package.json"
	packageJSONKey  = "hotspots"
)

// Config is the merged, validated configuration of §6's table.
type Config struct {
	Include []string `json:"include" mapstructure:"include"`
	Exclude []string `json:"exclude" mapstructure:"exclude"`

	Thresholds risk.Thresholds `json:"thresholds" mapstructure:"thresholds"`
	Weights    risk.Weights    `json:"weights" mapstructure:"weights"`

	WarningThresholds policy.Thresholds `json:"warning_thresholds" mapstructure:"warning_thresholds"`

	MinLRS    float64 `json:"min_lrs" mapstructure:"min_lrs"`
	HasMinLRS bool    `json:"-" mapstructure:"-"`
	Top       int     `json:"top" mapstructure:"top"`
	HasTop    bool    `json:"-" mapstructure:"-"`
}

// Default returns the spec's default configuration.
func Default() Config {
	return Config{
		Thresholds:        risk.DefaultThresholds(),
		Weights:           risk.DefaultWeights(),
		WarningThresholds: policy.DefaultThresholds(),
	}
}

// schemaJSON is the fixed JSON schema validating §6's configuration
// keys; any property outside this list fails validation ("unknown keys
// fail validation").
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "include": {"type": "array", "items": {"type": "string"}},
    "exclude": {"type": "array", "items": {"type": "string"}},
    "thresholds": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "moderate": {"type": "number"},
        "high": {"type": "number"},
        "critical": {"type": "number"}
      }
    },
    "weights": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "cc": {"type": "number"},
        "nd": {"type": "number"},
        "fo": {"type": "number"},
        "ns": {"type": "number"}
      }
    },
    "warning_thresholds": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "watch_min": {"type": "number"},
        "watch_max": {"type": "number"},
        "attention_min": {"type": "number"},
        "attention_max": {"type": "number"},
        "rapid_growth_fraction": {"type": "number"}
      }
    },
    "min_lrs": {"type": "number"},
    "top": {"type": "integer"}
  }
}`

func compiledSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("hotspots-config.json", bytes.NewReader([]byte(schemaJSON))); err != nil {
		return nil, fmt.Errorf("config: compile schema: %w", err)
	}
	return compiler.Compile("hotspots-config.json")
}

// validateSchema parses raw config bytes as generic JSON and checks
// them against schemaJSON before any struct unmarshaling happens, so
// an unknown key fails with a precise error rather than being
// silently dropped by mapstructure.
func validateSchema(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &herrors.ConfigError{Key: "", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	if err := schema.Validate(doc); err != nil {
		return &herrors.ConfigError{Key: "", Reason: err.Error()}
	}

	return nil
}

// resolveSource locates the configuration document per §6's search
// order: explicit path, then repo-root .hotspotsrc.json, then
// hotspots.config.json, then package.json's "hotspots" key. Returns
// the raw JSON object bytes (package.json's sub-object extracted) and
// "" if no source exists.
func resolveSource(explicitPath, repoRoot string) ([]byte, error) {
	if explicitPath != "" {
		data, err := os.ReadFile(explicitPath)
		if err != nil {
			return nil, &herrors.IOError{Path: explicitPath, Operation: "read", Err: err}
		}
		return data, nil
	}

	rcPath := filepath.Join(repoRoot, rcFileName)
	if data, err := os.ReadFile(rcPath); err == nil {
		return data, nil
	}

	cfgPath := filepath.Join(repoRoot, configFileName)
	if data, err := os.ReadFile(cfgPath); err == nil {
		return data, nil
	}

	pkgPath := filepath.Join(repoRoot, packageJSONName)
	if data, err := os.ReadFile(pkgPath); err == nil {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &herrors.ConfigError{Key: packageJSONName, Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
		if sub, ok := doc[packageJSONKey]; ok {
			return sub, nil
		}
		return nil, nil
	}

	return nil, nil
}

// Load merges the configuration per §6, validates it against the
// fixed schema, and applies the weights/thresholds/warning-threshold
// defaults for any field the source document omits.
func Load(explicitPath, repoRoot string) (Config, error) {
	raw, err := resolveSource(explicitPath, repoRoot)
	if err != nil {
		return Config{}, err
	}

	if err := validateSchema(raw); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigType("json")

	cfg := Default()
	v.SetDefault("thresholds.moderate", cfg.Thresholds.Moderate)
	v.SetDefault("thresholds.high", cfg.Thresholds.High)
	v.SetDefault("thresholds.critical", cfg.Thresholds.Critical)
	v.SetDefault("weights.cc", cfg.Weights.CC)
	v.SetDefault("weights.nd", cfg.Weights.ND)
	v.SetDefault("weights.fo", cfg.Weights.FO)
	v.SetDefault("weights.ns", cfg.Weights.NS)
	v.SetDefault("warning_thresholds.watch_min", cfg.WarningThresholds.WatchMin)
	v.SetDefault("warning_thresholds.watch_max", cfg.WarningThresholds.WatchMax)
	v.SetDefault("warning_thresholds.attention_min", cfg.WarningThresholds.AttentionMin)
	v.SetDefault("warning_thresholds.attention_max", cfg.WarningThresholds.AttentionMax)
	v.SetDefault("warning_thresholds.rapid_growth_fraction", cfg.WarningThresholds.RapidGrowthFraction)

	if len(bytes.TrimSpace(raw)) > 0 {
		if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
			return Config{}, &herrors.ConfigError{Key: "", Reason: err.Error()}
		}
	}

	cfg.Include = v.GetStringSlice("include")
	cfg.Exclude = v.GetStringSlice("exclude")
	cfg.Thresholds = risk.Thresholds{
		Moderate: v.GetFloat64("thresholds.moderate"),
		High:     v.GetFloat64("thresholds.high"),
		Critical: v.GetFloat64("thresholds.critical"),
	}
	cfg.Weights = risk.Weights{
		CC: v.GetFloat64("weights.cc"),
		ND: v.GetFloat64("weights.nd"),
		FO: v.GetFloat64("weights.fo"),
		NS: v.GetFloat64("weights.ns"),
	}
	cfg.WarningThresholds = policy.Thresholds{
		RegressionThreshold: cfg.WarningThresholds.RegressionThreshold,
		WatchMin:            v.GetFloat64("warning_thresholds.watch_min"),
		WatchMax:            v.GetFloat64("warning_thresholds.watch_max"),
		AttentionMin:        v.GetFloat64("warning_thresholds.attention_min"),
		AttentionMax:        v.GetFloat64("warning_thresholds.attention_max"),
		RapidGrowthFraction: v.GetFloat64("warning_thresholds.rapid_growth_fraction"),
	}
	if v.IsSet("min_lrs") {
		cfg.MinLRS = v.GetFloat64("min_lrs")
		cfg.HasMinLRS = true
	}
	if v.IsSet("top") {
		cfg.Top = v.GetInt("top")
		cfg.HasTop = true
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate enforces the bound/ordering rules §3/§6 place on thresholds
// and weights.
func (c Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return &herrors.ConfigError{Key: "thresholds", Reason: err.Error()}
	}
	if err := c.Weights.Validate(); err != nil {
		return &herrors.ConfigError{Key: "weights", Reason: err.Error()}
	}
	return nil
}

// Digest is a short identity string summarizing the config a snapshot
// was computed under, stamped into the snapshot's analysis block so a
// later recomputation under different weights/thresholds is detected
// rather than silently assumed identical (§9's open question on
// weights/thresholds not being stored per-snapshot).
func (c Config) Digest() string {
	var b strings.Builder
	fmt.Fprintf(&b, "w=%.3f,%.3f,%.3f,%.3f;t=%.3f,%.3f,%.3f",
		c.Weights.CC, c.Weights.ND, c.Weights.FO, c.Weights.NS,
		c.Thresholds.Moderate, c.Thresholds.High, c.Thresholds.Critical)
	return b.String()
}
