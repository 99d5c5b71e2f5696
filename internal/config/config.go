// Package config loads service settings from the environment (and an
// optional .env file) through viper.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ScanMaster/internal/calc/ringblock"
)

const EnvPrefix = "SCANMASTER"

type Config struct {
	Addr        string `mapstructure:"addr"`
	TLSCert     string `mapstructure:"tls_cert"`
	TLSKey      string `mapstructure:"tls_key"`
	DatabaseURL string `mapstructure:"database_url"`
	TokenKey    string `mapstructure:"token_key"`
	AllowOrigin string `mapstructure:"allow_origin"`
	Verbose     bool   `mapstructure:"verbose"`

	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`

	BatchWorkers int `mapstructure:"batch_workers"`

	SafetyMarginMM      float64   `mapstructure:"safety_margin_mm"`
	FallbackDepthRatios []float64 `mapstructure:"fallback_depth_ratios"`
	MinReflectorsEN     int       `mapstructure:"min_reflectors_en"`
	MinReflectorsASTM   int       `mapstructure:"min_reflectors_astm"`
	MinReflectorsTUV    int       `mapstructure:"min_reflectors_tuv"`
	MinReflectorsCustom int       `mapstructure:"min_reflectors_custom"`
}

// Load reads .env when present, then SCANMASTER_* variables over the
// defaults below.
func Load() (Config, error) {
	_ = godotenv.Load()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	def := ringblock.DefaultPolicy()
	viper.SetDefault("addr", ":8080")
	viper.SetDefault("tls_cert", "")
	viper.SetDefault("tls_key", "")
	viper.SetDefault("database_url", "")
	viper.SetDefault("token_key", "")
	viper.SetDefault("allow_origin", "http://localhost:5173")
	viper.SetDefault("verbose", false)
	viper.SetDefault("rate_limit", 5.0)
	viper.SetDefault("rate_burst", 10)
	viper.SetDefault("batch_workers", 4)
	viper.SetDefault("safety_margin_mm", def.SafetyMarginMM)
	viper.SetDefault("fallback_depth_ratios", def.FallbackDepthRatios)
	viper.SetDefault("min_reflectors_en", def.MinimumReflectors[ringblock.FamilyEN])
	viper.SetDefault("min_reflectors_astm", def.MinimumReflectors[ringblock.FamilyASTM])
	viper.SetDefault("min_reflectors_tuv", def.MinimumReflectors[ringblock.FamilyTUV])
	viper.SetDefault("min_reflectors_custom", def.MinimumReflectors[ringblock.FamilyCustom])

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("thin-wall policy: %w", err)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("rate_limit and rate_burst must be positive")
	}
	if c.BatchWorkers <= 0 {
		return fmt.Errorf("batch_workers must be positive, got %d", c.BatchWorkers)
	}
	return nil
}

// TLS reports whether both certificate and key are configured.
func (c Config) TLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// Policy builds the thin-wall policy the ring-block resolver runs with.
func (c Config) Policy() ringblock.Policy {
	return ringblock.Policy{
		SafetyMarginMM: c.SafetyMarginMM,
		MinimumReflectors: map[ringblock.Family]int{
			ringblock.FamilyEN:     c.MinReflectorsEN,
			ringblock.FamilyASTM:   c.MinReflectorsASTM,
			ringblock.FamilyTUV:    c.MinReflectorsTUV,
			ringblock.FamilyCustom: c.MinReflectorsCustom,
		},
		FallbackDepthRatios: append([]float64(nil), c.FallbackDepthRatios...),
	}
}
