package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/velotrend/velotrend/internal/support/exception"
	"github.com/velotrend/velotrend/internal/support/logger"
)

const moduleName = "config"

// expandEnv expands ${VAR} and $VAR placeholders in the raw configuration bytes
// using the process environment. Unset variables expand to the empty string.
func expandEnv(input []byte) []byte {
	return []byte(os.ExpandEnv(string(input)))
}

// LoadConfig loads the configuration in three layers: built-in defaults from
// NewConfig, the embedded YAML (with environment placeholders expanded), and a
// .env file loaded beforehand so its variables participate in expansion.
// It is expected to be called once during application startup.
func LoadConfig(envFilePath string, embedded EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	expanded := expandEnv(embedded)
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, exception.NewPipelineError(moduleName, "failed to unmarshal embedded config", err, false, false)
	}

	if err := cfg.Validate(); err != nil {
		return nil, exception.NewPipelineError(moduleName, "invalid configuration", err, false, false)
	}

	logger.SetLogLevel(cfg.VeloTrend.System.Logging.Level)
	return cfg, nil
}

// Validate checks invariants the pipeline relies on. It fails fast on
// configurations that would otherwise surface as puzzling stage behavior.
func (c *Config) Validate() error {
	vt := &c.VeloTrend

	if vt.Batch.ChunkSize <= 0 {
		return fmt.Errorf("batch.chunk_size must be positive, got %d", vt.Batch.ChunkSize)
	}
	if vt.Pricing.OverageRatePerMinute < 0 || vt.Pricing.LostStolenFee < 0 || vt.Pricing.DayPassPrice < 0 {
		return fmt.Errorf("pricing constants must be non-negative")
	}
	if vt.Pricing.SalesTaxRate < 0 || vt.Pricing.SalesTaxRate >= 1 {
		return fmt.Errorf("pricing.sales_tax_rate must be in [0,1), got %v", vt.Pricing.SalesTaxRate)
	}
	if vt.Pricing.MemberIncludedMinutes <= 0 || vt.Pricing.CasualIncludedMinutes <= vt.Pricing.MemberIncludedMinutes {
		return fmt.Errorf("included-minutes thresholds must satisfy 0 < member < casual")
	}
	sa := vt.Geo.ServiceArea
	if sa.LatMin >= sa.LatMax || sa.LonMin >= sa.LonMax {
		return fmt.Errorf("geo.service_area box is degenerate")
	}
	if vt.Scoring.MaxScore <= 0 {
		return fmt.Errorf("scoring.max_score must be positive, got %v", vt.Scoring.MaxScore)
	}
	if vt.Reporting.TopStations <= 0 {
		return fmt.Errorf("reporting.top_stations must be positive, got %d", vt.Reporting.TopStations)
	}
	if vt.Source.Weather.APIEndpoint == "" {
		return fmt.Errorf("source.weather.api_endpoint is not configured")
	}
	return nil
}
