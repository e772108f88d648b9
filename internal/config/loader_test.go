package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotrend/velotrend/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig("velotrend: {}"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.VeloTrend.System.Logging.Level)
	assert.Equal(t, "bikeshare-analytics", cfg.VeloTrend.Batch.JobName)
	assert.InDelta(t, 45, cfg.VeloTrend.Pricing.MemberIncludedMinutes, 0)
	assert.InDelta(t, 180, cfg.VeloTrend.Pricing.CasualIncludedMinutes, 0)
	assert.Equal(t, 15, cfg.VeloTrend.Geo.DefaultStationCapacity)
	assert.Equal(t, "Outer Area", cfg.VeloTrend.Geo.FallbackArea)
	// Zones stay ordered innermost first.
	require.Len(t, cfg.VeloTrend.Geo.AreaZones, 3)
	assert.Equal(t, "Downtown", cfg.VeloTrend.Geo.AreaZones[0].Name)
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	raw := `
velotrend:
  system:
    logging:
      level: DEBUG
  pricing:
    day_pass_price: 20.0
  reporting:
    top_stations: 5
`
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(raw))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.VeloTrend.System.Logging.Level)
	assert.InDelta(t, 20.0, cfg.VeloTrend.Pricing.DayPassPrice, 1e-9)
	assert.Equal(t, 5, cfg.VeloTrend.Reporting.TopStations)
	// Untouched defaults remain.
	assert.InDelta(t, 0.1025, cfg.VeloTrend.Pricing.SalesTaxRate, 1e-9)
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	t.Setenv("VT_PASS_PRICE", "12.5")
	raw := `
velotrend:
  pricing:
    day_pass_price: ${VT_PASS_PRICE}
`
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(raw))
	require.NoError(t, err)
	assert.InDelta(t, 12.5, cfg.VeloTrend.Pricing.DayPassPrice, 1e-9)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"negative pricing": `
velotrend:
  pricing:
    lost_stolen_fee: -1
`,
		"tax rate out of range": `
velotrend:
  pricing:
    sales_tax_rate: 1.5
`,
		"inverted thresholds": `
velotrend:
  pricing:
    member_included_minutes: 200
`,
		"bad chunk size": `
velotrend:
  batch:
    chunk_size: 0
`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadConfig("", config.EmbeddedConfig(raw))
			assert.Error(t, err)
		})
	}
}

func TestBoundingBox_Contains(t *testing.T) {
	box := config.BoundingBox{LatMin: 41.0, LatMax: 43.0, LonMin: -89.0, LonMax: -87.0}

	assert.True(t, box.Contains(41.9, -87.65))
	assert.True(t, box.Contains(41.0, -89.0)) // bounds inclusive
	assert.False(t, box.Contains(40.99, -87.65))
	assert.False(t, box.Contains(41.9, -86.99))
}
