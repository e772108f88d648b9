// Package config provides structures and utilities for loading and managing the
// VeloTrend application configuration from an embedded YAML file and environment
// variables.
package config

// EmbeddedConfig holds the raw content of the configuration file, typically
// passed from main.go via go:embed.
type EmbeddedConfig []byte

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g. "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// BatchConfig holds settings for the batch run itself.
type BatchConfig struct {
	// JobName is the logical name of the pipeline job, used in logs and metrics labels.
	JobName string `yaml:"job_name"`
	// ChunkSize is the number of rows written per bulk-insert statement.
	ChunkSize int `yaml:"chunk_size"`
}

// PricingConfig holds the revenue constants consumed by the enrichment stage.
// These are injected at run time so pricing changes do not require logic changes.
type PricingConfig struct {
	// OverageRatePerMinute is the per-minute fee charged beyond the included minutes.
	OverageRatePerMinute float64 `yaml:"overage_rate_per_minute"`
	// MemberIncludedMinutes is the ride duration included in a membership before overage applies.
	MemberIncludedMinutes float64 `yaml:"member_included_minutes"`
	// CasualIncludedMinutes is the ride duration included in a casual day pass before overage applies.
	CasualIncludedMinutes float64 `yaml:"casual_included_minutes"`
	// LostStolenFee is the flat fee applied when a ride exceeds LostStolenMinutes.
	LostStolenFee float64 `yaml:"lost_stolen_fee"`
	// LostStolenMinutes is the duration beyond which a bike is billed as lost or stolen.
	LostStolenMinutes float64 `yaml:"lost_stolen_minutes"`
	// DayPassPrice is the base revenue of a casual trip. Member base revenue is
	// zero; memberships are billed out of band.
	DayPassPrice float64 `yaml:"day_pass_price"`
	// SalesTaxRate is the tax rate applied to total revenue.
	SalesTaxRate float64 `yaml:"sales_tax_rate"`
}

// BoundingBox is an axis-aligned latitude/longitude box.
type BoundingBox struct {
	LatMin float64 `yaml:"lat_min"`
	LatMax float64 `yaml:"lat_max"`
	LonMin float64 `yaml:"lon_min"`
	LonMax float64 `yaml:"lon_max"`
}

// Contains reports whether the point lies inside the box (bounds inclusive).
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// AreaZone is a named bounding box used for station area classification.
// Zones are checked in declaration order, innermost first.
type AreaZone struct {
	Name string      `yaml:"name"`
	Box  BoundingBox `yaml:"box"`
}

// GeoConfig centralizes every geographic constant used across the pipeline
// stages. The original analysis repeated these literals per stage; here each
// appears exactly once.
type GeoConfig struct {
	// ServiceArea is the bounding box a trip endpoint or station must fall in.
	ServiceArea BoundingBox `yaml:"service_area"`
	// AreaZones classify stations by nested bounding boxes, innermost first.
	// Stations matching no zone are labeled FallbackArea.
	AreaZones []AreaZone `yaml:"area_zones"`
	// FallbackArea is the area label for stations outside every configured zone.
	FallbackArea string `yaml:"fallback_area"`
	// DefaultStationCapacity is assumed when no authoritative capacity source exists.
	DefaultStationCapacity int `yaml:"default_station_capacity"`
}

// ScoringConfig holds the weights and caps of the station conversion-potential
// score. The score stays clamped to [0, MaxScore] regardless of these values.
type ScoringConfig struct {
	CasualVolumeWeight  float64 `yaml:"casual_volume_weight"`
	CasualVolumeDivisor float64 `yaml:"casual_volume_divisor"`
	HighUsageWeight     float64 `yaml:"high_usage_weight"`
	CommuteWeight       float64 `yaml:"commute_weight"`
	CommuteTermCap      float64 `yaml:"commute_term_cap"`
	RoundTripWeight     float64 `yaml:"round_trip_weight"`
	RoundTripTermCap    float64 `yaml:"round_trip_term_cap"`
	MaxScore            float64 `yaml:"max_score"`
}

// ReportingConfig holds settings for the marts layer.
type ReportingConfig struct {
	// TopStations is the N of the ranked top-N station list.
	TopStations int `yaml:"top_stations"`
}

// TripSourceConfig describes where the bronze trip extracts live.
type TripSourceConfig struct {
	// StorageRef names the storage connection holding the raw CSV objects.
	StorageRef string `yaml:"storage_ref"`
	// Bucket is the bucket (or base directory for local storage) of the extracts.
	Bucket string `yaml:"bucket"`
	// Prefix is the object prefix under which trip CSVs are listed.
	Prefix string `yaml:"prefix"`
}

// WeatherSourceConfig describes the Open-Meteo archive request for the single
// analysis location.
type WeatherSourceConfig struct {
	APIEndpoint string  `yaml:"api_endpoint"`
	APIKey      string  `yaml:"api_key"`
	Latitude    float64 `yaml:"latitude"`
	Longitude   float64 `yaml:"longitude"`
	Timezone    string  `yaml:"timezone"`
	StartDate   string  `yaml:"start_date"`
	EndDate     string  `yaml:"end_date"`
}

// SourceConfig groups the raw source adapters.
type SourceConfig struct {
	Trips   TripSourceConfig    `yaml:"trips"`
	Weather WeatherSourceConfig `yaml:"weather"`
}

// ExportConfig holds settings for the parquet mart export.
type ExportConfig struct {
	// Enabled toggles the export step.
	Enabled bool `yaml:"enabled"`
	// StorageRef names the storage connection the parquet objects are written to.
	StorageRef string `yaml:"storage_ref"`
	// Bucket is the target bucket (or base directory for local storage).
	Bucket string `yaml:"bucket"`
	// OutputBaseDir is the base object prefix for exported files.
	OutputBaseDir string `yaml:"output_base_dir"`
	// Compression is the parquet compression codec ("SNAPPY", "GZIP", "NONE").
	Compression string `yaml:"compression"`
}

// TracingConfig holds the OpenTelemetry trace exporter settings.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Protocol selects the OTLP transport, "grpc" or "http".
	Protocol string `yaml:"protocol"`
	// Endpoint is the collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS on the exporter connection.
	Insecure bool `yaml:"insecure"`
}

// MetricsConfig holds the metric recorder settings.
type MetricsConfig struct {
	// Exporter selects the recorder backend: "prometheus", "otlp" or "noop".
	Exporter string `yaml:"exporter"`
	// ListenAddr is the address the prometheus scrape endpoint binds to.
	ListenAddr string `yaml:"listen_addr"`
	// Protocol selects the OTLP transport for the "otlp" exporter, "grpc" or "http".
	Protocol string `yaml:"protocol"`
	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS on the OTLP exporter connection.
	Insecure bool `yaml:"insecure"`
}

// TelemetryConfig groups observability settings.
type TelemetryConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// AdapterConfigs maps adapter connection names to their raw, untyped settings.
// Each provider decodes its own entries with mapstructure.
type AdapterConfigs map[string]map[string]interface{}

// VeloTrendConfig is the application section of the configuration file.
type VeloTrendConfig struct {
	System    SystemConfig    `yaml:"system"`
	Batch     BatchConfig     `yaml:"batch"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Geo       GeoConfig       `yaml:"geo"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Reporting ReportingConfig `yaml:"reporting"`
	Source    SourceConfig    `yaml:"source"`
	Export    ExportConfig    `yaml:"export"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	// Database maps connection names to database adapter settings.
	Database AdapterConfigs `yaml:"database"`
	// Storage maps connection names to storage adapter settings.
	Storage AdapterConfigs `yaml:"storage"`
}

// Config is the root configuration structure.
type Config struct {
	VeloTrend VeloTrendConfig `yaml:"velotrend"`
}

// NewConfig returns a Config populated with defaults. Values from the embedded
// YAML and the environment are merged on top by the loader.
func NewConfig() *Config {
	return &Config{
		VeloTrend: VeloTrendConfig{
			System: SystemConfig{
				Logging: LoggingConfig{Level: "INFO"},
			},
			Batch: BatchConfig{
				JobName:   "bikeshare-analytics",
				ChunkSize: 500,
			},
			Pricing: PricingConfig{
				OverageRatePerMinute:  0.18,
				MemberIncludedMinutes: 45,
				CasualIncludedMinutes: 180,
				LostStolenFee:         250.0,
				LostStolenMinutes:     1440,
				DayPassPrice:          18.10,
				SalesTaxRate:          0.1025,
			},
			Geo: GeoConfig{
				ServiceArea: BoundingBox{LatMin: 41.0, LatMax: 43.0, LonMin: -89.0, LonMax: -87.0},
				AreaZones: []AreaZone{
					{Name: "Downtown", Box: BoundingBox{LatMin: 41.85, LatMax: 41.95, LonMin: -87.70, LonMax: -87.60}},
					{Name: "Urban Core", Box: BoundingBox{LatMin: 41.75, LatMax: 42.05, LonMin: -87.80, LonMax: -87.55}},
					{Name: "Greater Metro", Box: BoundingBox{LatMin: 41.60, LatMax: 42.20, LonMin: -88.00, LonMax: -87.50}},
				},
				FallbackArea:           "Outer Area",
				DefaultStationCapacity: 15,
			},
			Scoring: ScoringConfig{
				CasualVolumeWeight:  0.40,
				CasualVolumeDivisor: 10,
				HighUsageWeight:     0.30,
				CommuteWeight:       0.20,
				CommuteTermCap:      20,
				RoundTripWeight:     0.10,
				RoundTripTermCap:    10,
				MaxScore:            100,
			},
			Reporting: ReportingConfig{TopStations: 20},
			Source: SourceConfig{
				Weather: WeatherSourceConfig{
					APIEndpoint: "https://archive-api.open-meteo.com/v1",
					Latitude:    41.85,
					Longitude:   -87.65,
					Timezone:    "America/Chicago",
				},
			},
			Export: ExportConfig{
				Compression: "SNAPPY",
			},
			Telemetry: TelemetryConfig{
				Metrics: MetricsConfig{Exporter: "prometheus", ListenAddr: ":9464", Protocol: "grpc"},
				Tracing: TracingConfig{Protocol: "grpc"},
			},
		},
	}
}
