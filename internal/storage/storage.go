// Package storage abstracts object storage behind a small connection
// interface so pipeline steps can read source files from and write exports to
// the local file system or GCS without caring which.
package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/velotrend/velotrend/internal/config"
	"github.com/velotrend/velotrend/internal/support/logger"
)

// Settings holds the configuration of a single named storage connection,
// decoded from the adapters.storage section of the application configuration.
type Settings struct {
	// Type selects the backend ("local" or "gcs").
	Type string `yaml:"type"`
	// BucketName is the default bucket (or directory under BaseDir for local).
	BucketName string `yaml:"bucket_name"`
	// CredentialsFile is the service account key path for GCS. Empty means
	// application default credentials.
	CredentialsFile string `yaml:"credentials_file"`
	// BaseDir is the root directory for local connections.
	BaseDir string `yaml:"base_dir"`
}

// Connection is a generic object storage connection.
type Connection interface {
	// Upload writes the data stream to bucket/objectName.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download opens bucket/objectName for reading. The caller closes the
	// returned reader.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects calls fn for every object under the prefix. Returning an
	// error from fn stops the walk.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject removes bucket/objectName. Deleting a missing object is
	// not an error.
	DeleteObject(ctx context.Context, bucket, objectName string) error

	Close() error
	Type() string
	Name() string
}

// Provider resolves named storage connections from the application
// configuration and caches them for reuse.
type Provider struct {
	cfg *config.Config

	mu          sync.RWMutex
	connections map[string]Connection
}

// NewProvider creates a Provider backed by the adapters.storage configuration.
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		cfg:         cfg,
		connections: make(map[string]Connection),
	}
}

// GetConnection returns the connection with the given name, creating it on
// first use.
func (p *Provider) GetConnection(ctx context.Context, name string) (Connection, error) {
	p.mu.RLock()
	conn, ok := p.connections[name]
	p.mu.RUnlock()
	if ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok = p.connections[name]; ok {
		return conn, nil
	}

	settings, err := p.settingsFor(name)
	if err != nil {
		return nil, err
	}

	switch settings.Type {
	case LocalType:
		conn, err = NewLocalConnection(settings, name)
	case GCSType:
		conn, err = NewGCSConnection(ctx, settings, name)
	default:
		return nil, fmt.Errorf("storage connection '%s': unknown type '%s'", name, settings.Type)
	}
	if err != nil {
		return nil, err
	}

	p.connections[name] = conn
	logger.Debugf("Created storage connection '%s' (type %s).", name, settings.Type)
	return conn, nil
}

// CloseAll closes every cached connection.
func (p *Provider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage connection '%s': %w", name, err))
		}
		delete(p.connections, name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing storage connections: %v", errs)
	}
	return nil
}

// settingsFor decodes the named entry of the adapters.storage map. The map
// values come from YAML as map[string]interface{}, so mapstructure decodes
// them against the yaml tags of Settings.
func (p *Provider) settingsFor(name string) (Settings, error) {
	var settings Settings

	named, ok := p.cfg.VeloTrend.Storage[name]
	if !ok {
		return settings, fmt.Errorf("storage configuration for '%s' not found", name)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &settings,
		TagName: "yaml",
	})
	if err != nil {
		return settings, fmt.Errorf("failed to create decoder for storage config '%s': %w", name, err)
	}
	if err := decoder.Decode(named); err != nil {
		return settings, fmt.Errorf("failed to decode storage config for '%s': %w", name, err)
	}
	return settings, nil
}
