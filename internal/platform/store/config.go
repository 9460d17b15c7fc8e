package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	Blobs     BlobsConfig
	Warehouse WarehouseConfig
}

// BlobsConfig configures object storage connectivity
type BlobsConfig struct {
	Enabled bool
	Bucket  string

	// CredentialsFile overrides application default credentials when set
	CredentialsFile string

	// Endpoint points the client at an emulator when set
	Endpoint string
}

// Warehouse driver names accepted by WarehouseConfig.Driver
const (
	WarehouseBigQuery = "bigquery"
	WarehousePostgres = "postgres"
)

// WarehouseConfig configures warehouse connectivity
type WarehouseConfig struct {
	Enabled bool

	// Driver selects the backend, default bigquery
	Driver string

	// ProjectID and Dataset locate the bigquery dataset
	ProjectID string
	Dataset   string

	// URL is the postgres dsn when Driver is postgres; Dataset doubles as
	// the schema name there
	URL      string
	MaxConns int32

	// Boot knobs for drivers that ping on open
	ConnectRetries int
	PingTimeout    time.Duration
}
