// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the imagedrive client.
//
// Fields:
//   - BrokerURL / IdentityPoolID: credential broker endpoint and the pool
//     identifier exchanged for time-limited blob-store credentials.
//   - BrokerTimeout: upper bound on the one-shot credential exchange.
//   - MetadataEndpointURL: the single metadata HTTP endpoint (POST only).
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//     S3BaseEndpoint may be empty for real AWS.
//   - SignedURLTTL: validity window of issued per-asset GET URLs.
//   - ListConcurrency: bound on concurrent signed-URL issuance during listing.
//   - MaxImageDimension: pixel cap applied by the built-in image compressor.
//   - ThemeFile: path of the persisted theme preference.
type Config struct {
	BrokerURL           string
	IdentityPoolID      string
	BrokerTimeout       time.Duration
	MetadataEndpointURL string
	S3Bucket            string
	S3Region            string
	S3BaseEndpoint      string
	SignedURLTTL        time.Duration
	ListConcurrency     int
	MaxImageDimension   int
	ThemeFile           string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.BrokerURL = "http://127.0.0.1:8090/credentials"
	c.IdentityPoolID = "local:00000000-0000-0000-0000-000000000000"
	c.BrokerTimeout = 10 * time.Second
	c.MetadataEndpointURL = "http://127.0.0.1:8080/board"
	c.S3Bucket = "drive"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.SignedURLTTL = 1 * time.Hour
	c.ListConcurrency = 8
	c.MaxImageDimension = 200
	c.ThemeFile = ".imagedrive-theme"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
