package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/imagedrive/internal/flagx"
	"github.com/dmitrijs2005/imagedrive/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "1h" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config struct.
type JsonConfig struct {
	BrokerURL           string         `json:"broker_url"`
	IdentityPoolID      string         `json:"identity_pool_id"`
	BrokerTimeout       timex.Duration `json:"broker_timeout"`
	MetadataEndpointURL string         `json:"metadata_endpoint_url"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	SignedURLTTL        timex.Duration `json:"signed_url_ttl"`
	ListConcurrency     int            `json:"list_concurrency"`
	MaxImageDimension   int            `json:"max_image_dimension"`
	ThemeFile           string         `json:"theme_file"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.BrokerURL = c.BrokerURL
	config.IdentityPoolID = c.IdentityPoolID
	config.BrokerTimeout = time.Duration(c.BrokerTimeout.Duration)
	config.MetadataEndpointURL = c.MetadataEndpointURL
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.SignedURLTTL = time.Duration(c.SignedURLTTL.Duration)
	config.ListConcurrency = c.ListConcurrency
	config.MaxImageDimension = c.MaxImageDimension
	config.ThemeFile = c.ThemeFile
}
