package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/imagedrive/internal/flagx"
)

// parseFlags populates selected client Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-k string   credential broker URL
//	-i string   identity pool identifier
//	-m string   metadata endpoint URL
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (empty for real AWS)
//	-t int      signed URL TTL, seconds
//	-j int      listing signed-URL concurrency
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags handled by
// the JSON layer.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-k", "-i", "-m", "-b", "-g", "-e", "-t", "-j"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.BrokerURL, "k", config.BrokerURL, "credential broker URL")
	fs.StringVar(&config.IdentityPoolID, "i", config.IdentityPoolID, "identity pool id")
	fs.StringVar(&config.MetadataEndpointURL, "m", config.MetadataEndpointURL, "metadata endpoint URL")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	signedURLTTL := fs.Int("t", int(config.SignedURLTTL.Seconds()), "signed URL TTL (in seconds)")
	fs.IntVar(&config.ListConcurrency, "j", config.ListConcurrency, "listing signed-URL concurrency")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SignedURLTTL = time.Duration(*signedURLTTL) * time.Second
}
