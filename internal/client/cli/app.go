// Package cli is a small REPL driving the asset synchronizer. It stands in
// for the rendering layer: all consistency decisions live in the syncer, the
// CLI only collects input and prints the view cache.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/imagedrive/internal/client/blob"
	"github.com/dmitrijs2005/imagedrive/internal/client/broker"
	"github.com/dmitrijs2005/imagedrive/internal/client/compress"
	"github.com/dmitrijs2005/imagedrive/internal/client/config"
	"github.com/dmitrijs2005/imagedrive/internal/client/metadata"
	"github.com/dmitrijs2005/imagedrive/internal/client/syncer"
	"github.com/dmitrijs2005/imagedrive/internal/client/theme"
	"github.com/dmitrijs2005/imagedrive/internal/client/view"
	"github.com/dmitrijs2005/imagedrive/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	syncer *syncer.Synchronizer
	cache  *view.Cache
	themes theme.Store
	theme  theme.Theme
	reader *bufio.Reader
}

// NewApp acquires credentials once and wires the store clients into a
// synchronizer. A failure here leaves nothing ready and the whole
// initialization must be retried by the user.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stderr)

	b := broker.NewClient(c.BrokerURL, c.IdentityPoolID, c.BrokerTimeout)
	creds, err := b.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	store, err := blob.NewS3Store(ctx, blob.S3Config{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	}, creds)
	if err != nil {
		return nil, err
	}

	meta := metadata.NewClient(c.MetadataEndpointURL, logger)

	s := syncer.New(store, meta, compress.NewResizer(c.MaxImageDimension), logger, syncer.Options{
		SignedURLTTL:     c.SignedURLTTL,
		JoinConcurrency:  c.ListConcurrency,
		CredentialExpiry: creds.Expiration,
	})

	themes := theme.NewFileStore(c.ThemeFile)

	return &App{
		config: c,
		logger: logger,
		syncer: s,
		cache:  view.NewCache(),
		themes: themes,
		theme:  themes.Load(),
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

// refresh rebuilds the view cache from a fresh listing join. It runs after
// every successful mutation and is idempotent.
func (a *App) refresh(ctx context.Context) error {
	assets, err := a.syncer.List(ctx)
	if err != nil {
		return err
	}

	rows := make([]view.Row, len(assets))
	for i, asset := range assets {
		rows[i] = view.Row{
			Key:         asset.Key,
			SignedURL:   asset.SignedURL,
			Description: asset.Description,
			Date:        asset.Date,
		}
	}
	a.cache.Replace(rows)
	return nil
}
