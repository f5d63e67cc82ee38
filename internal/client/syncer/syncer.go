// Package syncer implements the coordination core between the blob store
// (authoritative for bytes) and the metadata store (authoritative for
// description, date and delete password). The two stores fail independently
// and share no transaction, so every cross-store operation is sequenced here:
// collision check before upload, upload before registration, password
// authorization before blob deletion. Partial failures intentionally leave
// the system in a tolerated degraded state instead of being rolled back.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/imagedrive/internal/client/blob"
	"github.com/dmitrijs2005/imagedrive/internal/client/compress"
	"github.com/dmitrijs2005/imagedrive/internal/client/metadata"
	"github.com/dmitrijs2005/imagedrive/internal/common"
	"github.com/dmitrijs2005/imagedrive/internal/logging"
)

// KeyPrefix is the blob-store namespace all assets live under.
const KeyPrefix = "file/"

// NoDescription is the placeholder shown for a degraded asset (blob present,
// metadata row absent).
const NoDescription = "no description"

// timeNow is a test seam.
var timeNow = time.Now

// Asset is one reconstructed row of the listing join.
type Asset struct {
	Key         string
	SignedURL   string
	Description string
	Date        string
	Size        int64
	Degraded    bool
}

// CreateRequest carries the inputs of one upload.
type CreateRequest struct {
	Name        string
	Data        []byte
	ContentType string
	Description string
	Password    string
}

// Metadata is the metadata-store surface the synchronizer depends on.
type Metadata interface {
	List(ctx context.Context) ([]metadata.Record, error)
	Create(ctx context.Context, key, description, password string) error
	Remove(ctx context.Context, key, password string) (bool, error)
}

// Options tunes a Synchronizer.
//
// CredentialExpiry is the instant after which the session's blob-store
// credentials are stale; operations past it fail with
// common.ErrCredentialsExpired instead of failing opaquely inside the store
// SDK. Zero means no known expiry.
type Options struct {
	SignedURLTTL     time.Duration
	JoinConcurrency  int
	CredentialExpiry time.Time
}

// Synchronizer owns the cross-store consistency protocol. All mutating
// operations must be driven strictly sequentially by a single caller; only
// signed-URL issuance inside List fans out internally.
type Synchronizer struct {
	store blob.Store
	meta  Metadata
	comp  compress.Compressor
	log   logging.Logger
	opts  Options
}

func New(store blob.Store, meta Metadata, comp compress.Compressor, log logging.Logger, opts Options) *Synchronizer {
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = time.Hour
	}
	if opts.JoinConcurrency <= 0 {
		opts.JoinConcurrency = 8
	}
	return &Synchronizer{
		store: store,
		meta:  meta,
		comp:  comp,
		log:   log.With("module", "syncer"),
		opts:  opts,
	}
}

// ready reports whether the synchronizer may touch the stores at all. A
// synchronizer without stores (credential acquisition failed) refuses every
// operation rather than run with partial credentials.
func (s *Synchronizer) ready() error {
	if s.store == nil || s.meta == nil {
		return common.ErrNotReady
	}
	if !s.opts.CredentialExpiry.IsZero() && timeNow().After(s.opts.CredentialExpiry) {
		return common.ErrCredentialsExpired
	}
	return nil
}

// Create runs the two-phase create protocol: collision check, compression,
// blob upload, metadata registration. It returns the blob key the asset was
// stored under.
//
// The collision check is best effort, not a lock: two concurrent creates of
// the same name can both pass it and collide at the store. Registration uses
// the original name even when compression renamed the artifact; when the two
// diverge a warning is logged and the mismatch is left for Reconcile to
// surface. A registration failure after a successful upload leaves a
// degraded asset and is not rolled back.
func (s *Synchronizer) Create(ctx context.Context, req CreateRequest) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	// validation: nothing has touched a store yet
	switch {
	case req.Name == "":
		return "", fmt.Errorf("%w: no file selected", common.ErrValidation)
	case len(req.Data) == 0:
		return "", fmt.Errorf("%w: file is empty", common.ErrValidation)
	case req.Password == "":
		return "", fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	originalKey := KeyPrefix + req.Name

	// checking
	existing, err := s.store.List(ctx, originalKey)
	if err != nil {
		return "", fmt.Errorf("checking for duplicates: %w", err)
	}
	if len(existing) > 0 {
		return "", common.ErrDuplicateName
	}

	// compressing
	art, err := s.comp.Compress(ctx, req.Name, req.Data, req.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCompression, err)
	}

	blobKey := KeyPrefix + art.Name
	if blobKey != originalKey {
		s.log.Warn(ctx, "compressed name diverges from original, metadata will register the original key",
			"blob_key", blobKey, "metadata_key", originalKey)
	}

	// uploading: a failure here leaves no record anywhere
	if err := s.store.Put(ctx, blobKey, art.Data, art.ContentType); err != nil {
		return "", fmt.Errorf("uploading blob: %w", err)
	}

	s.log.Debug(ctx, "blob uploaded", "key", blobKey, "size", len(art.Data))

	// registering: uses the original name, not the compressed one
	if err := s.meta.Create(ctx, originalKey, req.Description, req.Password); err != nil {
		s.log.Error(ctx, "registration failed after upload, asset is degraded", "key", blobKey)
		return blobKey, fmt.Errorf("%w: %v", common.ErrRegistration, err)
	}

	s.log.Info(ctx, "asset created", "key", blobKey)
	return blobKey, nil
}

// Delete runs the password-gated delete protocol. The metadata store is the
// sole password authority: the blob is touched only after it confirms the
// password and removes its row. A blob-delete failure after that point is
// reported as ErrBlobDeleteAfterAuth, distinct from a denial, because the
// metadata row is already gone and will not come back.
func (s *Synchronizer) Delete(ctx context.Context, key, password string) error {
	if err := s.ready(); err != nil {
		return err
	}

	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	// authorizing
	ok, err := s.meta.Remove(ctx, key, password)
	if err != nil {
		return fmt.Errorf("authorizing delete: %w", err)
	}
	if !ok {
		return common.ErrWrongPassword
	}

	// deleting
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Error(ctx, "blob delete failed after authorization, orphaned blob left behind", "key", key)
		return fmt.Errorf("%w: %v", common.ErrBlobDeleteAfterAuth, err)
	}

	s.log.Info(ctx, "asset deleted", "key", key)
	return nil
}

// List reconstructs the asset view: one blob listing, one bulk metadata
// fetch, and an in-memory join by key. Blob keys without a metadata row are
// degraded, not errors. A metadata listing failure degrades every row, again
// without failing the listing. Rows come back in the blob listing's
// lexicographic order; signed URLs are issued concurrently.
func (s *Synchronizer) List(ctx context.Context) ([]Asset, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	objects, err := s.store.List(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}

	byKey := make(map[string]metadata.Record)
	records, err := s.meta.List(ctx)
	if err != nil {
		s.log.Warn(ctx, "metadata listing failed, all rows degraded", "error", err.Error())
	} else {
		for _, r := range records {
			// first match wins
			if _, ok := byKey[r.Key]; !ok {
				byKey[r.Key] = r
			}
		}
	}

	assets := make([]Asset, len(objects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.JoinConcurrency)

	for i, obj := range objects {
		g.Go(func() error {
			url, err := s.store.SignedURL(gctx, obj.Key, s.opts.SignedURLTTL)
			if err != nil {
				return fmt.Errorf("signing %q: %w", obj.Key, err)
			}

			a := Asset{Key: obj.Key, SignedURL: url, Size: obj.Size}
			if r, ok := byKey[obj.Key]; ok {
				a.Description = r.Description
				a.Date = r.CreatedAt
			} else {
				a.Description = NoDescription
				a.Degraded = true
			}

			// each goroutine owns its own index, no shared state
			assets[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assets, nil
}

// Download fetches the raw bytes of one asset.
func (s *Synchronizer) Download(ctx context.Context, key string) ([]byte, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	data, err := s.store.Get(ctx, key)
	if err != nil {
		var be *blob.Error
		if errors.As(err, &be) && be.Kind == blob.KindNotFound {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, key)
		}
		return nil, fmt.Errorf("downloading blob: %w", err)
	}
	return data, nil
}
