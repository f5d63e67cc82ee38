package syncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/imagedrive/internal/client/blob"
	"github.com/dmitrijs2005/imagedrive/internal/client/compress"
	"github.com/dmitrijs2005/imagedrive/internal/client/metadata"
	"github.com/dmitrijs2005/imagedrive/internal/common"
	"github.com/dmitrijs2005/imagedrive/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	listErr   error
	putErr    error
	getErr    error
	deleteErr error
	signErr   error

	puts    []string
	deletes []string
	signed  []string
}

func newFakeStore(keys ...string) *fakeStore {
	s := &fakeStore{objects: map[string][]byte{}}
	for _, k := range keys {
		s.objects[k] = []byte("bytes of " + k)
	}
	return s
}

func (f *fakeStore) List(ctx context.Context, prefix string) ([]blob.Object, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []blob.Object
	for k, v := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, blob.Object{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
	f.puts = append(f.puts, key)
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return nil, &blob.Error{Kind: blob.KindNotFound, Op: "get", Key: key, Err: errors.New("missing")}
	}
	return b, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signed = append(f.signed, key)
	return "https://signed.example/" + key, nil
}

type fakeMeta struct {
	mu      sync.Mutex
	records []metadata.Record

	listErr   error
	createErr error
	removeErr error

	// password accepted by Remove; anything else is denied
	password string

	created []string
	removed []string
}

func record(key, description, date string) metadata.Record {
	return metadata.Record{Key: key, Description: description, CreatedAt: date}
}

func (f *fakeMeta) List(ctx context.Context) ([]metadata.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeMeta) Create(ctx context.Context, key, description, password string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record(key, description, "2024-11-02"))
	f.created = append(f.created, key)
	return nil
}

func (f *fakeMeta) Remove(ctx context.Context, key, password string) (bool, error) {
	if f.removeErr != nil {
		return false, f.removeErr
	}
	if password != f.password {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, r := range f.records {
		if r.Key != key {
			kept = append(kept, r)
		}
	}
	f.records = kept
	f.removed = append(f.removed, key)
	return true, nil
}

type renamingComp struct{ suffix string }

func (c renamingComp) Compress(_ context.Context, name string, data []byte, contentType string) (*compress.Artifact, error) {
	base := strings.TrimSuffix(name, ".jpeg")
	return &compress.Artifact{Name: base + c.suffix, Data: data, ContentType: contentType}, nil
}

type failingComp struct{}

func (failingComp) Compress(context.Context, string, []byte, string) (*compress.Artifact, error) {
	return nil, errors.New("corrupt input")
}

// -------- helpers --------

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newSyncer(store blob.Store, meta Metadata) *Synchronizer {
	return New(store, meta, compress.Nop{}, testLogger(), Options{})
}

func validReq() CreateRequest {
	return CreateRequest{
		Name:        "c.png",
		Data:        []byte("png bytes"),
		ContentType: "image/png",
		Description: "a new image",
		Password:    "pw123",
	}
}

// -------- create protocol --------

func TestCreate_Success(t *testing.T) {
	store := newFakeStore("file/a.png")
	meta := &fakeMeta{password: "pw123"}
	s := newSyncer(store, meta)

	key, err := s.Create(context.Background(), validReq())
	require.NoError(t, err)

	assert.Equal(t, "file/c.png", key)
	assert.Equal(t, []string{"file/c.png"}, store.puts)
	assert.Equal(t, []string{"file/c.png"}, meta.created)
}

func TestCreate_ValidationRejectsBeforeAnyStoreCall(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"empty name", func(r *CreateRequest) { r.Name = "" }},
		{"no binary", func(r *CreateRequest) { r.Data = nil }},
		{"empty password", func(r *CreateRequest) { r.Password = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			meta := &fakeMeta{}
			s := newSyncer(store, meta)

			req := validReq()
			tc.mutate(&req)

			_, err := s.Create(context.Background(), req)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Empty(t, store.puts)
			assert.Empty(t, meta.created)
		})
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	store := newFakeStore("file/c.png")
	meta := &fakeMeta{}
	s := newSyncer(store, meta)

	_, err := s.Create(context.Background(), validReq())
	assert.ErrorIs(t, err, common.ErrDuplicateName)
	assert.Empty(t, store.puts)
	assert.Empty(t, meta.created)
}

func TestCreate_CompressionFailure(t *testing.T) {
	store := newFakeStore()
	meta := &fakeMeta{}
	s := New(store, meta, failingComp{}, testLogger(), Options{})

	_, err := s.Create(context.Background(), validReq())
	assert.ErrorIs(t, err, common.ErrCompression)
	assert.Empty(t, store.puts)
	assert.Empty(t, meta.created)
}

func TestCreate_UploadFailureWritesNoMetadata(t *testing.T) {
	store := newFakeStore()
	store.putErr = &blob.Error{Kind: blob.KindNetwork, Op: "put", Key: "file/c.png", Err: errors.New("timeout")}
	meta := &fakeMeta{}
	s := newSyncer(store, meta)

	_, err := s.Create(context.Background(), validReq())
	require.Error(t, err)

	var be *blob.Error
	assert.True(t, errors.As(err, &be))
	assert.Empty(t, meta.created, "metadata must never be written when the upload fails")
}

func TestCreate_RegistrationFailureLeavesDegradedAsset(t *testing.T) {
	store := newFakeStore()
	meta := &fakeMeta{createErr: errors.New("endpoint down")}
	s := newSyncer(store, meta)

	key, err := s.Create(context.Background(), validReq())
	assert.ErrorIs(t, err, common.ErrRegistration)

	// the blob stays: degraded asset, no rollback
	assert.Equal(t, "file/c.png", key)
	assert.Contains(t, store.objects, "file/c.png")
}

func TestCreate_CompressedRenameRegistersOriginalKey(t *testing.T) {
	store := newFakeStore()
	meta := &fakeMeta{}
	s := New(store, meta, renamingComp{suffix: ".jpg"}, testLogger(), Options{})

	req := validReq()
	req.Name = "photo.jpeg"

	key, err := s.Create(context.Background(), req)
	require.NoError(t, err)

	// blob key follows the compressed artifact, metadata keeps the original
	assert.Equal(t, "file/photo.jpg", key)
	assert.Equal(t, []string{"file/photo.jpg"}, store.puts)
	assert.Equal(t, []string{"file/photo.jpeg"}, meta.created)
}

// -------- delete protocol --------

func TestDelete_Success_MetadataAuthorizesFirst(t *testing.T) {
	store := newFakeStore("file/a.png")
	meta := &fakeMeta{password: "pw123", records: []metadata.Record{record("file/a.png", "cat", "2024-11-02")}}
	s := newSyncer(store, meta)

	err := s.Delete(context.Background(), "file/a.png", "pw123")
	require.NoError(t, err)

	assert.Equal(t, []string{"file/a.png"}, meta.removed)
	assert.Equal(t, []string{"file/a.png"}, store.deletes)
}

func TestDelete_WrongPasswordTouchesNeitherStore(t *testing.T) {
	store := newFakeStore("file/a.png")
	meta := &fakeMeta{password: "pw123", records: []metadata.Record{record("file/a.png", "cat", "2024-11-02")}}
	s := newSyncer(store, meta)

	err := s.Delete(context.Background(), "file/a.png", "wrong")
	assert.ErrorIs(t, err, common.ErrWrongPassword)

	assert.Empty(t, meta.removed)
	assert.Empty(t, store.deletes)
	assert.Contains(t, store.objects, "file/a.png")
	assert.Len(t, meta.records, 1)
}

func TestDelete_EmptyPassword(t *testing.T) {
	store := newFakeStore("file/a.png")
	meta := &fakeMeta{password: "pw123"}
	s := newSyncer(store, meta)

	err := s.Delete(context.Background(), "file/a.png", "")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, meta.removed)
	assert.Empty(t, store.deletes)
}

func TestDelete_MetadataErrorKeepsBlob(t *testing.T) {
	store := newFakeStore("file/a.png")
	meta := &fakeMeta{removeErr: &metadata.Error{Kind: metadata.ErrKindNetwork, Err: errors.New("down")}}
	s := newSyncer(store, meta)

	err := s.Delete(context.Background(), "file/a.png", "pw123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrWrongPassword)
	assert.Empty(t, store.deletes)
}

func TestDelete_BlobFailureAfterAuthorization(t *testing.T) {
	store := newFakeStore("file/a.png")
	store.deleteErr = &blob.Error{Kind: blob.KindNetwork, Op: "delete", Key: "file/a.png", Err: errors.New("timeout")}
	meta := &fakeMeta{password: "pw123", records: []metadata.Record{record("file/a.png", "cat", "2024-11-02")}}
	s := newSyncer(store, meta)

	err := s.Delete(context.Background(), "file/a.png", "pw123")
	assert.ErrorIs(t, err, common.ErrBlobDeleteAfterAuth)
	assert.NotErrorIs(t, err, common.ErrWrongPassword)

	// the asymmetry is deliberate: the row is gone, the blob is orphaned
	assert.Empty(t, meta.records)
	assert.Contains(t, store.objects, "file/a.png")
}

// -------- listing join --------

func TestList_JoinsBlobAndMetadata(t *testing.T) {
	store := newFakeStore("file/a.png", "file/b.png")
	meta := &fakeMeta{records: []metadata.Record{record("file/a.png", "cat", "2024-11-02")}}
	s := newSyncer(store, meta)

	assets, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)

	assert.Equal(t, "file/a.png", assets[0].Key)
	assert.Equal(t, "cat", assets[0].Description)
	assert.Equal(t, "2024-11-02", assets[0].Date)
	assert.False(t, assets[0].Degraded)
	assert.Equal(t, "https://signed.example/file/a.png", assets[0].SignedURL)

	assert.Equal(t, "file/b.png", assets[1].Key)
	assert.Equal(t, NoDescription, assets[1].Description)
	assert.Empty(t, assets[1].Date)
	assert.True(t, assets[1].Degraded)
}

func TestList_Idempotent(t *testing.T) {
	store := newFakeStore("file/a.png", "file/b.png", "file/c.png")
	meta := &fakeMeta{records: []metadata.Record{
		record("file/a.png", "cat", "2024-11-02"),
		record("file/c.png", "dog", "2024-11-03"),
	}}
	s := newSyncer(store, meta)

	first, err := s.List(context.Background())
	require.NoError(t, err)
	second, err := s.List(context.Background())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Key, second[i].Key)
		assert.Equal(t, first[i].Description, second[i].Description)
		assert.Equal(t, first[i].Date, second[i].Date)
	}
}

func TestList_MetadataFailureDegradesAllRows(t *testing.T) {
	store := newFakeStore("file/a.png", "file/b.png")
	meta := &fakeMeta{listErr: &metadata.Error{Kind: metadata.ErrKindNetwork, Err: errors.New("down")}}
	s := newSyncer(store, meta)

	assets, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)
	for _, a := range assets {
		assert.Equal(t, NoDescription, a.Description)
		assert.True(t, a.Degraded)
	}
}

func TestList_FirstMetadataMatchWins(t *testing.T) {
	store := newFakeStore("file/a.png")
	meta := &fakeMeta{records: []metadata.Record{
		record("file/a.png", "first", "2024-11-02"),
		record("file/a.png", "second", "2024-11-03"),
	}}
	s := newSyncer(store, meta)

	assets, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "first", assets[0].Description)
}

func TestList_SigningFailureFailsListing(t *testing.T) {
	store := newFakeStore("file/a.png")
	store.signErr = errors.New("no credentials")
	s := newSyncer(store, &fakeMeta{})

	_, err := s.List(context.Background())
	assert.Error(t, err)
}

func TestList_Empty(t *testing.T) {
	s := newSyncer(newFakeStore(), &fakeMeta{})

	assets, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, assets)
}

// -------- readiness --------

func TestOperations_NotReadyWithoutStores(t *testing.T) {
	s := New(nil, nil, compress.Nop{}, testLogger(), Options{})
	ctx := context.Background()

	_, err := s.Create(ctx, validReq())
	assert.ErrorIs(t, err, common.ErrNotReady)

	assert.ErrorIs(t, s.Delete(ctx, "file/a.png", "pw"), common.ErrNotReady)

	_, err = s.List(ctx)
	assert.ErrorIs(t, err, common.ErrNotReady)

	_, err = s.Reconcile(ctx)
	assert.ErrorIs(t, err, common.ErrNotReady)
}

func TestOperations_RefusedAfterCredentialExpiry(t *testing.T) {
	origNow := timeNow
	t.Cleanup(func() { timeNow = origNow })

	expiry := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s := New(newFakeStore(), &fakeMeta{}, compress.Nop{}, testLogger(), Options{CredentialExpiry: expiry})

	timeNow = func() time.Time { return expiry.Add(-time.Minute) }
	_, err := s.List(context.Background())
	assert.NoError(t, err)

	timeNow = func() time.Time { return expiry.Add(time.Minute) }
	_, err = s.List(context.Background())
	assert.ErrorIs(t, err, common.ErrCredentialsExpired)
}

// -------- reconcile / download --------

func TestReconcile_ClassifiesBothOrphanClasses(t *testing.T) {
	store := newFakeStore("file/a.png", "file/orphan-blob.png")
	meta := &fakeMeta{records: []metadata.Record{
		record("file/a.png", "cat", "2024-11-02"),
		record("file/orphan-record.png", "ghost", "2024-11-03"),
	}}
	s := newSyncer(store, meta)

	report, err := s.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"file/orphan-blob.png"}, report.OrphanBlobs)
	assert.Equal(t, []string{"file/orphan-record.png"}, report.OrphanRecords)
}

func TestDownload(t *testing.T) {
	store := newFakeStore("file/a.png")
	s := newSyncer(store, &fakeMeta{})

	data, err := s.Download(context.Background(), "file/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes of file/a.png"), data)

	_, err = s.Download(context.Background(), "file/missing.png")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
