package emit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/filestore"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSTarget_CreatesDirectoryAndWrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := New(NewFSTarget(fs, "out/models"), nil)

	err := e.Write(context.Background(), []File{
		{Name: "users.js", Data: []byte("a")},
		{Name: "DB__users.hx", Data: []byte("b")},
	})
	require.NoError(t, err)

	isDir, err := afero.IsDir(fs, "out/models")
	require.NoError(t, err)
	assert.True(t, isDir)

	got, err := afero.ReadFile(fs, "out/models/users.js")
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))

	got, err = afero.ReadFile(fs, "out/models/DB__users.hx")
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
}

func TestFSTarget_ExistingDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("models", 0o755))
	require.NoError(t, afero.WriteFile(fs, "models/keep.txt", []byte("x"), 0o644))

	require.NoError(t, NewFSTarget(fs, "models").Prepare(context.Background()))

	exists, err := afero.Exists(fs, "models/keep.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFSTarget_OverwritesFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	target := NewFSTarget(fs, "models")
	e := New(target, nil)

	require.NoError(t, e.Write(context.Background(), []File{{Name: "t.js", Data: []byte("old")}}))
	require.NoError(t, e.Write(context.Background(), []File{{Name: "t.js", Data: []byte("new")}}))

	got, err := afero.ReadFile(fs, "models/t.js")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestFSTarget_PathIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "models")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))

	err := New(NewFSTarget(afero.NewOsFs(), blocker), nil).Write(context.Background(), []File{{Name: "a.js"}})

	require.Error(t, err)
	assert.True(t, errs.IsWriteFailed(err))
}

// recordingTarget records writes and fails the configured names.
type recordingTarget struct {
	mu       sync.Mutex
	written  []string
	failOn   string
	prepared bool
	prepErr  error
}

func (r *recordingTarget) Prepare(context.Context) error {
	r.prepared = true
	return r.prepErr
}

func (r *recordingTarget) WriteFile(_ context.Context, name string, _ []byte) error {
	if name == r.failOn {
		return errs.New(errs.ErrKindWriteFailed, "disk full")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, name)
	return nil
}

func TestEmitter_SurfacesWriteFailure(t *testing.T) {
	target := &recordingTarget{failOn: "b.js"}

	err := New(target, nil).Write(context.Background(), []File{{Name: "b.js"}})

	require.Error(t, err)
	assert.True(t, errs.IsWriteFailed(err))
	assert.Empty(t, target.written)
}

func TestEmitter_PrepareFailureStopsWrites(t *testing.T) {
	target := &recordingTarget{prepErr: errs.New(errs.ErrKindPermissionDenied, "read-only")}

	err := New(target, nil).Write(context.Background(), []File{{Name: "a.js"}})

	assert.True(t, errs.IsPermissionDenied(err))
	assert.True(t, target.prepared)
	assert.Empty(t, target.written)
}

func TestEmitter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := &recordingTarget{}
	err := New(target, nil).Write(ctx, []File{{Name: "a.js"}, {Name: "b.js"}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, target.written)
}

// memStore is an in-memory filestore.Store.
type memStore struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string]string
	types   map[string]string
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{buckets: map[string]bool{}, objects: map[string]string{}, types: map[string]string{}}
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

func (m *memStore) EnsureBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[bucket] = true
	return nil
}

func (m *memStore) PutObject(_ context.Context, bucket, key string, data []byte, contentType string) (*filestore.ObjectInfo, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = string(data)
	m.types[bucket+"/"+key] = contentType
	return &filestore.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: contentType}, nil
}

func TestObjectTarget(t *testing.T) {
	store := newMemStore()
	e := New(NewObjectTarget(store, "generated", "models"), nil)

	err := e.Write(context.Background(), []File{
		{Name: "users.js", Data: []byte("js")},
		{Name: "DB__users.hx", Data: []byte("hx")},
	})
	require.NoError(t, err)

	assert.True(t, store.buckets["generated"])
	assert.Equal(t, "js", store.objects["generated/models/users.js"])
	assert.Equal(t, "hx", store.objects["generated/models/DB__users.hx"])
	assert.Equal(t, "text/javascript; charset=utf-8", store.types["generated/models/users.js"])
	assert.Equal(t, "text/x-haxe; charset=utf-8", store.types["generated/models/DB__users.hx"])
}

func TestObjectTarget_Errors(t *testing.T) {
	t.Run("missing bucket", func(t *testing.T) {
		err := NewObjectTarget(newMemStore(), "", "").Prepare(context.Background())
		assert.True(t, errs.IsInvalidInput(err))
	})

	t.Run("put failure", func(t *testing.T) {
		store := newMemStore()
		store.putErr = errors.New("connection reset")
		err := NewObjectTarget(store, "b", "").WriteFile(context.Background(), "a.js", nil)
		assert.True(t, errs.IsWriteFailed(err))
	})
}
