package emit

import (
	"context"
	"path/filepath"

	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/filestore"
	"github.com/spf13/afero"
)

// Target is where generated files end up.
type Target interface {
	// Prepare makes the destination ready, e.g. creates the output directory.
	Prepare(ctx context.Context) error

	// WriteFile stores one generated file under name.
	WriteFile(ctx context.Context, name string, data []byte) error
}

// FSTarget writes into a directory of an afero filesystem.
type FSTarget struct {
	fs  afero.Fs
	dir string
}

// NewFSTarget returns a target writing below dir. A nil fs means the OS
// filesystem.
func NewFSTarget(fs afero.Fs, dir string) *FSTarget {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FSTarget{fs: fs, dir: dir}
}

// Dir returns the output directory.
func (t *FSTarget) Dir() string { return t.dir }

// Fs returns the underlying filesystem.
func (t *FSTarget) Fs() afero.Fs { return t.fs }

// Prepare creates the output directory when it is missing or not a
// directory. A regular file in the way makes creation fail.
func (t *FSTarget) Prepare(_ context.Context) error {
	if info, err := t.fs.Stat(t.dir); err == nil && info.IsDir() {
		return nil
	}
	if err := t.fs.MkdirAll(t.dir, 0o755); err != nil {
		return errs.Wrap(errs.ErrKindWriteFailed, "create directory "+t.dir, err)
	}
	// some filesystems report success for MkdirAll over an existing file
	info, err := t.fs.Stat(t.dir)
	if err != nil {
		return errs.Wrap(errs.ErrKindWriteFailed, "create directory "+t.dir, err)
	}
	if !info.IsDir() {
		return errs.Newf(errs.ErrKindWriteFailed, "create directory %s: path exists and is not a directory", t.dir)
	}
	return nil
}

func (t *FSTarget) WriteFile(_ context.Context, name string, data []byte) error {
	p := filepath.Join(t.dir, name)
	if err := afero.WriteFile(t.fs, p, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrKindWriteFailed, "write "+p, err)
	}
	return nil
}

// ObjectTarget publishes files to a bucket of an object store.
type ObjectTarget struct {
	store filestore.Store
	dest  filestore.Config
}

// NewObjectTarget returns a target writing to bucket, with every key
// prefixed by prefix.
func NewObjectTarget(store filestore.Store, bucket, prefix string) *ObjectTarget {
	return &ObjectTarget{store: store, dest: filestore.Config{Bucket: bucket, Prefix: prefix}}
}

// Prepare creates the bucket unless it exists.
func (t *ObjectTarget) Prepare(ctx context.Context) error {
	if t.dest.Bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "object target needs a bucket")
	}
	return t.store.EnsureBucket(ctx, t.dest.Bucket)
}

func (t *ObjectTarget) WriteFile(ctx context.Context, name string, data []byte) error {
	key := t.dest.ObjectKey(name)
	if _, err := t.store.PutObject(ctx, t.dest.Bucket, key, data, filestore.ContentTypeFor(name)); err != nil {
		return errs.Wrap(errs.ErrKindWriteFailed, "put "+t.dest.Bucket+"/"+key, err)
	}
	return nil
}
