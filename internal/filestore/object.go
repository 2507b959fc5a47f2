package filestore

import (
	"strings"
	"time"
)

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "models/users.js").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	// ContentType is the MIME type.
	ContentType string

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string

	// LastModified is when the object was last written.
	// May be zero if the backend does not report it on upload.
	LastModified time.Time
}

// ContentTypeFor returns the MIME type used for a generated file name.
func ContentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(name, ".js"):
		return "text/javascript; charset=utf-8"
	case strings.HasSuffix(name, ".hx"):
		return "text/x-haxe; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
