package minio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/filestore"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"canceled wrapped", fmt.Errorf("put: %w", context.Canceled), errs.ErrKindTimeout},
		{"404", miniogo.ErrorResponse{StatusCode: http.StatusNotFound}, errs.ErrKindNotFound},
		{"403", miniogo.ErrorResponse{StatusCode: http.StatusForbidden}, errs.ErrKindPermissionDenied},
		{"400", miniogo.ErrorResponse{StatusCode: http.StatusBadRequest}, errs.ErrKindInvalidInput},
		{"409", miniogo.ErrorResponse{StatusCode: http.StatusConflict}, errs.ErrKindWriteFailed},
		{"no such bucket code", miniogo.ErrorResponse{Code: "NoSuchBucket"}, errs.ErrKindNotFound},
		{"access denied code", miniogo.ErrorResponse{Code: "AccessDenied"}, errs.ErrKindPermissionDenied},
		{"slow down code", miniogo.ErrorResponse{Code: "SlowDown"}, errs.ErrKindTimeout},
		{"network", errors.New("dial tcp: connection refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.err, got.Cause)
		})
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(context.Background(), filestore.DefaultConfig("", "key", "secret"))
	assert.True(t, errs.IsInvalidInput(err))
}
