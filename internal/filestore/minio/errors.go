package minio

import (
	"context"
	"errors"
	"net/http"

	"github.com/koustreak/automodel/internal/errs"
	miniogo "github.com/minio/minio-go/v7"
)

// codeKinds classifies S3 error codes, which take precedence over the
// HTTP status of the response.
var codeKinds = map[string]errs.ErrKind{
	"NoSuchBucket":          errs.ErrKindNotFound,
	"NoSuchKey":             errs.ErrKindNotFound,
	"AccessDenied":          errs.ErrKindPermissionDenied,
	"AllAccessDisabled":     errs.ErrKindPermissionDenied,
	"InvalidAccessKeyId":    errs.ErrKindPermissionDenied,
	"SignatureDoesNotMatch": errs.ErrKindPermissionDenied,
	"InvalidBucketName":     errs.ErrKindInvalidInput,
	"InvalidObjectName":     errs.ErrKindInvalidInput,
	"KeyTooLongError":       errs.ErrKindInvalidInput,
	"EntityTooLarge":        errs.ErrKindInvalidInput,
	"RequestTimeout":        errs.ErrKindTimeout,
	"SlowDown":              errs.ErrKindTimeout,
}

func statusKind(status int) (errs.ErrKind, bool) {
	switch status {
	case http.StatusNotFound:
		return errs.ErrKindNotFound, true
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.ErrKindPermissionDenied, true
	case http.StatusBadRequest:
		return errs.ErrKindInvalidInput, true
	case http.StatusConflict:
		return errs.ErrKindWriteFailed, true
	}
	return errs.ErrKindUnknown, false
}

// mapError translates a MinIO SDK error into a *errs.Error. Errors without
// an S3 response are treated as connection failures.
func mapError(err error, msg string) *errs.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var resp miniogo.ErrorResponse
	if errors.As(err, &resp) {
		if kind, ok := codeKinds[resp.Code]; ok {
			return errs.Wrap(kind, msg, err)
		}
		if kind, ok := statusKind(resp.StatusCode); ok {
			return errs.Wrap(kind, msg, err)
		}
	}
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
