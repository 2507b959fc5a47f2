package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koustreak/automodel/internal/emit"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticBuild writes a fixed set of files.
func staticBuild(files map[string]string) BuildFunc {
	return func(ctx context.Context, target emit.Target) error {
		if err := target.Prepare(ctx); err != nil {
			return err
		}
		for name, body := range files {
			if err := target.WriteFile(ctx, name, []byte(body)); err != nil {
				return err
			}
		}
		return nil
	}
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, New(staticBuild(nil), nil), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestFiles_BeforeBuild(t *testing.T) {
	s := New(staticBuild(nil), nil)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/files").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/files/users.js").Code)
}

func TestRegenerateAndServe(t *testing.T) {
	s := New(staticBuild(map[string]string{
		"users.js":     "module.exports = function() {};\n",
		"DB__users.hx": "typedef DB__users = {};\n",
	}), nil)

	rec := do(t, s, http.MethodPost, "/regenerate")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.NotEmpty(t, snap.ID)
	require.Len(t, snap.Files, 2)
	assert.Equal(t, "DB__users.hx", snap.Files[0].Name)
	assert.Equal(t, "text/x-haxe; charset=utf-8", snap.Files[0].ContentType)
	assert.Equal(t, "users.js", snap.Files[1].Name)
	assert.Equal(t, int64(len("module.exports = function() {};\n")), snap.Files[1].Size)

	rec = do(t, s, http.MethodGet, "/files")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = do(t, s, http.MethodGet, "/files/users.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "module.exports = function() {};\n", rec.Body.String())
	assert.Equal(t, "text/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, snap.ID, rec.Header().Get("X-Build-Id"))

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/files/missing.js").Code)
}

func TestRegenerate_FailureKeepsSnapshot(t *testing.T) {
	fail := false
	s := New(func(ctx context.Context, target emit.Target) error {
		if fail {
			return errs.New(errs.ErrKindConnectionFailed, "database unreachable")
		}
		return staticBuild(map[string]string{"a.js": "a"})(ctx, target)
	}, nil)

	first, err := s.Regenerate(context.Background())
	require.NoError(t, err)

	fail = true
	rec := do(t, s, http.MethodPost, "/regenerate")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "database unreachable"))

	assert.Same(t, first, s.Current())
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/files/a.js").Code)
}

func TestRegenerate_EachBuildIsFresh(t *testing.T) {
	files := map[string]string{"a.js": "a", "b.js": "b"}
	s := New(func(ctx context.Context, target emit.Target) error {
		return staticBuild(files)(ctx, target)
	}, nil)

	first, err := s.Regenerate(context.Background())
	require.NoError(t, err)
	assert.Len(t, first.Files, 2)

	delete(files, "b.js")
	second, err := s.Regenerate(context.Background())
	require.NoError(t, err)
	assert.Len(t, second.Files, 1)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.Canceled))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(errs.New(errs.ErrKindTimeout, "slow")))
	assert.Equal(t, http.StatusBadRequest, statusFor(errs.New(errs.ErrKindInvalidInput, "bad")))
	assert.Equal(t, http.StatusBadGateway, statusFor(errs.New(errs.ErrKindPermissionDenied, "denied")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errs.New(errs.ErrKindWriteFailed, "disk")))
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, New(staticBuild(nil), nil), http.MethodGet, "/regenerate")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
