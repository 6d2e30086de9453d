package resolver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/iobos/internal/client/api"
	"github.com/alanyang/iobos/internal/client/resolver"
	"github.com/alanyang/iobos/internal/client/session"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

const staticDoc = `{"GENESIS":{"role":"Creator (static)","color":"gold","greeting":"Let there be light.","prompt":"static prompt"}}`

// fakeServer serves the two resolver routes with configurable behaviour and
// counts the requests each one receives.
type fakeServer struct {
	securedStatus int
	securedBody   string
	securedDelay  time.Duration
	staticStatus  int
	staticBody    string

	securedHits atomic.Int32
	staticHits  atomic.Int32
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case api.StaticDocumentPath:
		f.staticHits.Add(1)
		w.WriteHeader(f.staticStatus)
		w.Write([]byte(f.staticBody)) //nolint:errcheck
	default:
		f.securedHits.Add(1)
		if f.securedDelay > 0 {
			select {
			case <-time.After(f.securedDelay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(f.securedStatus)
		w.Write([]byte(f.securedBody)) //nolint:errcheck
	}
}

func newResolver(t *testing.T, f *fakeServer, token string, opts ...resolver.Option) (*resolver.Resolver, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	sess := session.New(token)
	return resolver.New(api.New(srv.URL), sess, opts...), sess
}

func TestResolve_SecuredThenCache(t *testing.T) {
	f := &fakeServer{
		securedStatus: http.StatusOK,
		securedBody:   `{"role":"Creator","color":"gold","greeting":"Hello.","prompt":"secret prompt"}`,
		staticStatus:  http.StatusOK,
		staticBody:    staticDoc,
	}
	r, _ := newResolver(t, f, "tok")

	first := r.Resolve(context.Background(), "GENESIS")
	assert.Equal(t, resolver.SourceSecured, first.Source)
	assert.Equal(t, "secret prompt", first.Record.Prompt)
	assert.False(t, first.Degraded())
	assert.True(t, first.Loaded())

	second := r.Resolve(context.Background(), "genesis")
	assert.Equal(t, resolver.SourceCache, second.Source)
	assert.Equal(t, first.Record, second.Record)

	assert.EqualValues(t, 1, f.securedHits.Load())
	assert.EqualValues(t, 0, f.staticHits.Load())
}

func TestResolve_StaticOnUnauthorized(t *testing.T) {
	f := &fakeServer{
		securedStatus: http.StatusUnauthorized,
		securedBody:   `{"error":"invalid credential","code":"UNAUTHORIZED","reason":"invalid_credential"}`,
		staticStatus:  http.StatusOK,
		staticBody:    staticDoc,
	}
	r, sess := newResolver(t, f, "expired")

	res := r.Resolve(context.Background(), "genesis")
	assert.Equal(t, resolver.SourceStatic, res.Source)
	assert.Equal(t, "Creator (static)", res.Record.Role)
	assert.True(t, res.Degraded())

	_, cached := sess.Cache().Get("GENESIS")
	assert.True(t, cached)
}

func TestResolve_StaticOnServerError(t *testing.T) {
	f := &fakeServer{
		securedStatus: http.StatusInternalServerError,
		securedBody:   `{"error":"internal server error","code":"UNAVAILABLE"}`,
		staticStatus:  http.StatusOK,
		staticBody:    staticDoc,
	}
	r, _ := newResolver(t, f, "tok")

	assert.Equal(t, resolver.SourceStatic, r.Resolve(context.Background(), "GENESIS").Source)
}

func TestResolve_NoCredentialSkipsSecured(t *testing.T) {
	f := &fakeServer{staticStatus: http.StatusOK, staticBody: staticDoc}
	r, _ := newResolver(t, f, "")

	assert.Equal(t, resolver.SourceStatic, r.Resolve(context.Background(), "GENESIS").Source)
	assert.EqualValues(t, 0, f.securedHits.Load())
}

func TestResolve_SecuredTimeout(t *testing.T) {
	f := &fakeServer{
		securedStatus: http.StatusOK,
		securedBody:   `{"role":"late"}`,
		securedDelay:  2 * time.Second,
		staticStatus:  http.StatusOK,
		staticBody:    staticDoc,
	}
	r, _ := newResolver(t, f, "tok", resolver.WithTimeout(50*time.Millisecond))

	start := time.Now()
	res := r.Resolve(context.Background(), "GENESIS")
	assert.Equal(t, resolver.SourceStatic, res.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolve_DefaultNotCached(t *testing.T) {
	f := &fakeServer{
		securedStatus: http.StatusNotFound,
		securedBody:   `{"error":"agent not found","code":"NOT_FOUND"}`,
		staticStatus:  http.StatusOK,
		staticBody:    staticDoc,
	}
	r, sess := newResolver(t, f, "tok")

	res := r.Resolve(context.Background(), "NOBODY")
	assert.Equal(t, resolver.SourceDefault, res.Source)
	assert.Equal(t, domainprompt.Default("NOBODY"), res.Record)
	assert.Equal(t, "The NOBODY agent is currently unavailable. Please try again later.", res.Record.Greeting)
	assert.Equal(t, 0, sess.Cache().Len())

	r.Resolve(context.Background(), "NOBODY")
	assert.EqualValues(t, 2, f.securedHits.Load())
	assert.EqualValues(t, 2, f.staticHits.Load())
}

func TestResolve_StaticMalformed(t *testing.T) {
	f := &fakeServer{
		securedStatus: http.StatusInternalServerError,
		staticStatus:  http.StatusOK,
		staticBody:    `{"GENESIS":`,
	}
	r, _ := newResolver(t, f, "tok")

	res := r.Resolve(context.Background(), "GENESIS")
	assert.Equal(t, resolver.SourceDefault, res.Source)
	assert.Equal(t, domainprompt.DefaultColor, res.Record.Color)
	assert.Empty(t, res.Record.Prompt)
}

func TestResolve_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := resolver.New(api.New(url), session.New("tok"), resolver.WithTimeout(200*time.Millisecond))
	res := r.Resolve(context.Background(), "ORACLE")
	require.Equal(t, resolver.SourceDefault, res.Source)
	assert.Equal(t, domainprompt.DefaultRole, res.Record.Role)
}

func TestResolve_SecuredRecordWithoutPrompt(t *testing.T) {
	f := &fakeServer{
		securedStatus: http.StatusOK,
		securedBody:   `{"role":"Creator","color":"gold","greeting":"Hi"}`,
		staticStatus:  http.StatusOK,
		staticBody:    staticDoc,
	}
	r, _ := newResolver(t, f, "tok")

	res := r.Resolve(context.Background(), "GENESIS")
	assert.Equal(t, resolver.SourceSecured, res.Source)
	assert.Equal(t, "Creator", res.Record.Role)
	assert.False(t, res.Loaded())

	cached := r.Resolve(context.Background(), "GENESIS")
	assert.Equal(t, resolver.SourceCache, cached.Source)
	assert.False(t, cached.Loaded())
}
