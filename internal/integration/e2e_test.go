package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/iobos/internal/client/activation"
	"github.com/alanyang/iobos/internal/client/api"
	"github.com/alanyang/iobos/internal/client/resolver"
	"github.com/alanyang/iobos/internal/client/session"
	"github.com/alanyang/iobos/internal/client/watch"
	domainauth "github.com/alanyang/iobos/internal/domain/auth"
	"github.com/alanyang/iobos/internal/domain/event"
	"github.com/alanyang/iobos/internal/wire"
)

// ── test harness ──────────────────────────────────────────────────────────────

type harness struct {
	srv    *httptest.Server
	client *api.Client
}

func newHarness(t *testing.T, role domainauth.Role) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := wire.Config{
		Port:           "0",
		JWTSecret:      "integration-secret",
		TokenTTL:       time.Hour,
		PromptsPath:    filepath.Join(dir, "agent-prompts.json"),
		StaticPath:     filepath.Join(dir, "agent-prompts.json"),
		LoginEmail:     "ops@iobos.test",
		LoginPassword:  "hunter2",
		InvitationCode: "IOBOS2024",
		LoginRole:      role,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	app, err := wire.BuildWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	srv := httptest.NewServer(app.Server.Handler)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, client: api.New(srv.URL)}
}

func (h *harness) login(t *testing.T) string {
	t.Helper()
	token, err := h.client.Login(context.Background(), domainauth.LoginRequest{
		Email:          "ops@iobos.test",
		Password:       "hunter2",
		InvitationCode: "IOBOS2024",
	})
	require.NoError(t, err)
	return token
}

// put returns the response status, or 0 if the request could not be sent. It
// is safe to call from a non-test goroutine.
func (h *harness) put(token, id, body string) int {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPut,
		h.srv.URL+"/api/agent-prompts/"+id, strings.NewReader(body))
	if err != nil {
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0
	}
	resp.Body.Close()
	return resp.StatusCode
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestResolveTiers(t *testing.T) {
	h := newHarness(t, domainauth.RoleUser)
	sess := session.New(h.login(t))
	r := resolver.New(h.client, sess)
	ctx := context.Background()

	res := r.Resolve(ctx, "GENESIS")
	assert.Equal(t, resolver.SourceSecured, res.Source)
	assert.Equal(t, "Strategic Insight Analyst", res.Record.Role)
	assert.NotEmpty(t, res.Record.Prompt)

	assert.Equal(t, resolver.SourceCache, r.Resolve(ctx, "genesis").Source)

	// A forged credential is rejected by the API; the static copy still answers.
	anon := resolver.New(h.client, session.New("io-bos-token-1700000000"))
	res = anon.Resolve(ctx, "ORACLE")
	assert.Equal(t, resolver.SourceStatic, res.Source)
	assert.Equal(t, "Scale & Tool Architect", res.Record.Role)

	res = r.Resolve(ctx, "NOBODY")
	assert.Equal(t, resolver.SourceDefault, res.Source)
	assert.Equal(t, "gray", res.Record.Color)
}

func TestUpdate_UserForbidden(t *testing.T) {
	h := newHarness(t, domainauth.RoleUser)

	assert.Equal(t, http.StatusForbidden, h.put(h.login(t), "GENESIS", `{"color":"blue"}`))
	assert.Equal(t, http.StatusBadRequest, h.put("", "GENESIS", `{"colour":"blue"}`))
	assert.Equal(t, http.StatusUnauthorized, h.put("", "GENESIS", `{"color":"blue"}`))
}

func TestUpdate_InvalidatesWatchingSession(t *testing.T) {
	h := newHarness(t, domainauth.RoleAdmin)
	token := h.login(t)
	sess := session.New(token)
	facade := activation.New(resolver.New(h.client, sess), sess)

	before := facade.Activate(context.Background(), "EXODUS")
	require.Equal(t, "crimson", before.Color)
	require.Equal(t, "secured", before.Source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updated := make(chan event.Event, 1)
	go watch.Run(ctx, h.srv.URL, sess, func(e event.Event) { //nolint:errcheck
		select {
		case updated <- e:
		default:
		}
	})

	// The hub has no client count exposed over HTTP; retry the update until the
	// watcher has connected and seen an event.
	var got event.Event
	require.Eventually(t, func() bool {
		if h.put(token, "exodus", `{"color":"blue"}`) != http.StatusOK {
			return false
		}
		select {
		case got = <-updated:
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, event.TypePromptUpdated, got.Type)

	after := facade.Activate(context.Background(), "EXODUS")
	assert.Equal(t, "blue", after.Color)
	assert.Equal(t, "secured", after.Source)
	assert.Equal(t, before.Role, after.Role)
}
