// Package resolver turns an agent id into a record, trying the session cache,
// the authenticated API, the static document and finally a built-in default.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alanyang/iobos/internal/client/session"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

// DefaultTimeout bounds each network call made by Resolve.
const DefaultTimeout = 3 * time.Second

// Source names the tier that produced a Resolution.
type Source string

const (
	SourceCache   Source = "cache"
	SourceSecured Source = "secured"
	SourceStatic  Source = "static"
	SourceDefault Source = "default"
)

var errNoCredential = errors.New("no session credential")

// Fetcher is the network side of resolution. *api.Client satisfies it.
type Fetcher interface {
	GetAgentPrompt(ctx context.Context, token string, id domainprompt.AgentID) (domainprompt.Record, error)
	GetStaticDocument(ctx context.Context) (domainprompt.Document, error)
}

type Resolution struct {
	Agent  domainprompt.AgentID `json:"agent" yaml:"agent"`
	Source Source               `json:"source" yaml:"source"`
	Record domainprompt.Record  `json:"record" yaml:"record"`
}

// Loaded reports whether the record carries prompt text.
func (r Resolution) Loaded() bool {
	return r.Record.Loaded()
}

// Degraded reports whether the record came from neither the cache nor the
// authenticated API.
func (r Resolution) Degraded() bool {
	return r.Source == SourceStatic || r.Source == SourceDefault
}

type Resolver struct {
	fetch   Fetcher
	sess    *session.Session
	timeout time.Duration
	log     *slog.Logger
}

type Option func(*Resolver)

func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

func New(fetch Fetcher, sess *session.Session, opts ...Option) *Resolver {
	r := &Resolver{
		fetch:   fetch,
		sess:    sess,
		timeout: DefaultTimeout,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve never fails. Records from the API or the static document are cached
// in the session; the default placeholder is not.
func (r *Resolver) Resolve(ctx context.Context, id domainprompt.AgentID) Resolution {
	cache := r.sess.Cache()

	if rec, ok := cache.Get(id); ok {
		r.log.Debug("agent prompt from cache", "agent", id)
		return Resolution{Agent: id, Source: SourceCache, Record: rec}
	}

	rec, err := r.secured(ctx, id)
	if err == nil {
		cache.Set(id, rec)
		return Resolution{Agent: id, Source: SourceSecured, Record: rec}
	}
	r.log.Debug("secured prompt route unavailable, falling back to static document", "agent", id, "error", err)

	rec, err = r.static(ctx, id)
	if err == nil {
		cache.Set(id, rec)
		return Resolution{Agent: id, Source: SourceStatic, Record: rec}
	}
	r.log.Warn("agent prompt unavailable, using default", "agent", id, "error", err)

	return Resolution{Agent: id, Source: SourceDefault, Record: domainprompt.Default(id)}
}

func (r *Resolver) secured(ctx context.Context, id domainprompt.AgentID) (domainprompt.Record, error) {
	token := r.sess.Token()
	if token == "" {
		return domainprompt.Record{}, errNoCredential
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.fetch.GetAgentPrompt(ctx, token, id)
}

func (r *Resolver) static(ctx context.Context, id domainprompt.AgentID) (domainprompt.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc, err := r.fetch.GetStaticDocument(ctx)
	if err != nil {
		return domainprompt.Record{}, err
	}
	_, rec, ok := doc.Lookup(id)
	if !ok {
		return domainprompt.Record{}, domainprompt.ErrNotFound
	}
	return rec, nil
}
