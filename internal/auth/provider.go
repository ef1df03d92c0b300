// Package auth owns the visitor's identity: the session token store, the
// per-request auth context, the route guards and the session expiry boundary.
package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/platform/cache"
	"github.com/sakura-salon/sakura/internal/shared"
)

// Event kinds recorded in auth_events.
const (
	EventLogin       = "login"
	EventLoginFailed = "login_failed"
	EventRegister    = "register"
	EventLogout      = "logout"
	EventExpired     = "expired"
)

// EventRecorder persists auth events.
type EventRecorder interface {
	Record(ctx context.Context, ev shared.AuthEvent) error
}

// Metrics receives auth outcomes.
type Metrics interface {
	AuthAttempt(action, outcome string)
	SessionExpired()
}

type noopMetrics struct{}

func (noopMetrics) AuthAttempt(string, string) {}
func (noopMetrics) SessionExpired()            {}

// ProviderConfig wires a Provider. Only Client is required.
type ProviderConfig struct {
	Client   *api.Client
	Sessions *shared.SessionManager
	// Identities caches resolved users by token fingerprint.
	Identities *cache.JSON
	Events     EventRecorder
	Metrics    Metrics
	Logger     *slog.Logger
	// FingerprintKey keys the blake2b hash that hides tokens in cache keys
	// and audit rows.
	FingerprintKey string
	// CheckTimeout bounds the startup identity check.
	CheckTimeout time.Duration
}

// Provider creates one Context per request.
type Provider struct {
	client       *api.Client
	sessions     *shared.SessionManager
	identities   *cache.JSON
	events       EventRecorder
	metrics      Metrics
	logger       *slog.Logger
	key          []byte
	checkTimeout time.Duration
	validate     *validator.Validate
	group        singleflight.Group
}

// NewProvider validates cfg.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.Client == nil {
		return nil, errors.New("auth: api client required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	key := []byte(cfg.FingerprintKey)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	timeout := cfg.CheckTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		client:       cfg.Client,
		sessions:     cfg.Sessions,
		identities:   cfg.Identities,
		events:       cfg.Events,
		metrics:      metrics,
		logger:       logger,
		key:          key,
		checkTimeout: timeout,
		validate:     validator.New(),
	}, nil
}

// Middleware binds a Context to every request and starts its identity check.
// It must run inside the session middleware.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFrom(r.Context())
		if sess == nil {
			p.logger.Error("auth middleware without session")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		ac := p.NewContext(sess, r.RemoteAddr)
		ac.Start(r.Context())
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), ac)))
	})
}

// NewContext builds an unstarted Context for sess.
func (p *Provider) NewContext(sess *shared.Session, remoteAddr string) *Context {
	store := NewStore(sess)
	return &Context{
		provider:   p,
		sess:       sess,
		store:      store,
		caller:     p.client.As(store),
		remoteAddr: remoteAddr,
		state:      State{Loading: true},
		done:       make(chan struct{}),
	}
}

func (p *Provider) fingerprint(token string) string {
	if token == "" {
		return ""
	}
	h, err := blake2b.New256(p.key)
	if err != nil {
		// Unreachable: the key is capped at blake2b.Size.
		panic(err)
	}
	_, _ = h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// rejectionTTL is how long a rejected token skips the current-user call.
const rejectionTTL = time.Minute

func identityKey(fingerprint string) string {
	return "sakura:identity:" + fingerprint
}

func rejectedKey(fingerprint string) string {
	return "sakura:identity:rejected:" + fingerprint
}

// resolve answers the startup check for token, preferring the identity cache
// and collapsing concurrent checks of the same token. A token the API turned
// down stays rejected for rejectionTTL without another call.
func (p *Provider) resolve(ctx context.Context, caller *api.Caller, token string) (*api.User, error) {
	fp := p.fingerprint(token)
	var message string
	if hit, err := p.identities.Get(ctx, rejectedKey(fp), &message); err != nil {
		p.logger.Warn("identity cache read", slog.Any("error", err))
	} else if hit {
		return nil, &api.RejectedError{Message: message}
	}

	var cached api.User
	if hit, err := p.identities.Get(ctx, identityKey(fp), &cached); err != nil {
		p.logger.Warn("identity cache read", slog.Any("error", err))
	} else if hit {
		return &cached, nil
	}

	value, err, _ := p.group.Do(fp, func() (any, error) {
		identity, err := caller.CurrentUser(ctx)
		var unauthorized *api.UnauthorizedError
		if errors.As(err, &unauthorized) {
			p.reject(ctx, fp, unauthorized.Message)
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		if !identity.Authenticated() {
			p.reject(ctx, fp, identity.Message)
			return nil, &api.RejectedError{Message: identity.Message}
		}
		if err := p.identities.Put(ctx, identityKey(fp), identity.User, 0); err != nil {
			p.logger.Warn("identity cache write", slog.Any("error", err))
		}
		return identity.User, nil
	})
	if err != nil {
		return nil, err
	}
	user := *value.(*api.User)
	return &user, nil
}

func (p *Provider) reject(ctx context.Context, fingerprint, message string) {
	if err := p.identities.Put(ctx, rejectedKey(fingerprint), message, rejectionTTL); err != nil {
		p.logger.Warn("identity cache write", slog.Any("error", err))
	}
}

func (p *Provider) forget(ctx context.Context, token string) {
	if token == "" {
		return
	}
	fp := p.fingerprint(token)
	for _, key := range []string{identityKey(fp), rejectedKey(fp)} {
		if err := p.identities.Delete(ctx, key); err != nil {
			p.logger.Warn("identity cache delete", slog.Any("error", err))
		}
	}
}

func (p *Provider) record(ctx context.Context, ev shared.AuthEvent) {
	if p.events == nil {
		return
	}
	if err := p.events.Record(ctx, ev); err != nil {
		p.logger.Warn("record auth event", slog.String("kind", ev.Kind), slog.Any("error", err))
	}
}

type contextKey struct{}

// WithContext stores ac in ctx.
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// Lookup returns the Context carried by ctx.
func Lookup(ctx context.Context) (*Context, bool) {
	ac, ok := ctx.Value(contextKey{}).(*Context)
	return ac, ok && ac != nil
}

// FromContext returns the Context carried by ctx. It panics outside the
// Provider middleware.
func FromContext(ctx context.Context) *Context {
	ac, ok := Lookup(ctx)
	if !ok {
		panic("auth: FromContext called outside the auth provider")
	}
	return ac
}
