package auth

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/shared"
)

const persistTimeout = 2 * time.Second

// State is the visitor's identity as the pages see it.
type State struct {
	User    *api.User
	Loading bool
}

// Result is the outcome of login and register.
type Result struct {
	Success bool
	Error   string
	User    *api.User
}

type credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type registration struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	FullName string `validate:"required"`
	Phone    string
}

// Context is one visitor's auth state for the duration of a request. All
// methods are safe for concurrent use.
type Context struct {
	provider   *Provider
	sess       *shared.Session
	store      *Store
	caller     *api.Caller
	remoteAddr string

	mu    sync.RWMutex
	state State

	startOnce  sync.Once
	done       chan struct{}
	expireOnce sync.Once
	expired    atomic.Bool
}

// Start runs the identity check once. Without a token it resolves at once;
// otherwise the check runs in the background, detached from the request
// cancellation so its result still reaches the identity cache.
func (c *Context) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		token := c.store.Token()
		if token == "" {
			c.finish(nil)
			return
		}
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.provider.checkTimeout)
		go func() {
			defer cancel()
			user, err := c.provider.resolve(checkCtx, c.caller, token)
			if err != nil {
				c.provider.logger.Info("session check failed", slog.Any("error", err))
				c.store.Clear()
				c.persist(ctx)
				c.finish(nil)
				return
			}
			c.mu.Lock()
			if cached := c.store.User(); !c.expired.Load() && (cached == nil || *cached != *user) {
				if err := c.store.Set(token, user); err != nil {
					c.provider.logger.Warn("store user", slog.Any("error", err))
				}
			}
			c.mu.Unlock()
			c.persist(ctx)
			c.finish(user)
		}()
	})
}

// persist saves store changes made after the response was committed. The
// session middleware saves anything earlier.
func (c *Context) persist(ctx context.Context) {
	if c.provider.sessions == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := c.provider.sessions.Persist(saveCtx, c.sess); err != nil {
		c.provider.logger.Warn("persist session", slog.Any("error", err))
	}
}

func (c *Context) finish(user *api.User) {
	c.mu.Lock()
	if !c.expired.Load() {
		c.state.User = user
	}
	c.state.Loading = false
	c.mu.Unlock()
	close(c.done)
}

// Await blocks until the identity check completed or ctx ends.
func (c *Context) Await(ctx context.Context) error {
	c.Start(ctx)
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitWithin waits at most d and reports whether the check completed.
func (c *Context) AwaitWithin(ctx context.Context, d time.Duration) bool {
	c.Start(ctx)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-c.done:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// State returns a snapshot.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns the signed-in user or nil.
func (c *Context) User() *api.User {
	return c.State().User
}

// IsAdmin reports whether the signed-in user has the admin role.
func (c *Context) IsAdmin() bool {
	return c.User().IsAdmin()
}

// Caller returns an API caller carrying the visitor's token.
func (c *Context) Caller() *api.Caller {
	return c.caller
}

// CachedUser returns the user copy kept in the session store.
func (c *Context) CachedUser() *api.User {
	return c.store.User()
}

// Expired reports whether Expire ran during this request.
func (c *Context) Expired() bool {
	return c.expired.Load()
}

// Login signs the visitor in. Failures leave the state untouched.
func (c *Context) Login(ctx context.Context, email, password string) Result {
	_ = c.Await(ctx)
	form := credentials{Email: strings.TrimSpace(email), Password: password}
	if err := c.provider.validate.Struct(form); err != nil {
		c.provider.metrics.AuthAttempt(EventLogin, "invalid")
		return Result{Error: locale.T(locale.CredentialsMissing)}
	}

	resp, err := c.caller.Login(ctx, form.Email, form.Password)
	if err != nil {
		c.provider.logger.Warn("login call", slog.Any("error", err))
		c.provider.metrics.AuthAttempt(EventLogin, "error")
		return Result{Error: locale.T(locale.NetworkError)}
	}
	if !resp.Success || resp.SessionToken == "" || resp.User == nil {
		c.provider.metrics.AuthAttempt(EventLogin, "rejected")
		c.provider.record(ctx, shared.AuthEvent{Kind: EventLoginFailed, Email: form.Email, RemoteAddr: c.remoteAddr})
		return Result{Error: messageOr(resp.Error, locale.LoginFailed)}
	}

	if err := c.establish(ctx, resp.SessionToken, resp.User); err != nil {
		c.provider.logger.Error("store session", slog.Any("error", err))
		return Result{Error: locale.T(locale.GenericError)}
	}
	c.provider.metrics.AuthAttempt(EventLogin, "success")
	c.provider.record(ctx, shared.AuthEvent{
		Kind:        EventLogin,
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
		Fingerprint: c.provider.fingerprint(resp.SessionToken),
		RemoteAddr:  c.remoteAddr,
		Meta:        map[string]any{"role": resp.User.Role},
	})
	return Result{Success: true, User: resp.User}
}

// Register creates an account and signs the visitor in when the API hands
// out a usable token. A failed follow-up user fetch still reports success;
// the token is dropped so storage and state agree.
func (c *Context) Register(ctx context.Context, in api.Registration) Result {
	_ = c.Await(ctx)
	form := registration{
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
		FullName: strings.TrimSpace(in.FullName),
		Phone:    strings.TrimSpace(in.Phone),
	}
	if err := c.provider.validate.Struct(form); err != nil {
		c.provider.metrics.AuthAttempt(EventRegister, "invalid")
		return Result{Error: locale.T(locale.RegisterInvalid)}
	}

	resp, err := c.caller.Register(ctx, api.Registration{
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
		Phone:    form.Phone,
	})
	if err != nil {
		c.provider.logger.Warn("register call", slog.Any("error", err))
		c.provider.metrics.AuthAttempt(EventRegister, "error")
		return Result{Error: locale.T(locale.NetworkError)}
	}
	if !resp.Success {
		c.provider.metrics.AuthAttempt(EventRegister, "rejected")
		return Result{Error: messageOr(resp.Error, locale.RegisterFailed)}
	}
	c.provider.metrics.AuthAttempt(EventRegister, "success")
	c.provider.record(ctx, shared.AuthEvent{Kind: EventRegister, UserID: resp.UserID, Email: form.Email, RemoteAddr: c.remoteAddr})
	if resp.SessionToken == "" {
		return Result{Success: true}
	}

	if err := c.store.Set(resp.SessionToken, nil); err != nil {
		c.provider.logger.Error("store token", slog.Any("error", err))
		return Result{Success: true}
	}
	identity, err := c.caller.CurrentUser(ctx)
	if err != nil || !identity.Authenticated() {
		c.provider.logger.Warn("fetch user after registration", slog.Any("error", err), slog.String("message", identity.Message))
		c.store.Clear()
		return Result{Success: true}
	}
	if err := c.establish(ctx, resp.SessionToken, identity.User); err != nil {
		c.provider.logger.Error("store session", slog.Any("error", err))
		c.store.Clear()
		return Result{Success: true}
	}
	return Result{Success: true, User: identity.User}
}

// Logout tells the API and then clears the visitor's session regardless of
// the answer.
func (c *Context) Logout(ctx context.Context) {
	_ = c.Await(ctx)
	token := c.store.Token()
	user := c.User()
	if token != "" {
		if err := c.caller.Logout(ctx); err != nil {
			c.provider.logger.Info("logout call", slog.Any("error", err))
		}
	}
	c.provider.forget(ctx, token)
	c.store.Clear()
	c.setUser(nil)
	if c.provider.sessions != nil {
		c.provider.sessions.Renew(c.sess)
	}
	ev := shared.AuthEvent{Kind: EventLogout, Fingerprint: c.provider.fingerprint(token), RemoteAddr: c.remoteAddr}
	if user != nil {
		ev.UserID = user.ID
		ev.Email = user.Email
	}
	c.provider.record(ctx, ev)
}

// Expire reacts to a rejected token. Only the first call in a request clears
// the session and reports true.
func (c *Context) Expire(ctx context.Context) bool {
	first := false
	c.expireOnce.Do(func() {
		first = true
		token := c.store.Token()
		user := c.User()
		c.mu.Lock()
		c.expired.Store(true)
		c.mu.Unlock()
		c.store.Clear()
		c.setUser(nil)
		c.provider.forget(ctx, token)
		c.provider.metrics.SessionExpired()
		ev := shared.AuthEvent{Kind: EventExpired, Fingerprint: c.provider.fingerprint(token), RemoteAddr: c.remoteAddr}
		if user != nil {
			ev.UserID = user.ID
		}
		c.provider.record(ctx, ev)
	})
	return first
}

func (c *Context) establish(ctx context.Context, token string, user *api.User) error {
	if err := c.store.Set(token, user); err != nil {
		return err
	}
	c.provider.forget(ctx, token)
	if c.provider.sessions != nil {
		c.provider.sessions.Renew(c.sess)
	}
	c.setUser(user)
	return nil
}

func (c *Context) setUser(user *api.User) {
	c.mu.Lock()
	c.state.User = user
	c.mu.Unlock()
}

func messageOr(message, fallbackKey string) string {
	if strings.TrimSpace(message) != "" {
		return message
	}
	return locale.T(fallbackKey)
}
