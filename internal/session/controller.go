// Package session owns the single source of truth for the current
// authenticated user. The controller subscribes to the identity provider's
// auth-state stream, reconciles it with the local session cache, and
// exposes sign-in, sign-out, and password reset with normalized outcomes.
package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"worksync/api/internal/cache"
	"worksync/api/internal/faults"
	"worksync/api/internal/identity"
	"worksync/api/internal/models"
	"worksync/api/internal/roles"
)

// CacheKeyAuthState holds the serialized last-known session.
const CacheKeyAuthState = "userAuthState"

// Snapshot is the read-only view consumers receive. Session is a copy;
// mutating it has no effect on controller state.
type Snapshot struct {
	Session *models.Session
	Loading bool
}

type Controller struct {
	mu       sync.Mutex
	provider identity.Provider
	resolver *roles.Resolver
	cache    cache.Store
	log      zerolog.Logger

	sess    *models.Session
	loading bool
	// answered flips once the auth-state stream delivers its first
	// present-or-absent answer. From then on cache-derived previews are
	// permanently disabled: the stream is the only writer of the session.
	answered bool

	subs        map[int]func(Snapshot)
	nextSub     int
	unsubscribe func()
}

// NewController subscribes to the provider stream and, if the stream has
// not answered synchronously, applies a cached session as a non-terminal
// preview while loading stays true.
func NewController(provider identity.Provider, resolver *roles.Resolver, cacheStore cache.Store, log zerolog.Logger) *Controller {
	c := &Controller{
		provider: provider,
		resolver: resolver,
		cache:    cacheStore,
		log:      log,
		loading:  true,
		subs:     make(map[int]func(Snapshot)),
	}

	c.unsubscribe = provider.OnAuthStateChange(c.handleAuthState)
	c.restoreFromCache()
	return c
}

// Close releases the auth-state subscription.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Controller) handleAuthState(id *identity.Identity) {
	ctx := context.Background()

	if id == nil {
		c.mu.Lock()
		c.sess = nil
		c.answered = true
		c.loading = false
		subs := c.snapshotSubs()
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.cache.Remove(ctx, CacheKeyAuthState)
		notify(subs, snap)
		return
	}

	res := c.resolver.Resolve(ctx, id.UID)
	sess := &models.Session{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: res.DisplayName,
		Role:        res.Role,
		Department:  res.Department,
	}
	if sess.DisplayName == "" {
		sess.DisplayName = id.DisplayName
	}

	c.mu.Lock()
	c.sess = sess
	c.answered = true
	c.loading = false
	subs := c.snapshotSubs()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.writeCachedSession(ctx, sess)
	notify(subs, snap)
}

// restoreFromCache applies the last known session as an optimistic preview.
// It never touches loading and is skipped entirely once the stream has
// answered, so a stale cache can never overwrite an authoritative state.
func (c *Controller) restoreFromCache() {
	ctx := context.Background()

	raw, ok := c.cache.Get(ctx, CacheKeyAuthState)
	if !ok {
		return
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		c.log.Warn().Err(err).Msg("decode cached session failed")
		return
	}
	sess.Role = models.ParseRole(string(sess.Role))

	c.mu.Lock()
	if c.answered {
		c.mu.Unlock()
		return
	}
	c.sess = &sess
	subs := c.snapshotSubs()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.Debug().Str("uid", sess.UID).Msg("restored cached session preview")
	notify(subs, snap)
}

// SignIn verifies credentials with the identity provider. The returned
// boolean only reports the provider call; session population always comes
// from the subsequent stream callback so there is a single write path.
// On failure the message is the categorized user-facing text.
func (c *Controller) SignIn(ctx context.Context, email string, password string) (bool, string) {
	c.setLoading(true)
	defer c.setLoading(false)

	if _, err := c.provider.SignInWithPassword(ctx, email, password); err != nil {
		c.log.Warn().Err(err).Msg("sign in failed")
		return false, faults.MessageFor(err)
	}
	return true, ""
}

// SignOut requests provider sign-out and clears the session mirror plus
// every per-account role cache entry.
func (c *Controller) SignOut(ctx context.Context) {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.provider.SignOut(ctx); err != nil {
		c.log.Warn().Err(err).Msg("sign out failed")
	}

	stale := []string{CacheKeyAuthState}
	for _, key := range c.cache.ListKeys(ctx) {
		if strings.HasPrefix(key, roles.CacheKeyPrefix) {
			stale = append(stale, key)
		}
	}
	c.cache.RemoveAll(ctx, stale)
}

// ResetPassword delegates to the provider. It mutates neither the session
// nor loading.
func (c *Controller) ResetPassword(ctx context.Context, email string) bool {
	if err := c.provider.SendPasswordResetEmail(ctx, email); err != nil {
		c.log.Warn().Err(err).Msg("password reset failed")
		return false
	}
	return true
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for state-change notifications and returns an
// unsubscribe function.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) setLoading(loading bool) {
	c.mu.Lock()
	c.loading = loading
	subs := c.snapshotSubs()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	notify(subs, snap)
}

func (c *Controller) writeCachedSession(ctx context.Context, sess *models.Session) {
	encoded, err := json.Marshal(sess)
	if err != nil {
		c.log.Warn().Err(err).Msg("encode session failed")
		return
	}
	c.cache.Set(ctx, CacheKeyAuthState, string(encoded))
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{Loading: c.loading}
	if c.sess != nil {
		copied := *c.sess
		snap.Session = &copied
	}
	return snap
}

func (c *Controller) snapshotSubs() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
