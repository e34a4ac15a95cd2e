package auth

import (
	"context"
	"sync"

	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/sirupsen/logrus"
)

// PlaceholderAvatar is shown when the provider has no photo for the user.
const PlaceholderAvatar = "https://via.placeholder.com/40"

const (
	fallbackName = "User"
	guestName    = "Guest"
)

// Profile is the signed-in user projection shown in the page header.
type Profile struct {
	SignedIn  bool   `json:"signedIn"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// Status is one auth transition published to gate subscribers.
type Status struct {
	Authenticated bool        `json:"authenticated"`
	User          domain.User `json:"user"`
}

// Renderer shows the profile and surfaces sign-in failures.
type Renderer interface {
	RenderProfile(Profile)
	Notify(message string)
}

// Gate follows the identity provider and decides whether the quiz is reachable.
type Gate struct {
	provider    Provider
	renderer    Renderer
	log         logrus.FieldLogger
	placeholder string

	mu          sync.RWMutex
	user        *domain.User
	subscribers map[chan Status]struct{}
	unsubscribe func()
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithPlaceholderAvatar overrides the avatar used when the provider has none.
func WithPlaceholderAvatar(url string) GateOption {
	return func(g *Gate) {
		if url != "" {
			g.placeholder = url
		}
	}
}

// WithGateLogger sets the gate logger.
func WithGateLogger(log logrus.FieldLogger) GateOption {
	return func(g *Gate) {
		if log != nil {
			g.log = log
		}
	}
}

func NewGate(provider Provider, renderer Renderer, opts ...GateOption) *Gate {
	g := &Gate{
		provider:    provider,
		renderer:    renderer,
		log:         logrus.StandardLogger(),
		placeholder: PlaceholderAvatar,
		subscribers: make(map[chan Status]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start subscribes to the provider; the current state is rendered immediately.
func (g *Gate) Start() {
	g.mu.Lock()
	if g.unsubscribe != nil {
		g.mu.Unlock()
		return
	}
	g.unsubscribe = func() {}
	g.mu.Unlock()

	unsubscribe := g.provider.OnAuthChange(g.onChange)

	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()
}

// Stop unsubscribes from the provider and closes all status subscriptions.
func (g *Gate) Stop() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	for ch := range g.subscribers {
		delete(g.subscribers, ch)
		close(ch)
	}
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// SignIn asks the provider to sign in; failures are shown to the user verbatim.
func (g *Gate) SignIn(ctx context.Context, credential string) error {
	user, err := g.provider.SignIn(ctx, credential)
	if err != nil {
		g.log.WithError(err).Warn("sign-in failed")
		g.renderer.Notify(err.Error())
		return err
	}
	g.log.WithField("user", user.ID).Info("signed in")
	return nil
}

// SignOut asks the provider to sign out.
func (g *Gate) SignOut(ctx context.Context) error {
	return g.provider.SignOut(ctx)
}

// Authenticated reports whether a user is present.
func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user != nil
}

// Current returns the signed-in user, if any.
func (g *Gate) Current() (domain.User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return domain.User{}, false
	}
	return *g.user, true
}

// Subscribe returns a channel of auth transitions starting with the current
// status. Slow readers only see the latest status. Call cancel to release it.
func (g *Gate) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 1)

	g.mu.Lock()
	g.subscribers[ch] = struct{}{}
	ch <- g.statusLocked()
	g.mu.Unlock()

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.subscribers[ch]; ok {
			delete(g.subscribers, ch)
			close(ch)
		}
		g.mu.Unlock()
	}
	return ch, cancel
}

func (g *Gate) onChange(user *domain.User) {
	g.mu.Lock()
	g.user = user
	status := g.statusLocked()
	g.broadcastLocked(status)
	g.mu.Unlock()

	if user == nil {
		g.log.Debug("auth gate closed")
	}
	g.renderer.RenderProfile(g.profile(user))
}

func (g *Gate) broadcastLocked(status Status) {
	for ch := range g.subscribers {
		select {
		case ch <- status:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- status
		}
	}
}

func (g *Gate) statusLocked() Status {
	if g.user == nil {
		return Status{}
	}
	return Status{Authenticated: true, User: *g.user}
}

func (g *Gate) profile(user *domain.User) Profile {
	if user == nil {
		return Profile{Name: guestName, AvatarURL: g.placeholder}
	}
	profile := Profile{SignedIn: true, Name: user.DisplayName, AvatarURL: user.PhotoURL}
	if profile.Name == "" {
		profile.Name = fallbackName
	}
	if profile.AvatarURL == "" {
		profile.AvatarURL = g.placeholder
	}
	return profile
}
