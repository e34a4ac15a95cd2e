package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
)

// Provider is the identity-provider boundary the gate subscribes to.
type Provider interface {
	SignIn(ctx context.Context, credential string) (domain.User, error)
	SignOut(ctx context.Context) error
	// OnAuthChange calls fn with the current user (nil when signed out) right
	// away and again on every change. The returned func unsubscribes.
	OnAuthChange(fn func(*domain.User)) func()
}

// TokenProvider signs a single tab in with an ID token.
type TokenProvider struct {
	tokens *TokenService

	mu        sync.Mutex
	current   *domain.User
	listeners map[int]func(*domain.User)
	nextID    int
}

func NewTokenProvider(tokens *TokenService) *TokenProvider {
	return &TokenProvider{
		tokens:    tokens,
		listeners: make(map[int]func(*domain.User)),
	}
}

func (p *TokenProvider) SignIn(ctx context.Context, credential string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, &domain.AuthError{Message: "sign-in was cancelled", Err: err}
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.User{}, &domain.AuthError{Message: "sign-in was cancelled: no credential provided"}
	}

	user, err := p.tokens.Verify(credential)
	if err != nil {
		return domain.User{}, err
	}
	p.set(&user)
	return user, nil
}

func (p *TokenProvider) SignOut(_ context.Context) error {
	p.set(nil)
	return nil
}

func (p *TokenProvider) OnAuthChange(fn func(*domain.User)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	current := copyUser(p.current)
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// set stores the user and notifies listeners outside the lock.
func (p *TokenProvider) set(user *domain.User) {
	p.mu.Lock()
	p.current = copyUser(user)
	listeners := make([]func(*domain.User), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(copyUser(user))
	}
}

func copyUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	u := *user
	return &u
}
