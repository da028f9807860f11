package controller

import (
	"context"

	"github.com/rs/zerolog"

	"khidma/internal/domain"
	"khidma/internal/models"
	"khidma/internal/session"
)

// Auth drives login, registration and password flows, and owns the
// session lifecycle.
type Auth struct {
	*base
	gw       domain.Gateway
	sessions *session.Manager

	categories []models.Category
}

func NewAuth(gw domain.Gateway, sessions *session.Manager, logger *zerolog.Logger) *Auth {
	return &Auth{
		base:     newBase(logger.With().Str("controller", "auth").Logger()),
		gw:       gw,
		sessions: sessions,
	}
}

// Login authenticates and, on success, establishes the process-wide
// session before notifying subscribers.
func (a *Auth) Login(email, password string) {
	if err := validateLogin(email, password); err != nil {
		a.notify(Event{Kind: KindFailure, Topic: TopicAuth, Message: err.Error()})
		return
	}

	seq := a.beginFetch(TopicAuth)
	a.run(func(ctx context.Context) {
		resp, err := a.gw.Login(ctx, email, password)
		if err != nil {
			if a.endFetch(TopicAuth, seq, nil) {
				a.notify(Event{Kind: KindFailure, Topic: TopicAuth, Message: surfaceMessage(err)})
			}
			return
		}

		a.sessions.Establish(session.Session{UserID: resp.UserID, Role: resp.Role})
		if a.endFetch(TopicAuth, seq, nil) {
			a.notify(Event{Kind: KindStatus, Topic: TopicAuth, Message: "Login successful"})
		}
	})
}

// Logout clears the session synchronously.
func (a *Auth) Logout() {
	a.sessions.Clear()
	a.notify(Event{Kind: KindStatus, Topic: TopicAuth, Message: "Logged out"})
}

func (a *Auth) Register(req models.RegisterRequest) {
	if err := validateRegistration(req); err != nil {
		a.notify(Event{Kind: KindFailure, Topic: TopicAuth, Message: err.Error()})
		return
	}

	seq := a.beginFetch(TopicAuth)
	a.run(func(ctx context.Context) {
		resp, err := a.gw.Register(ctx, req)
		if err != nil {
			if a.endFetch(TopicAuth, seq, nil) {
				a.notify(Event{Kind: KindFailure, Topic: TopicAuth, Message: surfaceMessage(err)})
			}
			return
		}
		if a.endFetch(TopicAuth, seq, nil) {
			a.notify(Event{Kind: KindStatus, Topic: TopicAuth, Message: resp.Message})
		}
	})
}

func (a *Auth) ResetPassword(email string) {
	if err := required("email", email); err != nil {
		a.notify(Event{Kind: KindFailure, Topic: TopicAuth, Message: err.Error()})
		return
	}

	seq := a.beginFetch(TopicAuth)
	a.run(func(ctx context.Context) {
		resp, err := a.gw.ResetPassword(ctx, email)
		if err != nil {
			if a.endFetch(TopicAuth, seq, nil) {
				a.notify(Event{Kind: KindFailure, Topic: TopicAuth, Message: surfaceMessage(err)})
			}
			return
		}
		if a.endFetch(TopicAuth, seq, nil) {
			a.notify(Event{Kind: KindStatus, Topic: TopicAuth, Message: resp.Message})
		}
	})
}

// UpdatePassword requires the confirmation to match before anything is
// sent to the backend.
func (a *Auth) UpdatePassword(userID, password, confirmation string) {
	if err := validatePasswordUpdate(password, confirmation); err != nil {
		a.notify(Event{Kind: KindFailure, Topic: TopicAuth, Message: err.Error()})
		return
	}

	seq := a.beginFetch(TopicAuth)
	a.run(func(ctx context.Context) {
		resp, err := a.gw.UpdatePassword(ctx, userID, password)
		if err != nil {
			if a.endFetch(TopicAuth, seq, nil) {
				a.notify(Event{Kind: KindFailure, Topic: TopicAuth, Message: surfaceMessage(err)})
			}
			return
		}
		if a.endFetch(TopicAuth, seq, nil) {
			a.notify(Event{Kind: KindStatus, Topic: TopicAuth, Message: resp.Message})
		}
	})
}

// LoadCategories fetches the category list shown on the provider
// registration form.
func (a *Auth) LoadCategories() {
	seq := a.beginFetch(TopicCategories)
	a.run(func(ctx context.Context) {
		categories, err := a.gw.ListCategories(ctx)
		if err != nil {
			if a.endFetch(TopicCategories, seq, nil) {
				a.notify(Event{Kind: KindFailure, Topic: TopicCategories, Message: surfaceMessage(err)})
			}
			return
		}
		if a.endFetch(TopicCategories, seq, func() { a.categories = categories }) {
			a.notify(Event{Kind: KindLoaded, Topic: TopicCategories})
		}
	})
}

// Categories returns a copy of the last fetched category snapshot.
func (a *Auth) Categories() []models.Category {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Category(nil), a.categories...)
}
