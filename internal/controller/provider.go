package controller

import (
	"context"

	"github.com/rs/zerolog"

	"khidma/internal/domain"
	"khidma/internal/events"
	"khidma/internal/lifecycle"
	"khidma/internal/models"
	"khidma/internal/session"
)

// Provider drives the provider-side screens: the provider's own service
// listings, incoming bookings with accept/reject, and received reviews.
type Provider struct {
	*base
	gw       domain.Gateway
	sessions *session.Manager
	bus      domain.EventPublisher

	services   []models.Service
	bookings   []models.Booking
	reviews    []models.Review
	categories []models.Category
}

func NewProvider(gw domain.Gateway, sessions *session.Manager, bus domain.EventPublisher, logger *zerolog.Logger) *Provider {
	return &Provider{
		base:     newBase(logger.With().Str("controller", "provider").Logger()),
		gw:       gw,
		sessions: sessions,
		bus:      bus,
	}
}

func (p *Provider) session() (session.Session, bool) {
	sess, ok := p.sessions.Current()
	if !ok {
		p.notify(Event{Kind: KindFailure, Topic: TopicServices, Message: "no active session"})
	}
	return sess, ok
}

// LoadServices refreshes the provider's own service listings.
func (p *Provider) LoadServices() {
	sess, ok := p.session()
	if !ok {
		return
	}
	seq := p.beginFetch(TopicServices)
	p.run(func(ctx context.Context) {
		p.fetchServices(ctx, seq, sess.UserID)
	})
}

func (p *Provider) fetchServices(ctx context.Context, seq uint64, providerID string) {
	services, err := p.gw.ListProviderServices(ctx, providerID)
	if err != nil {
		if p.endFetch(TopicServices, seq, nil) {
			p.notify(Event{Kind: KindFailure, Topic: TopicServices, Message: surfaceMessage(err)})
		}
		return
	}
	if p.endFetch(TopicServices, seq, func() { p.services = services }) {
		p.notify(Event{Kind: KindLoaded, Topic: TopicServices})
	}
}

// LoadBookings refreshes the bookings addressed to this provider.
func (p *Provider) LoadBookings() {
	sess, ok := p.session()
	if !ok {
		return
	}
	seq := p.beginFetch(TopicBookings)
	p.run(func(ctx context.Context) {
		p.fetchBookings(ctx, seq, sess.UserID)
	})
}

func (p *Provider) fetchBookings(ctx context.Context, seq uint64, providerID string) {
	bookings, err := p.gw.ListProviderBookings(ctx, providerID)
	if err != nil {
		if p.endFetch(TopicBookings, seq, nil) {
			p.notify(Event{Kind: KindFailure, Topic: TopicBookings, Message: surfaceMessage(err)})
		}
		return
	}
	if p.endFetch(TopicBookings, seq, func() { p.bookings = bookings }) {
		p.notify(Event{Kind: KindLoaded, Topic: TopicBookings})
	}
}

// LoadReviews refreshes the reviews received by this provider.
func (p *Provider) LoadReviews() {
	sess, ok := p.session()
	if !ok {
		return
	}
	seq := p.beginFetch(TopicReviews)
	p.run(func(ctx context.Context) {
		reviews, err := p.gw.ListProviderReviews(ctx, sess.UserID)
		if err != nil {
			if p.endFetch(TopicReviews, seq, nil) {
				p.notify(Event{Kind: KindFailure, Topic: TopicReviews, Message: surfaceMessage(err)})
			}
			return
		}
		if p.endFetch(TopicReviews, seq, func() { p.reviews = reviews }) {
			p.notify(Event{Kind: KindLoaded, Topic: TopicReviews})
		}
	})
}

// LoadCategories fetches the raw category list for the service form.
func (p *Provider) LoadCategories() {
	seq := p.beginFetch(TopicCategories)
	p.run(func(ctx context.Context) {
		categories, err := p.gw.ListCategories(ctx)
		if err != nil {
			p.endFetch(TopicCategories, seq, nil)
			p.logger.Warn().Err(err).Msg("load categories failed")
			return
		}
		if p.endFetch(TopicCategories, seq, func() { p.categories = categories }) {
			p.notify(Event{Kind: KindLoaded, Topic: TopicCategories})
		}
	})
}

func (p *Provider) Services() []models.Service {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Service(nil), p.services...)
}

func (p *Provider) Bookings() []models.Booking {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Booking(nil), p.bookings...)
}

func (p *Provider) Reviews() []models.Review {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Review(nil), p.reviews...)
}

func (p *Provider) Categories() []models.Category {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Category(nil), p.categories...)
}

// BookingActions returns the actions this provider may be offered for
// the booking's current status.
func (p *Provider) BookingActions(b models.Booking) []lifecycle.Action {
	return lifecycle.ActionsFor(b.Status, models.RoleProvider)
}

// CreateService uploads a new listing, then re-fetches the provider's
// service list.
func (p *Provider) CreateService(upload models.ServiceUpload) {
	sess, ok := p.session()
	if !ok {
		return
	}
	upload.ProviderID = sess.UserID

	if err := validateServiceUpload(upload); err != nil {
		p.notify(Event{Kind: KindFailure, Topic: TopicServices, Message: err.Error()})
		return
	}

	seq := p.beginFetch(TopicServices)
	p.run(func(ctx context.Context) {
		if _, err := p.gw.CreateService(ctx, upload); err != nil {
			if p.endFetch(TopicServices, seq, nil) {
				p.notify(Event{Kind: KindFailure, Topic: TopicServices, Message: surfaceMessage(err)})
			}
			return
		}
		p.notify(Event{Kind: KindStatus, Topic: TopicServices, Message: "Service Created Successfully"})
		p.fetchServices(ctx, seq, sess.UserID)
	})
}

// UpdateService edits an existing listing, then re-fetches the list.
func (p *Provider) UpdateService(serviceID string, upload models.ServiceUpload) {
	sess, ok := p.session()
	if !ok {
		return
	}

	if err := validateServiceUpload(upload); err != nil {
		p.notify(Event{Kind: KindFailure, Topic: TopicServices, Message: err.Error()})
		return
	}

	seq := p.beginFetch(TopicServices)
	p.run(func(ctx context.Context) {
		if _, err := p.gw.UpdateService(ctx, serviceID, upload); err != nil {
			if p.endFetch(TopicServices, seq, nil) {
				p.notify(Event{Kind: KindFailure, Topic: TopicServices, Message: surfaceMessage(err)})
			}
			return
		}
		p.notify(Event{Kind: KindStatus, Topic: TopicServices, Message: "Service Updated"})
		p.fetchServices(ctx, seq, sess.UserID)
	})
}

// DeleteService removes a listing, then re-fetches the list. Ownership
// is enforced server-side.
func (p *Provider) DeleteService(serviceID string) {
	sess, ok := p.session()
	if !ok {
		return
	}

	seq := p.beginFetch(TopicServices)
	p.run(func(ctx context.Context) {
		if _, err := p.gw.DeleteService(ctx, serviceID); err != nil {
			if p.endFetch(TopicServices, seq, nil) {
				p.notify(Event{Kind: KindFailure, Topic: TopicServices, Message: surfaceMessage(err)})
			}
			return
		}
		p.notify(Event{Kind: KindStatus, Topic: TopicServices, Message: "Service Deleted"})
		p.fetchServices(ctx, seq, sess.UserID)
	})
}

// AcceptBooking accepts a pending booking, then re-fetches this
// provider's booking list.
func (p *Provider) AcceptBooking(bookingID string) {
	p.transitionBooking(bookingID, events.EventBookingAccepted, "Booking Accepted", p.gw.AcceptBooking)
}

// RejectBooking rejects a pending booking, then re-fetches this
// provider's booking list.
func (p *Provider) RejectBooking(bookingID string) {
	p.transitionBooking(bookingID, events.EventBookingRejected, "Booking Rejected", p.gw.RejectBooking)
}

func (p *Provider) transitionBooking(bookingID, eventType, successMsg string, call func(context.Context, string) (*models.MessageResponse, error)) {
	sess, ok := p.session()
	if !ok {
		return
	}

	seq := p.beginFetch(TopicBookings)
	p.run(func(ctx context.Context) {
		if _, err := call(ctx, bookingID); err != nil {
			if p.endFetch(TopicBookings, seq, nil) {
				p.notify(Event{Kind: KindFailure, Topic: TopicBookings, Message: surfaceMessage(err)})
			}
			return
		}

		if p.bus != nil {
			_ = p.bus.PublishJSON(eventType, events.BookingEventPayload{
				BookingID: bookingID,
				ActorID:   sess.UserID,
				ActorRole: models.RoleProvider,
			})
		}
		p.notify(Event{Kind: KindStatus, Topic: TopicBookings, Message: successMsg})
		p.fetchBookings(ctx, seq, sess.UserID)
	})
}
