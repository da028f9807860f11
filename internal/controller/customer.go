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

// Customer drives the customer-side screens: catalog browsing with
// search and category filtering, booking creation and lifecycle
// actions, and review submission.
type Customer struct {
	*base
	gw       domain.Gateway
	sessions *session.Manager
	bus      domain.EventPublisher

	services   []models.Service
	filtered   []models.Service
	categories []models.Category
	bookings   []models.Booking
	query      string
	category   *models.Category
}

func NewCustomer(gw domain.Gateway, sessions *session.Manager, bus domain.EventPublisher, logger *zerolog.Logger) *Customer {
	return &Customer{
		base:     newBase(logger.With().Str("controller", "customer").Logger()),
		gw:       gw,
		sessions: sessions,
		bus:      bus,
	}
}

// LoadServices refreshes the full catalog snapshot; the filtered view
// is recomputed from it.
func (c *Customer) LoadServices() {
	seq := c.beginFetch(TopicServices)
	c.run(func(ctx context.Context) {
		services, err := c.gw.ListServices(ctx)
		if err != nil {
			if c.endFetch(TopicServices, seq, nil) {
				c.notify(Event{Kind: KindFailure, Topic: TopicServices, Message: surfaceMessage(err)})
			}
			return
		}
		if c.endFetch(TopicServices, seq, func() {
			c.services = services
			c.refilter()
		}) {
			c.notify(Event{Kind: KindLoaded, Topic: TopicCatalog})
		}
	})
}

// LoadCategories fetches categories and prepends the "all" sentinel for
// the picker.
func (c *Customer) LoadCategories() {
	seq := c.beginFetch(TopicCategories)
	c.run(func(ctx context.Context) {
		categories, err := c.gw.ListCategories(ctx)
		if err != nil {
			// Category load failures leave the previous snapshot; the
			// catalog stays browsable without the filter.
			c.endFetch(TopicCategories, seq, nil)
			c.logger.Warn().Err(err).Msg("load categories failed")
			return
		}
		if c.endFetch(TopicCategories, seq, func() {
			c.categories = append([]models.Category{models.AllCategories}, categories...)
		}) {
			c.notify(Event{Kind: KindLoaded, Topic: TopicCategories})
		}
	})
}

// LoadBookings refreshes the booking list scoped to the session's
// customer id.
func (c *Customer) LoadBookings() {
	sess, ok := c.sessions.Current()
	if !ok {
		c.notify(Event{Kind: KindFailure, Topic: TopicBookings, Message: "no active session"})
		return
	}

	seq := c.beginFetch(TopicBookings)
	c.run(func(ctx context.Context) {
		c.fetchBookings(ctx, seq, sess.UserID)
	})
}

// fetchBookings is the shared pull-after-write refresh; it runs inside
// an already-launched action goroutine.
func (c *Customer) fetchBookings(ctx context.Context, seq uint64, customerID string) {
	bookings, err := c.gw.ListCustomerBookings(ctx, customerID)
	if err != nil {
		if c.endFetch(TopicBookings, seq, nil) {
			c.notify(Event{Kind: KindFailure, Topic: TopicBookings, Message: surfaceMessage(err)})
		}
		return
	}
	if c.endFetch(TopicBookings, seq, func() { c.bookings = bookings }) {
		c.notify(Event{Kind: KindLoaded, Topic: TopicBookings})
	}
}

// SetQuery updates the free-text filter and recomputes the catalog view
// synchronously.
func (c *Customer) SetQuery(query string) {
	c.mu.Lock()
	c.query = query
	c.refilter()
	c.mu.Unlock()
	c.notify(Event{Kind: KindLoaded, Topic: TopicCatalog})
}

// SetCategory updates the category filter; nil or the sentinel clears
// it.
func (c *Customer) SetCategory(category *models.Category) {
	c.mu.Lock()
	c.category = category
	c.refilter()
	c.mu.Unlock()
	c.notify(Event{Kind: KindLoaded, Topic: TopicCatalog})
}

// refilter recomputes the filtered view. Callers hold c.mu.
func (c *Customer) refilter() {
	c.filtered = FilterCatalog(c.services, c.query, c.category)
}

// FilteredServices returns the current catalog view.
func (c *Customer) FilteredServices() []models.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Service(nil), c.filtered...)
}

func (c *Customer) Categories() []models.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Category(nil), c.categories...)
}

func (c *Customer) Bookings() []models.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Booking(nil), c.bookings...)
}

// BookingActions returns the actions this customer may be offered for
// the booking's current status.
func (c *Customer) BookingActions(b models.Booking) []lifecycle.Action {
	return lifecycle.ActionsFor(b.Status, models.RoleCustomer)
}

// BookService creates a booking for the session's customer. The booking
// list is not implicitly refreshed; the bookings screen fetches on
// entry.
func (c *Customer) BookService(req models.BookServiceRequest) {
	sess, ok := c.sessions.Current()
	if !ok {
		c.notify(Event{Kind: KindFailure, Topic: TopicBookings, Message: "no active session"})
		return
	}
	req.CustomerID = sess.UserID

	if err := validateBookingRequest(req); err != nil {
		c.notify(Event{Kind: KindFailure, Topic: TopicBookings, Message: err.Error()})
		return
	}

	seq := c.beginFetch(TopicBookings)
	c.run(func(ctx context.Context) {
		booking, err := c.gw.CreateBooking(ctx, req)
		if err != nil {
			if c.endFetch(TopicBookings, seq, nil) {
				c.notify(Event{Kind: KindFailure, Topic: TopicBookings, Message: surfaceMessage(err)})
			}
			return
		}

		c.publishBooking(events.EventBookingCreated, *booking, sess)
		if c.endFetch(TopicBookings, seq, nil) {
			c.notify(Event{Kind: KindStatus, Topic: TopicBookings, Message: "Service booked successfully"})
		}
	})
}

// CancelBooking issues the cancel and, only on success, re-fetches the
// customer's booking list before reporting the outcome.
func (c *Customer) CancelBooking(bookingID string) {
	c.transitionBooking(bookingID, events.EventBookingCancelled, "Booking cancelled successfully", c.gw.CancelBooking)
}

// CompleteBooking marks an accepted booking as completed. The backend
// has no customer-visible transition guard; the affordance is gated by
// BookingActions.
func (c *Customer) CompleteBooking(bookingID string) {
	c.transitionBooking(bookingID, events.EventBookingCompleted, "Booking completed", c.gw.CompleteBooking)
}

func (c *Customer) transitionBooking(bookingID, eventType, successMsg string, call func(context.Context, string) (*models.MessageResponse, error)) {
	sess, ok := c.sessions.Current()
	if !ok {
		c.notify(Event{Kind: KindFailure, Topic: TopicBookings, Message: "no active session"})
		return
	}

	seq := c.beginFetch(TopicBookings)
	c.run(func(ctx context.Context) {
		if _, err := call(ctx, bookingID); err != nil {
			if c.endFetch(TopicBookings, seq, nil) {
				c.notify(Event{Kind: KindFailure, Topic: TopicBookings, Message: surfaceMessage(err)})
			}
			return
		}

		c.publishBooking(eventType, models.Booking{ID: bookingID}, sess)
		c.notify(Event{Kind: KindStatus, Topic: TopicBookings, Message: successMsg})

		// Pull-after-write: the action is complete only once the list
		// reflects the server's view.
		c.fetchBookings(ctx, seq, sess.UserID)
	})
}

// SubmitReview is fire-and-forget: no optimistic local review is
// appended anywhere; provider review lists refresh on their next fetch.
func (c *Customer) SubmitReview(req models.ReviewRequest) {
	sess, ok := c.sessions.Current()
	if !ok {
		c.notify(Event{Kind: KindFailure, Topic: TopicReviews, Message: "no active session"})
		return
	}
	req.CustomerID = sess.UserID

	if err := validateReview(req); err != nil {
		c.notify(Event{Kind: KindFailure, Topic: TopicReviews, Message: err.Error()})
		return
	}

	seq := c.beginFetch(TopicReviews)
	c.run(func(ctx context.Context) {
		if _, err := c.gw.CreateReview(ctx, req); err != nil {
			if c.endFetch(TopicReviews, seq, nil) {
				c.notify(Event{Kind: KindFailure, Topic: TopicReviews, Message: surfaceMessage(err)})
			}
			return
		}

		if c.bus != nil {
			_ = c.bus.PublishJSON(events.EventReviewSubmitted, events.ReviewEventPayload{
				ReservationID: req.ReservationID,
				CustomerID:    req.CustomerID,
				Rating:        req.Rating,
			})
		}
		if c.endFetch(TopicReviews, seq, nil) {
			c.notify(Event{Kind: KindStatus, Topic: TopicReviews, Message: "Review submitted successfully"})
		}
	})
}

func (c *Customer) publishBooking(eventType string, booking models.Booking, sess session.Session) {
	if c.bus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		Status:    booking.Status,
		Date:      booking.Date,
		ActorID:   sess.UserID,
		ActorRole: models.RoleCustomer,
	}
	if booking.Service != nil {
		payload.ServiceID = booking.Service.ID
		payload.ServiceTitle = booking.Service.DisplayName
	}
	if err := c.bus.PublishJSON(eventType, payload); err != nil {
		c.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
