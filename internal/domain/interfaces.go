package domain

import (
	"context"
	"time"

	"khidma/internal/models"
)

// Gateway issues exactly one HTTP request per domain operation. No
// operation retries; callers decide whether to re-fetch after a write.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.MessageResponse, error)
	ResetPassword(ctx context.Context, email string) (*models.MessageResponse, error)
	UpdatePassword(ctx context.Context, userID, newPassword string) (*models.MessageResponse, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, serviceID string) (*models.Service, error)
	ListProviderServices(ctx context.Context, providerID string) ([]models.Service, error)
	CreateService(ctx context.Context, upload models.ServiceUpload) (*models.Service, error)
	UpdateService(ctx context.Context, serviceID string, upload models.ServiceUpload) (*models.Service, error)
	DeleteService(ctx context.Context, serviceID string) (*models.MessageResponse, error)

	CreateBooking(ctx context.Context, req models.BookServiceRequest) (*models.Booking, error)
	ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error)
	ListProviderBookings(ctx context.Context, providerID string) ([]models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*models.MessageResponse, error)
	AcceptBooking(ctx context.Context, bookingID string) (*models.MessageResponse, error)
	RejectBooking(ctx context.Context, bookingID string) (*models.MessageResponse, error)
	CompleteBooking(ctx context.Context, bookingID string) (*models.MessageResponse, error)

	CreateReview(ctx context.Context, req models.ReviewRequest) (*models.MessageResponse, error)
	ListProviderReviews(ctx context.Context, providerID string) ([]models.Review, error)
}

// CacheStore holds serialized GET responses for their TTL. The gateway
// degrades to plain requests when reads or writes fail.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
