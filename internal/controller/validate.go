package controller

import (
	"errors"
	"fmt"
	"strings"

	"khidma/internal/gateway"
	"khidma/internal/models"
)

// ValidationError is a required-field failure detected before any
// network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "must not be blank"}
	}
	return nil
}

func validateLogin(email, password string) error {
	if err := required("email", email); err != nil {
		return err
	}
	return required("password", password)
}

func validateRegistration(req models.RegisterRequest) error {
	for field, value := range map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	} {
		if err := required(field, value); err != nil {
			return err
		}
	}
	if req.Role != models.RoleCustomer && req.Role != models.RoleProvider {
		return &ValidationError{Field: "role", Reason: "must be customer or provider"}
	}
	return nil
}

func validatePasswordUpdate(password, confirmation string) error {
	if err := required("password", password); err != nil {
		return err
	}
	if password != confirmation {
		return &ValidationError{Field: "password", Reason: "confirmation does not match"}
	}
	return nil
}

func validateBookingRequest(req models.BookServiceRequest) error {
	for field, value := range map[string]string{
		"serviceId": req.ServiceID,
		"date":      req.Date,
		"time":      req.Time,
		"address":   req.Address,
	} {
		if err := required(field, value); err != nil {
			return err
		}
	}
	return nil
}

func validateReview(req models.ReviewRequest) error {
	if err := required("reservationId", req.ReservationID); err != nil {
		return err
	}
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		return &ValidationError{
			Field:  "rating",
			Reason: fmt.Sprintf("must be between %d and %d", models.MinRating, models.MaxRating),
		}
	}
	return nil
}

func validateServiceUpload(upload models.ServiceUpload) error {
	for field, value := range map[string]string{
		"title":      upload.Title,
		"price":      upload.Price,
		"categoryId": upload.CategoryID,
	} {
		if err := required(field, value); err != nil {
			return err
		}
	}
	return nil
}

// surfaceMessage turns a gateway failure into the one-shot message shown
// at the point of the action, keeping the server's wording when there is
// one.
func surfaceMessage(err error) string {
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		if msg := statusErr.Message(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
