package models

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	City     string `json:"city,omitempty"`
	Tel      string `json:"tel,omitempty"`
	Category string `json:"category,omitempty"`
	Skills   string `json:"skills,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

type BookServiceRequest struct {
	ServiceID  string `json:"serviceId"`
	CustomerID string `json:"customerId"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Address    string `json:"address"`
}

type ReviewRequest struct {
	ReservationID string `json:"reservationId"`
	CustomerID    string `json:"customerId"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
}

// MessageResponse is the backend's generic acknowledgment body.
type MessageResponse struct {
	Message string `json:"message"`
}
