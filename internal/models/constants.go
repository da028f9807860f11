package models

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
)

const (
	// AllCategoriesName is the sentinel category injected at the top of
	// the category picker; selecting it disables category filtering.
	AllCategoriesName = "All categories"

	MinRating = 1
	MaxRating = 5
)
