package models

// Booking is the lifecycle-governed entity. Status is one of the Status*
// constants for well-formed payloads, but unknown strings must be
// tolerated and simply offer no actions.
type Booking struct {
	ID         string           `json:"_id"`
	Date       string           `json:"date,omitempty"`
	Status     string           `json:"status,omitempty"`
	Customer   *NamedReference  `json:"customerId"`
	Service    *TitledReference `json:"serviceId"`
	ProviderID string           `json:"providerId,omitempty"`
}

// ServiceTitle returns the booked service's title for display, falling
// back when only the bare id was embedded.
func (b Booking) ServiceTitle() string {
	if b.Service == nil {
		return "Unknown Service"
	}
	return b.Service.Label("Unknown Service")
}

// CustomerName returns the booking customer's name for display.
func (b Booking) CustomerName() string {
	if b.Customer == nil {
		return "Unknown Customer"
	}
	return b.Customer.Label("Unknown Customer")
}
