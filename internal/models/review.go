package models

// Review is created once per completed booking and immutable afterwards
// from the client's perspective.
type Review struct {
	ID         string           `json:"_id"`
	Rating     int              `json:"rating"`
	Comment    string           `json:"comment"`
	ProviderID string           `json:"providerId"`
	Customer   *NamedReference  `json:"customerId"`
	Service    *TitledReference `json:"serviceId"`
}
