package models

// Category is a flat, immutable catalog grouping.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// AllCategories is the sentinel matching every service.
var AllCategories = Category{ID: "", Name: AllCategoriesName}

type Service struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	PhotoURL    string          `json:"photoURL,omitempty"`
	Provider    *NamedReference `json:"providerId"`
	CategoryID  string          `json:"categoryId"`
}

// ProviderID returns the owning provider's id, or "" when the backend
// sent no provider reference at all.
func (s Service) ProviderID() string {
	if s.Provider == nil {
		return ""
	}
	return s.Provider.ID
}

// ServiceUpload carries the multipart form fields for provider service
// create and update. Photo is optional; PhotoName names the form part.
type ServiceUpload struct {
	Title       string
	Description string
	Price       string
	ProviderID  string
	CategoryID  string
	PhotoName   string
	Photo       []byte
}
