package controller

import (
	"strings"

	"khidma/internal/models"
)

// FilterCatalog produces the customer-side catalog view: services whose
// title contains the query (case-insensitive) and, when a real category
// is selected, whose category matches. A nil category and the
// "all categories" sentinel both disable category filtering. Input
// order is preserved and the result is always a fresh slice, so
// identical inputs yield identical output.
func FilterCatalog(services []models.Service, query string, category *models.Category) []models.Service {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]models.Service, 0, len(services))
	for _, svc := range services {
		if query != "" && !strings.Contains(strings.ToLower(svc.Title), query) {
			continue
		}
		if category != nil && category.ID != "" && category.Name != models.AllCategoriesName &&
			svc.CategoryID != category.ID {
			continue
		}
		filtered = append(filtered, svc)
	}
	return filtered
}
