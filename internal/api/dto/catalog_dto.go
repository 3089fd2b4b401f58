package dto

import "github.com/spec-kit/offering-registry/internal/domain"

// Option is one entry of a reference list.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogResponse bundles every reference list.
type CatalogResponse struct {
	Departments []Option `json:"departments"`
	Programs    []Option `json:"programs"`
	Courses     []Option `json:"courses"`
	Baskets     []Option `json:"baskets"`
}

// CourseResolution answers a course name lookup. CourseID is empty when unknown.
type CourseResolution struct {
	Name     string `json:"name"`
	CourseID string `json:"course_id"`
	Found    bool   `json:"found"`
}

func DepartmentOptions(items []domain.Department) []Option {
	out := make([]Option, 0, len(items))
	for _, d := range items {
		out = append(out, Option{ID: d.Code, Name: d.Name})
	}
	return out
}

func ProgramOptions(items []domain.Program) []Option {
	out := make([]Option, 0, len(items))
	for _, p := range items {
		out = append(out, Option{ID: p.ID, Name: p.Name})
	}
	return out
}

func CourseOptions(items []domain.Course) []Option {
	out := make([]Option, 0, len(items))
	for _, c := range items {
		out = append(out, Option{ID: c.ID, Name: c.Name})
	}
	return out
}

func BasketOptions(items []domain.Basket) []Option {
	out := make([]Option, 0, len(items))
	for _, b := range items {
		out = append(out, Option{ID: b.ID, Name: b.Name})
	}
	return out
}

// NewCatalogResponse maps a loaded catalog.
func NewCatalogResponse(c *domain.Catalog) CatalogResponse {
	return CatalogResponse{
		Departments: DepartmentOptions(c.Departments),
		Programs:    ProgramOptions(c.Programs),
		Courses:     CourseOptions(c.Courses),
		Baskets:     BasketOptions(c.Baskets),
	}
}
