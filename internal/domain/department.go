package domain

// Department represents an academic department that offers courses.
type Department struct {
	Code string
	Name string
}
