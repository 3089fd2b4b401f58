package domain

// Catalog bundles the reference lists used to populate the offering form.
type Catalog struct {
	Departments []Department
	Programs    []Program
	Courses     []Course
	Baskets     []Basket
}
