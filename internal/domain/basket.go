package domain

// Basket is an optional category tag for an offering, e.g. an elective grouping.
type Basket struct {
	ID   string
	Name string
}
