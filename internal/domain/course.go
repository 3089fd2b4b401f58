package domain

// Course is a catalog entry that can be offered to programs.
type Course struct {
	ID   string
	Name string
}
