package domain

// Program represents an academic program (degree track) that receives offerings.
type Program struct {
	ID   string
	Name string
}
