package model

type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// BookFilter is a filter-by-example for book searches: empty fields are
// wildcards, non-empty fields match case-insensitively as substrings.
type BookFilter struct {
	Title  string
	Author string
	ISBN   string
}
