package object

// SearchOptions bounds a full-text search.
type SearchOptions struct {
	Limit  int
	Offset int
}
