package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // alias of the VECTOR field, "vector" when empty
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 text search over one or more TEXT fields.
// Terms are OR-ed together; field weights come from the index schema.
type TextQuery struct {
	IndexName    string
	Terms        []string
	Fields       []string // restrict matching to these TEXT fields, all TEXT fields when empty
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
