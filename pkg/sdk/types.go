package dupscan

// Document is one text to compare.
type Document struct {
	ID         string
	ExternalID string
	Origin     string
	// Text is the comparison value. Only string and non-nil *string count as
	// text; any other value excludes the document from every pair.
	Text any
}

// Ref identifies one side of a Match.
type Ref struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Origin     string `json:"origin"`
}

// Match is a pair whose score met the threshold. Main precedes Similar in
// the input order.
type Match struct {
	Main    Ref     `json:"main"`
	Similar Ref     `json:"similar"`
	Score   float64 `json:"score"`
}

// TaskFailure is a pivot document whose comparisons were dropped after a
// panic. Its pairs are missing from the result. Index is the position of
// the document in the Compare input.
type TaskFailure struct {
	Index int
	DocID string
	Err   error
}

// Result is the outcome of Compare.
type Result struct {
	Matches []Match
	// Documents counts the input, Excluded those without text.
	Documents int
	Excluded  int
	Pairs     int64
	Failures  []TaskFailure
}
