package extract

import "context"

// Document is one raw uploaded file handed to the extraction service.
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// RawRecord is a contact as returned by the extraction service, before
// normalization.
type RawRecord struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Mobile       string  `json:"mobile"`
	Landline     string  `json:"landline"`
	Address      string  `json:"address"`
	Email        string  `json:"email"`
	DateOfBirth  string  `json:"date_of_birth"`
	LastSeenDate string  `json:"last_seen_date"`
	Confidence   float64 `json:"confidence"`
}

// DocumentResult is the outcome for a single input document. Exactly one
// result is produced per submitted document: either extracted records or a
// document-level error, never both and never neither.
type DocumentResult struct {
	SourceFile string      `json:"source_file"`
	Records    []RawRecord `json:"records"`
	Error      string      `json:"error,omitempty"`
}

// Failed reports whether this document could not be processed.
func (r DocumentResult) Failed() bool {
	return r.Error != ""
}

// Extractor translates a batch of documents into structured records.
// A returned error means the call itself failed (service unreachable,
// malformed response) and is fatal to the running job; per-document
// failures are carried in the result slots and tolerated.
type Extractor interface {
	ExtractBatch(ctx context.Context, docs []Document) ([]DocumentResult, error)
}
