package entities

import "time"

// Listing is a published property record. Listings are created only by
// the conversion pipeline; SubmissionID is kept for audit provenance and
// carries no further lifecycle coupling.
type Listing struct {
	ListingID    string
	SubmissionID string
	SubmitterID  string
	Content      PropertyContent
	ImageRefs    []string
	PublishedAt  time.Time
}
