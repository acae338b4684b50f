package errors

import "errors"

var (
	ErrSubmissionNotFound      = errors.New("submission not found")
	ErrListingNotFound         = errors.New("listing not found")
	ErrInvalidSubmissionInput  = errors.New("invalid submission input")
	ErrInvalidStatusTransition = errors.New("invalid submission status transition")
	ErrInvalidStatusFilter     = errors.New("invalid status filter")
	ErrUnauthorizedActor       = errors.New("actor is not authorized")
	ErrForbidden               = errors.New("caller may not access this record")
	ErrAssetRejected           = errors.New("asset rejected by store")
	ErrAssetNotFound           = errors.New("asset not found")

	// Conversion-internal outcomes. Both mean the item is skipped, not
	// failed: the source either changed status under the batch or was
	// already consumed by an earlier run.
	ErrSourceChanged    = errors.New("submission changed state during conversion")
	ErrAlreadyConverted = errors.New("submission already converted")
)
