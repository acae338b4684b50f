package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AddressDTO struct {
	City       string `json:"city"`
	District   string `json:"district,omitempty"`
	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

type CreateSubmissionRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Price           int64      `json:"price"`
	MonthlyRent     int64      `json:"monthly_rent"`
	PropertyType    string     `json:"property_type"`
	TransactionType string     `json:"transaction_type"`
	Address         AddressDTO `json:"address"`
	AreaSqm         float64    `json:"area_sqm"`
	Rooms           int        `json:"rooms"`
	Bathrooms       int        `json:"bathrooms"`
	Floor           int        `json:"floor"`
	Parking         bool       `json:"parking"`
	Elevator        bool       `json:"elevator"`
	PetsAllowed     bool       `json:"pets_allowed"`
}

type ReviewRequest struct {
	Comment string `json:"comment"`
}

type SubmissionDTO struct {
	SubmissionID    string     `json:"submission_id"`
	SubmitterID     string     `json:"submitter_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Price           int64      `json:"price"`
	MonthlyRent     int64      `json:"monthly_rent"`
	PropertyType    string     `json:"property_type"`
	TransactionType string     `json:"transaction_type"`
	Address         AddressDTO `json:"address"`
	AreaSqm         float64    `json:"area_sqm"`
	Rooms           int        `json:"rooms"`
	Bathrooms       int        `json:"bathrooms"`
	Floor           int        `json:"floor"`
	Parking         bool       `json:"parking"`
	Elevator        bool       `json:"elevator"`
	PetsAllowed     bool       `json:"pets_allowed"`
	ImageRefs       []string   `json:"image_refs"`
	Status          string     `json:"status"`
	ReviewComment   string     `json:"review_comment,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	ReviewedAt      string     `json:"reviewed_at,omitempty"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

type CreateSubmissionResponse struct {
	Submission SubmissionDTO `json:"submission"`
}

type GetSubmissionResponse struct {
	Submission SubmissionDTO `json:"submission"`
}

type ListSubmissionsResponse struct {
	Items []SubmissionDTO `json:"items"`
}

type AttachImageResponse struct {
	SubmissionID string   `json:"submission_id"`
	ImageRefs    []string `json:"image_refs"`
}

type ReviewResponse struct {
	Submission SubmissionDTO `json:"submission"`
}

type AuditDTO struct {
	AuditID      string `json:"audit_id"`
	SubmissionID string `json:"submission_id"`
	Action       string `json:"action"`
	OldStatus    string `json:"old_status"`
	NewStatus    string `json:"new_status"`
	ActorID      string `json:"actor_id"`
	Comment      string `json:"comment,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type ListAuditsResponse struct {
	Items []AuditDTO `json:"items"`
}

type SummaryResponse struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type ConversionFailureDTO struct {
	SubmissionID string `json:"submission_id"`
	Reason       string `json:"reason"`
}

type ConversionResponse struct {
	Converted int                    `json:"converted"`
	Skipped   int                    `json:"skipped"`
	Failures  []ConversionFailureDTO `json:"failures"`
}

type ListingDTO struct {
	ListingID       string     `json:"listing_id"`
	SubmissionID    string     `json:"submission_id"`
	SubmitterID     string     `json:"submitter_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Price           int64      `json:"price"`
	MonthlyRent     int64      `json:"monthly_rent"`
	PropertyType    string     `json:"property_type"`
	TransactionType string     `json:"transaction_type"`
	Address         AddressDTO `json:"address"`
	AreaSqm         float64    `json:"area_sqm"`
	Rooms           int        `json:"rooms"`
	Bathrooms       int        `json:"bathrooms"`
	Floor           int        `json:"floor"`
	Parking         bool       `json:"parking"`
	Elevator        bool       `json:"elevator"`
	PetsAllowed     bool       `json:"pets_allowed"`
	ImageRefs       []string   `json:"image_refs"`
	PublishedAt     string     `json:"published_at"`
}

type GetListingResponse struct {
	Listing ListingDTO `json:"listing"`
}

type ListListingsResponse struct {
	Items []ListingDTO `json:"items"`
}
