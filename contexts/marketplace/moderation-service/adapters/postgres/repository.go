package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	domainerrors "homeboard/contexts/marketplace/moderation-service/domain/errors"
	"homeboard/contexts/marketplace/moderation-service/ports"
	"homeboard/internal/shared/events"
	"homeboard/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&submissionModel{},
		&listingModel{},
		&reviewAuditModel{},
		&outboxModel{},
	)
}

func (r *Repository) CreateSubmission(ctx context.Context, submission entities.Submission) error {
	row, err := submissionModelFromEntity(submission)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, err
	}
	return row.toEntity()
}

// UpdateSubmissionStatus is the compare-and-set behind every review
// transition: the row is updated only while its status still matches
// what the caller read. Zero rows affected means another actor got
// there first; a follow-up lookup tells a lost race from a deleted row.
func (r *Repository) UpdateSubmissionStatus(ctx context.Context, submission entities.Submission, expected entities.SubmissionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("submission_id = ?", submission.SubmissionID).
		Where("status = ?", string(expected)).
		Updates(map[string]any{
			"status":         string(submission.Status),
			"review_comment": submission.ReviewComment,
			"reviewed_by":    submission.ReviewedBy,
			"reviewed_at":    normalizeOptionalTime(submission.ReviewedAt),
			"updated_at":     submission.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&submissionModel{}).
			Where("submission_id = ?", submission.SubmissionID).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrSubmissionNotFound
		}
		return domainerrors.ErrInvalidStatusTransition
	}
	return nil
}

func (r *Repository) AppendImageRef(ctx context.Context, submissionID string, ref string, expected entities.SubmissionStatus, at time.Time) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row submissionModel
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ?", strings.TrimSpace(submissionID)).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrSubmissionNotFound
			}
			return err
		}
		if row.Status != string(expected) {
			return domainerrors.ErrInvalidStatusTransition
		}

		if err := json.Unmarshal(orEmptyList(row.ImageRefs), &refs); err != nil {
			return err
		}
		refs = append(refs, ref)
		encoded, err := json.Marshal(refs)
		if err != nil {
			return err
		}
		return tx.
			Model(&submissionModel{}).
			Where("submission_id = ?", row.SubmissionID).
			Updates(map[string]any{
				"image_refs": encoded,
				"updated_at": at.UTC(),
			}).
			Error
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *Repository) ListSubmissions(ctx context.Context, filter ports.SubmissionFilter) ([]entities.Submission, error) {
	tx := r.db.WithContext(ctx).Model(&submissionModel{})
	if strings.TrimSpace(filter.SubmitterID) != "" {
		tx = tx.Where("submitter_id = ?", strings.TrimSpace(filter.SubmitterID))
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}

	var rows []submissionModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) AddAudit(ctx context.Context, audit entities.ReviewAudit) error {
	row := reviewAuditModel{
		AuditID:      strings.TrimSpace(audit.AuditID),
		SubmissionID: strings.TrimSpace(audit.SubmissionID),
		Action:       strings.TrimSpace(audit.Action),
		OldStatus:    string(audit.OldStatus),
		NewStatus:    string(audit.NewStatus),
		ActorID:      strings.TrimSpace(audit.ActorID),
		Comment:      strings.TrimSpace(audit.Comment),
		CreatedAt:    audit.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListAudits(ctx context.Context, submissionID string) ([]entities.ReviewAudit, error) {
	var rows []reviewAuditModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.ReviewAudit, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.ReviewAudit{
			AuditID:      row.AuditID,
			SubmissionID: row.SubmissionID,
			Action:       row.Action,
			OldStatus:    entities.SubmissionStatus(row.OldStatus),
			NewStatus:    entities.SubmissionStatus(row.NewStatus),
			ActorID:      row.ActorID,
			Comment:      row.Comment,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) ListApproved(ctx context.Context) ([]entities.Submission, error) {
	return r.ListSubmissions(ctx, ports.SubmissionFilter{
		Status: entities.SubmissionStatusApproved,
	})
}

// ConvertSubmission commits one pipeline item in a single transaction:
// insert the listing, delete the source row while it is still approved,
// append the outbox event. The conditional delete makes a concurrent
// cancel-approval a clean skip; the unique index on the listing's
// submission_id makes a crashed half-batch re-run a clean skip too.
func (r *Repository) ConvertSubmission(ctx context.Context, source entities.Submission, listing entities.Listing, event events.Envelope) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := listingModelFromEntity(listing)
		if err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyConverted
			}
			return err
		}

		result := tx.
			Where("submission_id = ?", source.SubmissionID).
			Where("status = ?", string(entities.SubmissionStatusApproved)).
			Delete(&submissionModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrSourceChanged
		}

		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return tx.Create(&outboxModel{
			OutboxID:  event.EventID,
			EventType: event.EventType,
			Payload:   payload,
			Status:    outbox.StatusPending,
			CreatedAt: listing.PublishedAt.UTC(),
		}).Error
	})
}

func (r *Repository) GetListing(ctx context.Context, listingID string) (entities.Listing, error) {
	var row listingModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", strings.TrimSpace(listingID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Listing{}, domainerrors.ErrListingNotFound
		}
		return entities.Listing{}, err
	}
	return row.toEntity()
}

func (r *Repository) ListListings(ctx context.Context) ([]entities.Listing, error) {
	var rows []listingModel
	if err := r.db.WithContext(ctx).Order("published_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Listing, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	tx := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var rows []outboxModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, outbox.Message{
			ID:          row.OutboxID,
			EventType:   row.EventType,
			Payload:     row.Payload,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
			PublishedAt: row.PublishedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	at := publishedAt.UTC()
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": &at,
		}).
		Error
}

type submissionModel struct {
	SubmissionID    string     `gorm:"column:submission_id;primaryKey"`
	SubmitterID     string     `gorm:"column:submitter_id;index"`
	Title           string     `gorm:"column:title"`
	Description     string     `gorm:"column:description"`
	Price           int64      `gorm:"column:price"`
	MonthlyRent     int64      `gorm:"column:monthly_rent"`
	PropertyType    string     `gorm:"column:property_type"`
	TransactionType string     `gorm:"column:transaction_type"`
	City            string     `gorm:"column:city"`
	District        string     `gorm:"column:district"`
	Street          string     `gorm:"column:street"`
	PostalCode      string     `gorm:"column:postal_code"`
	AreaSqm         float64    `gorm:"column:area_sqm"`
	Rooms           int        `gorm:"column:rooms"`
	Bathrooms       int        `gorm:"column:bathrooms"`
	Floor           int        `gorm:"column:floor"`
	Parking         bool       `gorm:"column:parking"`
	Elevator        bool       `gorm:"column:elevator"`
	PetsAllowed     bool       `gorm:"column:pets_allowed"`
	ImageRefs       []byte     `gorm:"column:image_refs;type:jsonb"`
	Status          string     `gorm:"column:status;index"`
	ReviewComment   string     `gorm:"column:review_comment"`
	ReviewedBy      string     `gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (submissionModel) TableName() string {
	return "submissions"
}

type listingModel struct {
	ListingID       string    `gorm:"column:listing_id;primaryKey"`
	SubmissionID    string    `gorm:"column:submission_id;uniqueIndex"`
	SubmitterID     string    `gorm:"column:submitter_id;index"`
	Title           string    `gorm:"column:title"`
	Description     string    `gorm:"column:description"`
	Price           int64     `gorm:"column:price"`
	MonthlyRent     int64     `gorm:"column:monthly_rent"`
	PropertyType    string    `gorm:"column:property_type"`
	TransactionType string    `gorm:"column:transaction_type"`
	City            string    `gorm:"column:city"`
	District        string    `gorm:"column:district"`
	Street          string    `gorm:"column:street"`
	PostalCode      string    `gorm:"column:postal_code"`
	AreaSqm         float64   `gorm:"column:area_sqm"`
	Rooms           int       `gorm:"column:rooms"`
	Bathrooms       int       `gorm:"column:bathrooms"`
	Floor           int       `gorm:"column:floor"`
	Parking         bool      `gorm:"column:parking"`
	Elevator        bool      `gorm:"column:elevator"`
	PetsAllowed     bool      `gorm:"column:pets_allowed"`
	ImageRefs       []byte    `gorm:"column:image_refs;type:jsonb"`
	PublishedAt     time.Time `gorm:"column:published_at"`
}

func (listingModel) TableName() string {
	return "listings"
}

type reviewAuditModel struct {
	AuditID      string    `gorm:"column:audit_id;primaryKey"`
	SubmissionID string    `gorm:"column:submission_id;index"`
	Action       string    `gorm:"column:action"`
	OldStatus    string    `gorm:"column:old_status"`
	NewStatus    string    `gorm:"column:new_status"`
	ActorID      string    `gorm:"column:actor_id"`
	Comment      string    `gorm:"column:comment"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (reviewAuditModel) TableName() string {
	return "review_audits"
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload;type:jsonb"`
	Status      string     `gorm:"column:status;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "moderation_outbox"
}

func submissionModelFromEntity(submission entities.Submission) (submissionModel, error) {
	refs, err := json.Marshal(submission.ImageRefs)
	if err != nil {
		return submissionModel{}, err
	}
	return submissionModel{
		SubmissionID:    submission.SubmissionID,
		SubmitterID:     submission.SubmitterID,
		Title:           submission.Content.Title,
		Description:     submission.Content.Description,
		Price:           submission.Content.Price,
		MonthlyRent:     submission.Content.MonthlyRent,
		PropertyType:    submission.Content.PropertyType,
		TransactionType: submission.Content.TransactionType,
		City:            submission.Content.Address.City,
		District:        submission.Content.Address.District,
		Street:          submission.Content.Address.Street,
		PostalCode:      submission.Content.Address.PostalCode,
		AreaSqm:         submission.Content.AreaSqm,
		Rooms:           submission.Content.Rooms,
		Bathrooms:       submission.Content.Bathrooms,
		Floor:           submission.Content.Floor,
		Parking:         submission.Content.Parking,
		Elevator:        submission.Content.Elevator,
		PetsAllowed:     submission.Content.PetsAllowed,
		ImageRefs:       refs,
		Status:          string(submission.Status),
		ReviewComment:   submission.ReviewComment,
		ReviewedBy:      submission.ReviewedBy,
		ReviewedAt:      normalizeOptionalTime(submission.ReviewedAt),
		CreatedAt:       submission.CreatedAt.UTC(),
		UpdatedAt:       submission.UpdatedAt.UTC(),
	}, nil
}

func (m submissionModel) toEntity() (entities.Submission, error) {
	var refs []string
	if err := json.Unmarshal(orEmptyList(m.ImageRefs), &refs); err != nil {
		return entities.Submission{}, err
	}
	return entities.Submission{
		SubmissionID:  m.SubmissionID,
		SubmitterID:   m.SubmitterID,
		Content:       m.content(),
		ImageRefs:     refs,
		Status:        entities.SubmissionStatus(m.Status),
		ReviewComment: m.ReviewComment,
		ReviewedBy:    m.ReviewedBy,
		ReviewedAt:    m.ReviewedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

func (m submissionModel) content() entities.PropertyContent {
	return entities.PropertyContent{
		Title:           m.Title,
		Description:     m.Description,
		Price:           m.Price,
		MonthlyRent:     m.MonthlyRent,
		PropertyType:    m.PropertyType,
		TransactionType: m.TransactionType,
		Address: entities.Address{
			City:       m.City,
			District:   m.District,
			Street:     m.Street,
			PostalCode: m.PostalCode,
		},
		AreaSqm:     m.AreaSqm,
		Rooms:       m.Rooms,
		Bathrooms:   m.Bathrooms,
		Floor:       m.Floor,
		Parking:     m.Parking,
		Elevator:    m.Elevator,
		PetsAllowed: m.PetsAllowed,
	}
}

func listingModelFromEntity(listing entities.Listing) (listingModel, error) {
	refs, err := json.Marshal(listing.ImageRefs)
	if err != nil {
		return listingModel{}, err
	}
	return listingModel{
		ListingID:       listing.ListingID,
		SubmissionID:    listing.SubmissionID,
		SubmitterID:     listing.SubmitterID,
		Title:           listing.Content.Title,
		Description:     listing.Content.Description,
		Price:           listing.Content.Price,
		MonthlyRent:     listing.Content.MonthlyRent,
		PropertyType:    listing.Content.PropertyType,
		TransactionType: listing.Content.TransactionType,
		City:            listing.Content.Address.City,
		District:        listing.Content.Address.District,
		Street:          listing.Content.Address.Street,
		PostalCode:      listing.Content.Address.PostalCode,
		AreaSqm:         listing.Content.AreaSqm,
		Rooms:           listing.Content.Rooms,
		Bathrooms:       listing.Content.Bathrooms,
		Floor:           listing.Content.Floor,
		Parking:         listing.Content.Parking,
		Elevator:        listing.Content.Elevator,
		PetsAllowed:     listing.Content.PetsAllowed,
		ImageRefs:       refs,
		PublishedAt:     listing.PublishedAt.UTC(),
	}, nil
}

func (m listingModel) toEntity() (entities.Listing, error) {
	var refs []string
	if err := json.Unmarshal(orEmptyList(m.ImageRefs), &refs); err != nil {
		return entities.Listing{}, err
	}
	sub := submissionModel{
		Title:           m.Title,
		Description:     m.Description,
		Price:           m.Price,
		MonthlyRent:     m.MonthlyRent,
		PropertyType:    m.PropertyType,
		TransactionType: m.TransactionType,
		City:            m.City,
		District:        m.District,
		Street:          m.Street,
		PostalCode:      m.PostalCode,
		AreaSqm:         m.AreaSqm,
		Rooms:           m.Rooms,
		Bathrooms:       m.Bathrooms,
		Floor:           m.Floor,
		Parking:         m.Parking,
		Elevator:        m.Elevator,
		PetsAllowed:     m.PetsAllowed,
	}
	return entities.Listing{
		ListingID:    m.ListingID,
		SubmissionID: m.SubmissionID,
		SubmitterID:  m.SubmitterID,
		Content:      sub.content(),
		ImageRefs:    refs,
		PublishedAt:  m.PublishedAt,
	}, nil
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}

func orEmptyList(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("[]")
	}
	return raw
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
