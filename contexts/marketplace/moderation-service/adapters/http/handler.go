package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"homeboard/contexts/marketplace/moderation-service/application/commands"
	"homeboard/contexts/marketplace/moderation-service/application/queries"
	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	"homeboard/contexts/marketplace/moderation-service/ports"
	httptransport "homeboard/contexts/marketplace/moderation-service/transport/http"
)

type Handler struct {
	CreateSubmission commands.CreateSubmissionUseCase
	ReviewSubmission commands.ReviewSubmissionUseCase
	AttachImage      commands.AttachImageUseCase
	ConvertApproved  commands.ConvertApprovedUseCase
	Queries          queries.QueryUseCase
	Listings         queries.ListingQueryUseCase
	Logger           *slog.Logger
}

func (h Handler) CreateSubmissionHandler(
	ctx context.Context,
	submitterID string,
	req httptransport.CreateSubmissionRequest,
) (httptransport.CreateSubmissionResponse, error) {
	item, err := h.CreateSubmission.Execute(ctx, commands.CreateSubmissionCommand{
		SubmitterID: submitterID,
		Content: entities.PropertyContent{
			Title:           req.Title,
			Description:     req.Description,
			Price:           req.Price,
			MonthlyRent:     req.MonthlyRent,
			PropertyType:    req.PropertyType,
			TransactionType: req.TransactionType,
			Address: entities.Address{
				City:       req.Address.City,
				District:   req.Address.District,
				Street:     req.Address.Street,
				PostalCode: req.Address.PostalCode,
			},
			AreaSqm:     req.AreaSqm,
			Rooms:       req.Rooms,
			Bathrooms:   req.Bathrooms,
			Floor:       req.Floor,
			Parking:     req.Parking,
			Elevator:    req.Elevator,
			PetsAllowed: req.PetsAllowed,
		},
	})
	if err != nil {
		return httptransport.CreateSubmissionResponse{}, err
	}
	return httptransport.CreateSubmissionResponse{Submission: mapSubmission(item)}, nil
}

func (h Handler) AttachImageHandler(
	ctx context.Context,
	actor ports.Actor,
	submissionID string,
	data []byte,
) (httptransport.AttachImageResponse, error) {
	refs, err := h.AttachImage.Execute(ctx, commands.AttachImageCommand{
		SubmissionID: submissionID,
		Actor:        actor,
		Data:         data,
	})
	if err != nil {
		return httptransport.AttachImageResponse{}, err
	}
	return httptransport.AttachImageResponse{
		SubmissionID: submissionID,
		ImageRefs:    refs,
	}, nil
}

func (h Handler) GetSubmissionHandler(ctx context.Context, actor ports.Actor, submissionID string) (httptransport.GetSubmissionResponse, error) {
	item, err := h.Queries.GetSubmission(ctx, submissionID, actor)
	if err != nil {
		return httptransport.GetSubmissionResponse{}, err
	}
	return httptransport.GetSubmissionResponse{Submission: mapSubmission(item)}, nil
}

func (h Handler) ListOwnSubmissionsHandler(ctx context.Context, submitterID string) (httptransport.ListSubmissionsResponse, error) {
	items, err := h.Queries.ListOwnSubmissions(ctx, submitterID)
	if err != nil {
		return httptransport.ListSubmissionsResponse{}, err
	}
	return httptransport.ListSubmissionsResponse{Items: mapSubmissions(items)}, nil
}

func (h Handler) ListAllSubmissionsHandler(ctx context.Context, status string) (httptransport.ListSubmissionsResponse, error) {
	items, err := h.Queries.ListSubmissions(ctx, queries.ListSubmissionsQuery{Status: status})
	if err != nil {
		return httptransport.ListSubmissionsResponse{}, err
	}
	return httptransport.ListSubmissionsResponse{Items: mapSubmissions(items)}, nil
}

func (h Handler) ApproveSubmissionHandler(
	ctx context.Context,
	actorID string,
	submissionID string,
	req httptransport.ReviewRequest,
) (httptransport.ReviewResponse, error) {
	item, err := h.ReviewSubmission.Approve(ctx, commands.ReviewCommand{
		SubmissionID: submissionID,
		ActorID:      actorID,
		Comment:      req.Comment,
	})
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	return httptransport.ReviewResponse{Submission: mapSubmission(item)}, nil
}

func (h Handler) RejectSubmissionHandler(
	ctx context.Context,
	actorID string,
	submissionID string,
	req httptransport.ReviewRequest,
) (httptransport.ReviewResponse, error) {
	item, err := h.ReviewSubmission.Reject(ctx, commands.ReviewCommand{
		SubmissionID: submissionID,
		ActorID:      actorID,
		Comment:      req.Comment,
	})
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	return httptransport.ReviewResponse{Submission: mapSubmission(item)}, nil
}

func (h Handler) CancelApprovalHandler(
	ctx context.Context,
	actorID string,
	submissionID string,
	req httptransport.ReviewRequest,
) (httptransport.ReviewResponse, error) {
	item, err := h.ReviewSubmission.CancelApproval(ctx, commands.ReviewCommand{
		SubmissionID: submissionID,
		ActorID:      actorID,
		Comment:      req.Comment,
	})
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	return httptransport.ReviewResponse{Submission: mapSubmission(item)}, nil
}

func (h Handler) ConvertApprovedHandler(ctx context.Context) (httptransport.ConversionResponse, error) {
	report, err := h.ConvertApproved.Execute(ctx)
	if err != nil {
		return httptransport.ConversionResponse{}, err
	}
	failures := make([]httptransport.ConversionFailureDTO, 0, len(report.Failures))
	for _, failure := range report.Failures {
		failures = append(failures, httptransport.ConversionFailureDTO{
			SubmissionID: failure.SubmissionID,
			Reason:       failure.Reason,
		})
	}
	return httptransport.ConversionResponse{
		Converted: report.Converted,
		Skipped:   report.Skipped,
		Failures:  failures,
	}, nil
}

func (h Handler) ListAuditsHandler(ctx context.Context, submissionID string) (httptransport.ListAuditsResponse, error) {
	items, err := h.Queries.ListAudits(ctx, submissionID)
	if err != nil {
		return httptransport.ListAuditsResponse{}, err
	}
	result := make([]httptransport.AuditDTO, 0, len(items))
	for _, item := range items {
		result = append(result, httptransport.AuditDTO{
			AuditID:      item.AuditID,
			SubmissionID: item.SubmissionID,
			Action:       item.Action,
			OldStatus:    string(item.OldStatus),
			NewStatus:    string(item.NewStatus),
			ActorID:      item.ActorID,
			Comment:      item.Comment,
			CreatedAt:    item.CreatedAt.Format(time.RFC3339),
		})
	}
	return httptransport.ListAuditsResponse{Items: result}, nil
}

func (h Handler) SummaryHandler(ctx context.Context, submitterID string) (httptransport.SummaryResponse, error) {
	summary, err := h.Queries.Summary(ctx, submitterID)
	if err != nil {
		return httptransport.SummaryResponse{}, err
	}
	return httptransport.SummaryResponse{
		Total:    summary.Total,
		Pending:  summary.Pending,
		Approved: summary.Approved,
		Rejected: summary.Rejected,
	}, nil
}

func (h Handler) GetListingHandler(ctx context.Context, listingID string) (httptransport.GetListingResponse, error) {
	item, err := h.Listings.GetListing(ctx, listingID)
	if err != nil {
		return httptransport.GetListingResponse{}, err
	}
	return httptransport.GetListingResponse{Listing: mapListing(item)}, nil
}

func (h Handler) ListListingsHandler(ctx context.Context) (httptransport.ListListingsResponse, error) {
	items, err := h.Listings.ListListings(ctx)
	if err != nil {
		return httptransport.ListListingsResponse{}, err
	}
	result := make([]httptransport.ListingDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapListing(item))
	}
	return httptransport.ListListingsResponse{Items: result}, nil
}

func mapSubmission(item entities.Submission) httptransport.SubmissionDTO {
	dto := httptransport.SubmissionDTO{
		SubmissionID:    item.SubmissionID,
		SubmitterID:     item.SubmitterID,
		Title:           item.Content.Title,
		Description:     item.Content.Description,
		Price:           item.Content.Price,
		MonthlyRent:     item.Content.MonthlyRent,
		PropertyType:    item.Content.PropertyType,
		TransactionType: item.Content.TransactionType,
		Address:         mapAddress(item.Content.Address),
		AreaSqm:         item.Content.AreaSqm,
		Rooms:           item.Content.Rooms,
		Bathrooms:       item.Content.Bathrooms,
		Floor:           item.Content.Floor,
		Parking:         item.Content.Parking,
		Elevator:        item.Content.Elevator,
		PetsAllowed:     item.Content.PetsAllowed,
		ImageRefs:       append([]string{}, item.ImageRefs...),
		Status:          string(item.Status),
		ReviewComment:   item.ReviewComment,
		ReviewedBy:      item.ReviewedBy,
		CreatedAt:       item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       item.UpdatedAt.Format(time.RFC3339),
	}
	if item.ReviewedAt != nil {
		dto.ReviewedAt = item.ReviewedAt.Format(time.RFC3339)
	}
	return dto
}

func mapSubmissions(items []entities.Submission) []httptransport.SubmissionDTO {
	result := make([]httptransport.SubmissionDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapSubmission(item))
	}
	return result
}

func mapListing(item entities.Listing) httptransport.ListingDTO {
	return httptransport.ListingDTO{
		ListingID:       item.ListingID,
		SubmissionID:    item.SubmissionID,
		SubmitterID:     item.SubmitterID,
		Title:           item.Content.Title,
		Description:     item.Content.Description,
		Price:           item.Content.Price,
		MonthlyRent:     item.Content.MonthlyRent,
		PropertyType:    item.Content.PropertyType,
		TransactionType: item.Content.TransactionType,
		Address:         mapAddress(item.Content.Address),
		AreaSqm:         item.Content.AreaSqm,
		Rooms:           item.Content.Rooms,
		Bathrooms:       item.Content.Bathrooms,
		Floor:           item.Content.Floor,
		Parking:         item.Content.Parking,
		Elevator:        item.Content.Elevator,
		PetsAllowed:     item.Content.PetsAllowed,
		ImageRefs:       append([]string{}, item.ImageRefs...),
		PublishedAt:     item.PublishedAt.Format(time.RFC3339),
	}
}

func mapAddress(address entities.Address) httptransport.AddressDTO {
	return httptransport.AddressDTO{
		City:       address.City,
		District:   address.District,
		Street:     address.Street,
		PostalCode: address.PostalCode,
	}
}
