package queries

import (
	"context"
	"log/slog"
	"strings"

	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	"homeboard/contexts/marketplace/moderation-service/ports"
)

type ListingQueryUseCase struct {
	Listings ports.ListingRepository
	Cache    ports.ListingCache
	Logger   *slog.Logger
}

func (uc ListingQueryUseCase) GetListing(ctx context.Context, listingID string) (entities.Listing, error) {
	listingID = strings.TrimSpace(listingID)
	if uc.Cache != nil {
		if listing, ok := uc.Cache.GetListing(ctx, listingID); ok {
			return listing, nil
		}
	}
	listing, err := uc.Listings.GetListing(ctx, listingID)
	if err != nil {
		return entities.Listing{}, err
	}
	if uc.Cache != nil {
		uc.Cache.SetListing(ctx, listing)
	}
	return listing, nil
}

func (uc ListingQueryUseCase) ListListings(ctx context.Context) ([]entities.Listing, error) {
	return uc.Listings.ListListings(ctx)
}
