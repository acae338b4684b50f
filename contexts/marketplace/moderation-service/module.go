package moderationservice

import (
	"log/slog"

	"homeboard/contexts/marketplace/moderation-service/adapters/assets"
	httpadapter "homeboard/contexts/marketplace/moderation-service/adapters/http"
	"homeboard/contexts/marketplace/moderation-service/adapters/memory"
	"homeboard/contexts/marketplace/moderation-service/application/commands"
	"homeboard/contexts/marketplace/moderation-service/application/queries"
	"homeboard/contexts/marketplace/moderation-service/domain/entities"
	"homeboard/contexts/marketplace/moderation-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
	Assets  ports.AssetStore
}

type Dependencies struct {
	Repository  ports.Repository
	Conversions ports.ConversionRepository
	Listings    ports.ListingRepository
	Assets      ports.AssetStore
	Cache       ports.ListingCache
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createSubmission := commands.CreateSubmissionUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	reviewSubmission := commands.ReviewSubmissionUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	attachImage := commands.AttachImageUseCase{
		Repository: deps.Repository,
		Assets:     deps.Assets,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	convertApproved := commands.ConvertApprovedUseCase{
		Conversions: deps.Conversions,
		Cache:       deps.Cache,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	queryUseCase := queries.QueryUseCase{
		Repository: deps.Repository,
		Logger:     deps.Logger,
	}
	listingQueries := queries.ListingQueryUseCase{
		Listings: deps.Listings,
		Cache:    deps.Cache,
		Logger:   deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateSubmission: createSubmission,
			ReviewSubmission: reviewSubmission,
			AttachImage:      attachImage,
			ConvertApproved:  convertApproved,
			Queries:          queryUseCase,
			Listings:         listingQueries,
			Logger:           deps.Logger,
		},
		Assets: deps.Assets,
	}
}

func NewInMemoryModule(seed []entities.Submission, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	assetStore := assets.NewMemoryStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Conversions: store,
		Listings:    store,
		Assets:      assetStore,
		Cache:       memory.NewListingCache(),
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
