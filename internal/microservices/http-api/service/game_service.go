package service

import (
	"context"
	"fmt"
	"strings"

	"playlog/internal/catalog"
	"playlog/internal/microservices/http-api/dto"
	"playlog/internal/microservices/http-api/models"
	"playlog/internal/microservices/http-api/repository"
)

// GameCatalog is the external game metadata source.
type GameCatalog interface {
	SearchGames(ctx context.Context, query string) ([]catalog.Game, error)
	GetGameByID(ctx context.Context, id int64) (*catalog.Game, error)
}

type GameService interface {
	Search(ctx context.Context, query string) ([]catalog.Game, error)
	Ensure(ctx context.Context, req dto.UpsertGameRequest) (*dto.GameResponse, error)
	List(ctx context.Context, page, pageSize int) (*dto.PaginatedGameResponse, error)
	GetDetail(ctx context.Context, id string) (*dto.GameDetailResponse, error)
}

type gameService struct {
	gameRepo   repository.GameRepository
	reviewRepo repository.ReviewRepository
	catalog    GameCatalog
}

func NewGameService(gameRepo repository.GameRepository, reviewRepo repository.ReviewRepository, catalog GameCatalog) GameService {
	return &gameService{
		gameRepo:   gameRepo,
		reviewRepo: reviewRepo,
		catalog:    catalog,
	}
}

// Search queries the catalog and caches every hit locally. The catalog
// results are returned as-is; callers resolve local ids through Ensure.
func (s *gameService) Search(ctx context.Context, query string) ([]catalog.Game, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("query parameter q is required")
	}

	games, err := s.catalog.SearchGames(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	for _, g := range games {
		if _, err := s.gameRepo.Upsert(ctx, gameFromCatalog(g)); err != nil {
			return nil, fmt.Errorf("cache game %d: %w", g.ID, err)
		}
	}

	if games == nil {
		games = []catalog.Game{}
	}
	return games, nil
}

// Ensure upserts the supplied game. Without a title the metadata is fetched
// from the catalog first.
func (s *gameService) Ensure(ctx context.Context, req dto.UpsertGameRequest) (*dto.GameResponse, error) {
	if req.IgdbID <= 0 {
		return nil, invalid("igdbId is required")
	}

	var game *models.Game
	if req.Title == nil {
		found, err := s.catalog.GetGameByID(ctx, req.IgdbID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
		if found == nil {
			return nil, ErrGameNotFound
		}
		game = gameFromCatalog(*found)
	} else {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title must not be blank")
		}
		game = &models.Game{
			IgdbID:      req.IgdbID,
			Title:       title,
			CoverURL:    nonEmpty(req.CoverURL),
			Description: nonEmpty(req.Description),
			Platforms:   nonEmpty(req.Platforms),
		}
	}

	stored, err := s.gameRepo.Upsert(ctx, game)
	if err != nil {
		return nil, err
	}
	resp := dto.FromGameModel(stored)
	return &resp, nil
}

func (s *gameService) List(ctx context.Context, page, pageSize int) (*dto.PaginatedGameResponse, error) {
	games, total, err := s.gameRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginatedGameResponse(games, total, page, pageSize), nil
}

// GetDetail returns the game with its reviews and rating summary.
func (s *gameService) GetDetail(ctx context.Context, id string) (*dto.GameDetailResponse, error) {
	game, err := s.gameRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	filter := repository.ListFilter{GameID: game.ID}
	reviews, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats, err := s.reviewRepo.Stats(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.GameDetailResponse{
		GameResponse:  dto.FromGameModel(game),
		Reviews:       dto.FromReviewModels(reviews),
		ReviewCount:   stats.Count,
		AverageRating: stats.AverageRating,
	}, nil
}

func gameFromCatalog(g catalog.Game) *models.Game {
	game := &models.Game{
		IgdbID: g.ID,
		Title:  g.Name,
	}
	if cover := g.CoverURL(); cover != "" {
		game.CoverURL = &cover
	}
	if g.Summary != "" {
		summary := g.Summary
		game.Description = &summary
	}
	if platforms := g.PlatformNames(); platforms != "" {
		game.Platforms = &platforms
	}
	return game
}

// nonEmpty maps "" to nil so blank optional strings are stored as NULL.
func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
