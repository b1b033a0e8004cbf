package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"playlog/internal/metrics"
	"playlog/internal/microservices/http-api/dto"
	"playlog/internal/microservices/http-api/models"
	"playlog/internal/microservices/http-api/repository"
)

type CurrentlyPlayingService interface {
	List(ctx context.Context, query dto.ListQuery) ([]dto.CurrentlyPlayingResponse, error)
	Get(ctx context.Context, id string) (*dto.CurrentlyPlayingResponse, error)
	Create(ctx context.Context, userID string, req dto.CreateCurrentlyPlayingRequest) (*dto.CurrentlyPlayingResponse, error)
	Update(ctx context.Context, userID, id string, req dto.UpdateCurrentlyPlayingRequest) (*dto.CurrentlyPlayingResponse, error)
	Delete(ctx context.Context, userID, id string) error
	Convert(ctx context.Context, userID, id string, req dto.ConvertRequest) (*dto.ReviewResponse, error)
}

type currentlyPlayingService struct {
	repo     repository.CurrentlyPlayingRepository
	gameRepo repository.GameRepository
	logger   *slog.Logger
}

func NewCurrentlyPlayingService(
	repo repository.CurrentlyPlayingRepository,
	gameRepo repository.GameRepository,
	logger *slog.Logger,
) CurrentlyPlayingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &currentlyPlayingService{
		repo:     repo,
		gameRepo: gameRepo,
		logger:   logger,
	}
}

func (s *currentlyPlayingService) List(ctx context.Context, query dto.ListQuery) ([]dto.CurrentlyPlayingResponse, error) {
	entries, err := s.repo.List(ctx, repository.ListFilter{
		UserID: query.UserID,
		GameID: query.GameID,
		Limit:  query.Limit,
	})
	if err != nil {
		return nil, err
	}
	return dto.FromCurrentlyPlayingModels(entries), nil
}

func (s *currentlyPlayingService) Get(ctx context.Context, id string) (*dto.CurrentlyPlayingResponse, error) {
	entry, err := s.repo.GetWithRelations(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCurrentlyPlayingNotFound
		}
		return nil, err
	}
	resp := dto.FromCurrentlyPlayingModel(entry)
	return &resp, nil
}

func (s *currentlyPlayingService) Create(ctx context.Context, userID string, req dto.CreateCurrentlyPlayingRequest) (*dto.CurrentlyPlayingResponse, error) {
	platform := strings.TrimSpace(req.Platform)
	if platform == "" {
		return nil, invalid("platform is required")
	}
	if err := checkPlayTime(req.PlayTimeHours); err != nil {
		return nil, err
	}
	startDate, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	shots, err := toScreenshots(req.Screenshots)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.GameID) == "" {
		return nil, invalid("gameId is required")
	}
	if _, err := s.gameRepo.GetByID(ctx, req.GameID); err != nil {
		if repository.IsNotFound(err) {
			return nil, invalid("game %s does not exist", req.GameID)
		}
		return nil, err
	}

	entry := &models.CurrentlyPlaying{
		UserID:        userID,
		GameID:        req.GameID,
		Platform:      platform,
		StartDate:     startDate,
		PlayTimeHours: req.PlayTimeHours,
		Notes:         nonEmpty(req.Notes),
		Screenshots:   shots,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrReferenceMissing) {
			return nil, invalid("referenced game or user does not exist")
		}
		return nil, err
	}
	return s.Get(ctx, entry.ID)
}

func (s *currentlyPlayingService) Update(ctx context.Context, userID, id string, req dto.UpdateCurrentlyPlayingRequest) (*dto.CurrentlyPlayingResponse, error) {
	changes, err := currentlyPlayingChanges(req)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, userID, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, changes); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCurrentlyPlayingNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func currentlyPlayingChanges(req dto.UpdateCurrentlyPlayingRequest) (repository.CurrentlyPlayingChanges, error) {
	changes := repository.CurrentlyPlayingChanges{Fields: map[string]any{}}

	if req.Platform.Set {
		platform := strings.TrimSpace(req.Platform.Value)
		if !req.Platform.Valid || platform == "" {
			return changes, invalid("platform must not be blank")
		}
		changes.Fields["platform"] = platform
	}
	if req.StartDate.Set {
		v, err := nullableDate("startDate", req.StartDate)
		if err != nil {
			return changes, err
		}
		changes.Fields["start_date"] = v
	}
	if req.PlayTimeHours.Set {
		if err := checkPlayTime(req.PlayTimeHours.Ptr()); err != nil {
			return changes, err
		}
		if req.PlayTimeHours.Valid {
			changes.Fields["play_time_hours"] = req.PlayTimeHours.Value
		} else {
			changes.Fields["play_time_hours"] = nil
		}
	}
	if req.Notes.Set {
		changes.Fields["notes"] = nullableText(req.Notes)
	}
	if req.Screenshots.Set {
		// null and [] both clear the set
		shots, err := toScreenshots(req.Screenshots.Value)
		if err != nil {
			return changes, err
		}
		changes.Screenshots = &shots
	}
	return changes, nil
}

func (s *currentlyPlayingService) Delete(ctx context.Context, userID, id string) error {
	if err := s.authorize(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrCurrentlyPlayingNotFound
		}
		return err
	}
	return nil
}

// authorize loads the entry and checks it belongs to userID.
func (s *currentlyPlayingService) authorize(ctx context.Context, userID, id string) error {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrCurrentlyPlayingNotFound
		}
		return err
	}
	if entry.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// Convert finishes a playthrough: the entry is replaced by a review in one
// transaction, so a reader sees either the entry or the review, never both.
func (s *currentlyPlayingService) Convert(ctx context.Context, userID, id string, req dto.ConvertRequest) (*dto.ReviewResponse, error) {
	review, err := s.repo.Convert(ctx, id, func(entry *models.CurrentlyPlaying) (*models.Review, error) {
		if entry.UserID != userID {
			return nil, ErrForbidden
		}
		if req.Rating == nil {
			return nil, invalid("rating is required")
		}
		if err := checkRating(*req.Rating); err != nil {
			return nil, err
		}
		finishDate, err := parseDate("finishDate", req.FinishDate)
		if err != nil {
			return nil, err
		}

		content := nonEmpty(req.Content)
		if content == nil {
			content = nonEmpty(entry.Notes)
		}

		return &models.Review{
			UserID:        entry.UserID,
			GameID:        entry.GameID,
			Rating:        *req.Rating,
			Platform:      entry.Platform,
			StartDate:     entry.StartDate,
			FinishDate:    finishDate,
			PlayTimeHours: entry.PlayTimeHours,
			Content:       content,
		}, nil
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCurrentlyPlayingNotFound
		}
		return nil, err
	}

	metrics.ConversionsTotal.Inc()
	s.logger.Info("currently playing converted to review", "entry_id", id, "review_id", review.ID, "user_id", userID)

	resp := dto.FromReviewModel(review)
	return &resp, nil
}
