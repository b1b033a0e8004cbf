package service

import (
	"context"
	"errors"
	"strings"

	"playlog/internal/microservices/http-api/dto"
	"playlog/internal/microservices/http-api/models"
	"playlog/internal/microservices/http-api/repository"
)

type ReviewService interface {
	List(ctx context.Context, query dto.ListQuery) ([]dto.ReviewResponse, error)
	Get(ctx context.Context, id string) (*dto.ReviewResponse, error)
	Create(ctx context.Context, userID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	Update(ctx context.Context, userID, id string, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, userID, id string) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	gameRepo   repository.GameRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, gameRepo repository.GameRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		gameRepo:   gameRepo,
	}
}

func (s *reviewService) List(ctx context.Context, query dto.ListQuery) ([]dto.ReviewResponse, error) {
	reviews, err := s.reviewRepo.List(ctx, repository.ListFilter{
		UserID: query.UserID,
		GameID: query.GameID,
		Limit:  query.Limit,
	})
	if err != nil {
		return nil, err
	}
	return dto.FromReviewModels(reviews), nil
}

func (s *reviewService) Get(ctx context.Context, id string) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetWithRelations(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	resp := dto.FromReviewModel(review)
	return &resp, nil
}

// Create stores a review with its screenshots and optional save file.
func (s *reviewService) Create(ctx context.Context, userID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if req.Rating == nil {
		return nil, invalid("rating is required")
	}
	if err := checkRating(*req.Rating); err != nil {
		return nil, err
	}
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
	finishDate, err := parseDate("finishDate", req.FinishDate)
	if err != nil {
		return nil, err
	}
	shots, err := toScreenshots(req.Screenshots)
	if err != nil {
		return nil, err
	}

	if err := s.requireGame(ctx, req.GameID); err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID:        userID,
		GameID:        req.GameID,
		Rating:        *req.Rating,
		Platform:      platform,
		StartDate:     startDate,
		FinishDate:    finishDate,
		PlayTimeHours: req.PlayTimeHours,
		Content:       nonEmpty(req.Content),
		Screenshots:   shots,
	}
	if req.SaveFile != nil {
		if review.SaveFile, err = toSaveFile(*req.SaveFile); err != nil {
			return nil, err
		}
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, s.mapWriteError(err)
	}
	return s.Get(ctx, review.ID)
}

func (s *reviewService) requireGame(ctx context.Context, gameID string) error {
	if strings.TrimSpace(gameID) == "" {
		return invalid("gameId is required")
	}
	if _, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		if repository.IsNotFound(err) {
			return invalid("game %s does not exist", gameID)
		}
		return err
	}
	return nil
}

func (s *reviewService) mapWriteError(err error) error {
	if errors.Is(err, repository.ErrReferenceMissing) {
		return invalid("referenced game or user does not exist")
	}
	return err
}

// Update applies a partial change. The body is validated before the row is
// looked up so malformed requests fail with a validation error first.
func (s *reviewService) Update(ctx context.Context, userID, id string, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	changes, err := reviewChanges(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrForbidden
	}

	if err := s.reviewRepo.Update(ctx, id, changes); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func reviewChanges(req dto.UpdateReviewRequest) (repository.ReviewChanges, error) {
	changes := repository.ReviewChanges{Fields: map[string]any{}}

	if req.Rating.Set {
		if !req.Rating.Valid {
			return changes, invalid("rating cannot be null")
		}
		if err := checkRating(req.Rating.Value); err != nil {
			return changes, err
		}
		changes.Fields["rating"] = req.Rating.Value
	}
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
	if req.FinishDate.Set {
		v, err := nullableDate("finishDate", req.FinishDate)
		if err != nil {
			return changes, err
		}
		changes.Fields["finish_date"] = v
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
	if req.Content.Set {
		changes.Fields["content"] = nullableText(req.Content)
	}

	shots, err := toScreenshots(req.ScreenshotsToAdd)
	if err != nil {
		return changes, err
	}
	changes.AddScreenshots = shots
	changes.RemoveScreenshotIDs = req.ScreenshotsToRemove

	if req.SaveFile.Set {
		if req.SaveFile.Valid {
			if changes.SaveFile, err = toSaveFile(req.SaveFile.Value); err != nil {
				return changes, err
			}
		} else {
			changes.RemoveSaveFile = true
		}
	}
	return changes, nil
}

func (s *reviewService) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}
	if existing.UserID != userID {
		return ErrForbidden
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}
