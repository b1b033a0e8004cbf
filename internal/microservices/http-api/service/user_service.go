package service

import (
	"context"

	"playlog/internal/microservices/http-api/dto"
	"playlog/internal/microservices/http-api/repository"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error)
}

type userService struct {
	userRepo   repository.UserRepository
	reviewRepo repository.ReviewRepository
	cpRepo     repository.CurrentlyPlayingRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	reviewRepo repository.ReviewRepository,
	cpRepo repository.CurrentlyPlayingRepository,
) UserService {
	return &userService{
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
		cpRepo:     cpRepo,
	}
}

// GetProfile gathers everything shown on a user's profile page.
func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	filter := repository.ListFilter{UserID: user.ID}
	reviews, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	playing, err := s.cpRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats, err := s.reviewRepo.Stats(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		User:             dto.FromUserModel(user),
		Reviews:          dto.FromReviewModels(reviews),
		CurrentlyPlaying: dto.FromCurrentlyPlayingModels(playing),
		ReviewCount:      stats.Count,
		AverageRating:    stats.AverageRating,
		TotalPlayTime:    stats.TotalPlayTime,
	}, nil
}
