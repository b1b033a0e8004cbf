package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"playlog/internal/microservices/http-api/models"
)

// ListFilter narrows review and currently-playing listings. Zero values mean no filter.
type ListFilter struct {
	UserID string
	GameID string
	Limit  int
}

// ReviewChanges is one partial update, applied atomically.
type ReviewChanges struct {
	Fields              map[string]any
	AddScreenshots      []models.Screenshot
	RemoveScreenshotIDs []string
	SaveFile            *models.SaveFile // replaces the current save file
	RemoveSaveFile      bool
}

// RatingStats aggregates the reviews matching a filter.
type RatingStats struct {
	Count         int64
	AverageRating float64
	TotalPlayTime float64
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	GetWithRelations(ctx context.Context, id string) (*models.Review, error)
	List(ctx context.Context, filter ListFilter) ([]models.Review, error)
	Update(ctx context.Context, id string, changes ReviewChanges) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, filter ListFilter) (*RatingStats, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// withReviewRelations preloads the full projection returned by the API.
func withReviewRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Game").
		Preload("Screenshots", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("SaveFile")
}

// Create inserts the review together with its screenshots and save file.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User", "Game").Create(review).Error
	}))
}

// GetByID loads the bare row, enough for ownership checks
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &review, nil
}

func (r *reviewRepository) GetWithRelations(ctx context.Context, id string) (*models.Review, error) {
	return loadReview(r.db.WithContext(ctx), id)
}

func loadReview(db *gorm.DB, id string) (*models.Review, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var review models.Review
	if err := withReviewRelations(db).First(&review, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &review, nil
}

// List returns reviews newest first
func (r *reviewRepository) List(ctx context.Context, filter ListFilter) ([]models.Review, error) {
	var reviews []models.Review
	q := withReviewRelations(applyFilter(r.db.WithContext(ctx), filter)).
		Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// applyFilter narrows db to the filter. An id that is not a uuid matches nothing.
func applyFilter(db *gorm.DB, filter ListFilter) *gorm.DB {
	for _, f := range [...]struct{ column, id string }{
		{"user_id", filter.UserID},
		{"game_id", filter.GameID},
	} {
		if f.id == "" {
			continue
		}
		if !validID(f.id) {
			return db.Where("1 = 0")
		}
		db = db.Where(f.column+" = ?", f.id)
	}
	return db
}

func (r *reviewRepository) Update(ctx context.Context, id string, changes ReviewChanges) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		remove := make([]string, 0, len(changes.RemoveScreenshotIDs))
		for _, sid := range changes.RemoveScreenshotIDs {
			if validID(sid) {
				remove = append(remove, sid)
			}
		}
		if len(remove) > 0 {
			// scoped to this review so foreign screenshots are never touched
			err := tx.Where("id IN ? AND review_id = ?", remove, id).
				Delete(&models.Screenshot{}).Error
			if err != nil {
				return err
			}
		}

		for i := range changes.AddScreenshots {
			shot := changes.AddScreenshots[i]
			shot.ID = ""
			shot.ReviewID = &id
			shot.CurrentlyPlayingID = nil
			if err := tx.Create(&shot).Error; err != nil {
				return err
			}
		}

		if changes.RemoveSaveFile || changes.SaveFile != nil {
			if err := tx.Where("review_id = ?", id).Delete(&models.SaveFile{}).Error; err != nil {
				return err
			}
		}
		if changes.SaveFile != nil {
			file := *changes.SaveFile
			file.ID = ""
			file.ReviewID = id
			if err := tx.Create(&file).Error; err != nil {
				return err
			}
		}

		fields := changes.Fields
		if len(fields) == 0 {
			fields = map[string]any{"updated_at": time.Now()}
		}
		result := tx.Model(&models.Review{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translateError(err)
}

// Delete removes the review and its children in one transaction.
func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&models.Screenshot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", id).Delete(&models.SaveFile{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Review{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Stats computes count, average rating and summed play time.
func (r *reviewRepository) Stats(ctx context.Context, filter ListFilter) (*RatingStats, error) {
	var row struct {
		Count         int64
		AverageRating *float64
		TotalPlayTime *float64
	}
	err := applyFilter(r.db.WithContext(ctx).Model(&models.Review{}), filter).
		Select("COUNT(*) AS count, AVG(rating) AS average_rating, SUM(play_time_hours) AS total_play_time").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &RatingStats{Count: row.Count}
	if row.AverageRating != nil {
		stats.AverageRating = *row.AverageRating
	}
	if row.TotalPlayTime != nil {
		stats.TotalPlayTime = *row.TotalPlayTime
	}
	return stats, nil
}
