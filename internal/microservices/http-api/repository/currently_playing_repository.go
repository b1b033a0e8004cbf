package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"playlog/internal/microservices/http-api/models"
)

// CurrentlyPlayingChanges is one partial update, applied atomically.
// A non-nil Screenshots replaces the whole screenshot set.
type CurrentlyPlayingChanges struct {
	Fields      map[string]any
	Screenshots *[]models.Screenshot
}

// ReviewBuilder turns the loaded entry into the review that replaces it.
// Returning an error aborts the conversion.
type ReviewBuilder func(entry *models.CurrentlyPlaying) (*models.Review, error)

type CurrentlyPlayingRepository interface {
	Create(ctx context.Context, entry *models.CurrentlyPlaying) error
	GetByID(ctx context.Context, id string) (*models.CurrentlyPlaying, error)
	GetWithRelations(ctx context.Context, id string) (*models.CurrentlyPlaying, error)
	List(ctx context.Context, filter ListFilter) ([]models.CurrentlyPlaying, error)
	Update(ctx context.Context, id string, changes CurrentlyPlayingChanges) error
	Delete(ctx context.Context, id string) error
	Convert(ctx context.Context, id string, build ReviewBuilder) (*models.Review, error)
}

type currentlyPlayingRepository struct {
	db *gorm.DB
}

func NewCurrentlyPlayingRepository(db *gorm.DB) CurrentlyPlayingRepository {
	return &currentlyPlayingRepository{db: db}
}

func withCurrentlyPlayingRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Game").
		Preload("Screenshots", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

func (r *currentlyPlayingRepository) Create(ctx context.Context, entry *models.CurrentlyPlaying) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User", "Game").Create(entry).Error
	}))
}

func (r *currentlyPlayingRepository) GetByID(ctx context.Context, id string) (*models.CurrentlyPlaying, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var entry models.CurrentlyPlaying
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &entry, nil
}

func (r *currentlyPlayingRepository) GetWithRelations(ctx context.Context, id string) (*models.CurrentlyPlaying, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var entry models.CurrentlyPlaying
	if err := withCurrentlyPlayingRelations(r.db.WithContext(ctx)).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &entry, nil
}

func (r *currentlyPlayingRepository) List(ctx context.Context, filter ListFilter) ([]models.CurrentlyPlaying, error) {
	var entries []models.CurrentlyPlaying
	q := withCurrentlyPlayingRelations(applyFilter(r.db.WithContext(ctx), filter)).
		Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *currentlyPlayingRepository) Update(ctx context.Context, id string, changes CurrentlyPlayingChanges) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if changes.Screenshots != nil {
			if err := tx.Where("currently_playing_id = ?", id).Delete(&models.Screenshot{}).Error; err != nil {
				return err
			}
			for _, s := range *changes.Screenshots {
				shot := s
				shot.ID = ""
				shot.CurrentlyPlayingID = &id
				shot.ReviewID = nil
				if err := tx.Create(&shot).Error; err != nil {
					return err
				}
			}
		}

		fields := changes.Fields
		if len(fields) == 0 {
			fields = map[string]any{"updated_at": time.Now()}
		}
		result := tx.Model(&models.CurrentlyPlaying{}).Where("id = ?", id).Updates(fields)
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

func (r *currentlyPlayingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCurrentlyPlaying(tx, id)
	})
}

func deleteCurrentlyPlaying(tx *gorm.DB, id string) error {
	if err := tx.Where("currently_playing_id = ?", id).Delete(&models.Screenshot{}).Error; err != nil {
		return err
	}
	result := tx.Delete(&models.CurrentlyPlaying{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Convert replaces the entry with the review produced by build. The review
// gets fresh copies of the entry's screenshots; the entry and its screenshots
// are deleted. Either all of it commits or none of it does.
func (r *currentlyPlayingRepository) Convert(ctx context.Context, id string, build ReviewBuilder) (*models.Review, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var created *models.Review

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.CurrentlyPlaying
		err := tx.Preload("Screenshots", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
			First(&entry, "id = ?", id).Error
		if err != nil {
			return err
		}

		review, err := build(&entry)
		if err != nil {
			return err
		}

		review.Screenshots = make([]models.Screenshot, 0, len(entry.Screenshots))
		for _, s := range entry.Screenshots {
			review.Screenshots = append(review.Screenshots, models.Screenshot{
				URL:     s.URL,
				Caption: s.Caption,
			})
		}
		if err := tx.Omit("User", "Game").Create(review).Error; err != nil {
			return err
		}

		if err := deleteCurrentlyPlaying(tx, entry.ID); err != nil {
			return err
		}

		created, err = loadReview(tx, review.ID)
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}
	return created, nil
}
