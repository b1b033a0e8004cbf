package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"playlog/internal/microservices/http-api/models"
)

type GameRepository interface {
	Upsert(ctx context.Context, game *models.Game) (*models.Game, error)
	GetByID(ctx context.Context, id string) (*models.Game, error)
	GetByIgdbID(ctx context.Context, igdbID int64) (*models.Game, error)
	List(ctx context.Context, page, pageSize int) ([]models.Game, int64, error)
}

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

// Upsert inserts the game or overwrites the cached fields of the row with the
// same IGDB id, then returns the stored row.
func (r *gameRepository) Upsert(ctx context.Context, game *models.Game) (*models.Game, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "igdb_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "cover_url", "description", "platforms", "updated_at"}),
	}).Create(game).Error
	if err != nil {
		return nil, translateError(err)
	}

	// on conflict the generated id was discarded, so read the row back by its natural key
	return r.GetByIgdbID(ctx, game.IgdbID)
}

func (r *gameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var game models.Game
	if err := r.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &game, nil
}

func (r *gameRepository) GetByIgdbID(ctx context.Context, igdbID int64) (*models.Game, error) {
	var game models.Game
	if err := r.db.WithContext(ctx).Where("igdb_id = ?", igdbID).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// List returns cached games newest first with pagination
func (r *gameRepository) List(ctx context.Context, page, pageSize int) ([]models.Game, int64, error) {
	var games []models.Game
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Game{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&games).Error
	if err != nil {
		return nil, 0, err
	}
	return games, total, nil
}
