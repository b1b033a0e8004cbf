package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playlog/internal/microservices/http-api/models"
	"playlog/internal/testdb"
)

func seedEntry(t *testing.T, repo CurrentlyPlayingRepository, userID, gameID string) *models.CurrentlyPlaying {
	t.Helper()
	hours := 5.0
	entry := &models.CurrentlyPlaying{
		UserID:        userID,
		GameID:        gameID,
		Platform:      "PC",
		PlayTimeHours: &hours,
		Notes:         strPtr("halfway through chapter 4"),
		Screenshots:   []models.Screenshot{{URL: "/uploads/summit.png", Caption: strPtr("summit")}},
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	return entry
}

func TestCurrentlyPlayingConvert(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	repo := NewCurrentlyPlayingRepository(db)
	ctx := context.Background()

	entry := seedEntry(t, repo, user.ID, game.ID)
	sourceShotID := entry.Screenshots[0].ID

	review, err := repo.Convert(ctx, entry.ID, func(e *models.CurrentlyPlaying) (*models.Review, error) {
		return &models.Review{
			UserID:        e.UserID,
			GameID:        e.GameID,
			Rating:        8.5,
			Platform:      e.Platform,
			PlayTimeHours: e.PlayTimeHours,
			Content:       e.Notes,
		}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 8.5, review.Rating)
	assert.Equal(t, "Celeste", review.Game.Title)
	require.Len(t, review.Screenshots, 1)
	assert.Equal(t, "/uploads/summit.png", review.Screenshots[0].URL)
	assert.NotEqual(t, sourceShotID, review.Screenshots[0].ID, "screenshots are copied, not moved")

	_, err = repo.GetByID(ctx, entry.ID)
	assert.True(t, IsNotFound(err))

	var leftovers int64
	require.NoError(t, db.Model(&models.Screenshot{}).Where("currently_playing_id = ?", entry.ID).Count(&leftovers).Error)
	assert.Zero(t, leftovers)
}

func TestCurrentlyPlayingConvertRollsBack(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	repo := NewCurrentlyPlayingRepository(db)
	ctx := context.Background()

	entry := seedEntry(t, repo, user.ID, game.ID)

	// a review pointing at a missing game fails inside the transaction
	_, err := repo.Convert(ctx, entry.ID, func(e *models.CurrentlyPlaying) (*models.Review, error) {
		return &models.Review{UserID: e.UserID, GameID: "no-such-game", Rating: 5, Platform: e.Platform}, nil
	})
	require.Error(t, err)

	still, err := repo.GetWithRelations(ctx, entry.ID)
	require.NoError(t, err)
	assert.Len(t, still.Screenshots, 1)

	var reviews int64
	require.NoError(t, db.Model(&models.Review{}).Count(&reviews).Error)
	assert.Zero(t, reviews)
}

func TestCurrentlyPlayingConvertBuilderError(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	repo := NewCurrentlyPlayingRepository(db)
	ctx := context.Background()

	entry := seedEntry(t, repo, user.ID, game.ID)
	errStop := errors.New("stop")

	_, err := repo.Convert(ctx, entry.ID, func(*models.CurrentlyPlaying) (*models.Review, error) {
		return nil, errStop
	})
	assert.ErrorIs(t, err, errStop)

	_, err = repo.GetByID(ctx, entry.ID)
	assert.NoError(t, err)
}

func TestCurrentlyPlayingConvertMissing(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCurrentlyPlayingRepository(db)

	_, err := repo.Convert(context.Background(), "missing", func(*models.CurrentlyPlaying) (*models.Review, error) {
		t.Fatal("builder must not run for a missing entry")
		return nil, nil
	})
	assert.True(t, IsNotFound(err))
}

func TestCurrentlyPlayingReplaceScreenshots(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	repo := NewCurrentlyPlayingRepository(db)
	ctx := context.Background()

	entry := seedEntry(t, repo, user.ID, game.ID)
	shots := []models.Screenshot{{URL: "/uploads/one.png"}, {URL: "/uploads/two.png"}}

	require.NoError(t, repo.Update(ctx, entry.ID, CurrentlyPlayingChanges{
		Fields:      map[string]any{"notes": nil},
		Screenshots: &shots,
	}))

	got, err := repo.GetWithRelations(ctx, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Notes)
	require.Len(t, got.Screenshots, 2)

	urls := []string{got.Screenshots[0].URL, got.Screenshots[1].URL}
	assert.ElementsMatch(t, []string{"/uploads/one.png", "/uploads/two.png"}, urls)
}

func TestCurrentlyPlayingDelete(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	repo := NewCurrentlyPlayingRepository(db)
	ctx := context.Background()

	entry := seedEntry(t, repo, user.ID, game.ID)
	require.NoError(t, repo.Delete(ctx, entry.ID))

	var shots int64
	require.NoError(t, db.Model(&models.Screenshot{}).Count(&shots).Error)
	assert.Zero(t, shots)
}
