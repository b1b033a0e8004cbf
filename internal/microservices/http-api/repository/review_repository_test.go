package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playlog/internal/microservices/http-api/models"
	"playlog/internal/testdb"
)

func seedReview(t *testing.T, repo ReviewRepository, userID, gameID string) *models.Review {
	t.Helper()
	review := &models.Review{
		UserID:   userID,
		GameID:   gameID,
		Rating:   8,
		Platform: "PC",
		Screenshots: []models.Screenshot{
			{URL: "/uploads/a.png"},
			{URL: "/uploads/b.png"},
		},
		SaveFile: &models.SaveFile{URL: "/uploads/slot.sav", Filename: "slot.sav"},
	}
	require.NoError(t, repo.Create(context.Background(), review))
	return review
}

func TestReviewCreateWithChildren(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	repo := NewReviewRepository(db)

	created := seedReview(t, repo, user.ID, game.ID)

	got, err := repo.GetWithRelations(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.User.Email)
	assert.Equal(t, "Celeste", got.Game.Title)
	assert.Len(t, got.Screenshots, 2)
	require.NotNil(t, got.SaveFile)
	assert.Equal(t, "slot.sav", got.SaveFile.Filename)
}

func TestReviewUpdateScreenshotsAndSaveFile(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	repo := NewReviewRepository(db)
	ctx := context.Background()

	review := seedReview(t, repo, user.ID, game.ID)
	other := seedReview(t, repo, user.ID, game.ID)

	err := repo.Update(ctx, review.ID, ReviewChanges{
		Fields:              map[string]any{"rating": 9.5, "content": nil},
		AddScreenshots:      []models.Screenshot{{URL: "/uploads/c.png"}},
		RemoveScreenshotIDs: []string{review.Screenshots[0].ID, other.Screenshots[0].ID},
		RemoveSaveFile:      true,
	})
	require.NoError(t, err)

	got, err := repo.GetWithRelations(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 9.5, got.Rating)
	assert.Len(t, got.Screenshots, 2)
	assert.Nil(t, got.SaveFile)

	untouched, err := repo.GetWithRelations(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, untouched.Screenshots, 2, "removal is scoped to the edited review")
}

func TestReviewUpdateReplacesSaveFile(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	repo := NewReviewRepository(db)
	ctx := context.Background()

	review := seedReview(t, repo, user.ID, game.ID)
	require.NoError(t, repo.Update(ctx, review.ID, ReviewChanges{
		SaveFile: &models.SaveFile{URL: "/uploads/new.sav", Filename: "new.sav"},
	}))

	got, err := repo.GetWithRelations(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SaveFile)
	assert.Equal(t, "new.sav", got.SaveFile.Filename)

	var files int64
	require.NoError(t, db.Model(&models.SaveFile{}).Count(&files).Error)
	assert.Equal(t, int64(1), files)
}

func TestReviewUpdateMissing(t *testing.T) {
	db := testdb.Open(t)
	repo := NewReviewRepository(db)

	err := repo.Update(context.Background(), "missing", ReviewChanges{Fields: map[string]any{"rating": 5.0}})
	assert.True(t, IsNotFound(err))
}

func TestReviewDeleteRemovesChildren(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	repo := NewReviewRepository(db)
	ctx := context.Background()

	review := seedReview(t, repo, user.ID, game.ID)
	require.NoError(t, repo.Delete(ctx, review.ID))

	_, err := repo.GetByID(ctx, review.ID)
	assert.True(t, IsNotFound(err))

	var shots, files int64
	require.NoError(t, db.Model(&models.Screenshot{}).Where("review_id = ?", review.ID).Count(&shots).Error)
	require.NoError(t, db.Model(&models.SaveFile{}).Where("review_id = ?", review.ID).Count(&files).Error)
	assert.Zero(t, shots)
	assert.Zero(t, files)

	assert.True(t, IsNotFound(repo.Delete(ctx, review.ID)))
}

func TestReviewListAndStats(t *testing.T) {
	db := testdb.Open(t)
	alice := testdb.SeedUser(t, db, "alice@example.com")
	bob := testdb.SeedUser(t, db, "bob@example.com")
	celeste := testdb.SeedGame(t, db, 1, "Celeste")
	hades := testdb.SeedGame(t, db, 2, "Hades")
	repo := NewReviewRepository(db)
	ctx := context.Background()

	hours := 10.0
	for _, r := range []*models.Review{
		{UserID: alice.ID, GameID: celeste.ID, Rating: 8, Platform: "PC", PlayTimeHours: &hours},
		{UserID: alice.ID, GameID: hades.ID, Rating: 10, Platform: "Switch", PlayTimeHours: &hours},
		{UserID: bob.ID, GameID: celeste.ID, Rating: 6, Platform: "PC"},
	} {
		require.NoError(t, repo.Create(ctx, r))
	}

	aliceReviews, err := repo.List(ctx, ListFilter{UserID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, aliceReviews, 2)

	celesteReviews, err := repo.List(ctx, ListFilter{GameID: celeste.ID, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, celesteReviews, 1)

	stats, err := repo.Stats(ctx, ListFilter{UserID: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Count)
	assert.InDelta(t, 9.0, stats.AverageRating, 0.001)
	assert.InDelta(t, 20.0, stats.TotalPlayTime, 0.001)

	empty, err := repo.Stats(ctx, ListFilter{UserID: "nobody"})
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.AverageRating)

	none, err := repo.List(ctx, ListFilter{UserID: alice.ID, GameID: "abc"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReviewUpdateIgnoresMalformedScreenshotIDs(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	repo := NewReviewRepository(db)
	ctx := context.Background()

	review := seedReview(t, repo, user.ID, game.ID)
	require.NoError(t, repo.Update(ctx, review.ID, ReviewChanges{
		RemoveScreenshotIDs: []string{"abc", review.Screenshots[1].ID},
	}))

	got, err := repo.GetWithRelations(ctx, review.ID)
	require.NoError(t, err)
	require.Len(t, got.Screenshots, 1)
	assert.Equal(t, review.Screenshots[0].ID, got.Screenshots[0].ID)
}

func TestScreenshotNeedsExactlyOneParent(t *testing.T) {
	db := testdb.Open(t)
	user := testdb.SeedUser(t, db, "a@example.com")
	game := testdb.SeedGame(t, db, 1, "Celeste")
	review := seedReview(t, NewReviewRepository(db), user.ID, game.ID)
	entry := &models.CurrentlyPlaying{UserID: user.ID, GameID: game.ID, Platform: "PC"}
	require.NoError(t, NewCurrentlyPlayingRepository(db).Create(context.Background(), entry))

	assert.Error(t, db.Create(&models.Screenshot{URL: "/uploads/x.png", ReviewID: &review.ID, CurrentlyPlayingID: &entry.ID}).Error)
	assert.Error(t, db.Create(&models.Screenshot{URL: "/uploads/y.png"}).Error)
	assert.NoError(t, db.Create(&models.Screenshot{URL: "/uploads/z.png", CurrentlyPlayingID: &entry.ID}).Error)
}
