package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"playlog/internal/catalog"
	"playlog/internal/microservices/http-api/dto"
	"playlog/internal/microservices/http-api/models"
	"playlog/internal/microservices/http-api/repository"
	"playlog/internal/storage"
	"playlog/internal/testdb"
)

type fixture struct {
	db       *gorm.DB
	owner    *models.User
	stranger *models.User
	game     *models.Game
	reviews  ReviewService
	playing  CurrentlyPlayingService
	users    UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)

	gameRepo := repository.NewGameRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cpRepo := repository.NewCurrentlyPlayingRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		db:       db,
		owner:    testdb.SeedUser(t, db, "owner@example.com"),
		stranger: testdb.SeedUser(t, db, "stranger@example.com"),
		game:     testdb.SeedGame(t, db, 7346, "The Legend of Zelda: Breath of the Wild"),
		reviews:  NewReviewService(reviewRepo, gameRepo),
		playing:  NewCurrentlyPlayingService(cpRepo, gameRepo, logger),
		users:    NewUserService(repository.NewUserRepository(db), reviewRepo, cpRepo),
	}
}

func f64(v float64) *float64 { return &v }
func str(v string) *string    { return &v }

func (f *fixture) createReview(t *testing.T, rating float64) *dto.ReviewResponse {
	t.Helper()
	review, err := f.reviews.Create(context.Background(), f.owner.ID, dto.CreateReviewRequest{
		GameID:      f.game.ID,
		Rating:      f64(rating),
		Platform:    "Switch",
		Screenshots: []dto.ScreenshotInput{{URL: "/uploads/korok.png"}},
		SaveFile:    &dto.SaveFileInput{URL: "/uploads/botw.sav", Filename: "botw.sav"},
	})
	require.NoError(t, err)
	return review
}

func TestReviewRatingBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, rating := range []float64{0, 10} {
		review, err := f.reviews.Create(ctx, f.owner.ID, dto.CreateReviewRequest{GameID: f.game.ID, Rating: f64(rating), Platform: "PC"})
		require.NoError(t, err)
		assert.Equal(t, rating, review.Rating)
	}

	for _, rating := range []float64{-0.1, 10.5, 11} {
		_, err := f.reviews.Create(ctx, f.owner.ID, dto.CreateReviewRequest{GameID: f.game.ID, Rating: f64(rating), Platform: "PC"})
		assert.ErrorIs(t, err, ErrValidation, "rating %v", rating)
	}
}

func TestReviewCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.CreateReviewRequest
	}{
		{"missing rating", dto.CreateReviewRequest{GameID: f.game.ID, Platform: "PC"}},
		{"blank platform", dto.CreateReviewRequest{GameID: f.game.ID, Rating: f64(5), Platform: "  "}},
		{"unknown game", dto.CreateReviewRequest{GameID: "nope", Rating: f64(5), Platform: "PC"}},
		{"negative play time", dto.CreateReviewRequest{GameID: f.game.ID, Rating: f64(5), Platform: "PC", PlayTimeHours: f64(-1)}},
		{"bad date", dto.CreateReviewRequest{GameID: f.game.ID, Rating: f64(5), Platform: "PC", StartDate: str("last tuesday")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reviews.Create(ctx, f.owner.ID, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestReviewCreateReturnsRichProjection(t *testing.T) {
	f := newFixture(t)

	review := f.createReview(t, 9)

	require.NotNil(t, review.User)
	assert.Equal(t, "owner@example.com", review.User.Email)
	require.NotNil(t, review.Game)
	assert.Equal(t, int64(7346), review.Game.IgdbID)
	assert.Len(t, review.Screenshots, 1)
	require.NotNil(t, review.SaveFile)
	assert.Equal(t, "botw.sav", review.SaveFile.Filename)
}

func TestReviewOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := f.createReview(t, 7)

	_, err := f.reviews.Update(ctx, f.stranger.ID, review.ID, dto.UpdateReviewRequest{Rating: dto.Of(1.0)})
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.reviews.Delete(ctx, f.stranger.ID, review.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.reviews.Get(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.Rating)
}

func TestReviewUpdateCheckOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// invalid body wins over a missing row
	_, err := f.reviews.Update(ctx, f.owner.ID, "missing", dto.UpdateReviewRequest{Rating: dto.Of(42.0)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.reviews.Update(ctx, f.owner.ID, "missing", dto.UpdateReviewRequest{Rating: dto.Of(4.0)})
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewPartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := f.createReview(t, 7)

	updated, err := f.reviews.Update(ctx, f.owner.ID, review.ID, dto.UpdateReviewRequest{
		Content:             dto.Of("Best open world"),
		FinishDate:          dto.Of("2024-01-01"),
		ScreenshotsToAdd:    []dto.ScreenshotInput{{URL: "/uploads/shrine.png", Caption: str("shrine")}},
		ScreenshotsToRemove: []string{review.Screenshots[0].ID},
		SaveFile:            dto.Null[dto.SaveFileInput](),
	})
	require.NoError(t, err)

	assert.Equal(t, 7.0, updated.Rating, "absent fields are untouched")
	assert.Equal(t, "Switch", updated.Platform)
	require.NotNil(t, updated.Content)
	assert.Equal(t, "Best open world", *updated.Content)
	require.NotNil(t, updated.FinishDate)
	assert.Equal(t, 2024, updated.FinishDate.Year())
	require.Len(t, updated.Screenshots, 1)
	assert.Equal(t, "/uploads/shrine.png", updated.Screenshots[0].URL)
	assert.Nil(t, updated.SaveFile)

	cleared, err := f.reviews.Update(ctx, f.owner.ID, review.ID, dto.UpdateReviewRequest{Content: dto.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.Content)
}

func TestReviewUpdateRejectsBlankPlatform(t *testing.T) {
	f := newFixture(t)
	review := f.createReview(t, 7)

	_, err := f.reviews.Update(context.Background(), f.owner.ID, review.ID, dto.UpdateReviewRequest{Platform: dto.Of("")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReviewDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := f.createReview(t, 7)

	require.NoError(t, f.reviews.Delete(ctx, f.owner.ID, review.ID))

	_, err := f.reviews.Get(ctx, review.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.ErrorIs(t, f.reviews.Delete(ctx, f.owner.ID, review.ID), ErrReviewNotFound)

	var shots, files int64
	f.db.Model(&models.Screenshot{}).Count(&shots)
	f.db.Model(&models.SaveFile{}).Count(&files)
	assert.Zero(t, shots)
	assert.Zero(t, files)
}

func TestConvertScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.playing.Create(ctx, f.owner.ID, dto.CreateCurrentlyPlayingRequest{
		GameID:        f.game.ID,
		Platform:      "PC",
		PlayTimeHours: f64(5),
	})
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)

	review, err := f.playing.Convert(ctx, f.owner.ID, entry.ID, dto.ConvertRequest{
		Rating:     f64(8.5),
		FinishDate: str("2024-01-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, 8.5, review.Rating)
	assert.Equal(t, "PC", review.Platform)
	require.NotNil(t, review.PlayTimeHours)
	assert.Equal(t, 5.0, *review.PlayTimeHours)
	assert.Equal(t, f.owner.ID, review.UserID)
	assert.Equal(t, f.game.ID, review.GameID)
	assert.Nil(t, review.Content)

	_, err = f.playing.Get(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrCurrentlyPlayingNotFound)

	stored, err := f.reviews.Get(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "PC", stored.Platform)
}

func TestConvertContentFallsBackToNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	create := func() string {
		entry, err := f.playing.Create(ctx, f.owner.ID, dto.CreateCurrentlyPlayingRequest{
			GameID:      f.game.ID,
			Platform:    "PC",
			Notes:       str("loving it"),
			Screenshots: []dto.ScreenshotInput{{URL: "/uploads/a.png"}, {URL: "/uploads/b.png"}},
		})
		require.NoError(t, err)
		return entry.ID
	}

	fromNotes, err := f.playing.Convert(ctx, f.owner.ID, create(), dto.ConvertRequest{Rating: f64(9), Content: str("")})
	require.NoError(t, err)
	require.NotNil(t, fromNotes.Content)
	assert.Equal(t, "loving it", *fromNotes.Content)
	assert.Len(t, fromNotes.Screenshots, 2)

	fromCaller, err := f.playing.Convert(ctx, f.owner.ID, create(), dto.ConvertRequest{Rating: f64(9), Content: str("final thoughts")})
	require.NoError(t, err)
	assert.Equal(t, "final thoughts", *fromCaller.Content)
}

func TestConvertRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.playing.Create(ctx, f.owner.ID, dto.CreateCurrentlyPlayingRequest{GameID: f.game.ID, Platform: "PC"})
	require.NoError(t, err)

	_, err = f.playing.Convert(ctx, f.owner.ID, "missing", dto.ConvertRequest{Rating: f64(5)})
	assert.ErrorIs(t, err, ErrCurrentlyPlayingNotFound)

	_, err = f.playing.Convert(ctx, f.stranger.ID, entry.ID, dto.ConvertRequest{Rating: f64(5)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.playing.Convert(ctx, f.owner.ID, entry.ID, dto.ConvertRequest{Rating: f64(10.5)})
	assert.ErrorIs(t, err, ErrValidation)

	// nothing happened
	_, err = f.playing.Get(ctx, entry.ID)
	assert.NoError(t, err)
	var reviews int64
	f.db.Model(&models.Review{}).Count(&reviews)
	assert.Zero(t, reviews)
}

func TestCurrentlyPlayingUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.playing.Create(ctx, f.owner.ID, dto.CreateCurrentlyPlayingRequest{
		GameID:      f.game.ID,
		Platform:    "PC",
		StartDate:   str("2024-02-01"),
		Screenshots: []dto.ScreenshotInput{{URL: "/uploads/a.png"}},
	})
	require.NoError(t, err)

	_, err = f.playing.Update(ctx, f.stranger.ID, entry.ID, dto.UpdateCurrentlyPlayingRequest{Notes: dto.Of("mine now")})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.playing.Update(ctx, f.owner.ID, entry.ID, dto.UpdateCurrentlyPlayingRequest{
		PlayTimeHours: dto.Of(12.5),
		StartDate:     dto.Null[string](),
		Screenshots:   dto.Of([]dto.ScreenshotInput{{URL: "/uploads/x.png"}, {URL: "/uploads/y.png"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, 12.5, *updated.PlayTimeHours)
	assert.Nil(t, updated.StartDate)
	assert.Len(t, updated.Screenshots, 2)

	_, err = f.playing.Update(ctx, f.owner.ID, entry.ID, dto.UpdateCurrentlyPlayingRequest{PlayTimeHours: dto.Of(-3.0)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCurrentlyPlayingDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.playing.Create(ctx, f.owner.ID, dto.CreateCurrentlyPlayingRequest{GameID: f.game.ID, Platform: "PC"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.playing.Delete(ctx, f.stranger.ID, entry.ID), ErrForbidden)
	require.NoError(t, f.playing.Delete(ctx, f.owner.ID, entry.ID))
	assert.ErrorIs(t, f.playing.Delete(ctx, f.owner.ID, entry.ID), ErrCurrentlyPlayingNotFound)
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createReview(t, 8)
	_, err := f.reviews.Create(ctx, f.owner.ID, dto.CreateReviewRequest{GameID: f.game.ID, Rating: f64(6), Platform: "PC", PlayTimeHours: f64(30)})
	require.NoError(t, err)
	_, err = f.playing.Create(ctx, f.owner.ID, dto.CreateCurrentlyPlayingRequest{GameID: f.game.ID, Platform: "PC"})
	require.NoError(t, err)

	profile, err := f.users.GetProfile(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", profile.User.Email)
	assert.Len(t, profile.Reviews, 2)
	assert.Len(t, profile.CurrentlyPlaying, 1)
	assert.Equal(t, int64(2), profile.ReviewCount)
	assert.InDelta(t, 7.0, profile.AverageRating, 0.001)
	assert.InDelta(t, 30.0, profile.TotalPlayTime, 0.001)

	_, err = f.users.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

type fakeCatalog struct {
	games []catalog.Game
	err   error
}

func (c *fakeCatalog) SearchGames(_ context.Context, _ string) ([]catalog.Game, error) {
	return c.games, c.err
}

func (c *fakeCatalog) GetGameByID(_ context.Context, id int64) (*catalog.Game, error) {
	if c.err != nil {
		return nil, c.err
	}
	for i := range c.games {
		if c.games[i].ID == id {
			return &c.games[i], nil
		}
	}
	return nil, nil
}

func newGameService(t *testing.T, cat GameCatalog) (GameService, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	return NewGameService(repository.NewGameRepository(db), repository.NewReviewRepository(db), cat), db
}

func TestGameSearchCachesResults(t *testing.T) {
	cat := &fakeCatalog{games: []catalog.Game{
		{
			ID:        1020,
			Name:      "Grand Theft Auto V",
			Cover:     &catalog.Image{URL: "//images.igdb.com/igdb/image/upload/t_thumb/co2lbd.jpg"},
			Summary:   "Los Santos.",
			Platforms: []catalog.Platform{{Name: "PC"}, {Name: "PlayStation 5"}},
		},
		{ID: 1021, Name: "No Cover"},
	}}
	svc, db := newGameService(t, cat)
	ctx := context.Background()

	games, err := svc.Search(ctx, "gta")
	require.NoError(t, err)
	assert.Len(t, games, 2)

	// a second search is an idempotent upsert
	_, err = svc.Search(ctx, "gta")
	require.NoError(t, err)

	var cached []models.Game
	require.NoError(t, db.Order("igdb_id").Find(&cached).Error)
	require.Len(t, cached, 2)
	assert.Equal(t, "https://images.igdb.com/igdb/image/upload/t_cover_big/co2lbd.jpg", *cached[0].CoverURL)
	assert.Equal(t, "PC, PlayStation 5", *cached[0].Platforms)
	assert.Equal(t, "Los Santos.", *cached[0].Description)
	assert.Nil(t, cached[1].CoverURL)
	assert.Nil(t, cached[1].Description)
}

func TestGameSearchErrors(t *testing.T) {
	svc, _ := newGameService(t, &fakeCatalog{err: catalog.ErrUnavailable})

	_, err := svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Search(context.Background(), "zelda")
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestGameEnsure(t *testing.T) {
	cat := &fakeCatalog{games: []catalog.Game{{ID: 1942, Name: "The Witcher 3: Wild Hunt"}}}
	svc, _ := newGameService(t, cat)
	ctx := context.Background()

	supplied, err := svc.Ensure(ctx, dto.UpsertGameRequest{IgdbID: 500, Title: str("Hollow Knight"), Platforms: str("PC, Switch")})
	require.NoError(t, err)
	assert.Equal(t, "Hollow Knight", supplied.Title)

	again, err := svc.Ensure(ctx, dto.UpsertGameRequest{IgdbID: 500, Title: str("Hollow Knight")})
	require.NoError(t, err)
	assert.Equal(t, supplied.ID, again.ID)

	fetched, err := svc.Ensure(ctx, dto.UpsertGameRequest{IgdbID: 1942})
	require.NoError(t, err)
	assert.Equal(t, "The Witcher 3: Wild Hunt", fetched.Title)

	_, err = svc.Ensure(ctx, dto.UpsertGameRequest{IgdbID: 404})
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = svc.Ensure(ctx, dto.UpsertGameRequest{IgdbID: 500, Title: str(" ")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGameDetail(t *testing.T) {
	f := newFixture(t)
	svc := NewGameService(repository.NewGameRepository(f.db), repository.NewReviewRepository(f.db), &fakeCatalog{})
	ctx := context.Background()

	f.createReview(t, 10)
	f.createReview(t, 6)

	detail, err := svc.GetDetail(ctx, f.game.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Reviews, 2)
	assert.Equal(t, int64(2), detail.ReviewCount)
	assert.InDelta(t, 8.0, detail.AverageRating, 0.001)

	_, err = svc.GetDetail(ctx, "missing")
	assert.ErrorIs(t, err, ErrGameNotFound)

	page, err := svc.List(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, int64(1), page.TotalPages)
}

type failingStore struct{ err error }

func (s failingStore) Save(context.Context, string, io.Reader, string) (string, error) {
	return "", s.err
}

func (failingStore) Backend() string { return "test" }

func TestUpload(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	local, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	url, err := NewUploadService(local, logger).Upload(ctx, "user-1", "save.dat", strings.NewReader("data"), "application/octet-stream")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, "-save.dat"))

	_, err = NewUploadService(storage.Unconfigured{}, logger).Upload(ctx, "user-1", "a.png", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrUploadNotConfigured)

	boom := errors.New("disk full")
	_, err = NewUploadService(failingStore{err: boom}, logger).Upload(ctx, "user-1", "a.png", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, boom)

	_, err = NewUploadService(local, logger).Upload(ctx, "user-1", "", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrValidation)
}
