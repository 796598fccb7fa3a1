package testing

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glefebvre/catalog-console/internal/database"
	"github.com/glefebvre/catalog-console/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB creates an in-memory SQLite database for testing
func TestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Named shared-cache database so every pooled connection sees the same tables
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CleanupDB removes all records from test database tables
func CleanupDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	db.Exec("DELETE FROM console_states")
	db.Exec("DELETE FROM edit_logs")
}

// CreateConsoleState creates a test console state row
func CreateConsoleState(db *gorm.DB, overrides ...func(*models.ConsoleState)) *models.ConsoleState {
	state := &models.ConsoleState{
		SessionID: fmt.Sprintf("session_%d", time.Now().UnixNano()),
		Users:     []models.User{SampleUser(1)},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, override := range overrides {
		override(state)
	}

	db.Create(state)
	return state
}

// CreateEditLog creates a test edit log entry
func CreateEditLog(db *gorm.DB, overrides ...func(*models.EditLog)) *models.EditLog {
	started := time.Now().Add(-time.Second)
	completed := time.Now()
	entry := &models.EditLog{
		Kind:        models.KindMovie,
		ContentID:   5,
		Title:       "Test Movie",
		Status:      models.EditStatusSuccess,
		StartedAt:   started,
		CompletedAt: &completed,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	for _, override := range overrides {
		override(entry)
	}

	db.Create(entry)
	return entry
}

// SampleUser returns a catalog user fixture
func SampleUser(id int64) models.User {
	return models.User{
		UserID:           id,
		Username:         fmt.Sprintf("user%d", id),
		FirstName:        "Test",
		LastName:         fmt.Sprintf("User %d", id),
		RegistrationDate: "2024-01-15T10:30:00",
		SLimit:           10,
	}
}

// SampleMovie returns a movie record fixture with two quality variants
func SampleMovie(id int64, overrides ...func(*models.Movie)) *models.Record {
	movie := &models.Movie{
		Details: models.Details{
			Title:       "Test Movie",
			ReleaseDate: "2024-03-01",
			Overview:    "A test movie",
			VoteAverage: models.Ptr(7.5),
			VoteCount:   models.Ptr(int64(1200)),
			Genres:      []string{"Action", "Thriller"},
		},
		Runtime:   models.Ptr(120),
		Directors: []string{"Jane Doe"},
		Quality: []models.QualityVariant{
			{Type: "1080p", Size: "2.1 GB", Audio: "English", VideoCodec: "x264", FileType: "mkv", MsgID: models.Ptr(int64(101)), ChatID: models.Ptr(int64(-1001)), FileHash: "aaa"},
			{Type: "720p", Size: "1.0 GB", Audio: "English", VideoCodec: "x265", FileType: "mp4", MsgID: models.Ptr(int64(102)), ChatID: models.Ptr(int64(-1001)), FileHash: "bbb"},
		},
	}

	for _, override := range overrides {
		override(movie)
	}

	return models.NewMovieRecord(id, movie)
}

// SampleShow returns a show record fixture with one season of two episodes
func SampleShow(id int64, overrides ...func(*models.Show)) *models.Record {
	show := &models.Show{
		Details: models.Details{
			Title:   "Test Show",
			Genres:  []string{"Drama"},
			Studios: []string{"Studio A", "Studio B"},
		},
		Creators:      []string{"John Roe"},
		TotalSeasons:  models.Ptr(1),
		TotalEpisodes: models.Ptr(2),
		Status:        "Returning Series",
		Seasons: []models.Season{
			{
				SeasonNumber: 1,
				Episodes: []models.Episode{
					{EpisodeNumber: 1, Name: "Pilot", AirDate: "2024-01-01", Quality: []models.QualityVariant{
						{Type: "1080p", Runtime: models.Ptr(52), MsgID: models.Ptr(int64(201))},
					}},
					{EpisodeNumber: 2, Name: "Second"},
				},
			},
		},
	}

	for _, override := range overrides {
		override(show)
	}

	return models.NewShowRecord(id, show)
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error, message string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", message, err)
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual[T comparable](t *testing.T, expected, actual T, message string) {
	t.Helper()
	if expected != actual {
		t.Fatalf("%s: expected %v, got %v", message, expected, actual)
	}
}

// AssertCount verifies the count of records in a table
func AssertCount(t *testing.T, db *gorm.DB, model interface{}, expected int64, message string) {
	t.Helper()
	var count int64
	db.Model(model).Count(&count)
	if count != expected {
		t.Fatalf("%s: expected count %d, got %d", message, expected, count)
	}
}

// WithSessionID sets the session id of a console state
func WithSessionID(id string) func(*models.ConsoleState) {
	return func(state *models.ConsoleState) {
		state.SessionID = id
	}
}

// WithUpdatedAt sets the last update time of a console state
func WithUpdatedAt(at time.Time) func(*models.ConsoleState) {
	return func(state *models.ConsoleState) {
		state.UpdatedAt = at
	}
}

// WithFailedStatus marks an edit log entry as failed
func WithFailedStatus(message string) func(*models.EditLog) {
	return func(entry *models.EditLog) {
		entry.Status = models.EditStatusFailed
		entry.ErrorMessage = &message
	}
}

// WithQualities replaces the quality list of a movie fixture
func WithQualities(q ...models.QualityVariant) func(*models.Movie) {
	return func(movie *models.Movie) {
		movie.Quality = q
	}
}

// WithSeasons replaces the season list of a show fixture
func WithSeasons(s ...models.Season) func(*models.Show) {
	return func(show *models.Show) {
		show.Seasons = s
	}
}
