package job

import (
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/workhive/job-board/internal/membership"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = []string{
	`CREATE TABLE IF NOT EXISTS job (
		id CHAR(27) NOT NULL UNIQUE,
		title VARCHAR(128) NOT NULL,
		description TEXT,
		short_description VARCHAR(255),
		category_id CHAR(27),
		company_id CHAR(27),
		user_id VARCHAR(64) NOT NULL,
		is_published BOOLEAN NOT NULL DEFAULT FALSE,
		shift_timing VARCHAR(32),
		work_mode VARCHAR(32),
		years_of_experience VARCHAR(32),
		tags TEXT[] NOT NULL DEFAULT '{}',
		saved_users TEXT[] NOT NULL DEFAULT '{}',
		slug VARCHAR(160) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY(id)
	)`,
	`CREATE TABLE IF NOT EXISTS company (
		id CHAR(27) NOT NULL UNIQUE,
		name VARCHAR(128) NOT NULL,
		description TEXT,
		overview TEXT,
		why_join_us TEXT,
		website VARCHAR(255),
		twitter VARCHAR(255),
		linkedin VARCHAR(255),
		address_line VARCHAR(255),
		city VARCHAR(64),
		zipcode VARCHAR(16),
		logo_image_id CHAR(27),
		followers TEXT[] NOT NULL DEFAULT '{}',
		user_id VARCHAR(64) NOT NULL,
		slug VARCHAR(160) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY(id)
	)`,
	`CREATE TABLE IF NOT EXISTS category (
		id CHAR(27) NOT NULL UNIQUE,
		name VARCHAR(64) NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY(id)
	)`,
	`CREATE TABLE IF NOT EXISTS applied_job (
		user_id VARCHAR(64) NOT NULL,
		job_id CHAR(27) NOT NULL,
		applied_at TIMESTAMP NOT NULL,
		PRIMARY KEY(user_id, job_id)
	)`,
	`CREATE TABLE IF NOT EXISTS attachment (
		id CHAR(27) NOT NULL UNIQUE,
		job_id CHAR(27) NOT NULL,
		name VARCHAR(128) NOT NULL,
		url VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY(id)
	)`,
}

// setupTestDB connects to the database named by TEST_DATABASE_URL and wipes
// the tables afterwards. Without the env var the test is skipped, so the unit
// suite stays runnable without postgres.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	for _, stmt := range testSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		for _, table := range []string{"attachment", "applied_job", "job", "company", "category"} {
			db.Exec(`TRUNCATE TABLE ` + table)
		}
		db.Close()
	})
	return db
}

func Test_Repository_DraftToPublishedLifecycle(t *testing.T) {
	assert := assert.New(t)
	repo := NewRepository(setupTestDB(t))

	draft, err := repo.SaveDraft("u1", "Backend Engineer")
	assert.NoError(err)
	assert.False(draft.IsPublished)
	assert.NotEmpty(draft.Slug)

	// publishing an incomplete draft is rejected
	_, err = repo.PublishJob(draft.ID, "u1")
	assert.Equal(ErrJobIncomplete, err)

	desc := "build and run our hiring platform"
	categoryID := "cat00000000000000000000cat1"
	companyID := "com00000000000000000000com1"
	shift := "full-time"
	mode := "remote"
	yoe := "1-3"
	assert.NoError(repo.UpdateJob(draft.ID, "u1", &JobRqUpdate{
		Description:       &desc,
		CategoryID:        &categoryID,
		CompanyID:         &companyID,
		ShiftTiming:       &shift,
		WorkMode:          &mode,
		YearsOfExperience: &yoe,
		Tags:              []string{"go", "postgres"},
	}))

	// a non-owner patch is indistinguishable from a missing job
	title := "Hijacked"
	assert.Equal(ErrJobNotFound, repo.UpdateJob(draft.ID, "u2", &JobRqUpdate{Title: &title}))

	published, err := repo.PublishJob(draft.ID, "u1")
	assert.NoError(err)
	assert.True(published.IsPublished)

	jobs, err := repo.JobsByFilter(Filter{Title: "backend", WorkMode: "remote,hybrid"})
	assert.NoError(err)
	if assert.Len(jobs, 1) {
		assert.Equal(draft.ID, jobs[0].ID)
		assert.Equal([]string{"go", "postgres"}, []string(jobs[0].Tags))
	}

	// drafts never show up in search
	unpublished, err := repo.UnpublishJob(draft.ID, "u1")
	assert.NoError(err)
	assert.False(unpublished.IsPublished)
	jobs, err = repo.JobsByFilter(Filter{Title: "backend"})
	assert.NoError(err)
	assert.Empty(jobs)

	assert.NoError(repo.DeleteJobCascade(draft.ID, "u1"))
	_, err = repo.JobByID(draft.ID)
	assert.Equal(ErrJobNotFound, err)
}

func Test_Repository_ToggleSaveParity(t *testing.T) {
	assert := assert.New(t)
	repo := NewRepository(setupTestDB(t))

	draft, err := repo.SaveDraft("u1", "Toggle Target")
	assert.NoError(err)

	job, saved, err := repo.ToggleSave(draft.ID, "u2")
	assert.NoError(err)
	assert.True(saved)
	assert.Equal([]string{"u2"}, []string(job.SavedUsers))

	job, saved, err = repo.ToggleSave(draft.ID, "u2")
	assert.NoError(err)
	assert.False(saved)
	assert.Empty(job.SavedUsers)

	_, _, err = repo.ToggleSave("nope000000000000000000000no", "u2")
	assert.Equal(ErrJobNotFound, err)
}

func Test_Repository_ConcurrentTogglesNeverDuplicate(t *testing.T) {
	assert := assert.New(t)
	db := setupTestDB(t)
	repo := NewRepository(db)

	draft, err := repo.SaveDraft("u1", "Contended Job")
	assert.NoError(err)

	const flips = 25
	var wg sync.WaitGroup
	wg.Add(flips)
	for i := 0; i < flips; i++ {
		go func() {
			defer wg.Done()
			_, _, err := repo.ToggleSave(draft.ID, "u2")
			assert.NoError(err)
		}()
	}
	wg.Wait()

	var savedUsers pq.StringArray
	assert.NoError(db.QueryRow(`SELECT saved_users FROM job WHERE id = $1`, draft.ID).Scan(&savedUsers))
	// odd flip count lands on saved, and the row lock serialises every flip
	assert.True(membership.Contains(savedUsers, "u2"))
	assert.Len(savedUsers, 1)
}
