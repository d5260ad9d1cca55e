package profile

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/segmentio/ksuid"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrResumeNotFound  = errors.New("resume not found")
	ErrJobNotFound     = errors.New("job not found")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) ProfileByUserID(userID string) (*Profile, error) {
	profile := &Profile{}
	var fullName, email, contact, activeResumeID sql.NullString
	row := r.db.QueryRow(
		`SELECT user_id, full_name, email, contact, active_resume_id, created_at FROM user_profile WHERE user_id = $1`,
		userID,
	)
	err := row.Scan(&profile.UserID, &fullName, &email, &contact, &activeResumeID, &profile.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if fullName.Valid {
		profile.FullName = fullName.String
	}
	if email.Valid {
		profile.Email = email.String
	}
	if contact.Valid {
		profile.Contact = contact.String
	}
	if activeResumeID.Valid {
		profile.ActiveResumeID = activeResumeID.String
	}
	profile.Resumes, err = r.Resumes(userID)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpsertProfile creates the profile row on first save and applies the sparse
// patch on top. Saving an empty patch still creates the row.
func (r *Repository) UpsertProfile(userID string, rq *ProfileRqUpdate) (*Profile, error) {
	_, err := r.db.Exec(
		`INSERT INTO user_profile (user_id, created_at) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`,
		userID,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	set := []string{}
	var args []interface{}
	argIndex := 1
	appendSet := func(column string, val interface{}) {
		set = append(set, fmt.Sprintf(`%s = $%d`, column, argIndex))
		args = append(args, val)
		argIndex++
	}
	if rq.FullName != nil {
		appendSet("full_name", *rq.FullName)
	}
	if rq.Email != nil {
		appendSet("email", *rq.Email)
	}
	if rq.Contact != nil {
		appendSet("contact", *rq.Contact)
	}
	if len(set) > 0 {
		stmt := fmt.Sprintf(`UPDATE user_profile SET %s WHERE user_id = $%d`, strings.Join(set, `, `), argIndex)
		args = append(args, userID)
		if _, err := r.db.Exec(stmt, args...); err != nil {
			return nil, err
		}
	}
	return r.ProfileByUserID(userID)
}

// ApplyToJob records an application. Re-applying is a no-op and keeps the
// original applied_at. The boolean reports whether this call was the first
// application.
func (r *Repository) ApplyToJob(userID, jobID string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM user_profile WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrProfileNotFound
	}
	res, err := r.db.Exec(
		`INSERT INTO applied_job (user_id, job_id, applied_at) VALUES ($1, $2, $3) ON CONFLICT (user_id, job_id) DO NOTHING`,
		userID,
		jobID,
		time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AppliedJobs lists the user's applications newest first, hydrated with the
// job title and company name for display.
func (r *Repository) AppliedJobs(userID string) ([]*AppliedJob, error) {
	applied := []*AppliedJob{}
	rows, err := r.db.Query(`
		SELECT applied_job.job_id, job.title, job.slug, company.name, applied_job.applied_at
		FROM applied_job
		JOIN job ON job.id = applied_job.job_id
		LEFT JOIN company ON company.id = job.company_id
		WHERE applied_job.user_id = $1
		ORDER BY applied_job.applied_at DESC`, userID)
	if err != nil {
		return applied, err
	}
	defer rows.Close()
	for rows.Next() {
		a := &AppliedJob{}
		var companyName sql.NullString
		if err := rows.Scan(&a.JobID, &a.JobTitle, &a.JobSlug, &companyName, &a.AppliedAt); err != nil {
			return applied, err
		}
		if companyName.Valid {
			a.CompanyName = companyName.String
		}
		a.TimeAgo = humanize.Time(a.AppliedAt)
		applied = append(applied, a)
	}
	return applied, rows.Err()
}

// ApplicationEmailDetails looks up what the application confirmation email
// needs about a published job.
func (r *Repository) ApplicationEmailDetails(jobID string) (jobTitle, companyName string, err error) {
	var company sql.NullString
	row := r.db.QueryRow(`
		SELECT job.title, company.name
		FROM job
		LEFT JOIN company ON company.id = job.company_id
		WHERE job.id = $1 AND job.is_published = TRUE`, jobID)
	err = row.Scan(&jobTitle, &company)
	if err == sql.ErrNoRows {
		return "", "", ErrJobNotFound
	}
	if err != nil {
		return "", "", err
	}
	if company.Valid {
		companyName = company.String
	}
	return jobTitle, companyName, nil
}

func (r *Repository) Resumes(userID string) ([]Resume, error) {
	resumes := []Resume{}
	rows, err := r.db.Query(
		`SELECT id, user_id, name, url, created_at FROM resume WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return resumes, err
	}
	defer rows.Close()
	for rows.Next() {
		var res Resume
		if err := rows.Scan(&res.ID, &res.UserID, &res.Name, &res.URL, &res.CreatedAt); err != nil {
			return resumes, err
		}
		resumes = append(resumes, res)
	}
	return resumes, rows.Err()
}

// AddResumes stores the given resumes, skipping any url the user already
// uploaded, and returns the full list afterwards.
func (r *Repository) AddResumes(userID string, rqs []ResumeRq) ([]Resume, error) {
	for _, rq := range rqs {
		id, err := ksuid.NewRandom()
		if err != nil {
			return nil, err
		}
		if _, err := r.db.Exec(
			`INSERT INTO resume (id, user_id, name, url, created_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (user_id, url) DO NOTHING`,
			id.String(),
			userID,
			rq.Name,
			rq.URL,
			time.Now().UTC(),
		); err != nil {
			return nil, err
		}
	}
	return r.Resumes(userID)
}

// SetActiveResume marks one of the user's own resumes as the one attached to
// future applications. Pointing at someone else's resume reports
// ErrResumeNotFound.
func (r *Repository) SetActiveResume(userID, resumeID string) error {
	res, err := r.db.Exec(`
		UPDATE user_profile SET active_resume_id = $1
		WHERE user_id = $2
		AND EXISTS (SELECT 1 FROM resume WHERE resume.id = $1 AND resume.user_id = $2)`,
		resumeID,
		userID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrResumeNotFound
	}
	return nil
}

func (r *Repository) DeleteResume(userID, resumeID string) error {
	res, err := r.db.Exec(`DELETE FROM resume WHERE id = $1 AND user_id = $2`, resumeID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrResumeNotFound
	}
	// the deleted resume may have been the active one
	_, err = r.db.Exec(
		`UPDATE user_profile SET active_resume_id = NULL WHERE user_id = $1 AND active_resume_id = $2`,
		userID,
		resumeID,
	)
	return err
}
