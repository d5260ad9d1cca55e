package job

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workhive/job-board/internal/membership"

	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"github.com/segmentio/ksuid"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrJobIncomplete = errors.New("job is missing required fields")
)

const selectJobCols = `job.id, job.title, job.description, job.short_description, job.category_id, job.company_id, job.user_id, job.is_published, job.shift_timing, job.work_mode, job.years_of_experience, job.tags, job.saved_users, job.slug, job.created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// SaveDraft creates an unpublished job post holding only a title. Everything
// else is filled in through subsequent patches before publishing.
func (r *Repository) SaveDraft(userID, title string) (*JobPost, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return nil, err
	}
	createdAt := time.Now().UTC()
	slugTitle := slug.Make(fmt.Sprintf("%s %d", title, createdAt.Unix()))
	_, err = r.db.Exec(
		`INSERT INTO job (id, title, user_id, is_published, tags, saved_users, slug, created_at) VALUES ($1, $2, $3, FALSE, '{}', '{}', $4, $5)`,
		id.String(),
		title,
		userID,
		slugTitle,
		createdAt,
	)
	if err != nil {
		return nil, err
	}
	return r.JobByID(id.String())
}

func (r *Repository) JobByID(jobID string) (*JobPost, error) {
	row := r.db.QueryRow(`SELECT `+selectJobCols+` FROM job WHERE job.id = $1`, jobID)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *Repository) JobBySlug(jobSlug string) (*JobPost, error) {
	row := r.db.QueryRow(`SELECT `+selectJobCols+` FROM job WHERE job.is_published = TRUE AND job.slug = $1`, jobSlug)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// JobsByFilter returns published job posts matching the filter, newest first,
// hydrated with company name, category name and attachments.
func (r *Repository) JobsByFilter(f Filter) ([]*JobPost, error) {
	where, args := f.Compile(time.Now())
	jobs := []*JobPost{}
	rows, err := r.db.Query(`
		SELECT `+selectJobCols+`, company.name, category.name
		FROM job
		LEFT JOIN company ON company.id = job.company_id
		LEFT JOIN category ON category.id = job.category_id
		`+where+`
		ORDER BY job.created_at DESC`, args...)
	if err != nil {
		return jobs, err
	}
	defer rows.Close()
	for rows.Next() {
		job := &JobPost{}
		var desc, shortDesc, categoryID, companyID, shiftTiming, workMode, yoe, companyName, categoryName sql.NullString
		var tags, savedUsers pq.StringArray
		err := rows.Scan(
			&job.ID,
			&job.Title,
			&desc,
			&shortDesc,
			&categoryID,
			&companyID,
			&job.UserID,
			&job.IsPublished,
			&shiftTiming,
			&workMode,
			&yoe,
			&tags,
			&savedUsers,
			&job.Slug,
			&job.CreatedAt,
			&companyName,
			&categoryName,
		)
		if err != nil {
			return jobs, err
		}
		assignOptional(job, desc, shortDesc, categoryID, companyID, shiftTiming, workMode, yoe)
		job.Tags = tags
		job.SavedUsers = savedUsers
		if companyName.Valid {
			job.CompanyName = companyName.String
		}
		if categoryName.Valid {
			job.CategoryName = categoryName.String
		}
		job.TimeAgo = job.CreatedAt.UTC().Format("January 2006")
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return jobs, err
	}
	if err := r.hydrateAttachments(jobs); err != nil {
		return jobs, err
	}
	return jobs, nil
}

// UpdateJob applies a sparse patch to a job owned by userID. Updating a job
// that does not exist or is owned by someone else reports ErrJobNotFound
// without leaking which of the two it was.
func (r *Repository) UpdateJob(jobID, userID string, rq *JobRqUpdate) error {
	set := []string{}
	var args []interface{}
	argIndex := 1

	appendSet := func(column string, val interface{}) {
		set = append(set, fmt.Sprintf(`%s = $%d`, column, argIndex))
		args = append(args, val)
		argIndex++
	}

	if rq.Title != nil {
		appendSet("title", *rq.Title)
	}
	if rq.Description != nil {
		appendSet("description", *rq.Description)
	}
	if rq.ShortDescription != nil {
		appendSet("short_description", *rq.ShortDescription)
	}
	if rq.CategoryID != nil {
		appendSet("category_id", *rq.CategoryID)
	}
	if rq.CompanyID != nil {
		appendSet("company_id", *rq.CompanyID)
	}
	if rq.ShiftTiming != nil {
		appendSet("shift_timing", *rq.ShiftTiming)
	}
	if rq.WorkMode != nil {
		appendSet("work_mode", *rq.WorkMode)
	}
	if rq.YearsOfExperience != nil {
		appendSet("years_of_experience", *rq.YearsOfExperience)
	}
	if rq.Tags != nil {
		appendSet("tags", pq.Array(rq.Tags))
	}
	if len(set) == 0 {
		return nil
	}

	stmt := fmt.Sprintf(
		`UPDATE job SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(set, `, `),
		argIndex,
		argIndex+1,
	)
	args = append(args, jobID, userID)
	res, err := r.db.Exec(stmt, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// PublishJob flips a job to published once every field a candidate relies on
// is filled in.
func (r *Repository) PublishJob(jobID, userID string) (*JobPost, error) {
	job, err := r.ownedJobByID(jobID, userID)
	if err != nil {
		return nil, err
	}
	required := []string{
		job.Title,
		job.Description,
		job.CategoryID,
		job.CompanyID,
		job.ShiftTiming,
		job.WorkMode,
		job.YearsOfExperience,
	}
	for _, field := range required {
		if field == "" {
			return nil, ErrJobIncomplete
		}
	}
	if _, err := r.db.Exec(`UPDATE job SET is_published = TRUE WHERE id = $1 AND user_id = $2`, jobID, userID); err != nil {
		return nil, err
	}
	job.IsPublished = true
	return job, nil
}

func (r *Repository) UnpublishJob(jobID, userID string) (*JobPost, error) {
	job, err := r.ownedJobByID(jobID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.Exec(`UPDATE job SET is_published = FALSE WHERE id = $1 AND user_id = $2`, jobID, userID); err != nil {
		return nil, err
	}
	job.IsPublished = false
	return job, nil
}

// DeleteJobCascade removes a job owned by userID along with its attachment
// records. The files themselves live in the external object store and are
// cleaned up by the caller.
func (r *Repository) DeleteJobCascade(jobID, userID string) error {
	if _, err := r.ownedJobByID(jobID, userID); err != nil {
		return err
	}
	if _, err := r.db.Exec(`DELETE FROM attachment WHERE job_id = $1`, jobID); err != nil {
		return err
	}
	if _, err := r.db.Exec(`DELETE FROM applied_job WHERE job_id = $1`, jobID); err != nil {
		return err
	}
	if _, err := r.db.Exec(`DELETE FROM job WHERE id = $1 AND user_id = $2`, jobID, userID); err != nil {
		return err
	}
	return nil
}

// ToggleSave flips whether userID has the job in their saved collection and
// reports the resulting membership. The flip is a single conditional UPDATE
// so concurrent toggles for the same user cannot append a duplicate entry.
// Saving is deliberately not owner-gated: it records the acting user's own
// relationship to the post.
func (r *Repository) ToggleSave(jobID, userID string) (*JobPost, bool, error) {
	stmt := `UPDATE job SET ` + membership.ToggleExpr("saved_users", 2) + ` WHERE id = $1 RETURNING saved_users`
	var savedUsers pq.StringArray
	err := r.db.QueryRow(stmt, jobID, userID).Scan(&savedUsers)
	if err == sql.ErrNoRows {
		return nil, false, ErrJobNotFound
	}
	if err != nil {
		return nil, false, err
	}
	job, err := r.JobByID(jobID)
	if err != nil {
		return nil, false, err
	}
	return job, membership.Contains(savedUsers, userID), nil
}

func (r *Repository) AddAttachments(jobID, userID string, rqs []AttachmentRq) ([]Attachment, error) {
	if _, err := r.ownedJobByID(jobID, userID); err != nil {
		return nil, err
	}
	attachments := make([]Attachment, 0, len(rqs))
	for _, rq := range rqs {
		id, err := ksuid.NewRandom()
		if err != nil {
			return attachments, err
		}
		att := Attachment{
			ID:        id.String(),
			JobID:     jobID,
			Name:      rq.Name,
			URL:       rq.URL,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := r.db.Exec(
			`INSERT INTO attachment (id, job_id, name, url, created_at) VALUES ($1, $2, $3, $4, $5)`,
			att.ID, att.JobID, att.Name, att.URL, att.CreatedAt,
		); err != nil {
			return attachments, err
		}
		attachments = append(attachments, att)
	}
	return attachments, nil
}

func (r *Repository) DeleteAttachment(attachmentID, jobID, userID string) error {
	if _, err := r.ownedJobByID(jobID, userID); err != nil {
		return err
	}
	_, err := r.db.Exec(`DELETE FROM attachment WHERE id = $1 AND job_id = $2`, attachmentID, jobID)
	return err
}

func (r *Repository) GetJobAttachments(jobID string) ([]Attachment, error) {
	attachments := []Attachment{}
	rows, err := r.db.Query(`SELECT id, job_id, name, url, created_at FROM attachment WHERE job_id = $1 ORDER BY created_at ASC`, jobID)
	if err != nil {
		return attachments, err
	}
	defer rows.Close()
	for rows.Next() {
		var att Attachment
		if err := rows.Scan(&att.ID, &att.JobID, &att.Name, &att.URL, &att.CreatedAt); err != nil {
			return attachments, err
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}

func (r *Repository) ownedJobByID(jobID, userID string) (*JobPost, error) {
	row := r.db.QueryRow(`SELECT `+selectJobCols+` FROM job WHERE job.id = $1 AND job.user_id = $2`, jobID, userID)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *Repository) hydrateAttachments(jobs []*JobPost) error {
	if len(jobs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(jobs))
	byID := make(map[string]*JobPost, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
		byID[j.ID] = j
	}
	rows, err := r.db.Query(`SELECT id, job_id, name, url, created_at FROM attachment WHERE job_id = ANY($1) ORDER BY created_at ASC`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var att Attachment
		if err := rows.Scan(&att.ID, &att.JobID, &att.Name, &att.URL, &att.CreatedAt); err != nil {
			return err
		}
		if j, ok := byID[att.JobID]; ok {
			j.Attachments = append(j.Attachments, att)
		}
	}
	return rows.Err()
}

func scanJob(row *sql.Row) (*JobPost, error) {
	job := &JobPost{}
	var desc, shortDesc, categoryID, companyID, shiftTiming, workMode, yoe sql.NullString
	var tags, savedUsers pq.StringArray
	err := row.Scan(
		&job.ID,
		&job.Title,
		&desc,
		&shortDesc,
		&categoryID,
		&companyID,
		&job.UserID,
		&job.IsPublished,
		&shiftTiming,
		&workMode,
		&yoe,
		&tags,
		&savedUsers,
		&job.Slug,
		&job.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	assignOptional(job, desc, shortDesc, categoryID, companyID, shiftTiming, workMode, yoe)
	job.Tags = tags
	job.SavedUsers = savedUsers
	job.TimeAgo = job.CreatedAt.UTC().Format("January 2006")
	return job, nil
}

func assignOptional(job *JobPost, desc, shortDesc, categoryID, companyID, shiftTiming, workMode, yoe sql.NullString) {
	if desc.Valid {
		job.Description = desc.String
	}
	if shortDesc.Valid {
		job.ShortDescription = shortDesc.String
	}
	if categoryID.Valid {
		job.CategoryID = categoryID.String
	}
	if companyID.Valid {
		job.CompanyID = companyID.String
	}
	if shiftTiming.Valid {
		job.ShiftTiming = shiftTiming.String
	}
	if workMode.Valid {
		job.WorkMode = workMode.String
	}
	if yoe.Valid {
		job.YearsOfExperience = yoe.String
	}
}
