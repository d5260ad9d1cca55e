package company

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

var ErrCompanyNotFound = errors.New("company not found")

const selectCompanyCols = `id, name, description, overview, why_join_us, website, twitter, linkedin, address_line, city, zipcode, logo_image_id, followers, user_id, slug, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) CreateCompany(userID, name string) (*Company, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return nil, err
	}
	createdAt := time.Now().UTC()
	companySlug := slug.Make(fmt.Sprintf("%s %d", name, createdAt.Unix()))
	_, err = r.db.Exec(
		`INSERT INTO company (id, name, followers, user_id, slug, created_at) VALUES ($1, $2, '{}', $3, $4, $5)`,
		id.String(),
		name,
		userID,
		companySlug,
		createdAt,
	)
	if err != nil {
		return nil, err
	}
	return r.CompanyByID(id.String())
}

func (r *Repository) CompanyByID(companyID string) (*Company, error) {
	row := r.db.QueryRow(`SELECT `+selectCompanyCols+` FROM company WHERE id = $1`, companyID)
	company, err := scanCompany(row)
	if err == sql.ErrNoRows {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

// Companies lists companies newest first.
func (r *Repository) Companies(limit, offset int) ([]*Company, error) {
	companies := []*Company{}
	rows, err := r.db.Query(`SELECT `+selectCompanyCols+` FROM company ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return companies, err
	}
	defer rows.Close()
	for rows.Next() {
		company, err := scanCompanyRows(rows)
		if err != nil {
			return companies, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// UpdateCompany applies a sparse patch to a company owned by userID. A
// mismatch between company and owner reports ErrCompanyNotFound.
func (r *Repository) UpdateCompany(companyID, userID string, rq *CompanyRqUpdate) error {
	set := []string{}
	var args []interface{}
	argIndex := 1

	appendSet := func(column string, val interface{}) {
		set = append(set, fmt.Sprintf(`%s = $%d`, column, argIndex))
		args = append(args, val)
		argIndex++
	}

	if rq.Name != nil {
		appendSet("name", *rq.Name)
	}
	if rq.Description != nil {
		appendSet("description", *rq.Description)
	}
	if rq.Overview != nil {
		appendSet("overview", *rq.Overview)
	}
	if rq.WhyJoinUs != nil {
		appendSet("why_join_us", *rq.WhyJoinUs)
	}
	if rq.Website != nil {
		appendSet("website", *rq.Website)
	}
	if rq.Twitter != nil {
		appendSet("twitter", *rq.Twitter)
	}
	if rq.Linkedin != nil {
		appendSet("linkedin", *rq.Linkedin)
	}
	if rq.AddressLine != nil {
		appendSet("address_line", *rq.AddressLine)
	}
	if rq.City != nil {
		appendSet("city", *rq.City)
	}
	if rq.Zipcode != nil {
		appendSet("zipcode", *rq.Zipcode)
	}
	if rq.LogoImageID != nil {
		appendSet("logo_image_id", *rq.LogoImageID)
	}
	if len(set) == 0 {
		return nil
	}

	stmt := fmt.Sprintf(
		`UPDATE company SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(set, `, `),
		argIndex,
		argIndex+1,
	)
	args = append(args, companyID, userID)
	res, err := r.db.Exec(stmt, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// ToggleFollow flips whether userID follows the company and reports the
// resulting membership. Same single-statement discipline as the saved-jobs
// toggle: following is the acting user's relationship to the company and is
// never owner-gated.
func (r *Repository) ToggleFollow(companyID, userID string) (*Company, bool, error) {
	stmt := `UPDATE company SET ` + membership.ToggleExpr("followers", 2) + ` WHERE id = $1 RETURNING followers`
	var followers pq.StringArray
	err := r.db.QueryRow(stmt, companyID, userID).Scan(&followers)
	if err == sql.ErrNoRows {
		return nil, false, ErrCompanyNotFound
	}
	if err != nil {
		return nil, false, err
	}
	company, err := r.CompanyByID(companyID)
	if err != nil {
		return nil, false, err
	}
	return company, membership.Contains(followers, userID), nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanCompany(row *sql.Row) (*Company, error) {
	return scanCompanyFrom(row)
}

func scanCompanyRows(rows *sql.Rows) (*Company, error) {
	return scanCompanyFrom(rows)
}

func scanCompanyFrom(s scannable) (*Company, error) {
	company := &Company{}
	var desc, overview, whyJoinUs, website, twitter, linkedin, addressLine, city, zipcode, logoImageID sql.NullString
	var followers pq.StringArray
	err := s.Scan(
		&company.ID,
		&company.Name,
		&desc,
		&overview,
		&whyJoinUs,
		&website,
		&twitter,
		&linkedin,
		&addressLine,
		&city,
		&zipcode,
		&logoImageID,
		&followers,
		&company.UserID,
		&company.Slug,
		&company.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		company.Description = desc.String
	}
	if overview.Valid {
		company.Overview = overview.String
	}
	if whyJoinUs.Valid {
		company.WhyJoinUs = whyJoinUs.String
	}
	if website.Valid {
		company.Website = website.String
	}
	if twitter.Valid {
		company.Twitter = twitter.String
	}
	if linkedin.Valid {
		company.Linkedin = linkedin.String
	}
	if addressLine.Valid {
		company.AddressLine = addressLine.String
	}
	if city.Valid {
		company.City = city.String
	}
	if zipcode.Valid {
		company.Zipcode = zipcode.String
	}
	if logoImageID.Valid {
		company.LogoImageID = logoImageID.String
	}
	company.Followers = followers
	return company, nil
}
