package profile

import "time"

// Profile holds a candidate's details. It is keyed by the auth user id and is
// created lazily the first time the user saves any of it.
type Profile struct {
	UserID         string    `json:"userId"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Contact        string    `json:"contact"`
	ActiveResumeID string    `json:"activeResumeId"`
	Resumes        []Resume  `json:"resumes"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Resume struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// AppliedJob records that a user applied to a job post. AppliedAt is the
// first application time and never moves on re-apply.
type AppliedJob struct {
	JobID       string    `json:"jobId"`
	JobTitle    string    `json:"jobTitle"`
	JobSlug     string    `json:"jobSlug"`
	CompanyName string    `json:"companyName"`
	AppliedAt   time.Time `json:"appliedAt"`
	TimeAgo     string    `json:"timeAgo"`
}

// ProfileRqUpdate is a sparse patch. Nil fields are left untouched.
type ProfileRqUpdate struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Contact  *string `json:"contact"`
}

type ResumeRq struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
