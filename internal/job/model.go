package job

import (
	"time"
)

type JobPost struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	ShortDescription  string    `json:"shortDescription,omitempty"`
	CategoryID        string    `json:"categoryId,omitempty"`
	CompanyID         string    `json:"companyId,omitempty"`
	UserID            string    `json:"userId"`
	IsPublished       bool      `json:"isPublished"`
	ShiftTiming       string    `json:"shiftTiming,omitempty"`
	WorkMode          string    `json:"workMode,omitempty"`
	YearsOfExperience string    `json:"yearsOfExperience,omitempty"`
	Tags              []string  `json:"tags"`
	SavedUsers        []string  `json:"savedUsers"`
	Slug              string    `json:"slug"`
	CreatedAt         time.Time `json:"createdAt"`
	TimeAgo           string    `json:"timeAgo,omitempty"`

	// hydrated on search results
	CompanyName  string       `json:"companyName,omitempty"`
	CategoryName string       `json:"categoryName,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

type JobRq struct {
	Title string `json:"title"`
}

// JobRqUpdate is a sparse patch: nil fields are left untouched.
type JobRqUpdate struct {
	Title             *string  `json:"title,omitempty"`
	Description       *string  `json:"description,omitempty"`
	ShortDescription  *string  `json:"shortDescription,omitempty"`
	CategoryID        *string  `json:"categoryId,omitempty"`
	CompanyID         *string  `json:"companyId,omitempty"`
	ShiftTiming       *string  `json:"shiftTiming,omitempty"`
	WorkMode          *string  `json:"workMode,omitempty"`
	YearsOfExperience *string  `json:"yearsOfExperience,omitempty"`
	Tags              []string `json:"tags,omitempty"`
}

type AttachmentRq struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
