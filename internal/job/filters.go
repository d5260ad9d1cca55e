package job

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	CreatedToday     = "today"
	CreatedYesterday = "yesterday"
	CreatedThisWeek  = "thisWeek"
	CreatedLastWeek  = "lastWeek"
	CreatedThisMonth = "thisMonth"
)

// Filter is the typed search criteria for published job posts. String fields
// left empty are absent and contribute no clause. ShiftTiming, WorkMode and
// YearsOfExperience take a CSV of values that OR together; everything else
// ANDs. UserID is the requesting user and only matters when SavedOnly is set.
type Filter struct {
	Title             string
	CategoryID        string
	CreatedAtFilter   string
	ShiftTiming       string
	WorkMode          string
	YearsOfExperience string
	SavedOnly         bool
	UserID            string
}

func ParseFilterFromQuery(query url.Values, userID string) Filter {
	return Filter{
		Title:             query.Get("title"),
		CategoryID:        query.Get("categoryId"),
		CreatedAtFilter:   query.Get("createdAtFilter"),
		ShiftTiming:       query.Get("shiftTiming"),
		WorkMode:          query.Get("workMode"),
		YearsOfExperience: query.Get("yearsOfExperience"),
		SavedOnly:         query.Get("savedJobs") == "true",
		UserID:            userID,
	}
}

// Compile renders the filter into a WHERE clause and its positional args.
// The published-only predicate is always present. Calling Compile twice with
// the same filter and now yields identical output.
func (f Filter) Compile(now time.Time) (string, []interface{}) {
	where := `WHERE job.is_published = TRUE`
	var args []interface{}
	argIndex := 1

	if f.Title != "" {
		where += fmt.Sprintf(` AND job.title ILIKE '%%' || $%d || '%%'`, argIndex)
		args = append(args, f.Title)
		argIndex++
	}

	if f.CategoryID != "" {
		where += fmt.Sprintf(` AND job.category_id = $%d`, argIndex)
		args = append(args, f.CategoryID)
		argIndex++
	}

	if f.CreatedAtFilter != "" {
		where += fmt.Sprintf(` AND job.created_at >= $%d`, argIndex)
		args = append(args, CreatedAtLowerBound(f.CreatedAtFilter, now))
		argIndex++
	}

	for _, csv := range []struct {
		column string
		raw    string
	}{
		{"shift_timing", f.ShiftTiming},
		{"work_mode", f.WorkMode},
		{"years_of_experience", f.YearsOfExperience},
	} {
		if csv.raw == "" {
			continue
		}
		values := strings.Split(csv.raw, ",")
		placeholders := make([]string, 0, len(values))
		for _, v := range values {
			placeholders = append(placeholders, fmt.Sprintf(`$%d`, argIndex))
			args = append(args, v)
			argIndex++
		}
		where += fmt.Sprintf(` AND job.%s IN (%s)`, csv.column, strings.Join(placeholders, `, `))
	}

	if f.SavedOnly {
		// an anonymous user has no saved jobs: the empty id is never a
		// member of saved_users, so this clause matches nothing
		where += fmt.Sprintf(` AND $%d = ANY(job.saved_users)`, argIndex)
		args = append(args, f.UserID)
		argIndex++
	}

	return where, args
}

// CreatedAtLowerBound resolves a named date bucket to the created_at lower
// bound. Unknown buckets fall back to the Unix epoch, widening the search
// instead of failing it.
//
// TODO: confirm with product whether "yesterday" should floor to midnight the
// way "today" does; it is currently a rolling 24h window and changing it
// silently would shift which posts the bucket returns.
func CreatedAtLowerBound(bucket string, now time.Time) time.Time {
	switch bucket {
	case CreatedToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case CreatedYesterday:
		return now.AddDate(0, 0, -1)
	case CreatedThisWeek:
		return now.AddDate(0, 0, -int(now.Weekday()))
	case CreatedLastWeek:
		return now.AddDate(0, 0, -int(now.Weekday())-7)
	case CreatedThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Unix(0, 0)
	}
}
