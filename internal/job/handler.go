package job

import (
	"encoding/json"
	"net/http"

	"github.com/workhive/job-board/internal/middleware"
	"github.com/workhive/job-board/internal/server"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
)

type jobSearcher interface {
	JobsByFilter(f Filter) ([]*JobPost, error)
}

type jobGetter interface {
	JobByID(jobID string) (*JobPost, error)
	GetJobAttachments(jobID string) ([]Attachment, error)
}

type jobSlugGetter interface {
	JobBySlug(jobSlug string) (*JobPost, error)
	GetJobAttachments(jobID string) ([]Attachment, error)
}

type draftSaver interface {
	SaveDraft(userID, title string) (*JobPost, error)
}

type jobUpdater interface {
	UpdateJob(jobID, userID string, rq *JobRqUpdate) error
	JobByID(jobID string) (*JobPost, error)
}

type jobPublisher interface {
	PublishJob(jobID, userID string) (*JobPost, error)
	UnpublishJob(jobID, userID string) (*JobPost, error)
}

type jobDeleter interface {
	DeleteJobCascade(jobID, userID string) error
}

type saveToggler interface {
	ToggleSave(jobID, userID string) (*JobPost, bool, error)
}

type attachmentManager interface {
	AddAttachments(jobID, userID string, rqs []AttachmentRq) ([]Attachment, error)
	DeleteAttachment(attachmentID, jobID, userID string) error
}

// JobsHandler serves job search. Search is fail-soft: a store failure is
// logged and degrades to an empty result list so the page still renders.
func JobsHandler(svr server.Server, jobRepo jobSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := ""
		if profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey()); err == nil {
			userID = profile.UserID
		}
		filter := ParseFilterFromQuery(r.URL.Query(), userID)

		if filter == (Filter{}) {
			var cached []*JobPost
			if svr.CacheGet(server.CacheKeyRecentJobs, &cached) {
				svr.JSON(w, http.StatusOK, cached)
				return
			}
		}

		jobs, err := jobRepo.JobsByFilter(filter)
		if err != nil {
			svr.Log(err, "unable to retrieve jobs by filter")
			svr.JSON(w, http.StatusOK, []*JobPost{})
			return
		}
		if filter == (Filter{}) {
			svr.CacheSet(server.CacheKeyRecentJobs, jobs)
		}
		svr.JSON(w, http.StatusOK, jobs)
	}
}

func JobByIDHandler(svr server.Server, jobRepo jobGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		job, err := jobRepo.JobByID(vars["id"])
		if err == ErrJobNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve job by id")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		if !job.IsPublished {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil || profile.UserID != job.UserID {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
		}
		hydrateJobAttachments(svr, jobRepo, job)
		svr.JSON(w, http.StatusOK, job)
	}
}

// JobBySlugHandler resolves a published job by its public slug. Drafts are not
// reachable by slug, only by id through the owner path.
func JobBySlugHandler(svr server.Server, jobRepo jobSlugGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		job, err := jobRepo.JobBySlug(vars["slug"])
		if err == ErrJobNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve job by slug")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		hydrateJobAttachments(svr, jobRepo, job)
		svr.JSON(w, http.StatusOK, job)
	}
}

// attachments are display data: a hydration failure degrades to a job without
// them rather than failing the detail page
func hydrateJobAttachments(svr server.Server, jobRepo interface {
	GetJobAttachments(jobID string) ([]Attachment, error)
}, job *JobPost) {
	attachments, err := jobRepo.GetJobAttachments(job.ID)
	if err != nil {
		svr.Log(err, "unable to retrieve job attachments")
		return
	}
	job.Attachments = attachments
}

func CreateJobHandler(svr server.Server, jobRepo draftSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		req := &JobRq{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSON(w, http.StatusBadRequest, "request is invalid")
			return
		}
		if req.Title == "" {
			svr.JSON(w, http.StatusBadRequest, "job title is invalid")
			return
		}
		job, err := jobRepo.SaveDraft(profile.UserID, req.Title)
		if err != nil {
			svr.Log(err, "unable to save job draft")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, job)
	}
}

func UpdateJobHandler(svr server.Server, jobRepo jobUpdater) http.HandlerFunc {
	ugcPolicy := bluemonday.UGCPolicy()
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		req := &JobRqUpdate{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSON(w, http.StatusBadRequest, "request is invalid")
			return
		}
		// long-form fields come from a rich text editor
		if req.Description != nil {
			sanitized := ugcPolicy.Sanitize(*req.Description)
			req.Description = &sanitized
		}
		if err := jobRepo.UpdateJob(vars["id"], profile.UserID, req); err == ErrJobNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		} else if err != nil {
			svr.Log(err, "unable to update job")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		job, err := jobRepo.JobByID(vars["id"])
		if err != nil {
			svr.Log(err, "unable to retrieve job after update")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		// the job may already be published and sitting in the cached search
		svr.CacheDelete(server.CacheKeyRecentJobs)
		svr.JSON(w, http.StatusOK, job)
	}
}

func PublishJobHandler(svr server.Server, jobRepo jobPublisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		job, err := jobRepo.PublishJob(vars["id"], profile.UserID)
		if err == ErrJobNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err == ErrJobIncomplete {
			svr.JSON(w, http.StatusBadRequest, "missing required fields")
			return
		}
		if err != nil {
			svr.Log(err, "unable to publish job")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.CacheDelete(server.CacheKeyRecentJobs)
		svr.JSON(w, http.StatusOK, job)
	}
}

func UnpublishJobHandler(svr server.Server, jobRepo jobPublisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		job, err := jobRepo.UnpublishJob(vars["id"], profile.UserID)
		if err == ErrJobNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, "unable to unpublish job")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.CacheDelete(server.CacheKeyRecentJobs)
		svr.JSON(w, http.StatusOK, job)
	}
}

func DeleteJobHandler(svr server.Server, jobRepo jobDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		if err := jobRepo.DeleteJobCascade(vars["id"], profile.UserID); err == ErrJobNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		} else if err != nil {
			svr.Log(err, "unable to delete job")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.CacheDelete(server.CacheKeyRecentJobs)
		svr.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ToggleSaveJobHandler flips the acting user's saved state for a job. A save
// failure surfaces to the caller: swallowing it would mislead the user about
// whether their action stuck.
func ToggleSaveJobHandler(svr server.Server, jobRepo saveToggler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		job, saved, err := jobRepo.ToggleSave(vars["id"], profile.UserID)
		if err == ErrJobNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, "unable to toggle saved job")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		// saved_users is serialized in cached search results
		svr.CacheDelete(server.CacheKeyRecentJobs)
		svr.JSON(w, http.StatusOK, map[string]interface{}{"job": job, "saved": saved})
	}
}

func AddAttachmentsHandler(svr server.Server, jobRepo attachmentManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		req := []AttachmentRq{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			svr.JSON(w, http.StatusBadRequest, "request is invalid")
			return
		}
		attachments, err := jobRepo.AddAttachments(vars["id"], profile.UserID, req)
		if err == ErrJobNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, "unable to add job attachments")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, attachments)
	}
}

func DeleteAttachmentHandler(svr server.Server, jobRepo attachmentManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		if err := jobRepo.DeleteAttachment(vars["attachmentId"], vars["id"], profile.UserID); err == ErrJobNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		} else if err != nil {
			svr.Log(err, "unable to delete job attachment")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
