package profile

import (
	"encoding/json"
	"net/http"

	"github.com/workhive/job-board/internal/middleware"
	"github.com/workhive/job-board/internal/server"

	"github.com/gorilla/mux"
)

type profileGetter interface {
	ProfileByUserID(userID string) (*Profile, error)
}

type profileSaver interface {
	UpsertProfile(userID string, rq *ProfileRqUpdate) (*Profile, error)
}

type jobApplier interface {
	ProfileByUserID(userID string) (*Profile, error)
	ApplyToJob(userID, jobID string) (bool, error)
	ApplicationEmailDetails(jobID string) (string, string, error)
	AppliedJobs(userID string) ([]*AppliedJob, error)
}

type resumeManager interface {
	Resumes(userID string) ([]Resume, error)
	AddResumes(userID string, rqs []ResumeRq) ([]Resume, error)
	SetActiveResume(userID, resumeID string) error
	DeleteResume(userID, resumeID string) error
}

func GetProfileHandler(svr server.Server, profileRepo profileGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		profile, err := profileRepo.ProfileByUserID(user.UserID)
		if err == ErrProfileNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve profile")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, profile)
	}
}

func SaveProfileHandler(svr server.Server, profileRepo profileSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		req := &ProfileRqUpdate{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSON(w, http.StatusBadRequest, "request is invalid")
			return
		}
		profile, err := profileRepo.UpsertProfile(user.UserID, req)
		if err != nil {
			svr.Log(err, "unable to save profile")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, profile)
	}
}

// ApplyToJobHandler records an application for the signed-on user. Applying
// twice is a no-op and the confirmation email only goes out the first time.
// Applying without a saved profile is rejected so employers always get
// contact details.
func ApplyToJobHandler(svr server.Server, profileRepo jobApplier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		jobTitle, companyName, err := profileRepo.ApplicationEmailDetails(vars["id"])
		if err == ErrJobNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve job for application")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		newApplication, err := profileRepo.ApplyToJob(user.UserID, vars["id"])
		if err == ErrProfileNotFound {
			svr.JSON(w, http.StatusNotFound, "complete your profile before applying")
			return
		}
		if err != nil {
			svr.Log(err, "unable to apply to job")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		if newApplication {
			profile, err := profileRepo.ProfileByUserID(user.UserID)
			if err == nil && profile.Email != "" {
				if err := svr.GetEmail().SendApplicationReceivedEmail(profile.Email, profile.FullName, jobTitle, companyName); err != nil {
					svr.Log(err, "unable to send application received email")
				}
			}
		}
		svr.JSON(w, http.StatusOK, map[string]interface{}{"applied": true, "newApplication": newApplication})
	}
}

func AppliedJobsHandler(svr server.Server, profileRepo jobApplier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		applied, err := profileRepo.AppliedJobs(user.UserID)
		if err != nil {
			svr.Log(err, "unable to retrieve applied jobs")
			svr.JSON(w, http.StatusOK, []*AppliedJob{})
			return
		}
		svr.JSON(w, http.StatusOK, applied)
	}
}

func ResumesHandler(svr server.Server, profileRepo resumeManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		resumes, err := profileRepo.Resumes(user.UserID)
		if err != nil {
			svr.Log(err, "unable to retrieve resumes")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, resumes)
	}
}

func AddResumesHandler(svr server.Server, profileRepo resumeManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		var req []ResumeRq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			svr.JSON(w, http.StatusBadRequest, "request is invalid")
			return
		}
		for _, rq := range req {
			if rq.Name == "" || rq.URL == "" {
				svr.JSON(w, http.StatusBadRequest, "resume name and url are required")
				return
			}
		}
		resumes, err := profileRepo.AddResumes(user.UserID, req)
		if err != nil {
			svr.Log(err, "unable to save resumes")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, resumes)
	}
}

func SetActiveResumeHandler(svr server.Server, profileRepo resumeManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		if err := profileRepo.SetActiveResume(user.UserID, vars["id"]); err == ErrResumeNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		} else if err != nil {
			svr.Log(err, "unable to set active resume")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, nil)
	}
}

func DeleteResumeHandler(svr server.Server, profileRepo resumeManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		if err := profileRepo.DeleteResume(user.UserID, vars["id"]); err == ErrResumeNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		} else if err != nil {
			svr.Log(err, "unable to delete resume")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, nil)
	}
}
