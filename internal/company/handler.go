package company

import (
	"encoding/json"
	"net/http"

	"github.com/workhive/job-board/internal/middleware"
	"github.com/workhive/job-board/internal/server"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
)

type companyCreator interface {
	CreateCompany(userID, name string) (*Company, error)
}

type companyLister interface {
	Companies(limit, offset int) ([]*Company, error)
}

type companyUpdater interface {
	UpdateCompany(companyID, userID string, rq *CompanyRqUpdate) error
	CompanyByID(companyID string) (*Company, error)
}

type followToggler interface {
	ToggleFollow(companyID, userID string) (*Company, bool, error)
}

func CreateCompanyHandler(svr server.Server, companyRepo companyCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		req := &CompanyRq{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSON(w, http.StatusBadRequest, "request is invalid")
			return
		}
		if req.Name == "" {
			svr.JSON(w, http.StatusBadRequest, "company name is invalid")
			return
		}
		company, err := companyRepo.CreateCompany(profile.UserID, req.Name)
		if err != nil {
			svr.Log(err, "unable to create company")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.CacheDelete(server.CacheKeyTopCompanies)
		svr.JSON(w, http.StatusOK, company)
	}
}

// CompaniesHandler lists companies. Like job search this path is fail-soft:
// a store failure degrades to an empty list.
func CompaniesHandler(svr server.Server, companyRepo companyLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := svr.PageFromQuery(r)
		perPage := svr.GetConfig().CompaniesPerPage

		if page == 1 {
			var cached []*Company
			if svr.CacheGet(server.CacheKeyTopCompanies, &cached) {
				svr.JSON(w, http.StatusOK, cached)
				return
			}
		}

		companies, err := companyRepo.Companies(perPage, page*perPage-perPage)
		if err != nil {
			svr.Log(err, "unable to retrieve companies")
			svr.JSON(w, http.StatusOK, []*Company{})
			return
		}
		if page == 1 {
			svr.CacheSet(server.CacheKeyTopCompanies, companies)
		}
		svr.JSON(w, http.StatusOK, companies)
	}
}

func CompanyByIDHandler(svr server.Server, companyRepo companyUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		company, err := companyRepo.CompanyByID(vars["id"])
		if err == ErrCompanyNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve company by id")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, company)
	}
}

func UpdateCompanyHandler(svr server.Server, companyRepo companyUpdater) http.HandlerFunc {
	ugcPolicy := bluemonday.UGCPolicy()
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		req := &CompanyRqUpdate{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSON(w, http.StatusBadRequest, "request is invalid")
			return
		}
		// long-form fields come from a rich text editor
		if req.Description != nil {
			sanitized := ugcPolicy.Sanitize(*req.Description)
			req.Description = &sanitized
		}
		if req.Overview != nil {
			sanitized := ugcPolicy.Sanitize(*req.Overview)
			req.Overview = &sanitized
		}
		if req.WhyJoinUs != nil {
			sanitized := ugcPolicy.Sanitize(*req.WhyJoinUs)
			req.WhyJoinUs = &sanitized
		}
		if err := companyRepo.UpdateCompany(vars["id"], profile.UserID, req); err == ErrCompanyNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		} else if err != nil {
			svr.Log(err, "unable to update company")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		company, err := companyRepo.CompanyByID(vars["id"])
		if err != nil {
			svr.Log(err, "unable to retrieve company after update")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.CacheDelete(server.CacheKeyTopCompanies)
		svr.JSON(w, http.StatusOK, company)
	}
}

// ToggleFollowCompanyHandler flips the acting user's follower state for a
// company. Failures surface to the caller so the UI can report them.
func ToggleFollowCompanyHandler(svr server.Server, companyRepo followToggler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSON(w, http.StatusUnauthorized, nil)
			return
		}
		vars := mux.Vars(r)
		company, following, err := companyRepo.ToggleFollow(vars["id"], profile.UserID)
		if err == ErrCompanyNotFound {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, "unable to toggle company follower")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, map[string]interface{}{"company": company, "following": following})
	}
}
