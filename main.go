package main

import (
	"log"
	"net/http"

	"github.com/workhive/job-board/internal/category"
	"github.com/workhive/job-board/internal/company"
	"github.com/workhive/job-board/internal/config"
	"github.com/workhive/job-board/internal/database"
	"github.com/workhive/job-board/internal/email"
	"github.com/workhive/job-board/internal/job"
	"github.com/workhive/job-board/internal/middleware"
	"github.com/workhive/job-board/internal/profile"
	"github.com/workhive/job-board/internal/server"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config: %+v", err)
	}
	conn, err := database.GetDbConn(
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseName,
		cfg.DatabaseSSLMode,
	)
	if err != nil {
		log.Fatalf("unable to connect to postgres: %v", err)
	}
	defer database.CloseDbConn(conn)
	emailClient, err := email.NewClient(cfg.EmailAPIKey, cfg.SupportEmail, cfg.NoReplyEmail, cfg.SiteName)
	if err != nil {
		log.Fatalf("unable to connect to email API: %v", err)
	}
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)

	svr := server.NewServer(
		cfg,
		conn,
		mux.NewRouter(),
		emailClient,
		sessionStore,
	)

	jobRepo := job.NewRepository(conn)
	companyRepo := company.NewRepository(conn)
	profileRepo := profile.NewRepository(conn)
	categoryRepo := category.NewRepository(conn)

	svr.RegisterRoute("/", func(w http.ResponseWriter, r *http.Request) {
		svr.Redirect(w, r, http.StatusMovedPermanently, "/api/jobs")
	}, []string{"GET"})
	svr.RegisterRoute("/healthz", func(w http.ResponseWriter, r *http.Request) {
		svr.TEXT(w, http.StatusOK, "OK")
	}, []string{"GET"})

	// search published jobs
	svr.RegisterRoute("/api/jobs", job.JobsHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs/slug/{slug}", job.JobBySlugHandler(svr, jobRepo), []string{"GET"})

	// job crud, owner gated
	svr.RegisterRoute("/api/jobs", job.CreateJobHandler(svr, jobRepo), []string{"POST"})
	svr.RegisterRoute("/api/jobs/{id}", job.JobByIDHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs/{id}", job.UpdateJobHandler(svr, jobRepo), []string{"PATCH"})
	svr.RegisterRoute("/api/jobs/{id}", job.DeleteJobHandler(svr, jobRepo), []string{"DELETE"})
	svr.RegisterRoute("/api/jobs/{id}/publish", job.PublishJobHandler(svr, jobRepo), []string{"POST"})
	svr.RegisterRoute("/api/jobs/{id}/unpublish", job.UnpublishJobHandler(svr, jobRepo), []string{"POST"})

	// toggle saved job for the signed-on user
	svr.RegisterRoute("/api/jobs/{id}/save", job.ToggleSaveJobHandler(svr, jobRepo), []string{"POST"})

	// job attachments
	svr.RegisterRoute("/api/jobs/{id}/attachments", job.AddAttachmentsHandler(svr, jobRepo), []string{"POST"})
	svr.RegisterRoute("/api/jobs/{id}/attachments/{attachmentId}", job.DeleteAttachmentHandler(svr, jobRepo), []string{"DELETE"})

	// companies
	svr.RegisterRoute("/api/companies", company.CompaniesHandler(svr, companyRepo), []string{"GET"})
	svr.RegisterRoute("/api/companies", company.CreateCompanyHandler(svr, companyRepo), []string{"POST"})
	svr.RegisterRoute("/api/companies/{id}", company.CompanyByIDHandler(svr, companyRepo), []string{"GET"})
	svr.RegisterRoute("/api/companies/{id}", company.UpdateCompanyHandler(svr, companyRepo), []string{"PATCH"})

	// toggle company follower for the signed-on user
	svr.RegisterRoute("/api/companies/{id}/follow", company.ToggleFollowCompanyHandler(svr, companyRepo), []string{"POST"})

	// candidate profile, signed-on users only
	svr.RegisterRoute("/api/profile", middleware.UserAuthenticatedMiddleware(sessionStore, cfg.JwtSigningKey, profile.GetProfileHandler(svr, profileRepo)), []string{"GET"})
	svr.RegisterRoute("/api/profile", middleware.UserAuthenticatedMiddleware(sessionStore, cfg.JwtSigningKey, profile.SaveProfileHandler(svr, profileRepo)), []string{"PATCH"})

	// job applications
	svr.RegisterRoute("/api/jobs/{id}/apply", middleware.UserAuthenticatedMiddleware(sessionStore, cfg.JwtSigningKey, profile.ApplyToJobHandler(svr, profileRepo)), []string{"POST"})
	svr.RegisterRoute("/api/profile/applied", middleware.UserAuthenticatedMiddleware(sessionStore, cfg.JwtSigningKey, profile.AppliedJobsHandler(svr, profileRepo)), []string{"GET"})

	// resumes
	svr.RegisterRoute("/api/profile/resumes", middleware.UserAuthenticatedMiddleware(sessionStore, cfg.JwtSigningKey, profile.ResumesHandler(svr, profileRepo)), []string{"GET"})
	svr.RegisterRoute("/api/profile/resumes", middleware.UserAuthenticatedMiddleware(sessionStore, cfg.JwtSigningKey, profile.AddResumesHandler(svr, profileRepo)), []string{"POST"})
	svr.RegisterRoute("/api/profile/resumes/{id}/active", middleware.UserAuthenticatedMiddleware(sessionStore, cfg.JwtSigningKey, profile.SetActiveResumeHandler(svr, profileRepo)), []string{"POST"})
	svr.RegisterRoute("/api/profile/resumes/{id}", middleware.UserAuthenticatedMiddleware(sessionStore, cfg.JwtSigningKey, profile.DeleteResumeHandler(svr, profileRepo)), []string{"DELETE"})

	// categories
	svr.RegisterRoute("/api/categories", category.CategoriesHandler(svr, categoryRepo), []string{"GET"})

	// @admin: create category
	svr.RegisterRoute("/api/categories", middleware.AdminAuthenticatedMiddleware(sessionStore, cfg.JwtSigningKey, category.CreateCategoryHandler(svr, categoryRepo)), []string{"POST"})

	log.Fatal(svr.Run())
}
