package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/workhive/job-board/internal/config"
	"github.com/workhive/job-board/internal/email"
	"github.com/workhive/job-board/internal/middleware"

	"github.com/allegro/bigcache/v3"
	"github.com/getsentry/raven-go"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

const (
	CacheKeyCategories   = "categories"
	CacheKeyRecentJobs   = "recentJobs"
	CacheKeyTopCompanies = "topCompanies"
)

type Server struct {
	cfg          config.Config
	Conn         *sql.DB
	router       *mux.Router
	emailClient  email.Client
	SessionStore *sessions.CookieStore
	bigCache     *bigcache.BigCache
}

func NewServer(
	cfg config.Config,
	conn *sql.DB,
	r *mux.Router,
	emailClient email.Client,
	sessionStore *sessions.CookieStore,
) Server {
	// todo: move somewhere else
	raven.SetDSN(cfg.SentryDSN)

	bigCache, err := bigcache.NewBigCache(bigcache.DefaultConfig(12 * time.Hour))
	svr := Server{
		cfg:          cfg,
		Conn:         conn,
		router:       r,
		emailClient:  emailClient,
		SessionStore: sessionStore,
		bigCache:     bigCache,
	}
	if err != nil {
		svr.Log(err, "unable to initialise big cache")
	}

	return svr
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) GetEmail() email.Client {
	return s.emailClient
}

func (s Server) GetJWTSigningKey() []byte {
	return s.cfg.JwtSigningKey
}

func (s Server) JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			s.Log(err, "unable to encode body as json")
		}
	}
}

func (s Server) TEXT(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

func (s Server) Log(err error, msg string) {
	raven.CaptureErrorAndWait(err, map[string]string{"ctx": msg})
	log.Printf("%s: %+v", msg, err)
}

func (s Server) Redirect(w http.ResponseWriter, r *http.Request, status int, dst string) {
	http.Redirect(w, r, dst, status)
}

// CacheGet retrieves a previously cached json payload by key.
func (s Server) CacheGet(key string, dst interface{}) bool {
	if s.bigCache == nil {
		return false
	}
	res, err := s.bigCache.Get(key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(res, dst); err != nil {
		return false
	}
	return true
}

func (s Server) CacheSet(key string, val interface{}) {
	if s.bigCache == nil {
		return
	}
	buf, err := json.Marshal(val)
	if err != nil {
		s.Log(err, fmt.Sprintf("unable to marshal cache entry for key %s", key))
		return
	}
	if err := s.bigCache.Set(key, buf); err != nil {
		s.Log(err, fmt.Sprintf("unable to cache entry for key %s", key))
	}
}

func (s Server) CacheDelete(key string) {
	if s.bigCache == nil {
		return
	}
	if err := s.bigCache.Delete(key); err != nil && err != bigcache.ErrEntryNotFound {
		s.Log(err, fmt.Sprintf("unable to delete cache entry for key %s", key))
	}
}

// PageFromQuery normalises the `p` query param into a 1-based page id.
func (s Server) PageFromQuery(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("p"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.Env == "dev" {
		log.Printf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	return http.ListenAndServe(
		addr,
		middleware.HTTPSMiddleware(
			middleware.LoggingMiddleware(middleware.HeadersMiddleware(s.router, s.cfg.Env)),
			s.cfg.Env,
		),
	)
}
