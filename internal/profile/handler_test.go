package profile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/workhive/job-board/internal/config"
	"github.com/workhive/job-board/internal/email"
	"github.com/workhive/job-board/internal/middleware"
	"github.com/workhive/job-board/internal/server"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newTestServer(t *testing.T) server.Server {
	t.Helper()
	cfg := config.Config{
		Env:           "dev",
		SessionKey:    testSigningKey,
		JwtSigningKey: testSigningKey,
	}
	return server.NewServer(cfg, nil, mux.NewRouter(), email.Client{}, sessions.NewCookieStore(cfg.SessionKey))
}

func signOn(t *testing.T, svr server.Server, r *http.Request, userID string) {
	t.Helper()
	claims := &middleware.UserJWT{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	assert.NoError(t, err)

	rec := httptest.NewRecorder()
	sess, err := svr.SessionStore.Get(r, middleware.SessionName)
	assert.NoError(t, err)
	sess.Values["jwt"] = token
	assert.NoError(t, sess.Save(r, rec))
	for _, cookie := range rec.Result().Cookies() {
		r.AddCookie(cookie)
	}
}

type applicationKey struct {
	userID string
	jobID  string
}

type fakeProfileRepo struct {
	mu           sync.Mutex
	profiles     map[string]*Profile
	applications map[applicationKey]time.Time
	jobTitles    map[string]string
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles:     map[string]*Profile{},
		applications: map[applicationKey]time.Time{},
		jobTitles:    map[string]string{},
	}
}

func (f *fakeProfileRepo) ProfileByUserID(userID string) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) UpsertProfile(userID string, rq *ProfileRqUpdate) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		p = &Profile{UserID: userID, CreatedAt: time.Now()}
		f.profiles[userID] = p
	}
	if rq.FullName != nil {
		p.FullName = *rq.FullName
	}
	if rq.Email != nil {
		p.Email = *rq.Email
	}
	if rq.Contact != nil {
		p.Contact = *rq.Contact
	}
	return p, nil
}

// ApplyToJob keeps the first applied_at, the same way the conflict-free
// insert does in the real store.
func (f *fakeProfileRepo) ApplyToJob(userID, jobID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[userID]; !ok {
		return false, ErrProfileNotFound
	}
	key := applicationKey{userID, jobID}
	if _, ok := f.applications[key]; ok {
		return false, nil
	}
	f.applications[key] = time.Now()
	return true, nil
}

func (f *fakeProfileRepo) ApplicationEmailDetails(jobID string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	title, ok := f.jobTitles[jobID]
	if !ok {
		return "", "", ErrJobNotFound
	}
	return title, "Acme", nil
}

func (f *fakeProfileRepo) AppliedJobs(userID string) ([]*AppliedJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	applied := []*AppliedJob{}
	for key, at := range f.applications {
		if key.userID == userID {
			applied = append(applied, &AppliedJob{JobID: key.jobID, AppliedAt: at})
		}
	}
	return applied, nil
}

func Test_SaveProfileHandler_ShouldCreateLazilyAndPatch(t *testing.T) {
	assert := assert.New(t)
	svr := newTestServer(t)
	repo := newFakeProfileRepo()

	r := httptest.NewRequest(http.MethodPatch, "/api/profile", strings.NewReader(`{"fullName":"Ada"}`))
	signOn(t, svr, r, "u1")
	w := httptest.NewRecorder()
	SaveProfileHandler(svr, repo)(w, r)

	assert.Equal(http.StatusOK, w.Code)
	assert.Equal("Ada", repo.profiles["u1"].FullName)

	// a second patch leaves unrelated fields alone
	r = httptest.NewRequest(http.MethodPatch, "/api/profile", strings.NewReader(`{"contact":"+44 1234"}`))
	signOn(t, svr, r, "u1")
	w = httptest.NewRecorder()
	SaveProfileHandler(svr, repo)(w, r)

	assert.Equal(http.StatusOK, w.Code)
	assert.Equal("Ada", repo.profiles["u1"].FullName)
	assert.Equal("+44 1234", repo.profiles["u1"].Contact)
}

func Test_GetProfileHandler_WhenMissing_ShouldReportNotFound(t *testing.T) {
	assert := assert.New(t)
	svr := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	signOn(t, svr, r, "u1")
	w := httptest.NewRecorder()
	GetProfileHandler(svr, newFakeProfileRepo())(w, r)
	assert.Equal(http.StatusNotFound, w.Code)
}

func Test_ApplyToJobHandler_WhenNoProfile_ShouldReject(t *testing.T) {
	assert := assert.New(t)
	svr := newTestServer(t)
	repo := newFakeProfileRepo()
	repo.jobTitles["j1"] = "Backend Engineer"

	r := httptest.NewRequest(http.MethodPost, "/api/jobs/j1/apply", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "j1"})
	signOn(t, svr, r, "u1")
	w := httptest.NewRecorder()
	ApplyToJobHandler(svr, repo)(w, r)

	assert.Equal(http.StatusNotFound, w.Code)
	assert.Empty(repo.applications)
}

func Test_ApplyToJobHandler_WhenJobMissing_ShouldReportNotFound(t *testing.T) {
	assert := assert.New(t)
	svr := newTestServer(t)
	repo := newFakeProfileRepo()
	repo.profiles["u1"] = &Profile{UserID: "u1"}

	r := httptest.NewRequest(http.MethodPost, "/api/jobs/nope/apply", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "nope"})
	signOn(t, svr, r, "u1")
	w := httptest.NewRecorder()
	ApplyToJobHandler(svr, repo)(w, r)
	assert.Equal(http.StatusNotFound, w.Code)
}

func Test_ApplyToJobHandler_ReapplyIsNoOp(t *testing.T) {
	assert := assert.New(t)
	svr := newTestServer(t)
	repo := newFakeProfileRepo()
	repo.profiles["u1"] = &Profile{UserID: "u1"}
	repo.jobTitles["j1"] = "Backend Engineer"

	decode := func(w *httptest.ResponseRecorder) (applied, newApplication bool) {
		var resp struct {
			Applied        bool `json:"applied"`
			NewApplication bool `json:"newApplication"`
		}
		assert.NoError(json.NewDecoder(w.Body).Decode(&resp))
		return resp.Applied, resp.NewApplication
	}

	r := httptest.NewRequest(http.MethodPost, "/api/jobs/j1/apply", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "j1"})
	signOn(t, svr, r, "u1")
	w := httptest.NewRecorder()
	ApplyToJobHandler(svr, repo)(w, r)
	assert.Equal(http.StatusOK, w.Code)
	applied, newApplication := decode(w)
	assert.True(applied)
	assert.True(newApplication)

	firstAppliedAt := repo.applications[applicationKey{"u1", "j1"}]

	r = httptest.NewRequest(http.MethodPost, "/api/jobs/j1/apply", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "j1"})
	signOn(t, svr, r, "u1")
	w = httptest.NewRecorder()
	ApplyToJobHandler(svr, repo)(w, r)
	assert.Equal(http.StatusOK, w.Code)
	applied, newApplication = decode(w)
	assert.True(applied)
	assert.False(newApplication)

	assert.Len(repo.applications, 1)
	assert.Equal(firstAppliedAt, repo.applications[applicationKey{"u1", "j1"}])
}
