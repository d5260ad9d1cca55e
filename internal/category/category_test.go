package category

import (
	"encoding/json"
	"errors"
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
		JobsPerPage:   20,
	}
	return server.NewServer(cfg, nil, mux.NewRouter(), email.Client{}, sessions.NewCookieStore(cfg.SessionKey))
}

func signOn(t *testing.T, svr server.Server, r *http.Request, userID string, isAdmin bool) {
	t.Helper()
	claims := &middleware.UserJWT{
		UserID:  userID,
		IsAdmin: isAdmin,
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

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories []Category
	failing    bool
}

func (f *fakeCategoryRepo) Categories() ([]Category, error) {
	if f.failing {
		return nil, errors.New("store is down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Category{}, f.categories...), nil
}

func (f *fakeCategoryRepo) CreateCategory(name string) (*Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := Category{ID: "cat1", Name: name, CreatedAt: time.Now().UTC()}
	f.categories = append(f.categories, c)
	return &c, nil
}

func Test_CategoriesHandler_ShouldServeSecondCallFromCache(t *testing.T) {
	assert := assert.New(t)
	svr := newTestServer(t)
	repo := &fakeCategoryRepo{categories: []Category{{ID: "cat1", Name: "Engineering"}}}

	w := httptest.NewRecorder()
	CategoriesHandler(svr, repo)(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(http.StatusOK, w.Code)

	// the store can now fail, the list is cached
	repo.failing = true
	w = httptest.NewRecorder()
	CategoriesHandler(svr, repo)(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(http.StatusOK, w.Code)
	var categories []Category
	assert.NoError(json.NewDecoder(w.Body).Decode(&categories))
	assert.Len(categories, 1)
}

func Test_CreateCategoryHandler_WhenAnonymous_ShouldReject(t *testing.T) {
	assert := assert.New(t)
	svr := newTestServer(t)
	repo := &fakeCategoryRepo{}
	handler := middleware.AdminAuthenticatedMiddleware(svr.SessionStore, testSigningKey, CreateCategoryHandler(svr, repo))

	r := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Engineering"}`))
	w := httptest.NewRecorder()
	handler(w, r)

	assert.Equal(http.StatusUnauthorized, w.Code)
	assert.Empty(repo.categories)
}

func Test_CreateCategoryHandler_WhenNotAdmin_ShouldReject(t *testing.T) {
	assert := assert.New(t)
	svr := newTestServer(t)
	repo := &fakeCategoryRepo{}
	handler := middleware.AdminAuthenticatedMiddleware(svr.SessionStore, testSigningKey, CreateCategoryHandler(svr, repo))

	r := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Engineering"}`))
	signOn(t, svr, r, "u1", false)
	w := httptest.NewRecorder()
	handler(w, r)

	assert.Equal(http.StatusUnauthorized, w.Code)
	assert.Empty(repo.categories)
}

func Test_CreateCategoryHandler_WhenAdmin_ShouldCreateAndDropCache(t *testing.T) {
	assert := assert.New(t)
	svr := newTestServer(t)
	repo := &fakeCategoryRepo{}
	handler := middleware.AdminAuthenticatedMiddleware(svr.SessionStore, testSigningKey, CreateCategoryHandler(svr, repo))

	// prime the category cache with the empty list
	w := httptest.NewRecorder()
	CategoriesHandler(svr, repo)(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(http.StatusOK, w.Code)

	r := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Engineering"}`))
	signOn(t, svr, r, "admin1", true)
	w = httptest.NewRecorder()
	handler(w, r)

	assert.Equal(http.StatusOK, w.Code)
	var created Category
	assert.NoError(json.NewDecoder(w.Body).Decode(&created))
	assert.Equal("Engineering", created.Name)

	// the next list re-reads the store and sees the new category
	w = httptest.NewRecorder()
	CategoriesHandler(svr, repo)(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(http.StatusOK, w.Code)
	var categories []Category
	assert.NoError(json.NewDecoder(w.Body).Decode(&categories))
	assert.Len(categories, 1)
}

func Test_CreateCategoryHandler_WhenNameEmpty_ShouldReject(t *testing.T) {
	assert := assert.New(t)
	svr := newTestServer(t)
	repo := &fakeCategoryRepo{}
	handler := middleware.AdminAuthenticatedMiddleware(svr.SessionStore, testSigningKey, CreateCategoryHandler(svr, repo))

	r := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":""}`))
	signOn(t, svr, r, "admin1", true)
	w := httptest.NewRecorder()
	handler(w, r)
	assert.Equal(http.StatusBadRequest, w.Code)
}
