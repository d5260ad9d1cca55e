package category

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/workhive/job-board/internal/server"

	"github.com/segmentio/ksuid"
)

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryRq struct {
	Name string `json:"name"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) Categories() ([]Category, error) {
	categories := []Category{}
	rows, err := r.db.Query(`SELECT id, name, created_at FROM category ORDER BY name ASC`)
	if err != nil {
		return categories, err
	}
	defer rows.Close()
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return categories, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) CreateCategory(name string) (*Category, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return nil, err
	}
	c := &Category{ID: id.String(), Name: name, CreatedAt: time.Now().UTC()}
	_, err = r.db.Exec(`INSERT INTO category (id, name, created_at) VALUES ($1, $2, $3)`, c.ID, c.Name, c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

type categoryLister interface {
	Categories() ([]Category, error)
}

type categoryCreator interface {
	CreateCategory(name string) (*Category, error)
}

// CategoriesHandler serves the category list. The list changes rarely so it
// sits in the cache and is dropped when an admin adds a category.
func CategoriesHandler(svr server.Server, categoryRepo categoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cached := []Category{}
		if ok := svr.CacheGet(server.CacheKeyCategories, &cached); ok {
			svr.JSON(w, http.StatusOK, cached)
			return
		}
		categories, err := categoryRepo.Categories()
		if err != nil {
			svr.Log(err, "unable to retrieve categories")
			svr.JSON(w, http.StatusOK, []Category{})
			return
		}
		svr.CacheSet(server.CacheKeyCategories, categories)
		svr.JSON(w, http.StatusOK, categories)
	}
}

// CreateCategoryHandler is mounted behind AdminAuthenticatedMiddleware: by the
// time it runs the caller is a verified admin.
func CreateCategoryHandler(svr server.Server, categoryRepo categoryCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &CategoryRq{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSON(w, http.StatusBadRequest, "request is invalid")
			return
		}
		if req.Name == "" {
			svr.JSON(w, http.StatusBadRequest, "category name is invalid")
			return
		}
		c, err := categoryRepo.CreateCategory(req.Name)
		if err != nil {
			svr.Log(err, "unable to create category")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.CacheDelete(server.CacheKeyCategories)
		svr.JSON(w, http.StatusOK, c)
	}
}
