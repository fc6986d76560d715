package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"product-inventory/web"

	"github.com/gin-gonic/gin"
)

const indexTemplate = "index.html"

// pageView adds pager arithmetic on top of the model for the template.
type pageView struct {
	*Model
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
}

// Server renders one Model as a single HTML page. All browsers share it.
type Server struct {
	mu     sync.Mutex
	model  *Model
	loaded bool
	logger *slog.Logger
}

func NewServer(model *Model, logger *slog.Logger) *Server {
	return &Server{model: model, logger: logger}
}

func (s *Server) RegisterRoutes(router *gin.Engine) error {
	tpl, err := template.New("root").Funcs(template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
	}).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tpl)

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}
	router.StaticFS("/static", http.FS(static))

	router.GET("/", s.index)
	router.POST("/products", s.create)
	router.POST("/products/:id/edit", s.beginEdit)
	router.POST("/products/:id/update", s.commitEdit)
	router.POST("/products/:id/delete", s.delete)
	router.POST("/edit/cancel", s.cancelEdit)
	return nil
}

// index fetches on first load and whenever the requested page differs from
// the current one.
func (s *Server) index(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.model.Page
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			page = n
		}
	}

	if !s.loaded || page != s.model.Page {
		if err := s.model.SetPage(c.Request.Context(), page); err != nil {
			s.logger.Error("fetch products failed", "page", page, "error", err)
		} else {
			s.loaded = true
		}
	}

	c.HTML(http.StatusOK, indexTemplate, pageView{
		Model:    s.model,
		HasPrev:  s.model.Page > 1,
		HasNext:  s.model.Page < s.model.TotalPages,
		PrevPage: s.model.Page - 1,
		NextPage: s.model.Page + 1,
	})
}

func (s *Server) create(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.model.SubmitCreate(c.Request.Context(), formFromRequest(c)); err != nil {
		s.logger.Error("refresh after create failed", "error", err)
	}
	s.redirect(c)
}

func (s *Server) beginEdit(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := parseID(c); ok {
		s.model.BeginEdit(id)
	}
	s.redirect(c)
}

func (s *Server) commitEdit(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := parseID(c)
	if ok && s.model.IsEditing(id) {
		if err := s.model.CommitEdit(c.Request.Context(), formFromRequest(c)); err != nil {
			s.logger.Error("refresh after update failed", "product_id", id, "error", err)
		}
	}
	s.redirect(c)
}

func (s *Server) cancelEdit(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.model.CancelEdit()
	s.redirect(c)
}

// delete runs after the browser's confirm() dialog has been accepted.
func (s *Server) delete(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := parseID(c); ok {
		confirmed := func() bool { return true }
		if err := s.model.Delete(c.Request.Context(), id, confirmed); err != nil {
			s.logger.Error("delete product failed", "product_id", id, "error", err)
		}
	}
	s.redirect(c)
}

func (s *Server) redirect(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/?page="+strconv.Itoa(s.model.Page))
}

func formFromRequest(c *gin.Context) Form {
	return Form{
		Article:  c.PostForm("article"),
		Name:     c.PostForm("name"),
		Price:    c.PostForm("price"),
		Quantity: c.PostForm("quantity"),
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}
