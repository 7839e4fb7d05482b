package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/jobboard/constants"
	"github.com/joseph-ayodele/jobboard/internal/client"
	"github.com/joseph-ayodele/jobboard/internal/common"
	"github.com/joseph-ayodele/jobboard/internal/session"
	"github.com/joseph-ayodele/jobboard/internal/views"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"statusLabel": func(s constants.ApplicationStatus) string { return s.Label() },
	"statuses":    constants.Statuses,
	"jobTypes":    constants.JobTypes,
	"lines": func(s string) []string {
		return strings.Split(strings.TrimSpace(s), "\n")
	},
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
}

func loadTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// Page carries what the layout needs on every page.
type Page struct {
	Title         string
	Path          string
	Authenticated bool
	Username      string
	Flash         *Flash
	State         views.ViewState
}

func (s *Server) page(c *gin.Context, title string) Page {
	ctx := c.Request.Context()
	store := storeOf(c)
	p := Page{
		Title:         title,
		Path:          c.Request.URL.Path,
		Authenticated: session.Authenticated(ctx, store),
		Flash:         s.popFlash(c),
		State:         views.Success(),
	}
	if p.Authenticated {
		access, _ := store.Access(ctx)
		if id, ok := session.Claims(access); ok {
			p.Username = id.Username
		}
	}
	return p
}

func (s *Server) render(c *gin.Context, status int, name string, data any) {
	c.HTML(status, name, data)
}

func (s *Server) notFound(c *gin.Context) {
	s.render(c, http.StatusNotFound, "notfound.html", s.page(c, "Page not found"))
}

// expired reports whether err ended the session, and if so redirects to the
// login page. Callers return immediately when it reports true.
func (s *Server) expired(c *gin.Context, err error) bool {
	if !errors.Is(err, client.ErrSessionExpired) {
		return false
	}
	s.setFlash(c, "error", "Session expired", "Please sign in again.")
	target := "/login"
	if c.Request.Method == http.MethodGet {
		target = loginURL(c.Request.URL.RequestURI())
	}
	c.Redirect(http.StatusSeeOther, target)
	c.Abort()
	return true
}

// failure logs err against the request and returns the message to show.
func (s *Server) failure(c *gin.Context, err error, event, fallback string) string {
	_ = c.Error(err)
	s.logger.Warn(event, "req_id", common.RequestIDFromContext(c.Request.Context()), "path", c.Request.URL.Path, "error", err)
	return client.UserMessage(err, fallback)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
