// Package web is the server-rendered job-board front-end. Each browser gets
// an opaque session cookie; its tokens live in a session.Backend and are
// bound to the API client per request.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/jobboard/internal/client"
	"github.com/joseph-ayodele/jobboard/internal/export"
	"github.com/joseph-ayodele/jobboard/internal/session"
)

type Config struct {
	CookieName         string
	CookieSecure       bool
	CookieMaxAge       time.Duration
	CORSAllowedOrigins []string
}

type Server struct {
	cfg      Config
	api      *client.Client
	sessions session.Backend
	exporter *export.Service
	logger   *slog.Logger
	engine   *gin.Engine
}

// NewServer wires the router. api is the shared client; it is re-bound to the
// caller's token store on every request.
func NewServer(cfg Config, api *client.Client, sessions session.Backend, exporter *export.Service, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "jobboard_sid"
	}
	if cfg.CookieMaxAge <= 0 {
		cfg.CookieMaxAge = 30 * 24 * time.Hour
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	s := &Server{cfg: cfg, api: api, sessions: sessions, exporter: exporter, logger: logger}

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.withSession())
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = maxFormMemory

	r.GET("/", s.listJobs)
	r.GET("/jobs.json", s.corsMiddleware(), s.jobsJSON)
	r.OPTIONS("/jobs.json", s.corsMiddleware())
	r.GET("/jobs/:id", s.jobDetail)
	r.GET("/apply/:jobId", s.applyForm)
	r.POST("/apply/:jobId", s.applySubmit)
	r.GET("/login", s.loginForm)
	r.POST("/login", s.loginSubmit)
	r.POST("/logout", s.logout)

	recruiter := r.Group("/", s.requireAuth())
	{
		recruiter.GET("/dashboard", s.dashboard)
		recruiter.GET("/dashboard/export", s.exportApplications)
		recruiter.GET("/applications/:id", s.applicationDetail)
		recruiter.POST("/applications/:id/status", s.updateStatus)
		recruiter.POST("/applications/:id/delete", s.deleteApplication)

		recruiter.GET("/manage/jobs", s.manageJobs)
		recruiter.GET("/manage/jobs/new", s.newJobForm)
		recruiter.POST("/manage/jobs/new", s.createJob)
		recruiter.GET("/manage/jobs/:id/edit", s.editJobForm)
		recruiter.POST("/manage/jobs/:id/edit", s.updateJob)
		recruiter.GET("/manage/jobs/:id/delete", s.confirmDeleteJob)
		recruiter.POST("/manage/jobs/:id/delete", s.deleteJob)
	}

	r.NoRoute(s.notFound)

	s.engine = r
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) corsMiddleware() gin.HandlerFunc {
	config := cors.DefaultConfig()
	if len(s.cfg.CORSAllowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = s.cfg.CORSAllowedOrigins
	}
	config.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	return cors.New(config)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("jobboard web listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
