package web

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/jobboard/constants"
	"github.com/joseph-ayodele/jobboard/internal/client"
	"github.com/joseph-ayodele/jobboard/internal/entity"
	"github.com/joseph-ayodele/jobboard/internal/views"
)

const (
	// sniffLen is how much of an upload is read for content detection.
	sniffLen      = 3072
	maxFormMemory = 12 << 20
)

type jobsPage struct {
	Page
	Query string
	Jobs  []entity.Job
	// All is embedded once so the page can refilter on every keystroke
	// without another request.
	All   []entity.Job
	Total int
}

func (s *Server) listJobs(c *gin.Context) {
	p := jobsPage{Page: s.page(c, "Open positions"), Query: c.Query("q")}

	all, err := s.apiFor(c).Jobs().List(c.Request.Context())
	if err != nil {
		if s.expired(c, err) {
			return
		}
		p.State = views.Failed(s.failure(c, err, "web.jobs.list_failed", "Failed to load jobs. Please try again later."))
		s.render(c, http.StatusBadGateway, "jobs.html", p)
		return
	}
	p.All = all
	p.Total = len(all)
	p.Jobs = views.FilterJobs(all, p.Query)
	s.render(c, http.StatusOK, "jobs.html", p)
}

// jobsJSON serves the filtered listing to other origins. The listing page
// itself filters the list it was rendered with.
func (s *Server) jobsJSON(c *gin.Context) {
	all, err := s.apiFor(c).Jobs().List(c.Request.Context())
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		msg := s.failure(c, err, "web.jobs.list_failed", "Failed to load jobs. Please try again later.")
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
		return
	}
	visible := views.FilterJobs(all, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"jobs":  visible,
		"count": len(visible),
		"total": len(all),
	})
}

type jobPage struct {
	Page
	Job *entity.Job
}

func (s *Server) jobDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	p := jobPage{Page: s.page(c, "Job")}

	job, err := s.apiFor(c).Jobs().Get(c.Request.Context(), id)
	switch {
	case err == nil:
		p.Job = job
		p.Title = job.Title
		s.render(c, http.StatusOK, "job.html", p)
	case s.expired(c, err):
	case client.IsStatus(err, http.StatusNotFound):
		s.notFound(c)
	default:
		p.State = views.Failed(s.failure(c, err, "web.jobs.get_failed", "Failed to load job details."))
		s.render(c, http.StatusBadGateway, "job.html", p)
	}
}

type applyPage struct {
	Page
	JobID  int64
	Job    *entity.Job
	Form   views.ApplicationForm
	Errors views.FormErrors
}

// loadApplyJob fetches the job shown above the apply form. The form still
// works when the job cannot be loaded, so only session expiry is fatal.
func (s *Server) loadApplyJob(c *gin.Context, id int64) (*entity.Job, bool) {
	job, err := s.apiFor(c).Jobs().Get(c.Request.Context(), id)
	if err != nil {
		if s.expired(c, err) {
			return nil, false
		}
		s.logger.Warn("web.apply.job_fetch_failed", "job_id", id, "error", err)
		return nil, true
	}
	return job, true
}

func (s *Server) applyForm(c *gin.Context) {
	id, ok := pathID(c, "jobId")
	if !ok {
		s.notFound(c)
		return
	}
	job, ok := s.loadApplyJob(c, id)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "apply.html", applyPage{
		Page:  s.page(c, "Apply for position"),
		JobID: id,
		Job:   job,
		Form:  views.ApplicationForm{JobID: id},
	})
}

func (s *Server) applySubmit(c *gin.Context) {
	id, ok := pathID(c, "jobId")
	if !ok {
		s.notFound(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxResumeBytes+1<<20)

	p := applyPage{Page: s.page(c, "Apply for position"), JobID: id}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			p.Form = views.ApplicationForm{JobID: id}
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				p.Errors = views.FormErrors{"resume": "File must be 10MB or smaller"}
				s.render(c, http.StatusRequestEntityTooLarge, "apply.html", p)
				return
			}
			p.State = views.Failed("Could not read the submitted form.")
			s.render(c, http.StatusBadRequest, "apply.html", p)
			return
		}
	}

	p.Job = postedJob(c, id)

	form := views.ApplicationForm{
		JobID:       id,
		FullName:    c.PostForm("full_name"),
		Email:       c.PostForm("email"),
		Phone:       c.PostForm("phone"),
		ResumeURL:   c.PostForm("resume_url"),
		CoverLetter: c.PostForm("cover_letter"),
	}
	fh, fileErr := c.FormFile("resume_file")
	if fileErr == nil && fh.Size > 0 {
		head, err := readHead(fh)
		if err != nil {
			s.logger.Warn("web.apply.read_upload_failed", "error", err)
		}
		form.File = &views.ResumeUpload{Filename: fh.Filename, Size: fh.Size, Head: head}
	}
	p.Form = form

	if errs := form.Validate(); !errs.Valid() {
		p.Errors = errs
		s.render(c, http.StatusUnprocessableEntity, "apply.html", p)
		return
	}

	var upload *entity.ResumeFile
	if form.File != nil {
		mime, _ := views.SniffResume(fh.Filename, form.File.Head)
		f, err := fh.Open()
		if err != nil {
			p.State = views.Failed("Failed to read the uploaded file.")
			s.render(c, http.StatusBadRequest, "apply.html", p)
			return
		}
		defer f.Close()
		upload = &entity.ResumeFile{Filename: fh.Filename, ContentType: mime, Size: fh.Size, Content: f}
	}

	_, err := s.apiFor(c).Applications().Submit(c.Request.Context(), form.Submission(upload))
	if err != nil {
		if s.expired(c, err) {
			return
		}
		msg := s.failure(c, err, "web.apply.submit_failed", "Failed to submit application. Please try again.")
		p.State = views.Failed(msg)
		p.Flash = &Flash{Kind: "error", Title: "Error", Message: msg}
		s.render(c, upstreamStatus(err), "apply.html", p)
		return
	}

	s.logger.Info("web.apply.submitted", "job_id", id, "with_file", upload != nil)
	p.Title = "Application submitted"
	p.Flash = &Flash{Kind: "success", Title: "Application Submitted!", Message: "Your application has been successfully submitted."}
	s.render(c, http.StatusOK, "apply_success.html", p)
}

// postedJob rebuilds the job heading from the hidden fields of the apply form,
// so a submission never needs a job lookup. It is nil when they are absent.
func postedJob(c *gin.Context, id int64) *entity.Job {
	title := strings.TrimSpace(c.PostForm("job_title"))
	if title == "" {
		return nil
	}
	return &entity.Job{ID: id, Title: title, Company: strings.TrimSpace(c.PostForm("job_company"))}
}

func readHead(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return buf[:n], err
	}
	return buf[:n], nil
}

// upstreamStatus maps an API failure to the status of the re-rendered page.
func upstreamStatus(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

type loginPage struct {
	Page
	Username string
	Next     string
	Errors   views.FormErrors
}

func postLoginTarget(next string) string {
	if next != "" && safeNext(next) && !strings.HasPrefix(next, "/login") {
		return next
	}
	return "/dashboard"
}

func (s *Server) loginForm(c *gin.Context) {
	p := loginPage{Page: s.page(c, "Recruiter sign in"), Next: c.Query("next")}
	if p.Authenticated {
		c.Redirect(http.StatusFound, postLoginTarget(p.Next))
		return
	}
	s.render(c, http.StatusOK, "login.html", p)
}

func (s *Server) loginSubmit(c *gin.Context) {
	form := views.LoginForm{Username: c.PostForm("username"), Password: c.PostForm("password")}
	p := loginPage{Page: s.page(c, "Recruiter sign in"), Username: form.Username, Next: c.PostForm("next")}

	if errs := form.Validate(); !errs.Valid() {
		p.Errors = errs
		s.render(c, http.StatusUnprocessableEntity, "login.html", p)
		return
	}

	_, err := s.apiFor(c).Auth().Login(c.Request.Context(), strings.TrimSpace(form.Username), form.Password)
	if err != nil {
		msg := s.failure(c, err, "web.login.failed", "Invalid credentials. Please try again.")
		p.Flash = &Flash{Kind: "error", Title: "Login Failed", Message: msg}
		status := http.StatusBadGateway
		if client.IsStatus(err, http.StatusUnauthorized) || client.IsStatus(err, http.StatusBadRequest) {
			status = http.StatusUnauthorized
		}
		s.render(c, status, "login.html", p)
		return
	}

	s.logger.Info("web.login.ok", "username", form.Username)
	s.setFlash(c, "success", "Welcome back!", "You have successfully logged in.")
	c.Redirect(http.StatusSeeOther, postLoginTarget(p.Next))
}

func (s *Server) logout(c *gin.Context) {
	if err := s.apiFor(c).Auth().Logout(c.Request.Context()); err != nil {
		s.logger.Error("web.logout.failed", "error", err)
	}
	s.setFlash(c, "success", "Signed out", "You have been signed out.")
	c.Redirect(http.StatusSeeOther, "/")
}
