package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/jobboard/constants"
	"github.com/joseph-ayodele/jobboard/internal/client"
	"github.com/joseph-ayodele/jobboard/internal/entity"
	"github.com/joseph-ayodele/jobboard/internal/export"
	"github.com/joseph-ayodele/jobboard/internal/views"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type dashboardPage struct {
	Page
	Query        string
	Status       string
	Counts       []views.StatusCount
	Applications []entity.Application
	Total        int
}

func (s *Server) dashboard(c *gin.Context) {
	p := dashboardPage{
		Page:   s.page(c, "Applications"),
		Query:  c.Query("q"),
		Status: c.DefaultQuery("status", constants.StatusAll),
	}

	all, err := s.apiFor(c).Applications().List(c.Request.Context())
	if err != nil {
		if s.expired(c, err) {
			return
		}
		p.State = views.Failed(s.failure(c, err, "web.dashboard.list_failed", "Failed to load applications."))
		p.Counts = views.CountByStatus(nil, p.Status)
		s.render(c, http.StatusBadGateway, "dashboard.html", p)
		return
	}
	p.Total = len(all)
	p.Counts = views.CountByStatus(all, p.Status)
	p.Applications = views.FilterApplications(all, p.Query, p.Status)
	s.render(c, http.StatusOK, "dashboard.html", p)
}

// exportApplications downloads the dashboard's current filtered list.
func (s *Server) exportApplications(c *gin.Context) {
	ctx := c.Request.Context()
	all, err := s.apiFor(c).Applications().List(ctx)
	if err != nil {
		if s.expired(c, err) {
			return
		}
		msg := s.failure(c, err, "web.export.list_failed", "Failed to load applications.")
		s.setFlash(c, "error", "Export failed", msg)
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	visible := views.FilterApplications(all, c.Query("q"), c.DefaultQuery("status", constants.StatusAll))

	raw, err := s.exporter.ApplicationsXLSX(ctx, visible)
	if err != nil {
		s.failure(c, err, "web.export.failed", "")
		s.setFlash(c, "error", "Export failed", "Could not build the spreadsheet.")
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(time.Now())))
	c.Data(http.StatusOK, xlsxContentType, raw)
}

type applicationPage struct {
	Page
	Application entity.Application
}

// applicationDetail finds the application in the full list; the API's single
// record endpoint is not used here.
func (s *Server) applicationDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	p := applicationPage{Page: s.page(c, "Application")}

	all, err := s.apiFor(c).Applications().List(c.Request.Context())
	if err != nil {
		if s.expired(c, err) {
			return
		}
		p.State = views.Failed(s.failure(c, err, "web.application.list_failed", "Failed to load application."))
		s.render(c, http.StatusBadGateway, "application.html", p)
		return
	}
	app, found := views.FindApplication(all, id)
	if !found {
		s.notFound(c)
		return
	}
	p.Application = app
	p.Title = app.FullName
	s.render(c, http.StatusOK, "application.html", p)
}

func (s *Server) updateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	back := fmt.Sprintf("/applications/%d", id)

	status, valid := constants.CanonicalStatus(c.PostForm("status"))
	if !valid {
		s.setFlash(c, "error", "Error", "Please choose a valid status.")
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	// unchanged status is a no-op
	if current, ok := constants.CanonicalStatus(c.PostForm("current")); ok && current == status {
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	if err := s.apiFor(c).Applications().UpdateStatus(c.Request.Context(), id, status); err != nil {
		if s.expired(c, err) {
			return
		}
		msg := s.failure(c, err, "web.application.status_failed", "Failed to update status. Please try again.")
		s.setFlash(c, "error", "Error", msg)
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	s.logger.Info("web.application.status_updated", "application_id", id, "status", string(status))
	s.setFlash(c, "success", "Status Updated", fmt.Sprintf("Application status changed to %s.", status.Label()))
	c.Redirect(http.StatusSeeOther, back)
}

func (s *Server) deleteApplication(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	if err := s.apiFor(c).Applications().Delete(c.Request.Context(), id); err != nil {
		if s.expired(c, err) {
			return
		}
		msg := s.failure(c, err, "web.application.delete_failed", "Failed to delete application.")
		s.setFlash(c, "error", "Error", msg)
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/applications/%d", id))
		return
	}
	s.setFlash(c, "success", "Success", "Application deleted successfully")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

type manageJobsPage struct {
	Page
	Query string
	Jobs  []entity.Job
	Total int
}

func (s *Server) manageJobs(c *gin.Context) {
	p := manageJobsPage{Page: s.page(c, "Manage jobs"), Query: c.Query("q")}

	all, err := s.apiFor(c).Jobs().List(c.Request.Context())
	if err != nil {
		if s.expired(c, err) {
			return
		}
		p.State = views.Failed(s.failure(c, err, "web.manage.list_failed", "Failed to load jobs"))
		s.render(c, http.StatusBadGateway, "manage_jobs.html", p)
		return
	}
	p.Total = len(all)
	p.Jobs = views.FilterJobs(all, p.Query)
	s.render(c, http.StatusOK, "manage_jobs.html", p)
}

type jobFormPage struct {
	Page
	JobID   int64
	Editing bool
	Form    views.JobForm
	Errors  views.FormErrors
}

func jobFormFrom(c *gin.Context) views.JobForm {
	return views.JobForm{JobInput: entity.JobInput{
		Title:        c.PostForm("title"),
		Company:      c.PostForm("company"),
		Location:     c.PostForm("location"),
		Description:  c.PostForm("description"),
		Requirements: c.PostForm("requirements"),
		Salary:       c.PostForm("salary"),
		JobType:      c.PostForm("job_type"),
	}}
}

func (s *Server) newJobForm(c *gin.Context) {
	s.render(c, http.StatusOK, "job_form.html", jobFormPage{Page: s.page(c, "Create job")})
}

func (s *Server) createJob(c *gin.Context) {
	p := jobFormPage{Page: s.page(c, "Create job"), Form: jobFormFrom(c)}
	if errs := p.Form.Validate(); !errs.Valid() {
		p.Errors = errs
		s.render(c, http.StatusUnprocessableEntity, "job_form.html", p)
		return
	}

	job, err := s.apiFor(c).Jobs().Create(c.Request.Context(), p.Form.Input())
	if err != nil {
		if s.expired(c, err) {
			return
		}
		msg := s.failure(c, err, "web.manage.create_failed", "Failed to create job")
		p.Flash = &Flash{Kind: "error", Title: "Error", Message: msg}
		s.render(c, upstreamStatus(err), "job_form.html", p)
		return
	}
	s.logger.Info("web.manage.job_created", "job_id", job.ID)
	s.setFlash(c, "success", "Success", "Job created successfully")
	c.Redirect(http.StatusSeeOther, "/manage/jobs")
}

// loadJob fetches a job for the edit and delete pages, rendering 404 or an
// error itself. ok is false when the handler should stop.
func (s *Server) loadJob(c *gin.Context) (*entity.Job, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		s.notFound(c)
		return nil, false
	}
	job, err := s.apiFor(c).Jobs().Get(c.Request.Context(), id)
	switch {
	case err == nil:
		return job, true
	case s.expired(c, err):
	case client.IsStatus(err, http.StatusNotFound):
		s.notFound(c)
	default:
		msg := s.failure(c, err, "web.manage.get_failed", "Failed to load job")
		s.setFlash(c, "error", "Error", msg)
		c.Redirect(http.StatusSeeOther, "/manage/jobs")
	}
	return nil, false
}

func (s *Server) editJobForm(c *gin.Context) {
	job, ok := s.loadJob(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "job_form.html", jobFormPage{
		Page:    s.page(c, "Edit job"),
		JobID:   job.ID,
		Editing: true,
		Form:    views.JobForm{JobInput: job.Input()},
	})
}

func (s *Server) updateJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	p := jobFormPage{Page: s.page(c, "Edit job"), JobID: id, Editing: true, Form: jobFormFrom(c)}
	if errs := p.Form.Validate(); !errs.Valid() {
		p.Errors = errs
		s.render(c, http.StatusUnprocessableEntity, "job_form.html", p)
		return
	}

	if _, err := s.apiFor(c).Jobs().Update(c.Request.Context(), id, p.Form.Input()); err != nil {
		if s.expired(c, err) {
			return
		}
		msg := s.failure(c, err, "web.manage.update_failed", "Failed to update job")
		p.Flash = &Flash{Kind: "error", Title: "Error", Message: msg}
		s.render(c, upstreamStatus(err), "job_form.html", p)
		return
	}
	s.setFlash(c, "success", "Success", "Job updated successfully")
	c.Redirect(http.StatusSeeOther, "/manage/jobs")
}

type deleteJobPage struct {
	Page
	Job *entity.Job
}

func (s *Server) confirmDeleteJob(c *gin.Context) {
	job, ok := s.loadJob(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "job_delete.html", deleteJobPage{Page: s.page(c, "Delete job"), Job: job})
}

// deleteJob only calls the API when the confirmation was explicitly given.
func (s *Server) deleteJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		s.notFound(c)
		return
	}
	if c.PostForm("confirm") != "yes" {
		c.Redirect(http.StatusSeeOther, "/manage/jobs")
		return
	}

	if err := s.apiFor(c).Jobs().Delete(c.Request.Context(), id); err != nil {
		if s.expired(c, err) {
			return
		}
		msg := s.failure(c, err, "web.manage.delete_failed", "Failed to delete job")
		s.setFlash(c, "error", "Error", msg)
		c.Redirect(http.StatusSeeOther, "/manage/jobs")
		return
	}
	s.logger.Info("web.manage.job_deleted", "job_id", id)
	s.setFlash(c, "success", "Success", "Job deleted successfully")
	c.Redirect(http.StatusSeeOther, "/manage/jobs")
}
