package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/jobboard/internal/client"
	"github.com/joseph-ayodele/jobboard/internal/session"
)

const testSID = "3f1c2a9e-8d4b-4c7a-9b1e-2f6d5a4c3b21"

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	api      *fakeAPI
	backend  *session.MemoryBackend
	server   *Server
	upstream *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := newFakeAPI()
	upstream := httptest.NewServer(api)
	t.Cleanup(upstream.Close)

	backend := session.NewMemoryBackend()
	c := client.New(client.Options{BaseURL: upstream.URL, Logger: logger}, nil)
	srv, err := NewServer(Config{}, c, backend, nil, logger)
	require.NoError(t, err)
	return &harness{api: api, backend: backend, server: srv, upstream: upstream}
}

// signIn stores a token pair for testSID as if the recruiter had logged in.
func (h *harness) signIn(t *testing.T, access, refresh string) {
	t.Helper()
	require.NoError(t, h.backend.Save(context.Background(), testSID, session.Tokens{Access: access, Refresh: refresh}))
}

func (h *harness) request(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.AddCookie(&http.Cookie{Name: "jobboard_sid", Value: testSID})
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	return h.request(http.MethodGet, target, nil, "")
}

func (h *harness) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return h.request(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func TestListJobs_FiltersAndCounts(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "3 jobs found")

	rec = h.get("/?q=BERLIN")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/jobs/2"`)
	assert.NotContains(t, body, `href="/jobs/1"`)
	assert.Contains(t, body, "1 job found")

	rec = h.get("/?q=nothing-here")
	assert.Contains(t, rec.Body.String(), "No jobs match your search.")
}

var jobsDataRe = regexp.MustCompile(`(?s)<script type="application/json" id="jobs-data">(.*?)</script>`)

func TestListJobs_EmbedsFullListOnce(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/?q=berlin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, h.api.total(), "one upstream fetch per page load")
	assert.NotContains(t, rec.Body.String(), "/jobs.json", "the page filters locally")

	m := jobsDataRe.FindStringSubmatch(rec.Body.String())
	require.Len(t, m, 2)
	var embedded []struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Location string `json:"location"`
	}
	require.NoError(t, json.Unmarshal([]byte(m[1]), &embedded))
	require.Len(t, embedded, 3, "the unfiltered list is embedded for keystroke filtering")
	assert.Equal(t, "Senior Go Engineer", embedded[0].Title)
}

func TestJobsJSON(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/jobs.json?q=engineer")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Count int `json:"count"`
		Total int `json:"total"`
		Jobs  []struct {
			Title string `json:"title"`
		} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 3, payload.Total)
	assert.Equal(t, 1, payload.Count)
	require.Len(t, payload.Jobs, 1)
	assert.Equal(t, "Senior Go Engineer", payload.Jobs[0].Title)
}

func TestJobDetail(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/jobs/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product Designer")
	assert.Contains(t, rec.Body.String(), `href="/apply/2"`)

	assert.Equal(t, http.StatusNotFound, h.get("/jobs/404").Code)
	assert.Equal(t, http.StatusNotFound, h.get("/jobs/abc").Code)
}

func TestApply_InvalidEmailMakesNoCall(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm("/apply/1", url.Values{
		"full_name":  {"Jane Doe"},
		"email":      {"not-an-email"},
		"resume_url": {"https://cv.example.com/jane.pdf"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email address")
	assert.Equal(t, 0, h.api.total(), "an invalid form makes no request at all")
}

func TestApplyForm_CarriesJobHeading(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/apply/2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="job_title" value="Product Designer"`)
	assert.Contains(t, body, `name="job_company" value="Gopher Labs"`)
	assert.Contains(t, body, `data-submitting="Submitting..."`)

	rec = h.postForm("/apply/2", url.Values{
		"full_name": {""}, "email": {"jane@example.com"},
		"job_title": {"Product Designer"}, "job_company": {"Gopher Labs"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product Designer at Gopher Labs")
	assert.Contains(t, rec.Body.String(), "Name is required")
	assert.Equal(t, 1, h.api.total(), "only the GET of the form looked the job up")
}

func TestApply_SuccessSubmitsOnce(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm("/apply/1", url.Values{
		"full_name":   {"Jane Doe"},
		"email":       {"jane@example.com"},
		"resume_url":  {"https://cv.example.com/jane.pdf"},
		"job_title":   {"Senior Go Engineer"},
		"job_company": {"Acme"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Application Submitted!")
	assert.Contains(t, rec.Body.String(), "Senior Go Engineer")
	assert.Equal(t, 1, h.api.count("POST /api/applications/submit/"))
	assert.Equal(t, 1, h.api.total(), "the job heading comes from the form, not a lookup")
	assert.Equal(t, "Jane Doe", h.api.lastSubmit["full_name"])
	assert.Equal(t, "https://cv.example.com/jane.pdf", h.api.lastSubmit["resume"])
}

func TestApply_WithFileUpload(t *testing.T) {
	h := newHarness(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("full_name", "Jane Doe"))
	require.NoError(t, w.WriteField("email", "jane@example.com"))
	part, err := w.CreateFormFile("resume_file", "jane.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec := h.request(http.MethodPost, "/apply/1", &buf, w.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, h.api.count("POST /api/applications/submit/"))
	assert.Equal(t, "1", h.api.lastSubmit["job_id"])
	assert.Equal(t, "jane.pdf:%PDF-1.4", h.api.lastFile)
}

func TestApply_RejectsUnsupportedFile(t *testing.T) {
	h := newHarness(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("full_name", "Jane Doe"))
	require.NoError(t, w.WriteField("email", "jane@example.com"))
	part, err := w.CreateFormFile("resume_file", "jane.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("plain text pretending to be a pdf"))
	require.NoError(t, w.Close())

	rec := h.request(http.MethodPost, "/apply/1", &buf, w.FormDataContentType())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resume must be a PDF, DOC or DOCX file")
	assert.Equal(t, 0, h.api.total())
}

func TestApply_ServerMessageIsShown(t *testing.T) {
	h := newHarness(t)
	h.api.submitStatus = http.StatusBadRequest
	h.api.submitBody = `{"message": "You have already applied for this job"}`

	rec := h.postForm("/apply/1", url.Values{
		"full_name":  {"Jane Doe"},
		"email":      {"jane@example.com"},
		"resume_url": {"https://cv.example.com/jane.pdf"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "You have already applied for this job")
	assert.Contains(t, rec.Body.String(), `value="Jane Doe"`, "form keeps its input")
}

func TestRecruiterPages_RedirectWhenSignedOut(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/dashboard", "/manage/jobs", "/applications/1", "/manage/jobs/new", "/dashboard/export"} {
		rec := h.get(path)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login"), path)
	}
	rec := h.postForm("/manage/jobs/1/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, 0, h.api.total(), "no API call is made for a gated page")
	assert.Equal(t, "/login?next=%2Fdashboard", h.get("/dashboard").Header().Get("Location"))
}

var countRe = regexp.MustCompile(`data-status="shortlisted">\s*<strong class="count">(\d+)</strong>`)

func TestDashboard_StatusFilter(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "acc-1", "ref-1")

	rec := h.get("/dashboard?status=shortlisted")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "Ada Lovelace")
	assert.NotContains(t, body, "John Roe")
	assert.Contains(t, body, "Showing 2 of 3")

	m := countRe.FindStringSubmatch(body)
	require.Len(t, m, 2)
	assert.Equal(t, "2", m[1], "bucket count matches the filtered list")

	rec = h.get("/dashboard?q=john")
	assert.Contains(t, rec.Body.String(), "John Roe")
	assert.Contains(t, rec.Body.String(), "Showing 1 of 3")
}

func TestDashboard_ExpiredSessionRedirectsToLogin(t *testing.T) {
	h := newHarness(t)
	h.api.refreshOK = false
	h.signIn(t, "stale", "revoked")

	rec := h.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fdashboard", rec.Header().Get("Location"))
	assert.Equal(t, 1, h.api.count("POST /api/token/refresh/"))
	assert.Equal(t, 1, h.api.count("GET /api/applications/"), "no retry after a failed refresh")

	_, err := h.backend.Load(context.Background(), testSID)
	assert.ErrorIs(t, err, session.ErrNoSession, "both tokens cleared")
}

func TestDashboard_RefreshesStaleToken(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "stale", "ref-1")

	rec := h.get("/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, h.api.count("POST /api/token/refresh/"))
	assert.Equal(t, 2, h.api.count("GET /api/applications/"))

	tokens, err := h.backend.Load(context.Background(), testSID)
	require.NoError(t, err)
	assert.Equal(t, "acc-2", tokens.Access)
	assert.Equal(t, "ref-1", tokens.Refresh)
}

func TestExportApplications(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "acc-1", "ref-1")

	rec := h.get("/dashboard/export?status=shortlisted")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Applications")
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus two shortlisted applications")
}

func TestApplicationDetailAndStatusUpdate(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "acc-1", "ref-1")

	rec := h.get("/applications/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "john@example.com")
	assert.Equal(t, 0, h.api.count("GET /api/applications/2/"), "detail is found by scanning the list")
	assert.Equal(t, http.StatusNotFound, h.get("/applications/77").Code)

	rec = h.postForm("/applications/2/status", url.Values{"status": {"new"}, "current": {"new"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 0, h.api.count("PATCH /api/applications/2/update_status/"), "unchanged status is a no-op")

	rec = h.postForm("/applications/2/status", url.Values{"status": {"reviewed"}, "current": {"new"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/applications/2", rec.Header().Get("Location"))
	assert.Equal(t, 1, h.api.count("PATCH /api/applications/2/update_status/"))
	assert.Equal(t, "reviewed", string(h.api.apps[1].Status))

	rec = h.postForm("/applications/2/status", url.Values{"status": {"archived"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, h.api.count("PATCH /api/applications/2/update_status/"))
}

func TestDeleteApplication(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "acc-1", "ref-1")

	rec := h.postForm("/applications/3/delete", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.Equal(t, 1, h.api.count("DELETE /api/applications/3/"))
	assert.NotContains(t, h.get("/dashboard").Body.String(), "Ada Lovelace")
}

func TestDeleteJob_RequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "acc-1", "ref-1")

	rec := h.get("/manage/jobs/2/delete")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Delete job?")
	assert.Contains(t, rec.Body.String(), "Product Designer")

	// cancelling (no confirm field) issues no call
	rec = h.postForm("/manage/jobs/2/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 0, h.api.count("DELETE /api/jobs/2/"))

	rec = h.postForm("/manage/jobs/2/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/manage/jobs", rec.Header().Get("Location"))
	assert.Equal(t, 1, h.api.count("DELETE /api/jobs/2/"))

	rec = h.get("/manage/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Product Designer")
	assert.Contains(t, rec.Body.String(), "Senior Go Engineer")
}

func TestCreateAndEditJob(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "acc-1", "ref-1")

	rec := h.postForm("/manage/jobs/new", url.Values{"title": {"Only a title"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Company name is required")
	assert.Equal(t, 0, h.api.count("POST /api/jobs/"))

	rec = h.postForm("/manage/jobs/new", url.Values{
		"title": {"SRE"}, "company": {"Acme"}, "location": {"Remote"},
		"description": {"Keep it running"}, "job_type": {"full time"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, h.api.count("POST /api/jobs/"))
	assert.Equal(t, "Full-time", h.api.jobs[len(h.api.jobs)-1].JobType)

	rec = h.get("/manage/jobs/1/edit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Senior Go Engineer"`)

	rec = h.postForm("/manage/jobs/1/edit", url.Values{
		"title": {"Staff Go Engineer"}, "company": {"Acme"}, "location": {"Remote"}, "description": {"Build services."},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, h.api.count("PATCH /api/jobs/1/"))
	assert.Equal(t, "Staff Go Engineer", h.api.jobs[0].Title)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm("/login", url.Values{"username": {""}, "password": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username is required")
	assert.Equal(t, 0, h.api.total())

	rec = h.postForm("/login", url.Values{"username": {"recruiter"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No active account found with the given credentials")
	assert.Equal(t, 0, h.api.count("POST /api/token/refresh/"))

	rec = h.postForm("/login", url.Values{"username": {"recruiter"}, "password": {"secret"}, "next": {"/manage/jobs"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/manage/jobs", rec.Header().Get("Location"))

	tokens, err := h.backend.Load(context.Background(), testSID)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", tokens.Access)
	assert.Equal(t, "ref-1", tokens.Refresh)

	// already signed in: the login page forwards to the dashboard
	rec = h.get("/login")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = h.postForm("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, err = h.backend.Load(context.Background(), testSID)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestLogin_RejectsOffsiteNext(t *testing.T) {
	h := newHarness(t)
	rec := h.postForm("/login", url.Values{"username": {"recruiter"}, "password": {"secret"}, "next": {"//evil.example.com"}})
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestNotFound(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Oops! Page not found")
}

func TestSessionCookieIssuedOnFirstVisit(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)

	var sid *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "jobboard_sid" {
			sid = c
		}
	}
	require.NotNil(t, sid)
	assert.NotEmpty(t, sid.Value)
	assert.True(t, sid.HttpOnly)
	assert.NotEmpty(t, rec.Header().Get(headerReqID))
}

func TestSessionCookieReplacedWhenMalformed(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jobboard_sid", Value: "forged-id"})
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)

	var issued string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "jobboard_sid" {
			issued = c.Value
		}
	}
	assert.NotEmpty(t, issued)
	assert.NotEqual(t, "forged-id", issued)

	// a well-formed id is kept as is
	rec = h.get("/")
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, "jobboard_sid", c.Name)
	}
}
