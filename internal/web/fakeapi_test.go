package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/joseph-ayodele/jobboard/constants"
	"github.com/joseph-ayodele/jobboard/internal/entity"
)

// fakeAPI is an in-memory stand-in for the job-board REST API. It counts
// calls by "METHOD /path" so tests can assert exactly what was sent.
type fakeAPI struct {
	mu sync.Mutex

	jobs []entity.Job
	apps []entity.Application

	validAccess string
	refreshOK   bool

	submitStatus int
	submitBody   string
	lastSubmit   map[string]string
	lastFile     string

	calls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		jobs: []entity.Job{
			{ID: 1, Title: "Senior Go Engineer", Company: "Acme", Location: "Remote", Description: "Build services."},
			{ID: 2, Title: "Product Designer", Company: "Gopher Labs", Location: "Berlin", Description: "Design things."},
			{ID: 3, Title: "Data Analyst", Company: "Initech", Location: "Lagos", Description: "Crunch numbers."},
		},
		apps: []entity.Application{
			{ID: 1, FullName: "Jane Doe", Email: "jane@example.com", JobID: 1, Status: constants.StatusShortlisted, Resume: "https://cv.example.com/jane.pdf"},
			{ID: 2, FullName: "John Roe", Email: "john@example.com", JobID: 2, Status: constants.StatusNew, Resume: "https://cv.example.com/john.pdf"},
			{ID: 3, FullName: "Ada Lovelace", Email: "ada@example.com", JobID: 1, Status: constants.StatusShortlisted, Resume: "https://cv.example.com/ada.pdf"},
		},
		validAccess:  "acc-1",
		refreshOK:    true,
		submitStatus: http.StatusCreated,
		calls:        map[string]int{},
	}
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.calls {
		n += v
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[r.Method+" "+r.URL.Path]++

	switch r.URL.Path {
	case "/api/token/":
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["username"] != "recruiter" || creds["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": f.validAccess, "refresh": "ref-1"})
		return
	case "/api/token/refresh/":
		if !f.refreshOK {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		f.validAccess = "acc-2"
		writeJSON(w, http.StatusOK, map[string]string{"access": f.validAccess})
		return
	}

	auth := r.Header.Get("Authorization")
	public := r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/jobs/") ||
		r.URL.Path == "/api/applications/submit/"
	if (auth != "" && auth != "Bearer "+f.validAccess) || (auth == "" && !public) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[1] == "jobs":
		f.serveJobs(w, r)
	case len(parts) == 3 && parts[1] == "jobs":
		id, _ := strconv.ParseInt(parts[2], 10, 64)
		f.serveJob(w, r, id)
	case len(parts) == 3 && parts[1] == "applications" && parts[2] == "submit":
		f.serveSubmit(w, r)
	case len(parts) == 2 && parts[1] == "applications":
		writeJSON(w, http.StatusOK, f.apps)
	case len(parts) == 4 && parts[1] == "applications" && parts[3] == "update_status":
		id, _ := strconv.ParseInt(parts[2], 10, 64)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		for i := range f.apps {
			if f.apps[i].ID == id {
				f.apps[i].Status = constants.ApplicationStatus(body["status"])
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": body["status"]})
	case len(parts) == 3 && parts[1] == "applications" && r.Method == http.MethodDelete:
		id, _ := strconv.ParseInt(parts[2], 10, 64)
		kept := f.apps[:0]
		for _, a := range f.apps {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		f.apps = kept
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
}

func (f *fakeAPI) serveJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, f.jobs)
	case http.MethodPost:
		var in entity.JobInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		job := entity.Job{ID: int64(len(f.jobs) + 100), Title: in.Title, Company: in.Company, Location: in.Location, Description: in.Description, JobType: in.JobType}
		f.jobs = append(f.jobs, job)
		writeJSON(w, http.StatusCreated, job)
	}
}

func (f *fakeAPI) serveJob(w http.ResponseWriter, r *http.Request, id int64) {
	idx := -1
	for i, j := range f.jobs {
		if j.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, f.jobs[idx])
	case http.MethodPatch, http.MethodPut:
		var in entity.JobInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		j := &f.jobs[idx]
		j.Title, j.Company, j.Location, j.Description, j.JobType = in.Title, in.Company, in.Location, in.Description, in.JobType
		writeJSON(w, http.StatusOK, *j)
	case http.MethodDelete:
		f.jobs = append(f.jobs[:idx], f.jobs[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakeAPI) serveSubmit(w http.ResponseWriter, r *http.Request) {
	f.lastSubmit = map[string]string{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				f.lastSubmit[k] = v[0]
			}
			if file, hdr, err := r.FormFile("resume"); err == nil {
				raw, _ := io.ReadAll(file)
				_ = file.Close()
				f.lastFile = hdr.Filename + ":" + string(raw[:min(len(raw), 8)])
			}
		}
	} else {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		for k, v := range body {
			if s, ok := v.(string); ok {
				f.lastSubmit[k] = s
			}
		}
	}
	body := f.submitBody
	if body == "" {
		body = `{"id": 99, "full_name": "Jane Doe", "email": "jane@example.com", "status": "new"}`
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.submitStatus)
	_, _ = w.Write([]byte(body))
}
