package views

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/jobboard/constants"
	"github.com/joseph-ayodele/jobboard/internal/common"
	"github.com/joseph-ayodele/jobboard/internal/entity"
)

// FormErrors maps a form field name to its inline message. Empty means valid.
type FormErrors map[string]string

func (e FormErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e FormErrors) Valid() bool { return len(e) == 0 }

func formErrors(v *common.Validator) FormErrors {
	if !v.HasErrors() {
		return nil
	}
	return FormErrors(v.FieldErrors())
}

// ResumeUpload describes an attached resume without holding it open. Head is
// the first bytes of the file, enough for content sniffing.
type ResumeUpload struct {
	Filename string
	Size     int64
	Head     []byte
}

// ApplicationForm is the public apply form.
type ApplicationForm struct {
	JobID       int64
	FullName    string
	Email       string
	Phone       string
	ResumeURL   string
	CoverLetter string
	File        *ResumeUpload
}

// Validate checks the form before any network call. Either a resume URL or
// an uploaded file is required; a file wins when both are present.
func (f ApplicationForm) Validate() FormErrors {
	v := common.NewValidator()
	v.Field("full_name", f.FullName,
		common.WithMessage(common.Required, "Name is required"),
		common.WithMessage(common.MaxLength(100), "Name must be less than 100 characters"),
	)
	v.Field("email", f.Email,
		common.WithMessage(common.Required, "Email is required"),
		common.WithMessage(common.Email, "Invalid email address"),
		common.WithMessage(common.MaxLength(255), "Email must be less than 255 characters"),
	)
	v.Field("phone", f.Phone,
		common.WithMessage(common.MaxLength(30), "Phone must be less than 30 characters"),
	)
	v.Field("cover_letter", f.CoverLetter,
		common.WithMessage(common.MaxLength(5000), "Cover letter must be less than 5000 characters"),
	)

	switch {
	case f.File != nil:
		v.Field("resume", f.File.Size,
			common.WithMessage(common.MaxBytes(constants.MaxResumeBytes), "File must be 10MB or smaller"),
		)
		if f.File.Size <= constants.MaxResumeBytes {
			if _, ok := SniffResume(f.File.Filename, f.File.Head); !ok {
				v.Add("resume", "Resume must be a PDF, DOC or DOCX file")
			}
		}
	case strings.TrimSpace(f.ResumeURL) != "":
		v.Field("resume", f.ResumeURL,
			common.WithMessage(common.HTTPURL, "Please enter a valid URL"),
			common.WithMessage(common.MaxLength(500), "URL must be less than 500 characters"),
		)
	default:
		v.Add("resume", "A resume link or file is required")
	}
	return formErrors(v)
}

// Submission converts a valid form into the API payload. file carries the
// upload body when one was attached.
func (f ApplicationForm) Submission(file *entity.ResumeFile) entity.ApplicationSubmission {
	sub := entity.ApplicationSubmission{
		JobID:       f.JobID,
		FullName:    strings.TrimSpace(f.FullName),
		Email:       strings.TrimSpace(f.Email),
		Phone:       strings.TrimSpace(f.Phone),
		CoverLetter: strings.TrimSpace(f.CoverLetter),
	}
	if f.File != nil && file != nil {
		sub.ResumeFile = file
		return sub
	}
	sub.ResumeURL = strings.TrimSpace(f.ResumeURL)
	return sub
}

// SniffResume checks the extension and the sniffed content type of an upload.
// It returns the MIME type to send with the file.
func SniffResume(filename string, head []byte) (string, bool) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedResumeExtensions[ext]; !ok {
		return "", false
	}
	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		if constants.AllowedResumeTypes[m.String()] == ext {
			return m.String(), true
		}
	}
	// a truncated head may only identify the container format
	switch {
	case ext == "docx" && detected.Is("application/zip"):
		return mimeForExt(ext), true
	case ext == "doc" && detected.Is("application/x-ole-storage"):
		return mimeForExt(ext), true
	}
	return detected.String(), false
}

func mimeForExt(ext string) string {
	for mime, e := range constants.AllowedResumeTypes {
		if e == ext {
			return mime
		}
	}
	return "application/octet-stream"
}

// LoginForm is the recruiter sign-in form.
type LoginForm struct {
	Username string
	Password string
}

func (f LoginForm) Validate() FormErrors {
	v := common.NewValidator()
	v.Field("username", f.Username, common.WithMessage(common.Required, "Username is required"))
	v.Field("password", f.Password, common.WithMessage(common.Required, "Password is required"))
	return formErrors(v)
}

// JobForm is the create/edit form for a job posting.
type JobForm struct {
	entity.JobInput
}

func (f JobForm) Validate() FormErrors {
	v := common.NewValidator()
	v.Field("title", f.Title,
		common.WithMessage(common.Required, "Job title is required"),
		common.WithMessage(common.MaxLength(200), "Title must be less than 200 characters"),
	)
	v.Field("company", f.Company,
		common.WithMessage(common.Required, "Company name is required"),
		common.WithMessage(common.MaxLength(200), "Company must be less than 200 characters"),
	)
	v.Field("location", f.Location,
		common.WithMessage(common.Required, "Location is required"),
		common.WithMessage(common.MaxLength(200), "Location must be less than 200 characters"),
	)
	v.Field("description", f.Description,
		common.WithMessage(common.Required, "Description is required"),
		common.WithMessage(common.MaxLength(5000), "Description must be less than 5000 characters"),
	)
	v.Field("requirements", f.Requirements,
		common.WithMessage(common.MaxLength(5000), "Requirements must be less than 5000 characters"),
	)
	v.Field("salary", f.Salary,
		common.WithMessage(common.MaxLength(100), "Salary must be less than 100 characters"),
	)
	// spelling variants such as "full time" are accepted, then checked
	// against the fixed list in canonical form
	jobType := f.JobType
	if jt, ok := constants.CanonicalJobType(f.JobType); ok {
		jobType = string(jt)
	}
	v.Field("job_type", jobType, common.Optional(common.WithMessage(
		common.OneOf(constants.JobTypes()...),
		fmt.Sprintf("Job type must be one of %s", strings.Join(constants.JobTypes(), ", ")),
	)))
	return formErrors(v)
}

// Input returns the trimmed payload with the job type in canonical spelling.
func (f JobForm) Input() entity.JobInput {
	in := entity.JobInput{
		Title:        strings.TrimSpace(f.Title),
		Company:      strings.TrimSpace(f.Company),
		Location:     strings.TrimSpace(f.Location),
		Description:  strings.TrimSpace(f.Description),
		Requirements: strings.TrimSpace(f.Requirements),
		Salary:       strings.TrimSpace(f.Salary),
	}
	if jt, ok := constants.CanonicalJobType(f.JobType); ok {
		in.JobType = string(jt)
	}
	return in
}
