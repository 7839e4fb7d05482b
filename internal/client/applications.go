package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/joseph-ayodele/jobboard/constants"
	"github.com/joseph-ayodele/jobboard/internal/common"
	"github.com/joseph-ayodele/jobboard/internal/entity"
)

// ApplicationsAPI maps application operations onto /api/applications/.
type ApplicationsAPI struct {
	c *Client
}

func (c *Client) Applications() *ApplicationsAPI { return &ApplicationsAPI{c: c} }

func applicationPath(id int64) string { return fmt.Sprintf("/api/applications/%d/", id) }

type submissionJSON struct {
	JobID       int64  `json:"job_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Resume      string `json:"resume"`
	CoverLetter string `json:"cover_letter,omitempty"`
}

// Submit posts a new application. An attached resume file is sent as
// multipart/form-data; otherwise the resume URL goes in a JSON body. The
// created record is returned when the API echoes one, else nil.
func (a *ApplicationsAPI) Submit(ctx context.Context, sub entity.ApplicationSubmission) (*entity.Application, error) {
	var (
		req Request
		err error
	)
	if sub.ResumeFile != nil {
		req, err = multipartSubmission(sub)
	} else {
		req, err = JSON(http.MethodPost, "/api/applications/submit/", submissionJSON{
			JobID:       sub.JobID,
			FullName:    sub.FullName,
			Email:       sub.Email,
			Phone:       sub.Phone,
			Resume:      sub.ResumeURL,
			CoverLetter: sub.CoverLetter,
		})
	}
	if err != nil {
		return nil, err
	}

	resp, err := a.c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	created, err := decodeOne[entity.Application](applicationSchema, resp.Body)
	if err != nil {
		a.c.logger.Debug("client.applications.submit_no_echo", "status", resp.Status)
		return nil, nil
	}
	return created, nil
}

func multipartSubmission(sub entity.ApplicationSubmission) (Request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"job_id", strconv.FormatInt(sub.JobID, 10)},
		{"full_name", sub.FullName},
		{"email", sub.Email},
		{"phone", sub.Phone},
		{"cover_letter", sub.CoverLetter},
	}
	for _, f := range fields {
		if f[1] == "" && (f[0] == "phone" || f[0] == "cover_letter") {
			continue
		}
		if err := w.WriteField(f[0], f[1]); err != nil {
			return Request{}, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	file := sub.ResumeFile
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename=%q`, file.Filename))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return Request{}, fmt.Errorf("create resume part: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return Request{}, fmt.Errorf("copy resume: %w", err)
	}
	if err := w.Close(); err != nil {
		return Request{}, fmt.Errorf("close multipart: %w", err)
	}

	return Request{
		Method: http.MethodPost,
		Path:   "/api/applications/submit/",
		Header: http.Header{"Content-Type": []string{w.FormDataContentType()}},
		Body:   buf.Bytes(),
	}, nil
}

func (a *ApplicationsAPI) List(ctx context.Context) ([]entity.Application, error) {
	resp, err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/applications/"})
	if err != nil {
		return nil, err
	}
	return decodeList[entity.Application](applicationListSchema, resp.Body)
}

func (a *ApplicationsAPI) Get(ctx context.Context, id int64) (*entity.Application, error) {
	resp, err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: applicationPath(id)})
	if err != nil {
		return nil, err
	}
	return decodeOne[entity.Application](applicationSchema, resp.Body)
}

func (a *ApplicationsAPI) UpdateStatus(ctx context.Context, id int64, status constants.ApplicationStatus) error {
	if !status.Valid() {
		return common.InvalidInputErrorf("unknown status %q", status)
	}
	req, err := JSON(http.MethodPatch, applicationPath(id)+"update_status/", map[string]string{"status": string(status)})
	if err != nil {
		return err
	}
	_, err = a.c.Do(ctx, req)
	return err
}

func (a *ApplicationsAPI) Delete(ctx context.Context, id int64) error {
	_, err := a.c.Do(ctx, Request{Method: http.MethodDelete, Path: applicationPath(id)})
	return err
}
