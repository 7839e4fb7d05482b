package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joseph-ayodele/jobboard/internal/entity"
)

// JobsAPI maps job operations onto /api/jobs/.
type JobsAPI struct {
	c *Client
}

func (c *Client) Jobs() *JobsAPI { return &JobsAPI{c: c} }

func jobPath(id int64) string { return fmt.Sprintf("/api/jobs/%d/", id) }

func (a *JobsAPI) List(ctx context.Context) ([]entity.Job, error) {
	resp, err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/jobs/"})
	if err != nil {
		return nil, err
	}
	return decodeList[entity.Job](jobListSchema, resp.Body)
}

func (a *JobsAPI) Get(ctx context.Context, id int64) (*entity.Job, error) {
	resp, err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: jobPath(id)})
	if err != nil {
		return nil, err
	}
	return decodeOne[entity.Job](jobSchema, resp.Body)
}

func (a *JobsAPI) Create(ctx context.Context, in entity.JobInput) (*entity.Job, error) {
	return a.write(ctx, http.MethodPost, "/api/jobs/", in)
}

// Update is a partial update (PATCH).
func (a *JobsAPI) Update(ctx context.Context, id int64, in entity.JobInput) (*entity.Job, error) {
	return a.write(ctx, http.MethodPatch, jobPath(id), in)
}

// Replace is a full update (PUT).
func (a *JobsAPI) Replace(ctx context.Context, id int64, in entity.JobInput) (*entity.Job, error) {
	return a.write(ctx, http.MethodPut, jobPath(id), in)
}

func (a *JobsAPI) Delete(ctx context.Context, id int64) error {
	_, err := a.c.Do(ctx, Request{Method: http.MethodDelete, Path: jobPath(id)})
	return err
}

func (a *JobsAPI) write(ctx context.Context, method, path string, in entity.JobInput) (*entity.Job, error) {
	req, err := JSON(method, path, in)
	if err != nil {
		return nil, err
	}
	resp, err := a.c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeOne[entity.Job](jobSchema, resp.Body)
}
