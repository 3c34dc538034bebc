package folio

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Project is a portfolio entry as returned by the backend.
type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	RepoURL     string   `json:"repoUrl"`
	DemoURL     string   `json:"demoUrl"`
	Tags        []string `json:"tags"`
}

// ProjectForm carries the fields of a create or update request. Empty
// fields are still sent; the backend owns all validation. ImageURL is
// typically the public URL returned by PresignUpload.
type ProjectForm struct {
	Title       string
	Description string
	RepoURL     string
	DemoURL     string
	ImageURL    string
	Tags        []string
}

// encode renders the form as a multipart/form-data body.
func (f ProjectForm) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"title", f.Title},
		{"description", f.Description},
		{"repoUrl", f.RepoURL},
		{"demoUrl", f.DemoURL},
		{"imageUrl", f.ImageURL},
	}
	for _, field := range fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("encoding field %s: %w", field.name, err)
		}
	}
	for _, tag := range f.Tags {
		if err := w.WriteField("tags", tag); err != nil {
			return nil, "", fmt.Errorf("encoding tags: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// DeleteResult is the backend's acknowledgment of a deletion.
type DeleteResult struct {
	Message string `json:"message"`
}

// projectPath builds the path for one project. Identifiers are opaque and
// percent-encoded so they cannot introduce extra path segments.
func projectPath(id string) string {
	return "/api/projects/" + url.PathEscape(id)
}

// List returns all projects.
func (c *Client) List(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single project by id.
func (c *Client) Get(ctx context.Context, id string) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodGet, projectPath(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a new project.
func (c *Client) Create(ctx context.Context, form ProjectForm) (*Project, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, err
	}

	var out Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", contentType, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces an existing project.
func (c *Client) Update(ctx context.Context, id string, form ProjectForm) (*Project, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, err
	}

	var out Project
	if err := c.do(ctx, http.MethodPut, projectPath(id), contentType, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a project by id.
func (c *Client) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	var out DeleteResult
	if err := c.do(ctx, http.MethodDelete, projectPath(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
