package folio_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foliolab/folio/internal/folio"
	"github.com/foliolab/folio/internal/tokenstore"
)

// staticTokens is a TokenReader with a fixed value; empty means absent.
type staticTokens struct {
	token string
}

func (s staticTokens) Token(ctx context.Context) (string, error) {
	if s.token == "" {
		return "", tokenstore.ErrNoToken
	}
	return s.token, nil
}

func newTestClient(t *testing.T, srv *httptest.Server, token string) *folio.Client {
	t.Helper()
	client, err := folio.NewClient(staticTokens{token: token},
		folio.WithBaseURL(srv.URL),
		folio.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestListProjects(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1"}]`))
	}))
	defer srv.Close()

	projects, err := newTestClient(t, srv, "tok").List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "1" {
		t.Errorf("List = %+v, want one project with id 1", projects)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok")
	}
}

func TestListProjectsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, "tok").List(context.Background())
	if err == nil {
		t.Fatal("List against HTTP 500 succeeded")
	}

	var reqErr *folio.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", reqErr.Status)
	}
	for _, want := range []string{"500", "boom"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not contain %q", err.Error(), want)
		}
	}
}

func TestEmptyAuthorizationHeaderWithoutToken(t *testing.T) {
	var gotHeader []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header["Authorization"]
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv, "").List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}

	// The header must be present with an empty value, not omitted.
	if len(gotHeader) != 1 || gotHeader[0] != "" {
		t.Errorf("Authorization header = %q, want single empty value", gotHeader)
	}
}

func TestGetProject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","title":"Folio"}`))
	}))
	defer srv.Close()

	project, err := newTestClient(t, srv, "tok").Get(context.Background(), "42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if project.ID != "42" || project.Title != "Folio" {
		t.Errorf("Get = %+v", project)
	}
}

func TestDeleteEscapesProjectID(t *testing.T) {
	var gotURI, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv, "tok").Delete(context.Background(), "a/b")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if result.Message != "deleted" {
		t.Errorf("Message = %q, want %q", result.Message, "deleted")
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", gotMethod)
	}
	if want := "/api/projects/a%2Fb"; gotURI != want {
		t.Errorf("request URI = %q, want %q", gotURI, want)
	}
}

func TestCreateProjectMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart body: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if got := r.FormValue("title"); got != "Folio" {
			t.Errorf("title = %q, want %q", got, "Folio")
		}
		if got := r.FormValue("imageUrl"); got != "https://cdn.example.com/k.png" {
			t.Errorf("imageUrl = %q", got)
		}
		if got := r.MultipartForm.Value["tags"]; len(got) != 2 || got[0] != "go" || got[1] != "cli" {
			t.Errorf("tags = %q, want [go cli]", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"7","title":"Folio"}`))
	}))
	defer srv.Close()

	project, err := newTestClient(t, srv, "tok").Create(context.Background(), folio.ProjectForm{
		Title:    "Folio",
		ImageURL: "https://cdn.example.com/k.png",
		Tags:     []string{"go", "cli"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if project.ID != "7" {
		t.Errorf("created project = %+v", project)
	}
}

func TestUpdateProject(t *testing.T) {
	var gotURI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"7","title":"Renamed"}`))
	}))
	defer srv.Close()

	project, err := newTestClient(t, srv, "tok").Update(context.Background(), "7", folio.ProjectForm{Title: "Renamed"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if project.Title != "Renamed" {
		t.Errorf("updated project = %+v", project)
	}
	if want := "/api/projects/7"; gotURI != want {
		t.Errorf("request URI = %q, want %q", gotURI, want)
	}
}
