package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/gantry/internal/app"
	"github.com/rpggio/gantry/internal/domain/project"
	"github.com/rpggio/gantry/internal/domain/task"
	"github.com/rpggio/gantry/internal/repository"
	"github.com/rpggio/gantry/internal/store"
	"github.com/rpggio/gantry/internal/transport"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()

	db, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background(), nil))

	a := app.New(db, app.Options{})
	srv := transport.NewServer(transport.Config{
		Services:    a.HTTPServices(),
		Resolver:    a.Keys,
		AuthEnabled: true,
	})
	return &apiClient{t: t, handler: srv.Handler()}
}

func (c *apiClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type registered struct {
	Person struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"person"`
	APIKey string `json:"api_key"`
}

func (c *apiClient) register(email, name string) registered {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/register", "", map[string]string{"email": email, "full_name": name})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[registered](c.t, rec)
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndAuth(t *testing.T) {
	api := newAPI(t)

	alice := api.register("Alice@Example.com", "Alice")
	require.NotEmpty(t, alice.APIKey)
	require.Equal(t, "alice@example.com", alice.Person.Email)

	rec := api.do(http.MethodPost, "/api/v1/register", "", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/register", "", map[string]string{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/me", "gnt_wrong", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/me", alice.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, alice.Person.ID, decode[map[string]any](t, rec)["id"])
}

func TestProjectTaskFlow(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice@example.com", "Alice")
	bob := api.register("bob@example.com", "Bob")

	rec := api.do(http.MethodPost, "/api/v1/projects", alice.APIKey, map[string]string{
		"name": "Launch", "start_date": "2025-01-05", "end_date": "2025-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	proj := decode[project.Project](t, rec)
	require.Equal(t, alice.Person.ID, proj.OwnerID)

	rec = api.do(http.MethodPost, "/api/v1/projects", alice.APIKey, map[string]string{
		"name": "Backwards", "start_date": "2025-03-01", "end_date": "2025-01-05",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Bob can't see the project until he is a member.
	rec = api.do(http.MethodGet, "/api/v1/projects/"+proj.ID, bob.APIKey, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/projects/"+proj.ID+"/members", alice.APIKey, map[string]string{"email": "bob@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/v1/projects/"+proj.ID+"/members", alice.APIKey, map[string]string{"email": "carol@example.com"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/projects/"+proj.ID+"/members", bob.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	members := decode[[]project.Member](t, rec)
	require.Len(t, members, 2)
	require.True(t, members[0].IsOwner)

	taskBody := map[string]any{
		"name": "Design", "assignee_id": bob.Person.ID,
		"start_date": "2025-01-05", "end_date": "2025-01-18",
	}
	rec = api.do(http.MethodPost, "/api/v1/projects/"+proj.ID+"/tasks", bob.APIKey, taskBody)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "not permitted", decode[map[string]string](t, rec)["error"])

	rec = api.do(http.MethodPost, "/api/v1/projects/"+proj.ID+"/tasks", alice.APIKey, taskBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	design := decode[task.Task](t, rec)

	rec = api.do(http.MethodPost, "/api/v1/projects/"+proj.ID+"/tasks", alice.APIKey, map[string]any{
		"name": "Late", "start_date": "2025-02-20", "end_date": "2025-03-10",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	progress := 50
	rec = api.do(http.MethodPost, "/api/v1/tasks/"+design.ID+"/progress", bob.APIKey, map[string]any{"progress": progress})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[task.Task](t, rec)
	require.Equal(t, 50, updated.Progress)
	require.Equal(t, task.StatusInProgress, updated.Status)

	rec = api.do(http.MethodGet, "/api/v1/me/tasks", bob.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]task.Task](t, rec), 1)

	rec = api.do(http.MethodGet, "/api/v1/projects", alice.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decode[[]project.Summary](t, rec)
	require.Len(t, summaries, 1)
	require.Equal(t, 2, summaries[0].MemberCount)
	require.Equal(t, 1, summaries[0].TaskCount)

	// Shrinking the project past the task is rejected unless tasks are clamped.
	rec = api.do(http.MethodPatch, "/api/v1/projects/"+proj.ID, alice.APIKey, map[string]any{"start_date": "2025-01-12"})
	require.Equal(t, http.StatusConflict, rec.Code)
	rec = api.do(http.MethodPatch, "/api/v1/projects/"+proj.ID, alice.APIKey, map[string]any{"start_date": "2025-01-12", "clamp_tasks": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/tasks/"+design.ID, alice.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2025-01-12", decode[task.Task](t, rec).StartDate.String())

	rec = api.do(http.MethodDelete, "/api/v1/projects/"+proj.ID+"/members/"+bob.Person.ID, alice.APIKey, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/tasks/"+design.ID, alice.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, decode[task.Task](t, rec).AssigneeID)

	rec = api.do(http.MethodDelete, "/api/v1/projects/"+proj.ID, bob.APIKey, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodDelete, "/api/v1/projects/"+proj.ID, alice.APIKey, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

type teamChart struct {
	Weeks []struct {
		Label string `json:"label"`
	} `json:"weeks"`
	People []struct {
		Person struct {
			ID string `json:"id"`
		} `json:"person"`
		Capacity []struct {
			Used float64 `json:"used"`
			Tier string  `json:"tier"`
		} `json:"capacity"`
	} `json:"people"`
}

func TestProjectInviteJoinsOnlyThatProject(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice@example.com", "Alice")

	var ids []string
	for _, name := range []string{"Public", "Secret"} {
		rec := api.do(http.MethodPost, "/api/v1/projects", alice.APIKey, map[string]string{
			"name": name, "start_date": "2025-01-05", "end_date": "2025-03-01",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		ids = append(ids, decode[project.Project](t, rec).ID)
	}

	rec := api.do(http.MethodPost, "/api/v1/projects/"+ids[0]+"/members", alice.APIKey, map[string]string{"email": "carol@example.com"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	carol := api.register("carol@example.com", "Carol")
	rec = api.do(http.MethodGet, "/api/v1/projects", carol.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decode[[]project.Summary](t, rec)
	require.Len(t, summaries, 1)
	require.Equal(t, "Public", summaries[0].Name)

	rec = api.do(http.MethodGet, "/api/v1/projects/"+ids[1], carol.APIKey, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchPeopleIsLimitedToTeammates(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice@example.com", "Alice")
	bob := api.register("bob@example.com", "Bob")
	api.register("mallory@example.com", "Mallory")

	rec := api.do(http.MethodPost, "/api/v1/projects", alice.APIKey, map[string]string{
		"name": "Launch", "start_date": "2025-01-05", "end_date": "2025-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	proj := decode[project.Project](t, rec)
	rec = api.do(http.MethodPost, "/api/v1/projects/"+proj.ID+"/members", alice.APIKey, map[string]string{"email": bob.Person.Email})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	type found []struct {
		Email string `json:"email"`
	}
	emails := func(rec *httptest.ResponseRecorder) []string {
		var out []string
		for _, p := range decode[found](t, rec) {
			out = append(out, p.Email)
		}
		return out
	}

	rec = api.do(http.MethodGet, "/api/v1/people", bob.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"alice@example.com", "bob@example.com"}, emails(rec))

	rec = api.do(http.MethodGet, "/api/v1/people?limit=1", bob.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, emails(rec), 1)

	rec = api.do(http.MethodGet, "/api/v1/people?q=mallory", alice.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, emails(rec))
}

func TestCharts(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice@example.com", "Alice")

	rec := api.do(http.MethodPost, "/api/v1/projects", alice.APIKey, map[string]string{
		"name": "Launch", "start_date": "2025-01-05", "end_date": "2025-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	proj := decode[project.Project](t, rec)

	for i := range 3 {
		rec = api.do(http.MethodPost, "/api/v1/projects/"+proj.ID+"/tasks", alice.APIKey, map[string]any{
			"name": fmt.Sprintf("Task %d", i), "assignee_id": alice.Person.ID,
			"start_date": "2025-01-05", "end_date": "2025-01-11",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = api.do(http.MethodGet, "/api/v1/charts/team?date=2025-01-08&weeks=4", alice.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	chart := decode[teamChart](t, rec)
	require.Len(t, chart.Weeks, 4)
	require.Equal(t, "Jan-05", chart.Weeks[0].Label)
	require.Len(t, chart.People, 1)
	require.InDelta(t, 150, chart.People[0].Capacity[0].Used, 0.001)
	require.Equal(t, "over", chart.People[0].Capacity[0].Tier)
	require.Zero(t, chart.People[0].Capacity[1].Used)

	rec = api.do(http.MethodGet, "/api/v1/charts/projects/"+proj.ID+"?date=2025-01-05&weeks=2", alice.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/charts/projects?weeks=8", alice.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/charts/team?date=01/08/2025", alice.APIKey, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/charts/team?weeks=-2", alice.APIKey, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/charts/projects?weeks=3000000000000", alice.APIKey, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/charts/team?weeks=105", alice.APIKey, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/charts/team?weeks=104", alice.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/charts/projects/missing", alice.APIKey, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActivity(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice@example.com", "Alice")

	rec := api.do(http.MethodPost, "/api/v1/projects", alice.APIKey, map[string]string{
		"name": "Launch", "start_date": "2025-01-05", "end_date": "2025-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/activity?type=project_created", alice.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]map[string]any](t, rec)
	require.Len(t, entries, 1)
	require.Equal(t, "project_created", entries[0]["type"])

	rec = api.do(http.MethodGet, "/api/v1/activity?limit=abc", alice.APIKey, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthDisabledActsAsDefault(t *testing.T) {
	db, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background(), nil))

	a := app.New(db, app.Options{})
	srv := transport.NewServer(transport.Config{
		Services:     a.HTTPServices(),
		AuthEnabled:  false,
		DefaultActor: "nobody",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{project.ErrInvalidInput, http.StatusBadRequest},
		{task.ErrOutOfProjectRange, http.StatusBadRequest},
		{project.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("wrapped: %w", task.ErrTaskNotFound), http.StatusNotFound},
		{repository.ErrNotFound, http.StatusNotFound},
		{project.ErrTasksOutOfRange, http.StatusConflict},
		{project.ErrAlreadyMember, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, transport.StatusFor(tc.err), "%v", tc.err)
	}
}
