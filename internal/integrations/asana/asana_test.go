package asana

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"toolbridge/internal/tool"
)

const tasksFixture = `{
  "data": [
    {
      "gid": "1201",
      "name": "Review budget",
      "notes": "Q3 numbers need a second pass",
      "completed": false,
      "due_on": "2024-03-15",
      "assignee": {"gid": "42", "name": "Dana"},
      "projects": [{"gid": "900", "name": "Finance"}],
      "tags": [{"gid": "800", "name": "urgent"}]
    },
    {
      "gid": "1202",
      "name": "File expenses",
      "completed": true,
      "completed_at": "2024-03-01T12:00:00.000Z"
    }
  ]
}`

type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	return t.next.RoundTrip(req)
}

func newFixtureService(t *testing.T, handler http.HandlerFunc) (*Service, *countingTransport) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ct := &countingTransport{next: http.DefaultTransport}
	svc := NewService("test-token", "555", &http.Client{Transport: ct})
	svc.SetBaseURL(srv.URL)
	return svc, ct
}

func dispatch(t *testing.T, svc *Service, name string, args tool.Args) *tool.Result {
	t.Helper()
	r := tool.NewRegistry()
	r.MustRegister(svc.Tools()...)
	return r.Dispatch(context.Background(), name, args)
}

func TestListTasksUnwrapsEnvelope(t *testing.T) {
	var gotPath, gotAuth string
	svc, _ := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(tasksFixture))
	})

	res := dispatch(t, svc, "asana_list_tasks", tool.Args{})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if !strings.Contains(gotPath, "/workspaces/555/tasks/search") {
		t.Errorf("path = %q, want default workspace route", gotPath)
	}
	if !strings.Contains(res.Payload, "Found 2 task(s)") {
		t.Errorf("payload missing count:\n%s", res.Payload)
	}
	if !strings.Contains(res.Payload, "## ⭕ Review budget") {
		t.Errorf("payload missing incomplete task heading:\n%s", res.Payload)
	}
	if !strings.Contains(res.Payload, "## ✅ File expenses") {
		t.Errorf("payload missing completed task heading:\n%s", res.Payload)
	}
	if !strings.Contains(res.Payload, "**ID**: `1201`") {
		t.Errorf("payload missing task gid:\n%s", res.Payload)
	}
	if !strings.Contains(res.Payload, "**Assigned to**: Dana") {
		t.Errorf("payload missing assignee:\n%s", res.Payload)
	}
	if !strings.Contains(res.Payload, "**Assigned to**: Unassigned") {
		t.Errorf("payload missing unassigned marker:\n%s", res.Payload)
	}
}

func TestListTasksExplicitProjectSkipsWorkspace(t *testing.T) {
	var gotPath string
	svc, _ := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"data": []}`))
	})

	res := dispatch(t, svc, "asana_list_tasks", tool.Args{"project_gid": "900"})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if !strings.Contains(gotPath, "/projects/900/tasks") {
		t.Errorf("path = %q, want project route", gotPath)
	}
	if res.Payload != "No tasks found." {
		t.Errorf("payload = %q", res.Payload)
	}
}

func TestWorkspaceFallbackMissingIsConfigurationError(t *testing.T) {
	ct := &countingTransport{next: http.DefaultTransport}
	svc := NewService("test-token", "", &http.Client{Transport: ct})

	res := dispatch(t, svc, "asana_search_tasks", tool.Args{"text": "budget"})
	if res.Status != tool.StatusError {
		t.Fatal("expected configuration error")
	}
	if !strings.Contains(res.Payload, "Error (configuration)") {
		t.Errorf("payload = %q, want configuration classification", res.Payload)
	}
	if !strings.Contains(res.Payload, "ASANA_DEFAULT_WORKSPACE_GID") {
		t.Errorf("payload = %q, want env var name", res.Payload)
	}
	if ct.calls != 0 {
		t.Errorf("calls = %d, want 0", ct.calls)
	}
}

func TestMissingTokenIsConfigurationError(t *testing.T) {
	ct := &countingTransport{next: http.DefaultTransport}
	svc := NewService("", "555", &http.Client{Transport: ct})

	res := dispatch(t, svc, "asana_list_tasks", tool.Args{})
	if res.Status != tool.StatusError {
		t.Fatal("expected configuration error")
	}
	if !strings.Contains(res.Payload, "ASANA_ACCESS_TOKEN") {
		t.Errorf("payload = %q, want env var name", res.Payload)
	}
	if ct.calls != 0 {
		t.Errorf("calls = %d, want 0", ct.calls)
	}
}

func TestCreateTaskPostsEnvelope(t *testing.T) {
	var gotBody map[string]any
	svc, _ := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"data": {"gid": "1300", "name": "New task", "due_on": "2024-04-01"}}`))
	})

	res := dispatch(t, svc, "asana_create_task", tool.Args{
		"name":   "New task",
		"due_on": "2024-04-01",
	})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}

	data, ok := gotBody["data"].(map[string]any)
	if !ok {
		t.Fatalf("request body = %v, want data envelope", gotBody)
	}
	if data["name"] != "New task" {
		t.Errorf("name = %v", data["name"])
	}
	if data["workspace"] != "555" {
		t.Errorf("workspace = %v, want default fallback", data["workspace"])
	}
	if !strings.Contains(res.Payload, "Task Created Successfully") {
		t.Errorf("payload = %q", res.Payload)
	}
	if !strings.Contains(res.Payload, "`1300`") {
		t.Errorf("payload missing created gid:\n%s", res.Payload)
	}
}

func TestCreateTaskRejectsBadDueDate(t *testing.T) {
	svc, ct := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	res := dispatch(t, svc, "asana_create_task", tool.Args{
		"name":   "New task",
		"due_on": "04/01/2024",
	})
	if res.Status != tool.StatusError {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(res.Payload, "YYYY-MM-DD") {
		t.Errorf("payload = %q", res.Payload)
	}
	if ct.calls != 0 {
		t.Errorf("calls = %d, want 0", ct.calls)
	}
}

func TestUpdateTaskRequiresAtLeastOneField(t *testing.T) {
	svc, ct := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	res := dispatch(t, svc, "asana_update_task", tool.Args{"task_gid": "1201"})
	if res.Status != tool.StatusError {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(res.Payload, "no fields to update") {
		t.Errorf("payload = %q", res.Payload)
	}
	if ct.calls != 0 {
		t.Errorf("calls = %d, want 0", ct.calls)
	}
}

func TestCompleteTaskUsesPut(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	svc, _ := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"data": {"gid": "1201", "name": "Review budget", "completed": true}}`))
	})

	res := dispatch(t, svc, "asana_complete_task", tool.Args{"task_gid": "1201"})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
	data := gotBody["data"].(map[string]any)
	if data["completed"] != true {
		t.Errorf("completed = %v", data["completed"])
	}
	if !strings.Contains(res.Payload, "marked as completed") {
		t.Errorf("payload = %q", res.Payload)
	}
}

func TestGetTaskCommentsFiltersSystemStories(t *testing.T) {
	svc, _ := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"data": [
				{"gid": "1", "type": "system", "text": "Dana added to Finance", "created_at": "2024-03-01T10:00:00.000Z"},
				{"gid": "2", "type": "comment", "text": "Looks good to me", "created_at": "2024-03-02T09:30:00.000Z", "created_by": {"gid": "42", "name": "Dana"}}
			]
		}`))
	})

	res := dispatch(t, svc, "asana_get_task_comments", tool.Args{"task_gid": "1201"})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if !strings.Contains(res.Payload, "Found 1 comment(s)") {
		t.Errorf("payload should count only comments:\n%s", res.Payload)
	}
	if strings.Contains(res.Payload, "added to Finance") {
		t.Errorf("payload should exclude system stories:\n%s", res.Payload)
	}
	if !strings.Contains(res.Payload, "💬 Dana - 2024-03-02 09:30") {
		t.Errorf("payload missing comment heading:\n%s", res.Payload)
	}
}

func TestAddCommentAcceptsSingleStoryResponse(t *testing.T) {
	var gotPath string
	var gotBody []byte
	svc, _ := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data": {"gid": "9001", "type": "comment", "text": "Looks good to me", "created_at": "2024-03-02T09:30:00.000Z"}}`))
	})

	res := dispatch(t, svc, "asana_add_comment", tool.Args{"task_gid": "1201", "text": "Looks good to me"})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if !strings.Contains(res.Payload, "Comment added to task successfully") {
		t.Errorf("payload = %q", res.Payload)
	}
	if gotPath != "/tasks/1201/stories" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(string(gotBody), `"text":"Looks good to me"`) {
		t.Errorf("request body = %s", gotBody)
	}
}

func TestSearchTasksBuildsFilters(t *testing.T) {
	var gotQuery map[string][]string
	svc, _ := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"data": []}`))
	})

	res := dispatch(t, svc, "asana_search_tasks", tool.Args{
		"text":      "budget",
		"projects":  []any{"900", "901"},
		"completed": false,
	})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if got := gotQuery["text"]; len(got) != 1 || got[0] != "budget" {
		t.Errorf("text = %v", got)
	}
	if got := gotQuery["projects.any"]; len(got) != 1 || got[0] != "900,901" {
		t.Errorf("projects.any = %v", got)
	}
	if got := gotQuery["completed"]; len(got) != 1 || got[0] != "false" {
		t.Errorf("completed = %v", got)
	}
	if res.Payload != "No tasks found matching search criteria." {
		t.Errorf("payload = %q", res.Payload)
	}
}

func TestListProjectsJSONMode(t *testing.T) {
	svc, _ := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"gid": "900", "name": "Finance", "archived": false}]}`))
	})

	res := dispatch(t, svc, "asana_list_projects", tool.Args{"response_format": "json"})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	var payload struct {
		Count    int `json:"count"`
		Projects []struct {
			GID string `json:"gid"`
		} `json:"projects"`
	}
	if err := json.Unmarshal([]byte(res.Payload), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Count != 1 || payload.Projects[0].GID != "900" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestGetUserTaskList(t *testing.T) {
	var gotPath string
	svc, _ := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"data": {"gid": "7700", "name": "My Tasks", "owner": {"gid": "42", "name": "Dana"}}}`))
	})

	res := dispatch(t, svc, "asana_get_user_task_list", tool.Args{})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if !strings.Contains(gotPath, "/users/me/user_task_list") {
		t.Errorf("path = %q, want default 'me'", gotPath)
	}
	if !strings.Contains(res.Payload, "`7700`") {
		t.Errorf("payload missing task list gid:\n%s", res.Payload)
	}
}
