// Package asana adapts the Asana REST API. Authentication is a personal
// access token sent as a bearer header; every payload arrives wrapped in a
// {"data": ...} envelope and is unwrapped before formatting.
package asana

import (
	"net/http"
	"time"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
	"toolbridge/internal/toolerr"
	"toolbridge/internal/upstream"
)

// Source names the upstream service in results and error messages.
const Source = "Asana API"

const defaultBaseURL = "https://app.asana.com/api/1.0"

// Service issues Asana API calls for one configured token.
type Service struct {
	token            string
	defaultWorkspace string
	client           *upstream.Client
}

// NewService builds the service. An empty token turns every call into a
// Configuration error; defaultWorkspace backs tools that accept an optional
// workspace_gid.
func NewService(token, defaultWorkspace string, httpClient *http.Client) *Service {
	c := upstream.New(defaultBaseURL, Source, httpClient)
	c.Authorize = upstream.Bearer(token)
	return &Service{
		token:            token,
		defaultWorkspace: defaultWorkspace,
		client:           c,
	}
}

// SetBaseURL points the service at a different endpoint, used by tests.
func (s *Service) SetBaseURL(u string) { s.client.BaseURL = u }

func (s *Service) checkToken() error {
	if s.token == "" {
		return toolerr.Configurationf("Asana access token is not configured; set ASANA_ACCESS_TOKEN")
	}
	return nil
}

// workspaceGID resolves the workspace for a call, falling back to the
// configured default.
func (s *Service) workspaceGID(args tool.Args) (string, error) {
	if gid := args.String("workspace_gid"); gid != "" {
		return gid, nil
	}
	if s.defaultWorkspace != "" {
		return s.defaultWorkspace, nil
	}
	return "", toolerr.Configurationf("workspace_gid is required; provide it explicitly or set ASANA_DEFAULT_WORKSPACE_GID")
}

func validateDueOn(dueOn string) error {
	if _, err := time.Parse("2006-01-02", dueOn); err != nil {
		return toolerr.Validationf("due_on must be a date in YYYY-MM-DD format, e.g. 2024-03-15")
	}
	return nil
}

// namedRef is the compact {gid, name} shape Asana uses for related objects.
type namedRef struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

type task struct {
	GID         string     `json:"gid"`
	Name        string     `json:"name"`
	Notes       string     `json:"notes,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt string     `json:"completed_at,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty"`
	ModifiedAt  string     `json:"modified_at,omitempty"`
	DueOn       string     `json:"due_on,omitempty"`
	Assignee    *namedRef  `json:"assignee,omitempty"`
	Parent      *namedRef  `json:"parent,omitempty"`
	Projects    []namedRef `json:"projects,omitempty"`
	Tags        []namedRef `json:"tags,omitempty"`
	Followers   []namedRef `json:"followers,omitempty"`
}

type project struct {
	GID        string    `json:"gid"`
	Name       string    `json:"name"`
	Archived   bool      `json:"archived"`
	CreatedAt  string    `json:"created_at,omitempty"`
	ModifiedAt string    `json:"modified_at,omitempty"`
	Owner      *namedRef `json:"owner,omitempty"`
}

type story struct {
	GID       string    `json:"gid"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	CreatedAt string    `json:"created_at"`
	CreatedBy *namedRef `json:"created_by,omitempty"`
}

type taskEnvelope struct {
	Data task `json:"data"`
}

type tasksEnvelope struct {
	Data []task `json:"data"`
}

type projectsEnvelope struct {
	Data []project `json:"data"`
}

type refsEnvelope struct {
	Data []namedRef `json:"data"`
}

type storiesEnvelope struct {
	Data []story `json:"data"`
}

func formatTaskMarkdown(b *format.Builder, t *task) {
	name := t.Name
	if name == "" {
		name = "(No name)"
	}
	icon := "⭕"
	if t.Completed {
		icon = "✅"
	}
	b.H2(icon + " " + name)
	b.Bold("ID", "`"+t.GID+"`")

	if t.Assignee != nil {
		b.Bold("Assigned to", t.Assignee.Name)
	} else {
		b.Bold("Assigned to", "Unassigned")
	}
	if t.DueOn != "" {
		b.Bold("Due", t.DueOn)
	}
	if t.Completed {
		completedAt := t.CompletedAt
		if completedAt == "" {
			completedAt = "Unknown"
		}
		b.Bold("Completed", completedAt)
	}
	if t.Notes != "" {
		preview := t.Notes
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		b.Bold("Notes", preview)
	}
	if len(t.Projects) > 0 {
		b.Bold("Projects", joinNames(t.Projects, 3))
	}
	if len(t.Tags) > 0 {
		b.Bold("Tags", joinNames(t.Tags, 5))
	}
	b.Blank()
}

func joinNames(refs []namedRef, max int) string {
	if len(refs) > max {
		refs = refs[:max]
	}
	out := ""
	for i, r := range refs {
		if i > 0 {
			out += ", "
		}
		out += r.Name
	}
	return out
}

func formatTasksResponse(tasks []task, respFormat, title string) string {
	if respFormat == format.JSONMode {
		return format.JSON(map[string]any{
			"count": len(tasks),
			"tasks": tasks,
		})
	}
	var b format.Builder
	b.H1(title)
	b.Blank()
	b.Linef("Found %d task(s)", len(tasks))
	b.Blank()
	for i := range tasks {
		formatTaskMarkdown(&b, &tasks[i])
	}
	return b.String()
}
