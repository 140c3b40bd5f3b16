package asana

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
	"toolbridge/internal/toolerr"
	"toolbridge/internal/upstream"
)

const (
	taskListFields   = "name,notes,completed,completed_at,due_on,assignee.name,projects.name,tags.name"
	taskSearchFields = "name,notes,completed,due_on,assignee.name,projects.name"
	taskDetailFields = "name,notes,completed,completed_at,created_at,modified_at,due_on,assignee.name,projects.name,tags.name,parent.name,followers.name"
)

func (s *Service) listTasks(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	respFormat := args.String("response_format")

	q := url.Values{}
	q.Set("opt_fields", taskListFields)
	q.Set("limit", strconv.Itoa(args.Int("limit")))
	if assignee := args.String("assignee"); assignee != "" {
		q.Set("assignee", assignee)
	}
	if since := args.String("completed_since"); since != "" {
		q.Set("completed_since", since)
	}

	var path string
	if projectGID := args.String("project_gid"); projectGID != "" {
		path = "projects/" + url.PathEscape(projectGID) + "/tasks"
	} else {
		workspace, err := s.workspaceGID(args)
		if err != nil {
			return "", err
		}
		path = "workspaces/" + url.PathEscape(workspace) + "/tasks/search"
	}

	var resp tasksEnvelope
	if err := s.client.GetJSON(ctx, path, q, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "No tasks found.", nil
	}

	result := formatTasksResponse(resp.Data, respFormat, "My Tasks")
	return format.Truncate(result, "Try a smaller limit or filter by project."), nil
}

func (s *Service) createTask(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	data := map[string]any{
		"name": args.String("name"),
	}
	if notes := args.String("notes"); notes != "" {
		data["notes"] = notes
	}
	if projectGID := args.String("project_gid"); projectGID != "" {
		data["projects"] = []string{projectGID}
	}
	if assignee := args.String("assignee"); assignee != "" {
		data["assignee"] = assignee
	}
	if dueOn := args.String("due_on"); dueOn != "" {
		if err := validateDueOn(dueOn); err != nil {
			return "", err
		}
		data["due_on"] = dueOn
	}
	if parent := args.String("parent"); parent != "" {
		data["parent"] = parent
	}

	// A task needs a home: a workspace, a project, or a parent task. The
	// workspace falls back to the configured default when the other two
	// anchors are absent.
	if _, hasProjects := data["projects"]; !hasProjects {
		if _, hasParent := data["parent"]; !hasParent {
			workspace, err := s.workspaceGID(args)
			if err != nil {
				return "", err
			}
			data["workspace"] = workspace
		}
	} else if workspace := args.String("workspace_gid"); workspace != "" {
		data["workspace"] = workspace
	}

	var resp taskEnvelope
	if err := s.client.PostJSON(ctx, "tasks", map[string]any{"data": data}, &resp); err != nil {
		return "", err
	}

	var b format.Builder
	b.H1("Task Created Successfully")
	b.Blank()
	b.Bold("Task ID", "`"+resp.Data.GID+"`")
	b.Bold("Name", resp.Data.Name)
	if resp.Data.DueOn != "" {
		b.Bold("Due", resp.Data.DueOn)
	}
	if resp.Data.Assignee != nil {
		b.Bold("Assigned to", resp.Data.Assignee.Name)
	}
	return b.String(), nil
}

func (s *Service) putTask(ctx context.Context, taskGID string, data map[string]any, out *taskEnvelope) error {
	return s.client.Do(ctx, upstream.Request{
		Method: http.MethodPut,
		Path:   "tasks/" + url.PathEscape(taskGID),
		Body:   map[string]any{"data": data},
	}, out)
}

func (s *Service) updateTask(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	taskGID := args.String("task_gid")

	data := map[string]any{}
	if args.Has("name") {
		data["name"] = args.String("name")
	}
	if args.Has("notes") {
		data["notes"] = args.String("notes")
	}
	if args.Has("assignee") {
		data["assignee"] = args.String("assignee")
	}
	if args.Has("due_on") {
		dueOn := args.String("due_on")
		if err := validateDueOn(dueOn); err != nil {
			return "", err
		}
		data["due_on"] = dueOn
	}
	if args.Has("completed") {
		data["completed"] = args.Bool("completed")
	}
	if len(data) == 0 {
		return "", toolerr.Validationf("no fields to update; specify at least one field to change")
	}

	var resp taskEnvelope
	if err := s.putTask(ctx, taskGID, data, &resp); err != nil {
		return "", err
	}

	var b format.Builder
	b.H1("Task Updated Successfully")
	b.Blank()
	b.Bold("Task ID", "`"+resp.Data.GID+"`")
	b.Bold("Name", resp.Data.Name)
	if resp.Data.Completed {
		b.Bold("Status", "✅ Completed")
	} else {
		b.Bold("Status", "⭕ Incomplete")
	}
	return b.String(), nil
}

func (s *Service) completeTask(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	var resp taskEnvelope
	if err := s.putTask(ctx, args.String("task_gid"), map[string]any{"completed": true}, &resp); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Task '%s' marked as completed!", resp.Data.Name), nil
}

func (s *Service) searchTasks(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	workspace, err := s.workspaceGID(args)
	if err != nil {
		return "", err
	}
	respFormat := args.String("response_format")

	q := url.Values{}
	q.Set("opt_fields", taskSearchFields)
	q.Set("limit", strconv.Itoa(args.Int("limit")))
	if text := args.String("text"); text != "" {
		q.Set("text", text)
	}
	if assignee := args.String("assignee"); assignee != "" {
		q.Set("assignee.any", assignee)
	}
	if projects := args.Strings("projects"); len(projects) > 0 {
		q.Set("projects.any", strings.Join(projects, ","))
	}
	if args.Has("completed") {
		q.Set("completed", strconv.FormatBool(args.Bool("completed")))
	}

	var resp tasksEnvelope
	if err := s.client.GetJSON(ctx, "workspaces/"+url.PathEscape(workspace)+"/tasks/search", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "No tasks found matching search criteria.", nil
	}

	result := formatTasksResponse(resp.Data, respFormat, "Search Results")
	return format.Truncate(result, "Try a smaller limit or a narrower search."), nil
}

func (s *Service) getProjectTasks(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	projectGID := args.String("project_gid")
	respFormat := args.String("response_format")

	q := url.Values{}
	q.Set("opt_fields", "name,completed,due_on,assignee.name")
	q.Set("limit", strconv.Itoa(args.Int("limit")))

	var resp tasksEnvelope
	if err := s.client.GetJSON(ctx, "projects/"+url.PathEscape(projectGID)+"/tasks", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "No tasks found in this project.", nil
	}

	result := formatTasksResponse(resp.Data, respFormat, "Project Tasks")
	return format.Truncate(result, "Try a smaller limit."), nil
}

func (s *Service) addSubtask(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	data := map[string]any{
		"name":   args.String("name"),
		"parent": args.String("parent_task_gid"),
	}
	if notes := args.String("notes"); notes != "" {
		data["notes"] = notes
	}
	if assignee := args.String("assignee"); assignee != "" {
		data["assignee"] = assignee
	}

	var resp taskEnvelope
	if err := s.client.PostJSON(ctx, "tasks", map[string]any{"data": data}, &resp); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Subtask '%s' created (ID: %s)", resp.Data.Name, resp.Data.GID), nil
}

func (s *Service) getTaskDetails(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	taskGID := args.String("task_gid")

	q := url.Values{}
	q.Set("opt_fields", taskDetailFields)

	var resp taskEnvelope
	if err := s.client.GetJSON(ctx, "tasks/"+url.PathEscape(taskGID), q, &resp); err != nil {
		return "", err
	}
	t := resp.Data

	var b format.Builder
	b.H1("Task Details")
	b.Blank()
	b.H2(t.Name)
	b.Bold("ID", "`"+t.GID+"`")
	b.Blank()
	if t.Assignee != nil {
		b.Bold("Assigned to", t.Assignee.Name)
	}
	if t.DueOn != "" {
		b.Bold("Due", t.DueOn)
	}
	if t.Completed {
		b.Bold("Status", "✅ Completed")
	} else {
		b.Bold("Status", "⭕ Incomplete")
	}
	if t.CompletedAt != "" {
		b.Bold("Completed", t.CompletedAt)
	}
	b.Bold("Created", t.CreatedAt)
	b.Bold("Modified", t.ModifiedAt)
	if t.Parent != nil {
		b.Bold("Parent Task", t.Parent.Name)
	}
	if len(t.Projects) > 0 {
		b.Bold("Projects", joinNames(t.Projects, len(t.Projects)))
	}
	if len(t.Tags) > 0 {
		b.Bold("Tags", joinNames(t.Tags, len(t.Tags)))
	}
	if len(t.Followers) > 0 {
		b.Bold("Followers", joinNames(t.Followers, 5))
	}
	if t.Notes != "" {
		b.Blank()
		b.Line("**Notes**:")
		b.Line(t.Notes)
	}
	return format.Truncate(b.String(), "The task notes were too long to display in full."), nil
}

func (s *Service) setDueDate(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	dueOn := args.String("due_on")
	if err := validateDueOn(dueOn); err != nil {
		return "", err
	}

	var resp taskEnvelope
	if err := s.putTask(ctx, args.String("task_gid"), map[string]any{"due_on": dueOn}, &resp); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Due date set to %s for task '%s'", dueOn, resp.Data.Name), nil
}

func (s *Service) assignTask(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	var resp taskEnvelope
	if err := s.putTask(ctx, args.String("task_gid"), map[string]any{"assignee": args.String("assignee")}, &resp); err != nil {
		return "", err
	}

	assigneeName := "user"
	if resp.Data.Assignee != nil && resp.Data.Assignee.Name != "" {
		assigneeName = resp.Data.Assignee.Name
	}
	return fmt.Sprintf("✅ Task '%s' assigned to %s", resp.Data.Name, assigneeName), nil
}
