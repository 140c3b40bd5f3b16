package asana

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
)

func (s *Service) listProjects(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	workspace, err := s.workspaceGID(args)
	if err != nil {
		return "", err
	}
	respFormat := args.String("response_format")

	q := url.Values{}
	q.Set("workspace", workspace)
	q.Set("archived", strconv.FormatBool(args.Bool("archived")))
	q.Set("opt_fields", "name,archived,created_at,modified_at,owner.name")
	q.Set("limit", strconv.Itoa(args.Int("limit")))

	var resp projectsEnvelope
	if err := s.client.GetJSON(ctx, "projects", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "No projects found.", nil
	}

	if respFormat == format.JSONMode {
		return format.JSON(map[string]any{
			"count":    len(resp.Data),
			"projects": resp.Data,
		}), nil
	}

	var b format.Builder
	b.H1("Asana Projects")
	b.Blank()
	b.Linef("Found %d project(s)", len(resp.Data))
	b.Blank()
	for _, p := range resp.Data {
		b.H2(p.Name)
		b.Bold("ID", "`"+p.GID+"`")
		if p.Owner != nil {
			b.Bold("Owner", p.Owner.Name)
		}
		if p.Archived {
			b.Bold("Status", "🗄️ Archived")
		}
		b.Blank()
	}
	return format.Truncate(b.String(), "Try a smaller limit."), nil
}

func (s *Service) addComment(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	taskGID := args.String("task_gid")
	body := map[string]any{
		"data": map[string]any{"text": args.String("text")},
	}

	if err := s.client.PostJSON(ctx, "tasks/"+url.PathEscape(taskGID)+"/stories", body, nil); err != nil {
		return "", err
	}
	return "✅ Comment added to task successfully!", nil
}

func (s *Service) getTaskComments(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	taskGID := args.String("task_gid")

	q := url.Values{}
	q.Set("opt_fields", "text,created_at,created_by.name,type")

	var resp storiesEnvelope
	if err := s.client.GetJSON(ctx, "tasks/"+url.PathEscape(taskGID)+"/stories", q, &resp); err != nil {
		return "", err
	}

	// Stories include system events; only human comments are shown.
	var comments []story
	for _, st := range resp.Data {
		if st.Type == "comment" {
			comments = append(comments, st)
		}
	}
	if len(comments) == 0 {
		return "No comments found on this task.", nil
	}

	var b format.Builder
	b.H1("Task Comments")
	b.Blank()
	b.Linef("Found %d comment(s)", len(comments))
	b.Blank()
	for _, c := range comments {
		author := "Unknown"
		if c.CreatedBy != nil && c.CreatedBy.Name != "" {
			author = c.CreatedBy.Name
		}
		createdAt := c.CreatedAt
		if t, err := time.Parse(time.RFC3339, c.CreatedAt); err == nil {
			createdAt = t.Format("2006-01-02 15:04")
		}
		text := c.Text
		if text == "" {
			text = "(No text)"
		}
		b.Linef("## 💬 %s - %s", author, createdAt)
		b.Line(text)
		b.Blank()
	}
	return format.Truncate(b.String(), "Older comments were omitted."), nil
}

func (s *Service) listSections(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	projectGID := args.String("project_gid")
	respFormat := args.String("response_format")

	q := url.Values{}
	q.Set("limit", strconv.Itoa(args.Int("limit")))

	// User task lists answer this endpoint the same way projects do, so a
	// user_task_list_gid works here as well.
	var resp refsEnvelope
	if err := s.client.GetJSON(ctx, "projects/"+url.PathEscape(projectGID)+"/sections", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "No sections found.", nil
	}

	if respFormat == format.JSONMode {
		return format.JSON(map[string]any{
			"count":    len(resp.Data),
			"sections": resp.Data,
		}), nil
	}

	var b format.Builder
	b.H1("Sections")
	b.Blank()
	b.Linef("Found %d section(s)", len(resp.Data))
	b.Blank()
	for _, section := range resp.Data {
		b.H2(section.Name)
		b.Bold("ID", "`"+section.GID+"`")
		b.Blank()
	}
	return b.String(), nil
}

func (s *Service) moveTaskToSection(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	sectionGID := args.String("section_gid")
	body := map[string]any{
		"data": map[string]any{"task": args.String("task_gid")},
	}

	if err := s.client.PostJSON(ctx, "sections/"+url.PathEscape(sectionGID)+"/addTask", body, nil); err != nil {
		return "", err
	}
	return "✅ Task moved to section successfully!", nil
}

func (s *Service) listTags(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	workspace, err := s.workspaceGID(args)
	if err != nil {
		return "", err
	}
	respFormat := args.String("response_format")

	q := url.Values{}
	q.Set("workspace", workspace)

	var resp refsEnvelope
	if err := s.client.GetJSON(ctx, "tags", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "No tags found in this workspace.", nil
	}

	if respFormat == format.JSONMode {
		return format.JSON(map[string]any{
			"count": len(resp.Data),
			"tags":  resp.Data,
		}), nil
	}

	var b format.Builder
	b.H1("Workspace Tags")
	b.Blank()
	b.Linef("Found %d tag(s)", len(resp.Data))
	b.Blank()
	for _, tag := range resp.Data {
		b.Linef("- **%s** (`%s`)", tag.Name, tag.GID)
	}
	return b.String(), nil
}

func (s *Service) addTagToTask(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	taskGID := args.String("task_gid")
	body := map[string]any{
		"data": map[string]any{"tag": args.String("tag_gid")},
	}

	if err := s.client.PostJSON(ctx, "tasks/"+url.PathEscape(taskGID)+"/addTag", body, nil); err != nil {
		return "", err
	}
	return "✅ Tag added to task successfully!", nil
}

type userTaskList struct {
	GID   string    `json:"gid"`
	Name  string    `json:"name"`
	Owner *namedRef `json:"owner,omitempty"`
}

func (s *Service) getUserTaskList(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	userGID := args.String("user_gid")

	var resp struct {
		Data userTaskList `json:"data"`
	}
	if err := s.client.GetJSON(ctx, "users/"+url.PathEscape(userGID)+"/user_task_list", nil, &resp); err != nil {
		return "", err
	}

	name := resp.Data.Name
	if name == "" {
		name = "My Tasks"
	}
	owner := "Unknown"
	if resp.Data.Owner != nil && resp.Data.Owner.Name != "" {
		owner = resp.Data.Owner.Name
	}

	var b format.Builder
	b.H1("User Task List")
	b.Blank()
	b.Bold("Task List GID", "`"+resp.Data.GID+"`")
	b.Bold("Name", name)
	b.Bold("Owner", owner)
	b.Blank()
	b.Line("💡 **Tip**: Use this GID with `asana_list_sections` to see your My Tasks sections.")
	return b.String(), nil
}
