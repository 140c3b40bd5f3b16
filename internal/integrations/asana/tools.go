package asana

import (
	"toolbridge/internal/format"
	"toolbridge/internal/tool"
)

func responseFormatField() tool.Field {
	return tool.Field{
		Type:        tool.TypeString,
		Description: "Output format: 'markdown' for human-readable or 'json' for machine-readable",
		Default:     format.Markdown,
		Enum:        []string{format.Markdown, format.JSONMode},
	}
}

func workspaceField() tool.Field {
	return tool.Field{
		Type:        tool.TypeString,
		Description: "Workspace GID; defaults to the ASANA_DEFAULT_WORKSPACE_GID configuration when omitted",
	}
}

func limitField() tool.Field {
	return tool.Field{
		Type:        tool.TypeInteger,
		Description: "Maximum number of results",
		Default:     50,
		Min:         tool.Num(1),
		Max:         tool.Num(100),
	}
}

func taskGidField() tool.Field {
	return tool.Field{Type: tool.TypeString, Description: "Task GID", Required: true, MinLen: 1}
}

// Tools returns the tool definitions for this integration.
func (s *Service) Tools() []*tool.Definition {
	return []*tool.Definition{
		{
			Name:        "asana_list_tasks",
			Description: "List tasks from an Asana workspace or project with assignee and completion filters.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"workspace_gid":   workspaceField(),
				"assignee":        {Type: tool.TypeString, Description: "User GID to filter by assignee; use 'me' for your tasks", Default: "me"},
				"project_gid":     {Type: tool.TypeString, Description: "Project GID to list tasks from instead of the workspace"},
				"completed_since": {Type: tool.TypeString, Description: "ISO 8601 date; include tasks completed since this date"},
				"limit":           limitField(),
				"response_format": responseFormatField(),
			},
			Handler: s.listTasks,
		},
		{
			Name:        "asana_create_task",
			Description: "Create a new Asana task with optional notes, project, assignee, due date and parent.",
			Source:      Source,
			Schema: tool.Schema{
				"name":          {Type: tool.TypeString, Description: "Task name", Required: true, MinLen: 1, MaxLen: 1024},
				"notes":         {Type: tool.TypeString, Description: "Task description", MaxLen: 65536},
				"workspace_gid": workspaceField(),
				"project_gid":   {Type: tool.TypeString, Description: "Project GID to add the task to"},
				"assignee":      {Type: tool.TypeString, Description: "User GID to assign to; use 'me' for yourself"},
				"due_on":        {Type: tool.TypeString, Description: "Due date in YYYY-MM-DD format"},
				"parent":        {Type: tool.TypeString, Description: "Parent task GID to create the task as a subtask"},
			},
			Handler: s.createTask,
		},
		{
			Name:        "asana_update_task",
			Description: "Update an Asana task with patch semantics; only provided fields change.",
			Source:      Source,
			Schema: tool.Schema{
				"task_gid":  taskGidField(),
				"name":      {Type: tool.TypeString, Description: "New task name", MaxLen: 1024},
				"notes":     {Type: tool.TypeString, Description: "New task notes", MaxLen: 65536},
				"assignee":  {Type: tool.TypeString, Description: "New assignee GID; use 'me' for yourself"},
				"due_on":    {Type: tool.TypeString, Description: "New due date in YYYY-MM-DD format"},
				"completed": {Type: tool.TypeBoolean, Description: "Mark as completed (true) or incomplete (false)"},
			},
			Handler: s.updateTask,
		},
		{
			Name:        "asana_complete_task",
			Description: "Mark an Asana task as completed.",
			Source:      Source,
			Schema: tool.Schema{
				"task_gid": taskGidField(),
			},
			Handler: s.completeTask,
		},
		{
			Name:        "asana_search_tasks",
			Description: "Search tasks in an Asana workspace by text, assignee, projects and completion status.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"workspace_gid": workspaceField(),
				"text":          {Type: tool.TypeString, Description: "Text to search for in task names and notes"},
				"assignee":      {Type: tool.TypeString, Description: "Filter by assignee GID"},
				"projects": {
					Type: tool.TypeArray, Description: "Project GIDs to filter by",
					MaxItems: 10,
					Items:    &tool.Field{Type: tool.TypeString},
				},
				"completed":       {Type: tool.TypeBoolean, Description: "Filter by completion status"},
				"limit":           limitField(),
				"response_format": responseFormatField(),
			},
			Handler: s.searchTasks,
		},
		{
			Name:        "asana_list_projects",
			Description: "List projects in an Asana workspace.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"workspace_gid":   workspaceField(),
				"archived":        {Type: tool.TypeBoolean, Description: "Include archived projects", Default: false},
				"limit":           limitField(),
				"response_format": responseFormatField(),
			},
			Handler: s.listProjects,
		},
		{
			Name:        "asana_get_project_tasks",
			Description: "Get all tasks in a specific Asana project.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"project_gid":     {Type: tool.TypeString, Description: "Project GID", Required: true, MinLen: 1},
				"limit":           limitField(),
				"response_format": responseFormatField(),
			},
			Handler: s.getProjectTasks,
		},
		{
			Name:        "asana_add_comment",
			Description: "Add a comment to an Asana task.",
			Source:      Source,
			Schema: tool.Schema{
				"task_gid": taskGidField(),
				"text":     {Type: tool.TypeString, Description: "Comment text", Required: true, MinLen: 1, MaxLen: 65536},
			},
			Handler: s.addComment,
		},
		{
			Name:        "asana_get_task_comments",
			Description: "Get the comment history of an Asana task with authors and timestamps.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"task_gid": taskGidField(),
			},
			Handler: s.getTaskComments,
		},
		{
			Name:        "asana_list_sections",
			Description: "List sections in an Asana project or a user task list (My Tasks).",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"project_gid":     {Type: tool.TypeString, Description: "Project GID or user task list GID", Required: true, MinLen: 1},
				"limit":           limitField(),
				"response_format": responseFormatField(),
			},
			Handler: s.listSections,
		},
		{
			Name:        "asana_move_task_to_section",
			Description: "Move an Asana task to a section within its project.",
			Source:      Source,
			Schema: tool.Schema{
				"task_gid":    taskGidField(),
				"section_gid": {Type: tool.TypeString, Description: "Section GID", Required: true, MinLen: 1},
			},
			Handler: s.moveTaskToSection,
		},
		{
			Name:        "asana_add_subtask",
			Description: "Add a subtask to an existing Asana task.",
			Source:      Source,
			Schema: tool.Schema{
				"parent_task_gid": {Type: tool.TypeString, Description: "Parent task GID", Required: true, MinLen: 1},
				"name":            {Type: tool.TypeString, Description: "Subtask name", Required: true, MinLen: 1, MaxLen: 1024},
				"notes":           {Type: tool.TypeString, Description: "Subtask notes", MaxLen: 65536},
				"assignee":        {Type: tool.TypeString, Description: "Assignee GID"},
			},
			Handler: s.addSubtask,
		},
		{
			Name:        "asana_get_task_details",
			Description: "Get complete details for a specific Asana task including notes, projects, tags and followers.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"task_gid": taskGidField(),
			},
			Handler: s.getTaskDetails,
		},
		{
			Name:        "asana_list_tags",
			Description: "List all tags in an Asana workspace.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"workspace_gid":   workspaceField(),
				"response_format": responseFormatField(),
			},
			Handler: s.listTags,
		},
		{
			Name:        "asana_add_tag_to_task",
			Description: "Add a tag to an Asana task.",
			Source:      Source,
			Schema: tool.Schema{
				"task_gid": taskGidField(),
				"tag_gid":  {Type: tool.TypeString, Description: "Tag GID", Required: true, MinLen: 1},
			},
			Handler: s.addTagToTask,
		},
		{
			Name:        "asana_set_due_date",
			Description: "Set or update the due date of an Asana task.",
			Source:      Source,
			Schema: tool.Schema{
				"task_gid": taskGidField(),
				"due_on":   {Type: tool.TypeString, Description: "Due date in YYYY-MM-DD format", Required: true},
			},
			Handler: s.setDueDate,
		},
		{
			Name:        "asana_assign_task",
			Description: "Assign an Asana task to a user.",
			Source:      Source,
			Schema: tool.Schema{
				"task_gid": taskGidField(),
				"assignee": {Type: tool.TypeString, Description: "User GID to assign to; use 'me' for yourself", Required: true, MinLen: 1},
			},
			Handler: s.assignTask,
		},
		{
			Name:        "asana_get_user_task_list",
			Description: "Get the user task list (My Tasks) GID for a user, needed to manage My Tasks sections.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"user_gid": {Type: tool.TypeString, Description: "User GID; use 'me' for yourself", Default: "me"},
			},
			Handler: s.getUserTaskList,
		},
	}
}
