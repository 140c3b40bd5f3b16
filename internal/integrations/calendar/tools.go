package calendar

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

func calendarIDField() tool.Field {
	return tool.Field{
		Type:        tool.TypeString,
		Description: "Calendar identifier. Use 'primary' for the user's primary calendar, or a calendar email address",
		Default:     "primary",
	}
}

// Tools returns the tool definitions for this integration.
func (s *Service) Tools() []*tool.Definition {
	return []*tool.Definition{
		{
			Name:        "gcal_list_events",
			Description: "List events from a Google Calendar within a predefined or custom time range.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"calendar_id":     calendarIDField(),
				"time_range":      {Type: tool.TypeString, Description: "Predefined time range", Default: "this_week", Enum: []string{"today", "tomorrow", "this_week", "next_week", "this_month", "custom"}},
				"start_date":      {Type: tool.TypeString, Description: "Start date/time in ISO 8601 format, required when time_range='custom'"},
				"end_date":        {Type: tool.TypeString, Description: "End date/time in ISO 8601 format, required when time_range='custom'"},
				"max_results":     {Type: tool.TypeInteger, Description: "Maximum number of events to return", Default: 50, Min: tool.Num(1), Max: tool.Num(250)},
				"response_format": responseFormatField(),
			},
			Handler: s.listEvents,
		},
		{
			Name:        "gcal_create_event",
			Description: "Create a new Google Calendar event with optional attendees, location and Google Meet link.",
			Source:      Source,
			Schema: tool.Schema{
				"calendar_id":    calendarIDField(),
				"summary":        {Type: tool.TypeString, Description: "Event title, e.g. 'Team Meeting'", Required: true, MinLen: 1, MaxLen: 500},
				"description":    {Type: tool.TypeString, Description: "Detailed event description", MaxLen: 8000},
				"location":       {Type: tool.TypeString, Description: "Event location (address or place name)", MaxLen: 500},
				"start_datetime": {Type: tool.TypeString, Description: "Start date/time in ISO 8601 format, e.g. '2024-01-15T10:00:00Z'", Required: true},
				"end_datetime":   {Type: tool.TypeString, Description: "End date/time in ISO 8601 format", Required: true},
				"timezone":       {Type: tool.TypeString, Description: "Timezone for the event, e.g. 'America/New_York'", Default: "UTC"},
				"attendees": {
					Type: tool.TypeArray, Description: "Attendee email addresses",
					Items: &tool.Field{Type: tool.TypeString},
				},
				"add_meet_link":      {Type: tool.TypeBoolean, Description: "Add a Google Meet video conference link", Default: false},
				"send_notifications": {Type: tool.TypeBoolean, Description: "Send email notifications to attendees", Default: true},
				"all_day":            {Type: tool.TypeBoolean, Description: "All-day event; times are ignored and dates are used", Default: false},
			},
			Handler: s.createEvent,
		},
		{
			Name:        "gcal_update_event",
			Description: "Update an existing Google Calendar event with patch semantics; only provided fields change.",
			Source:      Source,
			Schema: tool.Schema{
				"calendar_id":        calendarIDField(),
				"event_id":           {Type: tool.TypeString, Description: "Event ID to update", Required: true, MinLen: 1},
				"summary":            {Type: tool.TypeString, Description: "New event title", MaxLen: 500},
				"description":        {Type: tool.TypeString, Description: "New event description", MaxLen: 8000},
				"location":           {Type: tool.TypeString, Description: "New location", MaxLen: 500},
				"start_datetime":     {Type: tool.TypeString, Description: "New start date/time in ISO 8601 format"},
				"end_datetime":       {Type: tool.TypeString, Description: "New end date/time in ISO 8601 format"},
				"timezone":           {Type: tool.TypeString, Description: "New timezone"},
				"status":             {Type: tool.TypeString, Description: "Event status", Enum: []string{"confirmed", "tentative", "cancelled"}},
				"send_notifications": {Type: tool.TypeBoolean, Description: "Send email notifications to attendees", Default: true},
			},
			Handler: s.updateEvent,
		},
		{
			Name:        "gcal_delete_event",
			Description: "Permanently delete an event from Google Calendar.",
			Source:      Source,
			Schema: tool.Schema{
				"calendar_id":        calendarIDField(),
				"event_id":           {Type: tool.TypeString, Description: "Event ID to delete", Required: true, MinLen: 1},
				"send_notifications": {Type: tool.TypeBoolean, Description: "Send cancellation notifications to attendees", Default: true},
			},
			Handler: s.deleteEvent,
		},
		{
			Name:        "gcal_search_events",
			Description: "Search Google Calendar events by keyword across titles, descriptions, locations and attendees.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"calendar_id":     calendarIDField(),
				"query":           {Type: tool.TypeString, Description: "Search query", Required: true, MinLen: 1, MaxLen: 200},
				"max_results":     {Type: tool.TypeInteger, Description: "Maximum number of results", Default: 50, Min: tool.Num(1), Max: tool.Num(250)},
				"response_format": responseFormatField(),
			},
			Handler: s.searchEvents,
		},
		{
			Name:        "gcal_check_availability",
			Description: "Check free/busy availability across one or more Google Calendars for a time range.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"calendar_ids": {
					Type: tool.TypeArray, Description: "Calendar IDs to check, e.g. ['primary', 'other@gmail.com']",
					MaxItems: 50,
					Items:    &tool.Field{Type: tool.TypeString},
				},
				"start_datetime":  {Type: tool.TypeString, Description: "Start of time range in ISO 8601 format", Required: true},
				"end_datetime":    {Type: tool.TypeString, Description: "End of time range in ISO 8601 format", Required: true},
				"response_format": responseFormatField(),
			},
			Handler: s.checkAvailability,
		},
	}
}
