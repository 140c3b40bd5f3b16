// Package calendar adapts the Google Calendar v3 API. Authentication is an
// OAuth2 bearer token supplied through the environment; token refresh is out
// of scope.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
	"toolbridge/internal/toolerr"
	"toolbridge/internal/upstream"
)

// Source names the upstream service in results and error messages.
const Source = "Google Calendar API"

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// Service issues Calendar API calls for one configured token.
type Service struct {
	token           string
	defaultCalendar string
	client          *upstream.Client
}

// NewService builds the service. The bearer header comes from an oauth2
// static token source wrapped around the injected base client. An empty
// token turns every call into a Configuration error.
func NewService(token, defaultCalendar string, httpClient *http.Client) *Service {
	if defaultCalendar == "" {
		defaultCalendar = "primary"
	}

	hc := httpClient
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		hc = oauth2.NewClient(ctx, src)
		if httpClient != nil {
			hc.Timeout = httpClient.Timeout
		} else {
			hc.Timeout = upstream.DefaultTimeout
		}
	}

	return &Service{
		token:           token,
		defaultCalendar: defaultCalendar,
		client:          upstream.New(defaultBaseURL, Source, hc),
	}
}

// SetBaseURL points the service at a different endpoint, used by tests.
func (s *Service) SetBaseURL(u string) { s.client.BaseURL = u }

func (s *Service) checkToken() error {
	if s.token == "" {
		return toolerr.Configurationf("Google Calendar access token is not configured; set GOOGLE_CALENDAR_ACCESS_TOKEN")
	}
	return nil
}

func (s *Service) calendarID(args tool.Args) string {
	if id := args.String("calendar_id"); id != "" {
		return id
	}
	return s.defaultCalendar
}

type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type attendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	Optional       bool   `json:"optional,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

type event struct {
	ID          string     `json:"id,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Status      string     `json:"status,omitempty"`
	Start       *eventTime `json:"start,omitempty"`
	End         *eventTime `json:"end,omitempty"`
	Attendees   []attendee `json:"attendees,omitempty"`
	HTMLLink    string     `json:"htmlLink,omitempty"`
	HangoutLink string     `json:"hangoutLink,omitempty"`

	ConferenceData map[string]any `json:"conferenceData,omitempty"`
}

type eventsResponse struct {
	Items []event `json:"items"`
}

func sendUpdates(notify bool) string {
	if notify {
		return "all"
	}
	return "none"
}

// timeRangeBounds converts a named range to UTC interval bounds. The custom
// range requires both explicit dates.
func timeRangeBounds(timeRange, startDate, endDate string) (string, string, error) {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var start, end time.Time
	switch timeRange {
	case "today":
		start = midnight
		end = start.AddDate(0, 0, 1)
	case "tomorrow":
		start = midnight.AddDate(0, 0, 1)
		end = start.AddDate(0, 0, 1)
	case "this_week":
		start = midnight
		end = start.AddDate(0, 0, 7)
	case "next_week":
		start = midnight.AddDate(0, 0, 7)
		end = start.AddDate(0, 0, 7)
	case "this_month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	case "custom":
		if startDate == "" || endDate == "" {
			return "", "", toolerr.Validationf("for the custom time range, both start_date and end_date must be provided")
		}
		if _, err := time.Parse(time.RFC3339, startDate); err != nil {
			return "", "", toolerr.Validationf("start_date must be an ISO 8601 datetime, e.g. 2024-01-15T10:00:00Z")
		}
		if _, err := time.Parse(time.RFC3339, endDate); err != nil {
			return "", "", toolerr.Validationf("end_date must be an ISO 8601 datetime, e.g. 2024-01-20T18:00:00Z")
		}
		return startDate, endDate, nil
	default:
		return "", "", toolerr.Validationf("invalid time range: %s", timeRange)
	}
	return start.Format(time.RFC3339), end.Format(time.RFC3339), nil
}

func formatEventMarkdown(b *format.Builder, ev *event) {
	summary := ev.Summary
	if summary == "" {
		summary = "(No title)"
	}
	b.H2(summary)

	switch {
	case ev.Start != nil && ev.Start.DateTime != "":
		startText, endText := ev.Start.DateTime, ""
		if t, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
			startText = t.Format("2006-01-02 15:04")
		}
		if ev.End != nil {
			if t, err := time.Parse(time.RFC3339, ev.End.DateTime); err == nil {
				endText = t.Format("15:04")
			}
		}
		tz := ev.Start.TimeZone
		if tz == "" {
			tz = "UTC"
		}
		b.Bold("Time", fmt.Sprintf("%s - %s (%s)", startText, endText, tz))
	case ev.Start != nil && ev.Start.Date != "":
		b.Bold("Date", ev.Start.Date+" (All-day)")
	}

	b.Bold("ID", "`"+ev.ID+"`")

	status := ev.Status
	if status == "" {
		status = "confirmed"
	}
	b.Bold("Status", status)

	if ev.Description != "" {
		desc := ev.Description
		if len(desc) > 200 {
			desc = desc[:200] + "..."
		}
		b.Bold("Description", desc)
	}
	if ev.Location != "" {
		b.Bold("Location", ev.Location)
	}
	if len(ev.Attendees) > 0 {
		b.Linef("**Attendees** (%d):", len(ev.Attendees))
		shown := ev.Attendees
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, a := range shown {
			name := a.DisplayName
			if name == "" {
				name = a.Email
			}
			response := a.ResponseStatus
			if response == "" {
				response = "needsAction"
			}
			b.Linef("  - %s (%s)", name, response)
		}
		if len(ev.Attendees) > 5 {
			b.Linef("  - ... and %d more", len(ev.Attendees)-5)
		}
	}
	if ev.HangoutLink != "" {
		b.Bold("Meet Link", ev.HangoutLink)
	}
	b.Blank()
}

func formatEventsResponse(events []event, respFormat string) string {
	if respFormat == format.JSONMode {
		return format.JSON(map[string]any{
			"count":  len(events),
			"events": events,
		})
	}
	var b format.Builder
	b.H1("Google Calendar Events")
	b.Blank()
	b.Linef("Found %d events", len(events))
	b.Blank()
	if len(events) == 0 {
		b.Line("No events found.")
	}
	for i := range events {
		formatEventMarkdown(&b, &events[i])
	}
	return b.String()
}

func (s *Service) listEvents(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	timeRange := args.String("time_range")
	respFormat := args.String("response_format")

	timeMin, timeMax, err := timeRangeBounds(timeRange, args.String("start_date"), args.String("end_date"))
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("timeMin", timeMin)
	q.Set("timeMax", timeMax)
	q.Set("maxResults", strconv.Itoa(args.Int("max_results")))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	var resp eventsResponse
	if err := s.client.GetJSON(ctx, "calendars/"+url.PathEscape(s.calendarID(args))+"/events", q, &resp); err != nil {
		return "", err
	}

	if len(resp.Items) == 0 {
		return fmt.Sprintf("No events found in the specified time range (%s).", timeRange), nil
	}

	result := formatEventsResponse(resp.Items, respFormat)
	return format.Truncate(result, "Try a narrower time range or a smaller max_results."), nil
}

func (s *Service) createEvent(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	summary := args.String("summary")
	startDatetime := args.String("start_datetime")
	endDatetime := args.String("end_datetime")
	timezone := args.String("timezone")
	attendeeEmails := args.Strings("attendees")
	addMeetLink := args.Bool("add_meet_link")
	notify := args.Bool("send_notifications")
	allDay := args.Bool("all_day")

	ev := event{
		Summary:     summary,
		Description: args.String("description"),
		Location:    args.String("location"),
	}

	if allDay {
		ev.Start = &eventTime{Date: dateOnly(startDatetime)}
		ev.End = &eventTime{Date: dateOnly(endDatetime)}
	} else {
		ev.Start = &eventTime{DateTime: startDatetime, TimeZone: timezone}
		ev.End = &eventTime{DateTime: endDatetime, TimeZone: timezone}
	}

	for _, email := range attendeeEmails {
		ev.Attendees = append(ev.Attendees, attendee{Email: email})
	}

	conferenceVersion := "0"
	if addMeetLink {
		conferenceVersion = "1"
		ev.ConferenceData = map[string]any{
			"createRequest": map[string]any{
				"requestId":             fmt.Sprintf("meet-%d", time.Now().UnixNano()),
				"conferenceSolutionKey": map[string]string{"type": "hangoutsMeet"},
			},
		}
	}

	q := url.Values{}
	q.Set("conferenceDataVersion", conferenceVersion)
	q.Set("sendUpdates", sendUpdates(notify))

	var created event
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "calendars/" + url.PathEscape(s.calendarID(args)) + "/events",
		Query:  q,
		Body:   ev,
	}, &created)
	if err != nil {
		return "", err
	}

	var b format.Builder
	b.H1("Event Created Successfully")
	b.Blank()
	b.Bold("Event ID", "`"+created.ID+"`")
	b.Bold("Title", created.Summary)
	if created.Start != nil {
		if created.Start.DateTime != "" {
			b.Bold("Start", created.Start.DateTime)
		} else {
			b.Bold("Start", created.Start.Date+" (All-day)")
		}
	}
	if created.HTMLLink != "" {
		b.Bold("Calendar Link", created.HTMLLink)
	}
	if created.HangoutLink != "" {
		b.Bold("Google Meet", created.HangoutLink)
	}
	if len(attendeeEmails) > 0 && notify {
		b.Blank()
		b.Linef("✉️ Notifications sent to %d attendee(s)", len(attendeeEmails))
	}
	return b.String(), nil
}

func dateOnly(datetime string) string {
	if i := strings.Index(datetime, "T"); i > 0 {
		return datetime[:i]
	}
	return datetime
}

func (s *Service) updateEvent(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	eventID := args.String("event_id")
	notify := args.Bool("send_notifications")
	startDatetime := args.String("start_datetime")
	endDatetime := args.String("end_datetime")
	timezone := args.String("timezone")

	patch := map[string]any{}
	if args.Has("summary") {
		patch["summary"] = args.String("summary")
	}
	if args.Has("description") {
		patch["description"] = args.String("description")
	}
	if args.Has("location") {
		patch["location"] = args.String("location")
	}
	if args.Has("status") {
		patch["status"] = args.String("status")
	}

	// A timezone only qualifies a datetime change, so it does not count as
	// a field on its own.
	if len(patch) == 0 && startDatetime == "" && endDatetime == "" {
		return "", toolerr.Validationf("no fields to update; specify at least one field to change")
	}

	calID := s.calendarID(args)
	eventPath := "calendars/" + url.PathEscape(calID) + "/events/" + url.PathEscape(eventID)

	// Time changes need the current event shape so an all-day event stays
	// all-day and a timed event keeps its zone.
	if startDatetime != "" || endDatetime != "" {
		var existing event
		if err := s.client.GetJSON(ctx, eventPath, nil, &existing); err != nil {
			return "", err
		}
		if startDatetime != "" {
			patch["start"] = patchedTime(existing.Start, startDatetime, timezone)
		}
		if endDatetime != "" {
			patch["end"] = patchedTime(existing.End, endDatetime, timezone)
		}
	}

	q := url.Values{}
	q.Set("sendUpdates", sendUpdates(notify))

	var updated event
	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodPatch,
		Path:   eventPath,
		Query:  q,
		Body:   patch,
	}, &updated)
	if err != nil {
		return "", err
	}

	var b format.Builder
	b.H1("Event Updated Successfully")
	b.Blank()
	b.Bold("Event ID", "`"+updated.ID+"`")
	b.Bold("Title", updated.Summary)
	status := updated.Status
	if status == "" {
		status = "confirmed"
	}
	b.Bold("Status", status)
	if updated.Start != nil {
		if updated.Start.DateTime != "" {
			b.Bold("Start", updated.Start.DateTime)
		} else {
			b.Bold("Start", updated.Start.Date+" (All-day)")
		}
	}
	if updated.Location != "" {
		b.Bold("Location", updated.Location)
	}
	if updated.HTMLLink != "" {
		b.Bold("Calendar Link", updated.HTMLLink)
	}
	if notify {
		b.Blank()
		b.Line("✉️ Update notifications sent to attendees")
	}
	return b.String(), nil
}

func patchedTime(existing *eventTime, datetime, timezone string) *eventTime {
	if existing != nil && existing.Date != "" {
		return &eventTime{Date: dateOnly(datetime)}
	}
	tz := timezone
	if tz == "" && existing != nil && existing.TimeZone != "" {
		tz = existing.TimeZone
	}
	if tz == "" {
		tz = "UTC"
	}
	return &eventTime{DateTime: datetime, TimeZone: tz}
}

func (s *Service) deleteEvent(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	eventID := args.String("event_id")
	notify := args.Bool("send_notifications")

	q := url.Values{}
	q.Set("sendUpdates", sendUpdates(notify))

	err := s.client.Do(ctx, upstream.Request{
		Method: http.MethodDelete,
		Path:   "calendars/" + url.PathEscape(s.calendarID(args)) + "/events/" + url.PathEscape(eventID),
		Query:  q,
	}, nil)
	if err != nil {
		return "", err
	}

	var b format.Builder
	b.H1("Event Deleted Successfully")
	b.Blank()
	b.Linef("**Event ID**: `%s` has been permanently removed.", eventID)
	if notify {
		b.Blank()
		b.Line("✉️ Cancellation notifications sent to attendees")
	}
	return b.String(), nil
}

func (s *Service) searchEvents(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	query := args.String("query")
	respFormat := args.String("response_format")

	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(args.Int("max_results")))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	var resp eventsResponse
	if err := s.client.GetJSON(ctx, "calendars/"+url.PathEscape(s.calendarID(args))+"/events", q, &resp); err != nil {
		return "", err
	}

	if len(resp.Items) == 0 {
		return fmt.Sprintf("No events found matching %q", query), nil
	}

	result := formatEventsResponse(resp.Items, respFormat)
	return format.Truncate(result, "Refine your search query or reduce max_results."), nil
}

type freeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"busy"`
		Errors []struct {
			Domain string `json:"domain"`
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"calendars"`
}

func (s *Service) checkAvailability(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkToken(); err != nil {
		return "", err
	}
	calendarIDs := args.Strings("calendar_ids")
	if len(calendarIDs) == 0 {
		calendarIDs = []string{s.defaultCalendar}
	}
	startDatetime := args.String("start_datetime")
	endDatetime := args.String("end_datetime")
	respFormat := args.String("response_format")

	items := make([]map[string]string, len(calendarIDs))
	for i, id := range calendarIDs {
		items[i] = map[string]string{"id": id}
	}

	var resp freeBusyResponse
	err := s.client.PostJSON(ctx, "freeBusy", map[string]any{
		"timeMin": startDatetime,
		"timeMax": endDatetime,
		"items":   items,
	}, &resp)
	if err != nil {
		return "", err
	}

	if respFormat == format.JSONMode {
		return format.JSON(map[string]any{
			"timeMin":   startDatetime,
			"timeMax":   endDatetime,
			"calendars": resp.Calendars,
		}), nil
	}

	var b format.Builder
	b.H1("Calendar Availability Check")
	b.Blank()
	b.Bold("Time Range", fmt.Sprintf("%s to %s", startDatetime, endDatetime))
	b.Blank()
	for _, calID := range calendarIDs {
		cal := resp.Calendars[calID]
		b.H2("Calendar: " + calID)
		if len(cal.Busy) == 0 {
			b.Line("✅ **Completely free** during this time range")
		} else {
			b.Bold("Busy Periods", strconv.Itoa(len(cal.Busy)))
			for _, period := range cal.Busy {
				startText, endText := period.Start, period.End
				if t, err := time.Parse(time.RFC3339, period.Start); err == nil {
					startText = t.Format("2006-01-02 15:04")
				}
				if t, err := time.Parse(time.RFC3339, period.End); err == nil {
					endText = t.Format("15:04")
				}
				b.Linef("  - 🔴 %s to %s", startText, endText)
			}
		}
		if len(cal.Errors) > 0 {
			b.Linef("⚠️ **Errors**: %d", len(cal.Errors))
			for _, e := range cal.Errors {
				b.Linef("  - %s: %s", e.Reason, e.Domain)
			}
		}
		b.Blank()
	}
	return b.String(), nil
}
