package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chuo/core/schedule"
	"github.com/trezcool/chuo/tests"
)

func Test_eventApi_create(t *testing.T) {
	app := setup(t)

	rec := app.do(http.MethodPost, "/v1/events", []byte(`{
		"title": " Orientation ", "venue": "Hall1", "category": "SEMINAR",
		"start_date": "2024-03-01", "start_time": "9:00", "end_time": "11:00"
	}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var evt schedule.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &evt))
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "Orientation", evt.Title)
	assert.Equal(t, schedule.CategorySeminar, evt.Category)
	assert.Equal(t, schedule.StatusScheduled, evt.Status)
	assert.Equal(t, "2024-03-01", evt.EndDate)
	assert.Equal(t, "09:00", *evt.StartTime)

	runHttpTests(t, app, []httpTest{
		{
			name: "required", method: http.MethodPost, path: "/v1/events",
			body:     []byte(`{"venue": "Hall1", "start_date": "2024-03-01"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "end before start", method: http.MethodPost, path: "/v1/events",
			body:     []byte(`{"title": "x", "venue": "Hall1", "start_date": "2024-03-02", "end_date": "2024-03-01"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"end_date": "end date cannot be before start date"}),
		},
		{
			name: "bad time", method: http.MethodPost, path: "/v1/events",
			body:     []byte(`{"title": "x", "venue": "Hall1", "start_date": "2024-03-02", "start_time": "noon"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"start_time": "must be a time formatted as HH:MM"}),
		},
		{
			name: "bad recurrence", method: http.MethodPost, path: "/v1/events",
			body:     []byte(`{"title": "x", "venue": "Hall1", "start_date": "2024-03-02", "recurrence": "FREQ=SOMETIMES"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"recurrence": "invalid recurrence rule"}),
		},
		{name: "malformed body", method: http.MethodPost, path: "/v1/events", body: []byte(`{"title":`), wantCode: http.StatusBadRequest},
	})
}

func Test_eventApi_clashNotification(t *testing.T) {
	app := setup(t)
	testutil.CreateEvent(t, app.evtRepo, "Orientation", "Hall1", "2024-03-01", testutil.WithTimes("10:00", "11:00"))

	rec := app.do(http.MethodPost, "/v1/events", []byte(`{
		"title": "Guest lecture", "venue": "Hall1",
		"start_date": "2024-03-01", "start_time": "10:30", "end_time": "12:00"
	}`))
	require.Equal(t, http.StatusCreated, rec.Code, "clashes never block a write")

	sent := app.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Venue clash: Hall1 on 2024-03-01", sent[0].Subject)
}

func Test_eventApi_query(t *testing.T) {
	app := setup(t)

	path := func(search, ordering, venue string, statuses ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if venue != "" {
			v.Add("venue", venue)
		}
		for _, s := range statuses {
			v.Add("status", s)
		}
		return "/v1/events?" + v.Encode()
	}

	orientation := testutil.CreateEvent(t, app.evtRepo, "Orientation", "Hall1", "2024-03-02", testutil.WithTimes("10:00", "11:00"))
	sports := testutil.CreateEvent(t, app.evtRepo, "Sports day", "Field", "2024-03-01")
	seminar := testutil.CreateEvent(t, app.evtRepo, "Dean's seminar", "Hall1", "2024-03-02", testutil.WithTimes("09:00", "10:00"))
	cancelled := testutil.CreateEvent(t, app.evtRepo, "Choir", "Chapel", "2024-03-03", testutil.WithStatus(schedule.StatusCancelled))

	runHttpTests(t, app, []httpTest{
		{name: "Get all", path: "/v1/events", wantData: marshalList(t, sports, seminar, orientation, cancelled)},
		{name: "search (unknown)", path: path("lol", "", ""), wantData: marshalList(t)},
		{name: "search=SEMINAR", path: path("SEMINAR", "", ""), wantData: marshalList(t, seminar)},
		{name: "venue=Hall1", path: path("", "", "Hall1"), wantData: marshalList(t, seminar, orientation)},
		{name: "status=cancelled", path: path("", "", "", schedule.StatusCancelled), wantData: marshalList(t, cancelled)},
		{name: "status (unknown)", path: path("", "", "", "lol"), wantData: marshalList(t)},
		{name: "ordering=-title", path: path("", "-title", ""), wantData: marshalList(t, sports, orientation, seminar, cancelled)},
		{name: "ordering (unknown field)", path: path("", "lol", ""), wantData: marshalList(t, sports, seminar, orientation, cancelled)},
		{name: "from", path: "/v1/events?from=2024-03-02&to=2024-03-02", wantData: marshalList(t, seminar, orientation)},
	})
}

func Test_eventApi_detail(t *testing.T) {
	app := setup(t)
	evt := testutil.CreateEvent(t, app.evtRepo, "Orientation", "Hall1", "2024-03-01", testutil.WithTimes("10:00", "11:00"))
	notFound := marshalObj(t, httpErr{Error: "not found"})

	runHttpTests(t, app, []httpTest{
		{name: "retrieve", path: "/v1/events/" + evt.ID, wantData: marshalObj(t, evt)},
		{name: "retrieve (unknown)", path: "/v1/events/lol", wantCode: http.StatusNotFound, wantData: notFound},
		{
			name: "update (invalid)", method: http.MethodPut, path: "/v1/events/" + evt.ID,
			body:     []byte(`{"title": "Orientation", "venue": "Hall1", "start_date": "2024-03-01", "start_time": "11:00", "end_time": "10:00"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"end_time": "end time cannot be before start time"}),
		},
		{
			name: "update (unknown)", method: http.MethodPut, path: "/v1/events/lol",
			body: []byte(`{}`), wantCode: http.StatusNotFound, wantData: notFound,
		},
	})

	t.Run("update", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/v1/events/"+evt.ID, []byte(`{
			"title": "Orientation week", "venue": "Hall2", "status": "completed",
			"start_date": "2024-03-01", "start_time": "10:00", "end_time": "12:00",
			"attendance": {"registered": 120, "attended": 96}
		}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got, err := app.evtRepo.GetEvent(context.Background(), evt.ID)
		require.NoError(t, err)
		assert.JSONEq(t, string(marshalObj(t, got)), rec.Body.String())
		assert.Equal(t, "Orientation week", got.Title)
		assert.Equal(t, "Hall2", got.Venue)
		assert.Equal(t, &schedule.Attendance{Registered: 120, Attended: 96}, got.Attendance)
		assert.Equal(t, evt.CreatedAt, got.CreatedAt)
	})

	t.Run("destroy", func(t *testing.T) {
		rec := app.do(http.MethodDelete, "/v1/events/"+evt.ID)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		_, err := app.evtRepo.GetEvent(context.Background(), evt.ID)
		assert.Equal(t, schedule.ErrNotFound, err)
	})
}

func Test_eventApi_destroyMultiple(t *testing.T) {
	app := setup(t)
	a := testutil.CreateEvent(t, app.evtRepo, "A", "Hall1", "2024-03-01")
	b := testutil.CreateEvent(t, app.evtRepo, "B", "Hall1", "2024-03-02")
	c := testutil.CreateEvent(t, app.evtRepo, "C", "Hall1", "2024-03-03")

	rec := app.do(http.MethodDelete, "/v1/events")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(http.MethodDelete, "/v1/events?id="+a.ID+"&id="+c.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	checkCodeAndData(t, httpTest{wantData: marshalList(t, b)}, app.do(http.MethodGet, "/v1/events"))
}

func Test_eventApi_conflicts(t *testing.T) {
	app := setup(t)
	testutil.CreateEvent(t, app.evtRepo, "Orientation", "Hall1", "2024-03-01", testutil.WithTimes("10:00", "11:00"))
	testutil.CreateEvent(t, app.evtRepo, "Guest lecture", "Hall1", "2024-03-01", testutil.WithTimes("10:30", "12:00"))
	testutil.CreateEvent(t, app.evtRepo, "Lunch", "Hall1", "2024-03-01", testutil.WithTimes("12:00", "13:00"))
	testutil.CreateEvent(t, app.evtRepo, "Staff meeting", "Boardroom", "2024-03-04",
		testutil.WithTimes("09:00", "10:00"), testutil.WithRecurrence("FREQ=WEEKLY;COUNT=4"))
	testutil.CreateEvent(t, app.evtRepo, "Budget review", "Boardroom", "2024-03-18", testutil.WithTimes("09:30", "10:30"))

	want := func(cf schedule.ConflictFilter) []byte {
		conflicts, err := app.evtSvc.Conflicts(context.Background(), cf)
		require.NoError(t, err)
		return marshalObj(t, conflicts)
	}

	t.Run("march", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/events/conflicts?from=2024-03-01&to=2024-03-31")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, string(want(schedule.ConflictFilter{From: "2024-03-01", To: "2024-03-31"})), rec.Body.String())

		var conflicts []schedule.Conflict
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflicts))
		require.Len(t, conflicts, 2)
		assert.Equal(t, "Hall1", conflicts[0].Venue)
		assert.Equal(t, "2024-03-18", conflicts[1].Date)
		assert.Equal(t, "2024-03-18", conflicts[1].A.Occurrence)
	})

	runHttpTests(t, app, []httpTest{
		{name: "venue", path: "/v1/events/conflicts?venue=Boardroom&from=2024-03-01&to=2024-03-31", wantData: want(schedule.ConflictFilter{From: "2024-03-01", To: "2024-03-31", Venue: "Boardroom"})},
		{name: "none", path: "/v1/events/conflicts?from=2024-04-01&to=2024-04-30", wantData: []byte(`[]`)},
		{
			name: "bad date", path: "/v1/events/conflicts?from=01/03/2024", wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"from": "must be a date formatted as YYYY-MM-DD"}),
		},
		{
			name: "inverted range", path: "/v1/events/conflicts?from=2024-03-31&to=2024-03-01", wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"to": "'to' cannot be before 'from'"}),
		},
	})
}

func Test_eventApi_checkConflicts(t *testing.T) {
	app := setup(t)

	body := []byte(`[
		{"id": "A", "venue": "Hall1", "start_date": "2024-03-01", "start_time": "10:00", "end_time": "11:00"},
		{"id": "B", "venue": "Hall1", "start_date": "2024-03-01", "start_time": "10:30", "end_time": "12:00"},
		{"id": "C", "venue": "Hall2", "start_date": "2024-03-01", "start_time": "10:00", "end_time": "11:00"},
		{"id": "D", "venue": "Hall1", "start_date": "2024-03-01", "start_time": "12:00", "end_time": "13:00"}
	]`)
	rec := app.do(http.MethodPost, "/v1/events/conflicts/check", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var conflicts []schedule.Conflict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflicts))
	require.Len(t, conflicts, 1)
	assert.Equal(t, "A", conflicts[0].A.ID)
	assert.Equal(t, "B", conflicts[0].B.ID)
	assert.Equal(t, "Hall1", conflicts[0].Venue)
	assert.Equal(t, "2024-03-01", conflicts[0].Date)

	runHttpTests(t, app, []httpTest{
		{name: "empty list", method: http.MethodPost, path: "/v1/events/conflicts/check", body: []byte(`[]`), wantData: []byte(`[]`)},
		{
			name: "not a list", method: http.MethodPost, path: "/v1/events/conflicts/check", body: []byte(`{"id": "A"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "expected a JSON list of events"}),
		},
		{
			name: "body over 10MiB", method: http.MethodPost, path: "/v1/events/conflicts/check",
			body:     []byte(`[{"id": "A", "venue": "Hall1", "start_date": "2024-03-01", "description": "` + strings.Repeat("a", 10<<20) + `"}]`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "expected a JSON list of events"}),
		},
	})
}

func Test_eventApi_stats(t *testing.T) {
	app := setup(t)
	testutil.CreateEvent(t, app.evtRepo, "A", "Hall1", "2024-03-01")
	testutil.CreateEvent(t, app.evtRepo, "B", "Hall1", "2024-03-02", testutil.WithStatus(schedule.StatusCompleted))
	testutil.CreateEvent(t, app.evtRepo, "C", "Hall2", "2024-03-03")

	rec := app.do(http.MethodGet, "/v1/events/stats?venue=Hall1")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats schedule.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, map[string]int{schedule.StatusScheduled: 1, schedule.StatusCompleted: 1}, stats.ByStatus)
	assert.Equal(t, map[string]int{schedule.CategoryOther: 2}, stats.ByCategory)
}

func Test_eventApi_exportCSV(t *testing.T) {
	app := setup(t)
	evt := testutil.CreateEvent(t, app.evtRepo, "Orientation", "Hall1", "2024-03-01", testutil.WithTimes("10:00", "11:00"))

	rec := app.do(http.MethodGet, "/v1/events/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "events.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,title,venue"))
	assert.True(t, strings.HasPrefix(lines[1], evt.ID+",Orientation,Hall1"))
}

func Test_eventApi_ics(t *testing.T) {
	app := setup(t)

	rec := app.do(http.MethodGet, "/v1/events/export.ics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "no events to export"}`, rec.Body.String())

	testutil.CreateEvent(t, app.evtRepo, "Orientation", "Hall1", "2024-03-01", testutil.WithTimes("10:00", "11:00"))
	testutil.CreateEvent(t, app.evtRepo, "Sports day", "Field", "2024-03-02")

	rec = app.do(http.MethodGet, "/v1/events/export.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	exported := rec.Body.Bytes()
	assert.Contains(t, string(exported), "SUMMARY:Orientation")
	assert.Contains(t, string(exported), "DTSTART;VALUE=DATE:20240302")

	t.Run("import", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/events/import.ics", exported)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created []schedule.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.Len(t, created, 2)
		assert.Equal(t, "Orientation", created[0].Title)
		assert.Equal(t, "10:00", *created[0].StartTime)
		assert.Nil(t, created[1].StartTime)

		events, err := app.evtRepo.QueryEvents(context.Background(), nil, nil)
		require.NoError(t, err)
		assert.Len(t, events, 4)
	})

	t.Run("import (invalid events)", func(t *testing.T) {
		ics := strings.ReplaceAll(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Other//Calendar//EN
BEGIN:VEVENT
UID:1
DTSTAMP:20240101T000000Z
SUMMARY:Nowhere
DTSTART:20240301T100000Z
END:VEVENT
END:VCALENDAR
`, "\n", "\r\n")
		rec := app.do(http.MethodPost, "/v1/events/import.ics", []byte(ics))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"events[0].venue": "this field is required"}`, rec.Body.String())
	})

	t.Run("import (not a calendar)", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/events/import.ics", []byte("BEGIN:VCALENDAR\r\nnope\r\n"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
