// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	bolt "go.etcd.io/bbolt"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/catalog"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db/kvdb"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/identity"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/party"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/realtime"
)

func newTestRouter(t *testing.T) (*gin.Engine, *party.Core) {
	t.Helper()
	mux, core, _ := newTestRouterDB(t)
	return mux, core
}

func newTestRouterDB(t *testing.T) (*gin.Engine, *party.Core, *bolt.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bdb, err := bolt.Open(filepath.Join(t.TempDir(), "test.db"), 0600, nil)
	if err != nil {
		t.Fatalf("could not open bolt db: %v", err)
	}
	t.Cleanup(func() { bdb.Close() })

	rsvps, err := kvdb.NewRSVPStore(bdb)
	if err != nil {
		t.Fatalf("could not create rsvp store: %v", err)
	}
	bookings, err := kvdb.NewBookingStore(bdb)
	if err != nil {
		t.Fatalf("could not create booking store: %v", err)
	}
	identities, err := kvdb.NewIdentityStore(bdb)
	if err != nil {
		t.Fatalf("could not create identity store: %v", err)
	}

	live := realtime.NewStore(rsvps, bookings, nil)
	core := party.NewCore(live)
	registry := identity.NewRegistry(identities, rsvps)
	handler := NewPartyHandler(core, registry, live)

	mux := gin.New()
	mux.GET("/api/plan", handler.Plan)
	mux.GET("/api/me", handler.Me)
	mux.POST("/api/rsvps", handler.CreateRSVP)
	mux.PUT("/api/rsvps/:rsvpid", handler.UpdateRSVP)
	mux.DELETE("/api/rsvps/:rsvpid", handler.DeleteRSVP)
	mux.PUT("/api/rsvps/:rsvpid/booking", handler.AssignBooking)
	mux.DELETE("/api/rsvps/:rsvpid/booking", handler.Unassign)
	mux.GET("/calendar.ics", handler.Calendar)
	return mux, core, bdb
}

func refresh(t *testing.T, core *party.Core) {
	t.Helper()
	if err := core.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
}

func TestCreateRSVP(t *testing.T) {
	mux, _ := newTestRouter(t)

	body := `{"name":"Jane","email":"jane@x.com","stationId":"baker-street","friendGroup":"Work"}`
	req := httptest.NewRequest(http.MethodPost, "/api/rsvps", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), sessionCookie+"=") {
		t.Error("expected a session cookie to be set")
	}

	var res struct {
		RSVP struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			StationID string `json:"stationId"`
		} `json:"rsvp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if res.RSVP.ID == "" || res.RSVP.Name != "Jane" || res.RSVP.StationID != "baker-street" {
		t.Fatalf("unexpected rsvp: %+v", res.RSVP)
	}
}

func TestCreateRSVPFromForm(t *testing.T) {
	mux, _ := newTestRouter(t)

	values := url.Values{
		"name":         {"Amir"},
		"email":        {"amir@x.com"},
		"station_id":   {"brixton"},
		"friend_group": {"Uni"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/rsvps", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateRSVPValidation(t *testing.T) {
	mux, _ := newTestRouter(t)

	tt := []struct {
		name string
		body string
		code string
	}{
		{
			name: "missing name",
			body: `{"stationId":"baker-street","friendGroup":"Work"}`,
			code: "MISSING_FIELD",
		},
		{
			name: "unknown station",
			body: `{"name":"Jane","stationId":"narnia","friendGroup":"Work"}`,
			code: "UNKNOWN_STATION",
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/rsvps", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.code) {
				t.Errorf("expected code %s in body: %s", tc.code, rec.Body.String())
			}
		})
	}
}

func TestMeWithoutSession(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "NO_RSVP") {
		t.Errorf("expected NO_RSVP in body: %s", rec.Body.String())
	}
}

func TestAssignBookingCapacityCheck(t *testing.T) {
	mux, core := newTestRouter(t)
	ctx := context.Background()

	session, ok := catalog.SessionByID("s1")
	if !ok {
		t.Fatal("catalog must contain session s1")
	}

	// Fill the session to capacity through the core.
	for i := 0; i < session.Capacity; i++ {
		guest, err := core.AddRSVP(ctx, "guest "+strconv.Itoa(i), "", "waterloo", "Football")
		if err != nil {
			t.Fatalf("add rsvp failed: %v", err)
		}
		if _, err := core.AddBooking(ctx, guest.ID, session.ID); err != nil {
			t.Fatalf("add booking failed: %v", err)
		}
	}
	late, err := core.AddRSVP(ctx, "latecomer", "", "brixton", "Family")
	if err != nil {
		t.Fatalf("add rsvp failed: %v", err)
	}
	refresh(t, core)

	req := httptest.NewRequest(http.MethodPut, "/api/rsvps/"+late.ID.String()+"/booking", strings.NewReader(`{"sessionId":"s1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for full session, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "SESSION_FULL") {
		t.Errorf("expected SESSION_FULL in body: %s", rec.Body.String())
	}

	// The same drop into another session goes through.
	req = httptest.NewRequest(http.MethodPut, "/api/rsvps/"+late.ID.String()+"/booking", strings.NewReader(`{"sessionId":"s2"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAssignBookingIntoOwnFullSession(t *testing.T) {
	mux, core := newTestRouter(t)
	ctx := context.Background()

	session, ok := catalog.SessionByID("s1")
	if !ok {
		t.Fatal("catalog must contain session s1")
	}

	var lastID string
	for i := 0; i < session.Capacity; i++ {
		guest, err := core.AddRSVP(ctx, "guest "+strconv.Itoa(i), "", "waterloo", "Football")
		if err != nil {
			t.Fatalf("add rsvp failed: %v", err)
		}
		if _, err := core.AddBooking(ctx, guest.ID, session.ID); err != nil {
			t.Fatalf("add booking failed: %v", err)
		}
		lastID = guest.ID.String()
	}
	refresh(t, core)

	// Re-dropping a guest into the session they already occupy is not an
	// over-capacity assignment.
	req := httptest.NewRequest(http.MethodPut, "/api/rsvps/"+lastID+"/booking", strings.NewReader(`{"sessionId":"s1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUnassignUnknownGuest(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/rsvps/0eac703a-40f3-4318-ae96-f28e026a23c6/booking", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for idempotent unassign, got %d", rec.Code)
	}
}

func TestCalendarDownload(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/calendar.ics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("unexpected content type: %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "BEGIN:VEVENT") {
		t.Error("expected a VEVENT in the calendar body")
	}
}

func TestPlanEndpoint(t *testing.T) {
	mux, core := newTestRouter(t)
	ctx := context.Background()

	jane, err := core.AddRSVP(ctx, "Jane", "jane@x.com", "baker-street", "Work")
	if err != nil {
		t.Fatalf("add rsvp failed: %v", err)
	}
	if _, err := core.AddBooking(ctx, jane.ID, "s2"); err != nil {
		t.Fatalf("add booking failed: %v", err)
	}
	amir, err := core.AddRSVP(ctx, "Amir", "", "brixton", "Uni")
	if err != nil {
		t.Fatalf("add rsvp failed: %v", err)
	}
	refresh(t, core)

	req := httptest.NewRequest(http.MethodGet, "/api/plan", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var res struct {
		Unassigned []struct {
			ID string `json:"id"`
		} `json:"unassigned"`
		BySession map[string][]struct {
			ID string `json:"id"`
		} `json:"bySession"`
		Occupancy map[string]int `json:"occupancy"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(res.Unassigned) != 1 || res.Unassigned[0].ID != amir.ID.String() {
		t.Fatalf("expected amir unassigned, got %+v", res.Unassigned)
	}
	if guests := res.BySession["s2"]; len(guests) != 1 || guests[0].ID != jane.ID.String() {
		t.Fatalf("expected jane in s2, got %+v", res.BySession)
	}
	if res.Occupancy["s2"] != 1 {
		t.Fatalf("expected occupancy 1 for s2, got %d", res.Occupancy["s2"])
	}
}

func createRSVPWithCookie(t *testing.T, mux *gin.Engine, name string) (string, *http.Cookie) {
	t.Helper()
	body := `{"name":"` + name + `","stationId":"brixton","friendGroup":"Uni"}`
	req := httptest.NewRequest(http.MethodPost, "/api/rsvps", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var res struct {
		RSVP struct {
			ID string `json:"id"`
		} `json:"rsvp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookie {
			return res.RSVP.ID, cookie
		}
	}
	t.Fatal("no session cookie in response")
	return "", nil
}

func TestDeleteOtherGuestKeepsOwnSession(t *testing.T) {
	mux, _ := newTestRouter(t)

	janeID, janeCookie := createRSVPWithCookie(t, mux, "Jane")
	amirID, _ := createRSVPWithCookie(t, mux, "Amir")

	// Jane clears Amir off the board, anyone may do that.
	req := httptest.NewRequest(http.MethodDelete, "/api/rsvps/"+amirID, nil)
	req.AddCookie(janeCookie)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// Jane's own binding survives, /api/me still finds her RSVP.
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(janeCookie)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), janeID) {
		t.Errorf("expected jane's rsvp in body: %s", rec.Body.String())
	}
}

func TestDeleteOwnRSVPDropsSession(t *testing.T) {
	mux, _ := newTestRouter(t)

	janeID, janeCookie := createRSVPWithCookie(t, mux, "Jane")

	req := httptest.NewRequest(http.MethodDelete, "/api/rsvps/"+janeID, nil)
	req.AddCookie(janeCookie)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(janeCookie)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after own delete, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAssignBookingReadFailure(t *testing.T) {
	mux, _, bdb := newTestRouterDB(t)

	// A closed database makes the rsvp lookup fail with a real error, which
	// must not be mistaken for a missing rsvp.
	if err := bdb.Close(); err != nil {
		t.Fatalf("could not close db: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/rsvps/0eac703a-40f3-4318-ae96-f28e026a23c6/booking", strings.NewReader(`{"sessionId":"s1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "READ_FAILED") {
		t.Errorf("expected READ_FAILED in body: %s", rec.Body.String())
	}
}
