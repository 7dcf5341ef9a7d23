package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/tablebook/internal/application"
	"github.com/example/tablebook/internal/testfixtures"
)

const fixtureDate = "2026-09-05"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	service := application.NewBookingService(
		testfixtures.NewThreeTableRoster(),
		testfixtures.NewInMemoryBookings(),
		application.DefaultPolicy(),
		testfixtures.SequentialIDs("booking"),
		testfixtures.FixedClock(),
	)

	return NewRouter(RouterConfig{
		Bookings: NewBookingHandler(service, nil),
		Tables:   NewTableHandler(service, nil),
		Metrics:  MetricsHandler(),
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
}

func createFixtureBooking(t *testing.T, handler http.Handler, name string, partySize int, start, end string) {
	t.Helper()

	recorder := doJSON(t, handler, http.MethodPost, "/bookings", map[string]any{
		"date":       fixtureDate,
		"name":       name,
		"party_size": partySize,
		"start_time": start,
		"end_time":   end,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create booking: status %d body %s", recorder.Code, recorder.Body.String())
	}
}

func TestCreateBookingEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns the booking with its assigned table", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodPost, "/bookings", map[string]any{
			"date":             fixtureDate,
			"name":             "Anna",
			"party_size":       4,
			"start_time":       "19:00",
			"duration_minutes": 120,
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status %d body %s", recorder.Code, recorder.Body.String())
		}

		var response struct {
			Booking struct {
				Date      string `json:"date"`
				StartTime string `json:"start_time"`
				EndTime   string `json:"end_time"`
				TableID   int    `json:"table_id"`
			} `json:"booking"`
			Table struct {
				ID    int `json:"id"`
				Seats int `json:"seats"`
			} `json:"table"`
		}
		decodeBody(t, recorder, &response)

		if response.Table.ID != 2 || response.Table.Seats != 4 {
			t.Errorf("assigned table = %+v, want id 2 with 4 seats", response.Table)
		}
		if response.Booking.StartTime != "19:00" || response.Booking.EndTime != "21:00" {
			t.Errorf("window = %s-%s, want 19:00-21:00", response.Booking.StartTime, response.Booking.EndTime)
		}
	})

	t.Run("maps validation failures to field errors", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodPost, "/bookings", map[string]any{
			"date":       fixtureDate,
			"party_size": 0,
			"start_time": "7pm",
		})
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", recorder.Code)
		}

		var response struct {
			Errors map[string]string `json:"errors"`
		}
		decodeBody(t, recorder, &response)
		for _, field := range []string{"name", "party_size", "start_time"} {
			if _, ok := response.Errors[field]; !ok {
				t.Errorf("errors = %v, want entry for %q", response.Errors, field)
			}
		}
	})

	t.Run("reports a full house with a stable error code", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodPost, "/bookings", map[string]any{
			"date":       fixtureDate,
			"name":       "Banquet",
			"party_size": 50,
			"start_time": "19:00",
		})
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", recorder.Code)
		}

		var response struct {
			ErrorCode string `json:"error_code"`
			Message   string `json:"message"`
		}
		decodeBody(t, recorder, &response)
		if response.ErrorCode != "NO_TABLE_AVAILABLE" {
			t.Errorf("error_code = %q", response.ErrorCode)
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader([]byte("{not json")))
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("status %d, want 400", recorder.Code)
		}
	})
}

func TestListBookingsEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns bookings with their positional indexes", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)
		createFixtureBooking(t, handler, "Anna", 2, "18:00", "20:00")
		createFixtureBooking(t, handler, "Bo", 4, "19:00", "21:00")

		recorder := doJSON(t, handler, http.MethodGet, "/bookings?date="+fixtureDate, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status %d body %s", recorder.Code, recorder.Body.String())
		}

		var response struct {
			Bookings []struct {
				Index *int   `json:"index"`
				Name  string `json:"name"`
			} `json:"bookings"`
		}
		decodeBody(t, recorder, &response)
		if len(response.Bookings) != 2 {
			t.Fatalf("got %d bookings, want 2", len(response.Bookings))
		}
		if response.Bookings[0].Index == nil || *response.Bookings[0].Index != 0 {
			t.Errorf("first index = %v, want 0", response.Bookings[0].Index)
		}
		if response.Bookings[1].Name != "Bo" {
			t.Errorf("second booking = %q, want Bo", response.Bookings[1].Name)
		}
	})

	t.Run("requires a date parameter", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodGet, "/bookings", nil)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("status %d, want 400", recorder.Code)
		}
	})
}

func TestBookingByRefEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("fetches by date and index", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)
		createFixtureBooking(t, handler, "Anna", 2, "18:00", "20:00")

		recorder := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/bookings/%s/0", fixtureDate), nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status %d body %s", recorder.Code, recorder.Body.String())
		}

		var dto struct {
			Name      string `json:"name"`
			StartTime string `json:"start_time"`
		}
		decodeBody(t, recorder, &dto)
		if dto.Name != "Anna" || dto.StartTime != "18:00" {
			t.Errorf("booking = %+v", dto)
		}
	})

	t.Run("missing index maps to 404", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/bookings/%s/5", fixtureDate), nil)
		if recorder.Code != http.StatusNotFound {
			t.Errorf("status %d, want 404", recorder.Code)
		}
	})

	t.Run("delete cancels and repeated delete is 404", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)
		createFixtureBooking(t, handler, "Anna", 2, "18:00", "20:00")

		path := fmt.Sprintf("/bookings/%s/0", fixtureDate)
		deleted := doJSON(t, handler, http.MethodDelete, path, nil)
		if deleted.Code != http.StatusOK {
			t.Fatalf("delete status %d", deleted.Code)
		}
		var status struct {
			Status string `json:"status"`
		}
		decodeBody(t, deleted, &status)
		if status.Status != "ok" {
			t.Errorf("status = %q, want ok", status.Status)
		}
		if recorder := doJSON(t, handler, http.MethodDelete, path, nil); recorder.Code != http.StatusNotFound {
			t.Errorf("second delete status %d, want 404", recorder.Code)
		}
	})

	t.Run("non-numeric index is not routed", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodGet, "/bookings/"+fixtureDate+"/abc", nil)
		if recorder.Code != http.StatusNotFound {
			t.Errorf("status %d, want 404", recorder.Code)
		}
	})
}

func TestMoveAndSwapEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("move reassigns the booking", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)
		createFixtureBooking(t, handler, "Anna", 2, "19:00", "21:00")

		recorder := doJSON(t, handler, http.MethodPost, "/bookings/move_to_table", map[string]any{
			"date": fixtureDate, "booking_index": 0, "new_table_id": 3,
		})
		if recorder.Code != http.StatusOK {
			t.Fatalf("status %d body %s", recorder.Code, recorder.Body.String())
		}

		fetch := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/bookings/%s/0", fixtureDate), nil)
		var dto struct {
			TableID int `json:"table_id"`
		}
		decodeBody(t, fetch, &dto)
		if dto.TableID != 3 {
			t.Errorf("table_id = %d, want 3", dto.TableID)
		}
	})

	t.Run("move onto a too-small table reports capacity", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)
		createFixtureBooking(t, handler, "Anna", 4, "19:00", "21:00")

		recorder := doJSON(t, handler, http.MethodPost, "/bookings/move_to_table", map[string]any{
			"date": fixtureDate, "booking_index": 0, "new_table_id": 1,
		})
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", recorder.Code)
		}

		var response struct {
			ErrorCode string `json:"error_code"`
		}
		decodeBody(t, recorder, &response)
		if response.ErrorCode != "TABLE_TOO_SMALL" {
			t.Errorf("error_code = %q", response.ErrorCode)
		}
	})

	t.Run("swap exchanges assignments", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)
		createFixtureBooking(t, handler, "Anna", 4, "19:00", "21:00")
		createFixtureBooking(t, handler, "Bo", 4, "19:00", "21:00")

		recorder := doJSON(t, handler, http.MethodPost, "/bookings/swap_tables", map[string]any{
			"date": fixtureDate, "booking_index_1": 0, "booking_index_2": 1,
		})
		if recorder.Code != http.StatusOK {
			t.Fatalf("status %d body %s", recorder.Code, recorder.Body.String())
		}

		fetch := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/bookings/%s/0", fixtureDate), nil)
		var dto struct {
			TableID int `json:"table_id"`
		}
		decodeBody(t, fetch, &dto)
		if dto.TableID != 3 {
			t.Errorf("table_id = %d after swap, want 3", dto.TableID)
		}
	})

	t.Run("overlap on the target table reports occupancy", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)
		createFixtureBooking(t, handler, "Anna", 4, "19:00", "21:00")
		createFixtureBooking(t, handler, "Big", 6, "20:00", "22:00")

		recorder := doJSON(t, handler, http.MethodPost, "/bookings/move_to_table", map[string]any{
			"date": fixtureDate, "booking_index": 0, "new_table_id": 3,
		})
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", recorder.Code)
		}

		var response struct {
			ErrorCode string `json:"error_code"`
		}
		decodeBody(t, recorder, &response)
		if response.ErrorCode != "TABLE_OCCUPIED" {
			t.Errorf("error_code = %q", response.ErrorCode)
		}
	})
}

func TestEditBookingEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("applies partial updates", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)
		createFixtureBooking(t, handler, "Anna", 2, "18:00", "20:00")

		recorder := doJSON(t, handler, http.MethodPost, fmt.Sprintf("/bookings/%s/0/edit", fixtureDate), map[string]any{
			"start_time": "19:00",
		})
		if recorder.Code != http.StatusOK {
			t.Fatalf("status %d body %s", recorder.Code, recorder.Body.String())
		}

		var dto struct {
			StartTime string `json:"start_time"`
			EndTime   string `json:"end_time"`
			Name      string `json:"name"`
		}
		decodeBody(t, recorder, &dto)
		if dto.StartTime != "19:00" || dto.EndTime != "21:00" {
			t.Errorf("window = %s-%s, want 19:00-21:00", dto.StartTime, dto.EndTime)
		}
		if dto.Name != "Anna" {
			t.Errorf("name = %q, want untouched Anna", dto.Name)
		}
	})

	t.Run("edit form view returns the current record", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)
		createFixtureBooking(t, handler, "Anna", 2, "18:00", "20:00")

		recorder := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/bookings/%s/0/edit", fixtureDate), nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status %d body %s", recorder.Code, recorder.Body.String())
		}
	})
}

func TestAvailableTimesEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("lists open grid slots", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodGet,
			"/api/available-times?date="+fixtureDate+"&party_size=2&duration_minutes=120", nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status %d body %s", recorder.Code, recorder.Body.String())
		}

		var response struct {
			Times []string `json:"times"`
		}
		decodeBody(t, recorder, &response)
		if len(response.Times) == 0 {
			t.Fatal("expected open slots on an empty date")
		}
		if response.Times[0] != "17:00" {
			t.Errorf("first slot = %q, want 17:00", response.Times[0])
		}
	})

	t.Run("rejects a non-positive party size", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodGet, "/api/available-times?date="+fixtureDate, nil)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("status %d, want 400", recorder.Code)
		}
	})
}

func TestTableEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("lists the roster in id order", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodGet, "/tables", nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status %d", recorder.Code)
		}

		var response struct {
			Tables []struct {
				ID    int `json:"id"`
				Seats int `json:"seats"`
			} `json:"tables"`
		}
		decodeBody(t, recorder, &response)
		if len(response.Tables) != 3 {
			t.Fatalf("got %d tables, want 3", len(response.Tables))
		}
		if response.Tables[0].ID != 1 || response.Tables[2].ID != 3 {
			t.Errorf("roster order = %+v", response.Tables)
		}
	})

	t.Run("creates and updates roster entries", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		created := doJSON(t, handler, http.MethodPost, "/tables", map[string]any{
			"id": 4, "name": "patio", "seats": 8,
		})
		if created.Code != http.StatusCreated {
			t.Fatalf("create status %d body %s", created.Code, created.Body.String())
		}

		updated := doJSON(t, handler, http.MethodPut, "/tables/4", map[string]any{
			"name": "patio", "seats": 10,
		})
		if updated.Code != http.StatusOK {
			t.Fatalf("update status %d body %s", updated.Code, updated.Body.String())
		}

		var dto struct {
			Seats int `json:"seats"`
		}
		decodeBody(t, updated, &dto)
		if dto.Seats != 10 {
			t.Errorf("seats = %d, want 10", dto.Seats)
		}
	})

	t.Run("updating an unknown table maps to 404", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodPut, "/tables/99", map[string]any{"seats": 4})
		if recorder.Code != http.StatusNotFound {
			t.Errorf("status %d, want 404", recorder.Code)
		}
	})
}

func TestRouterPlumbing(t *testing.T) {
	t.Parallel()

	t.Run("healthz responds ok", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodGet, "/healthz", nil)
		if recorder.Code != http.StatusOK {
			t.Errorf("status %d, want 200", recorder.Code)
		}
	})

	t.Run("unsupported methods advertise allowed verbs", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodPut, "/bookings", nil)
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status %d, want 405", recorder.Code)
		}
		if allow := recorder.Header().Get("Allow"); allow == "" {
			t.Error("missing Allow header")
		}
	})

	t.Run("metrics endpoint is served", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t)

		recorder := doJSON(t, handler, http.MethodGet, "/metrics", nil)
		if recorder.Code != http.StatusOK {
			t.Errorf("status %d, want 200", recorder.Code)
		}
	})
}

func TestHandlerLogging(t *testing.T) {
	newLoggedServer := func(t *testing.T) (http.Handler, *bytes.Buffer) {
		t.Helper()

		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		service := application.NewBookingService(
			testfixtures.NewThreeTableRoster(),
			testfixtures.NewInMemoryBookings(),
			application.DefaultPolicy(),
			testfixtures.SequentialIDs("booking"),
			testfixtures.FixedClock(),
		)
		return NewRouter(RouterConfig{
			Bookings: NewBookingHandler(service, logger),
			Tables:   NewTableHandler(service, logger),
			Metrics:  MetricsHandler(),
		}), &buf
	}

	t.Run("create tags handler and operation", func(t *testing.T) {
		handler, buf := newLoggedServer(t)

		recorder := doJSON(t, handler, http.MethodPost, "/bookings", map[string]any{
			"date":       fixtureDate,
			"name":       "Anna",
			"party_size": 4,
			"start_time": "19:00",
			"end_time":   "21:00",
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status %d, body %s", recorder.Code, recorder.Body.String())
		}

		logged := buf.String()
		for _, want := range []string{`"handler":"BookingHandler"`, `"operation":"Create"`, "booking created"} {
			if !strings.Contains(logged, want) {
				t.Errorf("log output missing %q in %s", want, logged)
			}
		}
	})

	t.Run("malformed move body is logged", func(t *testing.T) {
		handler, buf := newLoggedServer(t)

		req := httptest.NewRequest(http.MethodPost, "/bookings/move_to_table", strings.NewReader("{"))
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", recorder.Code)
		}

		logged := buf.String()
		for _, want := range []string{"failed to decode move request", `"error_kind":"bad_request"`} {
			if !strings.Contains(logged, want) {
				t.Errorf("log output missing %q in %s", want, logged)
			}
		}
	})

	t.Run("table update logs outcome", func(t *testing.T) {
		handler, buf := newLoggedServer(t)

		recorder := doJSON(t, handler, http.MethodPut, "/tables/1", map[string]any{
			"name":  "window",
			"seats": 4,
		})
		if recorder.Code != http.StatusOK {
			t.Fatalf("status %d, body %s", recorder.Code, recorder.Body.String())
		}

		logged := buf.String()
		for _, want := range []string{`"handler":"TableHandler"`, `"operation":"Update"`, "table updated"} {
			if !strings.Contains(logged, want) {
				t.Errorf("log output missing %q in %s", want, logged)
			}
		}
	})
}
