package booking

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newBackend(t *testing.T, h func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(raw)})
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", nil), &calls
}

func TestListRestaurants(t *testing.T) {
	c, calls := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Cafe"}]`))
	})

	res, err := c.ListRestaurants(context.Background())
	require.NoError(t, err)
	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Cafe"}]`, string(out))
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodGet, (*calls)[0].method)
	assert.Equal(t, "/api/restaurants", (*calls)[0].path)
}

func TestListRestaurantsStatusErrorSkipsBody(t *testing.T) {
	c, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "database down", http.StatusInternalServerError)
	})

	_, err := c.ListRestaurants(context.Background())
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 500, serr.Code)
	assert.Equal(t, "Internal Server Error", serr.Status)
	assert.Empty(t, serr.Body)
}

func TestCreateBookingSendsAllFields(t *testing.T) {
	c, calls := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":42}`))
	})

	res, err := c.CreateBooking(context.Background(), NewBooking{
		RestaurantID:  1,
		TableID:       3,
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "555-0100",
		BookingDate:   "2026-11-01",
		BookingTime:   "19:30",
		PartySize:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": json.Number("42")}, res)

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPost, (*calls)[0].method)
	assert.Equal(t, "/api/bookings", (*calls)[0].path)
	assert.JSONEq(t, `{
		"restaurantId": 1, "tableId": 3, "customerName": "Ada",
		"customerEmail": "ada@example.com", "customerPhone": "555-0100",
		"bookingDate": "2026-11-01", "bookingTime": "19:30",
		"partySize": 2, "specialRequests": ""
	}`, (*calls)[0].body)
}

func TestCreateBookingStatusErrorKeepsBody(t *testing.T) {
	c, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"table taken"}`))
	})

	_, err := c.CreateBooking(context.Background(), NewBooking{})
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 400, serr.Code)
	assert.Equal(t, `{"error":"table taken"}`, serr.Body)
}

func TestUpdateBookingSendsSparsePatch(t *testing.T) {
	c, calls := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":7}`))
	})

	p := NewPatch()
	p.Set("partySize", float64(0))
	p.Set("specialRequests", "")
	_, err := c.UpdateBooking(context.Background(), 7, p)
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPut, (*calls)[0].method)
	assert.Equal(t, "/api/bookings/7", (*calls)[0].path)
	assert.JSONEq(t, `{"partySize":0,"specialRequests":""}`, (*calls)[0].body)
}

func TestGetBookingEmptyBodyIsError(t *testing.T) {
	c, calls := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	res, err := c.GetBooking(context.Background(), 12)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "decode response: empty body", err.Error())
	var serr *StatusError
	assert.False(t, errors.As(err, &serr))
	assert.Equal(t, "/api/bookings/12", (*calls)[0].path)
}

func TestCreateBookingMalformedBodyIsError(t *testing.T) {
	c, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	})

	_, err := c.CreateBooking(context.Background(), NewBooking{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL, nil)

	_, err := c.GetBooking(context.Background(), 1)
	require.Error(t, err)
	var serr *StatusError
	assert.False(t, errors.As(err, &serr))
}

func TestPatch(t *testing.T) {
	p := NewPatch()
	assert.Equal(t, 0, p.Len())
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))

	p.Set("tableId", float64(5))
	p.Set("customerName", "")
	assert.True(t, p.Has("customerName"))
	assert.False(t, p.Has("bookingDate"))
	assert.Equal(t, []string{"customerName", "tableId"}, p.Fields())
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "7", FormatID(7))
	assert.Equal(t, "7.5", FormatID(7.5))
}
