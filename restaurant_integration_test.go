package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/gourmet-house/config"
	"github.com/yeremiapane/gourmet-house/database"
	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/realtime"
	"github.com/yeremiapane/gourmet-house/router"
	"github.com/yeremiapane/gourmet-house/services"
	"github.com/yeremiapane/gourmet-house/testutil"
	"github.com/yeremiapane/gourmet-house/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger("error", "text")
	os.Exit(m.Run())
}

type testApp struct {
	router   *gin.Engine
	store    *database.Store
	notifier *testutil.RecordingNotifier
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	store := testutil.NewStore(t)

	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	cfg.RateLimit.Enabled = false
	cfg.Cache.Enabled = false
	cfg.App.StaticDir = ""

	auth, err := services.NewAuthService("admin", "", "secret123", utils.NewTokenManager("test-secret", time.Hour))
	require.NoError(t, err)

	notifier := &testutil.RecordingNotifier{}
	r := router.SetupRouter(router.Deps{
		Config:   &cfg,
		Store:    store,
		Hub:      realtime.NewHub(),
		Notifier: notifier,
		Auth:     auth,
	})
	return &testApp{router: r, store: store, notifier: notifier}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func nextWeek() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format(models.DateLayout)
}

func TestBookingFlow(t *testing.T) {
	app := setupApp(t)
	date := nextWeek()

	payload := map[string]interface{}{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"phone":   "555-0100",
		"date":    date,
		"time":    "7:30 PM",
		"guests":  4,
		"message": "Window seat",
	}

	w := app.do(t, http.MethodPost, "/api/bookings", payload, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Booking created successfully", body["message"])
	assert.IsType(t, float64(0), body["bookingId"])
	assert.NotZero(t, body["bookingId"])

	details := body["bookingDetails"].(map[string]interface{})
	assert.Equal(t, body["bookingId"], details["id"])
	assert.Equal(t, "Jane Doe", details["name"])
	assert.EqualValues(t, 4, details["guests"])
	assert.Equal(t, date, details["date"])
	assert.Equal(t, "19:30", details["time"])
	assert.Equal(t, "pending", details["status"])
	assert.Equal(t, []string{models.EventBookingCreated}, app.notifier.Types())

	// Same slot written in 24h form.
	payload["time"] = "19:30"
	payload["email"] = "other@example.com"
	w = app.do(t, http.MethodPost, "/api/bookings", payload, "")
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, "Booking conflict - this time slot may already be taken", decode(t, w)["error"])

	payload["time"] = "20:00"
	w = app.do(t, http.MethodPost, "/api/bookings", payload, "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBookingValidation(t *testing.T) {
	app := setupApp(t)

	cases := []struct {
		name    string
		payload map[string]interface{}
		errMsg  string
	}{
		{
			name:    "missing name",
			payload: map[string]interface{}{"email": "a@b.co", "date": nextWeek(), "time": "18:00", "guests": 2},
			errMsg:  "Invalid input",
		},
		{
			name:    "too many guests",
			payload: map[string]interface{}{"name": "Al", "email": "a@b.co", "date": nextWeek(), "time": "18:00", "guests": 21},
			errMsg:  "Invalid input",
		},
		{
			name:    "past date",
			payload: map[string]interface{}{"name": "Al", "email": "a@b.co", "date": "2020-01-01", "time": "18:00", "guests": 2},
			errMsg:  "Invalid booking date",
		},
		{
			name:    "bad time",
			payload: map[string]interface{}{"name": "Al", "email": "a@b.co", "date": nextWeek(), "time": "25:00", "guests": 2},
			errMsg:  "Invalid time format",
		},
		{
			name:    "bad date",
			payload: map[string]interface{}{"name": "Al", "email": "a@b.co", "date": "next friday", "time": "18:00", "guests": 2},
			errMsg:  "Invalid date format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/bookings", tc.payload, "")
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tc.errMsg, decode(t, w)["error"])
		})
	}
	assert.Empty(t, app.notifier.Types())
}

func TestMalformedJSONBody(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Invalid input", body["error"])
	assert.NotEmpty(t, body["details"])

	w = app.do(t, http.MethodPost, "/api/subscribers", map[string]interface{}{"email": 42}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid input", decode(t, w)["error"])
}

func TestSubscriberLifecycle(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodPost, "/api/subscribers", map[string]string{"email": " News@Example.com "}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "Successfully subscribed to newsletter", created["message"])
	id := created["subscriberId"]

	w = app.do(t, http.MethodPost, "/api/subscribers", map[string]string{"email": "news@example.com"}, "")
	require.Equal(t, http.StatusConflict, w.Code)
	conflict := decode(t, w)
	assert.Equal(t, "Email already subscribed", conflict["error"])
	assert.Equal(t, id, conflict["subscriberId"])

	w = app.do(t, http.MethodPost, "/api/subscribers/unsubscribe", map[string]string{"email": "news@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully unsubscribed", decode(t, w)["message"])

	// Unsubscribing twice is harmless.
	w = app.do(t, http.MethodPost, "/api/subscribers/unsubscribe", map[string]string{"email": "news@example.com"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/subscribers", map[string]string{"email": "news@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	reactivated := decode(t, w)
	assert.Equal(t, "Subscription reactivated", reactivated["message"])
	assert.Equal(t, id, reactivated["subscriberId"])

	w = app.do(t, http.MethodPost, "/api/subscribers/unsubscribe", map[string]string{"email": "nobody@example.com"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodPost, "/api/subscribers", map[string]string{"email": "not-an-email"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid input", decode(t, w)["error"])
}

func TestCatalogListings(t *testing.T) {
	app := setupApp(t)
	require.NoError(t, app.store.Seed(context.Background()))

	var menu []models.MenuItem
	w := app.do(t, http.MethodGet, "/api/menu", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &menu))
	assert.NotEmpty(t, menu)

	w = app.do(t, http.MethodGet, "/api/menu?category=pizza", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid category", decode(t, w)["error"])

	var gallery []models.GalleryItem
	w = app.do(t, http.MethodGet, "/api/gallery?category=all", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gallery))
	assert.NotEmpty(t, gallery)

	var specials []models.Special
	w = app.do(t, http.MethodGet, "/api/specials", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &specials))
	for _, s := range specials {
		assert.True(t, s.IsActive)
	}
}

func TestAdminFlow(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodPost, "/api/bookings", map[string]interface{}{
		"name": "Sam", "email": "sam@example.com", "date": nextWeek(), "time": "18:00", "guests": 2,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bookingID := int(decode(t, w)["bookingId"].(float64))

	w = app.do(t, http.MethodGet, "/api/admin/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	token := data["token"].(string)
	require.NotEmpty(t, token)

	w = app.do(t, http.MethodGet, "/api/admin/bookings?status=pending", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	assert.Equal(t, true, list["status"])
	assert.Len(t, list["data"], 1)

	path := "/api/admin/bookings/" + strconv.Itoa(bookingID) + "/status"
	w = app.do(t, http.MethodPatch, path, map[string]string{"status": "confirmed"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodPatch, path, map[string]string{"status": "maybe"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPatch, "/api/admin/bookings/9999/status", map[string]string{"status": "cancelled"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodGet, "/api/admin/subscribers?active=yes", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, []string{models.EventBookingCreated, models.EventBookingStatusChanged}, app.notifier.Types())
}

func TestOpsEndpointsAndFallbacks(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = app.do(t, http.MethodGet, "/api/test", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "API is working", decode(t, w)["status"])

	w = app.do(t, http.MethodGet, "/api/debug", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sqlite", decode(t, w)["database"].(map[string]interface{})["driver"])

	w = app.do(t, http.MethodGet, "/api/nothing-here", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decode(t, w)["error"])

	w = app.do(t, http.MethodGet, "/api/bookings", nil, "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", decode(t, w)["error"])

	w = app.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
