package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/steermate/steermate-backend-go/internal/config"
	"github.com/steermate/steermate-backend-go/internal/database/dbtest"
	"github.com/steermate/steermate-backend-go/internal/inference"
	"github.com/steermate/steermate-backend-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			Issuer:     "steermate",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
		CORS:      config.CORSConfig{AllowOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T, classifier inference.Classifier) *testAPI {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	r := SetupRouter(ctx, Dependencies{
		Config:     testConfig(),
		DB:         dbtest.New(t),
		Logger:     zap.NewNop(),
		Classifier: classifier,
	})
	return &testAPI{t: t, router: r}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testAPI) do(req *http.Request, token string) (int, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *testAPI) call(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

// login registers email and returns an access token.
func (a *testAPI) login(email string) string {
	a.t.Helper()
	code, _ := a.call(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": email, "password": "secret123", "name": "Driver",
	})
	require.Equal(a.t, http.StatusCreated, code)

	code, env := a.call(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": email, "password": "secret123",
	})
	require.Equal(a.t, http.StatusOK, code)
	tok := decode[models.Token](a.t, env)
	require.Equal(a.t, "bearer", tok.TokenType)
	return tok.AccessToken
}

func tripPayload(events ...string) gin.H {
	evs := make([]gin.H, 0, len(events))
	for _, typ := range events {
		evs = append(evs, gin.H{
			"event_type": typ,
			"timestamp":  "2024-06-01T08:05:00Z",
			"lat":        40.7128,
			"lon":        -74.006,
			"speed_m_s":  20,
			"accel_m_s2": -5,
		})
	}
	return gin.H{
		"start_time":       "2024-06-01T08:00:00Z",
		"end_time":         "2024-06-01T09:00:00Z",
		"duration_seconds": 3600,
		"distance_m":       50000,
		"avg_speed_m_s":    13.89,
		"max_speed_m_s":    25,
		"unsafe_events":    len(events),
		"events":           evs,
		"sign_detections": []gin.H{{
			"ts":         "2024-06-01T08:10:00Z",
			"class_name": "stop",
			"confidence": 0.98765,
			"bbox":       gin.H{"x": 10, "y": 20, "w": 30, "h": 40},
		}},
	}
}

func TestRootAndHealth(t *testing.T) {
	a := newTestAPI(t, nil)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SteerMate API")

	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestTripLifecycle(t *testing.T) {
	a := newTestAPI(t, nil)
	token := a.login("driver@example.com")

	code, env := a.call(http.MethodPost, "/api/v1/trips/upload", token, tripPayload("hard_brake"))
	require.Equal(t, http.StatusCreated, code, env.Message)
	trip := decode[models.Trip](t, env)
	require.NotZero(t, trip.ID)
	require.Len(t, trip.Events, 1)
	assert.NotZero(t, trip.Events[0].ID)
	require.Len(t, trip.SignDetections, 1)

	code, env = a.call(http.MethodGet, fmt.Sprintf("/api/v1/trips/%d", trip.ID), token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, trip.ID, decode[models.Trip](t, env).ID)

	code, env = a.call(http.MethodGet, fmt.Sprintf("/api/v1/reports/%d", trip.ID), token, nil)
	require.Equal(t, http.StatusOK, code)
	report := decode[models.TripReport](t, env)
	assert.Equal(t, 50.0, report.Summary.DistanceKm)
	assert.Equal(t, 50.0, report.Summary.AvgSpeedKmh)
	assert.Equal(t, 90.0, report.Summary.MaxSpeedKmh)
	require.Len(t, report.Events, 1)
	assert.Equal(t, 72.0, report.Events[0].SpeedKmh)
	assert.Equal(t, -5.0, report.Events[0].Acceleration)
	require.Len(t, report.SignDetections, 1)
	assert.Equal(t, 0.988, report.SignDetections[0].Confidence)
	assert.Equal(t, "stop", report.SignDetections[0].Class)
	assert.Equal(t, map[string]int{"hard_brake": 1}, report.Analytics.EventBreakdown)
	assert.Len(t, report.Analytics.Recommendations, 1)

	code, env = a.call(http.MethodGet, "/api/v1/trips?skip=0&limit=10", token, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[models.TripsResponse](t, env)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 10, list.Limit)
	require.Len(t, list.Data, 1)
	assert.Len(t, list.Data[0].Events, 1)

	code, env = a.call(http.MethodGet, "/api/v1/reports/analytics/trends", token, nil)
	require.Equal(t, http.StatusOK, code)
	trends := decode[models.TripTrends](t, env)
	assert.Equal(t, 1, trends.TotalTrips)
	assert.Equal(t, 50.0, trends.TotalDistanceKm)

	code, env = a.call(http.MethodGet, "/api/v1/users/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	profile := decode[map[string]any](t, env)
	assert.Equal(t, "driver@example.com", profile["email"])
	assert.NotContains(t, profile, "password_hash")
}

func TestOwnershipIsolation(t *testing.T) {
	a := newTestAPI(t, nil)
	bob := a.login("bob@example.com")
	alice := a.login("alice@example.com")

	code, env := a.call(http.MethodPost, "/api/v1/trips/upload", bob, tripPayload("overspeed"))
	require.Equal(t, http.StatusCreated, code)
	tripID := decode[models.Trip](t, env).ID

	code, _ = a.call(http.MethodGet, fmt.Sprintf("/api/v1/trips/%d", tripID), alice, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.call(http.MethodGet, fmt.Sprintf("/api/v1/reports/%d", tripID), alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = a.call(http.MethodGet, "/api/v1/trips", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[models.TripsResponse](t, env).Data)

	code, env = a.call(http.MethodGet, "/api/v1/reports/analytics/trends", alice, nil)
	require.Equal(t, http.StatusOK, code)
	trends := decode[models.TripTrends](t, env)
	assert.Zero(t, trends.TotalTrips)
	assert.Zero(t, trends.AvgUnsafeEvents)
	assert.Zero(t, trends.TotalDistanceKm)
	assert.Empty(t, trends.RecentTrips)
}

func TestUploadValidation(t *testing.T) {
	a := newTestAPI(t, nil)
	token := a.login("driver@example.com")

	tests := []struct {
		name   string
		mutate func(gin.H)
	}{
		{"missing distance", func(p gin.H) { delete(p, "distance_m") }},
		{"null start", func(p gin.H) { p["start_time"] = nil }},
		{"negative duration", func(p gin.H) { p["duration_seconds"] = -1 }},
		{"confidence above one", func(p gin.H) {
			p["sign_detections"].([]gin.H)[0]["confidence"] = 1.5
		}},
		{"event without type", func(p gin.H) {
			p["events"].([]gin.H)[0]["event_type"] = ""
		}},
		{"latitude out of range", func(p gin.H) {
			p["events"].([]gin.H)[0]["lat"] = 123.0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tripPayload("hard_brake")
			tt.mutate(p)
			code, _ := a.call(http.MethodPost, "/api/v1/trips/upload", token, p)
			assert.Equal(t, http.StatusUnprocessableEntity, code)
		})
	}

	code, env := a.call(http.MethodGet, "/api/v1/trips", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Zero(t, decode[models.TripsResponse](t, env).Total)

	code, _ = a.call(http.MethodGet, "/api/v1/trips?limit=5000", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = a.call(http.MethodGet, "/api/v1/reports/analytics/trends?limit=0", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = a.call(http.MethodGet, "/api/v1/trips/abc", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestUploadAcceptsTimestampsWithoutOffset(t *testing.T) {
	a := newTestAPI(t, nil)
	token := a.login("driver@example.com")

	p := tripPayload("hard_brake")
	p["start_time"] = "2024-06-01T08:00:00.123456"
	p["end_time"] = "2024-06-01T09:00:00.123456"
	p["events"].([]gin.H)[0]["timestamp"] = "2024-06-01T08:05:00.5"
	p["sign_detections"].([]gin.H)[0]["ts"] = "2024-06-01T08:10:00"

	code, env := a.call(http.MethodPost, "/api/v1/trips/upload", token, p)
	require.Equal(t, http.StatusCreated, code, env.Message)

	trip := decode[models.Trip](t, env)
	require.NotNil(t, trip.StartTime)
	assert.True(t, time.Date(2024, 6, 1, 8, 0, 0, 123456000, time.UTC).Equal(*trip.StartTime))
	require.Len(t, trip.Events, 1)
	assert.True(t, time.Date(2024, 6, 1, 8, 5, 0, 500000000, time.UTC).Equal(*trip.Events[0].Timestamp))

	p = tripPayload("hard_brake")
	p["start_time"] = "last tuesday"
	code, _ = a.call(http.MethodPost, "/api/v1/trips/upload", token, p)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestAuthErrors(t *testing.T) {
	a := newTestAPI(t, nil)
	a.login("driver@example.com")

	code, _ := a.call(http.MethodGet, "/api/v1/trips", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = a.call(http.MethodGet, "/api/v1/users/profile", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.call(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "driver@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.call(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "not-an-email", "password": "secret123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = a.call(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "driver@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func imageUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "sign.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, image.NewRGBA(image.Rect(0, 0, 32, 32))))
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestPredictSignDisabled(t *testing.T) {
	a := newTestAPI(t, nil)
	token := a.login("driver@example.com")

	body, contentType := imageUpload(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/predict_sign", body)
	req.Header.Set("Content-Type", contentType)
	code, _ := a.do(req, token)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestPredictSignStub(t *testing.T) {
	a := newTestAPI(t, inference.NewStubClassifier(rand.NewPCG(7, 11)))
	token := a.login("driver@example.com")

	body, contentType := imageUpload(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/predict_sign", body)
	req.Header.Set("Content-Type", contentType)
	code, env := a.do(req, token)
	require.Equal(t, http.StatusOK, code, env.Message)

	p := decode[models.SignPrediction](t, env)
	assert.True(t, models.KnownSignLabel(p.Class))
	assert.Equal(t, []float64{0.1, 0.1, 0.9, 0.9}, p.BBox)

	var bad bytes.Buffer
	mw := multipart.NewWriter(&bad)
	part, err := mw.CreateFormFile("file", "sign.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("not an image"))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/api/v1/reports/predict_sign", &bad)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, _ = a.do(req, token)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestPredictSignRejectsOversizedUpload(t *testing.T) {
	a := newTestAPI(t, inference.NewStubClassifier(rand.NewPCG(1, 1)))
	token := a.login("driver@example.com")

	// one just over the image limit, one over the whole-body cap
	for _, size := range []int{10<<20 + 512<<10, 12 << 20} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			part, err := mw.CreateFormFile("file", "huge.png")
			require.NoError(t, err)
			_, err = part.Write(bytes.Repeat([]byte{0}, size))
			require.NoError(t, err)
			require.NoError(t, mw.Close())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/predict_sign", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			code, _ := a.do(req, token)
			assert.Equal(t, http.StatusRequestEntityTooLarge, code)
		})
	}
}
