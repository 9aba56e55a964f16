package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	httperr "github.com/envmon-lab/env-server/internal/core/errors"
	"github.com/envmon-lab/env-server/internal/core/resolution"
	"github.com/envmon-lab/env-server/internal/core/storage"
)

type insertedReading struct {
	timestamp  int64
	locationID int64
	sensorID   int64
	value      float64
}

// fakeStore implements storage.DictionaryStore and storage.ReadingStore
// backed by in-memory maps.
type fakeStore struct {
	locations   map[string]int64
	sensors     map[string]int64
	registerErr error
	insertErr   error
	inserted    []insertedReading
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		locations: map[string]int64{"living-room": 1, "outside": 2},
		sensors:   map[string]int64{"temperature": 1, "humidity": 2},
	}
}

func (f *fakeStore) ResolveLocation(_ context.Context, name string) (int64, error) {
	id, ok := f.locations[name]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return id, nil
}

func (f *fakeStore) ResolveSensor(_ context.Context, name string) (int64, error) {
	id, ok := f.sensors[name]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return id, nil
}

func (f *fakeStore) RegisterLocation(_ context.Context, name string) (int64, error) {
	if f.registerErr != nil {
		return 0, f.registerErr
	}
	if id, ok := f.locations[name]; ok {
		return id, nil
	}
	id := int64(len(f.locations) + 1)
	f.locations[name] = id
	return id, nil
}

func (f *fakeStore) RegisterSensor(_ context.Context, name string) (int64, error) {
	if f.registerErr != nil {
		return 0, f.registerErr
	}
	if id, ok := f.sensors[name]; ok {
		return id, nil
	}
	id := int64(len(f.sensors) + 1)
	f.sensors[name] = id
	return id, nil
}

func (f *fakeStore) InsertReading(_ context.Context, timestamp, locationID, sensorID int64, value float64) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, insertedReading{timestamp, locationID, sensorID, value})
	return nil
}

func (f *fakeStore) QueryBuckets(context.Context, int64, int64, int64, int64, resolution.BucketFormat) ([]storage.Bucket, error) {
	return nil, nil
}

func newTestRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewService(store, store, 1).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeErrorResponse(t *testing.T, resp *httptest.ResponseRecorder) httperr.ErrorResponse {
	t.Helper()
	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	return errResp
}

func TestPutLocationHandler_Success(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store)

	resp := doJSON(t, r, http.MethodPut, "/api/v0/location", []byte(`{"location":"garage"}`))

	require.Equal(t, http.StatusOK, resp.Code)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "ok", result["status"])
	require.Contains(t, store.locations, "garage")
}

func TestPutLocationHandler_IdempotentOnExistingName(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store)

	first := doJSON(t, r, http.MethodPut, "/api/v0/location", []byte(`{"location":"living-room"}`))
	second := doJSON(t, r, http.MethodPut, "/api/v0/location", []byte(`{"location":"living-room"}`))

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, int64(1), store.locations["living-room"])
}

func TestPutLocationHandler_InvalidJSON(t *testing.T) {
	r := newTestRouter(newFakeStore())

	resp := doJSON(t, r, http.MethodPut, "/api/v0/location", []byte(`not json`))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, httperr.HttpInvalidJsonError, decodeErrorResponse(t, resp).ErrorType)
}

func TestPutLocationHandler_MissingName(t *testing.T) {
	r := newTestRouter(newFakeStore())

	resp := doJSON(t, r, http.MethodPut, "/api/v0/location", []byte(`{}`))

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPutLocationHandler_StoreError(t *testing.T) {
	store := newFakeStore()
	store.registerErr = errors.New("connection refused")
	r := newTestRouter(store)

	resp := doJSON(t, r, http.MethodPut, "/api/v0/location", []byte(`{"location":"garage"}`))

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.Equal(t, httperr.HttpInternalError, decodeErrorResponse(t, resp).ErrorType)
}

func TestPutSensorHandler_Success(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store)

	resp := doJSON(t, r, http.MethodPut, "/api/v0/sensor", []byte(`{"sensor":"co2"}`))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, store.sensors, "co2")
}

func TestPutDataHandler_Success(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store)

	body := []byte(`{"unix_timestamp":1700000000,"location":"living-room","sensor":"temperature","value":21.5}`)
	resp := doJSON(t, r, http.MethodPut, "/api/v0/data", body)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, store.inserted, 1)
	require.Equal(t, insertedReading{1700000000, 1, 1, 21.5}, store.inserted[0])
}

func TestPutDataHandler_UnknownLocation(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store)

	body := []byte(`{"unix_timestamp":1700000000,"location":"attic","sensor":"temperature","value":21.5}`)
	resp := doJSON(t, r, http.MethodPut, "/api/v0/data", body)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, httperr.HttpUnknownNameError, decodeErrorResponse(t, resp).ErrorType)
	require.Empty(t, store.inserted, "write must not be attempted for unknown names")
}

func TestPutDataHandler_UnknownSensor(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store)

	body := []byte(`{"unix_timestamp":1700000000,"location":"living-room","sensor":"pressure","value":1013.0}`)
	resp := doJSON(t, r, http.MethodPut, "/api/v0/data", body)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, httperr.HttpUnknownNameError, decodeErrorResponse(t, resp).ErrorType)
	require.Empty(t, store.inserted)
}

func TestPutDataHandler_Duplicate(t *testing.T) {
	store := newFakeStore()
	store.insertErr = storage.ErrDuplicate
	r := newTestRouter(store)

	body := []byte(`{"unix_timestamp":1700000000,"location":"living-room","sensor":"temperature","value":21.5}`)
	resp := doJSON(t, r, http.MethodPut, "/api/v0/data", body)

	require.Equal(t, http.StatusConflict, resp.Code)
	require.Equal(t, httperr.HttpDuplicateReading, decodeErrorResponse(t, resp).ErrorType)
}

func TestPutDataHandler_StoreError(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("disk full")
	r := newTestRouter(store)

	body := []byte(`{"unix_timestamp":1700000000,"location":"living-room","sensor":"temperature","value":21.5}`)
	resp := doJSON(t, r, http.MethodPut, "/api/v0/data", body)

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.Equal(t, httperr.HttpInternalError, decodeErrorResponse(t, resp).ErrorType)
}

func TestBindJSON_BodyTooLarge(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store)

	oversized := bytes.Repeat([]byte("x"), 2*1024*1024)
	resp := doJSON(t, r, http.MethodPut, "/api/v0/location", oversized)

	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}
