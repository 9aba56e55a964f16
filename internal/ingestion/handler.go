package ingestion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	httperr "github.com/envmon-lab/env-server/internal/core/errors"
	"github.com/envmon-lab/env-server/internal/core/storage"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed   = "Failed to read request body"
	msgInvalidJSON      = "Invalid JSON body"
	msgPersistFailed    = "Failed to persist"
	msgDuplicateReading = "Reading already exists"
)

// apiError carries the structured HTTP error shape from a helper back to the
// handler. Helpers return this instead of writing to gin.Context directly,
// keeping them decoupled from HTTP.
type apiError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *apiError) Error() string {
	return e.message
}

// LocationInput is the body of PUT /api/v0/location.
type LocationInput struct {
	Location string `json:"location" binding:"required"`
}

// SensorInput is the body of PUT /api/v0/sensor.
type SensorInput struct {
	Sensor string `json:"sensor" binding:"required"`
}

// ReadingInput is the body of PUT /api/v0/data.
type ReadingInput struct {
	UnixTimestamp int64   `json:"unix_timestamp"`
	Location      string  `json:"location" binding:"required"`
	Sensor        string  `json:"sensor" binding:"required"`
	Value         float64 `json:"value"`
}

// PutLocationHandler registers a location name. Idempotent: an existing name
// succeeds and returns the surviving id.
func (s *Service) PutLocationHandler(c *gin.Context) {
	var input LocationInput
	if err := s.bindJSON(c, &input); err != nil {
		writeError(c, err)
		return
	}

	id, err := s.dict.RegisterLocation(c.Request.Context(), input.Location)
	if err != nil {
		slog.Error("Failed to register location", "location", input.Location, "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		})
		return
	}

	slog.Info("Registered location", "location", input.Location, "location_id", id)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": id})
}

// PutSensorHandler registers a sensor name with the same semantics.
func (s *Service) PutSensorHandler(c *gin.Context) {
	var input SensorInput
	if err := s.bindJSON(c, &input); err != nil {
		writeError(c, err)
		return
	}

	id, err := s.dict.RegisterSensor(c.Request.Context(), input.Sensor)
	if err != nil {
		slog.Error("Failed to register sensor", "sensor", input.Sensor, "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		})
		return
	}

	slog.Info("Registered sensor", "sensor", input.Sensor, "sensor_id", id)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": id})
}

// PutDataHandler ingests one reading. Both names must already be registered;
// the write path never auto-registers.
func (s *Service) PutDataHandler(c *gin.Context) {
	var input ReadingInput
	if err := s.bindJSON(c, &input); err != nil {
		writeError(c, err)
		return
	}

	if err := s.writeReading(c.Request.Context(), input); err != nil {
		writeError(c, err)
		return
	}

	slog.Info("Ingested reading",
		"location", input.Location,
		"sensor", input.Sensor,
		"timestamp", input.UnixTimestamp)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeReading resolves both names and appends the row in a single insert.
func (s *Service) writeReading(ctx context.Context, input ReadingInput) *apiError {
	locationID, err := s.dict.ResolveLocation(ctx, input.Location)
	if err != nil {
		return classifyResolveError(err, "location", input.Location)
	}

	sensorID, err := s.dict.ResolveSensor(ctx, input.Sensor)
	if err != nil {
		return classifyResolveError(err, "sensor", input.Sensor)
	}

	if err := s.readings.InsertReading(ctx, input.UnixTimestamp, locationID, sensorID, input.Value); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			slog.Info("Duplicate reading rejected",
				"location", input.Location,
				"sensor", input.Sensor,
				"timestamp", input.UnixTimestamp)
			return &apiError{
				statusCode: http.StatusConflict,
				errorType:  httperr.HttpDuplicateReading,
				message:    msgDuplicateReading,
			}
		}

		slog.Error("Failed to persist reading", "error", err)
		return &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		}
	}

	return nil
}

func classifyResolveError(err error, kind, name string) *apiError {
	if errors.Is(err, storage.ErrNotFound) {
		slog.Warn("Write rejected for unknown name", "kind", kind, "name", name)
		return &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpUnknownNameError,
			message:    "Unknown " + kind,
			details:    map[string]string{kind: name},
		}
	}

	slog.Error("Failed to resolve name", "kind", kind, "name", name, "error", err)
	return &apiError{
		statusCode: http.StatusInternalServerError,
		errorType:  httperr.HttpInternalError,
		message:    msgPersistFailed,
	}
}

// bindJSON reads the request body under the configured size limit and binds
// it into out.
func (s *Service) bindJSON(c *gin.Context, out interface{}) *apiError {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return &apiError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := c.ShouldBindJSON(out); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	return nil
}

// writeError serializes an apiError as the JSON HTTP response.
func writeError(c *gin.Context, err *apiError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
