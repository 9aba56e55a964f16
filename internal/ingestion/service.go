package ingestion

import (
	"github.com/envmon-lab/env-server/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// Service owns the write side of the API: dictionary registration and
// reading ingestion.
type Service struct {
	dict             storage.DictionaryStore
	readings         storage.ReadingStore
	maxBodySizeBytes int
}

func NewService(dict storage.DictionaryStore, readings storage.ReadingStore, maxBodySizeMB int) *Service {
	if dict == nil {
		panic("ingestion: dictionary store must not be nil")
	}
	if readings == nil {
		panic("ingestion: reading store must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		dict:             dict,
		readings:         readings,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.PUT("/api/v0/location", s.PutLocationHandler)
	r.PUT("/api/v0/sensor", s.PutSensorHandler)
	r.PUT("/api/v0/data", s.PutDataHandler)
}
