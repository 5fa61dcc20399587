package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
)

// WriteJSONResponse writes a JSON response with appropriate headers.
func WriteJSONResponse(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", constants.ContentTypeJSON)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return err
	}
	return nil
}

// CloseWithLogging closes an io.Closer with logging.
func CloseWithLogging(closer io.Closer, description string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		logger.Warn("Error closing %s: %v", description, err)
	}
}

// TimeOperation times an operation and logs its duration.
func TimeOperation(description string) func() {
	start := time.Now()
	logger.Debug("Starting operation: %s", description)

	return func() {
		logger.Debug("Completed operation: %s in %s", description, time.Since(start))
	}
}
