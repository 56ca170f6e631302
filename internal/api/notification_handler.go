package api

import (
	"errors"
	"net/http"

	"github.com/sungwon/chirper/internal/auth"
	"github.com/sungwon/chirper/internal/logger"
	"github.com/sungwon/chirper/internal/msgstore"
	"github.com/sungwon/chirper/internal/queue"
)

// NotificationRawHandler handles GET /api/v1/chirps/{id}/notification.
// It returns the archived email the current user was sent for the chirp.
// The archive key is derived from (chirp, caller), so callers can only
// read their own notifications.
func NotificationRawHandler(archive msgstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chirpID, ok := uuidParam(r, "id")
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid chirp id")
			return
		}

		jobID := queue.NotificationJobID(chirpID, auth.UserFromContext(r.Context()))
		raw, err := archive.Get(r.Context(), jobID.String())
		if err != nil {
			if errors.Is(err, msgstore.ErrNotFound) {
				respondError(w, http.StatusNotFound, "notification not found")
				return
			}
			log := logger.FromContext(r.Context())
			log.Error().Err(err).
				Str("job_id", jobID.String()).
				Msg("read archived notification failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		w.Header().Set("Content-Type", "message/rfc822")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}
