package api

import (
	"net/http"

	"github.com/sungwon/chirper/internal/logger"
	"github.com/sungwon/chirper/internal/queue"
)

// maxReprocessIDs bounds a single reprocess request.
const maxReprocessIDs = 100

// dlqReprocessRequest is the JSON body for POST /api/v1/dlq/reprocess.
type dlqReprocessRequest struct {
	MessageIDs []string `json:"message_ids"`
}

// dlqReprocessResponse is the JSON response for a DLQ reprocess operation.
type dlqReprocessResponse struct {
	Reprocessed int `json:"reprocessed"`
	Total       int `json:"total"`
}

// DLQReprocessHandler handles POST /api/v1/dlq/reprocess.
// It re-enqueues jobs from the dead letter queue back to the work queue.
func DLQReprocessHandler(dlq queue.DeadLetterQueue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req dlqReprocessRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.MessageIDs) == 0 {
			respondError(w, http.StatusBadRequest, "message_ids is required and must not be empty")
			return
		}
		if len(req.MessageIDs) > maxReprocessIDs {
			respondError(w, http.StatusBadRequest, "too many message_ids")
			return
		}

		reprocessed, err := dlq.Reprocess(r.Context(), req.MessageIDs)
		if err != nil {
			log.Error().Err(err).
				Int("requested", len(req.MessageIDs)).
				Int("reprocessed", reprocessed).
				Msg("dlq reprocess failed")
			respondError(w, http.StatusInternalServerError, "reprocess failed")
			return
		}

		log.Info().
			Int("reprocessed", reprocessed).
			Int("total", len(req.MessageIDs)).
			Msg("dlq reprocess completed")

		respondJSON(w, http.StatusOK, dlqReprocessResponse{
			Reprocessed: reprocessed,
			Total:       len(req.MessageIDs),
		})
	}
}
