package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sungwon/chirper/internal/auth"
	"github.com/sungwon/chirper/internal/chirp"
	"github.com/sungwon/chirper/internal/logger"
	"github.com/sungwon/chirper/internal/storage"
)

// ChirpService is the chirp behaviour the handlers need.
type ChirpService interface {
	Create(ctx context.Context, authorID uuid.UUID, in chirp.Input) (storage.Chirp, error)
	List(ctx context.Context, limit, offset int32) ([]storage.ListChirpsRow, error)
	Update(ctx context.Context, actorID, chirpID uuid.UUID, in chirp.Input) (storage.Chirp, error)
	Delete(ctx context.Context, actorID, chirpID uuid.UUID) error
}

// chirpRequest is the JSON body for creating or editing a chirp.
type chirpRequest struct {
	Message string `json:"message"`
}

type chirpResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toChirpResponse(c storage.Chirp) chirpResponse {
	return chirpResponse{
		ID:        c.ID.String(),
		UserID:    c.UserID.String(),
		Message:   c.Message,
		CreatedAt: timestampToTime(c.CreatedAt),
		UpdatedAt: timestampToTime(c.UpdatedAt),
	}
}

// CreateChirpHandler handles POST /api/v1/chirps.
func CreateChirpHandler(svc ChirpService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chirpRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		c, err := svc.Create(r.Context(), auth.UserFromContext(r.Context()), chirp.Input{Message: req.Message})
		if err != nil {
			respondChirpError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, toChirpResponse(c))
	}
}

// ListChirpsHandler handles GET /api/v1/chirps. Latest chirps come first.
func ListChirpsHandler(svc ChirpService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), int32Query(r, "limit"), int32Query(r, "offset"))
		if err != nil {
			respondChirpError(w, r, err)
			return
		}

		resp := make([]chirpResponse, 0, len(rows))
		for _, row := range rows {
			resp = append(resp, chirpResponse{
				ID:         row.ID.String(),
				UserID:     row.UserID.String(),
				AuthorName: row.AuthorName,
				Message:    row.Message,
				CreatedAt:  timestampToTime(row.CreatedAt),
				UpdatedAt:  timestampToTime(row.UpdatedAt),
			})
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// UpdateChirpHandler handles PUT /api/v1/chirps/{id}. Only the author may edit.
func UpdateChirpHandler(svc ChirpService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(r, "id")
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid chirp id")
			return
		}

		var req chirpRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		c, err := svc.Update(r.Context(), auth.UserFromContext(r.Context()), id, chirp.Input{Message: req.Message})
		if err != nil {
			respondChirpError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, toChirpResponse(c))
	}
}

// DeleteChirpHandler handles DELETE /api/v1/chirps/{id}. Only the author may delete.
func DeleteChirpHandler(svc ChirpService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(r, "id")
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid chirp id")
			return
		}

		if err := svc.Delete(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
			respondChirpError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func respondChirpError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case respondInvalid(w, err):
	case errors.Is(err, chirp.ErrNotFound):
		respondError(w, http.StatusNotFound, "chirp not found")
	case errors.Is(err, chirp.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("chirp request failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
