package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sungwon/chirper/internal/auth"
	"github.com/sungwon/chirper/internal/logger"
	"github.com/sungwon/chirper/internal/storage"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

var validate = validator.New()

// registerRequest is the JSON body for POST /api/v1/auth/register.
type registerRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// loginRequest is the JSON body for POST /api/v1/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is the JSON response containing an access token.
type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u storage.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: timestampToTime(u.CreatedAt),
	}
}

// RegisterHandler handles POST /api/v1/auth/register.
// Creates a user with a bcrypt-hashed password and returns an access token.
func RegisterHandler(queries storage.Querier, jwtService *auth.JWTService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req registerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if err := validate.Struct(&req); err != nil {
			if !respondInvalid(w, err) {
				respondError(w, http.StatusBadRequest, "invalid request body")
			}
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Error().Err(err).Msg("hash password failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		user, err := queries.CreateUser(r.Context(), storage.CreateUserParams{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
		})
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				respondError(w, http.StatusConflict, "email already registered")
				return
			}
			log.Error().Err(err).Msg("create user failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		log.Info().Str("user_id", user.ID.String()).Msg("user registered")
		issueToken(w, jwtService, http.StatusCreated, user)
	}
}

// LoginHandler handles POST /api/v1/auth/login.
// Authenticates a user by email and password and returns an access token.
// Failed attempts are counted per email; a locked-out email gets 429.
func LoginHandler(queries storage.Querier, jwtService *auth.JWTService, limiter *auth.LoginLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		if limiter != nil {
			if err := limiter.Check(r.Context(), email); err != nil {
				if errors.Is(err, auth.ErrTooManyAttempts) {
					respondError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
					return
				}
				log.Warn().Err(err).Msg("login limiter unavailable")
			}
		}

		fail := func() {
			if limiter != nil {
				if err := limiter.RecordFailure(r.Context(), email); err != nil {
					log.Warn().Err(err).Msg("record login failure")
				}
			}
			respondError(w, http.StatusUnauthorized, "invalid email or password")
		}

		user, err := queries.GetUserByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				fail()
				return
			}
			log.Error().Err(err).Msg("get user by email failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
			fail()
			return
		}

		if limiter != nil {
			if err := limiter.Reset(r.Context(), email); err != nil {
				log.Warn().Err(err).Msg("reset login limiter")
			}
		}
		issueToken(w, jwtService, http.StatusOK, user)
	}
}

// MeHandler handles GET /api/v1/me.
func MeHandler(queries storage.Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := queries.GetUserByID(r.Context(), auth.UserFromContext(r.Context()))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				respondError(w, http.StatusNotFound, "user not found")
				return
			}
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Msg("get user failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, toUserResponse(user))
	}
}

func issueToken(w http.ResponseWriter, jwtService *auth.JWTService, status int, user storage.User) {
	token, expiresAt, err := jwtService.GenerateAccessToken(user.ID, user.Name, user.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, status, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(expiresAt).Seconds()),
		User:        toUserResponse(user),
	})
}
