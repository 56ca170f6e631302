package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sungwon/chirper/internal/auth"
	"github.com/sungwon/chirper/internal/chirp"
	"github.com/sungwon/chirper/internal/storage"
)

// mockQuerier is an in-memory storage.Querier for handler tests. Only the
// user queries are backed by state; chirp queries are not used by handlers.
type mockQuerier struct {
	mu    sync.Mutex
	users map[uuid.UUID]storage.User
	err   error
}

var _ storage.Querier = (*mockQuerier)(nil)

func newMockQuerier() *mockQuerier {
	return &mockQuerier{users: make(map[uuid.UUID]storage.User)}
}

func (m *mockQuerier) addUser(name, email, password string) storage.User {
	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := storage.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    pgtype.Timestamptz{Time: time.Now(), Valid: true},
		UpdatedAt:    pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}
	m.users[u.ID] = u
	return u
}

func (m *mockQuerier) CreateUser(_ context.Context, arg storage.CreateUserParams) (storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return storage.User{}, m.err
	}
	for _, u := range m.users {
		if u.Email == arg.Email {
			return storage.User{}, &pgconn.PgError{Code: pgUniqueViolation}
		}
	}
	u := storage.User{
		ID:           uuid.New(),
		Name:         arg.Name,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		CreatedAt:    pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockQuerier) GetUserByEmail(_ context.Context, email string) (storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return storage.User{}, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return storage.User{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetUserByID(_ context.Context, id uuid.UUID) (storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return storage.User{}, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return storage.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockQuerier) DeleteUser(context.Context, uuid.UUID) error { return errNotMocked }

func (m *mockQuerier) ListUsersExcept(context.Context, storage.ListUsersExceptParams) ([]storage.ListUsersExceptRow, error) {
	return nil, errNotMocked
}

func (m *mockQuerier) CreateChirp(context.Context, storage.CreateChirpParams) (storage.Chirp, error) {
	return storage.Chirp{}, errNotMocked
}

func (m *mockQuerier) DeleteChirp(context.Context, uuid.UUID) error { return errNotMocked }

func (m *mockQuerier) GetChirpByID(context.Context, uuid.UUID) (storage.Chirp, error) {
	return storage.Chirp{}, errNotMocked
}

func (m *mockQuerier) GetChirpWithAuthor(context.Context, uuid.UUID) (storage.GetChirpWithAuthorRow, error) {
	return storage.GetChirpWithAuthorRow{}, errNotMocked
}

func (m *mockQuerier) ListChirps(context.Context, storage.ListChirpsParams) ([]storage.ListChirpsRow, error) {
	return nil, errNotMocked
}

func (m *mockQuerier) UpdateChirpMessage(context.Context, storage.UpdateChirpMessageParams) (storage.Chirp, error) {
	return storage.Chirp{}, errNotMocked
}

var errNotMocked = errors.New("not mocked")

// mockChirpService records calls and returns canned results.
type mockChirpService struct {
	created  []chirp.Input
	chirp    storage.Chirp
	rows     []storage.ListChirpsRow
	err      error
	limit    int32
	offset   int32
	actorID  uuid.UUID
	targetID uuid.UUID
}

func (m *mockChirpService) Create(_ context.Context, authorID uuid.UUID, in chirp.Input) (storage.Chirp, error) {
	m.actorID = authorID
	if err := in.Validate(); err != nil {
		return storage.Chirp{}, err
	}
	if m.err != nil {
		return storage.Chirp{}, m.err
	}
	m.created = append(m.created, in)
	c := m.chirp
	c.UserID = authorID
	c.Message = in.Message
	return c, nil
}

func (m *mockChirpService) List(_ context.Context, limit, offset int32) ([]storage.ListChirpsRow, error) {
	m.limit, m.offset = limit, offset
	return m.rows, m.err
}

func (m *mockChirpService) Update(_ context.Context, actorID, chirpID uuid.UUID, in chirp.Input) (storage.Chirp, error) {
	m.actorID, m.targetID = actorID, chirpID
	if m.err != nil {
		return storage.Chirp{}, m.err
	}
	if err := in.Validate(); err != nil {
		return storage.Chirp{}, err
	}
	c := m.chirp
	c.ID = chirpID
	c.Message = in.Message
	return c, nil
}

func (m *mockChirpService) Delete(_ context.Context, actorID, chirpID uuid.UUID) error {
	m.actorID, m.targetID = actorID, chirpID
	return m.err
}

func testJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey:        "test-signing-key-at-least-32-bytes!!",
		AccessTokenExpiry: time.Hour,
		Issuer:            "chirper",
		Audience:          "chirper-api",
	})
}
