package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/sungwon/chirper/internal/provider"
	"github.com/sungwon/chirper/internal/queue"
	"github.com/sungwon/chirper/internal/storage"
)

type fakeStore struct {
	chirps   map[uuid.UUID]storage.GetChirpWithAuthorRow
	users    map[uuid.UUID]storage.User
	chirpErr error
	userErr  error
}

func (s *fakeStore) GetChirpWithAuthor(_ context.Context, id uuid.UUID) (storage.GetChirpWithAuthorRow, error) {
	if s.chirpErr != nil {
		return storage.GetChirpWithAuthorRow{}, s.chirpErr
	}
	c, ok := s.chirps[id]
	if !ok {
		return storage.GetChirpWithAuthorRow{}, pgx.ErrNoRows
	}
	return c, nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (storage.User, error) {
	if s.userErr != nil {
		return storage.User{}, s.userErr
	}
	u, ok := s.users[id]
	if !ok {
		return storage.User{}, pgx.ErrNoRows
	}
	return u, nil
}

type fakeProvider struct {
	mu   sync.Mutex
	sent []*provider.Message
	err  error
}

func (p *fakeProvider) Send(_ context.Context, msg *provider.Message) (*provider.DeliveryResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.sent = append(p.sent, msg)
	return &provider.DeliveryResult{ProviderMessageID: "fake-" + msg.ID, Status: provider.StatusSent}, nil
}

func (p *fakeProvider) GetName() string                     { return "fake" }
func (p *fakeProvider) HealthCheck(_ context.Context) error { return nil }

type fakeArchive struct {
	data map[string][]byte
	err  error
}

func (a *fakeArchive) Put(_ context.Context, id string, raw []byte) error {
	if a.err != nil {
		return a.err
	}
	a.data[id] = raw
	return nil
}

func (a *fakeArchive) Get(_ context.Context, id string) ([]byte, error) {
	return a.data[id], nil
}

type fixture struct {
	store    *fakeStore
	provider *fakeProvider
	archive  *fakeArchive
	d        *Deliverer
	chirpID  uuid.UUID
	authorID uuid.UUID
	bobID    uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		chirpID:  uuid.New(),
		authorID: uuid.New(),
		bobID:    uuid.New(),
		provider: &fakeProvider{},
		archive:  &fakeArchive{data: map[string][]byte{}},
	}
	f.store = &fakeStore{
		chirps: map[uuid.UUID]storage.GetChirpWithAuthorRow{
			f.chirpID: {ID: f.chirpID, UserID: f.authorID, Message: "hello from alice", AuthorName: "Alice"},
		},
		users: map[uuid.UUID]storage.User{
			f.authorID: {ID: f.authorID, Name: "Alice", Email: "alice@example.com"},
			f.bobID:    {ID: f.bobID, Name: "Bob", Email: "bob@example.com"},
		},
	}
	f.d = NewDeliverer(f.store, f.provider, f.archive, DelivererConfig{
		AppName:     "Chirper",
		ChirpsURL:   "http://localhost:8080/chirps",
		FromAddress: "no-reply@chirper.local",
		FromName:    "Chirper",
	}, zerolog.Nop())
	f.d.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func TestDeliverer_Deliver(t *testing.T) {
	f := newFixture()
	jobID := queue.NotificationJobID(f.chirpID, f.bobID).String()

	if err := f.d.Deliver(context.Background(), jobID, f.chirpID, f.bobID); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if len(f.provider.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(f.provider.sent))
	}
	msg := f.provider.sent[0]
	if msg.ID != jobID {
		t.Errorf("ID = %s, want %s", msg.ID, jobID)
	}
	if len(msg.To) != 1 || msg.To[0] != "bob@example.com" {
		t.Errorf("To = %v", msg.To)
	}
	if msg.Subject != "New Chirp from Alice" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, "hello from alice") || !strings.Contains(msg.TextBody, "http://localhost:8080/chirps") {
		t.Errorf("TextBody = %q", msg.TextBody)
	}
	if msg.From != "no-reply@chirper.local" || msg.FromName != "Chirper" {
		t.Errorf("From = %s <%s>", msg.FromName, msg.From)
	}

	raw, ok := f.archive.data[jobID]
	if !ok {
		t.Fatal("expected archived copy")
	}
	if !strings.Contains(string(raw), "Subject: New Chirp from Alice") {
		t.Errorf("archived message missing subject:\n%s", raw)
	}
}

func TestDeliverer_DeliverFailures(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *fixture)
		recipient func(f *fixture) uuid.UUID
		chirp     func(f *fixture) uuid.UUID
		wantPerm  bool
		wantIs    error
	}{
		{
			name:     "chirp deleted",
			chirp:    func(f *fixture) uuid.UUID { return uuid.New() },
			wantPerm: true,
			wantIs:   ErrChirpGone,
		},
		{
			name:      "recipient deleted",
			recipient: func(f *fixture) uuid.UUID { return uuid.New() },
			wantPerm:  true,
			wantIs:    ErrRecipientGone,
		},
		{
			name:   "store unreachable",
			mutate: func(f *fixture) { f.store.chirpErr = errors.New("connection refused") },
		},
		{
			name:   "user lookup fails",
			mutate: func(f *fixture) { f.store.userErr = errors.New("timeout") },
		},
		{
			name: "provider transient",
			mutate: func(f *fixture) {
				f.provider.err = &provider.ProviderError{Provider: "fake", StatusCode: 503, Message: "unavailable"}
			},
		},
		{
			name: "provider permanent",
			mutate: func(f *fixture) {
				f.provider.err = &provider.ProviderError{Provider: "fake", StatusCode: 550, Message: "no such user", Permanent: true}
			},
			wantPerm: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.mutate != nil {
				tt.mutate(f)
			}
			chirpID, recipientID := f.chirpID, f.bobID
			if tt.chirp != nil {
				chirpID = tt.chirp(f)
			}
			if tt.recipient != nil {
				recipientID = tt.recipient(f)
			}

			err := f.d.Deliver(context.Background(), "job", chirpID, recipientID)
			if err == nil {
				t.Fatal("expected error")
			}
			if queue.IsPermanent(err) != tt.wantPerm {
				t.Errorf("IsPermanent = %v, want %v (%v)", queue.IsPermanent(err), tt.wantPerm, err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("err = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestDeliverer_ArchiveFailureDoesNotFailJob(t *testing.T) {
	f := newFixture()
	f.archive.err = errors.New("disk full")

	if err := f.d.Deliver(context.Background(), "job", f.chirpID, f.bobID); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(f.provider.sent) != 1 {
		t.Errorf("sent %d, want 1", len(f.provider.sent))
	}
}

func TestDeliverer_SkipsAuthor(t *testing.T) {
	f := newFixture()
	if err := f.d.Deliver(context.Background(), "job", f.chirpID, f.authorID); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(f.provider.sent) != 0 {
		t.Errorf("author was notified of their own chirp")
	}
}

func TestDeliverer_RedeliveryIsIdentical(t *testing.T) {
	f := newFixture()
	for i := 0; i < 2; i++ {
		if err := f.d.Deliver(context.Background(), "job", f.chirpID, f.bobID); err != nil {
			t.Fatalf("Deliver #%d: %v", i, err)
		}
	}
	a, b := f.provider.sent[0], f.provider.sent[1]
	if a.Subject != b.Subject || a.TextBody != b.TextBody || a.HTMLBody != b.HTMLBody {
		t.Error("redelivered message differs from the first")
	}
}

func TestNewDeliverer_NilArchive(t *testing.T) {
	f := newFixture()
	d := NewDeliverer(f.store, f.provider, nil, DelivererConfig{}, zerolog.Nop())
	if err := d.Deliver(context.Background(), "job", f.chirpID, f.bobID); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
}
