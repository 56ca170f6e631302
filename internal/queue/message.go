package queue

import (
	"time"

	"github.com/google/uuid"
)

// Kind names the job a Message carries.
type Kind string

const (
	// KindFanout expands one chirp into per-recipient notification jobs.
	KindFanout Kind = "chirp.fanout"
	// KindNotify renders and sends one notification to one recipient.
	KindNotify Kind = "chirp.notify"
)

// Message is a queued job. It carries identifiers only; handlers re-read
// everything else from the record store when they run.
type Message struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	ChirpID     uuid.UUID `json:"chirp_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	// AfterID is the fan-out cursor: the job covers users with id > AfterID.
	AfterID    uuid.UUID `json:"after_id"`
	RetryCount int       `json:"retry_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewFanoutMessage creates the deferred fan-out job for a chirp.
func NewFanoutMessage(chirpID uuid.UUID) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Kind:      KindFanout,
		ChirpID:   chirpID,
		CreatedAt: time.Now().UTC(),
	}
}

// NewFanoutContinuation creates the fan-out job for the users after afterID.
// The ID is derived from (chirp, cursor), so a retried page enqueues the same
// continuation.
func NewFanoutContinuation(chirpID, afterID uuid.UUID) *Message {
	return &Message{
		ID:        uuid.NewSHA1(chirpID, append([]byte("fanout:"), afterID[:]...)).String(),
		Kind:      KindFanout,
		ChirpID:   chirpID,
		AfterID:   afterID,
		CreatedAt: time.Now().UTC(),
	}
}

// NewNotificationMessage creates the delivery job for one recipient. The ID is
// derived from the (chirp, recipient) pair, so re-running a fan-out produces
// the same job IDs.
func NewNotificationMessage(chirpID, recipientID uuid.UUID) *Message {
	return &Message{
		ID:          NotificationJobID(chirpID, recipientID).String(),
		Kind:        KindNotify,
		ChirpID:     chirpID,
		RecipientID: recipientID,
		CreatedAt:   time.Now().UTC(),
	}
}

// NotificationJobID returns the name-based UUID for a (chirp, recipient) pair.
func NotificationJobID(chirpID, recipientID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(chirpID, recipientID[:])
}

func streamKey(name string) string {
	return "queue:" + name
}

func dlqStreamKey(name string) string {
	return "dlq:" + name
}
