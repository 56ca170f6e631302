package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/sungwon/chirper/internal/metrics"
	"github.com/sungwon/chirper/internal/msgstore"
	"github.com/sungwon/chirper/internal/provider"
	"github.com/sungwon/chirper/internal/queue"
	"github.com/sungwon/chirper/internal/storage"
)

// ErrChirpGone and ErrRecipientGone mean the job can never render.
var (
	ErrChirpGone     = errors.New("chirp no longer exists")
	ErrRecipientGone = errors.New("recipient no longer exists")
)

// Store is the read access delivery needs.
type Store interface {
	GetChirpWithAuthor(ctx context.Context, id uuid.UUID) (storage.GetChirpWithAuthorRow, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (storage.User, error)
}

// DelivererConfig carries the sender identity and link targets.
type DelivererConfig struct {
	AppName     string
	ChirpsURL   string
	FromAddress string
	FromName    string
}

// Deliverer renders and sends one notification per job.
type Deliverer struct {
	store    Store
	provider provider.Provider
	archive  msgstore.Store
	cfg      DelivererConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewDeliverer wires a Deliverer. archive may be nil.
func NewDeliverer(store Store, p provider.Provider, archive msgstore.Store, cfg DelivererConfig, log zerolog.Logger) *Deliverer {
	if archive == nil {
		archive = msgstore.Nop{}
	}
	return &Deliverer{
		store:    store,
		provider: p,
		archive:  archive,
		cfg:      cfg,
		log:      log.With().Str("component", "deliverer").Logger(),
		now:      time.Now,
	}
}

// Deliver loads the chirp and recipient, renders the email and hands it to
// the provider. A missing chirp or recipient, or a provider rejection that
// will never succeed, is returned wrapped with queue.Permanent.
func (d *Deliverer) Deliver(ctx context.Context, jobID string, chirpID, recipientID uuid.UUID) error {
	log := d.log.With().
		Str("job_id", jobID).
		Str("chirp_id", chirpID.String()).
		Str("recipient_id", recipientID.String()).
		Logger()

	row, err := d.store.GetChirpWithAuthor(ctx, chirpID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return queue.Permanent(fmt.Errorf("chirp %s: %w", chirpID, ErrChirpGone))
		}
		return fmt.Errorf("load chirp: %w", err)
	}
	if row.UserID == recipientID {
		log.Warn().Msg("recipient is the chirp author, skipping")
		metrics.NotificationsTotal.WithLabelValues(string(ChannelMail), "skipped").Inc()
		return nil
	}

	user, err := d.store.GetUserByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return queue.Permanent(fmt.Errorf("user %s: %w", recipientID, ErrRecipientGone))
		}
		return fmt.Errorf("load recipient: %w", err)
	}

	n := NewChirp{
		Chirp: ChirpSnapshot{
			ID:         row.ID,
			AuthorID:   row.UserID,
			AuthorName: row.AuthorName,
			Message:    row.Message,
		},
		ChirpsURL: d.cfg.ChirpsURL,
	}
	r := Recipient{ID: user.ID, Name: user.Name, Email: user.Email}
	if !sendsVia(n.Via(r), ChannelMail) {
		return nil
	}

	rendered, err := Render(n.ToMail(r), d.cfg.AppName)
	if err != nil {
		return queue.Permanent(err)
	}

	msg := &provider.Message{
		ID:       jobID,
		From:     d.cfg.FromAddress,
		FromName: d.cfg.FromName,
		To:       []string{r.Email},
		Subject:  rendered.Subject,
		Headers:  map[string]string{"X-Chirper-Chirp-ID": chirpID.String()},
		TextBody: rendered.Text,
		HTMLBody: rendered.HTML,
	}

	d.archiveMessage(ctx, log, msg)

	start := time.Now()
	res, err := d.provider.Send(ctx, msg)
	metrics.NotificationSendDuration.WithLabelValues(d.provider.GetName()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(ChannelMail), "failed").Inc()
		if provider.IsPermanent(err) {
			return queue.Permanent(fmt.Errorf("send: %w", err))
		}
		return fmt.Errorf("send: %w", err)
	}

	metrics.NotificationsTotal.WithLabelValues(string(ChannelMail), "sent").Inc()
	log.Info().
		Str("provider", d.provider.GetName()).
		Str("provider_message_id", res.ProviderMessageID).
		Msg("notification sent")
	return nil
}

// archiveMessage stores the rendered email. Failures are logged only.
func (d *Deliverer) archiveMessage(ctx context.Context, log zerolog.Logger, msg *provider.Message) {
	if _, ok := d.archive.(msgstore.Nop); ok {
		return
	}
	raw, err := provider.BuildMIME(msg, d.now())
	if err == nil {
		err = d.archive.Put(ctx, msg.ID, raw)
	}
	if err != nil {
		metrics.ArchiveErrorsTotal.Inc()
		log.Warn().Err(err).Msg("failed to archive notification")
	}
}
