// Package notification builds and delivers the "new chirp" email sent to
// every user other than a chirp's author.
package notification

import (
	"fmt"

	"github.com/google/uuid"
)

// Channel is a delivery channel a notification can be routed through.
type Channel string

// ChannelMail is the only channel chirp notifications use.
const ChannelMail Channel = "mail"

// ChirpSnapshot is the chirp as read when a notification job runs.
type ChirpSnapshot struct {
	ID         uuid.UUID
	AuthorID   uuid.UUID
	AuthorName string
	Message    string
}

// Recipient is the user being notified.
type Recipient struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// MailMessage is the channel-neutral shape of an email before rendering.
type MailMessage struct {
	Subject    string
	Greeting   string
	IntroLines []string
	ActionText string
	ActionURL  string
	OutroLines []string
}

// NewChirp tells a recipient that someone posted a chirp. Its methods are
// pure: the same snapshot and recipient always yield the same message.
type NewChirp struct {
	Chirp ChirpSnapshot
	// ChirpsURL is the chirps listing page linked from the email.
	ChirpsURL string
}

// Via returns the channels the notification is sent through.
func (n NewChirp) Via(Recipient) []Channel {
	return []Channel{ChannelMail}
}

// ToMail builds the email for r. The chirp text goes into the first intro
// line unmodified.
func (n NewChirp) ToMail(r Recipient) MailMessage {
	title := fmt.Sprintf("New Chirp from %s", n.Chirp.AuthorName)
	return MailMessage{
		Subject:    title,
		Greeting:   title,
		IntroLines: []string{n.Chirp.Message},
		ActionText: "Go to Chirper",
		ActionURL:  n.ChirpsURL,
	}
}

func sendsVia(channels []Channel, c Channel) bool {
	for _, ch := range channels {
		if ch == c {
			return true
		}
	}
	return false
}
