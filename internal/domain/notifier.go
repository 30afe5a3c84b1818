package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RecipientDirectory resolves a candidate to a notification address and
// display name. Backed by the club's member and registrant records.
type RecipientDirectory interface {
	Lookup(ctx context.Context, c Candidate) (email, name string, err error)
}

// OfferNotification is the payload for a waitlist offer email.
type OfferNotification struct {
	Candidate    Candidate
	Role         string
	EventName    string
	ShiftStart   time.Time
	Deadline     time.Time
	ConfirmToken string
}

// CancellationNotification confirms a self-service cancellation.
type CancellationNotification struct {
	Candidate  Candidate
	Role       string
	EventName  string
	ShiftStart time.Time
}

// OfferExpiredNotification tells a candidate their offer lapsed unanswered.
type OfferExpiredNotification struct {
	Candidate Candidate
	Role      string
	EventName string
}

// Notifier delivers engine notifications. Fire-and-forget: the engine never
// depends on delivery success, callers log and discard errors.
type Notifier interface {
	SendOffer(ctx context.Context, n *OfferNotification) error
	SendOfferExpired(ctx context.Context, n *OfferExpiredNotification) error
	SendCancellationConfirmed(ctx context.Context, n *CancellationNotification) error
}
