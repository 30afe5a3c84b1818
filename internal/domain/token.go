package domain

import "context"

// TokenKind names the three single-purpose token families.
type TokenKind string

const (
	TokenKindCancel   TokenKind = "cancel"
	TokenKindConfirm  TokenKind = "confirm"
	TokenKindFeedback TokenKind = "feedback"
)

// Valid reports whether k is a known token kind.
func (k TokenKind) Valid() bool {
	switch k {
	case TokenKindCancel, TokenKindConfirm, TokenKindFeedback:
		return true
	}
	return false
}

// TokenResolution is the result of resolving an opaque token: the owning
// entity, plus whether the token's action is currently permitted. Existence
// and permission are deliberately separate checks; an existing token whose
// action is closed resolves with Allowed=false and a policy Reason rather
// than failing lookup.
type TokenResolution struct {
	Kind          TokenKind      `json:"kind"`
	Assignment    *Assignment    `json:"assignment,omitempty"`
	WaitlistEntry *WaitlistEntry `json:"waitlist_entry,omitempty"`
	Allowed       bool           `json:"allowed"`
	Reason        string         `json:"reason,omitempty"`
}

// TokenService is the gateway for unauthenticated, token-addressed actions.
type TokenService interface {
	ResolveToken(ctx context.Context, kind TokenKind, token string) (*TokenResolution, error)
	// CancelByToken cancels the owning assignment. Refused with
	// ErrPolicyWindowViolation inside the cutoff window before the slot's
	// effective start. Replay on a cancelled assignment returns the row.
	CancelByToken(ctx context.Context, token string) (*Assignment, error)
	// ConfirmOfferByToken accepts the owning waitlist offer. Refused with
	// ErrPolicyWindowViolation once the offer deadline has passed, even if
	// the expiry sweep has not run yet.
	ConfirmOfferByToken(ctx context.Context, token string) (*OfferOutcome, error)
	DeclineOfferByToken(ctx context.Context, token string) (*OfferOutcome, error)
	// SubmitFeedbackByToken records post-event feedback. Only open between
	// the event's end and the end of the feedback grace period.
	SubmitFeedbackByToken(ctx context.Context, token string, rating int, comment string) (*Assignment, error)
}
