package controllers

import (
	"log/slog"
	"net/http"

	"stagecrew/internal/delivery/http/helpers"
	"stagecrew/internal/domain"
)

// TokenController serves the unauthenticated token-addressed surface: the
// links helpers receive by email. Tokens are the sole credential here; no
// session is involved.
type TokenController struct {
	Logger  *slog.Logger
	Service domain.TokenService
}

func NewTokenController(logger *slog.Logger, svc domain.TokenService) *TokenController {
	return &TokenController{
		Logger:  logger,
		Service: svc,
	}
}

func pathToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := r.PathValue("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing token")
		return "", false
	}
	return token, true
}

// Resolve godoc
// @Summary Resolve a token to its context
// @Description Returns what the token addresses and whether its action is currently permitted. Lets the frontend render a meaningful page (including "window closed" states) before the user commits to an action.
// @Tags tokens
// @Produce json
// @Param kind path string true "Token kind: cancel, confirm, or feedback"
// @Param token path string true "Opaque token"
// @Success 200 {object} helpers.APIResponse "data contains kind, the owning entity, allowed, and reason"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /t/{kind}/{token} [get]
func (c *TokenController) Resolve(w http.ResponseWriter, r *http.Request) {
	kind := domain.TokenKind(r.PathValue("kind"))
	if !kind.Valid() {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown token kind")
		return
	}
	token, ok := pathToken(w, r)
	if !ok {
		return
	}

	resolution, err := c.Service.ResolveToken(r.Context(), kind, token)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resolution)
}

// Cancel godoc
// @Summary Cancel an assignment via its cancel link
// @Description Cancels the owning assignment and frees its seat to the waitlist. Refused with policy_window inside the cutoff before the shift starts. Re-using the link on a cancelled assignment returns the row unchanged.
// @Tags tokens
// @Produce json
// @Param token path string true "Cancel token"
// @Success 200 {object} helpers.APIResponse "data contains the cancelled assignment"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invariant_violation"
// @Failure 422 {object} helpers.APIResponse "error.code: policy_window"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /t/cancel/{token} [post]
func (c *TokenController) Cancel(w http.ResponseWriter, r *http.Request) {
	token, ok := pathToken(w, r)
	if !ok {
		return
	}
	assignment, err := c.Service.CancelByToken(r.Context(), token)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignment)
}

// Confirm godoc
// @Summary Accept a waitlist offer via its confirm link
// @Description Converts the offer into a committed assignment. Refused with policy_window once the offer deadline has passed. Re-using the link after settling reports the final state instead of failing.
// @Tags tokens
// @Produce json
// @Param token path string true "Confirm token"
// @Success 200 {object} helpers.APIResponse "data contains the entry and created assignment"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exceeded"
// @Failure 422 {object} helpers.APIResponse "error.code: policy_window"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /t/confirm/{token} [post]
func (c *TokenController) Confirm(w http.ResponseWriter, r *http.Request) {
	token, ok := pathToken(w, r)
	if !ok {
		return
	}
	outcome, err := c.Service.ConfirmOfferByToken(r.Context(), token)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, outcome)
}

// Decline godoc
// @Summary Decline a waitlist offer via its link
// @Description Declines the offer and passes the seat to the next queued candidate. Idempotent on settled entries.
// @Tags tokens
// @Produce json
// @Param token path string true "Confirm token"
// @Success 200 {object} helpers.APIResponse "data contains the declined entry"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /t/decline/{token} [post]
func (c *TokenController) Decline(w http.ResponseWriter, r *http.Request) {
	token, ok := pathToken(w, r)
	if !ok {
		return
	}
	outcome, err := c.Service.DeclineOfferByToken(r.Context(), token)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, outcome)
}

// FeedbackRequest is the request body for POST /t/feedback/{token}.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Validate implements helpers.Validator.
func (r *FeedbackRequest) Validate() []string {
	if r.Rating < 1 || r.Rating > 5 {
		return []string{"rating must be between 1 and 5"}
	}
	return nil
}

// Feedback godoc
// @Summary Submit shift feedback via the feedback link
// @Description Records a rating and optional comment for a worked shift. Open from the end of the shift until the grace period closes. Re-submitting returns the stored feedback unchanged.
// @Tags tokens
// @Accept json
// @Produce json
// @Param token path string true "Feedback token"
// @Param body body controllers.FeedbackRequest true "Rating 1-5 and optional comment"
// @Success 200 {object} helpers.APIResponse "data contains the assignment with feedback"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (cancelled assignment or bad rating)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: policy_window"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /t/feedback/{token} [post]
func (c *TokenController) Feedback(w http.ResponseWriter, r *http.Request) {
	token, ok := pathToken(w, r)
	if !ok {
		return
	}
	var req FeedbackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	assignment, err := c.Service.SubmitFeedbackByToken(r.Context(), token, req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignment)
}
