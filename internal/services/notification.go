package services

import (
	"context"
	"fmt"

	"stagecrew/internal/domain"
)

type notificationService struct {
	directory domain.RecipientDirectory
	mailer    domain.Mailer
	renderer  domain.EmailTemplateRenderer
	baseURL   string
}

// NewNotificationService creates the engine's notifier: it resolves
// candidates to addresses and delivers rendered emails. baseURL is the
// public origin token links are built against.
func NewNotificationService(
	directory domain.RecipientDirectory,
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	baseURL string,
) domain.Notifier {
	return &notificationService{
		directory: directory,
		mailer:    mailer,
		renderer:  renderer,
		baseURL:   baseURL,
	}
}

func (s *notificationService) SendOffer(ctx context.Context, n *domain.OfferNotification) error {
	if n == nil {
		return fmt.Errorf("offer notification is nil")
	}
	email, name, err := s.directory.Lookup(ctx, n.Candidate)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	data := map[string]any{
		"Name":       name,
		"Role":       n.Role,
		"EventName":  n.EventName,
		"ShiftStart": n.ShiftStart,
		"Deadline":   n.Deadline,
		"ConfirmURL": fmt.Sprintf("%s/t/confirm/%s", s.baseURL, n.ConfirmToken),
		"DeclineURL": fmt.Sprintf("%s/t/decline/%s", s.baseURL, n.ConfirmToken),
	}
	subject, html, text, err := s.renderer.Render("offer", data)
	if err != nil {
		return fmt.Errorf("render offer template: %w", err)
	}
	if err := s.mailer.Send(email, subject, html, text); err != nil {
		return fmt.Errorf("send offer email: %w", err)
	}
	return nil
}

func (s *notificationService) SendOfferExpired(ctx context.Context, n *domain.OfferExpiredNotification) error {
	if n == nil {
		return fmt.Errorf("offer expired notification is nil")
	}
	email, name, err := s.directory.Lookup(ctx, n.Candidate)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	data := map[string]any{
		"Name":      name,
		"Role":      n.Role,
		"EventName": n.EventName,
	}
	subject, html, text, err := s.renderer.Render("offer_expired", data)
	if err != nil {
		return fmt.Errorf("render offer_expired template: %w", err)
	}
	if err := s.mailer.Send(email, subject, html, text); err != nil {
		return fmt.Errorf("send offer expired email: %w", err)
	}
	return nil
}

func (s *notificationService) SendCancellationConfirmed(ctx context.Context, n *domain.CancellationNotification) error {
	if n == nil {
		return fmt.Errorf("cancellation notification is nil")
	}
	email, name, err := s.directory.Lookup(ctx, n.Candidate)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	data := map[string]any{
		"Name":       name,
		"Role":       n.Role,
		"EventName":  n.EventName,
		"ShiftStart": n.ShiftStart,
	}
	subject, html, text, err := s.renderer.Render("cancellation_confirmed", data)
	if err != nil {
		return fmt.Errorf("render cancellation_confirmed template: %w", err)
	}
	if err := s.mailer.Send(email, subject, html, text); err != nil {
		return fmt.Errorf("send cancellation email: %w", err)
	}
	return nil
}
