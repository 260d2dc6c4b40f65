package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/swisspair/pairing/internal/domain"
)

// NotifierClient announces a round's pairings to the players, adapted from
// the teacher's SendGridEmailSender verification-email sender.
type NotifierClient interface {
	NotifyPairings(ctx context.Context, roster map[int]ParticipantResponse, result *domain.PairingResult) error
}

// NotifierConfig carries the SendGrid sender identity.
type NotifierConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type sendGridNotifier struct {
	cfg NotifierConfig
}

// NewSendGridNotifier builds a NotifierClient that sends through SendGrid.
func NewSendGridNotifier(cfg NotifierConfig) NotifierClient {
	return &sendGridNotifier{cfg: cfg}
}

// NotifyPairings sends one pairing-announcement email per pairing, to the
// player listed as White (or the bye recipient); the Black player of a
// pairing is not emailed. Errors for individual players are collected and
// returned together rather than aborting the whole round's notification on
// the first failure.
func (s *sendGridNotifier) NotifyPairings(ctx context.Context, roster map[int]ParticipantResponse, result *domain.PairingResult) error {
	client := sendgrid.NewSendClient(s.cfg.APIKey)
	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)

	var errs []error
	for _, pairing := range result.Pairings {
		white, ok := roster[pairing.White]
		if !ok || white.Email == "" {
			continue
		}
		opponent := "a bye"
		if pairing.Black != 0 {
			if black, ok := roster[pairing.Black]; ok {
				opponent = fmt.Sprintf("%s (black)", black.Name)
			}
		}

		subject := fmt.Sprintf("Round %d pairing", result.Round)
		body := fmt.Sprintf("You are playing white this round against %s.", opponent)
		if pairing.Black == 0 {
			body = "You have received a pairing-allocated bye this round."
		}

		toEmail := mail.NewEmail(white.Name, white.Email)
		message := mail.NewSingleEmail(from, subject, toEmail, body, body)

		resp, err := client.SendWithContext(ctx, message)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to send email to %s: %w", white.Email, err))
			continue
		}
		if resp.StatusCode >= 400 {
			errs = append(errs, fmt.Errorf("sendgrid error for %s: status %d, body: %s", white.Email, resp.StatusCode, resp.Body))
		}
	}

	return errors.Join(errs...)
}

// ConsoleNotifier logs pairing announcements to stdout, for development.
type ConsoleNotifier struct{}

// NewConsoleNotifier builds a NotifierClient that logs instead of emailing.
func NewConsoleNotifier() *ConsoleNotifier { return &ConsoleNotifier{} }

func (n *ConsoleNotifier) NotifyPairings(ctx context.Context, roster map[int]ParticipantResponse, result *domain.PairingResult) error {
	fmt.Printf("\n========== ROUND %d PAIRINGS (%s) ==========\n", result.Round, result.IdempotencyKey)
	for _, p := range result.Pairings {
		if p.Black == 0 {
			fmt.Printf("%d: bye\n", p.White)
			continue
		}
		fmt.Printf("%d (white) vs %d (black)\n", p.White, p.Black)
	}
	fmt.Printf("===============================================\n\n")
	return nil
}
