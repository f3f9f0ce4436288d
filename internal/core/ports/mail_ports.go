package ports

import (
	"context"

	"github.com/contacts/api/internal/core/domain"
)

// MailSender delivers outbound notification mail. Delivery is best-effort:
// callers log failures and continue.
type MailSender interface {
	SendConfirmation(ctx context.Context, to, username, token string) error
	SendBirthdayDigest(ctx context.Context, to, username string, contacts []*domain.Contact) error
}

// ReminderService mails each user a digest of contacts with birthdays in
// the coming week. Run by the cmd/birthdayreminder job.
type ReminderService interface {
	SendBirthdayDigests(ctx context.Context) error
}
