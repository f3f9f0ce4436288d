package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contacts/api/internal/core/ports"
)

type reminderService struct {
	users    ports.UserRepository
	contacts ports.ContactRepository
	mail     ports.MailSender
	logger   *slog.Logger
}

func NewReminderService(users ports.UserRepository, contacts ports.ContactRepository, mail ports.MailSender, logger *slog.Logger) ports.ReminderService {
	return &reminderService{
		users:    users,
		contacts: contacts,
		mail:     mail,
		logger:   logger,
	}
}

// SendBirthdayDigests mails every user whose contacts have a birthday in
// the coming week. Delivery failures are logged and do not fail the run;
// repository failures do.
func (s *reminderService) SendBirthdayDigests(ctx context.Context) error {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch users: %w", err)
	}

	window := birthdayWindow(time.Now())

	var wg sync.WaitGroup
	errChan := make(chan error, len(users))

	for _, user := range users {
		wg.Add(1)
		go func(userID uuid.UUID, email, username string) {
			defer wg.Done()
			contacts, err := s.contacts.WithBirthdaysOn(ctx, userID, window)
			if err != nil {
				errChan <- fmt.Errorf("failed to query birthdays for %s: %w", email, err)
				return
			}
			if len(contacts) == 0 {
				return
			}
			if err := s.mail.SendBirthdayDigest(ctx, email, username, contacts); err != nil {
				s.logger.Warn("birthday digest delivery failed", "email", email, "error", err)
			}
		}(user.ID, user.Email, user.Username)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}
