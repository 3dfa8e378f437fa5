package email

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/logging"
)

// AddressBook resolves the mail address of a user. Identity lives outside
// this service, so the default book knows nobody.
type AddressBook interface {
	Address(ctx context.Context, userID string) (string, bool)
}

type Sender struct {
	book   AddressBook
	logger *slog.Logger
}

func NewSender(book AddressBook, logger *slog.Logger) *Sender {
	return &Sender{book: book, logger: logging.OrDefault(logger)}
}

// Deliver is the deferred channel: the notification is already stored, this
// only records the outgoing mail.
func (s *Sender) Deliver(ctx context.Context, n domain.Notification) error {
	address := ""
	if s.book != nil {
		address, _ = s.book.Address(ctx, n.UserID)
	}
	s.logger.Info("send email",
		"user_id", n.UserID, "address", address, "type", n.Type,
		"ride_id", n.RideID, "request_id", n.RequestID, "message", n.Message)
	return nil
}
