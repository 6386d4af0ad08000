package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/Domenick1991/airreservation/internal/logger"
)

// Sender turns reservation events into passenger notifications. Delivery is a log line.
type Sender struct {
	logger *logger.Logger
}

func NewSender(log *logger.Logger) *Sender {
	if log == nil {
		log = logger.Discard()
	}
	return &Sender{logger: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	if event.Email == "" {
		s.logger.Debug("no email on reservation, skipping", "reservation_id", event.ReservationID)
		return nil
	}
	s.logger.Info("sending email",
		"to", event.Email,
		"subject", Subject(event),
		"reservation_id", event.ReservationID,
	)
	return nil
}

func Subject(event kafka.ReservationEvent) string {
	switch event.Type {
	case "reservation_created":
		return fmt.Sprintf("Reservation %s: %d seat(s) on %s", event.ReservationID, event.Seats, event.FlightNumber)
	case "reservation_confirmed":
		return fmt.Sprintf("Reservation %s confirmed", event.ReservationID)
	case "reservation_cancelled":
		return fmt.Sprintf("Reservation %s cancelled", event.ReservationID)
	default:
		return fmt.Sprintf("Reservation %s update", event.ReservationID)
	}
}
