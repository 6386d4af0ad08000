package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/kafka"
)

const (
	EventReservationCreated   = "reservation_created"
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationCancelled = "reservation_cancelled"
)

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, attempts int) error
}

func newEvent(eventType string, r domain.Reservation, availableSeats int, at time.Time) kafka.ReservationEvent {
	return kafka.ReservationEvent{
		Type:           eventType,
		ReservationID:  r.ID,
		FlightNumber:   r.FlightNumber,
		PassengerID:    r.Passenger.ID,
		PassengerName:  r.Passenger.Name,
		Email:          r.Passenger.Email,
		Seats:          r.Seats,
		AvailableSeats: availableSeats,
		OccurredAt:     at,
	}
}

// publish is best effort: the ledger state is already committed when it runs.
func (l *ReservationLedger) publish(ctx context.Context, eventType string, r domain.Reservation, availableSeats int) {
	if l.producer == nil || l.topic == "" {
		return
	}
	event := newEvent(eventType, r, availableSeats, l.now())
	if err := l.producer.PublishWithRetry(ctx, l.topic, r.ID, event, l.publishAttempts); err != nil {
		l.logger.Warn("failed to publish reservation event",
			"type", eventType,
			"reservation_id", r.ID,
			"error", err,
		)
		return
	}
	if l.notificationsTopic != "" {
		if err := l.producer.PublishWithRetry(ctx, l.notificationsTopic, r.ID, event, l.publishAttempts); err != nil {
			l.logger.Warn("failed to publish notification",
				"type", eventType,
				"reservation_id", r.ID,
				"error", err,
			)
		}
	}
}
