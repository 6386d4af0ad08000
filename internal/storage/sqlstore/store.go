package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/storage"
)

// Store persists snapshots into four tables. Every Save replaces the table contents
// inside one transaction, so readers see either the old or the new snapshot.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) schema() []string {
	ts := s.dialect.timestampType()
	return []string{
		`CREATE TABLE IF NOT EXISTS flights (
			position INT NOT NULL,
			flight_number VARCHAR(32) NOT NULL,
			origin VARCHAR(255) NOT NULL,
			destination VARCHAR(255) NOT NULL,
			departure_time ` + ts + ` NOT NULL,
			arrival_time ` + ts + ` NOT NULL,
			total_seats INT NOT NULL,
			available_seats INT NOT NULL,
			price_cents BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			position INT NOT NULL,
			reservation_id VARCHAR(32) NOT NULL,
			flight_number VARCHAR(32) NOT NULL,
			passenger_id VARCHAR(255) NOT NULL,
			passenger_name VARCHAR(255) NOT NULL,
			passenger_email VARCHAR(255) NOT NULL,
			passenger_phone VARCHAR(64) NOT NULL,
			seats INT NOT NULL,
			confirmed BOOLEAN NOT NULL,
			cancelled BOOLEAN NOT NULL,
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS passengers (
			position INT NOT NULL,
			passenger_id VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(64) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_meta (
			saved_at ` + ts + ` NOT NULL
		)`,
	}
}

// Migrate creates the tables when they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Exists(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshot_meta`).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Save(ctx context.Context, snapshot storage.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"flights", "reservations", "passengers", "snapshot_meta"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insertFlight := s.dialect.Rebind(`INSERT INTO flights (position, flight_number, origin, destination, departure_time, arrival_time, total_seats, available_seats, price_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, f := range snapshot.Flights {
		if _, err := tx.ExecContext(ctx, insertFlight, i, f.FlightNumber, f.Origin, f.Destination,
			f.DepartureTime.UTC(), f.ArrivalTime.UTC(), f.TotalSeats, f.AvailableSeats, f.PriceCents); err != nil {
			return fmt.Errorf("insert flight %s: %w", f.FlightNumber, err)
		}
	}

	insertReservation := s.dialect.Rebind(`INSERT INTO reservations (position, reservation_id, flight_number, passenger_id, passenger_name, passenger_email, passenger_phone, seats, confirmed, cancelled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, r := range snapshot.Reservations {
		if _, err := tx.ExecContext(ctx, insertReservation, i, r.ID, r.FlightNumber,
			r.Passenger.ID, r.Passenger.Name, r.Passenger.Email, r.Passenger.Phone,
			r.Seats, r.Confirmed, r.Cancelled, r.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("insert reservation %s: %w", r.ID, err)
		}
	}

	insertPassenger := s.dialect.Rebind(`INSERT INTO passengers (position, passenger_id, name, email, phone) VALUES (?, ?, ?, ?, ?)`)
	for i, p := range snapshot.Passengers {
		if _, err := tx.ExecContext(ctx, insertPassenger, i, p.ID, p.Name, p.Email, p.Phone); err != nil {
			return fmt.Errorf("insert passenger %s: %w", p.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, s.dialect.Rebind(`INSERT INTO snapshot_meta (saved_at) VALUES (?)`), time.Now().UTC()); err != nil {
		return fmt.Errorf("insert snapshot meta: %w", err)
	}

	return tx.Commit()
}

func (s *Store) Load(ctx context.Context) (storage.Snapshot, error) {
	flights, err := s.loadFlights(ctx)
	if err != nil {
		return storage.Snapshot{}, err
	}
	reservations, err := s.loadReservations(ctx)
	if err != nil {
		return storage.Snapshot{}, err
	}
	passengers, err := s.loadPassengers(ctx)
	if err != nil {
		return storage.Snapshot{}, err
	}
	return storage.Snapshot{Flights: flights, Reservations: reservations, Passengers: passengers}, nil
}

func (s *Store) loadFlights(ctx context.Context) ([]domain.Flight, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT flight_number, origin, destination, departure_time, arrival_time, total_seats, available_seats, price_cents FROM flights ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats, &f.PriceCents); err != nil {
			return nil, fmt.Errorf("%w: flights: %v", storage.ErrCorrupt, err)
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (s *Store) loadReservations(ctx context.Context) ([]domain.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT reservation_id, flight_number, passenger_id, passenger_name, passenger_email, passenger_phone, seats, confirmed, cancelled, created_at FROM reservations ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		var r domain.Reservation
		if err := rows.Scan(&r.ID, &r.FlightNumber, &r.Passenger.ID, &r.Passenger.Name, &r.Passenger.Email, &r.Passenger.Phone,
			&r.Seats, &r.Confirmed, &r.Cancelled, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: reservations: %v", storage.ErrCorrupt, err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

func (s *Store) loadPassengers(ctx context.Context) ([]domain.Passenger, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT passenger_id, name, email, phone FROM passengers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query passengers: %w", err)
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone); err != nil {
			return nil, fmt.Errorf("%w: passengers: %v", storage.ErrCorrupt, err)
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

var _ storage.Store = (*Store)(nil)
