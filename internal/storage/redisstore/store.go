package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreservation/internal/storage"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "airreservation"

// Store keeps each collection as one JSON value. Save writes all keys in a MULTI block.
type Store struct {
	client redis.UniversalClient
	prefix string
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func New(opts Options) *Store {
	client := redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})
	return NewWithClient(client, opts.Prefix)
}

func NewWithClient(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) flightsKey() string      { return Key(s.prefix, "flights") }
func (s *Store) reservationsKey() string { return Key(s.prefix, "reservations") }
func (s *Store) passengersKey() string   { return Key(s.prefix, "passengers") }

func Key(prefix, collection string) string {
	return fmt.Sprintf("%s:snapshot:%s", prefix, collection)
}

func (s *Store) Save(ctx context.Context, snapshot storage.Snapshot) error {
	payloads, err := Encode(snapshot)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.flightsKey(), payloads.Flights, 0)
		pipe.Set(ctx, s.reservationsKey(), payloads.Reservations, 0)
		pipe.Set(ctx, s.passengersKey(), payloads.Passengers, 0)
		return nil
	})
	return err
}

func (s *Store) Load(ctx context.Context) (storage.Snapshot, error) {
	values, err := s.client.MGet(ctx, s.flightsKey(), s.reservationsKey(), s.passengersKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return storage.Snapshot{}, nil
		}
		return storage.Snapshot{}, err
	}

	var payloads Payloads
	targets := []*[]byte{&payloads.Flights, &payloads.Reservations, &payloads.Passengers}
	for i, v := range values {
		if str, ok := v.(string); ok {
			*targets[i] = []byte(str)
		}
	}
	return Decode(payloads)
}

func (s *Store) Exists(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, s.flightsKey(), s.reservationsKey(), s.passengersKey()).Result()
	if err != nil {
		return false, err
	}
	return n == 3, nil
}

// Payloads are the encoded collections; a nil entry means the key is absent.
type Payloads struct {
	Flights      []byte
	Reservations []byte
	Passengers   []byte
}

func Encode(snapshot storage.Snapshot) (Payloads, error) {
	var (
		p   Payloads
		err error
	)
	if p.Flights, err = json.Marshal(storage.ToFlightRecords(snapshot.Flights)); err != nil {
		return Payloads{}, fmt.Errorf("encode flights: %w", err)
	}
	if p.Reservations, err = json.Marshal(storage.ToReservationRecords(snapshot.Reservations)); err != nil {
		return Payloads{}, fmt.Errorf("encode reservations: %w", err)
	}
	if p.Passengers, err = json.Marshal(storage.ToPassengerRecords(snapshot.Passengers)); err != nil {
		return Payloads{}, fmt.Errorf("encode passengers: %w", err)
	}
	return p, nil
}

func Decode(p Payloads) (storage.Snapshot, error) {
	var (
		flights      []storage.FlightRecord
		reservations []storage.ReservationRecord
		passengers   []storage.PassengerRecord
	)
	if err := decode(p.Flights, &flights); err != nil {
		return storage.Snapshot{}, fmt.Errorf("%w: flights: %v", storage.ErrCorrupt, err)
	}
	if err := decode(p.Reservations, &reservations); err != nil {
		return storage.Snapshot{}, fmt.Errorf("%w: reservations: %v", storage.ErrCorrupt, err)
	}
	if err := decode(p.Passengers, &passengers); err != nil {
		return storage.Snapshot{}, fmt.Errorf("%w: passengers: %v", storage.ErrCorrupt, err)
	}
	return storage.Snapshot{
		Flights:      storage.FromFlightRecords(flights),
		Reservations: storage.FromReservationRecords(reservations),
		Passengers:   storage.FromPassengerRecords(passengers),
	}, nil
}

func decode(data []byte, v any) error {
	if data == nil {
		return nil
	}
	return json.Unmarshal(data, v)
}

var _ storage.Store = (*Store)(nil)
