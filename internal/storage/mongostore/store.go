package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airreservation/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	flightsCollection      = "flights"
	reservationsCollection = "reservations"
	passengersCollection   = "passengers"
	metaCollection         = "snapshot_meta"
)

// Store keeps each collection in a mongo collection of the same name, ordered by the
// position field. Saves are not transactional: a crash mid-save can leave a partial
// snapshot, which Load returns as stored.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Save(ctx context.Context, snapshot storage.Snapshot) error {
	if err := replace(ctx, s.db.Collection(flightsCollection), toDocs(storage.ToFlightRecords(snapshot.Flights))); err != nil {
		return fmt.Errorf("save flights: %w", err)
	}
	if err := replace(ctx, s.db.Collection(reservationsCollection), toDocs(storage.ToReservationRecords(snapshot.Reservations))); err != nil {
		return fmt.Errorf("save reservations: %w", err)
	}
	if err := replace(ctx, s.db.Collection(passengersCollection), toDocs(storage.ToPassengerRecords(snapshot.Passengers))); err != nil {
		return fmt.Errorf("save passengers: %w", err)
	}
	meta := []interface{}{bson.M{"saved_at": time.Now().UTC()}}
	if err := replace(ctx, s.db.Collection(metaCollection), meta); err != nil {
		return fmt.Errorf("save snapshot meta: %w", err)
	}
	return nil
}

func replace(ctx context.Context, coll *mongo.Collection, docs []interface{}) error {
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := coll.InsertMany(ctx, docs)
	return err
}

func toDocs[T any](records []T) []interface{} {
	docs := make([]interface{}, 0, len(records))
	for _, r := range records {
		docs = append(docs, r)
	}
	return docs
}

func (s *Store) Load(ctx context.Context) (storage.Snapshot, error) {
	var (
		flights      []storage.FlightRecord
		reservations []storage.ReservationRecord
		passengers   []storage.PassengerRecord
	)
	if err := findAll(ctx, s.db.Collection(flightsCollection), &flights); err != nil {
		return storage.Snapshot{}, fmt.Errorf("load flights: %w", err)
	}
	if err := findAll(ctx, s.db.Collection(reservationsCollection), &reservations); err != nil {
		return storage.Snapshot{}, fmt.Errorf("load reservations: %w", err)
	}
	if err := findAll(ctx, s.db.Collection(passengersCollection), &passengers); err != nil {
		return storage.Snapshot{}, fmt.Errorf("load passengers: %w", err)
	}
	return storage.Snapshot{
		Flights:      storage.FromFlightRecords(flights),
		Reservations: storage.FromReservationRecords(reservations),
		Passengers:   storage.FromPassengerRecords(passengers),
	}, nil
}

func findAll(ctx context.Context, coll *mongo.Collection, out any) error {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrCorrupt, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context) (bool, error) {
	n, err := s.db.Collection(metaCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ storage.Store = (*Store)(nil)
