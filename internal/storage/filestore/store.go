package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Domenick1991/airreservation/internal/storage"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	flightsName      = "flights"
	reservationsName = "reservations"
	passengersName   = "passengers"
)

// Store keeps each collection in its own file under dir.
type Store struct {
	dir    string
	format string
}

func New(dir, format string) (*Store, error) {
	switch format {
	case "", FormatJSON:
		format = FormatJSON
	case FormatYAML, "yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("unsupported storage format %q", format)
	}
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir, format: format}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+"."+s.format)
}

func (s *Store) marshal(v any) ([]byte, error) {
	if s.format == FormatYAML {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

func (s *Store) unmarshal(data []byte, v any) error {
	if s.format == FormatYAML {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// read decodes one collection file. A missing file leaves v untouched.
func (s *Store) read(name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := s.unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrCorrupt, s.path(name), err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (storage.Snapshot, error) {
	var (
		flights      []storage.FlightRecord
		reservations []storage.ReservationRecord
		passengers   []storage.PassengerRecord
	)
	if err := s.read(flightsName, &flights); err != nil {
		return storage.Snapshot{}, err
	}
	if err := s.read(reservationsName, &reservations); err != nil {
		return storage.Snapshot{}, err
	}
	if err := s.read(passengersName, &passengers); err != nil {
		return storage.Snapshot{}, err
	}

	return storage.Snapshot{
		Flights:      storage.FromFlightRecords(flights),
		Reservations: storage.FromReservationRecords(reservations),
		Passengers:   storage.FromPassengerRecords(passengers),
	}, nil
}

// Save rewrites all three files. Each file is replaced atomically through a rename.
func (s *Store) Save(ctx context.Context, snapshot storage.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	collections := []struct {
		name  string
		value any
	}{
		{flightsName, storage.ToFlightRecords(snapshot.Flights)},
		{reservationsName, storage.ToReservationRecords(snapshot.Reservations)},
		{passengersName, storage.ToPassengerRecords(snapshot.Passengers)},
	}
	for _, c := range collections {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := s.marshal(c.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.name, err)
		}
		if err := writeFileAtomic(s.path(c.name), data); err != nil {
			return fmt.Errorf("write %s: %w", c.name, err)
		}
	}
	return nil
}

// Exists reports whether all three collection files are present.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	for _, name := range []string{flightsName, reservationsName, passengersName} {
		_, err := os.Stat(s.path(name))
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

// Backup copies every present collection file to dest as <name>_backup.<ext>.
func (s *Store) Backup(ctx context.Context, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	for _, name := range []string{flightsName, reservationsName, passengersName} {
		target := filepath.Join(dest, name+"_backup."+s.format)
		if err := copyFile(s.path(name), target); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("backup %s: %w", name, err)
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var (
	_ storage.Store     = (*Store)(nil)
	_ storage.Backupper = (*Store)(nil)
)
