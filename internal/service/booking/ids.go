package booking

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/google/uuid"
)

const (
	idPrefix = "RES-"
	// maxSequence is the largest value that still fits the eight hex digits of an id.
	maxSequence = 0xFFFFFFFF
)

// IDGenerator allocates reservation ids. The ledger rejects ids it has already issued.
type IDGenerator interface {
	NewID() (string, error)
}

// RandomIDs draws RES-XXXXXXXX ids from the first eight hex digits of a random UUID.
type RandomIDs struct{}

func (RandomIDs) NewID() (string, error) {
	return idPrefix + strings.ToUpper(uuid.NewString()[:8]), nil
}

// SequentialIDs hands out RES-00000001, RES-00000002 and so on up to RES-FFFFFFFF,
// then fails with domain.ErrIDExhausted. It never repeats.
type SequentialIDs struct {
	next atomic.Uint64
}

// NewSequentialIDs starts the sequence after last.
func NewSequentialIDs(last uint64) *SequentialIDs {
	s := &SequentialIDs{}
	s.next.Store(last)
	return s
}

func (s *SequentialIDs) NewID() (string, error) {
	n := s.next.Add(1)
	if n > maxSequence {
		return "", domain.ErrIDExhausted
	}
	return fmt.Sprintf("%s%08X", idPrefix, n), nil
}

// IDGeneratorFunc adapts a plain function.
type IDGeneratorFunc func() string

func (f IDGeneratorFunc) NewID() (string, error) {
	return f(), nil
}

// LastSequence returns the highest sequence number among ids shaped like
// SequentialIDs output, so a restarted sequence does not reissue them.
// Random ids have the same shape and count too.
func LastSequence(ids []string) uint64 {
	var last uint64
	for _, id := range ids {
		if len(id) <= len(idPrefix) || !strings.EqualFold(id[:len(idPrefix)], idPrefix) {
			continue
		}
		n, err := strconv.ParseUint(id[len(idPrefix):], 16, 64)
		if err != nil {
			continue
		}
		if n > last {
			last = n
		}
	}
	return last
}
