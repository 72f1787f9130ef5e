package store

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewID returns a ULID stamped with the wall clock. Ledger entries and
// connection ids use it.
func NewID() string {
	return NewIDAt(time.Now())
}

// NewIDAt stamps the id with at, so hand ids follow whatever clock drives
// the table. Ids generated within the same millisecond still sort in
// generation order.
func NewIDAt(at time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), idEntropy).String()
}
