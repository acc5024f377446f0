package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID for an uploaded file and the artifacts derived from it.
// IDs sort by creation time, so a directory listing of the storage root is
// in upload order.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID carrying the timestamp t.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		panic(err)
	}
	return id.String()
}

// Valid reports whether s is a canonical ULID string. Stores use it before
// turning an ID into a file name or key.
func Valid(s string) bool {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return false
	}
	return id.String() == s
}

// Time returns the creation time encoded in a valid ID.
func Time(s string) (time.Time, bool) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(id.Time()).UTC(), true
}
