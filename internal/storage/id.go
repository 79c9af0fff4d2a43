package storage

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"sync/atomic"
	"time"
)

// Transaction ids are 24 hex characters: 4 bytes of unix seconds, a
// 5-byte per-process random slug, and a 3-byte increasing counter. Ids
// minted by one process therefore sort lexically in creation order, which
// the display tie-break relies on.
var (
	processSlug [5]byte
	idCounter   uint32
)

func init() {
	if _, err := rand.Read(processSlug[:]); err != nil {
		binary.BigEndian.PutUint32(processSlug[:4], uint32(time.Now().UnixNano()))
	}
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err == nil {
		// Keep headroom below the 3-byte wrap point.
		idCounter = binary.BigEndian.Uint32(seed[:]) % 0x100000
	}
}

func newTransactionID(now time.Time) string {
	var raw [12]byte
	binary.BigEndian.PutUint32(raw[0:4], uint32(now.Unix()))
	copy(raw[4:9], processSlug[:])
	n := atomic.AddUint32(&idCounter, 1)
	raw[9] = byte(n >> 16)
	raw[10] = byte(n >> 8)
	raw[11] = byte(n)
	return hex.EncodeToString(raw[:])
}
