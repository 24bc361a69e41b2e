package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Run ids are ULIDs: 26 Crockford Base32 characters, timestamp first, so
// ids from successive runs sort in start order.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewRunID returns a fresh run id.
func NewRunID() string {
	return newULID(time.Now())
}

func newULID(now time.Time) string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(now.UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	rand.Read(b[6:])
	// Sequence in bytes 6-7 keeps ids unique within one millisecond.
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeULID(b)
}

// encodeULID writes 128 bits as 26 base32 characters, 5 bits at a time
// from the most significant end (the first character carries 3 bits).
func encodeULID(b [16]byte) string {
	var out [26]byte
	var acc uint
	bits := 2 // 130 output bits, so the stream starts 2 bits early
	i := 0
	for _, by := range b {
		acc = acc<<8 | uint(by)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[i] = crockford[(acc>>uint(bits))&31]
			i++
		}
	}
	return string(out[:])
}
