package platform

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform entropy source is broken;
		// fall back to the timestamp so the demo keeps producing references.
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// newSettlementRef fabricates a settlement-network transaction reference in
// the account@seconds.nanos shape the network uses. Uniqueness is not
// required; the reference is opaque to everything downstream.
func newSettlementRef() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	account := binary.BigEndian.Uint32(buf) % 1000000
	now := time.Now()
	return fmt.Sprintf("0.0.%06d@%d.%09d", account, now.Unix(), now.Nanosecond())
}
