package escl

import (
	"crypto/rand"
	"fmt"
)

// NewJobUUID generates a random RFC 4122 version-4 UUID string for a
// scan job id, built directly on crypto/rand. No UUID library anywhere
// in the example corpus is actually called (google/uuid shows up only
// as an unused transitive dependency in one example's go.mod), so
// there is nothing to ground a third-party choice on here.
func NewJobUUID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("escl: reading random UUID bytes: %v", err))
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
