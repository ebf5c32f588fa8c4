package postgresadapter

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UUIDGenerator implements ports.IDGenerator using RFC 4122 UUID v4 values.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// VoteReferenceGenerator mints gateway correlation keys from 12 bytes of
// crypto randomness, URL-safe encoded.
type VoteReferenceGenerator struct{}

func (VoteReferenceGenerator) NewReference() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read reference entropy: %w", err)
	}
	return "vote_" + base64.RawURLEncoding.EncodeToString(buf), nil
}
