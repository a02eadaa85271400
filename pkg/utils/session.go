package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sessionIDLength = 16

// GenerateSessionID derives an hourly rotating session ID from a client fingerprint.
func GenerateSessionID(input string) string {
	return sessionIDAt(input, time.Now())
}

func sessionIDAt(input string, at time.Time) string {
	hash := sha256.Sum256([]byte(input + fmt.Sprintf("%d", at.Unix()/3600)))
	return hex.EncodeToString(hash[:])[:sessionIDLength]
}

// NewRequestID returns a random request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// ValidateSessionID validates if a session ID format is correct
func ValidateSessionID(sessionID string) bool {
	if len(sessionID) != sessionIDLength {
		return false
	}

	_, err := hex.DecodeString(sessionID)
	return err == nil
}
