package task

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// IDLength is the length of task and epic identifiers.
const IDLength = 6

// NewID returns a random 6-character lowercase alphanumeric identifier.
// Collisions are handled by the caller retrying against the primary key.
func NewID() string {
	buf := make([]byte, IDLength)
	_, _ = rand.Read(buf)
	var b strings.Builder
	b.Grow(IDLength)
	for _, c := range buf {
		b.WriteByte(idAlphabet[int(c)%len(idAlphabet)])
	}
	return b.String()
}

// NewSessionID returns a session identifier ("s-" + 8 hex chars).
func NewSessionID() string {
	return "s-" + uuid.New().String()[:8]
}

// Slugify converts a task or epic name into a filesystem-safe slug used in
// plan file names.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
