package pptdom

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashFunc computes the de-duplication key of a media stream.
type HashFunc func(data []byte) string

// HashMedia is the default HashFunc: a hex encoded BLAKE2b-256 digest.
func HashMedia(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MediaRegistry maps content hashes to media parts already stored in a
// package, so that inserting the same image twice stores its bytes once.
//
// A registry belongs to exactly one Presentation and is discarded when the
// presentation is closed. It is not safe for concurrent use.
type MediaRegistry struct {
	parts map[string]*Part
}

// NewMediaRegistry returns an empty registry.
func NewMediaRegistry() *MediaRegistry {
	return &MediaRegistry{parts: make(map[string]*Part)}
}

// Lookup returns the part registered for hash.
func (r *MediaRegistry) Lookup(hash string) (*Part, bool) {
	p, ok := r.parts[hash]
	return p, ok
}

// Register associates hash with part. Registering a hash again replaces
// the previous part.
func (r *MediaRegistry) Register(hash string, part *Part) {
	r.parts[hash] = part
}

// Len returns the number of registered hashes.
func (r *MediaRegistry) Len() int { return len(r.parts) }
