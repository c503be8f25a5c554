package slug

import (
	"math/rand"
	"sync"
	"time"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	length   = 8
)

var (
	mu  sync.Mutex
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// New returns a short URL-safe identifier. Uniqueness is probabilistic;
// callers creating a job must treat an already-existing artifact
// directory as a collision and ask for a fresh slug.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}
