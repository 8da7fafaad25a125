package fairness

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
)

// Source yields uniform draws. Every outcome in a round comes from one.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// SeededSource is the provably-fair stream: draw i of a round is
// HMAC-SHA256(serverSeed, "clientSeed:nonce:i"), first 52 bits over 2^52.
// The cursor is persisted with the round so the stream resumes exactly.
type SeededSource struct {
	serverSeed string
	clientSeed string
	nonce      int64
	cursor     int64
}

func NewSeededSource(serverSeed, clientSeed string, nonce, cursor int64) *SeededSource {
	return &SeededSource{
		serverSeed: serverSeed,
		clientSeed: clientSeed,
		nonce:      nonce,
		cursor:     cursor,
	}
}

func (s *SeededSource) Float64() float64 {
	f := Draw(s.serverSeed, s.clientSeed, s.nonce, s.cursor)
	s.cursor++
	return f
}

func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		panic("fairness: Intn called with non-positive n")
	}
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

func (s *SeededSource) Cursor() int64 {
	return s.cursor
}

func Draw(serverSeed, clientSeed string, nonce, cursor int64) float64 {
	h := hmac.New(sha256.New, []byte(serverSeed))
	fmt.Fprintf(h, "%s:%d:%d", clientSeed, nonce, cursor)
	hash := hex.EncodeToString(h.Sum(nil))

	n, _ := strconv.ParseUint(hash[:13], 16, 64)
	return float64(n) / math.Pow(2, 52)
}

func NewServerSeed() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate server seed: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func ServerSeedHash(serverSeed string) string {
	sum := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(sum[:])
}

// Replay returns the first n draws of a round for client-side verification.
func Replay(serverSeed, clientSeed string, nonce int64, n int) []float64 {
	draws := make([]float64, n)
	for i := range draws {
		draws[i] = Draw(serverSeed, clientSeed, nonce, int64(i))
	}
	return draws
}
