package dispatch

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// HashKey is the supplemental policy: it hashes the key (the bytes after
// the first space, up to the next space or end of request) with blake3
// and routes on the digest's first four bytes, read big-endian, mod peers. Unlike FirstKeyDigit it spreads
// every key, not just the ones starting with a digit, across all peers.
type HashKey struct{}

func NewHashKey() *HashKey { return &HashKey{} }

func (p *HashKey) Next(peers int, req []byte) int {
	if peers <= 0 {
		return 0
	}
	key := extractKey(req)
	h := blake3.New()
	h.Write(key)
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint32(sum[:4])) % peers
}

func extractKey(req []byte) []byte {
	start := -1
	for i, b := range req {
		if b == ' ' {
			if start == -1 {
				start = i + 1
				continue
			}
			return req[start:i]
		}
	}
	if start == -1 || start > len(req) {
		return req
	}
	return req[start:]
}

func (p *HashKey) String() string { return "hash-key" }
