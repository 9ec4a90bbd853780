package dispatch

import "fmt"

// New builds the Policy named by choice: "rr" (round-robin), "key"
// (first-key-digit), or "hash" (blake3 hash-key).
func New(choice string) (Policy, error) {
	switch choice {
	case "rr":
		return NewRoundRobin(), nil
	case "key":
		return NewFirstKeyDigit(), nil
	case "hash":
		return NewHashKey(), nil
	default:
		return nil, fmt.Errorf("dispatch: unknown policy %q", choice)
	}
}
