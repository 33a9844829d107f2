package bench

import (
	"fmt"
	"strings"
)

// Identity is the client persona a call is made on behalf of. The set is
// closed: a call is either mocked or hits the real backend.
type Identity int

const (
	// Mocked asks the target to answer from its mock data
	Mocked Identity = iota
	// Backend asks the target to forward to the real backend
	Backend
)

// Identities lists every identity in the order they are measured
var Identities = []Identity{Mocked, Backend}

func (i Identity) String() string {
	switch i {
	case Mocked:
		return "mocked"
	case Backend:
		return "backend"
	default:
		return fmt.Sprintf("identity(%d)", int(i))
	}
}

// IsMocked reports whether i is the Mocked identity
func (i Identity) IsMocked() bool {
	return i == Mocked
}

// ParseIdentity parses "mocked"/"mock" or "backend", case-insensitively.
func ParseIdentity(s string) (Identity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mocked", "mock":
		return Mocked, nil
	case "backend":
		return Backend, nil
	default:
		return 0, fmt.Errorf("unknown identity %q (want mocked or backend)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Identity) UnmarshalText(b []byte) error {
	id, err := ParseIdentity(string(b))
	if err != nil {
		return err
	}
	*i = id
	return nil
}

// ClientIdentity pairs an identity with the client id sent in the client
// header for it.
type ClientIdentity struct {
	Identity Identity
	ClientID string
}
