package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"replate/internal/domain"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

// Actor is the already-authenticated caller. The gateway in front of this
// service verifies the token and forwards identity as trusted headers.
type Actor struct {
	ID   int64
	Role Role
}

var ErrUnauthenticated = errors.New("unauthenticated")

// FromRequest extracts the actor from the X-User-Id / X-User-Role headers.
func FromRequest(r *http.Request) (Actor, error) {
	rawID := r.Header.Get("X-User-Id")
	rawRole := r.Header.Get("X-User-Role")
	if rawID == "" || rawRole == "" {
		return Actor{}, fmt.Errorf("identity headers missing: %w", ErrUnauthenticated)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return Actor{}, fmt.Errorf("malformed X-User-Id %q: %w", rawID, ErrUnauthenticated)
	}
	role := Role(rawRole)
	switch role {
	case RoleCustomer, RoleBusiness, RoleAdmin:
	default:
		return Actor{}, fmt.Errorf("unknown role %q: %w", rawRole, ErrUnauthenticated)
	}
	return Actor{ID: id, Role: role}, nil
}

// Require is the single capability check shared by every operation. It
// returns a Forbidden error with the operation's message instead of each
// handler branching on the role ad hoc.
func Require(a Actor, want Role, detail string) error {
	if a.Role != want {
		return fmt.Errorf("%s: %w", detail, domain.ErrForbidden)
	}
	return nil
}
