package domain

import (
	"fmt"
	"strings"
)

type Role int

const (
	RoleStudent Role = iota + 1
	RoleOwner
	RoleBroker
)

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, nil
	case "owner", "hostel_owner", "hostel-owner":
		return RoleOwner, nil
	case "broker", "hostel_broker", "hostel-broker":
		return RoleBroker, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleOwner:
		return "owner"
	case RoleBroker:
		return "broker"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func (r Role) MarshalText() ([]byte, error) {
	if r < RoleStudent || r > RoleBroker {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Session is the authenticated caller. It is loaded once per request and
// carried in the request context.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}
