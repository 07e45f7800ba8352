package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the closed set of account kinds. The zero value is not a valid role
// and is what an anonymous identity carries.
type Role uint8

const (
	RoleNone Role = iota
	RoleContestant
	RoleJudge
)

// Capability is something a role may be allowed to do.
type Capability uint8

const (
	CapViewPractice Capability = iota + 1
	CapCreateProblem
)

var roleNames = map[Role]string{
	RoleContestant: "contestant",
	RoleJudge:      "judge",
}

var roleCapabilities = map[Role][]Capability{
	RoleContestant: {CapViewPractice},
	RoleJudge:      {CapCreateProblem},
}

// Roles lists the roles a user can sign up with, in display order.
func Roles() []Role {
	return []Role{RoleContestant, RoleJudge}
}

// ParseRole maps the stored / submitted tag to a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contestant":
		return RoleContestant, nil
	case "judge":
		return RoleJudge, nil
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "none"
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// Can reports whether the role holds the capability.
func (r Role) Can(c Capability) bool {
	for _, held := range roleCapabilities[r] {
		if held == c {
			return true
		}
	}
	return false
}

// Value stores the role as its text tag.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot store invalid role %d", r)
	}
	return r.String(), nil
}

// Scan reads the text tag written by Value.
func (r *Role) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
