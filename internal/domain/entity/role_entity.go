package entity

// Role is the authorization role stored on every user row.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role string to a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// CanSignInToFront reports whether the role may log in through the public front end.
// Admins sign in through the back office only.
func (r Role) CanSignInToFront() bool { return r == RoleUser }

func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) String() string { return string(r) }
