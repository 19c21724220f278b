package domain

// Identity is the authenticated caller as decoded from a token. It is a value
// type: the guard derives it once and handlers pass copies downstream.
type Identity struct {
	ID   string
	Role Role
}

// IsZero reports whether no identity is present.
func (i Identity) IsZero() bool {
	return i.ID == ""
}
