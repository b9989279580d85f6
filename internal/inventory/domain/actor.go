package domain

import "strconv"

// Actor is the operator on whose behalf an operation runs. It is passed
// explicitly into every command.
type Actor struct {
	UserID     uint     `json:"user_id"`
	EmployeeID *uint    `json:"employee_id,omitempty"`
	Name       string   `json:"name"`
	Roles      []string `json:"roles,omitempty"`
	IPAddress  string   `json:"-"`
	UserAgent  string   `json:"-"`
}

// HasRole reports whether the actor carries role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Identity is the string stored in audit rows.
func (a Actor) Identity() string {
	if a.UserID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(a.UserID), 10)
}

// DisplayName falls back to "system" for anonymous callers.
func (a Actor) DisplayName() string {
	if a.Name == "" {
		return "system"
	}
	return a.Name
}
