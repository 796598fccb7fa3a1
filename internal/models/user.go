package models

import (
	"strconv"
	"strings"
)

// User is a catalog user account as returned by the users endpoints
type User struct {
	UserID           int64  `json:"user_id"`
	Username         string `json:"username,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	RegistrationDate string `json:"registration_date,omitempty"`
	SLimit           int    `json:"slimit"`
	IsActive         *bool  `json:"is_active,omitempty"`
}

// Active reports the account status; a missing flag means active
func (u User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// DisplayName returns the full name, falling back to the username
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "N/A"
}

// RegisteredOn returns the date part of the registration timestamp
func (u User) RegisteredOn() string {
	if i := strings.IndexAny(u.RegistrationDate, "T "); i > 0 {
		return u.RegistrationDate[:i]
	}
	if u.RegistrationDate == "" {
		return "N/A"
	}
	return u.RegistrationDate
}

// UserUpdate is the body of PUT /users/{id}. Blank names are sent as null
// so the API clears them.
type UserUpdate struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	SLimit    int     `json:"slimit"`
	IsActive  bool    `json:"is_active"`
}

// NewUserUpdate builds an update from raw form input
func NewUserUpdate(username, firstName, lastName, slimit string, active bool) UserUpdate {
	limit, err := strconv.Atoi(strings.TrimSpace(slimit))
	if err != nil {
		limit = 0
	}
	return UserUpdate{
		Username:  nullable(username),
		FirstName: nullable(firstName),
		LastName:  nullable(lastName),
		SLimit:    limit,
		IsActive:  active,
	}
}

// Apply copies the update onto a cached user
func (u UserUpdate) Apply(user *User) {
	user.Username = deref(u.Username)
	user.FirstName = deref(u.FirstName)
	user.LastName = deref(u.LastName)
	user.SLimit = u.SLimit
	user.IsActive = Ptr(u.IsActive)
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
