package models

import "time"

// ConsoleState is the per-session working state of the console: the loaded
// users and the current search matches, the user being edited, the trending
// selection and the content record opened in the editor
type ConsoleState struct {
	SessionID        string            `gorm:"primaryKey;type:varchar(64)" json:"session_id"`
	Users            []User            `gorm:"serializer:json;type:text" json:"users,omitempty"`
	UserQuery        string            `gorm:"type:varchar(255)" json:"user_query,omitempty"`
	Matches          []User            `gorm:"serializer:json;type:text" json:"matches,omitempty"`
	EditingUserID    *int64            `json:"editing_user_id,omitempty"`
	Trending         TrendingSelection `gorm:"serializer:json;type:text" json:"trending"`
	TrendingLoadedAt *time.Time        `json:"trending_loaded_at,omitempty"`
	Content          *Record           `gorm:"serializer:json;type:text" json:"content,omitempty"`
	CreatedAt        time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null;index:idx_console_states_updated" json:"updated_at"`
}

// TableName specifies the table name for ConsoleState
func (ConsoleState) TableName() string {
	return "console_states"
}

// DisplayedUsers returns the search matches while a query is active and the
// loaded list otherwise
func (s *ConsoleState) DisplayedUsers() []User {
	if s.UserQuery != "" {
		return s.Matches
	}
	return s.Users
}

// FindUser returns the cached user with the given id
func (s *ConsoleState) FindUser(id int64) (*User, bool) {
	for _, list := range [][]User{s.Users, s.Matches} {
		for i := range list {
			if list[i].UserID == id {
				return &list[i], true
			}
		}
	}
	return nil, false
}

// DropUser removes a user from the cached lists
func (s *ConsoleState) DropUser(id int64) {
	s.Users = dropUser(s.Users, id)
	s.Matches = dropUser(s.Matches, id)
	if s.EditingUserID != nil && *s.EditingUserID == id {
		s.EditingUserID = nil
	}
}

func dropUser(users []User, id int64) []User {
	for i := range users {
		if users[i].UserID == id {
			return append(users[:i], users[i+1:]...)
		}
	}
	return users
}
