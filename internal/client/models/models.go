// Package models defines the records exchanged with the shopping-list backend.
// The client never owns these: every copy is replaced by the next fetch.
package models

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Initial is the letter shown in the user's avatar circle.
func (u User) Initial() string {
	s := strings.TrimSpace(u.Name)
	if s == "" {
		s = strings.TrimSpace(u.Username)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// Group password is write-only: the backend never returns it, so it is not
// decoded here.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Owner     User      `json:"owner"`
}

// OwnedBy reports whether userID is the group's owner.
func (g Group) OwnedBy(userID string) bool {
	return userID != "" && g.Owner.ID == userID
}

type Member struct {
	ID    string `json:"id"`
	User  User   `json:"user"`
	Group Group  `json:"group"`
}

type Item struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	Bought    bool       `json:"bought"`
	BoughtAt  *time.Time `json:"boughtAt,omitempty"`
	BoughtBy  *User      `json:"boughtBy,omitempty"`
	CreatedBy User       `json:"createdBy"`
}

// Consistent reports whether BoughtAt and BoughtBy are set exactly when the
// item is bought.
func (i Item) Consistent() bool {
	if i.Bought {
		return i.BoughtAt != nil && i.BoughtBy != nil
	}
	return i.BoughtAt == nil && i.BoughtBy == nil
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
