package models

// Request bodies sent to the backend.

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// NewGroup omits an empty password so the group is created open.
type NewGroup struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

type JoinGroup struct {
	Password string `json:"password"`
}

type NewMember struct {
	UserID string `json:"userId"`
}

type NewItem struct {
	Name string `json:"name"`
}
