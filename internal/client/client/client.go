package client

import (
	"context"

	"github.com/dmitrijs2005/shoplist/internal/client/models"
)

// Client is the backend surface used by the session and the views.
type Client interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	Register(ctx context.Context, name, username, password string) (*models.User, error)
	DeleteAccount(ctx context.Context) error
	SearchUsers(ctx context.Context, query string) ([]models.User, error)

	MyGroups(ctx context.Context) ([]models.Group, error)
	SearchGroups(ctx context.Context, query string) ([]models.Group, error)
	CreateGroup(ctx context.Context, name, password string) (*models.Group, error)
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
	JoinGroup(ctx context.Context, groupID, password string) error
	LeaveGroup(ctx context.Context, groupID string) error

	Members(ctx context.Context, groupID string) ([]models.Member, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, memberID string) error

	Items(ctx context.Context, groupID string) ([]models.Item, error)
	AddItem(ctx context.Context, groupID, name string) error
	BuyItem(ctx context.Context, groupID, itemID string) error
	UnbuyItem(ctx context.Context, groupID, itemID string) error
	DeleteItem(ctx context.Context, groupID, itemID string) error
}

// SessionHooks connects the transport to the session that owns the token.
type SessionHooks interface {
	// Token returns the current token, or "" when signed out.
	Token() string

	// Unauthorized is called once for every request that carried token and
	// got a 401 back.
	Unauthorized(ctx context.Context, token string)
}
