package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/shoplist/internal/client/models"
)

func groupPath(groupID string, rest ...string) string {
	p := "/groups/" + url.PathEscape(groupID)
	for _, seg := range rest {
		p += "/" + url.PathEscape(seg)
	}
	return p
}

func searchQuery(q string) url.Values {
	return url.Values{"q": []string{q}}
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost, route: "/auth", path: "/auth",
		body: models.Credentials{Username: username, Password: password},
		out:  &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, request{method: http.MethodGet, route: "/auth", path: "/auth", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, name, username, password string) (*models.User, error) {
	var out models.User
	err := c.do(ctx, request{
		method: http.MethodPost, route: "/users", path: "/users",
		body: models.Registration{Name: name, Username: username, Password: password},
		out:  &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodDelete, route: "/users", path: "/users"})
}

func (c *HTTPClient) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, request{
		method: http.MethodGet, route: "/users/search", path: "/users/search",
		query: searchQuery(query), out: &out,
	})
	return out, err
}

func (c *HTTPClient) MyGroups(ctx context.Context) ([]models.Group, error) {
	var out []models.Group
	err := c.do(ctx, request{method: http.MethodGet, route: "/groups", path: "/groups", out: &out})
	return out, err
}

func (c *HTTPClient) SearchGroups(ctx context.Context, query string) ([]models.Group, error) {
	var out []models.Group
	err := c.do(ctx, request{
		method: http.MethodGet, route: "/groups/search", path: "/groups/search",
		query: searchQuery(query), out: &out,
	})
	return out, err
}

func (c *HTTPClient) CreateGroup(ctx context.Context, name, password string) (*models.Group, error) {
	var out models.Group
	err := c.do(ctx, request{
		method: http.MethodPost, route: "/groups", path: "/groups",
		body: models.NewGroup{Name: name, Password: password},
		out:  &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var out models.Group
	err := c.do(ctx, request{method: http.MethodGet, route: "/groups/:id", path: groupPath(groupID), out: &out})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteGroup(ctx context.Context, groupID string) error {
	return c.do(ctx, request{method: http.MethodDelete, route: "/groups/:id", path: groupPath(groupID)})
}

func (c *HTTPClient) JoinGroup(ctx context.Context, groupID, password string) error {
	return c.do(ctx, request{
		method: http.MethodPost, route: "/groups/:id/join", path: groupPath(groupID, "join"),
		body: models.JoinGroup{Password: password},
	})
}

func (c *HTTPClient) LeaveGroup(ctx context.Context, groupID string) error {
	return c.do(ctx, request{method: http.MethodDelete, route: "/groups/:id/leave", path: groupPath(groupID, "leave")})
}

func (c *HTTPClient) Members(ctx context.Context, groupID string) ([]models.Member, error) {
	var out []models.Member
	err := c.do(ctx, request{method: http.MethodGet, route: "/groups/:id/members", path: groupPath(groupID, "members"), out: &out})
	return out, err
}

func (c *HTTPClient) AddMember(ctx context.Context, groupID, userID string) error {
	return c.do(ctx, request{
		method: http.MethodPost, route: "/groups/:id/members", path: groupPath(groupID, "members"),
		body: models.NewMember{UserID: userID},
	})
}

func (c *HTTPClient) RemoveMember(ctx context.Context, groupID, memberID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete, route: "/groups/:id/members/:memberId",
		path: groupPath(groupID, "members", memberID),
	})
}

func (c *HTTPClient) Items(ctx context.Context, groupID string) ([]models.Item, error) {
	var out []models.Item
	err := c.do(ctx, request{method: http.MethodGet, route: "/groups/:id/items", path: groupPath(groupID, "items"), out: &out})
	return out, err
}

func (c *HTTPClient) AddItem(ctx context.Context, groupID, name string) error {
	return c.do(ctx, request{
		method: http.MethodPost, route: "/groups/:id/items", path: groupPath(groupID, "items"),
		body: models.NewItem{Name: name},
	})
}

func (c *HTTPClient) BuyItem(ctx context.Context, groupID, itemID string) error {
	return c.do(ctx, request{
		method: http.MethodPost, route: "/groups/:id/items/:itemId/buy",
		path: groupPath(groupID, "items", itemID, "buy"),
	})
}

func (c *HTTPClient) UnbuyItem(ctx context.Context, groupID, itemID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete, route: "/groups/:id/items/:itemId/unbuy",
		path: groupPath(groupID, "items", itemID, "unbuy"),
	})
}

func (c *HTTPClient) DeleteItem(ctx context.Context, groupID, itemID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete, route: "/groups/:id/items/:itemId",
		path: groupPath(groupID, "items", itemID),
	})
}
