// Package clienttest provides an in-memory shopping-list backend that
// satisfies client.Client. It enforces the same ownership and membership
// rules as the real server closely enough for controller tests.
package clienttest

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/client/client"
	"github.com/dmitrijs2005/shoplist/internal/client/models"
)

type account struct {
	user     models.User
	password string
}

type group struct {
	group    models.Group
	password string
	members  []models.Member
	items    []models.Item
}

// Backend is safe for concurrent use.
type Backend struct {
	// OnCall, when set, runs before every call with the method name and its
	// string arguments. It is invoked without holding the backend lock, so it
	// may block to hold a request "in flight".
	OnCall func(method string, args ...string)

	mu       sync.Mutex
	now      func() time.Time
	session  client.SessionHooks
	accounts map[string]*account // by user id
	tokens   map[string]string   // token -> user id
	groups   map[string]*group
	order    []string // group ids in creation order
	seq      int
	calls    []string
	failOnce map[string][]error
	failAll  map[string]error
}

var _ client.Client = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{
		now:      time.Now,
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		groups:   make(map[string]*group),
		failOnce: make(map[string][]error),
		failAll:  make(map[string]error),
	}
}

// SetNow replaces the clock used for createdAt/boughtAt stamps.
func (b *Backend) SetNow(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// UseSession mirrors HTTPClient.UseSession.
func (b *Backend) UseSession(s client.SessionHooks) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = s
}

// FailNext makes the next call of method return err.
func (b *Backend) FailNext(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOnce[method] = append(b.failOnce[method], err)
}

// FailAlways makes every call of method return err until cleared with a nil err.
func (b *Backend) FailAlways(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failAll, method)
		return
	}
	b.failAll[method] = err
}

// Calls returns the method names invoked so far, in order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// CallCount returns how often method was invoked.
func (b *Backend) CallCount(method string) int {
	n := 0
	for _, c := range b.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

// ResetCalls forgets the recorded calls.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// AddUser seeds an account and returns it.
func (b *Backend) AddUser(name, username, password string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(name, username, password)
}

// IssueToken returns a valid token for userID without going through Login.
func (b *Backend) IssueToken(userID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueTokenLocked(userID)
}

// RevokeTokens invalidates every token of userID, as a logout elsewhere would.
func (b *Backend) RevokeTokens(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for tok, id := range b.tokens {
		if id == userID {
			delete(b.tokens, tok)
		}
	}
}

// SeedGroup creates a group owned by ownerID directly.
func (b *Backend) SeedGroup(ownerID, name, password string) models.Group {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createGroupLocked(b.accounts[ownerID].user, name, password)
}

// SeedMember adds userID to groupID directly and returns the membership.
func (b *Backend) SeedMember(groupID, userID string) models.Member {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addMemberLocked(b.groups[groupID], b.accounts[userID].user)
}

// SeedItem adds an item created by userID.
func (b *Backend) SeedItem(groupID, userID, name string) models.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addItemLocked(b.groups[groupID], b.accounts[userID].user, name)
}

// GroupItems returns a copy of the items stored for groupID.
func (b *Backend) GroupItems(groupID string) []models.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.groups[groupID]
	if !ok {
		return nil
	}
	return append([]models.Item(nil), g.items...)
}

// HasGroup reports whether groupID still exists.
func (b *Backend) HasGroup(groupID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.groups[groupID]
	return ok
}

// IsMember reports whether userID belongs to groupID.
func (b *Backend) IsMember(groupID, userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.groups[groupID]
	return ok && memberIndex(g, userID) >= 0
}

// HasUser reports whether an account with userID exists.
func (b *Backend) HasUser(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.accounts[userID]
	return ok
}

func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s%d", prefix, b.seq)
}

func (b *Backend) addUserLocked(name, username, password string) models.User {
	u := models.User{ID: b.nextID("u"), Name: name, Username: username}
	b.accounts[u.ID] = &account{user: u, password: password}
	return u
}

func (b *Backend) issueTokenLocked(userID string) string {
	tok := b.nextID("tok-")
	b.tokens[tok] = userID
	return tok
}

func (b *Backend) createGroupLocked(owner models.User, name, password string) models.Group {
	g := &group{
		group:    models.Group{ID: b.nextID("g"), Name: name, CreatedAt: b.now(), Owner: owner},
		password: password,
	}
	b.groups[g.group.ID] = g
	b.order = append(b.order, g.group.ID)
	b.addMemberLocked(g, owner)
	return g.group
}

func (b *Backend) addMemberLocked(g *group, u models.User) models.Member {
	m := models.Member{ID: b.nextID("m"), User: u, Group: g.group}
	g.members = append(g.members, m)
	return m
}

func (b *Backend) addItemLocked(g *group, by models.User, name string) models.Item {
	it := models.Item{ID: b.nextID("i"), Name: name, CreatedAt: b.now(), CreatedBy: by}
	g.items = append(g.items, it)
	return it
}

func memberIndex(g *group, userID string) int {
	for i, m := range g.members {
		if m.User.ID == userID {
			return i
		}
	}
	return -1
}

func apiError(status int, method, path, msg string) error {
	return &client.APIError{StatusCode: status, Method: method, Path: path, Message: msg}
}

// begin records the call, runs OnCall and returns an injected failure if any.
// On success the backend lock is held and must be released by the caller.
func (b *Backend) begin(method string, args ...string) (string, error) {
	b.mu.Lock()
	b.calls = append(b.calls, method)
	hook := b.OnCall
	session := b.session
	b.mu.Unlock()

	if hook != nil {
		hook(method, args...)
	}

	var token string
	if session != nil {
		token = session.Token()
	}

	b.mu.Lock()
	if q := b.failOnce[method]; len(q) > 0 {
		err := q[0]
		b.failOnce[method] = q[1:]
		b.mu.Unlock()
		return "", err
	}
	if err := b.failAll[method]; err != nil {
		b.mu.Unlock()
		return "", err
	}
	return token, nil
}

// actor resolves the caller. Must be called with b.mu held; on error the lock
// is released and, as the HTTP client does, the session is told about the
// rejected token.
func (b *Backend) actor(ctx context.Context, token, method, path string) (models.User, error) {
	if id, ok := b.tokens[token]; ok && token != "" {
		if acc, ok := b.accounts[id]; ok {
			return acc.user, nil
		}
	}
	session := b.session
	b.mu.Unlock()
	if token != "" && session != nil {
		session.Unauthorized(ctx, token)
	}
	return models.User{}, apiError(http.StatusUnauthorized, method, path, "unauthorized")
}

func (b *Backend) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	if _, err := b.begin("Login", username); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	for _, acc := range b.accounts {
		if acc.user.Username == username && acc.password == password {
			return &models.AuthResponse{User: acc.user, Token: b.issueTokenLocked(acc.user.ID)}, nil
		}
	}
	return nil, apiError(http.StatusUnauthorized, http.MethodPost, "/auth", "invalid credentials")
}

func (b *Backend) CurrentUser(ctx context.Context) (*models.User, error) {
	token, err := b.begin("CurrentUser")
	if err != nil {
		return nil, err
	}
	u, err := b.actor(ctx, token, http.MethodGet, "/auth")
	if err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	return &u, nil
}

func (b *Backend) Register(ctx context.Context, name, username, password string) (*models.User, error) {
	if _, err := b.begin("Register", name, username); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	for _, acc := range b.accounts {
		if acc.user.Username == username {
			return nil, apiError(http.StatusConflict, http.MethodPost, "/users", "username taken")
		}
	}
	u := b.addUserLocked(name, username, password)
	return &u, nil
}

func (b *Backend) DeleteAccount(ctx context.Context) error {
	token, err := b.begin("DeleteAccount")
	if err != nil {
		return err
	}
	me, err := b.actor(ctx, token, http.MethodDelete, "/users")
	if err != nil {
		return err
	}
	defer b.mu.Unlock()

	delete(b.accounts, me.ID)
	for tok, id := range b.tokens {
		if id == me.ID {
			delete(b.tokens, tok)
		}
	}
	for id, g := range b.groups {
		if g.group.Owner.ID == me.ID {
			delete(b.groups, id)
			continue
		}
		if i := memberIndex(g, me.ID); i >= 0 {
			g.members = append(g.members[:i], g.members[i+1:]...)
		}
	}
	return nil
}

func (b *Backend) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	token, err := b.begin("SearchUsers", query)
	if err != nil {
		return nil, err
	}
	if _, err := b.actor(ctx, token, http.MethodGet, "/users/search"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	q := strings.ToLower(query)
	var out []models.User
	for _, acc := range b.accounts {
		if strings.Contains(strings.ToLower(acc.user.Username), q) || strings.Contains(strings.ToLower(acc.user.Name), q) {
			out = append(out, acc.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (b *Backend) MyGroups(ctx context.Context) ([]models.Group, error) {
	token, err := b.begin("MyGroups")
	if err != nil {
		return nil, err
	}
	me, err := b.actor(ctx, token, http.MethodGet, "/groups")
	if err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	var out []models.Group
	for _, id := range b.order {
		if g, ok := b.groups[id]; ok && memberIndex(g, me.ID) >= 0 {
			out = append(out, g.group)
		}
	}
	return out, nil
}

func (b *Backend) SearchGroups(ctx context.Context, query string) ([]models.Group, error) {
	token, err := b.begin("SearchGroups", query)
	if err != nil {
		return nil, err
	}
	me, err := b.actor(ctx, token, http.MethodGet, "/groups/search")
	if err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	q := strings.ToLower(query)
	var out []models.Group
	for _, id := range b.order {
		g, ok := b.groups[id]
		if !ok || memberIndex(g, me.ID) >= 0 {
			continue
		}
		if strings.Contains(strings.ToLower(g.group.Name), q) {
			out = append(out, g.group)
		}
	}
	return out, nil
}

func (b *Backend) CreateGroup(ctx context.Context, name, password string) (*models.Group, error) {
	token, err := b.begin("CreateGroup", name)
	if err != nil {
		return nil, err
	}
	me, err := b.actor(ctx, token, http.MethodPost, "/groups")
	if err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	g := b.createGroupLocked(me, name, password)
	return &g, nil
}

// memberGroup loads groupID and checks the actor belongs to it. Must be
// called with b.mu held.
func (b *Backend) memberGroup(groupID, userID, method, path string) (*group, error) {
	g, ok := b.groups[groupID]
	if !ok {
		return nil, apiError(http.StatusNotFound, method, path, "group not found")
	}
	if memberIndex(g, userID) < 0 {
		return nil, apiError(http.StatusForbidden, method, path, "not a member")
	}
	return g, nil
}

func (b *Backend) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	token, err := b.begin("GetGroup", groupID)
	if err != nil {
		return nil, err
	}
	path := "/groups/" + groupID
	me, err := b.actor(ctx, token, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	g, err := b.memberGroup(groupID, me.ID, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	out := g.group
	return &out, nil
}

func (b *Backend) DeleteGroup(ctx context.Context, groupID string) error {
	token, err := b.begin("DeleteGroup", groupID)
	if err != nil {
		return err
	}
	path := "/groups/" + groupID
	me, err := b.actor(ctx, token, http.MethodDelete, path)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()

	g, ok := b.groups[groupID]
	if !ok {
		return apiError(http.StatusNotFound, http.MethodDelete, path, "group not found")
	}
	if g.group.Owner.ID != me.ID {
		return apiError(http.StatusForbidden, http.MethodDelete, path, "only the owner can delete a group")
	}
	delete(b.groups, groupID)
	return nil
}

func (b *Backend) JoinGroup(ctx context.Context, groupID, password string) error {
	token, err := b.begin("JoinGroup", groupID)
	if err != nil {
		return err
	}
	path := "/groups/" + groupID + "/join"
	me, err := b.actor(ctx, token, http.MethodPost, path)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()

	g, ok := b.groups[groupID]
	if !ok {
		return apiError(http.StatusNotFound, http.MethodPost, path, "group not found")
	}
	if g.password != "" && g.password != password {
		return apiError(http.StatusForbidden, http.MethodPost, path, "incorrect password")
	}
	if memberIndex(g, me.ID) < 0 {
		b.addMemberLocked(g, me)
	}
	return nil
}

func (b *Backend) LeaveGroup(ctx context.Context, groupID string) error {
	token, err := b.begin("LeaveGroup", groupID)
	if err != nil {
		return err
	}
	path := "/groups/" + groupID + "/leave"
	me, err := b.actor(ctx, token, http.MethodDelete, path)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()

	g, err := b.memberGroup(groupID, me.ID, http.MethodDelete, path)
	if err != nil {
		return err
	}
	if g.group.Owner.ID == me.ID {
		return apiError(http.StatusForbidden, http.MethodDelete, path, "the owner cannot leave")
	}
	i := memberIndex(g, me.ID)
	g.members = append(g.members[:i], g.members[i+1:]...)
	return nil
}

func (b *Backend) Members(ctx context.Context, groupID string) ([]models.Member, error) {
	token, err := b.begin("Members", groupID)
	if err != nil {
		return nil, err
	}
	path := "/groups/" + groupID + "/members"
	me, err := b.actor(ctx, token, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	g, err := b.memberGroup(groupID, me.ID, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	return append([]models.Member(nil), g.members...), nil
}

func (b *Backend) AddMember(ctx context.Context, groupID, userID string) error {
	token, err := b.begin("AddMember", groupID, userID)
	if err != nil {
		return err
	}
	path := "/groups/" + groupID + "/members"
	me, err := b.actor(ctx, token, http.MethodPost, path)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()

	g, err := b.memberGroup(groupID, me.ID, http.MethodPost, path)
	if err != nil {
		return err
	}
	if g.group.Owner.ID != me.ID {
		return apiError(http.StatusForbidden, http.MethodPost, path, "only the owner can add members")
	}
	acc, ok := b.accounts[userID]
	if !ok {
		return apiError(http.StatusNotFound, http.MethodPost, path, "user not found")
	}
	if memberIndex(g, userID) >= 0 {
		return apiError(http.StatusConflict, http.MethodPost, path, "already a member")
	}
	b.addMemberLocked(g, acc.user)
	return nil
}

func (b *Backend) RemoveMember(ctx context.Context, groupID, memberID string) error {
	token, err := b.begin("RemoveMember", groupID, memberID)
	if err != nil {
		return err
	}
	path := "/groups/" + groupID + "/members/" + memberID
	me, err := b.actor(ctx, token, http.MethodDelete, path)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()

	g, err := b.memberGroup(groupID, me.ID, http.MethodDelete, path)
	if err != nil {
		return err
	}
	if g.group.Owner.ID != me.ID {
		return apiError(http.StatusForbidden, http.MethodDelete, path, "only the owner can remove members")
	}
	for i, m := range g.members {
		if m.ID != memberID {
			continue
		}
		if m.User.ID == g.group.Owner.ID {
			return apiError(http.StatusForbidden, http.MethodDelete, path, "the owner cannot be removed")
		}
		g.members = append(g.members[:i], g.members[i+1:]...)
		return nil
	}
	return apiError(http.StatusNotFound, http.MethodDelete, path, "member not found")
}

func (b *Backend) Items(ctx context.Context, groupID string) ([]models.Item, error) {
	token, err := b.begin("Items", groupID)
	if err != nil {
		return nil, err
	}
	path := "/groups/" + groupID + "/items"
	me, err := b.actor(ctx, token, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	g, err := b.memberGroup(groupID, me.ID, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	return append([]models.Item(nil), g.items...), nil
}

func (b *Backend) AddItem(ctx context.Context, groupID, name string) error {
	token, err := b.begin("AddItem", groupID, name)
	if err != nil {
		return err
	}
	path := "/groups/" + groupID + "/items"
	me, err := b.actor(ctx, token, http.MethodPost, path)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()

	g, err := b.memberGroup(groupID, me.ID, http.MethodPost, path)
	if err != nil {
		return err
	}
	b.addItemLocked(g, me, name)
	return nil
}

// item finds itemID in groupID on behalf of the actor. Must be called with
// b.mu held.
func (b *Backend) item(groupID, itemID, userID, method, path string) (*group, int, error) {
	g, err := b.memberGroup(groupID, userID, method, path)
	if err != nil {
		return nil, -1, err
	}
	for i := range g.items {
		if g.items[i].ID == itemID {
			return g, i, nil
		}
	}
	return nil, -1, apiError(http.StatusNotFound, method, path, "item not found")
}

func (b *Backend) BuyItem(ctx context.Context, groupID, itemID string) error {
	token, err := b.begin("BuyItem", groupID, itemID)
	if err != nil {
		return err
	}
	path := "/groups/" + groupID + "/items/" + itemID + "/buy"
	me, err := b.actor(ctx, token, http.MethodPost, path)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()

	g, i, err := b.item(groupID, itemID, me.ID, http.MethodPost, path)
	if err != nil {
		return err
	}
	now := b.now()
	by := me
	g.items[i].Bought = true
	g.items[i].BoughtAt = &now
	g.items[i].BoughtBy = &by
	return nil
}

func (b *Backend) UnbuyItem(ctx context.Context, groupID, itemID string) error {
	token, err := b.begin("UnbuyItem", groupID, itemID)
	if err != nil {
		return err
	}
	path := "/groups/" + groupID + "/items/" + itemID + "/unbuy"
	me, err := b.actor(ctx, token, http.MethodDelete, path)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()

	g, i, err := b.item(groupID, itemID, me.ID, http.MethodDelete, path)
	if err != nil {
		return err
	}
	g.items[i].Bought = false
	g.items[i].BoughtAt = nil
	g.items[i].BoughtBy = nil
	return nil
}

func (b *Backend) DeleteItem(ctx context.Context, groupID, itemID string) error {
	token, err := b.begin("DeleteItem", groupID, itemID)
	if err != nil {
		return err
	}
	path := "/groups/" + groupID + "/items/" + itemID
	me, err := b.actor(ctx, token, http.MethodDelete, path)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()

	g, i, err := b.item(groupID, itemID, me.ID, http.MethodDelete, path)
	if err != nil {
		return err
	}
	if g.group.Owner.ID != me.ID && g.items[i].CreatedBy.ID != me.ID {
		return apiError(http.StatusForbidden, http.MethodDelete, path, "not allowed to delete this item")
	}
	g.items = append(g.items[:i], g.items[i+1:]...)
	return nil
}
