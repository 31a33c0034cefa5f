package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/shoplist/internal/client/models"
	"github.com/dmitrijs2005/shoplist/internal/client/router"
	"github.com/dmitrijs2005/shoplist/internal/common"
)

type JoinDraft struct {
	Group    models.Group
	Password string
}

type CreateDraft struct {
	Name     string
	Password string
}

// GroupsView is the home screen: the user's groups plus a search for groups
// to join.
type GroupsView struct {
	env      Env
	runner   *Runner
	debounce *Debouncer
	seq      sequence

	Join   Dialog[JoinDraft]
	Create Dialog[CreateDraft]

	// OnResults, when set, is called after each search settles with the
	// results that are now shown.
	OnResults func(query string, results []models.Group)

	mu        sync.Mutex
	myGroups  []models.Group
	loading   bool
	query     string
	results   []models.Group
	searching bool
}

func NewGroupsView(env Env) *GroupsView {
	env = env.withDefaults()
	return &GroupsView{
		env:      env,
		runner:   NewRunner(env.Notifier, env.Log),
		debounce: NewDebouncer(env.Clock, env.SearchDelay),
	}
}

// Mount loads the user's groups.
func (v *GroupsView) Mount(ctx context.Context) {
	_ = v.Refresh(ctx)
}

// Unmount stops any pending search and ignores answers still on the way.
func (v *GroupsView) Unmount() {
	v.debounce.Cancel()
	v.seq.invalidate()
}

func (v *GroupsView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	groups, err := v.env.Client.MyGroups(ctx)

	v.mu.Lock()
	v.loading = false
	if err == nil {
		v.myGroups = groups
	}
	v.mu.Unlock()

	if err != nil {
		v.env.Log.Error(ctx, "failed to fetch groups", "error", err)
		v.env.Notifier.Error("Failed to load your groups")
		return err
	}
	return nil
}

func (v *GroupsView) MyGroups() []models.Group {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Group(nil), v.myGroups...)
}

func (v *GroupsView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// SetQuery is called on every change of the search field. A blank query
// clears the results at once; anything else is searched once input has been
// quiet for the search delay.
func (v *GroupsView) SetQuery(ctx context.Context, q string) {
	v.mu.Lock()
	v.query = q
	v.mu.Unlock()

	if common.IsBlank(q) {
		v.debounce.Cancel()
		v.seq.invalidate()
		v.mu.Lock()
		v.results = nil
		v.searching = false
		v.mu.Unlock()
		return
	}

	v.debounce.Trigger(func() { v.search(ctx, q) })
}

func (v *GroupsView) search(ctx context.Context, q string) {
	n := v.seq.next()

	v.mu.Lock()
	v.searching = true
	v.mu.Unlock()

	groups, err := v.env.Client.SearchGroups(ctx, q)

	if !v.seq.isLatest(n) {
		v.env.Log.Debug(ctx, "discarding stale search response", "query", q)
		return
	}

	v.mu.Lock()
	v.searching = false
	if err == nil {
		v.results = groups
	}
	results := append([]models.Group(nil), v.results...)
	v.mu.Unlock()

	if err != nil {
		v.env.Log.Error(ctx, "failed to search groups", "query", q, "error", err)
		v.env.Notifier.Error("Failed to search groups")
		return
	}
	if v.OnResults != nil {
		v.OnResults(q, results)
	}
}

func (v *GroupsView) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

func (v *GroupsView) Results() []models.Group {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Group(nil), v.results...)
}

func (v *GroupsView) Searching() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.searching || v.debounce.Pending()
}

// OpenCard handles a click on a group card. Cards of the user's own groups
// lead to the group; search results open the join prompt instead.
func (v *GroupsView) OpenCard(g models.Group, fromSearch bool) {
	if fromSearch {
		v.Join.Open(JoinDraft{Group: g})
		return
	}
	v.env.Nav.Navigate(router.GroupPath(g.ID))
}

// SubmitJoin sends the join prompt. A wrong password leaves the prompt open.
func (v *GroupsView) SubmitJoin(ctx context.Context, password string) error {
	if err := v.Join.Update(func(d *JoinDraft) { d.Password = password }); err != nil {
		return err
	}
	d, err := v.Join.Begin()
	if err != nil {
		return err
	}

	const failure = "Failed to join group. Incorrect password."
	return v.runner.Run(ctx, Mutation{
		Name:      "join group",
		Action:    func(ctx context.Context) error { return v.env.Client.JoinGroup(ctx, d.Group.ID, d.Password) },
		Success:   fmt.Sprintf("Joined %s successfully!", d.Group.Name),
		Failure:   failure,
		OnSuccess: v.Join.Close,
		OnFailure: func(error) { v.Join.Fail(failure) },
		Reload:    func(ctx context.Context) { _ = v.Refresh(ctx) },
	})
}

func (v *GroupsView) OpenCreate() {
	v.Create.Open(CreateDraft{})
}

// SubmitCreate creates a group. The name is required; the password is
// optional and omitted when empty.
func (v *GroupsView) SubmitCreate(ctx context.Context, name, password string) error {
	if err := v.Create.Update(func(d *CreateDraft) { d.Name, d.Password = name, password }); err != nil {
		return err
	}
	if common.IsBlank(name) {
		return ErrValidation
	}
	d, err := v.Create.Begin()
	if err != nil {
		return err
	}

	trimmed := strings.TrimSpace(d.Name)
	const failure = "Failed to create group"
	return v.runner.Run(ctx, Mutation{
		Name: "create group",
		Action: func(ctx context.Context) error {
			_, err := v.env.Client.CreateGroup(ctx, trimmed, d.Password)
			return err
		},
		Success:   fmt.Sprintf("Group %s created successfully", trimmed),
		Failure:   failure,
		OnSuccess: v.Create.Close,
		OnFailure: func(error) { v.Create.Fail(failure) },
		Reload:    func(ctx context.Context) { _ = v.Refresh(ctx) },
	})
}
