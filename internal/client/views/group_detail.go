package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/shoplist/internal/client/client"
	"github.com/dmitrijs2005/shoplist/internal/client/models"
	"github.com/dmitrijs2005/shoplist/internal/client/router"
	"github.com/dmitrijs2005/shoplist/internal/common"
	"golang.org/x/sync/errgroup"
)

// ItemDraft is the add-item form. Quantity is collected but the backend has
// no field for it, so it is never sent.
type ItemDraft struct {
	Name     string
	Quantity string
}

type MemberDraft struct {
	Query    string
	Results  []models.User
	Selected *models.User
}

// GroupDetailView is one group's page: its items and members.
type GroupDetailView struct {
	env     Env
	runner  *Runner
	groupID string
	userSeq sequence

	AddMemberDialog   Dialog[MemberDraft]
	DeleteGroupDialog Dialog[struct{}]

	addItemFlag InFlight
	leaveFlag   InFlight

	mu          sync.Mutex
	loaded      bool
	loading     bool
	group       models.Group
	items       []models.Item
	members     []models.Member
	isOwner     bool
	draft       ItemDraft
	itemFlags   map[string]*InFlight
	memberFlags map[string]*InFlight
}

func NewGroupDetailView(env Env, groupID string) *GroupDetailView {
	env = env.withDefaults()
	return &GroupDetailView{
		env:         env,
		runner:      NewRunner(env.Notifier, env.Log),
		groupID:     groupID,
		itemFlags:   make(map[string]*InFlight),
		memberFlags: make(map[string]*InFlight),
	}
}

func (v *GroupDetailView) GroupID() string { return v.groupID }

// Load fetches the group, its items and its members concurrently. All three
// must succeed; otherwise nothing is shown and the user is sent home.
func (v *GroupDetailView) Load(ctx context.Context) error {
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	var (
		group   *models.Group
		items   []models.Item
		members []models.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group, err = v.env.Client.GetGroup(gctx, v.groupID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = v.env.Client.Items(gctx, v.groupID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = v.env.Client.Members(gctx, v.groupID)
		return err
	})
	err := g.Wait()

	if err != nil {
		v.mu.Lock()
		v.loading = false
		v.loaded = false
		v.group = models.Group{}
		v.items = nil
		v.members = nil
		v.isOwner = false
		v.mu.Unlock()

		v.env.Log.Error(ctx, "failed to fetch group data", "group_id", v.groupID, "error", err)
		v.env.Notifier.Error("Failed to load group data")
		// a rejected session has already been sent to the login page
		if !errors.Is(err, client.ErrUnauthorized) {
			v.env.Nav.Navigate(router.PathHome)
		}
		return err
	}

	me := v.env.me()
	v.mu.Lock()
	v.loading = false
	v.loaded = true
	v.group = *group
	v.items = items
	v.members = members
	v.isOwner = group.OwnedBy(me)
	v.mu.Unlock()
	return nil
}

func (v *GroupDetailView) reload(ctx context.Context) { _ = v.Load(ctx) }

func (v *GroupDetailView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

func (v *GroupDetailView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

func (v *GroupDetailView) Group() models.Group {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.group
}

func (v *GroupDetailView) Items() []models.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Item(nil), v.items...)
}

func (v *GroupDetailView) Members() []models.Member {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Member(nil), v.members...)
}

// IsOwner reports whether the signed-in user owns the group, as of the last
// successful load.
func (v *GroupDetailView) IsOwner() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isOwner
}

func (v *GroupDetailView) Draft() ItemDraft {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft
}

func (v *GroupDetailView) AddingItem() bool { return v.addItemFlag.Busy() }

// AddItem posts a new item. Only the trimmed name is sent.
func (v *GroupDetailView) AddItem(ctx context.Context, name, quantity string) error {
	v.mu.Lock()
	v.draft = ItemDraft{Name: name, Quantity: quantity}
	v.mu.Unlock()

	if common.IsBlank(name) {
		return ErrValidation
	}
	if !v.Loaded() {
		return ErrNotLoaded
	}

	trimmed := strings.TrimSpace(name)
	return v.runner.Run(ctx, Mutation{
		Name:    "add item",
		Flag:    &v.addItemFlag,
		Action:  func(ctx context.Context) error { return v.env.Client.AddItem(ctx, v.groupID, trimmed) },
		Success: "Item added successfully",
		Failure: "Failed to add item",
		OnSuccess: func() {
			v.mu.Lock()
			v.draft = ItemDraft{}
			v.mu.Unlock()
		},
		Reload: v.reload,
	})
}

func (v *GroupDetailView) findItem(itemID string) (models.Item, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, it := range v.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return models.Item{}, false
}

func (v *GroupDetailView) itemFlag(itemID string) *InFlight {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, ok := v.itemFlags[itemID]
	if !ok {
		f = &InFlight{}
		v.itemFlags[itemID] = f
	}
	return f
}

// ItemBusy reports whether an action on itemID is running.
func (v *GroupDetailView) ItemBusy(itemID string) bool {
	return v.itemFlag(itemID).Busy()
}

// ToggleBought buys an unbought item and unbuys a bought one, based on the
// state from the last load.
func (v *GroupDetailView) ToggleBought(ctx context.Context, itemID string) error {
	it, ok := v.findItem(itemID)
	if !ok {
		return ErrNotFound
	}

	m := Mutation{
		Name:    "buy item",
		Flag:    v.itemFlag(itemID),
		Action:  func(ctx context.Context) error { return v.env.Client.BuyItem(ctx, v.groupID, itemID) },
		Success: "Item marked as bought",
		Failure: "Failed to update item status",
		Reload:  v.reload,
	}
	if it.Bought {
		m.Name = "unbuy item"
		m.Action = func(ctx context.Context) error { return v.env.Client.UnbuyItem(ctx, v.groupID, itemID) }
		m.Success = "Item marked as not bought"
	}
	return v.runner.Run(ctx, m)
}

// CanDeleteItem: the owner may delete anything, others only what they added.
func (v *GroupDetailView) CanDeleteItem(it models.Item) bool {
	me := v.env.me()
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isOwner || (me != "" && it.CreatedBy.ID == me)
}

func (v *GroupDetailView) DeleteItem(ctx context.Context, itemID string) error {
	it, ok := v.findItem(itemID)
	if !ok {
		return ErrNotFound
	}
	if !v.CanDeleteItem(it) {
		return ErrNotPermitted
	}
	return v.runner.Run(ctx, Mutation{
		Name:    "delete item",
		Flag:    v.itemFlag(itemID),
		Action:  func(ctx context.Context) error { return v.env.Client.DeleteItem(ctx, v.groupID, itemID) },
		Success: "Item deleted successfully",
		Failure: "Failed to delete item",
		Reload:  v.reload,
	})
}

// OpenAddMember opens the add-member dialog; owner only.
func (v *GroupDetailView) OpenAddMember() error {
	if !v.IsOwner() {
		return ErrNotPermitted
	}
	v.AddMemberDialog.Open(MemberDraft{})
	return nil
}

// SearchUsers runs the live user search of the add-member dialog. A blank
// query clears the results without a request.
func (v *GroupDetailView) SearchUsers(ctx context.Context, q string) error {
	if err := v.AddMemberDialog.Update(func(d *MemberDraft) { d.Query = q }); err != nil {
		return err
	}

	if common.IsBlank(q) {
		v.userSeq.invalidate()
		return v.AddMemberDialog.Update(func(d *MemberDraft) { d.Results = nil })
	}

	n := v.userSeq.next()
	users, err := v.env.Client.SearchUsers(ctx, q)
	if !v.userSeq.isLatest(n) {
		return nil
	}
	if err != nil {
		v.env.Log.Error(ctx, "failed to search users", "query", q, "error", err)
		return err
	}
	return v.AddMemberDialog.Update(func(d *MemberDraft) { d.Results = users })
}

// SelectUser toggles the selection of a search result. Selecting another
// user replaces the previous choice.
func (v *GroupDetailView) SelectUser(userID string) error {
	var found bool
	err := v.AddMemberDialog.Update(func(d *MemberDraft) {
		if d.Selected != nil && d.Selected.ID == userID {
			d.Selected = nil
			found = true
			return
		}
		for _, u := range d.Results {
			if u.ID == userID {
				u := u
				d.Selected = &u
				found = true
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (v *GroupDetailView) SubmitAddMember(ctx context.Context) error {
	d := v.AddMemberDialog.Draft()
	if !v.AddMemberDialog.IsOpen() {
		return ErrDialogClosed
	}
	if d.Selected == nil {
		return ErrValidation
	}
	d, err := v.AddMemberDialog.Begin()
	if err != nil {
		return err
	}

	selected := *d.Selected
	const failure = "Failed to add member"
	return v.runner.Run(ctx, Mutation{
		Name:      "add member",
		Action:    func(ctx context.Context) error { return v.env.Client.AddMember(ctx, v.groupID, selected.ID) },
		Success:   fmt.Sprintf("Added %s to the group", selected.Name),
		Failure:   failure,
		OnSuccess: v.AddMemberDialog.Close,
		OnFailure: func(error) { v.AddMemberDialog.Fail(failure) },
		Reload:    v.reload,
	})
}

func (v *GroupDetailView) findMember(memberID string) (models.Member, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, m := range v.members {
		if m.ID == memberID {
			return m, true
		}
	}
	return models.Member{}, false
}

func (v *GroupDetailView) memberFlag(memberID string) *InFlight {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, ok := v.memberFlags[memberID]
	if !ok {
		f = &InFlight{}
		v.memberFlags[memberID] = f
	}
	return f
}

// CanRemoveMember: never the owner's row; otherwise the owner may remove
// anyone and a member may remove themselves.
func (v *GroupDetailView) CanRemoveMember(m models.Member) bool {
	me := v.env.me()
	v.mu.Lock()
	defer v.mu.Unlock()
	if m.User.ID == v.group.Owner.ID {
		return false
	}
	return v.isOwner || (me != "" && m.User.ID == me)
}

// RemoveMember removes a member. A non-owner removing their own row leaves
// the group instead, and is sent home since the group is no longer visible
// to them.
func (v *GroupDetailView) RemoveMember(ctx context.Context, memberID string) error {
	m, ok := v.findMember(memberID)
	if !ok {
		return ErrNotFound
	}
	if !v.CanRemoveMember(m) {
		return ErrNotPermitted
	}

	if m.User.ID == v.env.me() && !v.IsOwner() {
		return v.runner.Run(ctx, Mutation{
			Name:      "leave group",
			Flag:      v.memberFlag(memberID),
			Action:    func(ctx context.Context) error { return v.env.Client.LeaveGroup(ctx, v.groupID) },
			Success:   "You left the group",
			Failure:   "Failed to leave group",
			OnSuccess: func() { v.env.Nav.Navigate(router.PathHome) },
		})
	}

	return v.runner.Run(ctx, Mutation{
		Name:    "remove member",
		Flag:    v.memberFlag(memberID),
		Action:  func(ctx context.Context) error { return v.env.Client.RemoveMember(ctx, v.groupID, memberID) },
		Success: fmt.Sprintf("Removed %s from the group", m.User.Name),
		Failure: "Failed to remove member",
		Reload:  v.reload,
	})
}

// OpenDeleteGroup asks for confirmation; owner only.
func (v *GroupDetailView) OpenDeleteGroup() error {
	if !v.IsOwner() {
		return ErrNotPermitted
	}
	v.DeleteGroupDialog.Open(struct{}{})
	return nil
}

// ConfirmDeleteGroup deletes the group. On failure the dialog stays up so the
// user can retry.
func (v *GroupDetailView) ConfirmDeleteGroup(ctx context.Context) error {
	if !v.IsOwner() {
		return ErrNotPermitted
	}
	if _, err := v.DeleteGroupDialog.Begin(); err != nil {
		return err
	}

	const failure = "Failed to delete group"
	return v.runner.Run(ctx, Mutation{
		Name:    "delete group",
		Action:  func(ctx context.Context) error { return v.env.Client.DeleteGroup(ctx, v.groupID) },
		Success: "Group deleted successfully",
		Failure: failure,
		OnSuccess: func() {
			v.DeleteGroupDialog.Close()
			v.env.Nav.Navigate(router.PathHome)
		},
		OnFailure: func(error) { v.DeleteGroupDialog.Fail(failure) },
	})
}

// LeaveGroup leaves without confirmation; not available to the owner.
func (v *GroupDetailView) LeaveGroup(ctx context.Context) error {
	if !v.Loaded() {
		return ErrNotLoaded
	}
	if v.IsOwner() {
		return ErrNotPermitted
	}
	return v.runner.Run(ctx, Mutation{
		Name:      "leave group",
		Flag:      &v.leaveFlag,
		Action:    func(ctx context.Context) error { return v.env.Client.LeaveGroup(ctx, v.groupID) },
		Success:   "Left the group successfully",
		Failure:   "Failed to leave group",
		OnSuccess: func() { v.env.Nav.Navigate(router.PathHome) },
	})
}
