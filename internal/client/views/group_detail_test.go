package views

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/shoplist/internal/client/models"
	"github.com/dmitrijs2005/shoplist/internal/client/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detailFixture struct {
	*fixture
	group     models.Group
	bobMember models.Member
	milk      models.Item
	bread     models.Item
}

// newDetail builds a group owned by alice with bob as a member, one item
// added by each.
func newDetail(t *testing.T) *detailFixture {
	t.Helper()
	f := newFixture(t)
	g := f.backend.SeedGroup(f.alice.ID, "Weekend", "")
	d := &detailFixture{fixture: f, group: g}
	d.bobMember = f.backend.SeedMember(g.ID, f.bob.ID)
	d.milk = f.backend.SeedItem(g.ID, f.alice.ID, "Milk")
	d.bread = f.backend.SeedItem(g.ID, f.bob.ID, "Bread")
	return d
}

func (d *detailFixture) load(t *testing.T) *GroupDetailView {
	t.Helper()
	v := NewGroupDetailView(d.env, d.group.ID)
	require.NoError(t, v.Load(context.Background()))
	return v
}

func (d *detailFixture) memberRow(v *GroupDetailView, userID string) models.Member {
	for _, m := range v.Members() {
		if m.User.ID == userID {
			return m
		}
	}
	return models.Member{}
}

func itemByID(v *GroupDetailView, id string) models.Item {
	for _, it := range v.Items() {
		if it.ID == id {
			return it
		}
	}
	return models.Item{}
}

func TestGroupDetail_Load(t *testing.T) {
	d := newDetail(t)
	v := d.load(t)

	assert.True(t, v.Loaded())
	assert.False(t, v.Loading())
	assert.Equal(t, "Weekend", v.Group().Name)
	assert.Len(t, v.Items(), 2)
	assert.Len(t, v.Members(), 2)
	assert.True(t, v.IsOwner())
	assert.Equal(t, d.group.ID, v.GroupID())
}

func TestGroupDetail_LoadAsMember(t *testing.T) {
	d := newDetail(t)
	d.signIn(d.bob)
	v := d.load(t)
	assert.False(t, v.IsOwner())
}

func TestGroupDetail_LoadFailureGoesHome(t *testing.T) {
	d := newDetail(t)
	v := d.load(t)

	d.backend.FailNext("Members", errors.New("down"))
	require.Error(t, v.Load(context.Background()))

	assert.False(t, v.Loaded())
	assert.Empty(t, v.Items())
	assert.Empty(t, v.Members())
	assert.False(t, v.IsOwner())
	assert.Equal(t, failure("Failed to load group data"), d.notes.Last())
	assert.Equal(t, router.PathHome, d.nav.Last())
}

func TestGroupDetail_LoadUnauthorizedLeavesRedirectToSession(t *testing.T) {
	d := newDetail(t)
	d.backend.RevokeTokens(d.alice.ID)

	v := NewGroupDetailView(d.env, d.group.ID)
	require.Error(t, v.Load(context.Background()))

	assert.Empty(t, d.nav.Paths())
	assert.Equal(t, 1, d.session.unauthorized)
	assert.Equal(t, failure("Failed to load group data"), d.notes.Last())
}

func TestGroupDetail_AddItem(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()
	v := d.load(t)

	require.ErrorIs(t, v.AddItem(ctx, "  ", "2"), ErrValidation)
	assert.Zero(t, d.backend.CallCount("AddItem"))

	d.backend.FailNext("AddItem", errors.New("down"))
	require.Error(t, v.AddItem(ctx, " Eggs ", "12"))
	assert.Equal(t, failure("Failed to add item"), d.notes.Last())
	assert.Equal(t, ItemDraft{Name: " Eggs ", Quantity: "12"}, v.Draft())

	require.NoError(t, v.AddItem(ctx, " Eggs ", "12"))
	assert.Equal(t, success("Item added successfully"), d.notes.Last())
	assert.Equal(t, ItemDraft{}, v.Draft())
	assert.False(t, v.AddingItem())

	items := v.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Eggs", items[2].Name)
}

func TestGroupDetail_ToggleBought(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()
	v := d.load(t)

	require.NoError(t, v.ToggleBought(ctx, d.milk.ID))
	assert.Equal(t, success("Item marked as bought"), d.notes.Last())
	it := itemByID(v, d.milk.ID)
	assert.True(t, it.Bought)
	require.NotNil(t, it.BoughtBy)
	assert.Equal(t, d.alice.ID, it.BoughtBy.ID)

	require.NoError(t, v.ToggleBought(ctx, d.milk.ID))
	assert.Equal(t, success("Item marked as not bought"), d.notes.Last())
	assert.False(t, itemByID(v, d.milk.ID).Bought)
	assert.Equal(t, 1, d.backend.CallCount("BuyItem"))
	assert.Equal(t, 1, d.backend.CallCount("UnbuyItem"))

	d.backend.FailNext("BuyItem", errors.New("down"))
	require.Error(t, v.ToggleBought(ctx, d.milk.ID))
	assert.Equal(t, failure("Failed to update item status"), d.notes.Last())
	assert.False(t, v.ItemBusy(d.milk.ID))

	require.ErrorIs(t, v.ToggleBought(ctx, "missing"), ErrNotFound)
}

func TestGroupDetail_ToggleWhileBusy(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()
	v := d.load(t)

	var nested error
	d.backend.OnCall = func(method string, _ ...string) {
		if method == "BuyItem" {
			d.backend.OnCall = nil
			nested = v.ToggleBought(ctx, d.milk.ID)
		}
	}
	require.NoError(t, v.ToggleBought(ctx, d.milk.ID))
	assert.ErrorIs(t, nested, ErrInFlight)
	assert.Equal(t, 1, d.backend.CallCount("BuyItem"))
}

func TestGroupDetail_DeleteItemPermissions(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()

	d.signIn(d.bob)
	v := d.load(t)
	assert.False(t, v.CanDeleteItem(d.milk))
	assert.True(t, v.CanDeleteItem(d.bread))

	require.ErrorIs(t, v.DeleteItem(ctx, d.milk.ID), ErrNotPermitted)
	assert.Zero(t, d.backend.CallCount("DeleteItem"))

	require.NoError(t, v.DeleteItem(ctx, d.bread.ID))
	assert.Equal(t, success("Item deleted successfully"), d.notes.Last())
	assert.Len(t, v.Items(), 1)
}

func TestGroupDetail_OwnerDeletesAnyItem(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()
	v := d.load(t)

	assert.True(t, v.CanDeleteItem(d.bread))

	d.backend.FailNext("DeleteItem", errors.New("down"))
	require.Error(t, v.DeleteItem(ctx, d.bread.ID))
	assert.Equal(t, failure("Failed to delete item"), d.notes.Last())

	require.NoError(t, v.DeleteItem(ctx, d.bread.ID))
	assert.Len(t, d.backend.GroupItems(d.group.ID), 1)
}

func TestGroupDetail_AddMember(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()
	v := d.load(t)

	require.ErrorIs(t, v.SearchUsers(ctx, "car"), ErrDialogClosed)
	require.NoError(t, v.OpenAddMember())

	require.NoError(t, v.SearchUsers(ctx, "car"))
	draft := v.AddMemberDialog.Draft()
	require.Len(t, draft.Results, 1)
	assert.Equal(t, d.carol.ID, draft.Results[0].ID)

	require.ErrorIs(t, v.SubmitAddMember(ctx), ErrValidation)

	require.NoError(t, v.SelectUser(d.carol.ID))
	require.NotNil(t, v.AddMemberDialog.Draft().Selected)
	require.NoError(t, v.SelectUser(d.carol.ID))
	assert.Nil(t, v.AddMemberDialog.Draft().Selected)
	require.ErrorIs(t, v.SelectUser("nobody"), ErrNotFound)
	require.NoError(t, v.SelectUser(d.carol.ID))

	d.backend.FailNext("AddMember", errors.New("down"))
	require.Error(t, v.SubmitAddMember(ctx))
	assert.Equal(t, failure("Failed to add member"), d.notes.Last())
	assert.Equal(t, PhaseFailed, v.AddMemberDialog.Phase())
	assert.NotNil(t, v.AddMemberDialog.Draft().Selected)

	require.NoError(t, v.SubmitAddMember(ctx))
	assert.Equal(t, success("Added Carol to the group"), d.notes.Last())
	assert.False(t, v.AddMemberDialog.IsOpen())
	assert.Len(t, v.Members(), 3)
}

func TestGroupDetail_SearchUsersBlankAndFailure(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()
	v := d.load(t)
	require.NoError(t, v.OpenAddMember())

	require.NoError(t, v.SearchUsers(ctx, "o"))
	before := v.AddMemberDialog.Draft().Results
	require.NotEmpty(t, before)

	d.backend.FailNext("SearchUsers", errors.New("down"))
	require.Error(t, v.SearchUsers(ctx, "ob"))
	assert.Equal(t, before, v.AddMemberDialog.Draft().Results)
	assert.Empty(t, d.notes.Messages())

	calls := d.backend.CallCount("SearchUsers")
	require.NoError(t, v.SearchUsers(ctx, " "))
	assert.Empty(t, v.AddMemberDialog.Draft().Results)
	assert.Equal(t, calls, d.backend.CallCount("SearchUsers"))
}

func TestGroupDetail_NonOwnerCannotManage(t *testing.T) {
	d := newDetail(t)
	d.signIn(d.bob)
	v := d.load(t)

	assert.ErrorIs(t, v.OpenAddMember(), ErrNotPermitted)
	assert.ErrorIs(t, v.OpenDeleteGroup(), ErrNotPermitted)
	assert.ErrorIs(t, v.ConfirmDeleteGroup(context.Background()), ErrNotPermitted)
	assert.False(t, v.AddMemberDialog.IsOpen())
	assert.False(t, v.DeleteGroupDialog.IsOpen())
}

func TestGroupDetail_CanRemoveMember(t *testing.T) {
	d := newDetail(t)
	d.backend.SeedMember(d.group.ID, d.carol.ID)

	owner := d.load(t)
	assert.False(t, owner.CanRemoveMember(d.memberRow(owner, d.alice.ID)))
	assert.True(t, owner.CanRemoveMember(d.memberRow(owner, d.bob.ID)))
	assert.True(t, owner.CanRemoveMember(d.memberRow(owner, d.carol.ID)))

	d.signIn(d.bob)
	member := d.load(t)
	assert.False(t, member.CanRemoveMember(d.memberRow(member, d.alice.ID)))
	assert.True(t, member.CanRemoveMember(d.memberRow(member, d.bob.ID)))
	assert.False(t, member.CanRemoveMember(d.memberRow(member, d.carol.ID)))
}

func TestGroupDetail_OwnerRemovesMember(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()
	v := d.load(t)

	d.backend.FailNext("RemoveMember", errors.New("down"))
	require.Error(t, v.RemoveMember(ctx, d.bobMember.ID))
	assert.Equal(t, failure("Failed to remove member"), d.notes.Last())

	require.NoError(t, v.RemoveMember(ctx, d.bobMember.ID))
	assert.Equal(t, success("Removed Bob from the group"), d.notes.Last())
	assert.Len(t, v.Members(), 1)
	assert.False(t, d.backend.IsMember(d.group.ID, d.bob.ID))
	assert.Empty(t, d.nav.Paths())

	ownerRow := d.memberRow(v, d.alice.ID)
	require.ErrorIs(t, v.RemoveMember(ctx, ownerRow.ID), ErrNotPermitted)
	require.ErrorIs(t, v.RemoveMember(ctx, "missing"), ErrNotFound)
}

func TestGroupDetail_MemberRemovesSelfLeaves(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()
	d.signIn(d.bob)
	v := d.load(t)

	require.NoError(t, v.RemoveMember(ctx, d.bobMember.ID))
	assert.Equal(t, success("You left the group"), d.notes.Last())
	assert.Equal(t, 1, d.backend.CallCount("LeaveGroup"))
	assert.Zero(t, d.backend.CallCount("RemoveMember"))
	assert.Equal(t, router.PathHome, d.nav.Last())
}

func TestGroupDetail_DeleteGroup(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()
	v := d.load(t)

	require.ErrorIs(t, v.ConfirmDeleteGroup(ctx), ErrDialogClosed)
	require.NoError(t, v.OpenDeleteGroup())

	d.backend.FailNext("DeleteGroup", errors.New("down"))
	require.Error(t, v.ConfirmDeleteGroup(ctx))
	assert.Equal(t, failure("Failed to delete group"), d.notes.Last())
	assert.Equal(t, PhaseFailed, v.DeleteGroupDialog.Phase())
	assert.Empty(t, d.nav.Paths())

	require.NoError(t, v.ConfirmDeleteGroup(ctx))
	assert.Equal(t, success("Group deleted successfully"), d.notes.Last())
	assert.False(t, v.DeleteGroupDialog.IsOpen())
	assert.Equal(t, router.PathHome, d.nav.Last())
	assert.False(t, d.backend.HasGroup(d.group.ID))
}

func TestGroupDetail_LeaveGroup(t *testing.T) {
	d := newDetail(t)
	ctx := context.Background()

	owner := d.load(t)
	require.ErrorIs(t, owner.LeaveGroup(ctx), ErrNotPermitted)

	d.signIn(d.bob)
	v := d.load(t)

	d.backend.FailNext("LeaveGroup", errors.New("down"))
	require.Error(t, v.LeaveGroup(ctx))
	assert.Equal(t, failure("Failed to leave group"), d.notes.Last())
	assert.Empty(t, d.nav.Paths())

	require.NoError(t, v.LeaveGroup(ctx))
	assert.Equal(t, success("Left the group successfully"), d.notes.Last())
	assert.Equal(t, router.PathHome, d.nav.Last())
	assert.False(t, d.backend.IsMember(d.group.ID, d.bob.ID))
}

func TestGroupDetail_MutationsNeedLoad(t *testing.T) {
	d := newDetail(t)
	v := NewGroupDetailView(d.env, d.group.ID)

	assert.ErrorIs(t, v.AddItem(context.Background(), "Eggs", ""), ErrNotLoaded)
	assert.ErrorIs(t, v.LeaveGroup(context.Background()), ErrNotLoaded)
}
