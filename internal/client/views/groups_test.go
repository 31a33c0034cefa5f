package views

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupsView_MountLoadsOwnGroups(t *testing.T) {
	f := newFixture(t)
	mine := f.backend.SeedGroup(f.alice.ID, "Weekend", "")
	shared := f.backend.SeedGroup(f.bob.ID, "Flat", "")
	f.backend.SeedMember(shared.ID, f.alice.ID)
	f.backend.SeedGroup(f.carol.ID, "Elsewhere", "")

	v := NewGroupsView(f.env)
	v.Mount(context.Background())

	var names []string
	for _, g := range v.MyGroups() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{mine.Name, shared.Name}, names)
	assert.False(t, v.Loading())
	assert.Empty(t, f.notes.Messages())
}

func TestGroupsView_RefreshFailureKeepsList(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedGroup(f.alice.ID, "Weekend", "")

	v := NewGroupsView(f.env)
	require.NoError(t, v.Refresh(context.Background()))

	f.backend.FailNext("MyGroups", errors.New("down"))
	require.Error(t, v.Refresh(context.Background()))

	assert.Len(t, v.MyGroups(), 1)
	assert.Equal(t, failure("Failed to load your groups"), f.notes.Last())
}

func TestGroupsView_SearchIsDebounced(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedGroup(f.bob.ID, "Groceries", "")
	f.backend.SeedGroup(f.bob.ID, "Garden", "")
	ctx := context.Background()

	v := NewGroupsView(f.env)
	var settled []string
	v.OnResults = func(q string, _ []models.Group) { settled = append(settled, q) }

	for _, q := range []string{"g", "gr", "gro"} {
		v.SetQuery(ctx, q)
		f.clock.Advance(100 * time.Millisecond)
	}
	assert.Zero(t, f.backend.CallCount("SearchGroups"))
	assert.True(t, v.Searching())

	f.clock.Advance(DefaultSearchDelay)

	assert.Equal(t, 1, f.backend.CallCount("SearchGroups"))
	assert.Equal(t, []string{"gro"}, settled)
	require.Len(t, v.Results(), 1)
	assert.Equal(t, "Groceries", v.Results()[0].Name)
	assert.False(t, v.Searching())
	assert.Equal(t, "gro", v.Query())
}

func TestGroupsView_BlankQueryClearsWithoutRequest(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedGroup(f.bob.ID, "Groceries", "")
	ctx := context.Background()

	v := NewGroupsView(f.env)
	v.SetQuery(ctx, "gro")
	f.clock.Advance(DefaultSearchDelay)
	require.Len(t, v.Results(), 1)

	v.SetQuery(ctx, "groc")
	v.SetQuery(ctx, "   ")
	f.clock.Advance(time.Hour)

	assert.Empty(t, v.Results())
	assert.Equal(t, 1, f.backend.CallCount("SearchGroups"))
	assert.False(t, v.Searching())
}

func TestGroupsView_SearchFailureKeepsResults(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedGroup(f.bob.ID, "Groceries", "")
	ctx := context.Background()

	v := NewGroupsView(f.env)
	v.SetQuery(ctx, "gro")
	f.clock.Advance(DefaultSearchDelay)

	f.backend.FailNext("SearchGroups", errors.New("down"))
	v.SetQuery(ctx, "groc")
	f.clock.Advance(DefaultSearchDelay)

	assert.Len(t, v.Results(), 1)
	assert.Equal(t, failure("Failed to search groups"), f.notes.Last())
}

func TestGroupsView_StaleSearchIsDiscarded(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedGroup(f.bob.ID, "Groceries", "")
	f.backend.SeedGroup(f.bob.ID, "Garden", "")
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.backend.OnCall = func(method string, args ...string) {
		if method == "SearchGroups" && len(args) > 0 && args[0] == "gr" {
			once.Do(func() { close(started) })
			<-release
		}
	}

	v := NewGroupsView(f.env)
	v.SetQuery(ctx, "gr")

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.clock.Advance(DefaultSearchDelay)
	}()
	<-started

	v.SetQuery(ctx, "garden")
	f.clock.Advance(DefaultSearchDelay)
	require.Len(t, v.Results(), 1)
	assert.Equal(t, "Garden", v.Results()[0].Name)

	close(release)
	<-done

	require.Len(t, v.Results(), 1)
	assert.Equal(t, "Garden", v.Results()[0].Name)
}

func TestGroupsView_UnmountDropsPendingSearch(t *testing.T) {
	f := newFixture(t)
	v := NewGroupsView(f.env)

	v.SetQuery(context.Background(), "gro")
	v.Unmount()
	f.clock.Advance(time.Hour)

	assert.Zero(t, f.backend.CallCount("SearchGroups"))
}

func TestGroupsView_OpenCard(t *testing.T) {
	f := newFixture(t)
	own := f.backend.SeedGroup(f.alice.ID, "Mine", "")
	other := f.backend.SeedGroup(f.bob.ID, "Theirs", "")
	v := NewGroupsView(f.env)

	v.OpenCard(own, false)
	assert.Equal(t, "/groups/"+own.ID, f.nav.Last())
	assert.False(t, v.Join.IsOpen())

	v.OpenCard(other, true)
	assert.True(t, v.Join.IsOpen())
	assert.Equal(t, other.ID, v.Join.Draft().Group.ID)
	assert.Len(t, f.nav.Paths(), 1)
}

func TestGroupsView_JoinWithPassword(t *testing.T) {
	f := newFixture(t)
	g := f.backend.SeedGroup(f.bob.ID, "Flat", "secret")
	ctx := context.Background()
	v := NewGroupsView(f.env)

	v.OpenCard(g, true)
	err := v.SubmitJoin(ctx, "wrong")
	require.Error(t, err)
	assert.Equal(t, failure("Failed to join group. Incorrect password."), f.notes.Last())
	assert.Equal(t, PhaseFailed, v.Join.Phase())
	assert.False(t, f.backend.IsMember(g.ID, f.alice.ID))

	require.NoError(t, v.SubmitJoin(ctx, "secret"))
	assert.Equal(t, success("Joined Flat successfully!"), f.notes.Last())
	assert.False(t, v.Join.IsOpen())
	assert.True(t, f.backend.IsMember(g.ID, f.alice.ID))
	require.Len(t, v.MyGroups(), 1)
	assert.Equal(t, g.ID, v.MyGroups()[0].ID)
}

func TestGroupsView_JoinRequiresOpenPrompt(t *testing.T) {
	f := newFixture(t)
	v := NewGroupsView(f.env)

	require.ErrorIs(t, v.SubmitJoin(context.Background(), "x"), ErrDialogClosed)
	assert.Zero(t, f.backend.CallCount("JoinGroup"))
}

func TestGroupsView_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := NewGroupsView(f.env)

	v.OpenCreate()
	require.ErrorIs(t, v.SubmitCreate(ctx, "  ", ""), ErrValidation)
	assert.Zero(t, f.backend.CallCount("CreateGroup"))
	assert.Equal(t, PhaseOpen, v.Create.Phase())

	f.backend.FailNext("CreateGroup", errors.New("down"))
	require.Error(t, v.SubmitCreate(ctx, " Party ", "pw"))
	assert.Equal(t, failure("Failed to create group"), f.notes.Last())
	assert.Equal(t, PhaseFailed, v.Create.Phase())
	assert.Equal(t, CreateDraft{Name: " Party ", Password: "pw"}, v.Create.Draft())

	require.NoError(t, v.SubmitCreate(ctx, " Party ", "pw"))
	assert.Equal(t, success("Group Party created successfully"), f.notes.Last())
	assert.False(t, v.Create.IsOpen())
	require.Len(t, v.MyGroups(), 1)
	assert.Equal(t, "Party", v.MyGroups()[0].Name)
	assert.Equal(t, f.alice.ID, v.MyGroups()[0].Owner.ID)
}
