package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shoplist/internal/client/models"
	"github.com/dmitrijs2005/shoplist/internal/client/views"
)

func (a *App) printGroups(v *views.GroupsView) {
	groups := v.MyGroups()
	var b strings.Builder
	b.WriteString(a.render.Heading("My groups") + "\n")
	if len(groups) == 0 {
		b.WriteString("You are not in any group yet. Use 'create' or 'search <name>'.\n")
	}
	for i, g := range groups {
		b.WriteString(a.render.GroupCard(i+1, g, false) + "\n")
	}
	a.printf("%s", b.String())
}

func (a *App) printSearchResults(query string, results []models.Group) {
	var b strings.Builder
	b.WriteString(a.render.Heading(fmt.Sprintf("Groups matching %q", query)) + "\n")
	if len(results) == 0 {
		b.WriteString("No groups found.\n")
	}
	for i, g := range results {
		b.WriteString(a.render.GroupCard(i+1, g, true) + "\n")
	}
	a.printf("%s", b.String())
}

func (a *App) printGroupDetail(v *views.GroupDetailView) {
	g := v.Group()
	a.printf("%s  %s\n", a.render.Heading(g.Name), "owner: "+g.Owner.Name)
	a.printItems(v)
	a.printMembers(v)
}

func (a *App) printItems(v *views.GroupDetailView) {
	items := v.Items()
	var b strings.Builder
	b.WriteString(a.render.Heading("Items") + "\n")
	if len(items) == 0 {
		b.WriteString("The list is empty. Use 'add <name> [qty]'.\n")
	}
	for i, it := range items {
		b.WriteString(a.render.ItemRow(i+1, it, v.CanDeleteItem(it)) + "\n")
	}
	a.printf("%s", b.String())
}

func (a *App) printMembers(v *views.GroupDetailView) {
	members := v.Members()
	owner := v.Group().Owner.ID
	var b strings.Builder
	b.WriteString(a.render.Heading("Members") + "\n")
	for i, m := range members {
		b.WriteString(a.render.MemberRow(i+1, m, owner, v.CanRemoveMember(m)) + "\n")
	}
	a.printf("%s", b.String())
}

func (a *App) printUsers(users []models.User, selected *models.User) {
	var b strings.Builder
	if len(users) == 0 {
		b.WriteString("No users found.\n")
	}
	for i, u := range users {
		b.WriteString(a.render.UserRow(i+1, u, selected != nil && selected.ID == u.ID) + "\n")
	}
	a.printf("%s", b.String())
}

func (a *App) printProfile(v *views.ProfileView) {
	u := v.User()
	if u == nil {
		a.println("Not signed in.")
		return
	}
	exp, _ := a.session.Expiry()
	a.println(a.render.Profile(*u, exp))
	a.println("Commands: copy, delete-account, logout")
}
