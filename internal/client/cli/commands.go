package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/shoplist/internal/client/router"
	"github.com/dmitrijs2005/shoplist/internal/client/views"
	"github.com/dmitrijs2005/shoplist/internal/common"
)

var errUsage = errors.New("usage")

const anonymousHelp = `Available commands:
  register            create an account
  login               sign in
  go <path>           open a location (/, /profile, /groups/<id>)
  exit | quit         leave the program`

const signedInHelp = `Available commands:
  home | groups       your groups
  search [query]      find groups to join (no query clears the search)
  create              create a group
  open <n>            open one of your groups
  join <n>            join a group from the search results
  group <id>          open a group by id
  items | members     show the open group's items or members
  add <name> [qty]    add an item
  buy <n>             mark an item bought, or not bought
  rm <n>              delete an item
  invite              add a member (owner only)
  kick <n>            remove a member
  leave               leave the open group
  delete-group        delete the open group (owner only)
  profile             your profile
  copy                copy your username to the clipboard
  delete-account      delete your account
  whoami              session details
  stats               request statistics
  go <path>           open a location
  logout              sign out
  exit | quit         leave the program`

func (a *App) help() string {
	if a.isLoggedIn() {
		return signedInHelp
	}
	return anonymousHelp
}

func (a *App) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		a.session.Logout(ctx)
		return nil
	case "go":
		if len(args) != 1 {
			return a.usage("go <path>")
		}
		a.Navigate(args[0])
		return nil
	case "home":
		a.Navigate(router.PathHome)
		return nil
	case "profile":
		a.Navigate(router.PathProfile)
		return nil
	case "group":
		if len(args) != 1 {
			return a.usage("group <id>")
		}
		a.Navigate(router.GroupPath(args[0]))
		return nil
	case "groups":
		return a.Groups(ctx)
	case "search":
		return a.Search(ctx, strings.Join(args, " "))
	case "create":
		return a.CreateGroup(ctx)
	case "open":
		return a.OpenGroup(args)
	case "join":
		return a.JoinGroup(ctx, args)
	case "items":
		return a.withDetail(func(v *views.GroupDetailView) error { a.printItems(v); return nil })
	case "members":
		return a.withDetail(func(v *views.GroupDetailView) error { a.printMembers(v); return nil })
	case "add":
		return a.AddItem(ctx, args)
	case "buy":
		return a.ToggleItem(ctx, args)
	case "rm":
		return a.DeleteItem(ctx, args)
	case "invite":
		return a.Invite(ctx)
	case "kick":
		return a.Kick(ctx, args)
	case "leave":
		return a.withDetail(func(v *views.GroupDetailView) error {
			err := v.LeaveGroup(ctx)
			if errors.Is(err, views.ErrNotPermitted) {
				a.println("The owner cannot leave the group.")
			}
			return err
		})
	case "delete-group":
		return a.DeleteGroup(ctx)
	case "copy":
		err := a.profileView().CopyUsername(ctx)
		if err != nil && !errors.Is(err, views.ErrNotLoaded) {
			a.println("Could not copy to the clipboard.")
		}
		return err
	case "delete-account":
		return a.DeleteAccount(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "stats":
		return a.Stats()
	default:
		return errUnknownCommand
	}
}

func (a *App) usage(s string) error {
	a.println("Usage: " + s)
	return errUsage
}

// index parses a 1-based list position.
func (a *App) index(args []string, n int, usage string) (int, error) {
	if len(args) != 1 {
		return 0, a.usage(usage)
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > n {
		a.printf("No entry %s. Pick a number from 1 to %d.\n", args[0], n)
		return 0, errUsage
	}
	return i - 1, nil
}

func (a *App) withGroups(fn func(v *views.GroupsView) error) error {
	v := a.groupsView()
	if v == nil {
		a.println("Open your groups first (type 'home').")
		return views.ErrNotLoaded
	}
	return fn(v)
}

func (a *App) withDetail(fn func(v *views.GroupDetailView) error) error {
	v := a.detailView()
	if v == nil || !v.Loaded() {
		a.println("Open a group first (type 'open <n>' or 'group <id>').")
		return views.ErrNotLoaded
	}
	return fn(v)
}

// stillShowing reports whether v is still the open group, which it is not
// after a failed reload sent the user home.
func (a *App) stillShowing(v *views.GroupDetailView) bool {
	return a.detailView() == v && v.Loaded()
}

// Register prompts for the new account's name, username and password.
func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	password, err := GetSecret(a.reader, "Choose a password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if common.IsBlank(name) || common.IsBlank(username) || len(password) == 0 {
		a.println("Name, username and password are required.")
		return views.ErrValidation
	}
	return a.session.Register(ctx, name, username, string(password))
}

// Login prompts for credentials. The last username used is offered as the
// default.
func (a *App) Login(ctx context.Context) error {
	last := a.session.LastUsername(ctx)
	prompt := "Enter username"
	if last != "" {
		prompt += " [" + last + "]"
	}
	username, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if username == "" {
		username = last
	}

	password, err := GetSecret(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if username == "" || len(password) == 0 {
		a.println("Username and password are required.")
		return views.ErrValidation
	}
	return a.session.Login(ctx, username, string(password))
}

func (a *App) Groups(ctx context.Context) error {
	v := a.groupsView()
	if v == nil {
		a.Navigate(router.PathHome)
		return nil
	}
	if err := v.Refresh(ctx); err != nil {
		return err
	}
	a.printGroups(v)
	return nil
}

// Search feeds the search box. Results are printed once the input settles.
func (a *App) Search(ctx context.Context, q string) error {
	return a.withGroups(func(v *views.GroupsView) error {
		v.SetQuery(ctx, q)
		if common.IsBlank(q) {
			a.println("Search cleared.")
		}
		return nil
	})
}

func (a *App) CreateGroup(ctx context.Context) error {
	return a.withGroups(func(v *views.GroupsView) error {
		// a failed create keeps its draft for the retry
		prev := v.Create.Draft()
		if v.Create.Phase() != views.PhaseFailed {
			v.OpenCreate()
			prev = views.CreateDraft{}
		}

		prompt := "Group name"
		if prev.Name != "" {
			prompt += " [" + prev.Name + "]"
		}
		name, err := GetSimpleText(a.reader, prompt, a.out)
		if err != nil {
			v.Create.Close()
			return err
		}
		if name == "" {
			name = prev.Name
		}
		password, err := GetSecret(a.reader, "Group password (optional)", a.out)
		if err != nil {
			v.Create.Close()
			return err
		}
		defer common.WipeByteArray(password)

		err = v.SubmitCreate(ctx, name, string(password))
		if errors.Is(err, views.ErrValidation) {
			a.println("Group name is required.")
			v.Create.Close()
		}
		return err
	})
}

func (a *App) OpenGroup(args []string) error {
	return a.withGroups(func(v *views.GroupsView) error {
		groups := v.MyGroups()
		i, err := a.index(args, len(groups), "open <n>")
		if err != nil {
			return err
		}
		v.OpenCard(groups[i], false)
		return nil
	})
}

func (a *App) JoinGroup(ctx context.Context, args []string) error {
	return a.withGroups(func(v *views.GroupsView) error {
		results := v.Results()
		i, err := a.index(args, len(results), "join <n>")
		if err != nil {
			return err
		}
		v.OpenCard(results[i], true)

		password, err := GetSecret(a.reader, "Password for "+results[i].Name, a.out)
		if err != nil {
			v.Join.Close()
			return err
		}
		defer common.WipeByteArray(password)

		return v.SubmitJoin(ctx, string(password))
	})
}

// parseItemArgs splits "add <name...> [qty]": a trailing number is the
// quantity.
func parseItemArgs(args []string) (name, qty string) {
	if len(args) > 1 {
		if _, err := strconv.Atoi(args[len(args)-1]); err == nil {
			return strings.Join(args[:len(args)-1], " "), args[len(args)-1]
		}
	}
	return strings.Join(args, " "), ""
}

func (a *App) AddItem(ctx context.Context, args []string) error {
	return a.withDetail(func(v *views.GroupDetailView) error {
		name, qty := parseItemArgs(args)
		err := v.AddItem(ctx, name, qty)
		switch {
		case errors.Is(err, views.ErrValidation):
			return a.usage("add <name> [qty]")
		case errors.Is(err, views.ErrInFlight):
			a.println("Still adding the previous item.")
		case err == nil && a.stillShowing(v):
			a.printItems(v)
		}
		return err
	})
}

func (a *App) ToggleItem(ctx context.Context, args []string) error {
	return a.withDetail(func(v *views.GroupDetailView) error {
		items := v.Items()
		i, err := a.index(args, len(items), "buy <n>")
		if err != nil {
			return err
		}
		err = v.ToggleBought(ctx, items[i].ID)
		if errors.Is(err, views.ErrInFlight) {
			a.println("That item is already being updated.")
		}
		if err == nil && a.stillShowing(v) {
			a.printItems(v)
		}
		return err
	})
}

func (a *App) DeleteItem(ctx context.Context, args []string) error {
	return a.withDetail(func(v *views.GroupDetailView) error {
		items := v.Items()
		i, err := a.index(args, len(items), "rm <n>")
		if err != nil {
			return err
		}
		err = v.DeleteItem(ctx, items[i].ID)
		if errors.Is(err, views.ErrNotPermitted) {
			a.println("Only the group owner or the person who added it can delete this item.")
		}
		if err == nil && a.stillShowing(v) {
			a.printItems(v)
		}
		return err
	})
}

// Invite runs the add-member dialog: search, pick, confirm.
func (a *App) Invite(ctx context.Context) error {
	return a.withDetail(func(v *views.GroupDetailView) error {
		if err := v.OpenAddMember(); err != nil {
			a.println("Only the group owner can add members.")
			return err
		}

		for {
			q, err := GetSimpleText(a.reader, "Search users by name or username (empty to cancel)", a.out)
			if err != nil || q == "" {
				v.AddMemberDialog.Close()
				return err
			}
			if err := v.SearchUsers(ctx, q); err != nil {
				a.println("User search failed, try again.")
				continue
			}
			users := v.AddMemberDialog.Draft().Results
			a.printUsers(users, nil)
			if len(users) == 0 {
				continue
			}

			pick, err := GetSimpleText(a.reader, "Pick a user number (empty to search again)", a.out)
			if err != nil {
				v.AddMemberDialog.Close()
				return err
			}
			if pick == "" {
				continue
			}
			i, err := a.index([]string{pick}, len(users), "<n>")
			if err != nil {
				continue
			}
			if err := v.SelectUser(users[i].ID); err != nil {
				return err
			}

			if err := v.SubmitAddMember(ctx); err != nil {
				return err
			}
			if a.stillShowing(v) {
				a.printMembers(v)
			}
			return nil
		}
	})
}

func (a *App) Kick(ctx context.Context, args []string) error {
	return a.withDetail(func(v *views.GroupDetailView) error {
		members := v.Members()
		i, err := a.index(args, len(members), "kick <n>")
		if err != nil {
			return err
		}
		err = v.RemoveMember(ctx, members[i].ID)
		if errors.Is(err, views.ErrNotPermitted) {
			a.println("You cannot remove this member.")
		}
		if err == nil && a.stillShowing(v) {
			a.printMembers(v)
		}
		return err
	})
}

func (a *App) DeleteGroup(ctx context.Context) error {
	return a.withDetail(func(v *views.GroupDetailView) error {
		if err := v.OpenDeleteGroup(); err != nil {
			a.println("Only the group owner can delete the group.")
			return err
		}
		ok, err := GetConfirmation(a.reader, "Delete "+v.Group().Name+"? This cannot be undone.", a.out)
		if err != nil || !ok {
			v.DeleteGroupDialog.Close()
			return err
		}
		return v.ConfirmDeleteGroup(ctx)
	})
}

func (a *App) DeleteAccount(ctx context.Context) error {
	v := a.profileView()
	v.OpenDeleteAccount()
	ok, err := GetConfirmation(a.reader, "Delete your account? This cannot be undone.", a.out)
	if err != nil || !ok {
		v.DeleteAccountDialog.Close()
		return err
	}
	return v.ConfirmDeleteAccount(ctx)
}

func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		a.printf("Not signed in (%s).\n", a.session.State())
		return nil
	}
	exp, _ := a.session.Expiry()
	a.println(a.render.Profile(*u, exp))
	return nil
}

func (a *App) Stats() error {
	if a.metrics == nil {
		a.println("No request statistics available.")
		return nil
	}
	rows, err := a.metrics.Snapshot()
	if err != nil {
		a.log.Error(a.ctx, "failed to read metrics", "error", err)
		return err
	}
	if len(rows) == 0 {
		a.println("No requests yet.")
		return nil
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strconv.Itoa(int(r.Count)) + "\t" + r.Method + " " + r.Route + " -> " + r.Code + "\n")
	}
	a.printf("%s", b.String())
	return nil
}
