// Package render formats groups, items and members for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/shoplist/internal/client/models"
)

// Theme holds the styles used by a Renderer. Colors are ANSI 256 codes.
type Theme struct {
	Title   lipgloss.Style
	Faint   lipgloss.Style
	Avatar  lipgloss.Style
	Action  lipgloss.Style
	Danger  lipgloss.Style
	Bought  lipgloss.Style
	Heading lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true),
		Faint:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Avatar:  lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62")).Padding(0, 1),
		Action:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Bought:  lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("245")),
		Heading: lipgloss.NewStyle().Bold(true).Underline(true),
	}
}

// Renderer turns models into single-line rows. Relative times are measured
// against Now.
type Renderer struct {
	Theme Theme
	Now   func() time.Time
}

func New(now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{Theme: DefaultTheme(), Now: now}
}

// Relative formats t like "3 hours ago".
func (r *Renderer) Relative(t time.Time) string {
	if t.IsZero() {
		return "some time ago"
	}
	return humanize.RelTime(t, r.Now(), "ago", "from now")
}

func (r *Renderer) avatar(u models.User) string {
	return r.Theme.Avatar.Render(u.Initial())
}

func (r *Renderer) Heading(s string) string {
	return r.Theme.Heading.Render(s)
}

// GroupCard renders one group. Own groups show the owner's initial; search
// results carry a join marker instead.
func (r *Renderer) GroupCard(n int, g models.Group, fromSearch bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%2d. %s  %s", n, r.Theme.Title.Render(g.Name), r.Theme.Faint.Render("Created "+r.Relative(g.CreatedAt)))
	if fromSearch {
		b.WriteString("  " + r.Theme.Action.Render("[Join]"))
	} else {
		b.WriteString("  " + r.avatar(g.Owner))
	}
	return b.String()
}

// ItemRow renders one item. The action label follows the item's state.
func (r *Renderer) ItemRow(n int, it models.Item, canDelete bool) string {
	name := r.Theme.Title.Render(it.Name)
	action := "[Buy]"
	if it.Bought {
		name = r.Theme.Bought.Render(it.Name)
		action = "[Unbuy]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%2d. %s  ", n, name)
	b.WriteString(r.Theme.Faint.Render(fmt.Sprintf("Created by %s %s", it.CreatedBy.Name, r.Relative(it.CreatedAt))))
	if it.Bought && it.BoughtBy != nil && it.BoughtAt != nil {
		b.WriteString(r.Theme.Faint.Render(fmt.Sprintf(" • Bought by %s %s", it.BoughtBy.Name, r.Relative(*it.BoughtAt))))
	}
	b.WriteString("  " + r.Theme.Action.Render(action))
	if canDelete {
		b.WriteString(" " + r.Theme.Danger.Render("[Delete]"))
	}
	return b.String()
}

// MemberRow renders one member. ownerID marks the owner's row.
func (r *Renderer) MemberRow(n int, m models.Member, ownerID string, canRemove bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%2d. %s %s %s", n, r.avatar(m.User), r.Theme.Title.Render(m.User.Name), r.Theme.Faint.Render("@"+m.User.Username))
	if m.User.ID == ownerID {
		b.WriteString("  " + r.Theme.Faint.Render("(owner)"))
	}
	if canRemove {
		b.WriteString("  " + r.Theme.Danger.Render("[Remove]"))
	}
	return b.String()
}

func (r *Renderer) UserRow(n int, u models.User, selected bool) string {
	mark := " "
	if selected {
		mark = "*"
	}
	return fmt.Sprintf("%2d.%s %s %s", n, mark, r.Theme.Title.Render(u.Name), r.Theme.Faint.Render("@"+u.Username))
}

// Profile renders the profile card. expires is shown when known.
func (r *Renderer) Profile(u models.User, expires time.Time) string {
	lines := []string{
		r.avatar(u) + " " + r.Theme.Title.Render(u.Name),
		r.Theme.Faint.Render("@" + u.Username),
	}
	if !expires.IsZero() {
		verb := "expires"
		if !expires.After(r.Now()) {
			verb = "expired"
		}
		lines = append(lines, r.Theme.Faint.Render(fmt.Sprintf("session %s %s", verb, r.Relative(expires))))
	}
	return strings.Join(lines, "\n")
}
