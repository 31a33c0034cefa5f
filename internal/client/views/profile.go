package views

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/shoplist/internal/client/models"
)

var ErrNoClipboard = errors.New("clipboard is not available")

// ProfileView shows the signed-in user and hosts account deletion.
type ProfileView struct {
	env    Env
	runner *Runner

	DeleteAccountDialog Dialog[struct{}]
}

func NewProfileView(env Env) *ProfileView {
	env = env.withDefaults()
	return &ProfileView{env: env, runner: NewRunner(env.Notifier, env.Log)}
}

func (v *ProfileView) User() *models.User {
	return v.env.Session.User()
}

// CopyUsername puts the username on the clipboard.
func (v *ProfileView) CopyUsername(ctx context.Context) error {
	u := v.User()
	if u == nil {
		return ErrNotLoaded
	}
	if v.env.Clipboard == nil {
		return ErrNoClipboard
	}
	if err := v.env.Clipboard.Copy(u.Username); err != nil {
		v.env.Log.Error(ctx, "failed to copy username", "error", err)
		return err
	}
	v.env.Notifier.Success("Username copied to clipboard")
	return nil
}

func (v *ProfileView) OpenDeleteAccount() {
	v.DeleteAccountDialog.Open(struct{}{})
}

// ConfirmDeleteAccount deletes the account and signs out. The dialog closes
// whether or not the request succeeds.
func (v *ProfileView) ConfirmDeleteAccount(ctx context.Context) error {
	if _, err := v.DeleteAccountDialog.Begin(); err != nil {
		return err
	}
	return v.runner.Run(ctx, Mutation{
		Name:      "delete account",
		Action:    v.env.Client.DeleteAccount,
		Success:   "Account deleted successfully",
		Failure:   "Failed to delete account",
		OnSuccess: func() { v.env.Session.Logout(ctx) },
		Finally:   v.DeleteAccountDialog.Close,
	})
}

// SignOut ends the session.
func (v *ProfileView) SignOut(ctx context.Context) {
	v.env.Session.Logout(ctx)
}
