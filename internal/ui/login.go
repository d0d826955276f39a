package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/devbyilmir/incidents-manager/internal/api"
)

// showLogin mounts the sign-in form as the application root. A non-empty
// message is shown above the fields, used for session-expiry notices and
// failed attempts.
func (co *Coordinator) showLogin(message string) {
	creds := api.Credentials{}

	errLine := tview.NewTextView().SetDynamicColors(true)
	errLine.SetBackgroundColor(co.theme.Surface)
	setErr := func(msg string) {
		errLine.Clear()
		if msg != "" {
			fmt.Fprintf(errLine, " [%s]%s[-:-:-]", co.theme.TagError, tview.Escape(msg))
		}
	}
	setErr(message)

	var form *tview.Form
	submit := func() {
		if creds.Email == "" || creds.Password == "" {
			setErr("email and password are required")
			return
		}
		setErr("")
		go func() {
			err := co.client.Login(co.ctx, creds)
			if err != nil {
				co.app.QueueUpdateDraw(func() {
					setErr(userFacingError(err, "login failed"))
				})
				return
			}
			user, err := co.client.Me(co.ctx)
			co.app.QueueUpdateDraw(func() {
				if err != nil {
					setErr(userFacingError(err, "session check failed"))
					return
				}
				co.user = user
				co.showMain()
				co.reload()
			})
		}()
	}

	form = tview.NewForm().
		AddInputField("Email", "", 36, nil, func(text string) { creds.Email = text }).
		AddPasswordField("Password", "", 36, '*', func(text string) { creds.Password = text }).
		AddButton("Sign In", submit).
		AddButton("Quit", func() { co.Stop() })

	form.SetBorder(true).
		SetTitle(" Sign In ").
		SetBorderColor(co.theme.FocusBorder).
		SetBackgroundColor(co.theme.Surface)
	form.SetFieldBackgroundColor(co.theme.SelectionBg)
	form.SetFieldTextColor(co.theme.TextPrimary)
	form.SetLabelColor(co.theme.TextMuted)
	form.SetButtonBackgroundColor(co.theme.SelectionBg)
	form.SetButtonTextColor(co.theme.TextPrimary)

	box := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errLine, 1, 0, false)

	co.dialog = dialogState{}
	co.app.SetRoot(center(box, 52, 13), true)
	co.app.SetFocus(form)
}
