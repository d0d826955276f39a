package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/devbyilmir/incidents-manager/internal/incident"
)

// dialogKind enumerates the dialog variants. Exactly one dialog can be
// open at a time; opening one closes whatever was open before.
type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogDetails
	dialogEdit
	dialogCreate
	dialogConfirmDelete
)

// dialogState is the single tagged value the Coordinator holds for
// dialogs. The incident pointer carries the payload for variants that
// target one.
type dialogState struct {
	kind     dialogKind
	incident *incident.Incident
}

const pageDialog = "dialog"

// openDialog mounts a dialog primitive over the list, replacing any
// dialog already shown.
func (co *Coordinator) openDialog(kind dialogKind, inc *incident.Incident, p tview.Primitive) {
	co.closeDialog()
	co.dialog = dialogState{kind: kind, incident: inc}
	co.pages.AddPage(pageDialog, p, true, true)
	co.app.SetFocus(p)
}

func (co *Coordinator) closeDialog() {
	if co.dialog.kind == dialogNone {
		return
	}
	co.dialog = dialogState{}
	co.pages.RemovePage(pageDialog)
	co.app.SetFocus(co.table)
}

// center wraps a primitive in a fixed-size centered flex.
func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

// openDetails shows a read-only view of one incident.
func (co *Coordinator) openDetails(inc incident.Incident) {
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]%s[-:-:-]\n\n", tview.Escape(inc.Title))
	fmt.Fprintf(&b, "[%s]Type:[-]      %s\n", co.theme.TagMuted, inc.Type)
	fmt.Fprintf(&b, "[%s]Priority:[-]  [%s]%s[-]\n", co.theme.TagMuted,
		co.theme.priorityTag(inc.Priority.String()), inc.Priority)
	fmt.Fprintf(&b, "[%s]Status:[-]    %s\n", co.theme.TagMuted, inc.Status)
	fmt.Fprintf(&b, "[%s]Location:[-]  %s\n", co.theme.TagMuted, tview.Escape(inc.Location))
	fmt.Fprintf(&b, "[%s]Creator:[-]   %s\n", co.theme.TagMuted, tview.Escape(inc.CreatorName()))
	fmt.Fprintf(&b, "[%s]Created:[-]   %s\n\n", co.theme.TagMuted,
		inc.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if inc.Description != "" {
		fmt.Fprintf(&b, "%s\n", tview.Escape(inc.Description))
	}

	view := tview.NewTextView().SetDynamicColors(true).SetText(b.String())
	view.SetBorder(true).
		SetTitle(fmt.Sprintf(" Incident #%d ", inc.ID)).
		SetBorderColor(co.theme.FocusBorder).
		SetBackgroundColor(co.theme.Surface)
	view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape, event.Rune() == 'q':
			co.closeDialog()
			return nil
		case event.Rune() == 'e':
			co.openEdit(inc)
			return nil
		}
		return event
	})

	co.openDialog(dialogDetails, &inc, center(view, 72, 18))
}

// openEdit shows the edit form seeded from the incident. On save the
// draft goes to the service; a failure keeps the form open with the
// error inline and the typed values intact.
func (co *Coordinator) openEdit(inc incident.Incident) {
	draft := incident.DraftFrom(inc)
	co.openDialog(dialogEdit, &inc, co.buildIncidentForm(
		fmt.Sprintf(" Edit Incident #%d ", inc.ID), draft,
		func(d incident.Draft, setErr func(string)) {
			go func() {
				_, err := co.client.UpdateFields(co.ctx, inc.ID, d)
				co.app.QueueUpdateDraw(func() {
					if err != nil {
						setErr(userFacingError(err, "failed to save incident"))
						return
					}
					co.closeDialog()
					co.setStatus("[%s]Incident updated[-:-:-]", co.theme.TagSuccess)
					co.reload()
				})
			}()
		}))
}

// openCreate shows an empty form with the default type and priority.
func (co *Coordinator) openCreate() {
	draft := incident.Draft{
		Type:     incident.TypeLeak,
		Priority: incident.PriorityMedium,
	}
	co.openDialog(dialogCreate, nil, co.buildIncidentForm(
		" New Incident ", draft,
		func(d incident.Draft, setErr func(string)) {
			go func() {
				_, err := co.client.Create(co.ctx, d)
				co.app.QueueUpdateDraw(func() {
					if err != nil {
						setErr(userFacingError(err, "failed to create incident"))
						return
					}
					co.closeDialog()
					co.setStatus("[%s]Incident created[-:-:-]", co.theme.TagSuccess)
					co.reload()
				})
			}()
		}))
}

// buildIncidentForm assembles the shared create/edit form. The submit
// callback receives the collected draft and a setter for the inline
// error line; local validation runs before submit so obvious mistakes
// never leave the terminal.
func (co *Coordinator) buildIncidentForm(title string, seed incident.Draft, submit func(incident.Draft, func(string))) tview.Primitive {
	draft := seed

	var types, priorities []string
	for _, t := range incident.Types() {
		types = append(types, t.String())
	}
	for _, p := range incident.Priorities() {
		priorities = append(priorities, p.String())
	}

	errLine := tview.NewTextView().SetDynamicColors(true)
	errLine.SetBackgroundColor(co.theme.Surface)
	setErr := func(msg string) {
		errLine.Clear()
		if msg != "" {
			fmt.Fprintf(errLine, " [%s]%s[-:-:-]", co.theme.TagError, tview.Escape(msg))
		}
	}

	form := tview.NewForm().
		AddInputField("Title", draft.Title, 48, nil, func(text string) { draft.Title = text }).
		AddDropDown("Type", types, indexOf(types, draft.Type.String()), func(option string, _ int) {
			draft.Type = incident.Type(option)
		}).
		AddDropDown("Priority", priorities, indexOf(priorities, draft.Priority.String()), func(option string, _ int) {
			draft.Priority = incident.Priority(option)
		}).
		AddInputField("Location", draft.Location, 48, nil, func(text string) { draft.Location = text }).
		AddTextArea("Description", draft.Description, 48, 4, 0, func(text string) { draft.Description = text })

	form.AddButton("Save", func() {
		if err := draft.Validate(); err != nil {
			setErr(err.Error())
			return
		}
		setErr("")
		submit(draft, setErr)
	})
	form.AddButton("Cancel", func() { co.closeDialog() })

	form.SetBorder(true).
		SetTitle(title).
		SetBorderColor(co.theme.FocusBorder).
		SetBackgroundColor(co.theme.Surface)
	form.SetFieldBackgroundColor(co.theme.SelectionBg)
	form.SetFieldTextColor(co.theme.TextPrimary)
	form.SetLabelColor(co.theme.TextMuted)
	form.SetButtonBackgroundColor(co.theme.SelectionBg)
	form.SetButtonTextColor(co.theme.TextPrimary)
	form.SetCancelFunc(func() { co.closeDialog() })

	box := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errLine, 1, 0, false)

	return center(box, 64, 19)
}

// confirmDelete opens the delete confirmation modal. The delete itself
// runs only after explicit confirmation; cancelling just drops the
// dialog state.
func (co *Coordinator) confirmDelete(inc incident.Incident) {
	modal := tview.NewModal().
		SetText(fmt.Sprintf("Delete incident #%d\n%q?\n\nThis cannot be undone.", inc.ID, inc.Title)).
		AddButtons([]string{"Delete", "Cancel"}).
		SetDoneFunc(func(_ int, label string) {
			if label != "Delete" {
				co.closeDialog()
				return
			}
			co.closeDialog()
			co.setStatus("[%s]Deleting...[-:-:-]", co.theme.TagWarning)
			go func() {
				err := co.client.Delete(co.ctx, inc.ID)
				co.app.QueueUpdateDraw(func() {
					co.finishMutation("Incident deleted", "Delete", err)
				})
			}()
		})
	modal.SetBackgroundColor(co.theme.Surface)
	modal.SetButtonBackgroundColor(co.theme.SelectionBg)
	modal.SetButtonTextColor(co.theme.TextPrimary)

	co.openDialog(dialogConfirmDelete, &inc, modal)
}

func indexOf(vals []string, want string) int {
	for i, v := range vals {
		if v == want {
			return i
		}
	}
	return 0
}
