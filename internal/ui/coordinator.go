// Package ui implements the terminal interface of the incidents console.
// The Coordinator is the single owner of client-side state: the incident
// collection mirrored from the service, the filter and search values, the
// active dialog, and the loading/error state. Every mutation goes to the
// service and is followed by a full reload; the collection is never
// patched locally.
package ui

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/devbyilmir/incidents-manager/internal/api"
	"github.com/devbyilmir/incidents-manager/internal/incident"
	"github.com/devbyilmir/incidents-manager/internal/notify"
)

const (
	pageList      = "list"
	pageLoadError = "load-error"
)

// Coordinator owns the incident list screen and all of its state.
type Coordinator struct {
	app     *tview.Application
	client  *api.Client
	trigger notify.Trigger
	logger  *log.Logger

	// State. All fields below are touched only on the UI goroutine;
	// network goroutines hand results back via QueueUpdateDraw.
	incidents []incident.Incident
	visible   []incident.Incident
	loading   bool
	loadErr   string
	filter    string
	search    string
	dialog    dialogState
	user      *incident.UserSummary

	// reloadSeq is the monotonic reload counter. A response is applied
	// only when its sequence still matches the latest issued reload, so
	// the freshest request wins regardless of completion order.
	reloadSeq uint64

	// Layout
	layout     *tview.Flex
	header     *tview.TextView
	searchIn   *tview.InputField
	filterDrop *tview.DropDown
	statsBar   *tview.TextView
	pages      *tview.Pages
	table      *tview.Table
	errPanel   *tview.TextView
	footer     *tview.TextView
	statusBar  *tview.TextView

	theme        Theme
	themeName    string
	hasTrueColor bool

	statusTimer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCoordinator builds the console UI around a service client and an
// optional refresh trigger.
func NewCoordinator(ctx context.Context, client *api.Client, trigger notify.Trigger, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(log.Writer(), "[console] ", log.LstdFlags)
	}
	uiCtx, cancel := context.WithCancel(ctx)

	co := &Coordinator{
		app:          tview.NewApplication(),
		client:       client,
		trigger:      trigger,
		logger:       logger,
		filter:       incident.FilterAll,
		ctx:          uiCtx,
		cancel:       cancel,
		hasTrueColor: detectTrueColor(),
	}

	// The dark theme leans on hex colors that collapse to mud on
	// limited palettes; those terminals start on high contrast.
	co.themeName = "dark"
	co.theme = themeDark()
	if !co.hasTrueColor {
		co.themeName = "high-contrast"
		co.theme = themeHighContrast()
	}

	co.setupLayout()
	co.setupKeybindings()
	co.applyTheme()
	return co
}

// Start runs the application until Stop or context cancellation. It
// probes the session first: a valid session goes straight to the list
// with an initial load, anything else lands on the login form.
func (co *Coordinator) Start(ctx context.Context) error {
	go func() {
		user, err := co.client.Me(co.ctx)
		co.app.QueueUpdateDraw(func() {
			if err != nil {
				co.logger.Printf("session check failed: %v", err)
				co.showLogin("")
				return
			}
			co.user = user
			co.showMain()
			co.reload()
		})
	}()

	// External refresh trigger: a change means some sibling flow mutated
	// the collection, so reload. Repeated fires are harmless, the reload
	// sequence guard keeps only the freshest response.
	if co.trigger != nil {
		go func() {
			err := co.trigger.Watch(co.ctx, co.RequestReload)
			if err != nil && co.ctx.Err() == nil {
				co.logger.Printf("trigger watch stopped: %v", err)
			}
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-co.ctx.Done():
		}
		co.cancel()
		co.app.Stop()
	}()

	return co.app.Run()
}

// Stop shuts the application down.
func (co *Coordinator) Stop() {
	co.cancel()
	co.app.Stop()
}

// setupLayout assembles the main screen: header, controls row, stats
// strip, the list (or the blocking error panel), footer, status bar.
func (co *Coordinator) setupLayout() {
	co.header = tview.NewTextView().SetDynamicColors(true)
	co.statsBar = tview.NewTextView().SetDynamicColors(true)
	co.footer = tview.NewTextView().SetDynamicColors(true)
	co.statusBar = tview.NewTextView().SetDynamicColors(true)

	co.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	co.table.SetBorder(true).SetTitle(" Incidents ")
	co.table.SetSelectedFunc(func(row, col int) {
		if inc := co.incidentAtRow(row); inc != nil {
			co.openDetails(*inc)
		}
	})

	co.errPanel = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	co.errPanel.SetBorder(true).SetTitle(" Load Error ")

	co.pages = tview.NewPages().
		AddPage(pageList, co.table, true, true).
		AddPage(pageLoadError, co.errPanel, true, false)

	// The controls come after the table: selecting a dropdown option
	// re-renders the list, so the list widgets must exist first.
	co.searchIn = tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(32).
		SetChangedFunc(func(text string) {
			co.search = text
			co.renderList()
		})
	co.searchIn.SetDoneFunc(func(key tcell.Key) {
		co.app.SetFocus(co.table)
	})

	co.filterDrop = tview.NewDropDown().
		SetLabel(" Filter: ").
		SetOptions(incident.FilterValues(), func(option string, index int) {
			co.filter = option
			co.renderList()
			co.app.SetFocus(co.table)
		})
	co.filterDrop.SetCurrentOption(0)

	controls := tview.NewFlex().
		AddItem(co.searchIn, 0, 1, false).
		AddItem(co.filterDrop, 0, 1, false)

	co.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(co.header, 1, 0, false).
		AddItem(controls, 1, 0, false).
		AddItem(co.statsBar, 1, 0, false).
		AddItem(co.pages, 0, 1, true).
		AddItem(co.footer, 1, 0, false).
		AddItem(co.statusBar, 1, 0, false)
}

func (co *Coordinator) setupKeybindings() {
	co.table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'v':
			if inc := co.selectedIncident(); inc != nil {
				co.openDetails(*inc)
			}
			return nil
		case 'e':
			if inc := co.selectedIncident(); inc != nil {
				co.openEdit(*inc)
			}
			return nil
		case 'd':
			if inc := co.selectedIncident(); inc != nil {
				co.confirmDelete(*inc)
			}
			return nil
		case 't':
			if inc := co.selectedIncident(); inc != nil {
				co.toggleStatus(inc.ID, inc.Status)
			}
			return nil
		case 'c':
			co.openCreate()
			return nil
		case 'r':
			co.reload()
			return nil
		case '/':
			co.app.SetFocus(co.searchIn)
			return nil
		case 'f':
			co.app.SetFocus(co.filterDrop)
			return nil
		case 'x':
			co.resetFilters()
			return nil
		case 'T':
			co.cycleTheme()
			return nil
		case 'L':
			co.logout()
			return nil
		case 'q':
			co.Stop()
			return nil
		}
		if event.Key() == tcell.KeyDelete {
			if inc := co.selectedIncident(); inc != nil {
				co.confirmDelete(*inc)
			}
			return nil
		}
		return event
	})

	co.errPanel.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'r' {
			co.reload()
			return nil
		}
		if event.Rune() == 'q' {
			co.Stop()
			return nil
		}
		return event
	})
}

// reload issues a full fetch of the collection. Must be called on the UI
// goroutine; external callers use RequestReload. The previous collection
// stays visible until the fetch resolves, and a failed fetch leaves it
// untouched behind the error panel.
func (co *Coordinator) reload() {
	seq := atomic.AddUint64(&co.reloadSeq, 1)
	co.loading = true
	co.loadErr = ""
	co.pages.SwitchToPage(pageList)
	co.renderLoading()

	go func() {
		incidents, err := co.client.List(co.ctx)
		co.app.QueueUpdateDraw(func() {
			co.applyReload(seq, incidents, err)
		})
	}()
}

// applyReload settles a completed fetch on the UI goroutine. A response
// whose sequence is no longer the latest issued reload is dropped; the
// freshest request owns the screen. A failed fetch leaves the raw
// collection untouched behind the error panel.
func (co *Coordinator) applyReload(seq uint64, incidents []incident.Incident, err error) {
	if seq != atomic.LoadUint64(&co.reloadSeq) {
		co.logger.Printf("reload %d superseded, response dropped", seq)
		return
	}
	co.loading = false
	if err != nil {
		co.loadErr = userFacingError(err, "failed to load incidents")
		co.showLoadError()
		return
	}
	co.incidents = incidents
	co.renderAll()
}

// RequestReload schedules a reload from outside the UI goroutine.
func (co *Coordinator) RequestReload() {
	co.app.QueueUpdateDraw(co.reloadIfSignedIn)
}

// reloadIfSignedIn drops external refresh signals that land while the
// list screen is not mounted. A fetch during login would only park an
// invisible error behind the form, and mounting the list reloads anyway.
func (co *Coordinator) reloadIfSignedIn() {
	if co.user == nil {
		co.logger.Printf("refresh signal ignored, not signed in")
		return
	}
	co.reload()
}

// toggleStatus flips open/closed on the server, then reloads. The visible
// status does not change until the reload lands; that lag is part of the
// contract, not a bug.
func (co *Coordinator) toggleStatus(id int, current incident.Status) {
	next := current.Toggle()
	co.setStatus("[%s]Updating status...[-:-:-]", co.theme.TagWarning)

	go func() {
		err := co.client.UpdateStatus(co.ctx, id, next)
		co.app.QueueUpdateDraw(func() {
			co.finishMutation(fmt.Sprintf("Incident %s", next), "Status update", err)
		})
	}()
}

// finishMutation settles a completed mutation on the UI goroutine. A
// failure raises a transient notification and leaves the collection
// exactly as it was; success reports and issues the full reload.
func (co *Coordinator) finishMutation(successMsg, failVerb string, err error) {
	if err != nil {
		co.setStatus("[%s]%s failed: %s[-:-:-]", co.theme.TagError, failVerb,
			userFacingError(err, "connection error"))
		return
	}
	co.setStatus("[%s]%s[-:-:-]", co.theme.TagSuccess, successMsg)
	co.reload()
}

// resetFilters clears both the filter and the search term.
func (co *Coordinator) resetFilters() {
	co.filter = incident.FilterAll
	co.filterDrop.SetCurrentOption(0)
	co.searchIn.SetText("")
	co.search = ""
	co.renderList()
}

func (co *Coordinator) logout() {
	go func() {
		if err := co.client.Logout(co.ctx); err != nil {
			co.logger.Printf("logout: %v", err)
		}
		co.app.QueueUpdateDraw(func() {
			co.user = nil
			co.incidents = nil
			co.visible = nil
			co.showLogin("")
		})
	}()
}

// showMain mounts the list screen.
func (co *Coordinator) showMain() {
	co.dialog = dialogState{}
	co.app.SetRoot(co.layout, true)
	co.app.SetFocus(co.table)
	co.renderAll()
}

// renderAll redraws everything derived from state.
func (co *Coordinator) renderAll() {
	co.renderHeader()
	co.renderStats()
	co.renderList()
}

func (co *Coordinator) renderHeader() {
	name := "unknown"
	if co.user != nil {
		name = co.user.Name
	}
	fmt.Fprintf(co.header.Clear(),
		" [::b]Incidents Console[-:-:-]  [%s]signed in as %s[-:-:-]",
		co.theme.TagMuted, name)
}

func (co *Coordinator) renderStats() {
	st := incident.Summarize(co.incidents)
	fmt.Fprintf(co.statsBar.Clear(),
		" total %d  [%s]critical %d[-]  [%s]high %d[-]  [%s]open %d[-]",
		st.Total,
		co.theme.TagPriorityCritical, st.Critical,
		co.theme.TagPriorityHigh, st.High,
		co.theme.TagSuccess, st.Open)
}

// renderList derives the filtered view from the raw collection and
// redraws the table and footer. Derivation is recomputed on every call;
// no stale view survives a completed reload.
func (co *Coordinator) renderList() {
	co.visible = incident.Filter(co.incidents, co.filter, co.search)

	co.table.Clear()
	headers := []string{"ID", "Title", "Type", "Priority", "Status", "Location", "Creator", "Created"}
	for col, h := range headers {
		co.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(co.theme.TableHeader).
			SetBackgroundColor(co.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}

	if len(co.visible) == 0 {
		hint := "No incidents yet"
		if co.search != "" || co.filter != incident.FilterAll {
			hint = "No incidents match, press x to reset filters"
		}
		co.table.SetCell(1, 0, tview.NewTableCell("").SetSelectable(false))
		co.table.SetCell(1, 1, tview.NewTableCell(hint).
			SetTextColor(co.theme.TextMuted).SetSelectable(false))
	}

	for i, inc := range co.visible {
		row := i + 1
		cells := []string{
			fmt.Sprintf("%d", inc.ID),
			inc.Title,
			inc.Type.String(),
			inc.Priority.String(),
			inc.Status.String(),
			inc.Location,
			inc.CreatorName(),
			inc.CreatedAt.Local().Format("2006-01-02 15:04"),
		}
		for col, text := range cells {
			cell := tview.NewTableCell(text).SetTextColor(co.theme.TableRow)
			if col == 3 {
				cell.SetTextColor(hex(co.theme.priorityTag(inc.Priority.String())))
			}
			if col == 4 && inc.Status == incident.StatusClosed {
				cell.SetTextColor(co.theme.TextMuted)
			}
			co.table.SetCell(row, col, cell)
		}
	}

	fmt.Fprintf(co.footer.Clear(), " showing %d of %d incidents", len(co.visible), len(co.incidents))
	if co.search != "" || co.filter != incident.FilterAll {
		fmt.Fprintf(co.footer, " [%s](filtered)[-]", co.theme.TagMuted)
	}
}

func (co *Coordinator) renderLoading() {
	co.table.Clear()
	co.table.SetCell(0, 0, tview.NewTableCell("Loading incidents...").
		SetTextColor(co.theme.TextMuted).SetSelectable(false))
}

// showLoadError replaces the list with the blocking error panel. Stale
// data stays in memory but off screen; acting on it would mean acting on
// data known to be out of date.
func (co *Coordinator) showLoadError() {
	fmt.Fprintf(co.errPanel.Clear(),
		"\n\n[%s]%s[-:-:-]\n\npress [::b]r[-:-:-] to retry", co.theme.TagError, co.loadErr)
	co.pages.SwitchToPage(pageLoadError)
	co.app.SetFocus(co.errPanel)
}

// selectedIncident resolves the table selection against the last derived
// view.
func (co *Coordinator) selectedIncident() *incident.Incident {
	row, _ := co.table.GetSelection()
	return co.incidentAtRow(row)
}

func (co *Coordinator) incidentAtRow(row int) *incident.Incident {
	idx := row - 1
	if idx < 0 || idx >= len(co.visible) {
		return nil
	}
	inc := co.visible[idx]
	return &inc
}

// setStatus writes a transient status-bar notification that clears
// itself after a few seconds.
func (co *Coordinator) setStatus(format string, args ...interface{}) {
	co.statusBar.Clear()
	fmt.Fprintf(co.statusBar, " "+format, args...)

	if co.statusTimer != nil {
		co.statusTimer.Stop()
	}
	co.statusTimer = time.AfterFunc(5*time.Second, func() {
		co.app.QueueUpdateDraw(func() {
			co.statusBar.Clear()
		})
	})
}

func (co *Coordinator) cycleTheme() {
	if co.themeName == "dark" {
		co.themeName = "high-contrast"
		co.theme = themeHighContrast()
	} else {
		co.themeName = "dark"
		co.theme = themeDark()
	}
	co.applyTheme()
	co.renderAll()
}

func (co *Coordinator) applyTheme() {
	t := co.theme
	co.layout.SetBackgroundColor(t.Bg)
	co.header.SetBackgroundColor(t.Bg)
	co.statsBar.SetBackgroundColor(t.Bg)
	co.footer.SetBackgroundColor(t.Bg)
	co.statusBar.SetBackgroundColor(t.Bg)
	co.table.SetBackgroundColor(t.Surface)
	co.table.SetBorderColor(t.Border)
	co.table.SetSelectedStyle(tcell.StyleDefault.
		Background(t.SelectionBg).Foreground(t.SelectionFg))
	co.errPanel.SetBackgroundColor(t.Surface)
	co.errPanel.SetBorderColor(t.Border)
	co.searchIn.SetFieldBackgroundColor(t.SelectionBg)
	co.searchIn.SetFieldTextColor(t.TextPrimary)
	co.filterDrop.SetFieldBackgroundColor(t.SelectionBg)
	co.filterDrop.SetFieldTextColor(t.TextPrimary)
}

// userFacingError extracts the server detail when present, otherwise
// falls back to a generic message. Transport errors and non-2xx responses
// are deliberately not distinguished beyond this.
func userFacingError(err error, fallback string) string {
	if apiErr, ok := err.(*api.Error); ok && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if err != nil && fallback == "" {
		return err.Error()
	}
	return fallback
}
