// Package tui is a terminal front end for the view controller: years on the
// left, the selected year's chart as text bars on the right.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"renewables/internal/core"
	applog "renewables/internal/log"
	"renewables/internal/view"
)

const barWidth = 40

// App wraps the tview application around a view.Controller.
type App struct {
	app    *tview.Application
	header *tview.TextView
	footer *tview.TextView
	years  *tview.List
	chart  *tview.TextView

	ctrl   *view.Controller
	logger *applog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	// set while the year list is filled, to ignore the changes it fires
	populating bool
}

// New builds the layout. The controller must not have been initialised yet.
func New(ctrl *view.Controller, logger *applog.Logger) *App {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	setupTheme()

	a := &App{
		ctrl:   ctrl,
		logger: logger.WithComponent(applog.ComponentTUI),
	}

	a.header = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText("Renewables - loading...")
	a.header.SetBorder(true)

	a.footer = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText("q quit | j/k or arrows select year | s save SVG")
	a.footer.SetBorder(true)

	a.years = tview.NewList().ShowSecondaryText(false)
	a.years.SetBorder(true).SetTitle("Years")
	a.years.SetChangedFunc(func(_ int, mainText, _ string, _ rune) {
		if a.populating {
			return
		}
		if year, err := strconv.Atoi(mainText); err == nil {
			go a.selectYear(year)
		}
	})

	a.chart = tview.NewTextView().SetDynamicColors(true)
	a.chart.SetBorder(true).SetTitle(" Sum(Renewables) ")

	grid := tview.NewGrid().
		SetRows(3, 0, 3).
		SetColumns(14, 0).
		SetBorders(false)
	grid.AddItem(a.header, 0, 0, 1, 2, 0, 0, false)
	grid.AddItem(a.footer, 2, 0, 1, 2, 0, 0, false)
	grid.AddItem(a.years, 1, 0, 1, 1, 0, 0, true)
	grid.AddItem(a.chart, 1, 1, 1, 1, 0, 0, false)

	a.app = tview.NewApplication().
		SetRoot(grid, true).
		SetFocus(a.years)
	a.app.SetInputCapture(a.handleKey)

	return a
}

// Run loads the latest year in the background and blocks until the user quits
// or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)
	defer a.cancel()
	defer a.ctrl.Close()

	go func() {
		<-a.ctx.Done()
		a.app.Stop()
	}()
	go a.init()

	return a.app.Run()
}

func (a *App) init() {
	err := a.ctrl.Init(a.ctx)
	sel := a.ctrl.Selection()
	rows := a.ctrl.Rows()

	a.app.QueueUpdateDraw(func() {
		if err != nil {
			a.showError(fmt.Sprintf("could not load years: %v", err))
			return
		}
		a.populating = true
		a.years.Clear()
		current := 0
		for i, y := range sel.Years {
			a.years.AddItem(strconv.Itoa(y), "", 0, nil)
			if y == sel.Year {
				current = i
			}
		}
		a.years.SetCurrentItem(current)
		a.populating = false
		a.draw(sel, rows)
	})
}

func (a *App) selectYear(year int) {
	a.app.QueueUpdateDraw(func() {
		a.header.SetText(fmt.Sprintf("[yellow]Loading %d...[-]", year))
	})

	err := a.ctrl.Select(a.ctx, year)
	switch {
	case errors.Is(err, view.ErrStale), errors.Is(err, view.ErrClosed):
		return
	case err != nil:
		a.app.QueueUpdateDraw(func() {
			a.showError(fmt.Sprintf("could not load %d: %v", year, err))
		})
		return
	}

	sel := a.ctrl.Selection()
	rows := a.ctrl.Rows()
	a.app.QueueUpdateDraw(func() {
		a.draw(sel, rows)
	})
}

// draw must run on the UI goroutine.
func (a *App) draw(sel core.Selection, rows []core.Row) {
	if len(sel.Years) == 0 {
		a.header.SetText("[red]No data available[-]")
		a.chart.SetText("")
		return
	}
	a.header.SetText(fmt.Sprintf("[green]Renewables %d[-] (%d-%d)", sel.Year, sel.Min, sel.Max))
	if len(rows) == 0 {
		a.chart.SetText(fmt.Sprintf("No records for %d", sel.Year))
		return
	}
	var b strings.Builder
	for _, line := range Bars(rows, barWidth) {
		b.WriteString(tview.Escape(line))
		b.WriteByte('\n')
	}
	a.chart.SetText(b.String())
	a.chart.ScrollToBeginning()
}

// showError keeps the current chart and reports in the header.
func (a *App) showError(msg string) {
	a.header.SetText("[red]" + tview.Escape(msg) + "[-]")
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q':
		a.cancel()
		return nil
	case 'j':
		if i := a.years.GetCurrentItem(); i < a.years.GetItemCount()-1 {
			a.years.SetCurrentItem(i + 1)
		}
		return nil
	case 'k':
		if i := a.years.GetCurrentItem(); i > 0 {
			a.years.SetCurrentItem(i - 1)
		}
		return nil
	case 's':
		a.saveSVG()
		return nil
	}
	return event
}

// saveSVG writes the chart currently on the controller's surface to disk.
func (a *App) saveSVG() {
	sel := a.ctrl.Selection()
	svg := a.ctrl.Surface().Current(a.ctrl.Mount())
	if svg == nil || sel.Year == 0 {
		a.showError("nothing to save yet")
		return
	}
	name := fmt.Sprintf("renewables-%d.svg", sel.Year)
	if err := os.WriteFile(name, []byte(svg.String()), 0o644); err != nil {
		a.logger.Error("Save SVG failed", applog.FieldError, err)
		a.showError(fmt.Sprintf("save failed: %v", err))
		return
	}
	a.header.SetText(fmt.Sprintf("[green]Saved %s[-]", tview.Escape(name)))
}

func setupTheme() {
	tview.Styles.BorderColor = tcell.ColorSteelBlue
	tview.Styles.TitleColor = tcell.ColorLightSteelBlue
	tview.Styles.GraphicsColor = tcell.ColorSteelBlue
}
