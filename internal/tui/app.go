// ABOUTME: Root bubbletea model for the interactive planner
// ABOUTME: Runs the wizard, computes the allocation, and shows the report

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/vm-allocator/internal/tui/report"
	"github.com/markalston/vm-allocator/internal/tui/styles"
	"github.com/markalston/vm-allocator/internal/tui/wizard"
	"github.com/markalston/vm-allocator/models"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenWizard Screen = iota
	ScreenReport
)

// PlanFunc computes the allocation for a workload against a named catalog.
type PlanFunc func(ctx context.Context, workload models.WorkloadConfig, catalogName string) (*models.AllocationResult, error)

type keyMap struct {
	Quit    key.Binding
	NewPlan key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	NewPlan: key.NewBinding(
		key.WithKeys("n", "w"),
		key.WithHelp("n", "new plan"),
	),
}

// planComputedMsg is sent when the allocation finishes
type planComputedMsg struct {
	result *models.AllocationResult
	err    error
}

// App is the root model for the TUI
type App struct {
	ctx            context.Context
	plan           PlanFunc
	catalogs       []*models.VMSizeCatalog
	defaultCatalog string
	screen         Screen
	width          int
	err            error

	wizard *wizard.Wizard
	report *report.Report
	result *models.AllocationResult
}

// New creates the planner app over the given catalogs
func New(ctx context.Context, plan PlanFunc, catalogs []*models.VMSizeCatalog, defaultCatalog string) *App {
	return &App{
		ctx:            ctx,
		plan:           plan,
		catalogs:       catalogs,
		defaultCatalog: defaultCatalog,
		screen:         ScreenWizard,
		wizard:         wizard.New(catalogs, defaultCatalog),
	}
}

// Result returns the last computed allocation, if any
func (a *App) Result() *models.AllocationResult {
	return a.result
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.wizard.Init()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		if a.report != nil {
			a.report.SetWidth(a.width)
		}
		if a.wizard != nil {
			return a.updateWizard(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.screen {
		case ScreenWizard:
			return a.updateWizard(msg)
		case ScreenReport:
			return a.updateReport(msg)
		}

	case wizard.CompleteMsg:
		a.err = nil
		return a, a.computePlan(msg.Workload, msg.CatalogName)

	case wizard.CancelledMsg:
		if a.result != nil {
			a.screen = ScreenReport
			a.wizard = nil
			return a, nil
		}
		return a, tea.Quit

	case planComputedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a.restartWizard()
		}
		a.result = msg.result
		a.report = report.New(msg.result, a.width)
		a.wizard = nil
		a.screen = ScreenReport
		return a, nil

	default:
		// huh forms need their internal messages
		if a.screen == ScreenWizard && a.wizard != nil {
			return a.updateWizard(msg)
		}
	}

	return a, nil
}

func (a *App) updateWizard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.wizard == nil {
		return a, nil
	}
	model, cmd := a.wizard.Update(msg)
	a.wizard = model.(*wizard.Wizard)
	return a, cmd
}

func (a *App) updateReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.NewPlan):
		return a.restartWizard()
	}
	return a, nil
}

func (a *App) restartWizard() (tea.Model, tea.Cmd) {
	a.wizard = wizard.New(a.catalogs, a.defaultCatalog)
	a.wizard.SetWidth(a.width)
	a.screen = ScreenWizard
	return a, a.wizard.Init()
}

func (a *App) computePlan(workload models.WorkloadConfig, catalogName string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.plan(a.ctx, workload, catalogName)
		return planComputedMsg{result: result, err: err}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var sb strings.Builder

	if a.err != nil {
		sb.WriteString(styles.StatusCritical.Render("Error: " + a.err.Error()))
		sb.WriteString("\n\n")
	}

	switch a.screen {
	case ScreenWizard:
		if a.wizard != nil {
			sb.WriteString(a.wizard.View())
		}
	case ScreenReport:
		if a.report != nil {
			sb.WriteString(a.report.View())
		}
		sb.WriteString(a.helpView())
	}

	return sb.String()
}

func (a *App) helpView() string {
	parts := make([]string, 0, 2)
	for _, b := range []key.Binding{keys.NewPlan, keys.Quit} {
		parts = append(parts, styles.KeyStyle.Render(b.Help().Key)+" "+b.Help().Desc)
	}
	return styles.Help.Render(strings.Join(parts, "  "))
}
