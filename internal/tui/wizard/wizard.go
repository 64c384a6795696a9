// ABOUTME: Allocation planning wizard as a bubbletea model
// ABOUTME: Uses huh forms with a step progress indicator for workload, constraints, and catalog

package wizard

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/markalston/vm-allocator/internal/tui/styles"
	"github.com/markalston/vm-allocator/models"
)

// CompleteMsg is sent when the wizard finishes successfully
type CompleteMsg struct {
	Workload    models.WorkloadConfig
	CatalogName string
}

// CancelledMsg is sent when the wizard is cancelled
type CancelledMsg struct{}

// Wizard collects a workload and a catalog choice as a bubbletea model
type Wizard struct {
	catalogs []*models.VMSizeCatalog
	form     *huh.Form
	step     int
	width    int
	err      error

	// Form field values (strings for huh)
	cpuPerProcess string
	processes     string
	minVMs        string
	overhead      string
	catalogName   string
}

// Step names for progress indicator
var stepNames = []string{"Workload", "Constraints", "Catalog"}

// createTheme returns the huh theme in the shared palette
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(styles.Muted).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(styles.Muted)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(styles.Danger).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(styles.Danger)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(styles.Primary).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(styles.Text)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Bold(true)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(styles.Muted)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(styles.Primary)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Info).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(styles.Muted).
		Background(styles.Surface).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(styles.Muted)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		SetString("  ")

	return t
}

// Common per-VM overheads in CPUs
var overheadOptions = []huh.Option[string]{
	huh.NewOption("0 (no agent overhead)", "0"),
	huh.NewOption("1 CPU", "1"),
	huh.NewOption("2 CPUs", "2"),
	huh.NewOption("4 CPUs", "4"),
}

// New creates a wizard offering the given catalogs. The first catalog is the
// default selection unless defaultCatalog names another one.
func New(catalogs []*models.VMSizeCatalog, defaultCatalog string) *Wizard {
	w := &Wizard{
		catalogs:      catalogs,
		step:          1,
		cpuPerProcess: "2",
		processes:     "64",
		minVMs:        "1",
		overhead:      "0",
	}
	if len(catalogs) > 0 {
		w.catalogName = catalogs[0].Name
	}
	if c, ok := lo.Find(catalogs, func(c *models.VMSizeCatalog) bool {
		return strings.EqualFold(c.Name, defaultCatalog)
	}); ok {
		w.catalogName = c.Name
	}

	w.form = w.createStep1Form()
	return w
}

func (w *Wizard) createStep1Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("CPUs per process").
				Description("Dedicated CPUs each process needs").
				Placeholder("e.g., 2").
				CharLimit(4).
				Value(&w.cpuPerProcess).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Number of processes").
				Description("Processes to place across the VMs").
				Placeholder("e.g., 64").
				CharLimit(7).
				Value(&w.processes).
				Validate(validatePositiveInt),
		).Title("Step 1: Workload").
			Description("Describe the processes to host"),
	).WithTheme(createTheme())
}

func (w *Wizard) createStep2Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Minimum VM count").
				Description("Floor on the number of VMs, e.g. for availability").
				Placeholder("e.g., 3").
				CharLimit(5).
				Value(&w.minVMs).
				Validate(validatePositiveInt),
			huh.NewSelect[string]().
				Title("CPU overhead per VM").
				Description("CPUs on every VM reserved for the OS and agents").
				Options(overheadOptions...).
				Value(&w.overhead),
		).Title("Step 2: Constraints").
			Description("Limits that apply to every VM size"),
	).WithTheme(createTheme())
}

func (w *Wizard) createStep3Form() *huh.Form {
	options := lo.Map(w.catalogs, func(c *models.VMSizeCatalog, _ int) huh.Option[string] {
		return huh.NewOption(c.Label(), c.Name)
	})

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("VM size catalog").
				Description("Use ↑/↓ to select, Enter to confirm").
				Options(options...).
				Value(&w.catalogName),
		).Title("Step 3: Catalog").
			Description("Pick the VM family to price against"),
	).WithTheme(createTheme())
}

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	return w.form.Init()
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return w, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	if w.form.State == huh.StateCompleted {
		return w.advanceStep()
	}

	return w, cmd
}

func (w *Wizard) advanceStep() (tea.Model, tea.Cmd) {
	switch w.step {
	case 1:
		w.step = 2
		w.form = w.createStep2Form()
		return w, w.form.Init()

	case 2:
		w.step = 3
		w.form = w.createStep3Form()
		return w, w.form.Init()

	case 3:
		workload, err := w.Workload()
		if err != nil {
			// Restart from the first step with the values kept
			w.err = err
			w.step = 1
			w.form = w.createStep1Form()
			return w, w.form.Init()
		}
		w.err = nil
		return w, func() tea.Msg {
			return CompleteMsg{Workload: workload, CatalogName: w.catalogName}
		}
	}

	return w, nil
}

// Workload builds the workload from the collected values.
func (w *Wizard) Workload() (models.WorkloadConfig, error) {
	fields := []struct {
		name  string
		raw   string
		value int
	}{
		{"cpu per process", w.cpuPerProcess, 0},
		{"number of processes", w.processes, 0},
		{"minimum vm count", w.minVMs, 0},
		{"cpu overhead", w.overhead, 0},
	}
	for i := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(fields[i].raw))
		if err != nil {
			return models.WorkloadConfig{}, fmt.Errorf("%s: %w", fields[i].name, err)
		}
		fields[i].value = v
	}

	return models.NewWorkloadConfig(fields[0].value, fields[1].value,
		models.WithMinimumVMCount(fields[2].value),
		models.WithCPUOverheadPerVM(fields[3].value),
	)
}

// CatalogName returns the selected catalog
func (w *Wizard) CatalogName() string {
	return w.catalogName
}

// SetWidth sets the wizard width for proper rendering
func (w *Wizard) SetWidth(width int) {
	w.width = width
}

// View implements tea.Model
func (w *Wizard) View() string {
	var sb strings.Builder

	sb.WriteString(w.renderProgress())
	sb.WriteString("\n\n")
	if w.err != nil {
		sb.WriteString(styles.StatusCritical.Render(w.err.Error()))
		sb.WriteString("\n\n")
	}
	sb.WriteString(w.form.View())

	return sb.String()
}

// renderProgress renders the step indicator and a filled bar
func (w *Wizard) renderProgress() string {
	width := max(w.width-2, 40)

	var steps []string
	for i, name := range stepNames {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case stepNum < w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render("✓")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case stepNum == w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}

	filled := w.step * width / len(stepNames)
	bar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", width-filled))

	return styles.Panel.Render(strings.Join(steps, "    ") + "\n" + bar)
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}
