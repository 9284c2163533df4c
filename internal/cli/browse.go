package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/intel/svr-info/pkg/models"
)

// Check view panel indices.
const (
	panelMissing = iota
	panelUnused
	panelSummary
	panelCount
)

type checkModel struct {
	metricsPath string
	eventsPath  string

	activePanel int
	offsets     [panelCount]int
	width       int
	height      int

	report  *models.EventCheckReport
	loading bool
	err     error
}

// reportLoadedMsg carries a finished check back to the model.
type reportLoadedMsg struct {
	report *models.EventCheckReport
	err    error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	unusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newCheckModel(metricsPath, eventsPath string) checkModel {
	return checkModel{
		metricsPath: metricsPath,
		eventsPath:  eventsPath,
		activePanel: panelMissing,
		loading:     true,
	}
}

func (m checkModel) Init() tea.Cmd {
	return m.load
}

func (m checkModel) load() tea.Msg {
	if Checker == nil {
		return reportLoadedMsg{err: fmt.Errorf("event checker not initialized")}
	}
	report, err := Checker.Check(m.metricsPath, m.eventsPath)
	return reportLoadedMsg{report: report, err: err}
}

func (m checkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
		case "down", "j":
			if m.offsets[m.activePanel] < len(m.panelItems(m.activePanel))-1 {
				m.offsets[m.activePanel]++
			}
		case "up", "k":
			if m.offsets[m.activePanel] > 0 {
				m.offsets[m.activePanel]--
			}
		case "r":
			m.loading = true
			return m, m.load
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case reportLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.report = msg.report
			m.offsets = [panelCount]int{}
		}
		return m, nil
	}

	return m, nil
}

func (m checkModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Event Check ")
	help := helpStyle.Render("tab: switch panel | j/k: scroll | r: re-run | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Checking events...\n\n%s", title, help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	availableWidth := m.width - 2
	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / panelCount
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.applyPanelStyle(panelMissing, m.renderListPanel(panelMissing), colWidth-4),
			m.applyPanelStyle(panelUnused, m.renderListPanel(panelUnused), colWidth-4),
			m.applyPanelStyle(panelSummary, m.renderSummaryPanel(), colWidth-4))
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.applyPanelStyle(panelMissing, m.renderListPanel(panelMissing), panelWidth),
			m.applyPanelStyle(panelUnused, m.renderListPanel(panelUnused), panelWidth),
			m.applyPanelStyle(panelSummary, m.renderSummaryPanel(), panelWidth))
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m checkModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m checkModel) panelItems(panel int) []string {
	if m.report == nil {
		return nil
	}
	switch panel {
	case panelMissing:
		return m.report.MissingEvents
	case panelUnused:
		return m.report.UnusedEvents
	default:
		return nil
	}
}

// visibleRows is how many list entries fit in a panel.
func (m checkModel) visibleRows() int {
	rows := m.height/panelCount - 6
	if m.width-2 > 120 {
		rows = m.height - 12
	}
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (m checkModel) renderListPanel(panel int) string {
	header, style, empty := "Missing events", missingStyle, "  All used events are declared."
	if panel == panelUnused {
		header, style, empty = "Unused events", unusedStyle, "  Every declared event is used."
	}

	items := m.panelItems(panel)
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", header, len(items))))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(okStyle.Render(empty))
		return b.String()
	}

	start := m.offsets[panel]
	end := start + m.visibleRows()
	if end > len(items) {
		end = len(items)
	}
	for _, item := range items[start:end] {
		b.WriteString(style.Render("  " + item))
		b.WriteString("\n")
	}
	if end < len(items) {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  ... %d more", len(items)-end)))
	}
	return b.String()
}

func (m checkModel) renderSummaryPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Summary"))
	b.WriteString("\n")

	r := m.report
	if r == nil {
		return b.String()
	}
	lines := []struct {
		label string
		value string
	}{
		{"Metrics", r.MetricsFile},
		{"Events", r.EventsFile},
		{"Used", fmt.Sprint(r.UsedCount)},
		{"Declared", fmt.Sprint(r.DeclaredCount)},
		{"Missing", fmt.Sprint(len(r.MissingEvents))},
		{"Unused", fmt.Sprint(len(r.UnusedEvents))},
	}
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", l.label, l.value))
	}
	return b.String()
}
