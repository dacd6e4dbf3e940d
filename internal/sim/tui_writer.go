package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"ddosim/internal/analysis"
	"ddosim/internal/mission"
	"ddosim/internal/model"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// snapshotMsg carries a new metrics snapshot.
type snapshotMsg struct{ model.MetricsSnapshot }

// stateMsg carries the operator state after a tick or control change.
type stateMsg struct{ State }

// eventMsg carries a simulation log line.
type eventMsg struct{ model.LogEntry }

// setControlsMsg registers operator callbacks.
type setControlsMsg struct{ Controls }

// Controls are the operator actions the TUI can invoke. All callbacks
// are safe to call from the bubbletea goroutine.
type Controls struct {
	SelectVector     func(model.AttackVector) error
	ToggleMitigation func(model.Mitigation) (bool, error)
	StartMission     func(id string) error
	AbortMission     func()
	Reset            func()
	RunAnalysis      func() error
}

const (
	sparkWidth   = 40
	maxLogLines  = 200
	logViewShare = 0.3
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	attackStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// TUIWriter renders the simulation using a bubbletea dashboard and feeds
// operator input back through the registered Controls.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter() *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// SetControls registers the operator callbacks.
func (w *TUIWriter) SetControls(c Controls) {
	w.program.Send(setControlsMsg{c})
}

// Write implements SnapshotWriter.
func (w *TUIWriter) Write(snap model.MetricsSnapshot) error {
	w.program.Send(snapshotMsg{snap})
	return nil
}

// WriteBatch outputs multiple snapshots.
func (w *TUIWriter) WriteBatch(snaps []model.MetricsSnapshot) error {
	for _, s := range snaps {
		_ = w.Write(s)
	}
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e model.LogEntry) error {
	w.program.Send(eventMsg{e})
	return nil
}

// WriteState implements StateWriter.
func (w *TUIWriter) WriteState(s State) error {
	w.program.Send(stateMsg{s})
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

// mitigationKeys maps toggle keys to mitigations.
var mitigationKeys = map[string]model.Mitigation{
	"r": model.MitigationRateLimiting,
	"c": model.MitigationCDN,
	"w": model.MitigationWAF,
	"a": model.MitigationCaptcha,
	"l": model.MitigationLoadBalancing,
	"i": model.MitigationIPReputation,
}

// vectorKeys maps number keys to attack vectors.
var vectorKeys = map[string]model.AttackVector{
	"0": model.VectorNone,
	"1": model.VectorVolumetric,
	"2": model.VectorApplication,
	"3": model.VectorResource,
	"4": model.VectorProtocol,
}

type tuiModel struct {
	controls       Controls
	state          State
	history        []model.MetricsSnapshot
	logs           []string
	vp             viewport.Model
	mitTable       table.Model
	missionInput   textinput.Model
	missionDialog  bool
	help           bool
	autoscroll     bool
	width, height  int
	lastAssessment *analysis.Assessment
}

func newTUIModel() tuiModel {
	cols := []table.Column{
		{Title: "Key", Width: 3},
		{Title: "Mitigation", Width: 16},
		{Title: "State", Width: 5},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(len(model.Mitigations)+1))
	vp := viewport.New(0, 0)
	return tuiModel{
		mitTable:   t,
		vp:         vp,
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.layoutViewport()
		m.refreshViewport()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case setControlsMsg:
		m.controls = msg.Controls
	case snapshotMsg:
		m.history = append(m.history, msg.MetricsSnapshot)
		if len(m.history) > sparkWidth {
			m.history = m.history[len(m.history)-sparkWidth:]
		}
	case stateMsg:
		m.state = msg.State
		if msg.State.Assessment != nil {
			m.lastAssessment = msg.State.Assessment
		}
		m.refreshMitigationTable()
	case eventMsg:
		m.appendLog(renderLogLine(msg.LogEntry))
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.missionDialog {
		switch msg.Type {
		case tea.KeyEnter:
			id := strings.TrimSpace(m.missionInput.Value())
			if m.controls.StartMission != nil {
				if err := m.controls.StartMission(id); err != nil {
					m.appendLog(errStyle.Render(fmt.Sprintf("cannot start mission: %v", err)))
				}
			}
			m.missionDialog = false
			m.layoutViewport()
		case tea.KeyEsc:
			m.missionDialog = false
			m.layoutViewport()
		default:
			var cmd tea.Cmd
			m.missionInput, cmd = m.missionInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if m.help {
		switch msg.String() {
		case "?", "h", "esc":
			m.help = false
		}
		return m, nil
	}

	key := msg.String()
	if v, ok := vectorKeys[key]; ok {
		if m.controls.SelectVector != nil {
			if err := m.controls.SelectVector(v); err != nil {
				m.appendLog(errStyle.Render(err.Error()))
			}
		}
		return m, nil
	}
	if mit, ok := mitigationKeys[key]; ok {
		if m.controls.ToggleMitigation != nil {
			if _, err := m.controls.ToggleMitigation(mit); err != nil {
				m.appendLog(errStyle.Render(err.Error()))
			}
		}
		return m, nil
	}
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "m":
		m.missionInput = textinput.New()
		m.missionInput.Placeholder = "challenge id"
		if cat := mission.Catalog(); len(cat) > 0 {
			m.missionInput.SetValue(cat[0].ID)
		}
		m.missionInput.CursorEnd()
		m.missionInput.Focus()
		m.missionDialog = true
		m.layoutViewport()
	case "x":
		if m.controls.AbortMission != nil {
			m.controls.AbortMission()
		}
	case "R":
		if m.controls.Reset != nil {
			m.controls.Reset()
		}
	case "A":
		if m.controls.RunAnalysis != nil {
			if err := m.controls.RunAnalysis(); err != nil {
				m.appendLog(warnStyle.Render(err.Error()))
			}
		}
	case "s":
		m.autoscroll = !m.autoscroll
		if m.autoscroll {
			m.vp.GotoBottom()
		}
	case "h", "?":
		m.help = true
	case "j", "down":
		if !m.autoscroll {
			m.vp.LineDown(1)
		}
	case "k", "up":
		if !m.autoscroll {
			m.vp.LineUp(1)
		}
	}
	return m, nil
}

func (m *tuiModel) appendLog(line string) {
	m.logs = append(m.logs, line)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
	m.refreshViewport()
}

func (m *tuiModel) layoutViewport() {
	h := int(float64(m.height) * logViewShare)
	if h < 3 {
		h = 3
	}
	m.vp.Height = h
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.vp.Width > 0 {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshMitigationTable() {
	keyFor := map[model.Mitigation]string{}
	for k, v := range mitigationKeys {
		keyFor[v] = k
	}
	var rows []table.Row
	for _, mit := range model.Mitigations {
		state := "off"
		if m.state.Mitigations[mit] {
			state = "ON"
		}
		rows = append(rows, table.Row{keyFor[mit], string(mit), state})
	}
	m.mitTable.SetRows(rows)
}

func renderLogLine(e model.LogEntry) string {
	ts := dimStyle.Render(e.Time.Format("15:04:05"))
	msg := e.Message
	switch e.Level {
	case model.LogError:
		msg = errStyle.Render(msg)
	case model.LogWarn:
		msg = warnStyle.Render(msg)
	case model.LogSuccess:
		msg = successStyle.Render(msg)
	}
	return fmt.Sprintf("%s %s", ts, msg)
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := dimStyle.Render(strings.Repeat("─", max(1, m.width)))
	sections := []string{
		m.renderHeader(),
		divider,
		m.renderCharts(),
		divider,
		m.renderAssessment(),
		divider,
		"Log:",
		m.vp.View(),
	}
	if m.missionDialog {
		sections = append(sections, divider, m.renderMissionDialog())
	}
	sections = append(sections, divider, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	vec := okStyle.Render("none")
	if m.state.Vector != model.VectorNone {
		vec = attackStyle.Render(fmt.Sprintf("%s (ramp %.0f%%)", m.state.Vector, m.state.RampFactor*100))
	}
	left := fmt.Sprintf("%s  attack=%s  %s", titleStyle.Render("ddosim"), vec, m.renderMission())
	right := m.mitTable.View()
	return lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(max(20, m.width/2)).Render(left), right)
}

func (m tuiModel) renderMission() string {
	mv := m.state.Mission
	switch mv.Status {
	case mission.StatusActive:
		return warnStyle.Render(fmt.Sprintf("mission %q %ds left", mv.Name, mv.Remaining))
	case mission.StatusVictory:
		return successStyle.Render(fmt.Sprintf("mission %q VICTORY", mv.Name))
	case mission.StatusFailed:
		return errStyle.Render(fmt.Sprintf("mission %q FAILED", mv.Name))
	default:
		return dimStyle.Render("no mission")
	}
}

func (m tuiModel) renderCharts() string {
	if len(m.history) == 0 {
		return "waiting for first tick..."
	}
	latest := m.history[len(m.history)-1]
	rows := []struct {
		name   string
		value  string
		values []float64
		lo, hi float64
	}{
		{"rps", fmt.Sprintf("%7.0f", latest.RPS), pick(m.history, func(s model.MetricsSnapshot) float64 { return s.RPS }), 0, 0},
		{"cpu%", fmt.Sprintf("%7.1f", latest.CPU), pick(m.history, func(s model.MetricsSnapshot) float64 { return s.CPU }), 0, 100},
		{"mem%", fmt.Sprintf("%7.1f", latest.Memory), pick(m.history, func(s model.MetricsSnapshot) float64 { return s.Memory }), 0, 100},
		{"resp ms", fmt.Sprintf("%7.0f", latest.ResponseMS), pick(m.history, func(s model.MetricsSnapshot) float64 { return s.ResponseMS }), 0, 0},
		{"err%", fmt.Sprintf("%7.1f", latest.ErrorRate), pick(m.history, func(s model.MetricsSnapshot) float64 { return s.ErrorRate }), 0, 100},
		{"bw%", fmt.Sprintf("%7.1f", latest.Bandwidth), pick(m.history, func(s model.MetricsSnapshot) float64 { return s.Bandwidth }), 0, 100},
		{"div%", fmt.Sprintf("%7.1f", latest.IPDiversity), pick(m.history, func(s model.MetricsSnapshot) float64 { return s.IPDiversity }), 0, 100},
		{"eff%", fmt.Sprintf("%7.1f", latest.Efficiency), pick(m.history, func(s model.MetricsSnapshot) float64 { return s.Efficiency }), 0, 100},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-8s %s %s\n", r.name, r.value, spark(r.values, r.lo, r.hi, sparkWidth)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m tuiModel) renderAssessment() string {
	a := m.lastAssessment
	if a == nil {
		return dimStyle.Render("Analysis: none yet (A to request, needs 5+ snapshots)")
	}
	style := warnStyle
	switch a.RiskScore {
	case analysis.RiskLow:
		style = okStyle
	case analysis.RiskHigh:
		style = errStyle
	}
	steps := strings.Join(a.MitigationSteps, "; ")
	return fmt.Sprintf("Analysis: %s risk (conf %.2f) — %s\n  steps: %s",
		style.Render(string(a.RiskScore)), a.Confidence, a.ThreatDescription, steps)
}

func (m tuiModel) renderMissionDialog() string {
	var ids []string
	for _, c := range mission.Catalog() {
		ids = append(ids, c.ID)
	}
	return fmt.Sprintf("Start mission (%s) - Enter to start, Esc to cancel: %s",
		strings.Join(ids, ", "), m.missionInput.View())
}

func (m tuiModel) renderFooter() string {
	return dimStyle.Render("0-4 attack | r/c/w/a/l/i mitigations | m mission | x abort | R reset | A analyze | s scroll | h help | q quit")
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" 0  stand down (no attack)",
		" 1  volumetric flood",
		" 2  application-layer attack",
		" 3  resource exhaustion",
		" 4  protocol attack",
		" r/c/w/a/l/i  toggle rate limiting, CDN, WAF, CAPTCHA, load balancing, IP reputation",
		" m  start mission (choose challenge id)",
		" x  abort mission",
		" R  full reset",
		" A  request external risk analysis",
		" s  toggle log auto-scroll (j/k scroll when off)",
		" q  quit",
		"",
		"h or ? closes this help view",
	}
	return strings.Join(lines, "\n")
}

// spark renders values as a fixed-width sparkline. A zero hi bound scales
// to the observed maximum.
func spark(values []float64, lo, hi float64, width int) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if hi <= lo {
		hi = lo
		for _, v := range values {
			if v > hi {
				hi = v
			}
		}
		if hi == lo {
			hi = lo + 1
		}
	}
	var b strings.Builder
	for _, v := range values {
		frac := (v - lo) / (hi - lo)
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		idx := int(frac * float64(len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func pick(history []model.MetricsSnapshot, f func(model.MetricsSnapshot) float64) []float64 {
	out := make([]float64, len(history))
	for i, s := range history {
		out[i] = f(s)
	}
	return out
}
