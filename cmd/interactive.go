package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adamgarcia4/goLearning/glomers/gossip"
	"github.com/adamgarcia4/goLearning/glomers/logger"
	"github.com/adamgarcia4/goLearning/glomers/node"
	"github.com/adamgarcia4/goLearning/glomers/protocol"
	"github.com/adamgarcia4/goLearning/glomers/telemetry"
)

var (
	simRole     string
	simNodes    int
	metricsAddr string
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Simulate a cluster in a terminal UI",
	Long: `Start an in-process cluster and drive it from a terminal UI. Envelopes
between nodes sit in one queue until you step or drain it.

Keyboard shortcuts:
  Tab/Shift+Tab - Select node
  0-9           - Type a value for the next B or A
  B             - Broadcast a value to the selected node
  A             - Add a delta on the selected node
  R             - Read the selected node
  T             - Install the next topology shape
  S             - Deliver one queued envelope
  D             - Drain the queue
  Enter         - Repeat last command
  ↑/↓/j/k       - Scroll logs
  C             - Clear logs
  Q             - Quit

Examples:
  glomers interactive
  glomers interactive --role g-counter --nodes 3 --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)

	interactiveCmd.Flags().StringVarP(&simRole, "role", "r", string(node.RoleBroadcastTopology), "Role of every node ("+strings.Join(node.RoleNames(), ", ")+")")
	interactiveCmd.Flags().IntVarP(&simNodes, "nodes", "n", 5, "Number of nodes")
	interactiveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve the cluster's metrics at this address under /metrics")
}

const logLines = 15

type model struct {
	manager      *node.Manager
	nodes        []node.Status
	selected     int
	shape        int // index into gossip.Shapes of the installed topology, -1 for none
	pending      int
	delivered    int
	nextValue    uint64
	err          error
	log          *zap.SugaredLogger
	logBuffer    *logger.LogBuffer
	logScroll    int // for scrolling logs
	width        int
	height       int
	lastCommand  string // Track last command for repeat (Enter key)
	numericInput string // Buffer for multi-digit values
}

func initialModel(manager *node.Manager) model {
	m := model{
		manager:   manager,
		shape:     -1,
		nextValue: 1,
		log:       logger.Named("sim"),
		logBuffer: logger.GetGlobalLogBuffer(),
	}
	m.refresh()
	return m
}

func (m *model) refresh() {
	m.nodes = m.manager.Nodes()
	m.pending = m.manager.Pending()
	m.delivered = m.manager.Delivered()
}

func (m model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

type tickMsg struct{}

// takeValue consumes the typed number, or falls back.
func (m *model) takeValue(fallback uint64) (uint64, error) {
	if m.numericInput == "" {
		return fallback, nil
	}
	input := m.numericInput
	m.numericInput = ""
	v, err := strconv.ParseUint(input, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	return v, nil
}

func (m *model) target() string {
	if len(m.nodes) == 0 {
		return ""
	}
	return m.nodes[m.selected].ID
}

// run executes one simulator command and remembers it for Enter.
func (m *model) run(command string) {
	m.err = nil
	switch command {
	case "broadcast":
		v, err := m.takeValue(m.nextValue)
		if err != nil {
			m.err = err
			return
		}
		if v >= m.nextValue {
			m.nextValue = v + 1
		}
		m.err = m.manager.Broadcast(m.target(), v)
		m.log.Infof("client broadcast %d to %s", v, m.target())

	case "add":
		d, err := m.takeValue(1)
		if err != nil {
			m.err = err
			return
		}
		m.err = m.manager.Add(m.target(), d)
		m.log.Infof("client add %d on %s", d, m.target())

	case "read":
		m.err = m.manager.Read(m.target())

	case "topology":
		m.shape = (m.shape + 1) % len(gossip.Shapes)
		shape := gossip.Shapes[m.shape]
		m.err = m.manager.SetTopology(shape.Build(m.manager.IDs()))
		m.log.Infof("installing %s topology", shape.Name)

	case "step":
		env, ok, err := m.manager.Step()
		switch {
		case err != nil:
			m.err = err
		case !ok:
			m.log.Infof("queue is empty")
		default:
			m.log.Infof("delivered %s", describe(env))
		}

	case "drain":
		before := len(m.manager.Replies())
		n, err := m.manager.Drain(0)
		m.err = err
		m.log.Infof("drained %d envelopes", n)
		for _, r := range m.manager.Replies()[before:] {
			if r.Body.Payload.Type() == protocol.TypeReadOk {
				m.log.Infof("reply %s", describe(r))
			}
		}

	default:
		return
	}
	m.lastCommand = command
	m.refresh()
}

func describe(env protocol.Envelope) string {
	s := fmt.Sprintf("%s %s -> %s", env.Body.Payload.Type(), env.Src, env.Dest)
	switch p := env.Body.Payload.(type) {
	case protocol.Broadcast:
		s += fmt.Sprintf(" message=%d", p.Message)
	case protocol.Add:
		s += fmt.Sprintf(" delta=%d", p.Delta)
	case protocol.ReadOk:
		if p.Value != nil {
			s += fmt.Sprintf(" value=%d", *p.Value)
		} else {
			s += fmt.Sprintf(" messages=%v", p.Messages)
		}
	}
	return s
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "tab":
			if len(m.nodes) > 0 {
				m.selected = (m.selected + 1) % len(m.nodes)
			}
		case "shift+tab":
			if len(m.nodes) > 0 {
				m.selected = (m.selected + len(m.nodes) - 1) % len(m.nodes)
			}

		case "b", "B":
			m.run("broadcast")
		case "a", "A":
			m.run("add")
		case "r", "R":
			m.run("read")
		case "t", "T":
			m.run("topology")
		case "s", "S":
			m.run("step")
		case "d", "D":
			m.run("drain")

		case "enter":
			m.run(m.lastCommand)

		case "c", "C":
			m.logBuffer.Clear()
			m.logScroll = 0

		case "esc":
			m.numericInput = ""
			m.err = nil

		case "up", "k":
			// Scroll logs up (show older logs)
			maxScroll := len(m.logBuffer.GetAll()) - logLines
			if m.logScroll < maxScroll {
				m.logScroll++
			}
		case "down", "j":
			// Scroll logs down (show newer logs)
			if m.logScroll > 0 {
				m.logScroll--
			}

		default:
			if len(key) == 1 && key >= "0" && key <= "9" {
				m.numericInput += key
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()
	}

	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(1, 2)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)
	instructionsStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				PaddingTop(1)
)

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("Glomers Cluster Simulator (%s)", m.manager.Role())))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	topology := "none installed"
	if m.shape >= 0 {
		topology = gossip.Shapes[m.shape].Name
	}
	s.WriteString(fmt.Sprintf("Topology: %s | Queued: %d | Delivered: %d", topology, m.pending, m.delivered))
	if m.numericInput != "" {
		s.WriteString(fmt.Sprintf(" | Value: %s", m.numericInput))
	}
	s.WriteString("\n\n")

	for i, n := range m.nodes {
		line := fmt.Sprintf("[%d] %-4s neighbors=%-14s %s", i+1, n.ID, "["+strings.Join(n.Neighbors, ",")+"]", nodeState(n))
		if i == m.selected {
			s.WriteString(selectedStyle.Render("> " + line))
		} else {
			s.WriteString("  " + line)
		}
		s.WriteString("\n")
	}
	s.WriteString("\n")

	boxWidth := 100
	if m.width > 0 {
		boxWidth = m.width - 4 // Leave some margin
	}
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Height(logLines + 1).
		Width(boxWidth)
	s.WriteString(logStyle.Render("Logs:\n" + strings.Join(renderLogs(m.logBuffer.GetAll(), m.logScroll), "\n")))
	s.WriteString("\n")

	help := "Tab select | 0-9 value | B broadcast | A add | R read | T topology | S step | D drain"
	if m.lastCommand != "" {
		help += fmt.Sprintf(" | Enter repeat (%s)", m.lastCommand)
	}
	help += " | ↑/↓/j/k scroll | C clear logs | Q quit"
	s.WriteString(instructionsStyle.Render(help))

	return s.String()
}

func nodeState(n node.Status) string {
	var parts []string
	if n.Capabilities.Has(node.CapBroadcast) {
		seen := n.Seen
		suffix := ""
		if len(seen) > 8 {
			seen, suffix = seen[len(seen)-8:], ",…"
		}
		parts = append(parts, fmt.Sprintf("seen(%d)=%v%s", len(n.Seen), seen, suffix))
	}
	if n.Capabilities.Has(node.CapCounter) {
		parts = append(parts, fmt.Sprintf("counter=%d", n.Counter))
	}
	if n.Capabilities.Has(node.CapGenerate) {
		parts = append(parts, fmt.Sprintf("ids=%d", n.Generated))
	}
	parts = append(parts, fmt.Sprintf("next_msg_id=%d", n.NextMsgID))
	return strings.Join(parts, " ")
}

// renderLogs shows up to logLines entries, newest first, scrolled back by
// scroll. Line 0 is the newest entry in the buffer.
func renderLogs(entries []logger.LogEntry, scroll int) []string {
	if len(entries) == 0 {
		return []string{"     | (no logs yet)"}
	}
	end := len(entries) - scroll
	if end < 1 {
		end = 1
	}
	start := end - logLines
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, end-start)
	for i := end - 1; i >= start; i-- {
		lines = append(lines, fmt.Sprintf("%4d | %s", len(entries)-1-i, logger.FormatLogEntry(entries[i])))
	}
	return lines
}

func serveMetrics(addr string, manager *node.Manager) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler(manager.Gatherer()))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server: %v", err)
		}
	}()
	return srv
}

func runInteractive(cmd *cobra.Command, args []string) error {
	role, err := node.ParseRole(simRole)
	if err != nil {
		return err
	}

	// No stdout logging: the UI owns the terminal
	logger.Init("glomers", nil)
	if err := logger.AttachBuffer(logger.GetGlobalLogBuffer()); err != nil {
		return err
	}

	manager, err := node.NewManager(role, simNodes)
	if err != nil {
		return fmt.Errorf("failed to start cluster: %w", err)
	}

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr, manager)
		logger.Infof("serving metrics on %s/metrics", metricsAddr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	p := tea.NewProgram(initialModel(manager))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running interactive mode: %w", err)
	}
	return nil
}
