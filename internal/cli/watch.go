package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lens/pkg/catalog"
	"github.com/matzehuels/lens/pkg/layout/force"
	"github.com/matzehuels/lens/pkg/lineage"
	"github.com/matzehuels/lens/pkg/pipeline"
)

const (
	frameInterval = 33 * time.Millisecond
	stepsPerFrame = 2

	// nudge is how far one arrow press drags the selected node, in layout pixels.
	nudge = 24.0

	// Terminal cells are roughly twice as tall as wide; one cell covers
	// cellWidth x cellHeight layout pixels.
	cellWidth  = 10.0
	cellHeight = 20.0

	chromeLines = 5
)

// =============================================================================
// Command
// =============================================================================

// watchCommand animates the force layout in the terminal.
func (c *CLI) watchCommand() *cobra.Command {
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "watch [asset-id]",
		Short: "Watch the force layout settle and drag nodes around",
		Long: `Animate an asset's lineage layout in the terminal.

The simulation ticks until it settles. Select a node with tab and drag it
with the arrow keys; the rest of the graph reacts until the node is
released with space. Press n to switch to the next catalog asset.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeAssetIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Without a source the first catalog asset is shown.
			if len(args) > 0 || c.graphFile != "" {
				if err := c.sourceOptions(args, &opts); err != nil {
					return err
				}
			}
			return c.runWatch(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Focal, "focal", "", "centre the lineage on this node")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "simulation seed")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	m, err := newWatchModel(ctx, runner, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// =============================================================================
// Keys
// =============================================================================

type watchKeys struct {
	Next    key.Binding
	Prev    key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Release key.Binding
	Asset   key.Binding
	Restart key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var defaultWatchKeys = watchKeys{
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next node")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev node")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "drag up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "drag down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "drag left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "drag right")),
	Release: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "release")),
	Asset:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next asset")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k watchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Up, k.Release, k.Asset, k.Help, k.Quit}
}

func (k watchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Release},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Asset, k.Restart, k.Help, k.Quit},
	}
}

// =============================================================================
// Model
// =============================================================================

// tickMsg carries the generation it was scheduled for so ticks from a
// replaced run are dropped.
type tickMsg struct{ gen uint64 }

func tickCmd(gen uint64) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

type watchModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	opts   pipeline.Options

	assets   []catalog.Asset
	assetIdx int

	graph *lineage.Graph
	focal string
	sim   *force.Simulation
	ids   []string
	ticks int

	selected int
	dragging bool
	ticking  bool

	cols, rows int
	keys       watchKeys
	help       help.Model
	status     string
}

func newWatchModel(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*watchModel, error) {
	m := &watchModel{
		ctx:    ctx,
		runner: runner,
		opts:   opts,
		sim:    force.New(force.Options{Seed: opts.Seed}),
		cols:   80,
		rows:   24 + chromeLines,
		keys:   defaultWatchKeys,
		help:   help.New(),
	}
	if opts.GraphFile == "" && runner.Catalog != nil {
		assets, err := runner.Catalog.List(ctx)
		if err != nil {
			return nil, err
		}
		m.assets = assets
		if opts.AssetID == "" && len(assets) > 0 {
			m.opts.AssetID = assets[0].ID
		}
		for i, a := range assets {
			if a.ID == m.opts.AssetID {
				m.assetIdx = i
			}
		}
	}
	if err := m.load(m.opts); err != nil {
		return nil, err
	}
	return m, nil
}

// load replaces the graph and restarts the simulation under a new generation.
func (m *watchModel) load(opts pipeline.Options) error {
	g, focal, err := m.runner.Load(m.ctx, opts)
	if err != nil {
		return err
	}
	m.graph, m.focal, m.opts = g, focal, opts
	w, h := m.viewport()
	m.sim.Initialize(g, w, h)
	m.ids = m.sim.IDs()
	m.ticks = 0
	m.selected = 0
	m.dragging = false
	for i, id := range m.ids {
		if id == focal {
			m.selected = i
		}
	}
	return nil
}

func (m *watchModel) gridRows() int { return max(m.rows-chromeLines, 5) }

func (m *watchModel) viewport() (float64, float64) {
	return float64(m.cols) * cellWidth, float64(m.gridRows()) * cellHeight
}

func (m *watchModel) Init() tea.Cmd {
	m.ticking = true
	return tickCmd(m.sim.Generation())
}

// ensureTicking restarts the tick loop after a perturbation of a settled run.
func (m *watchModel) ensureTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tickCmd(m.sim.Generation())
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, m.onTick(msg)

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.sim.Resize(m.viewport())
		return m, m.ensureTicking()

	case tea.KeyMsg:
		return m.onKey(msg)
	}
	return m, nil
}

func (m *watchModel) onTick(msg tickMsg) tea.Cmd {
	if msg.gen != m.sim.Generation() {
		// A reload replaced the run this tick belonged to; the new run
		// has its own tick loop.
		return nil
	}
	for range stepsPerFrame {
		if _, ok := m.sim.Advance(msg.gen); !ok {
			return nil
		}
		m.ticks++
		if m.sim.State() == force.Settled {
			break
		}
	}
	if m.sim.State() == force.Settled {
		m.ticking = false
		return nil
	}
	return tickCmd(msg.gen)
}

func (m *watchModel) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Next):
		m.selectNode(1)
	case key.Matches(msg, m.keys.Prev):
		m.selectNode(-1)
	case key.Matches(msg, m.keys.Up):
		return m, m.drag(0, -nudge)
	case key.Matches(msg, m.keys.Down):
		return m, m.drag(0, nudge)
	case key.Matches(msg, m.keys.Left):
		return m, m.drag(-nudge, 0)
	case key.Matches(msg, m.keys.Right):
		return m, m.drag(nudge, 0)
	case key.Matches(msg, m.keys.Release):
		if m.dragging && m.sim.EndDrag(m.selectedID()) {
			m.dragging = false
			m.status = "released " + m.selectedID()
		}
	case key.Matches(msg, m.keys.Restart):
		if err := m.load(m.opts); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.ticking = true
		return m, tickCmd(m.sim.Generation())
	case key.Matches(msg, m.keys.Asset):
		return m, m.nextAsset()
	}
	return m, nil
}

func (m *watchModel) selectedID() string {
	if len(m.ids) == 0 {
		return ""
	}
	return m.ids[m.selected]
}

func (m *watchModel) selectNode(delta int) {
	if len(m.ids) == 0 || m.dragging {
		return
	}
	m.selected = (m.selected + delta + len(m.ids)) % len(m.ids)
}

// drag moves the selected node by (dx, dy), pinning it on the first move.
func (m *watchModel) drag(dx, dy float64) tea.Cmd {
	id := m.selectedID()
	p, ok := m.sim.Position(id)
	if !ok {
		return nil
	}
	w, h := m.viewport()
	p = force.Point{X: clamp(p.X+dx, 0, w), Y: clamp(p.Y+dy, 0, h)}
	if !m.dragging {
		if !m.sim.BeginDrag(id, p) {
			return nil
		}
		m.dragging = true
		m.status = "dragging " + id
	} else {
		m.sim.UpdateDrag(id, p)
	}
	return m.ensureTicking()
}

// nextAsset loads the following catalog asset. Ticks still in flight for
// the previous asset are dropped by generation.
func (m *watchModel) nextAsset() tea.Cmd {
	if len(m.assets) < 2 {
		m.status = "no other assets"
		return nil
	}
	idx := (m.assetIdx + 1) % len(m.assets)
	opts := m.opts
	opts.AssetID, opts.Focal = m.assets[idx].ID, ""
	if err := m.load(opts); err != nil {
		m.status = err.Error()
		return nil
	}
	m.assetIdx = idx
	m.status = "loaded " + m.assets[idx].FriendlyName
	m.ticking = true
	return tickCmd(m.sim.Generation())
}

// =============================================================================
// View
// =============================================================================

var (
	watchFocalStyle    = lipgloss.NewStyle().Foreground(colorSky).Bold(true)
	watchSelectedStyle = lipgloss.NewStyle().Foreground(colorWhite).Background(colorSky)
	watchPinnedStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	watchEdgeStyle     = lipgloss.NewStyle().Foreground(colorDim)
	watchLabelStyle    = lipgloss.NewStyle().Foreground(colorGray)
)

type cell struct {
	r     rune
	style *lipgloss.Style
}

func (m *watchModel) View() string {
	var b strings.Builder

	title := m.opts.AssetID
	if m.opts.GraphFile != "" {
		title = m.opts.GraphFile
	}
	if len(m.assets) > 0 {
		title = m.assets[m.assetIdx].FriendlyName
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · α %.3f · %d ticks · gen %d",
		m.sim.State(), m.sim.Alpha(), m.ticks, m.sim.Generation())))
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	if n, ok := m.graph.Node(m.selectedID()); ok {
		b.WriteString(watchLabelStyle.Render(fmt.Sprintf("%s %s (%s)", iconArrow, n.Label(), n.Kind)))
	}
	if m.status != "" {
		b.WriteString(StyleDim.Render("  " + m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderGrid rasterises edges and nodes onto the terminal grid.
func (m *watchModel) renderGrid() string {
	rows, cols := m.gridRows(), max(m.cols, 10)
	grid := make([][]cell, rows)
	for i := range grid {
		grid[i] = make([]cell, cols)
		for j := range grid[i] {
			grid[i][j] = cell{r: ' '}
		}
	}
	toCell := func(p force.Point) (int, int) {
		return int(p.Y / cellHeight), int(p.X / cellWidth)
	}
	set := func(r, c int, ch rune, st *lipgloss.Style) {
		if r >= 0 && r < rows && c >= 0 && c < cols {
			grid[r][c] = cell{r: ch, style: st}
		}
	}

	pos := m.sim.Positions()
	for _, e := range m.graph.ResolvedEdges() {
		r0, c0 := toCell(pos[e.Source])
		r1, c1 := toCell(pos[e.Target])
		steps := max(abs(r1-r0), abs(c1-c0))
		for s := 1; s < steps; s++ {
			t := float64(s) / float64(steps)
			set(r0+int(math.Round(t*float64(r1-r0))), c0+int(math.Round(t*float64(c1-c0))), '·', &watchEdgeStyle)
		}
	}

	for _, id := range m.ids {
		r, c := toCell(pos[id])
		n, _ := m.graph.Node(id)
		for i, ch := range []rune(truncate(n.Label(), 16)) {
			set(r, c+2+i, ch, &watchLabelStyle)
		}
	}

	// Glyphs go over labels, and the focal node over everything.
	order := make([]string, 0, len(m.ids))
	for _, id := range m.ids {
		if id != m.focal {
			order = append(order, id)
		}
	}
	order = append(order, m.focal)

	selected := m.selectedID()
	for _, id := range order {
		r, c := toCell(pos[id])
		n, _ := m.graph.Node(id)
		glyph, st := '○', &watchLabelStyle
		switch {
		case id == m.focal:
			glyph, st = '◉', &watchFocalStyle
		case n.Kind == lineage.KindDashboard:
			glyph = '◆'
		case n.Kind == lineage.KindPipeline:
			glyph = '▸'
		}
		if m.sim.Pinned(id) {
			st = &watchPinnedStyle
		}
		if id == selected {
			st = &watchSelectedStyle
		}
		set(r, c, glyph, st)
	}

	var b strings.Builder
	for i, row := range grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			if c.style == nil {
				b.WriteRune(c.r)
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func clamp(v, lo, hi float64) float64 { return math.Min(math.Max(v, lo), hi) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
