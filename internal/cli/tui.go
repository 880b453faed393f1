package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/view"
)

// Terminal cells are roughly twice as tall as wide, so the canvas maps
// world pixels to cells anisotropically to keep the tree's proportions.
const (
	cellWidthPx  = 12.0
	cellHeightPx = 24.0
	panStepPx    = 48.0
	footerRows   = 2
)

// Canvas styles
var (
	styleNode         = lipgloss.NewStyle().Foreground(colorCyan)
	styleNodeSelected = StyleSuccess.Bold(true)
	styleLabel        = lipgloss.NewStyle().Foreground(colorGray)
)

// viewCommand creates the view command running the terminal tree browser.
func (c *CLI) viewCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the family tree in the terminal",
		Long: `Browse the family tree interactively: pan with the arrow keys,
zoom with + and -, press f to fit the whole tree, and click a node (or
press tab) to select a member and see their details.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			popts := c.treeOptions()
			reload := func() (*pipeline.Result, error) {
				snap, err := st.Snapshot(ctx)
				if err != nil {
					return nil, err
				}
				return runner.Rebuild(ctx, snap, popts)
			}

			result, err := reload()
			if err != nil {
				return err
			}

			m := newTreeModel(result, reload, popts.Radius)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the pipeline cache")

	return cmd
}

// =============================================================================
// treeModel - Interactive tree browser
// =============================================================================

// treeModel is the bubbletea model for the tree browser. The transform maps
// world coordinates to canvas pixels; cells are derived from pixels when
// drawing and when resolving clicks.
type treeModel struct {
	result *pipeline.Result
	reload func() (*pipeline.Result, error)

	t        view.Transform
	radius   float64
	selected string
	order    []string // placed members in ID order, for tab cycling
	err      error    // last reload error, shown in the footer

	width  int // terminal cells
	height int
	sized  bool
}

// newTreeModel creates a tree browser over an initial pipeline result.
func newTreeModel(result *pipeline.Result, reload func() (*pipeline.Result, error), radius float64) treeModel {
	if radius == 0 {
		radius = pipeline.DefaultRadius
	}
	return treeModel{
		result: result,
		reload: reload,
		t:      view.NewTransform(),
		radius: radius,
		order:  placedOrder(result),
	}
}

func (m treeModel) Init() tea.Cmd {
	return nil
}

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.t = m.t.Pan(panStepPx, 0)
		case "right", "l":
			m.t = m.t.Pan(-panStepPx, 0)
		case "up", "k":
			m.t = m.t.Pan(0, panStepPx)
		case "down", "j":
			m.t = m.t.Pan(0, -panStepPx)
		case "+", "=":
			m.t = m.t.Zoom(m.canvasCenter(), view.ZoomInFactor)
		case "-", "_":
			m.t = m.t.Zoom(m.canvasCenter(), view.ZoomOutFactor)
		case "f":
			m = m.fitted()
		case "tab":
			m = m.cycleSelection()
		case "r":
			m = m.reloaded()
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if msg.Y >= m.canvasRows() {
			return m, nil
		}
		screen := layout.Point{
			X: (float64(msg.X) + 0.5) * cellWidthPx,
			Y: (float64(msg.Y) + 0.5) * cellHeightPx,
		}
		if id, ok := view.HitTest(screen, m.result.Positions, m.t, m.radius); ok {
			m.selected = id
		} else {
			m.selected = ""
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.sized {
			m.sized = true
			m = m.fitted()
		}
	}
	return m, nil
}

// fitted returns the model with the view centered on the whole tree.
func (m treeModel) fitted() treeModel {
	min, max, ok := m.result.Positions.Bounds()
	if !ok {
		m.t = view.NewTransform()
		return m
	}
	min.X -= m.radius
	min.Y -= m.radius
	max.X += m.radius
	max.Y += m.radius
	w, h := m.canvasSizePx()
	m.t = view.Fit(min, max, w, h)
	return m
}

// cycleSelection advances the selection to the next placed member.
func (m treeModel) cycleSelection() treeModel {
	if len(m.order) == 0 {
		return m
	}
	idx := -1
	for i, id := range m.order {
		if id == m.selected {
			idx = i
			break
		}
	}
	m.selected = m.order[(idx+1)%len(m.order)]
	return m
}

// reloaded pulls fresh records and recomputes the layout, keeping the
// current view transform.
func (m treeModel) reloaded() treeModel {
	res, err := m.reload()
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.result = res
	m.order = placedOrder(res)
	if _, ok := res.Positions[m.selected]; !ok {
		m.selected = ""
	}
	return m
}

func (m treeModel) canvasRows() int {
	rows := m.height - footerRows
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m treeModel) canvasSizePx() (w, h float64) {
	return float64(m.width) * cellWidthPx, float64(m.canvasRows()) * cellHeightPx
}

func (m treeModel) canvasCenter() layout.Point {
	w, h := m.canvasSizePx()
	return layout.Point{X: w / 2, Y: h / 2}
}

// cellMark classifies a canvas cell for styling.
type cellMark int

const (
	markNone cellMark = iota
	markNode
	markNodeSelected
	markLabel
)

func (m treeModel) View() string {
	if !m.sized {
		return "loading..."
	}

	rows := m.canvasRows()
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", m.width))
	}
	marks := make(map[[2]int]cellMark)

	// Plot nodes in ID order so overlapping labels resolve the same way
	// every frame.
	for _, id := range m.order {
		pos, ok := m.result.Positions[id]
		if !ok {
			continue
		}
		s := m.t.ToScreen(pos)
		col := int(s.X / cellWidthPx)
		row := int(s.Y / cellHeightPx)
		if row < 0 || row >= rows || col < 0 || col >= m.width {
			continue
		}

		grid[row][col] = '●'
		mark := markNode
		if id == m.selected {
			mark = markNodeSelected
		}
		marks[[2]int{row, col}] = mark

		mem, ok := m.result.Snapshot.Member(id)
		if !ok {
			continue
		}
		for i, r := range []rune(" " + mem.DisplayName()) {
			cc := col + 1 + i
			if cc >= m.width || grid[row][cc] != ' ' {
				break
			}
			grid[row][cc] = r
			marks[[2]int{row, cc}] = markLabel
		}
	}

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < m.width; col++ {
			ch := string(grid[row][col])
			switch marks[[2]int{row, col}] {
			case markNode:
				b.WriteString(styleNode.Render(ch))
			case markNodeSelected:
				b.WriteString(styleNodeSelected.Render(ch))
			case markLabel:
				b.WriteString(styleLabel.Render(ch))
			default:
				b.WriteString(ch)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("arrows/hjkl pan · +/- zoom · f fit · tab/click select · r reload · q quit"))

	return b.String()
}

// statusLine renders the footer: a reload error, the selected member, or
// overall stats.
func (m treeModel) statusLine() string {
	if m.err != nil {
		return StyleWarning.Render(fmt.Sprintf("reload failed: %v", m.err))
	}

	if m.selected != "" {
		if mem, ok := m.result.Snapshot.Member(m.selected); ok {
			details := []string{}
			if gen, ok := m.result.Generations[m.selected]; ok {
				details = append(details, fmt.Sprintf("generation %d", gen))
			}
			if mem.BirthDate != "" {
				span := mem.BirthDate
				if mem.DeathDate != "" {
					span += " - " + mem.DeathDate
				}
				details = append(details, span)
			}
			line := StyleHighlight.Render(mem.FullName())
			if len(details) > 0 {
				line += StyleDim.Render(" · " + strings.Join(details, " · "))
			}
			return line
		}
	}

	return StyleDim.Render(fmt.Sprintf("%d members · %d placed · scale %.1fx",
		m.result.Stats.MemberCount, m.result.Stats.PlacedCount, m.t.Scale))
}

// placedOrder returns the placed member IDs in sorted order.
func placedOrder(res *pipeline.Result) []string {
	ids := make([]string, 0, len(res.Positions))
	for id := range res.Positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
