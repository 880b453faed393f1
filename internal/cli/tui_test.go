package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/pedigree"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/view"
)

// testResult builds a two-member pipeline result without running the
// pipeline: Ada at (1000,100) with child Bob at (1000,300).
func testResult() *pipeline.Result {
	return &pipeline.Result{
		Snapshot: family.Snapshot{
			Members: []family.Member{
				{ID: "a", FirstName: "Ada", LastName: "Byron", BirthDate: "1815", DeathDate: "1852"},
				{ID: "b", FirstName: "Bob", LastName: "Byron"},
			},
			Relationships: []family.Relationship{{ID: "r1", From: "a", To: "b", Type: "mother"}},
		},
		Generations: pedigree.Generations{"a": 0, "b": 1},
		Positions: layout.Positions{
			"a": {X: 1000, Y: 100},
			"b": {X: 1000, Y: 300},
		},
		Stats: pipeline.Stats{MemberCount: 2, RelationshipCount: 1, PlacedCount: 2},
	}
}

// sizedModel returns a model that has received its first window size and
// been reset to the identity transform, so screen math is predictable.
func sizedModel(t *testing.T, res *pipeline.Result) treeModel {
	t.Helper()
	m := newTreeModel(res, func() (*pipeline.Result, error) { return res, nil }, 0)
	um, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 50})
	m = um.(treeModel)
	m.t = view.NewTransform()
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m treeModel, msg tea.Msg) treeModel {
	t.Helper()
	um, _ := m.Update(msg)
	return um.(treeModel)
}

func TestNewTreeModelDefaults(t *testing.T) {
	m := newTreeModel(testResult(), nil, 0)

	if m.radius != pipeline.DefaultRadius {
		t.Errorf("radius = %v, want the pipeline default", m.radius)
	}
	if len(m.order) != 2 || m.order[0] != "a" || m.order[1] != "b" {
		t.Errorf("order = %v, want [a b]", m.order)
	}
	if m.t != view.NewTransform() {
		t.Errorf("initial transform = %+v, want identity", m.t)
	}
	if m.Init() != nil {
		t.Error("Init should schedule no command")
	}
}

func TestTreeModelFitsOnFirstSize(t *testing.T) {
	m := newTreeModel(testResult(), nil, 0)

	m = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 50})
	if !m.sized {
		t.Fatal("model should be sized")
	}

	// 48 canvas rows after the footer; the bounds pad by the node radius.
	want := view.Fit(
		layout.Point{X: 1000 - pipeline.DefaultRadius, Y: 100 - pipeline.DefaultRadius},
		layout.Point{X: 1000 + pipeline.DefaultRadius, Y: 300 + pipeline.DefaultRadius},
		200*cellWidthPx, 48*cellHeightPx,
	)
	if m.t != want {
		t.Errorf("transform after first size = %+v, want %+v", m.t, want)
	}

	// Later resizes keep the current view.
	before := m.t
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if m.t != before {
		t.Error("resize should not re-fit the view")
	}
}

func TestTreeModelPanKeys(t *testing.T) {
	m := sizedModel(t, testResult())

	m = update(t, m, keyMsg("left"))
	if m.t.Offset.X != panStepPx {
		t.Errorf("after left, Offset.X = %v, want %v", m.t.Offset.X, panStepPx)
	}
	m = update(t, m, keyMsg("right"))
	if m.t.Offset.X != 0 {
		t.Errorf("after right, Offset.X = %v, want 0", m.t.Offset.X)
	}
	m = update(t, m, keyMsg("k"))
	if m.t.Offset.Y != panStepPx {
		t.Errorf("after k, Offset.Y = %v, want %v", m.t.Offset.Y, panStepPx)
	}
	m = update(t, m, keyMsg("j"))
	if m.t.Offset.Y != 0 {
		t.Errorf("after j, Offset.Y = %v, want 0", m.t.Offset.Y)
	}
}

func TestTreeModelZoomKeys(t *testing.T) {
	m := sizedModel(t, testResult())

	want := m.t.Zoom(m.canvasCenter(), view.ZoomInFactor)
	m = update(t, m, keyMsg("+"))
	if m.t != want {
		t.Errorf("after +, transform = %+v, want %+v", m.t, want)
	}

	want = m.t.Zoom(m.canvasCenter(), view.ZoomOutFactor)
	m = update(t, m, keyMsg("-"))
	if m.t != want {
		t.Errorf("after -, transform = %+v, want %+v", m.t, want)
	}
}

func TestTreeModelTabCycles(t *testing.T) {
	m := sizedModel(t, testResult())

	m = update(t, m, keyMsg("tab"))
	if m.selected != "a" {
		t.Errorf("first tab selected %q, want a", m.selected)
	}
	m = update(t, m, keyMsg("tab"))
	if m.selected != "b" {
		t.Errorf("second tab selected %q, want b", m.selected)
	}
	m = update(t, m, keyMsg("tab"))
	if m.selected != "a" {
		t.Errorf("third tab selected %q, want a (wrap)", m.selected)
	}
}

func TestTreeModelClickSelects(t *testing.T) {
	m := sizedModel(t, testResult())

	// Ada sits at world (1000,100): cell column 83, row 4 at identity.
	click := tea.MouseMsg{X: 83, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m = update(t, m, click)
	if m.selected != "a" {
		t.Errorf("click on the node selected %q, want a", m.selected)
	}

	// A click on empty canvas clears the selection.
	miss := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m = update(t, m, miss)
	if m.selected != "" {
		t.Errorf("click on empty space kept selection %q", m.selected)
	}
}

func TestTreeModelClickIgnoresFooterAndOtherButtons(t *testing.T) {
	m := sizedModel(t, testResult())
	m = update(t, m, keyMsg("tab"))
	if m.selected != "a" {
		t.Fatalf("setup selection = %q", m.selected)
	}

	// Clicks in the footer rows are not canvas clicks.
	footer := tea.MouseMsg{X: 83, Y: 49, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m = update(t, m, footer)
	if m.selected != "a" {
		t.Error("footer click should not change the selection")
	}

	// Non-left buttons and non-press actions are ignored.
	right := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonRight}
	m = update(t, m, right)
	if m.selected != "a" {
		t.Error("right click should not change the selection")
	}
	release := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
	m = update(t, m, release)
	if m.selected != "a" {
		t.Error("button release should not change the selection")
	}
}

func TestTreeModelQuitKeys(t *testing.T) {
	m := sizedModel(t, testResult())

	for _, k := range []string{"q"} {
		_, cmd := m.Update(keyMsg(k))
		if cmd == nil {
			t.Fatalf("%q should quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q returned %T, want tea.QuitMsg", k, cmd())
		}
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should produce tea.QuitMsg")
	}
}

func TestTreeModelReload(t *testing.T) {
	fresh := testResult()
	fresh.Positions["c"] = layout.Point{X: 1300, Y: 300}
	fresh.Snapshot.Members = append(fresh.Snapshot.Members, family.Member{ID: "c", FirstName: "Cy", LastName: "Byron"})
	fresh.Stats.PlacedCount = 3

	m := sizedModel(t, testResult())
	m.reload = func() (*pipeline.Result, error) { return fresh, nil }

	m = update(t, m, keyMsg("r"))
	if m.err != nil {
		t.Fatalf("reload error: %v", m.err)
	}
	if len(m.order) != 3 {
		t.Errorf("order after reload = %v, want three IDs", m.order)
	}
}

func TestTreeModelReloadError(t *testing.T) {
	m := sizedModel(t, testResult())
	before := m.result
	m.reload = func() (*pipeline.Result, error) { return nil, errors.New("boom") }

	m = update(t, m, keyMsg("r"))
	if m.err == nil {
		t.Fatal("reload error should be recorded")
	}
	if m.result != before {
		t.Error("failed reload should keep the previous result")
	}
	if !strings.Contains(m.statusLine(), "reload failed") {
		t.Errorf("status = %q, want a reload failure notice", m.statusLine())
	}

	// A successful reload clears the error.
	m.reload = func() (*pipeline.Result, error) { return testResult(), nil }
	m = update(t, m, keyMsg("r"))
	if m.err != nil {
		t.Errorf("error should clear after a good reload: %v", m.err)
	}
}

func TestTreeModelReloadClearsStaleSelection(t *testing.T) {
	m := sizedModel(t, testResult())
	m = update(t, m, keyMsg("tab"))
	if m.selected != "a" {
		t.Fatalf("setup selection = %q", m.selected)
	}

	shrunk := testResult()
	delete(shrunk.Positions, "a")
	m.reload = func() (*pipeline.Result, error) { return shrunk, nil }

	m = update(t, m, keyMsg("r"))
	if m.selected != "" {
		t.Errorf("selection %q should clear when the member is unplaced", m.selected)
	}
}

func TestTreeModelView(t *testing.T) {
	m := newTreeModel(testResult(), nil, 0)
	if got := m.View(); got != "loading..." {
		t.Errorf("unsized View = %q, want loading...", got)
	}

	m = sizedModel(t, testResult())
	m = m.fitted()
	out := m.View()
	if !strings.Contains(out, "●") {
		t.Error("View should plot node markers")
	}
	if !strings.Contains(out, "Ada Byron") {
		t.Error("View should label Ada Byron")
	}
	if !strings.Contains(out, "q quit") {
		t.Error("View should show the key help")
	}
}

func TestTreeModelStatusLine(t *testing.T) {
	m := sizedModel(t, testResult())

	if got := m.statusLine(); !strings.Contains(got, "2 members") || !strings.Contains(got, "2 placed") {
		t.Errorf("stats line = %q", got)
	}

	m = update(t, m, keyMsg("tab"))
	got := m.statusLine()
	if !strings.Contains(got, "Ada Byron") {
		t.Errorf("selection line = %q, want the member name", got)
	}
	if !strings.Contains(got, "generation 0") {
		t.Errorf("selection line = %q, want the generation", got)
	}
	if !strings.Contains(got, "1815 - 1852") {
		t.Errorf("selection line = %q, want the life span", got)
	}
}

func TestPlacedOrder(t *testing.T) {
	res := &pipeline.Result{Positions: layout.Positions{
		"c": {}, "a": {}, "b": {},
	}}
	got := placedOrder(res)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("placedOrder = %v, want %v", got, want)
		}
	}
}
