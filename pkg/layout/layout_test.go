package layout

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool { return math.Abs(a-b) < eps }

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		gens map[string]int
		want Positions
	}{
		{
			name: "empty mapping",
			gens: map[string]int{},
			want: Positions{},
		},
		{
			name: "single member centered",
			gens: map[string]int{"1": 0},
			want: Positions{"1": {X: 1000, Y: 100}},
		},
		{
			name: "pair straddles the center",
			gens: map[string]int{"1": 0, "3": 0},
			want: Positions{
				"1": {X: 925, Y: 100},
				"3": {X: 1075, Y: 100},
			},
		},
		{
			name: "two rows",
			gens: map[string]int{"1": 0, "3": 0, "2": 1},
			want: Positions{
				"1": {X: 925, Y: 100},
				"3": {X: 1075, Y: 100},
				"2": {X: 1000, Y: 300},
			},
		},
		{
			name: "odd row keeps middle member on center",
			gens: map[string]int{"a": 0, "b": 0, "c": 0},
			want: Positions{
				"a": {X: 850, Y: 100},
				"b": {X: 1000, Y: 100},
				"c": {X: 1150, Y: 100},
			},
		},
		{
			name: "deep generation",
			gens: map[string]int{"z": 4},
			want: Positions{"z": {X: 1000, Y: 900}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.gens, DefaultGrid())
			if len(got) != len(tt.want) {
				t.Fatalf("Compute() placed %d members, want %d", len(got), len(tt.want))
			}
			for id, want := range tt.want {
				p, ok := got[id]
				if !ok {
					t.Errorf("Compute() missing position for %s", id)
					continue
				}
				if !almostEqual(p.X, want.X) || !almostEqual(p.Y, want.Y) {
					t.Errorf("Compute()[%s] = (%v, %v), want (%v, %v)", id, p.X, p.Y, want.X, want.Y)
				}
			}
		})
	}
}

func TestComputeRowOrderIsByID(t *testing.T) {
	// Same generation, IDs inserted in no particular order: positions must
	// increase with ID.
	gens := map[string]int{"d": 0, "a": 0, "c": 0, "b": 0}
	pos := Compute(gens, DefaultGrid())

	order := []string{"a", "b", "c", "d"}
	for i := 1; i < len(order); i++ {
		prev, curr := pos[order[i-1]], pos[order[i]]
		if prev.X >= curr.X {
			t.Errorf("x(%s)=%v not left of x(%s)=%v", order[i-1], prev.X, order[i], curr.X)
		}
		if !almostEqual(curr.X-prev.X, DefaultSpacingX) {
			t.Errorf("spacing between %s and %s = %v, want %v", order[i-1], order[i], curr.X-prev.X, DefaultSpacingX)
		}
	}
}

func TestComputeCustomGrid(t *testing.T) {
	grid := Grid{SpacingX: 10, SpacingY: 20, CenterX: 0, BaseY: 5}
	pos := Compute(map[string]int{"a": 0, "b": 0, "c": 2}, grid)

	if p := pos["a"]; !almostEqual(p.X, -5) || !almostEqual(p.Y, 5) {
		t.Errorf("pos[a] = %+v, want (-5, 5)", p)
	}
	if p := pos["b"]; !almostEqual(p.X, 5) || !almostEqual(p.Y, 5) {
		t.Errorf("pos[b] = %+v, want (5, 5)", p)
	}
	if p := pos["c"]; !almostEqual(p.X, 0) || !almostEqual(p.Y, 45) {
		t.Errorf("pos[c] = %+v, want (0, 45)", p)
	}
}

func TestPositionsBounds(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, _, ok := (Positions{}).Bounds(); ok {
			t.Error("Bounds() ok = true for empty positions, want false")
		}
	})

	t.Run("spanning box", func(t *testing.T) {
		p := Positions{
			"a": {X: -10, Y: 5},
			"b": {X: 40, Y: -3},
			"c": {X: 0, Y: 12},
		}
		min, max, ok := p.Bounds()
		if !ok {
			t.Fatal("Bounds() ok = false, want true")
		}
		if min.X != -10 || min.Y != -3 {
			t.Errorf("min = %+v, want (-10, -3)", min)
		}
		if max.X != 40 || max.Y != 12 {
			t.Errorf("max = %+v, want (40, 12)", max)
		}
	})
}
