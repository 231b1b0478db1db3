package types

import (
	"math"
	"testing"
)

func TestRectContainsAndExpand(t *testing.T) {
	r := RectAt(Pt(2, 3), Size{W: 2, H: 2})

	if !r.Contains(Pt(3, 4)) {
		t.Error("Expected (3,4) inside rect")
	}
	if r.Contains(Pt(4, 4)) {
		t.Error("Expected (4,4) outside rect")
	}

	e := r.Expand(1)
	if e.Min != Pt(1, 2) || e.Size != (Size{W: 4, H: 4}) {
		t.Errorf("Expand(1) = %+v", e)
	}
	if !e.Contains(Pt(4, 5)) {
		t.Error("Expanded rect should contain (4,5)")
	}
}

func TestRectDistanceTo(t *testing.T) {
	r := RectAt(Pt(5, 5), Size{W: 1, H: 1})

	if d := r.DistanceTo(Pt(5, 5)); d != 0 {
		t.Errorf("distance inside rect: expected 0, got %f", d)
	}
	if d := r.DistanceTo(Pt(2, 1)); math.Abs(d-5) > 1e-9 {
		t.Errorf("distance (2,1)->(5,5): expected 5, got %f", d)
	}
	if got := r.MinDistSq(Pt(6, 6)); got != 2 {
		t.Errorf("MinDistSq diagonal neighbour: expected 2, got %d", got)
	}
}

func TestRectCellsOrder(t *testing.T) {
	cells := RectAt(Pt(0, 0), Size{W: 2, H: 2}).Cells()
	want := []Point{Pt(0, 0), Pt(1, 0), Pt(0, 1), Pt(1, 1)}
	if len(cells) != len(want) {
		t.Fatalf("expected %d cells, got %d", len(want), len(cells))
	}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("cell %d: expected %v, got %v", i, want[i], cells[i])
		}
	}
}

func TestTeamStringAndParse(t *testing.T) {
	tests := []struct {
		team Team
		name string
	}{
		{TeamNeutral, "neutral"},
		{TeamPlayer, "player"},
		{Enemy(1), "enemy-1"},
		{Enemy(3), "enemy-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.team.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			parsed, err := ParseTeam(tt.name)
			if err != nil {
				t.Fatalf("ParseTeam(%q) error: %v", tt.name, err)
			}
			if parsed != tt.team {
				t.Errorf("ParseTeam(%q) = %v, want %v", tt.name, parsed, tt.team)
			}
		})
	}

	if _, err := ParseTeam("enemy-0"); err == nil {
		t.Error("enemy-0 should be rejected")
	}
}
