package matching

import (
	"testing"

	"github.com/swisspair/pairing/internal/bigweight"
)

func w(n int, v uint64) *bigweight.Weight { return bigweight.FromUint64(n, v) }

func TestSolverPathPicksHeavierMaxCardinalityMatching(t *testing.T) {
	// Path 0-1-2-3: edges (0,1)=1, (1,2)=5, (2,3)=1.
	// Max cardinality is 2 edges; the only way to get two disjoint edges is
	// {(0,1),(2,3)} (weight 2), since the heavier single edge (1,2) alone
	// only covers one pair.
	s := New(4, 8)
	for i := 0; i < 4; i++ {
		s.AddVertex()
	}
	s.SetEdgeWeight(0, 1, w(8, 1))
	s.SetEdgeWeight(1, 2, w(8, 5))
	s.SetEdgeWeight(2, 3, w(8, 1))
	s.Compute()

	if s.Mate(0) != 1 || s.Mate(1) != 0 {
		t.Fatalf("expected 0-1 matched, got mate(0)=%d mate(1)=%d", s.Mate(0), s.Mate(1))
	}
	if s.Mate(2) != 3 || s.Mate(3) != 2 {
		t.Fatalf("expected 2-3 matched, got mate(2)=%d mate(3)=%d", s.Mate(2), s.Mate(3))
	}
}

func TestSolverLeavesIsolatedVertexUnmatched(t *testing.T) {
	s := New(3, 8)
	for i := 0; i < 3; i++ {
		s.AddVertex()
	}
	s.SetEdgeWeight(0, 1, w(8, 3))
	// vertex 2 has no edges at all
	s.Compute()

	if s.Mate(2) != 2 {
		t.Fatalf("expected isolated vertex 2 to be unmatched (mate=self), got %d", s.Mate(2))
	}
	if s.Mate(0) != 1 || s.Mate(1) != 0 {
		t.Fatalf("expected 0-1 matched")
	}
}

func TestSolverOddTriangleMatchesOnePair(t *testing.T) {
	s := New(3, 8)
	for i := 0; i < 3; i++ {
		s.AddVertex()
	}
	s.SetEdgeWeight(0, 1, w(8, 2))
	s.SetEdgeWeight(1, 2, w(8, 2))
	s.SetEdgeWeight(0, 2, w(8, 2))
	s.Compute()

	matched := 0
	for i := 0; i < 3; i++ {
		if s.Mate(i) != i {
			matched++
		}
	}
	if matched != 2 {
		t.Fatalf("expected exactly one pair (2 matched vertices) out of a triangle, got %d matched", matched)
	}
}

func TestSetEdgeWeightZeroRemovesEdge(t *testing.T) {
	s := New(2, 8)
	s.AddVertex()
	s.AddVertex()
	s.SetEdgeWeight(0, 1, w(8, 4))
	if s.EdgeWeight(0, 1) == nil {
		t.Fatalf("expected edge to be present")
	}
	s.SetEdgeWeight(0, 1, w(8, 0))
	if s.EdgeWeight(0, 1) != nil {
		t.Fatalf("expected edge to be removed by zero weight")
	}
	s.Compute()
	if s.Mate(0) != 0 || s.Mate(1) != 1 {
		t.Fatalf("expected both vertices unmatched after edge removal")
	}
}

func TestSolverNoEdgesEverybodyUnmatched(t *testing.T) {
	s := New(4, 8)
	for i := 0; i < 4; i++ {
		s.AddVertex()
	}
	s.Compute()
	for i := 0; i < 4; i++ {
		if s.Mate(i) != i {
			t.Fatalf("vertex %d should be unmatched, got mate %d", i, s.Mate(i))
		}
	}
}
