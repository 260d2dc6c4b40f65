// Package matching implements weighted maximum-cardinality maximum-weight
// matching on a general (non-bipartite) graph, following the structure of
// Galil's primal-dual blossom algorithm. Edge weights are arbitrary-precision
// bigweight.Weight values rather than machine integers, which lets the caller
// encode a whole stack of lexicographically ordered criteria into one solve.
package matching

import "github.com/swisspair/pairing/internal/bigweight"

// Solver holds a mutable weighted graph. Callers add vertices, set or clear
// edge weights, then call Compute to (re)solve; Mate reads back the result of
// the most recent Compute call. A weight of zero (bigweight.Weight.IsZero)
// means "no edge", distinct from a real edge that happens to carry zero
// criteria bits.
type Solver struct {
	wbits int
	adj   [][]*bigweight.Weight
	mate  []int
}

// New preallocates a solver for up to vmax vertices whose edge weights are
// declared to wbits bits wide.
func New(vmax, wbits int) *Solver {
	return &Solver{
		wbits: wbits,
		adj:   make([][]*bigweight.Weight, 0, vmax),
		mate:  make([]int, 0, vmax),
	}
}

// AddVertex appends one vertex and returns its index.
func (s *Solver) AddVertex() int {
	n := len(s.adj)
	for i := range s.adj {
		s.adj[i] = append(s.adj[i], nil)
	}
	s.adj = append(s.adj, make([]*bigweight.Weight, n+1))
	s.mate = append(s.mate, -1)
	return n
}

// N reports the current number of vertices.
func (s *Solver) N() int {
	return len(s.adj)
}

// SetEdgeWeight sets the weight of edge {i,j}. A zero weight removes the
// edge. Safe to call repeatedly between Compute calls.
func (s *Solver) SetEdgeWeight(i, j int, w *bigweight.Weight) {
	if i == j {
		return
	}
	if w == nil || w.IsZero() {
		s.adj[i][j] = nil
		s.adj[j][i] = nil
		return
	}
	s.adj[i][j] = w
	s.adj[j][i] = w
}

// EdgeWeight returns the current weight of edge {i,j}, or nil if absent.
func (s *Solver) EdgeWeight(i, j int) *bigweight.Weight {
	return s.adj[i][j]
}

// Compute recomputes the optimal matching from the current edge weights.
func (s *Solver) Compute() {
	r := newRun(s)
	r.solve()
	mate := make([]int, len(s.adj))
	for v := range mate {
		mate[v] = -1
	}
	for v := 0; v < r.nReal; v++ {
		if r.mate[v] >= 0 && r.mate[v] < r.nReal {
			mate[v] = r.mate[v]
		}
	}
	s.mate = mate
}

// Mate returns the partner of i in the last computed optimal matching, or i
// itself if i is unmatched.
func (s *Solver) Mate(i int) int {
	if s.mate[i] < 0 {
		return i
	}
	return s.mate[i]
}
