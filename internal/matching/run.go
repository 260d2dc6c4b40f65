package matching

import "github.com/swisspair/pairing/internal/bigweight"

// run holds the working state of one blossom-algorithm solve. It is rebuilt
// fresh on every Solver.Compute call: the solver does not attempt to reuse
// dual variables across calls, since the caller (the bracket driver) mutates
// edge weights heavily between solves and a full resolve is cheap at the
// vertex counts a single score bracket produces.
type run struct {
	nReal int // vertices the caller knows about
	nV    int // nReal padded to even with one phantom vertex if needed
	wbits int

	dw [][]*bigweight.Weight // doubled edge weights, nV x nV, nil = no edge

	mate  []int // size nV, -1 if unmatched
	label []int // size 2*nV: 0 free, 1 S, 2 T (bit 4 used transiently as a "visited" mark)

	labelend []int // size 2*nV, vertex at the far end of the labeling edge, -1 if root

	inblossom []int // size nV, top-level blossom (or vertex) containing each vertex

	blossomparent []int      // size 2*nV, -1 if top level
	blossombase   []int      // size 2*nV, base vertex
	blossomchilds [][]int    // size 2*nV, ordered circle of child ids, base first
	blossomendps  [][][2]int // size 2*nV, blossomendps[b][i] = (a,c): a in childs[i], c in childs[i+1]
	blossombest   [][][2]int // size 2*nV, candidate (u,v) edges to other S-blossoms, recomputed on formation
	unused        []int      // free blossom ids

	bestedge  [][2]int // size 2*nV, best (u,v) edge to a different S top-level blossom, (-1,-1) if none
	dualvar   []*bigweight.Weight
	allowedge [][]bool // nV x nV, true once an edge is known tight
	queue     []int
	maxWeight *bigweight.Weight
}

func newRun(s *Solver) *run {
	nReal := len(s.adj)
	nV := nReal
	if nV%2 == 1 {
		nV++
	}
	if nV == 0 {
		nV = 2
	}

	r := &run{nReal: nReal, nV: nV, wbits: s.wbits}
	r.dw = make([][]*bigweight.Weight, nV)
	for i := range r.dw {
		r.dw[i] = make([]*bigweight.Weight, nV)
	}
	maxW := bigweight.New(s.wbits + 1)
	for i := 0; i < nReal; i++ {
		for j := 0; j < nReal; j++ {
			if i == j || s.adj[i][j] == nil {
				continue
			}
			d := s.adj[i][j].Clone()
			d.ShiftLeftGrow(1)
			r.dw[i][j] = d
			if bigweight.Compare(d, maxW) > 0 {
				maxW = d.Clone()
			}
		}
	}
	r.maxWeight = maxW

	r.mate = make([]int, nV)
	r.label = make([]int, 2*nV)
	r.labelend = make([]int, 2*nV)
	r.inblossom = make([]int, nV)
	r.blossomparent = make([]int, 2*nV)
	r.blossombase = make([]int, 2*nV)
	r.blossomchilds = make([][]int, 2*nV)
	r.blossomendps = make([][][2]int, 2*nV)
	r.blossombest = make([][][2]int, 2*nV)
	r.bestedge = make([][2]int, 2*nV)
	r.dualvar = make([]*bigweight.Weight, 2*nV)
	r.allowedge = make([][]bool, nV)
	for i := range r.allowedge {
		r.allowedge[i] = make([]bool, nV)
	}

	for v := 0; v < nV; v++ {
		r.mate[v] = -1
		r.inblossom[v] = v
		r.blossombase[v] = v
		r.blossomparent[v] = -1
		r.dualvar[v] = r.maxWeight.Clone()
	}
	for b := nV; b < 2*nV; b++ {
		r.blossomparent[b] = -1
		r.dualvar[b] = bigweight.ZeroLike(r.maxWeight)
		r.unused = append(r.unused, b)
	}
	return r
}

func noEdge() [2]int { return [2]int{-1, -1} }

func (r *run) hasEdge(v, w int) bool { return v != w && r.dw[v][w] != nil }

// slack returns dualvar[v]+dualvar[w]-2*weight(v,w); callers only invoke this
// when an edge exists.
func (r *run) slack(v, w int) *bigweight.Weight {
	s := r.dualvar[v].Clone()
	s.Add(r.dualvar[w])
	s.Sub(r.dw[v][w])
	return s
}

func (r *run) blossomLeaves(b int) []int {
	if b < r.nV {
		return []int{b}
	}
	var out []int
	for _, c := range r.blossomchilds[b] {
		out = append(out, r.blossomLeaves(c)...)
	}
	return out
}

func (r *run) assignLabel(w, t, v int) {
	b := r.inblossom[w]
	r.label[w] = t
	r.label[b] = t
	if v != -1 {
		r.labelend[w] = v
		r.labelend[b] = v
	} else {
		r.labelend[w] = -1
		r.labelend[b] = -1
	}
	r.bestedge[w] = noEdge()
	r.bestedge[b] = noEdge()
	if t == 1 {
		r.queue = append(r.queue, r.blossomLeaves(b)...)
	} else if t == 2 {
		base := r.blossombase[b]
		r.assignLabel(r.mate[base], 1, base)
	}
}

// scanBlossom walks the alternating trees containing v and w looking for
// their common ancestor blossom. Returns -1 if v and w belong to different
// trees (an augmenting path has been found instead of a blossom).
func (r *run) scanBlossom(v, w int) int {
	var path []int
	base := -1
	vv, ww := v, w
	for vv != -1 || ww != -1 {
		b := r.inblossom[vv]
		if r.label[b]&4 != 0 {
			base = r.blossombase[b]
			break
		}
		path = append(path, b)
		r.label[b] |= 4
		if r.labelend[b] == -1 {
			vv = -1
		} else {
			vv = r.labelend[b]
		}
		if ww != -1 {
			vv, ww = ww, vv
		} else if vv != -1 {
			ww = -1
		}
	}
	for _, b := range path {
		r.label[b] &^= 4
	}
	return base
}

func indexOf(s []int, x int) int {
	for i, v := range s {
		if v == x {
			return i
		}
	}
	return -1
}

// addBlossom contracts the odd cycle discovered by a tight edge (v,w)
// between two S-vertices whose trees meet at base.
func (r *run) addBlossom(base, v, w int) {
	bb := r.inblossom[base]
	b := r.unused[len(r.unused)-1]
	r.unused = r.unused[:len(r.unused)-1]

	r.blossombase[b] = base
	r.blossomparent[b] = -1
	r.blossomparent[bb] = b

	var childs []int
	var endps [][2]int

	// climb from v to base
	var sidePath []int
	var sideEndps [][2]int
	cv, cw := v, w
	for r.inblossom[cv] != bb {
		r.blossomparent[r.inblossom[cv]] = b
		sidePath = append(sidePath, r.inblossom[cv])
		sideEndps = append(sideEndps, [2]int{cv, r.labelend[r.inblossom[cv]]})
		cv = r.labelend[r.inblossom[cv]]
	}
	sidePath = append(sidePath, bb)
	reverseInts(sidePath)
	reverseEdgePairs(sideEndps)
	childs = append(childs, sidePath...)
	endps = append(endps, sideEndps...)
	endps = append(endps, [2]int{v, w})

	var otherPath []int
	var otherEndps [][2]int
	for r.inblossom[cw] != bb {
		r.blossomparent[r.inblossom[cw]] = b
		otherPath = append(otherPath, r.inblossom[cw])
		otherEndps = append(otherEndps, [2]int{r.labelend[r.inblossom[cw]], cw})
		cw = r.labelend[r.inblossom[cw]]
	}
	childs = append(childs, otherPath...)
	endps = append(endps, otherEndps...)

	r.blossomchilds[b] = childs
	r.blossomendps[b] = endps
	r.label[b] = 1
	r.labelend[b] = r.labelend[bb]
	r.dualvar[b] = bigweight.ZeroLike(r.maxWeight)

	for _, leaf := range r.blossomLeaves(b) {
		r.inblossom[leaf] = b
	}

	// recompute best edges for the new blossom from its children's best edges
	bestByTarget := map[int][2]int{}
	for _, c := range childs {
		var candidates [][2]int
		if len(r.blossombest[c]) > 0 {
			candidates = r.blossombest[c]
		} else {
			for _, leaf := range r.blossomLeaves(c) {
				for u := 0; u < r.nV; u++ {
					if r.hasEdge(leaf, u) {
						candidates = append(candidates, [2]int{leaf, u})
					}
				}
			}
		}
		for _, e := range candidates {
			target := r.inblossom[e[1]]
			if target == b {
				continue
			}
			if cur, ok := bestByTarget[target]; !ok || bigweight.Compare(r.slack(e[0], e[1]), r.slack(cur[0], cur[1])) < 0 {
				bestByTarget[target] = e
			}
		}
	}
	var best [][2]int
	for _, e := range bestByTarget {
		best = append(best, e)
	}
	r.blossombest[b] = best
	r.bestedge[b] = noEdge()
	for _, e := range best {
		if r.bestedge[b][0] == -1 || bigweight.Compare(r.slack(e[0], e[1]), r.slack(r.bestedge[b][0], r.bestedge[b][1])) < 0 {
			r.bestedge[b] = e
		}
	}
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// reverseEdgePairs reverses the order of s and swaps each pair's endpoints,
// since walking a chain of connecting edges backwards also flips each edge's
// direction.
func reverseEdgePairs(s [][2]int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	for i := range s {
		s[i] = [2]int{s[i][1], s[i][0]}
	}
}

// expandBlossom dissolves blossom b back into its children. endstage is true
// during the final cleanup pass after augmenting is complete, where no
// relabeling of the exposed children is needed.
func (r *run) expandBlossom(b int, endstage bool) {
	for _, c := range r.blossomchilds[b] {
		r.blossomparent[c] = -1
		if c < r.nV {
			r.inblossom[c] = c
		} else if endstage && r.dualvar[c].IsZero() {
			r.expandBlossom(c, endstage)
		} else {
			for _, leaf := range r.blossomLeaves(c) {
				r.inblossom[leaf] = c
			}
		}
	}

	if !endstage && r.label[b] == 2 {
		entry := r.inblossom[r.labelend[b]]
		childs := r.blossomchilds[b]
		endps := r.blossomendps[b]
		j := indexOf(childs, entry)
		var jstep int
		if j%2 == 0 {
			j -= len(childs)
			jstep = 1
		} else {
			jstep = -1
		}
		p := r.labelend[b]
		for j != 0 {
			var from, to int
			if jstep == 1 {
				e := endps[mod(j, len(endps))]
				from, to = e[1], e[0]
			} else {
				e := endps[mod(j-1, len(endps))]
				from, to = e[0], e[1]
			}
			r.label[from] = 0
			r.label[to] = 0
			r.assignLabel(from, 2, p)
			p = to
			j += jstep
			j = mod(j, len(childs))
		}
		bv := childs[mod(j, len(childs))]
		r.label[p] = 2
		r.label[bv] = 2
		r.labelend[p] = p
		r.labelend[bv] = p
		r.bestedge[bv] = noEdge()
	}

	r.label[b] = 0
	r.labelend[b] = -1
	r.blossomchilds[b] = nil
	r.blossomendps[b] = nil
	r.blossombest[b] = nil
	r.bestedge[b] = noEdge()
	r.unused = append(r.unused, b)
}

func mod(a, n int) int {
	if n == 0 {
		return 0
	}
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// augmentBlossom rotates blossom b's internal matching so that v becomes the
// externally matched vertex.
func (r *run) augmentBlossom(b, v int) {
	t := v
	for r.blossomparent[t] != b {
		t = r.blossomparent[t]
	}
	if t >= r.nV {
		r.augmentBlossom(t, v)
	}
	childs := r.blossomchilds[b]
	endps := r.blossomendps[b]
	i := indexOf(childs, t)
	j := i
	var direction int
	if i%2 == 1 {
		j -= len(childs)
		direction = 1
	} else {
		direction = -1
	}
	for j != 0 {
		j += direction
		j = mod(j, len(childs))
		t = childs[j]
		var from, to int
		if direction == 1 {
			e := endps[mod(j-1, len(endps))]
			from, to = e[1], e[0]
		} else {
			e := endps[mod(j, len(endps))]
			from, to = e[0], e[1]
		}
		if t >= r.nV {
			r.augmentBlossom(t, from)
		}
		j += direction
		j = mod(j, len(childs))
		t = childs[j]
		if t >= r.nV {
			r.augmentBlossom(t, to)
		}
		r.mate[from] = to
		r.mate[to] = from
	}
	rotated := append(append([]int{}, childs[i:]...), childs[:i]...)
	rotatedEndps := append(append([][2]int{}, endps[i:]...), endps[:i]...)
	r.blossomchilds[b] = rotated
	r.blossomendps[b] = rotatedEndps
	r.blossombase[b] = r.blossombase[rotated[0]]
}

// augmentMatching augments the matching along the path discovered by the
// tight edge (v,w) connecting two distinct alternating trees.
func (r *run) augmentMatching(v, w int) {
	for _, side := range [][2]int{{v, w}, {w, v}} {
		s0, j0 := side[0], side[1]
		for {
			bs := r.inblossom[s0]
			r.augmentBlossom(bs, s0)
			r.mate[s0] = j0
			if r.labelend[bs] == -1 {
				break
			}
			t := r.labelend[bs]
			bt := r.inblossom[t]
			j0 = r.labelend[bt]
			s0 = t
		}
	}
}

func (r *run) solve() {
	for stage := 0; stage < r.nV; stage++ {
		for i := range r.label {
			r.label[i] = 0
		}
		for i := range r.bestedge {
			r.bestedge[i] = noEdge()
		}
		for b := r.nV; b < 2*r.nV; b++ {
			if r.blossomparent[b] == -1 {
				r.blossombest[b] = nil
			}
		}
		for i := range r.allowedge {
			for j := range r.allowedge[i] {
				r.allowedge[i][j] = false
			}
		}
		r.queue = r.queue[:0]

		for v := 0; v < r.nV; v++ {
			if r.mate[v] == -1 && r.blossomparent[v] == -1 {
				r.assignLabel(v, 1, -1)
			}
		}

		augmented := false
		for !augmented {
			for len(r.queue) > 0 && !augmented {
				v := r.queue[len(r.queue)-1]
				r.queue = r.queue[:len(r.queue)-1]
				for w := 0; w < r.nV; w++ {
					if !r.hasEdge(v, w) {
						continue
					}
					bv := r.inblossom[v]
					bw := r.inblossom[w]
					if bv == bw {
						continue
					}
					if !r.allowedge[v][w] {
						sl := r.slack(v, w)
						if sl.IsZero() {
							r.allowedge[v][w] = true
							r.allowedge[w][v] = true
						}
					}
					if r.allowedge[v][w] {
						if r.label[bw] == 0 {
							r.assignLabel(w, 2, v)
						} else if r.label[bw] == 1 {
							base := r.scanBlossom(v, w)
							if base >= 0 {
								r.addBlossom(base, v, w)
							} else {
								r.augmentMatching(v, w)
								augmented = true
								break
							}
						} else if r.label[w] == 0 {
							r.label[w] = 2
							r.labelend[w] = v
						}
					} else if r.label[bw] == 1 {
						r.updateBest(bv, [2]int{v, w})
					} else if r.label[w] == 0 {
						r.updateBest(w, [2]int{v, w})
					}
				}
			}
			if augmented {
				break
			}

			delta, deltaType, deltaEdge, deltaBlossom := r.computeDelta()
			if delta == nil {
				break
			}
			r.applyDelta(delta)

			switch deltaType {
			case 1:
				// no further augmenting path is reachable this stage
				augmented = false
				goto stageDone
			case 2:
				v, w := deltaEdge[0], deltaEdge[1]
				r.allowedge[v][w] = true
				r.allowedge[w][v] = true
				r.queue = append(r.queue, v)
			case 3:
				v, w := deltaEdge[0], deltaEdge[1]
				r.allowedge[v][w] = true
				r.allowedge[w][v] = true
				r.queue = append(r.queue, v)
			case 4:
				r.expandBlossom(deltaBlossom, false)
			}
		}
	stageDone:
	}

	for b := r.nV; b < 2*r.nV; b++ {
		if r.blossomparent[b] == -1 && r.blossombase[b] >= 0 && len(r.blossomchilds[b]) > 0 {
			r.expandBlossom(b, true)
		}
	}
}

func (r *run) updateBest(x int, e [2]int) {
	if r.bestedge[x][0] == -1 || bigweight.Compare(r.slack(e[0], e[1]), r.slack(r.bestedge[x][0], r.bestedge[x][1])) < 0 {
		r.bestedge[x] = e
	}
}

// computeDelta finds the minimal dual adjustment needed to make progress
// this stage, returning nil when the matching found so far is already
// maximum.
func (r *run) computeDelta() (*bigweight.Weight, int, [2]int, int) {
	var delta *bigweight.Weight
	deltaType := -1
	var deltaEdge [2]int
	deltaBlossom := -1

	for v := 0; v < r.nV; v++ {
		if r.blossomparent[v] != -1 {
			continue
		}
		if r.label[r.inblossom[v]] == 0 && r.mate[v] == -1 {
			cand := r.dualvar[v]
			if delta == nil || bigweight.Compare(cand, delta) < 0 {
				delta = cand
				deltaType = 1
			}
		}
	}

	for x := 0; x < 2*r.nV; x++ {
		if r.blossomparent[x] != -1 {
			continue
		}
		if x < r.nV && r.label[r.inblossom[x]] == 1 {
			continue
		}
		if r.label[x] == 1 {
			continue
		}
		e := r.bestedge[x]
		if e[0] == -1 {
			continue
		}
		s := r.slack(e[0], e[1])
		if delta == nil || bigweight.Compare(s, delta) < 0 {
			delta = s
			deltaType = 2
			deltaEdge = e
		}
	}

	for b := 0; b < 2*r.nV; b++ {
		if r.blossomparent[b] != -1 {
			continue
		}
		if r.label[b] != 1 {
			continue
		}
		e := r.bestedge[b]
		if e[0] == -1 {
			continue
		}
		s := r.slack(e[0], e[1]).Clone()
		s.ShiftRight(1)
		if delta == nil || bigweight.Compare(s, delta) < 0 {
			delta = s
			deltaType = 3
			deltaEdge = e
		}
	}

	for b := r.nV; b < 2*r.nV; b++ {
		if r.blossomparent[b] != -1 {
			continue
		}
		if r.label[b] != 2 {
			continue
		}
		if len(r.blossomchilds[b]) == 0 {
			continue
		}
		half := r.dualvar[b].Clone()
		half.ShiftRight(1)
		if delta == nil || bigweight.Compare(half, delta) < 0 {
			delta = half
			deltaType = 4
			deltaBlossom = b
		}
	}

	return delta, deltaType, deltaEdge, deltaBlossom
}

func (r *run) applyDelta(delta *bigweight.Weight) {
	for v := 0; v < r.nV; v++ {
		switch r.label[r.inblossom[v]] {
		case 1:
			r.dualvar[v].Add(delta)
		case 2:
			r.dualvar[v].Sub(delta)
		}
	}
	for b := r.nV; b < 2*r.nV; b++ {
		if r.blossomparent[b] != -1 || len(r.blossomchilds[b]) == 0 {
			continue
		}
		switch r.label[b] {
		case 1:
			r.dualvar[b].Add(delta)
		case 2:
			r.dualvar[b].Sub(delta)
		}
	}
}
