package tracker

import "math"

// assignByScore matches detections (rows of scores) to live tracks
// (columns). It accepts as many pairs as possible and, among those
// matchings, maximises the summed ScoreMatch. Pairs scoring below
// minScore are never matched, even when the track would otherwise go
// unused.
//
// It returns, for each detection, the column of its track or -1.
func assignByScore(scores [][]float64, minScore float64) []int {
	if len(scores) == 0 {
		return nil
	}
	match := make([]int, len(scores))
	for i := range match {
		match[i] = -1
	}
	if len(scores[0]) == 0 {
		return match
	}

	sol := newScoreSolver(scores, minScore)
	for row := 0; row < sol.dim; row++ {
		sol.augment(row)
	}

	for col, row := range sol.colOwner {
		if row < 0 || row >= len(scores) || col >= len(scores[row]) {
			continue
		}
		if sol.allowed(row, col) {
			match[row] = col
		}
	}
	return match
}

// rejectedCost is the cost of a pair below the score floor, or of a pad
// cell. It is large enough that no sum of accepted costs reaches it.
const rejectedCost = 1e9

// scoreSolver runs the Kuhn-Munkres algorithm with Jonker-Volgenant
// potentials on the square cost matrix 1 - score, padded with
// rejectedCost so detections and tracks need not be equal in number.
type scoreSolver struct {
	scores   [][]float64
	minScore float64
	dim      int

	rowPot   []float64
	colPot   []float64
	colOwner []int // row owning each column, -1 when free
}

func newScoreSolver(scores [][]float64, minScore float64) *scoreSolver {
	dim := max(len(scores), len(scores[0]))
	s := &scoreSolver{
		scores:   scores,
		minScore: minScore,
		dim:      dim,
		rowPot:   make([]float64, dim),
		colPot:   make([]float64, dim),
		colOwner: make([]int, dim),
	}
	for j := range s.colOwner {
		s.colOwner[j] = -1
	}
	return s
}

func (s *scoreSolver) allowed(row, col int) bool {
	return row < len(s.scores) && col < len(s.scores[row]) && s.scores[row][col] >= s.minScore
}

func (s *scoreSolver) cost(row, col int) float64 {
	if !s.allowed(row, col) {
		return rejectedCost
	}
	return 1 - s.scores[row][col]
}

// augment grows the matching by one row along a shortest augmenting path
// in reduced costs, then shifts the potentials so every matched pair
// stays tight.
func (s *scoreSolver) augment(row int) {
	slack := make([]float64, s.dim)
	slackRow := make([]int, s.dim) // row that set slack[j]
	prevCol := make([]int, s.dim)  // column before j on the path, -1 at the root
	visited := make([]bool, s.dim)
	for j := range slack {
		slack[j] = math.Inf(1)
		prevCol[j] = -1
	}

	cur, curCol := row, -1
	for {
		delta, next := math.Inf(1), -1
		for j := 0; j < s.dim; j++ {
			if visited[j] {
				continue
			}
			if reduced := s.cost(cur, j) - s.rowPot[cur] - s.colPot[j]; reduced < slack[j] {
				slack[j] = reduced
				slackRow[j] = cur
				prevCol[j] = curCol
			}
			if slack[j] < delta {
				delta, next = slack[j], j
			}
		}

		s.rowPot[row] += delta
		for j := 0; j < s.dim; j++ {
			if visited[j] {
				s.rowPot[s.colOwner[j]] += delta
				s.colPot[j] -= delta
			} else {
				slack[j] -= delta
			}
		}

		visited[next] = true
		if s.colOwner[next] < 0 {
			s.flip(next, slackRow, prevCol)
			return
		}
		cur, curCol = s.colOwner[next], next
	}
}

// flip reassigns columns along the augmenting path ending at free column
// end, walking back to the root row.
func (s *scoreSolver) flip(end int, slackRow, prevCol []int) {
	for j := end; j >= 0; {
		s.colOwner[j] = slackRow[j]
		j = prevCol[j]
	}
}
