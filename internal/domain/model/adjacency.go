package model

// Adjacency is a symmetric team-by-team count of head-to-head games.
// The diagonal is zero.
type Adjacency map[string]map[string]int

// NewAdjacency allocates an empty matrix over the given teams.
func NewAdjacency(teams []string) Adjacency {
	a := make(Adjacency, len(teams))
	for _, t := range teams {
		a[t] = make(map[string]int, len(teams))
	}
	return a
}

// Count returns the number of games between t1 and t2.
func (a Adjacency) Count(t1, t2 string) int {
	if row, ok := a[t1]; ok {
		return row[t2]
	}
	return 0
}

// Add records one game between t1 and t2 on both sides of the matrix.
func (a Adjacency) Add(t1, t2 string) {
	if t1 == t2 {
		return
	}
	if _, ok := a[t1]; !ok {
		a[t1] = make(map[string]int)
	}
	if _, ok := a[t2]; !ok {
		a[t2] = make(map[string]int)
	}
	a[t1][t2]++
	a[t2][t1]++
}
