package gridnav

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
)

// MaxAStarSteps is the default expansion budget of a search.
const MaxAStarSteps = 65536

// ErrInvalidCost is the panic value (wrapped) raised when a map reports a
// non-finite or negative step cost or heuristic.
var ErrInvalidCost = errors.New("gridnav: invalid pathing cost")

// NavigationPath holds the result of an A* query.
// Steps includes both the starting cell and Destination when Success is true,
// and is empty otherwise.
type NavigationPath struct {
	Destination int   `json:"destination"`
	Success     bool  `json:"success"`
	Steps       []int `json:"steps"`
}

// node represents a cell in the A* search
type node struct {
	idx    int     // Cell index
	g      float64 // Cost from start to this node
	h      float64 // Heuristic cost from this node to end
	f      float64 // Total cost (g + h)
	parent *node
	index  int // Index in the heap, -1 once popped
}

// priorityQueue implements heap.Interface ordered by ascending f
type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].f < pq[j].f
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	item := x.(*node)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// AStar runs searches with a bounded expansion budget.
type AStar struct {
	// MaxSteps caps the number of node expansions; <= 0 means MaxAStarSteps.
	MaxSteps int
}

// AStarSearch finds a path from start to end with the default budget.
func AStarSearch(start, end int, m PathingMap) NavigationPath {
	return AStar{MaxSteps: MaxAStarSteps}.Search(start, end, m)
}

// Search computes a path between two cell indices. Running out of open nodes
// or of budget is a normal failure, reported through Success.
//
// The search stops as soon as the goal is generated as an exit rather than
// when it is popped. With uniform step costs and an admissible heuristic the
// path is a shortest one; with varying costs a costlier path may be returned.
// When several equally good paths exist, which one is returned is unspecified.
func (a AStar) Search(start, end int, m PathingMap) NavigationPath {
	if start == end {
		return NavigationPath{Destination: end, Success: true, Steps: []int{start}}
	}

	budget := a.MaxSteps
	if budget <= 0 {
		budget = MaxAStarSteps
	}

	openSet := &priorityQueue{}
	heap.Init(openSet)
	heap.Push(openSet, &node{idx: start})

	openSetMap := make(map[int]*node)
	openSetMap[start] = (*openSet)[0]
	closedSet := make(map[int]float64)

	for steps := 0; openSet.Len() > 0 && steps < budget; steps++ {
		current := heap.Pop(openSet).(*node)
		delete(openSetMap, current.idx)

		for _, exit := range m.AvailableExits(current.idx) {
			checkCost("step cost", exit.Cost)

			// Did we reach our goal?
			if exit.To == end {
				return foundPath(&node{idx: end, parent: current})
			}

			g := current.g + exit.Cost
			h := m.PathingDistance(exit.To, end)
			checkCost("heuristic", h)
			f := g + h

			neighbor, inOpen := openSetMap[exit.To]
			if inOpen && neighbor.f < f {
				continue
			}
			if closedF, closed := closedSet[exit.To]; closed && closedF < f {
				continue
			}

			if inOpen {
				// Found a path at least as good to this neighbor
				neighbor.g, neighbor.h, neighbor.f = g, h, f
				neighbor.parent = current
				heap.Fix(openSet, neighbor.index)
				continue
			}
			neighbor = &node{idx: exit.To, g: g, h: h, f: f, parent: current}
			heap.Push(openSet, neighbor)
			openSetMap[exit.To] = neighbor
		}

		closedSet[current.idx] = current.f
	}

	return NavigationPath{Destination: end}
}

// foundPath unwinds the parent chain of the goal node.
func foundPath(goal *node) NavigationPath {
	var steps []int
	for n := goal; n != nil; n = n.parent {
		steps = append(steps, n.idx)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return NavigationPath{Destination: goal.idx, Success: true, Steps: steps}
}

func checkCost(what string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		panic(fmt.Errorf("%w: %s %v", ErrInvalidCost, what, v))
	}
}
