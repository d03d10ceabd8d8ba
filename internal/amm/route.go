package amm

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrNoRoute is returned when the target token cannot be reached.
var ErrNoRoute = errors.New("no route")

// Edge is a swap through one pool. Cost is the estimated slippage of the swap
// as a fraction of the spot-price output.
type Edge struct {
	From Node
	To   Node
	Pool string
	Cost float64
}

func (e Edge) String() string {
	return fmt.Sprintf("%s: %s -> %s", e.Pool, e.From, e.To)
}

// Graph is a directed multigraph of tokens connected by pools.
type Graph struct {
	nodes map[Node]struct{}
	edges map[Node][]Edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[Node]struct{}),
		edges: make(map[Node][]Edge),
	}
}

// AddNode adds a token without edges.
func (g *Graph) AddNode(n Node) {
	g.nodes[n] = struct{}{}
}

// AddEdge adds e and both of its endpoints.
func (g *Graph) AddEdge(e Edge) {
	g.AddNode(e.From)
	g.AddNode(e.To)
	g.edges[e.From] = append(g.edges[e.From], e)
}

// Edges returns the edges leaving n in insertion order.
func (g *Graph) Edges(n Node) []Edge {
	return g.edges[n]
}

// AddPoolEdges adds one edge per swap direction of pool, weighted by the
// slippage of swapping amount. Reserves are not modified. Directions with an
// empty reserve are skipped.
func AddPoolEdges(g *Graph, pool *Exchange, amount decimal.Decimal) {
	if cost, ok := slippage(amount, pool.A.Reserve, pool.B.Reserve, pool.BFromA(amount)); ok {
		g.AddEdge(Edge{From: pool.A.Node, To: pool.B.Node, Pool: pool.Name, Cost: cost})
	}
	if cost, ok := slippage(amount, pool.B.Reserve, pool.A.Reserve, pool.AFromB(amount)); ok {
		g.AddEdge(Edge{From: pool.B.Node, To: pool.A.Node, Pool: pool.Name, Cost: cost})
	}
}

// slippage returns how far out falls short of the spot-price output
// amount·reserveOut/reserveIn, as a fraction of the spot-price output.
func slippage(amount, reserveIn, reserveOut, out decimal.Decimal) (float64, bool) {
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 || amount.Sign() <= 0 {
		return 0, false
	}
	spot := amount.Mul(reserveOut).DivRound(reserveIn, divPrecision)
	return spot.Sub(out).DivRound(spot, divPrecision).InexactFloat64(), true
}

// Route is the cheapest path between two tokens.
type Route struct {
	Path      []Node
	Edges     []Edge
	TotalCost float64
}

// ShortestPath runs Dijkstra from source to target. When target is
// unreachable it returns an empty route with infinite cost and ErrNoRoute.
func ShortestPath(g *Graph, source, target Node) (Route, error) {
	dist := map[Node]float64{source: 0}
	prev := make(map[Node]Edge)

	pq := &queue{{node: source}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(item)
		if cur.cost > dist[cur.node] {
			continue
		}
		if cur.node == target {
			break
		}
		for _, e := range g.edges[cur.node] {
			next := cur.cost + e.Cost
			if d, seen := dist[e.To]; !seen || next < d {
				dist[e.To] = next
				prev[e.To] = e
				heap.Push(pq, item{node: e.To, cost: next})
			}
		}
	}

	total, ok := dist[target]
	if !ok {
		return Route{Path: []Node{}, Edges: []Edge{}, TotalCost: math.Inf(1)},
			fmt.Errorf("%w from %s to %s", ErrNoRoute, source, target)
	}

	var edges []Edge
	for n := target; n != source; n = prev[n].From {
		edges = append(edges, prev[n])
	}
	// reverse into travel order
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	path := []Node{source}
	for _, e := range edges {
		path = append(path, e.To)
	}
	if edges == nil {
		edges = []Edge{}
	}
	return Route{Path: path, Edges: edges, TotalCost: total}, nil
}

type item struct {
	node Node
	cost float64
}

// queue is a min-heap of items ordered by cost.
type queue []item

func (q queue) Len() int            { return len(q) }
func (q queue) Less(i, j int) bool  { return q[i].cost < q[j].cost }
func (q queue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x interface{}) { *q = append(*q, x.(item)) }
func (q *queue) Pop() interface{} {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
