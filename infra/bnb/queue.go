package bnb

import "container/heap"

type node struct {
	lo, hi []float64
	x      []float64
	bound  float64
	depth  int
}

func (n *node) child() *node {
	return &node{
		lo:    append([]float64(nil), n.lo...),
		hi:    append([]float64(nil), n.hi...),
		depth: n.depth + 1,
	}
}

// nodeQueue orders open nodes by relaxation bound; ties go to the deeper
// node so incumbents appear early.
type nodeQueue []*node

var _ heap.Interface = (*nodeQueue)(nil)

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound < q[j].bound
	}
	return q[i].depth > q[j].depth
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*node)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}
