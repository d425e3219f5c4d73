package engine

import (
	"container/heap"

	"github.com/flocklens/flocklens/internal/core/social"
)

// credential is one schedulable token pair together with the earliest unix
// time its quota window for a given operation renews.
type credential struct {
	id        int64
	label     string
	client    social.Client
	renewalAt int64
}

// credentialQueue is a min-heap of credentials ordered by renewal time, with
// credential id breaking ties so rotation order is deterministic.
type credentialQueue []*credential

var _ heap.Interface = (*credentialQueue)(nil)

func (q credentialQueue) Len() int { return len(q) }

func (q credentialQueue) Less(i, j int) bool {
	if q[i].renewalAt != q[j].renewalAt {
		return q[i].renewalAt < q[j].renewalAt
	}
	return q[i].id < q[j].id
}

func (q credentialQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *credentialQueue) Push(x any) {
	*q = append(*q, x.(*credential))
}

func (q *credentialQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
