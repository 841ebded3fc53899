package executor

import (
	"sync"
	"time"

	"github.com/timewave-computer/causality/domain/effect"
)

// readyQueue is the global FIFO queue workers fall back to after their
// own local deque runs dry, guarded by a condition variable so a
// dequeue can wait with a bounded timeout per §5's suspension points.
type readyQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	nodes  []*effect.Node
	closed bool
}

func newReadyQueue() *readyQueue {
	q := &readyQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push enqueues n and wakes one waiting dequeuer, ordering by priority
// descending so higher-priority nodes surface first among equals.
func (q *readyQueue) push(n *effect.Node) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	insertByPriority(&q.nodes, n)
	q.cond.Signal()
}

func insertByPriority(nodes *[]*effect.Node, n *effect.Node) {
	p := effect.Priority(n)
	i := 0
	for ; i < len(*nodes); i++ {
		existing := effect.Priority((*nodes)[i])
		if p > existing || (p == existing && n.Effect.Footprint.Cost < (*nodes)[i].Effect.Footprint.Cost) {
			break
		}
	}
	*nodes = append(*nodes, nil)
	copy((*nodes)[i+1:], (*nodes)[i:])
	(*nodes)[i] = n
}

// popWait pops the highest-priority ready node, waiting up to timeout if
// the queue is currently empty.
func (q *readyQueue) popWait(timeout time.Duration) (*effect.Node, bool) {
	stop := make(chan struct{})
	timer := time.AfterFunc(timeout, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer func() {
		timer.Stop()
		close(stop)
	}()

	q.mu.Lock()
	defer q.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for len(q.nodes) == 0 && !q.closed && time.Now().Before(deadline) {
		q.cond.Wait()
	}
	if len(q.nodes) == 0 {
		return nil, false
	}
	n := q.nodes[0]
	q.nodes = q.nodes[1:]
	return n, true
}

// close wakes every waiter permanently; used during shutdown.
func (q *readyQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
