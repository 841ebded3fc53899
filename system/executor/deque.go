package executor

import (
	"sync"

	"github.com/timewave-computer/causality/domain/effect"
)

// loadBalanceThreshold is the local-deque length past which a worker
// publishes its older half to the stealable segment, per §4.3's worker
// loop description.
const loadBalanceThreshold = 8

// deque is a worker's local work queue: a private LIFO half only that
// worker pops from and pushes to, and a "stealable" half — the public
// portion other workers may FIFO-steal from. One mutex guards both
// halves, so the owner's own pushes and pops take the lock too.
type deque struct {
	mu        sync.Mutex
	local     []*effect.Node
	stealable []*effect.Node
}

func newDeque() *deque {
	return &deque{}
}

// pushLocal adds n to the private LIFO half, publishing the older
// portion to the stealable half once local exceeds the threshold.
func (d *deque) pushLocal(n *effect.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.local = append(d.local, n)
	if len(d.local) > loadBalanceThreshold {
		split := len(d.local) / 2
		d.stealable = append(d.stealable, d.local[:split]...)
		remaining := make([]*effect.Node, len(d.local)-split)
		copy(remaining, d.local[split:])
		d.local = remaining
	}
}

// popLocal pops the most recently pushed node from the private half.
func (d *deque) popLocal() (*effect.Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.local) == 0 {
		return nil, false
	}
	n := d.local[len(d.local)-1]
	d.local = d.local[:len(d.local)-1]
	return n, true
}

// steal pops the oldest node from the stealable half, FIFO order.
func (d *deque) steal() (*effect.Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.stealable) == 0 {
		return nil, false
	}
	n := d.stealable[0]
	d.stealable = d.stealable[1:]
	return n, true
}

// len reports the total nodes currently held, local plus stealable.
func (d *deque) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.local) + len(d.stealable)
}
