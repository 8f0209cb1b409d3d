package memory

import (
	"math/rand/v2"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
)

// Policy names accepted by NewPolicy.
const (
	PolicyRandom = "random"
	PolicyLRU    = "lru"
)

// ReplacementPolicy chooses which cached page to evict. The buffer pool reports
// every install and hit through RecordAccess and every removal through Remove,
// so the policy always tracks exactly the cached set.
//
// Implementations need not be safe for concurrent use.
type ReplacementPolicy interface {
	// RecordAccess notes that pid was installed or hit.
	RecordAccess(pid primitives.PageID)

	// Remove forgets pid.
	Remove(pid primitives.PageID)

	// Victim returns the page to evict next, or false when nothing is tracked.
	Victim() (primitives.PageID, bool)
}

// NewPolicy builds a policy by name.
func NewPolicy(name string) (ReplacementPolicy, error) {
	switch name {
	case PolicyRandom, "":
		return NewRandomPolicy(nil), nil
	case PolicyLRU:
		return NewLRUPolicy(), nil
	default:
		return nil, dberror.ErrInvalidArgument.Detailf("unknown replacement policy %q", name)
	}
}

// RandomPolicy picks a uniformly random victim.
type RandomPolicy struct {
	rng   *rand.Rand
	pids  []primitives.PageID
	index map[primitives.PageID]int
}

// NewRandomPolicy creates a random policy. A nil source seeds from the runtime.
func NewRandomPolicy(src rand.Source) *RandomPolicy {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RandomPolicy{
		rng:   rand.New(src),
		index: make(map[primitives.PageID]int),
	}
}

func (r *RandomPolicy) RecordAccess(pid primitives.PageID) {
	if _, ok := r.index[pid]; ok {
		return
	}
	r.index[pid] = len(r.pids)
	r.pids = append(r.pids, pid)
}

// Remove swaps the last element into pid's position.
func (r *RandomPolicy) Remove(pid primitives.PageID) {
	i, ok := r.index[pid]
	if !ok {
		return
	}
	last := len(r.pids) - 1
	r.pids[i] = r.pids[last]
	r.index[r.pids[i]] = i
	r.pids = r.pids[:last]
	delete(r.index, pid)
}

func (r *RandomPolicy) Victim() (primitives.PageID, bool) {
	if len(r.pids) == 0 {
		return primitives.PageID{}, false
	}
	return r.pids[r.rng.IntN(len(r.pids))], true
}

// node represents a single node in the doubly linked list
type node struct {
	pid  primitives.PageID
	prev *node
	next *node
}

// LRUPolicy evicts the least recently used page. A doubly linked list combined
// with a map gives O(1) for every operation.
type LRUPolicy struct {
	nodes map[primitives.PageID]*node
	head  *node // Dummy head node (most recently used end)
	tail  *node // Dummy tail node (least recently used end)
}

// NewLRUPolicy creates an empty LRU policy.
func NewLRUPolicy() *LRUPolicy {
	head := &node{}
	tail := &node{}
	head.next = tail
	tail.prev = head

	return &LRUPolicy{
		nodes: make(map[primitives.PageID]*node),
		head:  head,
		tail:  tail,
	}
}

func (l *LRUPolicy) addToFront(n *node) {
	n.prev = l.head
	n.next = l.head.next
	l.head.next.prev = n
	l.head.next = n
}

func (l *LRUPolicy) unlink(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

func (l *LRUPolicy) RecordAccess(pid primitives.PageID) {
	if n, ok := l.nodes[pid]; ok {
		l.unlink(n)
		l.addToFront(n)
		return
	}
	n := &node{pid: pid}
	l.nodes[pid] = n
	l.addToFront(n)
}

func (l *LRUPolicy) Remove(pid primitives.PageID) {
	if n, ok := l.nodes[pid]; ok {
		l.unlink(n)
		delete(l.nodes, pid)
	}
}

func (l *LRUPolicy) Victim() (primitives.PageID, bool) {
	if l.tail.prev == l.head {
		return primitives.PageID{}, false
	}
	return l.tail.prev.pid, true
}
