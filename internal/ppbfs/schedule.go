package ppbfs

import (
	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/emirpasic/gods/trees/redblacktree"
)

// Schedule holds the (node state, length from source, length to target) pairs awaiting
// propagation, bucketed by total length and then by length from source. Node states within a
// bucket keep insertion order, and scheduling the same pair twice is a no-op.
type Schedule struct {
	totals *redblacktree.Tree
	size   int
}

func NewSchedule() *Schedule {
	return &Schedule{totals: redblacktree.NewWithIntComparator()}
}

func (s *Schedule) bucket(total int, create bool) *redblacktree.Tree {
	if b, ok := s.totals.Get(total); ok {
		return b.(*redblacktree.Tree)
	}
	if !create {
		return nil
	}
	b := redblacktree.NewWithIntComparator()
	s.totals.Put(total, b)
	return b
}

// Add schedules ns for the pair and reports whether the pair was new.
func (s *Schedule) Add(ns *NodeState, lengthFromSource, lengthToTarget int) bool {
	b := s.bucket(lengthFromSource+lengthToTarget, true)

	var set *linkedhashset.Set
	if v, ok := b.Get(lengthFromSource); ok {
		set = v.(*linkedhashset.Set)
	} else {
		set = linkedhashset.New()
		b.Put(lengthFromSource, set)
	}

	if set.Contains(ns) {
		return false
	}
	set.Add(ns)
	s.size++
	return true
}

// takeFirst removes and returns the node states scheduled at the smallest length from source of
// the total bucket.
func (s *Schedule) takeFirst(total int) (int, []*NodeState, bool) {
	b := s.bucket(total, false)
	if b == nil || b.Empty() {
		return 0, nil, false
	}

	first := b.Left()
	lengthFromSource := first.Key.(int)
	b.Remove(lengthFromSource)

	values := first.Value.(*linkedhashset.Set).Values()
	nodes := make([]*NodeState, 0, len(values))
	for _, v := range values {
		nodes = append(nodes, v.(*NodeState))
	}
	s.size -= len(nodes)

	return lengthFromSource, nodes, true
}

func (s *Schedule) drop(total int) {
	s.totals.Remove(total)
}

// MinTotal returns the smallest scheduled total length.
func (s *Schedule) MinTotal() (int, bool) {
	for !s.totals.Empty() {
		first := s.totals.Left()
		if !first.Value.(*redblacktree.Tree).Empty() {
			return first.Key.(int), true
		}
		s.totals.Remove(first.Key)
	}
	return 0, false
}

func (s *Schedule) IsEmpty() bool {
	return s.size == 0
}

// Len is the number of scheduled pairs.
func (s *Schedule) Len() int {
	return s.size
}
