// This file was automatically generated by genny.
// Any changes will be lost if this file is regenerated.
// see https://github.com/cheekybits/genny

package main

// ThreadNode is a member of a ThreadList
type ThreadNode struct {
	prev  *ThreadNode
	next  *ThreadNode
	value *Thread
}

// Next returns the following node, nil at the end of the list.
func (n *ThreadNode) Next() *ThreadNode {
	return n.next
}

// Value returns the element's value.
func (n *ThreadNode) Value() *Thread {
	return n.value
}

// ThreadList is a doubly linked list that is not concurrent safe.
type ThreadList struct {
	first *ThreadNode
	last  *ThreadNode
	n     int
}

// Empty returns true if the list is empty.
func (g *ThreadList) Empty() bool {
	if g.first == nil {
		if g.last != nil || g.n != 0 {
			panic("invariant violated checking for Empty")
		}
		return true
	}
	return false
}

// Length returns the number of elements in the list.
func (g *ThreadList) Length() int {
	return g.n
}

// First returns the first node in the list or a nil if the list is empty.
func (g *ThreadList) First() *ThreadNode {
	return g.first
}

// Last returns the last node in the list or a nil if the list is empty.
func (g *ThreadList) Last() *ThreadNode {
	return g.last
}

// Append puts v at the end of the list and returns its node.
func (g *ThreadList) Append(v *Thread) *ThreadNode {
	n := &ThreadNode{value: v}
	if g.last == nil {
		g.first = n
		g.last = n
	} else {
		n.prev = g.last
		g.last.next = n
		g.last = n
	}
	g.n++
	return n
}

// InsertBefore puts v in front of mark. A nil mark appends.
func (g *ThreadList) InsertBefore(mark *ThreadNode, v *Thread) *ThreadNode {
	if mark == nil {
		return g.Append(v)
	}
	n := &ThreadNode{value: v, next: mark, prev: mark.prev}
	if mark.prev == nil {
		g.first = n
	} else {
		mark.prev.next = n
	}
	mark.prev = n
	g.n++
	return n
}

// Remove unlinks n, which must be a member of g.
func (g *ThreadList) Remove(n *ThreadNode) {
	if n.prev == nil {
		if g.first != n {
			panic("attempt to remove a node that is not a member (Remove)")
		}
		g.first = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		g.last = n.prev
	} else {
		n.next.prev = n.prev
	}
	n.prev = nil
	n.next = nil
	g.n--
}

// PopFront removes the first element and returns it, nil if empty.
func (g *ThreadList) PopFront() *Thread {
	n := g.first
	if n == nil {
		return nil
	}
	g.Remove(n)
	return n.value
}

// Traverse walks the values front to back. If fn returns an error the walk
// stops and the error is returned.
func (g *ThreadList) Traverse(fn func(v *Thread) error) error {
	for curr := g.first; curr != nil; curr = curr.next {
		if err := fn(curr.value); err != nil {
			return err
		}
	}
	return nil
}
