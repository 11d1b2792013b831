// Package gen holds genny templates. The kernel's ThreadList is generated
// from GenericList with
//
//	genny -in=gen/doubly_linked.go -out=thread_list.go -pkg=main gen "Generic=Thread"
package gen

import (
	"github.com/cheekybits/genny/generic"
)

//go:generate genny -in=$GOFILE -out=../thread_list.go -pkg=main gen "Generic=Thread"

type Generic generic.Type

// GenericNode is a member of a GenericList
type GenericNode struct {
	prev  *GenericNode
	next  *GenericNode
	value *Generic
}

// Next returns the following node, nil at the end of the list.
func (n *GenericNode) Next() *GenericNode {
	return n.next
}

// Value returns the element's value.
func (n *GenericNode) Value() *Generic {
	return n.value
}

// GenericList is a doubly linked list that is not concurrent safe.
type GenericList struct {
	first *GenericNode
	last  *GenericNode
	n     int
}

// Empty returns true if the list is empty.
func (g *GenericList) Empty() bool {
	if g.first == nil {
		if g.last != nil || g.n != 0 {
			panic("invariant violated checking for Empty")
		}
		return true
	}
	return false
}

// Length returns the number of elements in the list.
func (g *GenericList) Length() int {
	return g.n
}

// First returns the first node in the list or a nil if the list is empty.
func (g *GenericList) First() *GenericNode {
	return g.first
}

// Last returns the last node in the list or a nil if the list is empty.
func (g *GenericList) Last() *GenericNode {
	return g.last
}

// Append puts v at the end of the list and returns its node.
func (g *GenericList) Append(v *Generic) *GenericNode {
	n := &GenericNode{value: v}
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
func (g *GenericList) InsertBefore(mark *GenericNode, v *Generic) *GenericNode {
	if mark == nil {
		return g.Append(v)
	}
	n := &GenericNode{value: v, next: mark, prev: mark.prev}
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
func (g *GenericList) Remove(n *GenericNode) {
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
func (g *GenericList) PopFront() *Generic {
	n := g.first
	if n == nil {
		return nil
	}
	g.Remove(n)
	return n.value
}

// Traverse walks the values front to back. If fn returns an error the walk
// stops and the error is returned.
func (g *GenericList) Traverse(fn func(v *Generic) error) error {
	for curr := g.first; curr != nil; curr = curr.next {
		if err := fn(curr.value); err != nil {
			return err
		}
	}
	return nil
}
