// Persisted AA-tree: a balanced binary search tree with a single
// integer "level" per node (Arne Andersson's simplification of a
// red-black tree), navigated entirely through Heap offsets so the
// whole structure lives in the backing stream. Keys and values are
// opaque byte slices compared with bytes.Compare; SortedMap and
// SortedSet layer typed Codecs on top of this.
package triplestore

import (
	"bytes"
	"encoding/binary"
)

// aaNode layout: level(8) | left(8) | right(8) | keyLen(8) | valLen(8) | key | value
const aaNodeFixed = 40

type aaTree struct {
	heap *Heap
}

func newAATree(heap *Heap) *aaTree {
	return &aaTree{heap: heap}
}

type aaNode struct {
	level int64
	left  int64
	right int64
	key   []byte
	value []byte
}

func (t *aaTree) readNode(offset int64) (aaNode, error) {
	if offset == 0 {
		return aaNode{}, nil
	}
	_, err := t.heap.SizeOf(offset)
	if err != nil {
		return aaNode{}, err
	}
	buf, err := t.heap.Get(offset)
	if err != nil {
		return aaNode{}, err
	}
	keyLen := int64(binary.LittleEndian.Uint64(buf[24:32]))
	valLen := int64(binary.LittleEndian.Uint64(buf[32:40]))
	return aaNode{
		level: int64(binary.LittleEndian.Uint64(buf[0:8])),
		left:  int64(binary.LittleEndian.Uint64(buf[8:16])),
		right: int64(binary.LittleEndian.Uint64(buf[16:24])),
		key:   buf[aaNodeFixed : aaNodeFixed+keyLen],
		value: buf[aaNodeFixed+keyLen : aaNodeFixed+keyLen+valLen],
	}, nil
}

func (n aaNode) encode() []byte {
	buf := make([]byte, aaNodeFixed+len(n.key)+len(n.value))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(n.level))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(n.left))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(n.right))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(len(n.key)))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(len(n.value)))
	copy(buf[aaNodeFixed:], n.key)
	copy(buf[aaNodeFixed+len(n.key):], n.value)
	return buf
}

func (t *aaTree) writeNode(offset int64, n aaNode) error {
	return t.heap.Set(offset, n.encode())
}

func (t *aaTree) newNode(n aaNode) (int64, error) {
	buf := n.encode()
	offset, err := t.heap.Alloc(int64(len(buf)))
	if err != nil {
		return 0, err
	}
	if err := t.heap.Set(offset, buf); err != nil {
		return 0, err
	}
	return offset, nil
}

func (t *aaTree) free(offset int64) error {
	if offset == 0 {
		return nil
	}
	return t.heap.Free(offset)
}

// skew rotates right when a left child has the same level as its
// parent, removing a left horizontal link.
func (t *aaTree) skew(root int64) (int64, error) {
	if root == 0 {
		return 0, nil
	}
	node, err := t.readNode(root)
	if err != nil {
		return 0, err
	}
	if node.left == 0 {
		return root, nil
	}
	leftOff := node.left
	left, err := t.readNode(leftOff)
	if err != nil {
		return 0, err
	}
	if left.level != node.level {
		return root, nil
	}
	node.left = left.right
	left.right = root
	if err := t.writeNode(root, node); err != nil {
		return 0, err
	}
	if err := t.writeNode(leftOff, left); err != nil {
		return 0, err
	}
	return leftOff, nil
}

// split rotates left when two consecutive right horizontal links
// appear, removing them and raising the middle node's level.
func (t *aaTree) split(root int64) (int64, error) {
	if root == 0 {
		return 0, nil
	}
	node, err := t.readNode(root)
	if err != nil {
		return 0, err
	}
	if node.right == 0 {
		return root, nil
	}
	rightOff := node.right
	right, err := t.readNode(rightOff)
	if err != nil {
		return 0, err
	}
	if right.right == 0 {
		return root, nil
	}
	rightRight, err := t.readNode(right.right)
	if err != nil {
		return 0, err
	}
	if rightRight.level != node.level {
		return root, nil
	}
	node.right = right.left
	right.left = root
	right.level++
	if err := t.writeNode(root, node); err != nil {
		return 0, err
	}
	if err := t.writeNode(rightOff, right); err != nil {
		return 0, err
	}
	return rightOff, nil
}

// get returns the value stored under key, or ok=false.
func (t *aaTree) get(root int64, key []byte) (value []byte, ok bool, err error) {
	cur := root
	for cur != 0 {
		node, err := t.readNode(cur)
		if err != nil {
			return nil, false, err
		}
		c := bytes.Compare(key, node.key)
		switch {
		case c == 0:
			return node.value, true, nil
		case c < 0:
			cur = node.left
		default:
			cur = node.right
		}
	}
	return nil, false, nil
}

// insert adds or overwrites key=value, returning the new subtree root.
// replaced reports whether an existing key was overwritten (no node
// count change) versus a new node inserted.
func (t *aaTree) insert(root int64, key, value []byte) (newRoot int64, replaced bool, err error) {
	if root == 0 {
		offset, err := t.newNode(aaNode{level: 1, key: key, value: value})
		return offset, false, err
	}
	node, err := t.readNode(root)
	if err != nil {
		return 0, false, err
	}
	c := bytes.Compare(key, node.key)
	switch {
	case c == 0:
		node.value = value
		sz, err := t.heap.SizeOf(root)
		if err != nil {
			return 0, false, err
		}
		if int64(len(node.encode())) > sz {
			if err := t.free(root); err != nil {
				return 0, false, err
			}
			newOff, err := t.newNode(node)
			return newOff, true, err
		}
		return root, true, t.writeNode(root, node)
	case c < 0:
		newLeft, rep, err := t.insert(node.left, key, value)
		if err != nil {
			return 0, false, err
		}
		node.left = newLeft
		replaced = rep
	default:
		newRight, rep, err := t.insert(node.right, key, value)
		if err != nil {
			return 0, false, err
		}
		node.right = newRight
		replaced = rep
	}
	if err := t.writeNode(root, node); err != nil {
		return 0, false, err
	}
	root, err = t.skew(root)
	if err != nil {
		return 0, false, err
	}
	root, err = t.split(root)
	if err != nil {
		return 0, false, err
	}
	return root, replaced, nil
}

// delete removes key, returning the new subtree root. removed reports
// whether a node was actually found and freed.
func (t *aaTree) delete(root int64, key []byte) (newRoot int64, removed bool, err error) {
	if root == 0 {
		return 0, false, nil
	}
	node, err := t.readNode(root)
	if err != nil {
		return 0, false, err
	}
	c := bytes.Compare(key, node.key)
	switch {
	case c < 0:
		newLeft, rem, err := t.delete(node.left, key)
		if err != nil {
			return 0, false, err
		}
		node.left = newLeft
		removed = rem
		if err := t.writeNode(root, node); err != nil {
			return 0, false, err
		}
	case c > 0:
		newRight, rem, err := t.delete(node.right, key)
		if err != nil {
			return 0, false, err
		}
		node.right = newRight
		removed = rem
		if err := t.writeNode(root, node); err != nil {
			return 0, false, err
		}
	default:
		removed = true
		switch {
		case node.left == 0 && node.right == 0:
			return 0, true, t.free(root)
		case node.left == 0:
			succ, err := t.leftmost(node.right)
			if err != nil {
				return 0, false, err
			}
			node.key, node.value = succ.key, succ.value
			newRight, _, err := t.delete(node.right, succ.key)
			if err != nil {
				return 0, false, err
			}
			node.right = newRight
			if err := t.writeNode(root, node); err != nil {
				return 0, false, err
			}
		default:
			pred, err := t.rightmost(node.left)
			if err != nil {
				return 0, false, err
			}
			node.key, node.value = pred.key, pred.value
			newLeft, _, err := t.delete(node.left, pred.key)
			if err != nil {
				return 0, false, err
			}
			node.left = newLeft
			if err := t.writeNode(root, node); err != nil {
				return 0, false, err
			}
		}
	}

	root, err = t.rebalanceAfterDelete(root)
	if err != nil {
		return 0, false, err
	}
	return root, removed, nil
}

func (t *aaTree) leftmost(root int64) (aaNode, error) {
	node, err := t.readNode(root)
	if err != nil {
		return aaNode{}, err
	}
	for node.left != 0 {
		node, err = t.readNode(node.left)
		if err != nil {
			return aaNode{}, err
		}
	}
	return node, nil
}

func (t *aaTree) rightmost(root int64) (aaNode, error) {
	node, err := t.readNode(root)
	if err != nil {
		return aaNode{}, err
	}
	for node.right != 0 {
		node, err = t.readNode(node.right)
		if err != nil {
			return aaNode{}, err
		}
	}
	return node, nil
}

// rebalanceAfterDelete restores the level invariant after a deletion
// lowers a child's level, then re-applies skew/split along the
// rebalanced path as classic AA-tree deletion requires.
func (t *aaTree) rebalanceAfterDelete(root int64) (int64, error) {
	if root == 0 {
		return 0, nil
	}
	node, err := t.readNode(root)
	if err != nil {
		return 0, err
	}

	leftLevel, rightLevel := int64(0), int64(0)
	if node.left != 0 {
		left, err := t.readNode(node.left)
		if err != nil {
			return 0, err
		}
		leftLevel = left.level
	}
	if node.right != 0 {
		right, err := t.readNode(node.right)
		if err != nil {
			return 0, err
		}
		rightLevel = right.level
	}

	wantLevel := min64(leftLevel, rightLevel) + 1
	if wantLevel < node.level {
		node.level = wantLevel
		if node.right != 0 {
			right, err := t.readNode(node.right)
			if err != nil {
				return 0, err
			}
			if right.level > wantLevel {
				right.level = wantLevel
				if err := t.writeNode(node.right, right); err != nil {
					return 0, err
				}
			}
		}
		if err := t.writeNode(root, node); err != nil {
			return 0, err
		}
	}

	root, err = t.skew(root)
	if err != nil {
		return 0, err
	}
	node, err = t.readNode(root)
	if err != nil {
		return 0, err
	}
	if node.right != 0 {
		newRight, err := t.skew(node.right)
		if err != nil {
			return 0, err
		}
		node.right = newRight
		if err := t.writeNode(root, node); err != nil {
			return 0, err
		}
		right, err := t.readNode(node.right)
		if err != nil {
			return 0, err
		}
		if right.right != 0 {
			newRightRight, err := t.skew(right.right)
			if err != nil {
				return 0, err
			}
			right.right = newRightRight
			if err := t.writeNode(node.right, right); err != nil {
				return 0, err
			}
		}
	}
	root, err = t.split(root)
	if err != nil {
		return 0, err
	}
	node, err = t.readNode(root)
	if err != nil {
		return 0, err
	}
	if node.right != 0 {
		newRight, err := t.split(node.right)
		if err != nil {
			return 0, err
		}
		node.right = newRight
		if err := t.writeNode(root, node); err != nil {
			return 0, err
		}
	}
	return root, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// clearAll frees every node in the subtree rooted at root, post-order,
// for a full wipe (SortedMap.Clear, Index.Clear) rather than a
// key-at-a-time delete.
func (t *aaTree) clearAll(root int64) error {
	if root == 0 {
		return nil
	}
	node, err := t.readNode(root)
	if err != nil {
		return err
	}
	if err := t.clearAll(node.left); err != nil {
		return err
	}
	if err := t.clearAll(node.right); err != nil {
		return err
	}
	return t.free(root)
}

// ascend calls yield for every (key, value) pair in the subtree rooted
// at root, in ascending key order, stopping early if yield returns
// false.
func (t *aaTree) ascend(root int64, yield func(key, value []byte) bool) (bool, error) {
	if root == 0 {
		return true, nil
	}
	node, err := t.readNode(root)
	if err != nil {
		return false, err
	}
	cont, err := t.ascend(node.left, yield)
	if err != nil || !cont {
		return cont, err
	}
	if !yield(node.key, node.value) {
		return false, nil
	}
	return t.ascend(node.right, yield)
}

// seekAscend descends to the first key >= from (inclusive), then ascends
// from there, for Range constraint cursors.
func (t *aaTree) seekAscend(root int64, from []byte, yield func(key, value []byte) bool) (bool, error) {
	if root == 0 {
		return true, nil
	}
	node, err := t.readNode(root)
	if err != nil {
		return false, err
	}
	if bytes.Compare(node.key, from) < 0 {
		return t.seekAscend(node.right, from, yield)
	}
	cont, err := t.seekAscend(node.left, from, yield)
	if err != nil || !cont {
		return cont, err
	}
	if !yield(node.key, node.value) {
		return false, nil
	}
	return t.ascend(node.right, yield)
}
