package pptdom

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// ShapeTree is the ordered collection of shapes of one slide, layout or
// master (p:spTree), or of one group (p:grpSp). Nested group trees share
// the id and name space of their root tree.
type ShapeTree struct {
	root   *Node
	idRoot *Node
	part   *Part
	pres   *Presentation
	parent *Shape

	// inherit returns the tree placeholders of this tree inherit from.
	inherit func() *ShapeTree

	handles map[*Node]*Shape
}

// NewShapeTree wraps a detached p:spTree element. The tree has no hosting
// part, so cloned relationships are not rebound and pixel conversion uses
// DefaultResolution.
func NewShapeTree(root *Node) *ShapeTree {
	return &ShapeTree{root: root, idRoot: root, handles: make(map[*Node]*Shape)}
}

func newPartTree(pres *Presentation, part *Part, root *Node, inherit func() *ShapeTree) *ShapeTree {
	return &ShapeTree{
		root:    root,
		idRoot:  root,
		part:    part,
		pres:    pres,
		inherit: inherit,
		handles: make(map[*Node]*Shape),
	}
}

var defaultUnits = &UnitConverter{resX: DefaultResolution, resY: DefaultResolution}

func (t *ShapeTree) units() *UnitConverter {
	if t.pres == nil {
		return defaultUnits
	}
	return t.pres.units
}

func (t *ShapeTree) logger() *slog.Logger {
	if t.pres == nil {
		return discardLogger
	}
	return t.pres.log
}

func (t *ShapeTree) base() *ShapeTree {
	if t.inherit == nil {
		return nil
	}
	return t.inherit()
}

// Node returns the p:spTree or p:grpSp element.
func (t *ShapeTree) Node() *Node { return t.root }

// Part returns the hosting part, nil for detached trees.
func (t *ShapeTree) Part() *Part { return t.part }

// Group returns the group shape for a nested tree, nil for a root tree.
func (t *ShapeTree) Group() *Shape { return t.parent }

func (t *ShapeTree) handle(n *Node) *Shape {
	if s, ok := t.handles[n]; ok {
		return s
	}
	s := newShape(t, n)
	t.handles[n] = s
	return s
}

// Shapes returns the direct shapes of the tree in document order.
func (t *ShapeTree) Shapes() []*Shape {
	var out []*Shape
	for _, c := range t.root.children {
		if isShapeElement(c) {
			out = append(out, t.handle(c))
		}
	}
	return out
}

// Len returns the number of direct shapes.
func (t *ShapeTree) Len() int {
	n := 0
	for _, c := range t.root.children {
		if isShapeElement(c) {
			n++
		}
	}
	return n
}

// Walk visits every shape of the tree and of nested groups in document
// order. Returning false stops the walk.
func (t *ShapeTree) Walk(fn func(*Shape) bool) {
	t.walk(fn)
}

func (t *ShapeTree) walk(fn func(*Shape) bool) bool {
	for _, s := range t.Shapes() {
		if !fn(s) {
			return false
		}
		if s.kind == ShapeGroup {
			g, err := s.Group()
			if err == nil && !g.walk(fn) {
				return false
			}
		}
	}
	return true
}

// ByID finds a shape by id, searching nested groups.
func (t *ShapeTree) ByID(id uint32) (*Shape, bool) {
	var found *Shape
	t.Walk(func(s *Shape) bool {
		if s.ID() == id {
			found = s
			return false
		}
		return true
	})
	return found, found != nil
}

// ByName finds the first shape with the given name, searching nested groups.
func (t *ShapeTree) ByName(name string) (*Shape, bool) {
	var found *Shape
	t.Walk(func(s *Shape) bool {
		if s.Name() == name {
			found = s
			return false
		}
		return true
	})
	return found, found != nil
}

// IDs returns the ids in use in the tree's id space in document order,
// including the id of the tree element itself.
func (t *ShapeTree) IDs() []uint32 {
	var ids []uint32
	for _, n := range t.idRoot.Descendants("cNvPr") {
		ids = append(ids, readIdentity(n).ID)
	}
	return ids
}

// maxID returns the largest id in the tree's id space. ok is false when
// the tree has no identity-bearing element at all.
func (t *ShapeTree) maxID() (top uint32, ok bool) {
	for _, n := range t.idRoot.Descendants("cNvPr") {
		ok = true
		if id := readIdentity(n).ID; id > top {
			top = id
		}
	}
	return top, ok
}

func (t *ShapeTree) names() map[string]struct{} {
	names := make(map[string]struct{})
	for _, n := range t.idRoot.Descendants("cNvPr") {
		if v, ok := n.Attr("name"); ok {
			names[v] = struct{}{}
		}
	}
	return names
}

// uniqueName returns candidate if no existing name equals it, otherwise
// numberedName(candidate). Gaps are never filled: with "Shape 3" deleted, a
// tree holding "Shape" and "Shape 4" still yields "Shape 5".
func uniqueName(candidate string, existing map[string]struct{}) string {
	if _, taken := existing[candidate]; !taken {
		return candidate
	}
	return numberedName(candidate, existing)
}

// numberedName always appends a number to base, one more than the largest
// number already following base in an existing name.
func numberedName(base string, existing map[string]struct{}) string {
	highest := 0
	for name := range existing {
		rest, ok := strings.CutPrefix(name, base)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n > highest {
			highest = n
		}
	}
	return base + " " + strconv.Itoa(highest+1)
}

// insertionIndex returns the child index new shapes are inserted at: the
// end of the tree, before any trailing p:extLst.
func (t *ShapeTree) insertionIndex() int {
	for i := len(t.root.children) - 1; i >= 0; i-- {
		if t.root.children[i].Name.Local == "extLst" {
			return i
		}
	}
	return len(t.root.children)
}

// CloneNode appends a deep copy of src to the tree. Every p:cNvPr in the
// copy receives a fresh id above the current maximum and a name that is
// unique in the tree. src itself is not modified and may belong to any
// tree. Relationships referenced by the copy are not rebound; use Clone for
// shapes coming from another part.
func (t *ShapeTree) CloneNode(src *Node) (*Node, error) {
	return t.cloneNode(src, t.insertionIndex())
}

func (t *ShapeTree) cloneNode(src *Node, at int) (*Node, error) {
	if !isShapeElement(src) {
		return nil, fmt.Errorf("cannot clone %s: not a shape element", src.Tag())
	}
	top, ok := t.maxID()
	if !ok {
		return nil, fmt.Errorf("%w: tree has no identity-bearing element", ErrInvariantViolation)
	}

	cp := src.Clone()
	idNodes := cp.Descendants("cNvPr")
	if identityNode(cp) == nil {
		return nil, fmt.Errorf("%w: source %s has no cNvPr", ErrInvariantViolation, src.Tag())
	}
	if uint64(top)+uint64(len(idNodes)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: shape id space exhausted", ErrInvariantViolation)
	}

	names := t.names()
	for _, n := range idNodes {
		top++
		n.SetAttr("id", strconv.FormatUint(uint64(top), 10))
		if name, ok := n.Attr("name"); ok {
			name = uniqueName(name, names)
			n.SetAttr("name", name)
			names[name] = struct{}{}
		}
	}

	t.root.InsertChildAt(at, cp)
	id := readIdentity(identityNode(cp))
	t.logger().Debug("shape cloned", "part", t.partName(), "id", id.ID, "name", id.Name)
	return cp, nil
}

func (t *ShapeTree) partName() string {
	if t.part == nil {
		return ""
	}
	return t.part.name
}

// Clone appends a copy of src to the tree and returns its handle. When src
// lives in another part, every r:* attribute of the copy is rebound to a
// relationship of this tree's part pointing at the same target.
func (t *ShapeTree) Clone(src *Shape) (*Shape, error) {
	if src.removed {
		return nil, ErrShapeRemoved
	}
	n, err := t.CloneNode(src.node)
	if err != nil {
		return nil, err
	}
	if src.tree.part != nil && t.part != nil && src.tree.part != t.part {
		if err := t.rebind(n, src.tree.part); err != nil {
			n.Remove()
			return nil, err
		}
	}
	return t.handle(n), nil
}

// rebind rewrites relationship references of n, copied from part from, so
// that they resolve in t.part.
func (t *ShapeTree) rebind(n *Node, from *Part) error {
	ids := make(map[string]string)
	var firstErr error
	n.Walk(func(d *Node) bool {
		for _, a := range d.Attrs() {
			if a.Name.Space != "r" || firstErr != nil {
				continue
			}
			newID, ok := ids[a.Value]
			if !ok {
				var err error
				newID, err = t.rebindOne(from, a.Value)
				if err != nil {
					firstErr = err
					return false
				}
				ids[a.Value] = newID
			}
			d.SetAttr(qualified(a.Name), newID)
		}
		return true
	})
	return firstErr
}

func (t *ShapeTree) rebindOne(from *Part, id string) (string, error) {
	rel, err := from.Relationship(id)
	if err != nil {
		return "", err
	}
	if rel.External() {
		return t.part.AddExternalRelationship(rel.Type, rel.Target)
	}
	target, err := from.Related(id)
	if err != nil {
		return "", err
	}
	if existing, ok := t.part.RelationshipTo(target, rel.Type); ok {
		return existing, nil
	}
	return t.part.AddRelationship(rel.Type, target)
}

// Remove detaches the shape from the tree. Ids and names of the remaining
// shapes are left untouched. The shape's relationships stay in the part.
func (t *ShapeTree) Remove(s *Shape) error {
	if s.removed {
		return ErrShapeRemoved
	}
	if s.node.Parent() != t.root {
		return fmt.Errorf("shape %q is not a direct child of this tree", s.Name())
	}
	id := s.Identity()
	s.node.Remove()
	s.removed = true
	s.invalidate()
	delete(t.handles, s.node)
	t.logger().Debug("shape removed", "part", t.partName(), "id", id.ID, "name", id.Name)
	return nil
}

// Remove detaches the shape from its tree.
func (s *Shape) Remove() error {
	return s.tree.Remove(s)
}

// Duplicate clones the shape into its own tree.
func (s *Shape) Duplicate() (*Shape, error) {
	return s.tree.Clone(s)
}
