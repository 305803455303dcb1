package pptdom

import (
	"fmt"
	"strconv"
	"strings"
)

// ShapeKind is the closed set of shape kinds a shape tree element can be.
type ShapeKind int

const (
	ShapeUnknown ShapeKind = iota
	ShapeAutoShape
	ShapeTextBox
	ShapePicture
	ShapeVideo
	ShapeAudio
	ShapeTable
	ShapeChart
	ShapeOLEObject
	ShapeGroup
	ShapeConnector
	// ShapeChartEx is a 2016 chart (waterfall, sunburst, ...). Its part
	// uses the cx: schema, which Chart does not read.
	ShapeChartEx
)

var shapeKindNames = [...]string{
	ShapeUnknown:   "unknown",
	ShapeAutoShape: "autoshape",
	ShapeTextBox:   "textbox",
	ShapePicture:   "picture",
	ShapeVideo:     "video",
	ShapeAudio:     "audio",
	ShapeTable:     "table",
	ShapeChart:     "chart",
	ShapeOLEObject: "ole",
	ShapeGroup:     "group",
	ShapeConnector: "connector",
	ShapeChartEx:   "chartex",
}

func (k ShapeKind) String() string {
	if k < 0 || int(k) >= len(shapeKindNames) {
		return "ShapeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return shapeKindNames[k]
}

// graphicData uris
const (
	uriTable   = "http://schemas.openxmlformats.org/drawingml/2006/table"
	uriChart   = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	uriChartEx = "http://schemas.microsoft.com/office/drawing/2014/chartex"
	uriOLE     = "http://schemas.openxmlformats.org/presentationml/2006/ole"
)

// isShapeElement reports whether n is a shape tree element that carries an
// identity: a shape, picture, graphic frame, group, connector or content part.
func isShapeElement(n *Node) bool {
	if n.Name.Space != "p" {
		return false
	}
	switch n.Name.Local {
	case "sp", "pic", "graphicFrame", "grpSp", "cxnSp", "contentPart":
		return true
	}
	return false
}

// classify determines the kind of a shape tree element in one pass over its
// tag and discriminating attributes.
func classify(n *Node) ShapeKind {
	if n == nil || n.Name.Space != "p" {
		return ShapeUnknown
	}
	switch n.Name.Local {
	case "sp":
		if n.Path("nvSpPr", "cNvSpPr").AttrOr("txBox", "") == "1" {
			return ShapeTextBox
		}
		return ShapeAutoShape
	case "pic":
		nvPr := n.Path("nvPicPr", "nvPr")
		switch {
		case nvPr.Child("videoFile") != nil:
			return ShapeVideo
		case nvPr.Child("audioFile") != nil, nvPr.Child("wavAudioFile") != nil:
			return ShapeAudio
		}
		return ShapePicture
	case "graphicFrame":
		switch n.Path("graphic", "graphicData").AttrOr("uri", "") {
		case uriTable:
			return ShapeTable
		case uriChart:
			return ShapeChart
		case uriChartEx:
			return ShapeChartEx
		case uriOLE:
			return ShapeOLEObject
		}
		return ShapeUnknown
	case "grpSp":
		return ShapeGroup
	case "cxnSp":
		return ShapeConnector
	}
	return ShapeUnknown
}

// nvPropsNode returns the non-visual properties element of a shape
// (p:nvSpPr, p:nvPicPr, p:nvGrpSpPr, ...).
func nvPropsNode(n *Node) *Node {
	for _, c := range n.children {
		if strings.HasPrefix(c.Name.Local, "nv") && strings.HasSuffix(c.Name.Local, "Pr") {
			return c
		}
	}
	return nil
}

// identityNode returns the p:cNvPr element holding a shape's id and name.
func identityNode(n *Node) *Node {
	return nvPropsNode(n).Child("cNvPr")
}

// ShapeIdentity is the id, name and visibility of a shape.
type ShapeIdentity struct {
	ID     uint32
	Name   string
	Hidden bool
}

func readIdentity(cNvPr *Node) ShapeIdentity {
	var id ShapeIdentity
	if v, err := strconv.ParseUint(cNvPr.AttrOr("id", ""), 10, 32); err == nil {
		id.ID = uint32(v)
	}
	id.Name = cNvPr.AttrOr("name", "")
	switch cNvPr.AttrOr("hidden", "") {
	case "1", "true":
		id.Hidden = true
	}
	return id
}

// Shape is a handle to one element of a shape tree. Handles are stable: a
// tree returns the same *Shape for the same element until it is removed.
type Shape struct {
	node    *Node
	tree    *ShapeTree
	kind    ShapeKind
	removed bool

	idNode   *Node
	idGen    uint64
	identity ShapeIdentity

	textGen uint64
	textOK  bool
	text    string

	fillKey []uint64
	fillOK  bool
	fill    *Fill

	groupTree *ShapeTree
}

func newShape(tree *ShapeTree, n *Node) *Shape {
	return &Shape{node: n, tree: tree, kind: classify(n)}
}

// Node returns the underlying XML element.
func (s *Shape) Node() *Node { return s.node }

func (s *Shape) Kind() ShapeKind { return s.kind }

// Tree returns the shape tree that contains the shape.
func (s *Shape) Tree() *ShapeTree { return s.tree }

// Part returns the part hosting the shape.
func (s *Shape) Part() *Part { return s.tree.part }

// Removed reports whether the shape has been removed from its tree.
func (s *Shape) Removed() bool { return s.removed }

func (s *Shape) invalidate() {
	s.idNode = nil
	s.textOK = false
	s.fillOK = false
	s.fill = nil
	s.groupTree = nil
}

// Identity returns the id, name and hidden flag. The value is computed on
// first access and recomputed only after p:cNvPr changes.
func (s *Shape) Identity() ShapeIdentity {
	if s.removed {
		return s.identity
	}
	n := identityNode(s.node)
	if n == nil {
		return ShapeIdentity{}
	}
	if n != s.idNode || n.Generation() != s.idGen {
		s.identity = readIdentity(n)
		s.idNode = n
		s.idGen = n.Generation()
	}
	return s.identity
}

func (s *Shape) ID() uint32 { return s.Identity().ID }
func (s *Shape) Name() string { return s.Identity().Name }
func (s *Shape) Hidden() bool { return s.Identity().Hidden }

func (s *Shape) mutableIdentity() (*Node, error) {
	if s.removed {
		return nil, ErrShapeRemoved
	}
	n := identityNode(s.node)
	if n == nil {
		return nil, fmt.Errorf("%w: shape has no cNvPr", ErrInvariantViolation)
	}
	return n, nil
}

// SetName renames the shape. The name is used as given; uniqueness is only
// enforced when shapes are cloned.
func (s *Shape) SetName(name string) error {
	n, err := s.mutableIdentity()
	if err != nil {
		return err
	}
	n.SetAttr("name", name)
	return nil
}

func (s *Shape) SetHidden(hidden bool) error {
	n, err := s.mutableIdentity()
	if err != nil {
		return err
	}
	if hidden {
		n.SetAttr("hidden", "1")
	} else {
		n.RemoveAttr("hidden")
	}
	return nil
}

// Placeholder returns the placeholder key when the shape is a placeholder.
func (s *Shape) Placeholder() (PlaceholderKey, bool) {
	return placeholderKeyOf(s.node)
}

// Inherited returns the chain of placeholder shapes s inherits from, closest
// first: the matching layout placeholder, then its master placeholder.
// Each step resolves the key of the shape found at the previous level.
func (s *Shape) Inherited() []*Shape {
	key, ok := s.Placeholder()
	if !ok {
		return nil
	}
	var chain []*Shape
	for t := s.tree.base(); t != nil; t = t.base() {
		m, ok := ResolvePlaceholder(t, key)
		if !ok {
			break
		}
		chain = append(chain, m)
		key, _ = m.Placeholder()
	}
	return chain
}

// xfrm returns the transform element of the shape, or nil.
func (s *Shape) xfrm() *Node {
	switch s.node.Name.Local {
	case "graphicFrame":
		return s.node.Child("xfrm")
	case "grpSp":
		return s.node.Path("grpSpPr", "xfrm")
	}
	return s.node.Path("spPr", "xfrm")
}

type axis int

const (
	axisX axis = iota
	axisY
	axisW
	axisH
)

func (a axis) locate(xfrm *Node) (*Node, string) {
	switch a {
	case axisX:
		return xfrm.Child("off"), "x"
	case axisY:
		return xfrm.Child("off"), "y"
	case axisW:
		return xfrm.Child("ext"), "cx"
	}
	return xfrm.Child("ext"), "cy"
}

func ownGeometry(s *Shape, a axis) (int64, bool) {
	x := s.xfrm()
	if x == nil {
		return 0, false
	}
	n, attr := a.locate(x)
	v, ok := n.Attr(attr)
	if !ok {
		return 0, false
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// geometry returns the shape's own value or, for placeholders without a
// transform, the first value supplied along the inheritance chain.
func (s *Shape) geometry(a axis) int64 {
	if v, ok := ownGeometry(s, a); ok {
		return v
	}
	for _, in := range s.Inherited() {
		if v, ok := ownGeometry(in, a); ok {
			return v
		}
	}
	return 0
}

// X returns the horizontal offset in EMU.
func (s *Shape) X() int64 { return s.geometry(axisX) }

// Y returns the vertical offset in EMU.
func (s *Shape) Y() int64 { return s.geometry(axisY) }
func (s *Shape) Width() int64 { return s.geometry(axisW) }
func (s *Shape) Height() int64 { return s.geometry(axisH) }

func (s *Shape) SetX(emu int64) error { return s.setGeometry(axisX, emu) }
func (s *Shape) SetY(emu int64) error { return s.setGeometry(axisY, emu) }
func (s *Shape) SetWidth(emu int64) error { return s.setGeometry(axisW, emu) }
func (s *Shape) SetHeight(emu int64) error { return s.setGeometry(axisH, emu) }

func (s *Shape) units() *UnitConverter { return s.tree.units() }

func (s *Shape) XPixels() float64 { return s.units().ToPixelsX(s.X()) }
func (s *Shape) YPixels() float64 { return s.units().ToPixelsY(s.Y()) }
func (s *Shape) WidthPixels() float64 { return s.units().ToPixelsX(s.Width()) }
func (s *Shape) HeightPixels() float64 { return s.units().ToPixelsY(s.Height()) }

func (s *Shape) SetXPixels(px float64) error { return s.SetX(s.units().ToEmuX(px)) }
func (s *Shape) SetYPixels(px float64) error { return s.SetY(s.units().ToEmuY(px)) }
func (s *Shape) SetWidthPixels(px float64) error { return s.SetWidth(s.units().ToEmuX(px)) }
func (s *Shape) SetHeightPixels(px float64) error { return s.SetHeight(s.units().ToEmuY(px)) }

func (s *Shape) setGeometry(a axis, emu int64) error {
	if s.removed {
		return ErrShapeRemoved
	}
	x, err := s.ensureXfrm()
	if err != nil {
		return err
	}
	n, attr := a.locate(x)
	n.SetAttr(attr, strconv.FormatInt(emu, 10))
	return nil
}

// ensureXfrm returns the shape's transform, creating one from the effective
// (possibly inherited) geometry so that setting one coordinate keeps the
// others where they were.
func (s *Shape) ensureXfrm() (*Node, error) {
	if x := s.xfrm(); x != nil {
		if x.Child("off") == nil {
			x.InsertChildAt(0, NewNode("a:off", "x", "0", "y", "0"))
		}
		if x.Child("ext") == nil {
			x.AppendChild(NewNode("a:ext", "cx", "0", "cy", "0"))
		}
		return x, nil
	}

	off := NewNode("a:off", "x", strconv.FormatInt(s.X(), 10), "y", strconv.FormatInt(s.Y(), 10))
	ext := NewNode("a:ext", "cx", strconv.FormatInt(s.Width(), 10), "cy", strconv.FormatInt(s.Height(), 10))

	var (
		host *Node
		tag  = "a:xfrm"
	)
	switch s.node.Name.Local {
	case "graphicFrame":
		host, tag = s.node, "p:xfrm"
	case "grpSp":
		host = s.ensureChildAfterNV("p:grpSpPr")
	case "sp", "pic", "cxnSp":
		host = s.ensureChildAfterNV("p:spPr")
	default:
		return nil, fmt.Errorf("shape %s has no transform", s.node.Tag())
	}

	x := NewNode(tag)
	x.AppendChild(off)
	x.AppendChild(ext)
	if host == s.node {
		host.InsertChildAt(nvPropsNode(s.node).Index()+1, x)
	} else {
		host.InsertChildAt(0, x)
	}
	return x, nil
}

// ensureChildAfterNV returns the named properties child, inserting it after
// the non-visual properties (and blip fill for pictures) when absent.
func (s *Shape) ensureChildAfterNV(tag string) *Node {
	want := splitQName(tag)
	if c := s.node.Child(want.Local); c != nil {
		return c
	}
	pos := 0
	if nv := nvPropsNode(s.node); nv != nil {
		pos = nv.Index() + 1
	}
	if bf := s.node.Child("blipFill"); bf != nil {
		pos = bf.Index() + 1
	}
	return s.node.InsertChildAt(pos, NewNode(tag))
}

// Text returns the text of the shape: the a:t runs of each paragraph
// concatenated, paragraphs separated by newlines.
func (s *Shape) Text() string {
	if s.textOK && s.textGen == s.node.Generation() {
		return s.text
	}
	var paras []string
	for _, p := range s.node.Descendants("p") {
		if p.Name.Space != "a" {
			continue
		}
		var sb strings.Builder
		p.Walk(func(n *Node) bool {
			switch {
			case n.Name.Space == "a" && n.Name.Local == "t":
				sb.WriteString(n.Text())
			case n.Name.Space == "a" && n.Name.Local == "br":
				sb.WriteByte('\v')
			}
			return true
		})
		paras = append(paras, sb.String())
	}
	s.text = strings.Join(paras, "\n")
	s.textGen = s.node.Generation()
	s.textOK = true
	return s.text
}

// SetText replaces the text body of an auto shape or text box with one
// paragraph per line, keeping the formatting of the first run.
func (s *Shape) SetText(text string) error {
	if s.removed {
		return ErrShapeRemoved
	}
	body := s.node.Child("txBody")
	if body == nil {
		if s.node.Name.Local != "sp" {
			return fmt.Errorf("shape %q (%s) has no text body", s.Name(), s.kind)
		}
		body = s.node.AppendChild(NewNode("p:txBody"))
		body.AppendChild(NewNode("a:bodyPr"))
		body.AppendChild(NewNode("a:lstStyle"))
	}

	var pPr, rPr *Node
	if first := body.Child("p"); first != nil {
		if n := first.Child("pPr"); n != nil {
			pPr = n.Clone()
		}
		if r := first.Child("r"); r != nil {
			if n := r.Child("rPr"); n != nil {
				rPr = n.Clone()
			}
		}
	}
	for _, p := range body.ChildrenNamed("p") {
		p.Remove()
	}

	for _, line := range strings.Split(text, "\n") {
		p := NewNode("a:p")
		if pPr != nil {
			p.AppendChild(pPr.Clone())
		}
		if line != "" {
			r := p.AppendChild(NewNode("a:r"))
			if rPr != nil {
				r.AppendChild(rPr.Clone())
			}
			r.AppendChild(NewNode("a:t")).SetText(line)
		}
		body.AppendChild(p)
	}
	return nil
}

// Group returns the nested shape tree of a group shape. The nested tree
// shares the id space of the root tree.
func (s *Shape) Group() (*ShapeTree, error) {
	if s.kind != ShapeGroup {
		return nil, fmt.Errorf("shape %q is a %s, not a group", s.Name(), s.kind)
	}
	if s.removed {
		return nil, ErrShapeRemoved
	}
	if s.groupTree == nil {
		s.groupTree = &ShapeTree{
			root:    s.node,
			idRoot:  s.tree.idRoot,
			part:    s.tree.part,
			pres:    s.tree.pres,
			inherit: s.tree.inherit,
			parent:  s,
			handles: make(map[*Node]*Shape),
		}
	}
	return s.groupTree, nil
}
