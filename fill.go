package pptdom

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// FillType represents the type of fill.
type FillType int

const (
	// FillUnset means neither the shape nor its placeholder chain defines
	// a fill; the theme style applies.
	FillUnset FillType = iota
	FillNone
	FillSolid
	FillGradient
	FillPattern
	FillPicture
	FillGroup
)

// Fill is the resolved fill of a shape.
type Fill struct {
	Type FillType

	// Color is an RRGGBB hex value for RGB colors, or the scheme/preset
	// color name when Scheme is set.
	Color  string
	Scheme bool

	// RelID is the relationship of a picture fill's image.
	RelID string

	part *Part
}

// Picture returns the image bytes of a picture fill.
func (f *Fill) Picture() ([]byte, error) {
	if f.Type != FillPicture || f.part == nil {
		return nil, fmt.Errorf("fill is not a picture fill")
	}
	img, err := f.part.Related(f.RelID)
	if err != nil {
		return nil, err
	}
	return img.Data(), nil
}

var fillTags = map[string]FillType{
	"noFill":    FillNone,
	"solidFill": FillSolid,
	"gradFill":  FillGradient,
	"pattFill":  FillPattern,
	"blipFill":  FillPicture,
	"grpFill":   FillGroup,
}

// propsNode returns the visual properties element that carries fill and
// geometry: p:spPr, or p:grpSpPr for groups.
func (s *Shape) propsNode() *Node {
	if s.node.Name.Local == "grpSp" {
		return s.node.Child("grpSpPr")
	}
	return s.node.Child("spPr")
}

func readFill(props *Node, part *Part) (*Fill, bool) {
	if props == nil {
		return nil, false
	}
	for _, c := range props.children {
		t, ok := fillTags[c.Name.Local]
		if !ok || c.Name.Space != "a" {
			continue
		}
		f := &Fill{Type: t, part: part}
		switch t {
		case FillSolid:
			readColor(c, f)
		case FillGradient:
			// first stop
			if gs := c.Path("gsLst", "gs"); gs != nil {
				readColor(gs, f)
			}
		case FillPattern:
			if fg := c.Child("fgClr"); fg != nil {
				readColor(fg, f)
			}
		case FillPicture:
			f.RelID = c.Child("blip").AttrOr("r:embed", "")
		}
		return f, true
	}
	return nil, false
}

func readColor(n *Node, f *Fill) {
	for _, c := range n.children {
		switch c.Name.Local {
		case "srgbClr":
			f.Color = strings.ToUpper(c.AttrOr("val", ""))
			return
		case "schemeClr", "prstClr", "sysClr":
			f.Color = c.AttrOr("val", "")
			f.Scheme = true
			return
		}
	}
}

// Fill returns the shape's fill. A shape without its own fill element
// takes the fill of the closest placeholder it inherits from. The result is
// cached until the shape or any layout or master tree it inherits from
// changes.
func (s *Shape) Fill() *Fill {
	key := s.inheritKey()
	if s.fillOK && slices.Equal(s.fillKey, key) {
		return s.fill
	}
	f, ok := readFill(s.propsNode(), s.tree.part)
	if !ok {
		f = &Fill{Type: FillUnset}
		for _, in := range s.Inherited() {
			if inf, ok := readFill(in.propsNode(), in.tree.part); ok {
				f = inf
				break
			}
		}
	}
	s.fill, s.fillKey, s.fillOK = f, key, true
	return f
}

// inheritKey is the generation of the shape followed by the generations of
// the trees its placeholder chain walks through.
func (s *Shape) inheritKey() []uint64 {
	key := []uint64{s.node.Generation()}
	if _, ok := s.Placeholder(); !ok {
		return key
	}
	for t := s.tree.base(); t != nil; t = t.base() {
		key = append(key, t.root.Generation())
	}
	return key
}

func isHexColor(s string) bool {
	b, err := hex.DecodeString(s)
	return err == nil && len(b) == 3
}

// SetSolidFill replaces the shape's fill with a solid RGB color given as
// "RRGGBB" (a leading "#" is accepted).
func (s *Shape) SetSolidFill(rgb string) error {
	rgb = strings.ToUpper(strings.TrimPrefix(rgb, "#"))
	if !isHexColor(rgb) {
		return fmt.Errorf("invalid color %q", rgb)
	}
	fill := NewNode("a:solidFill")
	fill.AppendChild(NewNode("a:srgbClr", "val", rgb))
	return s.replaceFill(fill)
}

// SetNoFill makes the shape transparent.
func (s *Shape) SetNoFill() error {
	return s.replaceFill(NewNode("a:noFill"))
}

func (s *Shape) replaceFill(fill *Node) error {
	if s.removed {
		return ErrShapeRemoved
	}
	var props *Node
	switch s.node.Name.Local {
	case "sp", "cxnSp", "pic":
		props = s.ensureChildAfterNV("p:spPr")
	case "grpSp":
		props = s.ensureChildAfterNV("p:grpSpPr")
	default:
		return fmt.Errorf("shape %q (%s) cannot be filled", s.Name(), s.kind)
	}

	pos := 0
	for i, c := range props.children {
		if _, ok := fillTags[c.Name.Local]; ok {
			c.Remove()
			props.InsertChildAt(i, fill)
			return nil
		}
		switch c.Name.Local {
		case "xfrm", "custGeom", "prstGeom":
			pos = i + 1
		}
	}
	props.InsertChildAt(pos, fill)
	return nil
}
