package pptdom

import (
	"strconv"
)

// PlaceholderType is the value of the p:ph type attribute.
type PlaceholderType string

const (
	// PlaceholderCustom is a placeholder without a type attribute.
	PlaceholderCustom     PlaceholderType = ""
	PlaceholderTitle      PlaceholderType = "title"
	PlaceholderBody       PlaceholderType = "body"
	PlaceholderCtrTitle   PlaceholderType = "ctrTitle"
	PlaceholderSubTitle   PlaceholderType = "subTitle"
	PlaceholderDate       PlaceholderType = "dt"
	PlaceholderSlideNum   PlaceholderType = "sldNum"
	PlaceholderFooter     PlaceholderType = "ftr"
	PlaceholderHeader     PlaceholderType = "hdr"
	PlaceholderObject     PlaceholderType = "obj"
	PlaceholderChart      PlaceholderType = "chart"
	PlaceholderTable      PlaceholderType = "tbl"
	PlaceholderClipArt    PlaceholderType = "clipArt"
	PlaceholderDiagram    PlaceholderType = "dgm"
	PlaceholderMedia      PlaceholderType = "media"
	PlaceholderSlideImage PlaceholderType = "sldImg"
	PlaceholderPicture    PlaceholderType = "pic"
)

// PlaceholderKey identifies a placeholder within a shape tree.
type PlaceholderKey struct {
	Type     PlaceholderType
	Index    uint32
	HasIndex bool
}

func (k PlaceholderKey) String() string {
	t := string(k.Type)
	if t == "" {
		t = "custom"
	}
	if !k.HasIndex {
		return t
	}
	return t + "#" + strconv.FormatUint(uint64(k.Index), 10)
}

// Matches reports an exact match: same type, and the same index or no index
// on either side.
func (k PlaceholderKey) Matches(o PlaceholderKey) bool {
	if k.Type != o.Type || k.HasIndex != o.HasIndex {
		return false
	}
	return !k.HasIndex || k.Index == o.Index
}

// placeholderNode returns the p:ph marker of a shape node, or nil.
func placeholderNode(n *Node) *Node {
	nv := nvPropsNode(n)
	if nv == nil {
		return nil
	}
	return nv.Path("nvPr", "ph")
}

// placeholderKeyOf reads the key of a shape node. Unparseable idx values
// are treated as absent.
func placeholderKeyOf(n *Node) (PlaceholderKey, bool) {
	ph := placeholderNode(n)
	if ph == nil {
		return PlaceholderKey{}, false
	}
	key := PlaceholderKey{Type: PlaceholderType(ph.AttrOr("type", ""))}
	if v, ok := ph.Attr("idx"); ok {
		if idx, err := strconv.ParseUint(v, 10, 32); err == nil {
			key.Index = uint32(idx)
			key.HasIndex = true
		}
	}
	return key, true
}

// ResolvePlaceholder finds the placeholder shape in tree that key inherits
// from. Direct children carrying a placeholder marker are scanned in
// document order for an exact match first; when there is none and key has
// a type, the first shape of the same type wins. No match is reported as
// false, not as an error.
func ResolvePlaceholder(tree *ShapeTree, key PlaceholderKey) (*Shape, bool) {
	if tree == nil {
		return nil, false
	}
	type candidate struct {
		node *Node
		key  PlaceholderKey
	}
	var cands []candidate
	for _, c := range tree.root.children {
		if !isShapeElement(c) {
			continue
		}
		if k, ok := placeholderKeyOf(c); ok {
			cands = append(cands, candidate{c, k})
		}
	}

	for _, c := range cands {
		if c.key.Matches(key) {
			return tree.handle(c.node), true
		}
	}
	if key.Type == PlaceholderCustom {
		return nil, false
	}
	for _, c := range cands {
		if c.key.Type == key.Type {
			return tree.handle(c.node), true
		}
	}
	return nil, false
}
