package pptdom

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// xmlDeclaration is written at the top of every serialized XML part.
const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Node is a mutable XML element inside a part.
//
// Prefixes are kept exactly as written in the source part, so Name.Space holds
// the prefix ("p", "a", "c"), never the namespace URI. OOXML producers use the
// conventional prefixes, and matching on them keeps lookups simple.
//
// Every node carries a generation counter which changes whenever the node or
// anything below it is modified. Caches layered over the tree compare
// generations to decide when to recompute.
type Node struct {
	Name     xml.Name
	attrs    []xml.Attr
	text     string
	children []*Node
	parent   *Node
	gen      uint64
}

// NewNode creates a detached node from a qualified tag such as "p:sp" and
// optional attribute name/value pairs.
func NewNode(tag string, attrs ...string) *Node {
	n := &Node{Name: splitQName(tag)}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.attrs = append(n.attrs, xml.Attr{Name: splitQName(attrs[i]), Value: attrs[i+1]})
	}
	return n
}

func splitQName(q string) xml.Name {
	if i := strings.IndexByte(q, ':'); i >= 0 {
		return xml.Name{Space: q[:i], Local: q[i+1:]}
	}
	return xml.Name{Local: q}
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// Tag returns the qualified tag, e.g. "p:cNvPr".
func (n *Node) Tag() string { return qualified(n.Name) }

// Is reports whether the node's local name is local.
func (n *Node) Is(local string) bool { return n != nil && n.Name.Local == local }

func (n *Node) Parent() *Node { return n.parent }

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Children returns a copy of the node's child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child returns the first direct child with the given local name, or nil.
func (n *Node) Child(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the direct children with the given local name.
func (n *Node) ChildrenNamed(local string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.children {
		if c.Name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// Path follows a chain of first children by local name and returns the
// last node, or nil as soon as a step is missing.
func (n *Node) Path(locals ...string) *Node {
	cur := n
	for _, l := range locals {
		cur = cur.Child(l)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Descendants returns all nodes below n with the given local name in document
// order. An empty name matches every descendant.
func (n *Node) Descendants(local string) []*Node {
	var out []*Node
	for _, c := range n.children {
		c.Walk(func(d *Node) bool {
			if local == "" || d.Name.Local == local {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

func (n *Node) findAttr(name string) int {
	want := splitQName(name)
	for i, a := range n.attrs {
		if a.Name == want {
			return i
		}
	}
	return -1
}

// Attr returns the value of the attribute with the given qualified name
// ("id", "r:embed").
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	if i := n.findAttr(name); i >= 0 {
		return n.attrs[i].Value, true
	}
	return "", false
}

// AttrOr returns the attribute value or def when it is absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// SetAttr sets or adds an attribute, keeping the attribute order stable.
func (n *Node) SetAttr(name, value string) {
	if i := n.findAttr(name); i >= 0 {
		if n.attrs[i].Value == value {
			return
		}
		n.attrs[i].Value = value
	} else {
		n.attrs = append(n.attrs, xml.Attr{Name: splitQName(name), Value: value})
	}
	n.touch()
}

// RemoveAttr deletes an attribute and reports whether it existed.
func (n *Node) RemoveAttr(name string) bool {
	i := n.findAttr(name)
	if i < 0 {
		return false
	}
	n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
	n.touch()
	return true
}

// Attrs returns a copy of the attribute list.
func (n *Node) Attrs() []xml.Attr {
	out := make([]xml.Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return n.text
}

func (n *Node) SetText(s string) {
	if n.text == s {
		return
	}
	n.text = s
	n.touch()
}

// Generation returns a counter that changes whenever n or one of its
// descendants is modified.
func (n *Node) Generation() uint64 { return n.gen }

// touch bumps the generation of n and all of its ancestors.
func (n *Node) touch() {
	for cur := n; cur != nil; cur = cur.parent {
		cur.gen++
	}
}

// Clone returns a detached deep copy of n.
func (n *Node) Clone() *Node {
	c := &Node{Name: n.Name, text: n.text}
	if len(n.attrs) > 0 {
		c.attrs = make([]xml.Attr, len(n.attrs))
		copy(c.attrs, n.attrs)
	}
	if len(n.children) > 0 {
		c.children = make([]*Node, len(n.children))
		for i, ch := range n.children {
			cc := ch.Clone()
			cc.parent = c
			c.children[i] = cc
		}
	}
	return c
}

// AppendChild adds c as the last child of n, detaching it from any previous
// parent first. It returns c.
func (n *Node) AppendChild(c *Node) *Node {
	return n.InsertChildAt(len(n.children), c)
}

// InsertChildAt inserts c at position i among n's children. Out of range
// positions are clamped.
func (n *Node) InsertChildAt(i int, c *Node) *Node {
	if c.parent != nil {
		c.Remove()
	}
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
	c.parent = n
	n.touch()
	return c
}

// Remove detaches n from its parent. It reports false when n had no parent.
func (n *Node) Remove() bool {
	p := n.parent
	if p == nil {
		return false
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
	p.touch()
	n.gen++
	return true
}

// Index returns the position of n among its parent's children or -1.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// ParseNode decodes an XML document into a node tree and returns its root
// element. Whitespace-only character data is dropped except inside text runs.
func ParseNode(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		root  *Node
		stack []*Node
	)
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name}
			if len(t.Attr) > 0 {
				n.attrs = make([]xml.Attr, len(t.Attr))
				copy(n.attrs, t.Attr)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("failed to parse xml: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				n.parent = parent
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1].Name != t.Name {
				return nil, fmt.Errorf("failed to parse xml: unexpected end element %s", qualified(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			// a:t keeps significant whitespace
			if len(bytes.TrimSpace(t)) == 0 && top.Name.Local != "t" {
				continue
			}
			top.text += string(t)
		}
	}
	if root == nil {
		return nil, fmt.Errorf("failed to parse xml: no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("failed to parse xml: unclosed element %s", stack[len(stack)-1].Tag())
	}
	return root, nil
}

// MustParseNode is like ParseNode but panics on error. It is meant for
// templates that are known to be well formed.
func MustParseNode(s string) *Node {
	n, err := ParseNode([]byte(s))
	if err != nil {
		panic(err)
	}
	return n
}

// Marshal serializes n as a standalone XML document.
func (n *Node) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	_ = n.WriteXML(&buf)
	return buf.Bytes()
}

// WriteXML writes n and its subtree without an XML declaration.
func (n *Node) WriteXML(w io.Writer) error {
	bw := bufio.NewWriter(w)
	n.write(bw)
	return bw.Flush()
}

func (n *Node) write(w *bufio.Writer) {
	tag := n.Tag()
	w.WriteByte('<')
	w.WriteString(tag)
	for _, a := range n.attrs {
		w.WriteByte(' ')
		w.WriteString(qualified(a.Name))
		w.WriteString(`="`)
		_ = xml.EscapeText(w, []byte(a.Value))
		w.WriteByte('"')
	}
	if len(n.children) == 0 && n.text == "" {
		w.WriteString("/>")
		return
	}
	w.WriteByte('>')
	if n.text != "" {
		_ = xml.EscapeText(w, []byte(n.text))
	}
	for _, c := range n.children {
		c.write(w)
	}
	w.WriteString("</")
	w.WriteString(tag)
	w.WriteByte('>')
}

// String returns the serialized subtree, mainly for debugging and tests.
func (n *Node) String() string {
	var sb strings.Builder
	_ = n.WriteXML(&sb)
	return sb.String()
}
