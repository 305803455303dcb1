package pptdom

import (
	"fmt"
)

// Slide is one slide of the presentation.
type Slide struct {
	pres *Presentation
	part *Part
	tree *ShapeTree
}

// Layout is a slide layout; every slide is based on one.
type Layout struct {
	pres *Presentation
	part *Part
	tree *ShapeTree
}

// Master is a slide master; every layout belongs to one.
type Master struct {
	pres *Presentation
	part *Part
	tree *ShapeTree
}

// spTree returns the shape tree element of a slide, layout or master.
func spTree(part *Part) (*Node, error) {
	root, err := part.Root()
	if err != nil {
		return nil, err
	}
	tree := root.Path("cSld", "spTree")
	if tree == nil {
		return nil, fmt.Errorf("%w: %s has no p:cSld/p:spTree", ErrInvariantViolation, part.name)
	}
	return tree, nil
}

func (p *Presentation) newSlide(part *Part) (*Slide, error) {
	root, err := spTree(part)
	if err != nil {
		return nil, err
	}
	s := &Slide{pres: p, part: part}
	s.tree = newPartTree(p, part, root, func() *ShapeTree {
		if l, err := s.Layout(); err == nil {
			return l.tree
		}
		return nil
	})
	return s, nil
}

func (p *Presentation) layout(part *Part) (*Layout, error) {
	if l, ok := p.layouts[part]; ok {
		return l, nil
	}
	root, err := spTree(part)
	if err != nil {
		return nil, err
	}
	l := &Layout{pres: p, part: part}
	l.tree = newPartTree(p, part, root, func() *ShapeTree {
		if m, err := l.Master(); err == nil {
			return m.tree
		}
		return nil
	})
	p.layouts[part] = l
	return l, nil
}

func (p *Presentation) master(part *Part) (*Master, error) {
	if m, ok := p.masters[part]; ok {
		return m, nil
	}
	root, err := spTree(part)
	if err != nil {
		return nil, err
	}
	m := &Master{pres: p, part: part}
	m.tree = newPartTree(p, part, root, nil)
	p.masters[part] = m
	return m, nil
}

func relatedOne(part *Part, relType string) (*Part, error) {
	parts, err := part.RelatedByType(relType)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %s has no %s relationship", ErrPartNotFound, part.name, relTypeName(relType))
	}
	return parts[0], nil
}

func relTypeName(relType string) string {
	for i := len(relType) - 1; i >= 0; i-- {
		if relType[i] == '/' {
			return relType[i+1:]
		}
	}
	return relType
}

func (s *Slide) Part() *Part { return s.part }

// Shapes returns the slide's shape tree.
func (s *Slide) Shapes() *ShapeTree { return s.tree }

// Number returns the 1-based position of the slide, or 0 when the slide is
// no longer part of the presentation.
func (s *Slide) Number() int {
	for i, o := range s.pres.slides {
		if o == s {
			return i + 1
		}
	}
	return 0
}

// Layout returns the layout the slide is based on.
func (s *Slide) Layout() (*Layout, error) {
	part, err := relatedOne(s.part, RelTypeSlideLayout)
	if err != nil {
		return nil, err
	}
	return s.pres.layout(part)
}

// Hidden reports whether the slide is skipped in slide shows (p:sld@show="0").
func (s *Slide) Hidden() bool {
	root, _ := s.part.Root()
	switch root.AttrOr("show", "1") {
	case "0", "false":
		return true
	}
	return false
}

// Hide excludes the slide from slide shows.
func (s *Slide) Hide() {
	root, _ := s.part.Root()
	root.SetAttr("show", "0")
}

// Show includes the slide in slide shows again.
func (s *Slide) Show() {
	root, _ := s.part.Root()
	root.RemoveAttr("show")
}

func (l *Layout) Part() *Part { return l.part }
func (l *Layout) Shapes() *ShapeTree { return l.tree }

// Name returns the layout name (p:cSld@name).
func (l *Layout) Name() string {
	root, _ := l.part.Root()
	return root.Child("cSld").AttrOr("name", "")
}

// Master returns the master the layout belongs to.
func (l *Layout) Master() (*Master, error) {
	part, err := relatedOne(l.part, RelTypeSlideMaster)
	if err != nil {
		return nil, err
	}
	return l.pres.master(part)
}

func (m *Master) Part() *Part { return m.part }
func (m *Master) Shapes() *ShapeTree { return m.tree }

// Layouts returns the layouts listed in p:sldLayoutIdLst.
func (m *Master) Layouts() []*Layout {
	root, _ := m.part.Root()
	var out []*Layout
	for _, id := range root.Path("sldLayoutIdLst").ChildrenNamed("sldLayoutId") {
		part, err := m.part.Related(id.AttrOr("r:id", ""))
		if err != nil {
			m.pres.log.Warn("skipping unresolvable layout", "master", m.part.name, "error", err)
			continue
		}
		l, err := m.pres.layout(part)
		if err != nil {
			m.pres.log.Warn("skipping unreadable layout", "part", part.name, "error", err)
			continue
		}
		out = append(out, l)
	}
	return out
}
