package pptdom

import (
	"fmt"
	"strings"
)

// Validate checks every slide, layout and master for structural issues and
// returns an error describing all problems found, or nil if the
// presentation is valid.
func (p *Presentation) Validate() error {
	var errs []string

	if cx, cy := p.slideSize(); cx <= 0 || cy <= 0 {
		errs = append(errs, fmt.Sprintf("slide size %dx%d must be positive", cx, cy))
	}

	for _, s := range p.slides {
		prefix := fmt.Sprintf("slide %d", s.Number())
		for _, e := range validateTree(s.tree) {
			errs = append(errs, prefix+": "+e)
		}
	}
	for _, m := range p.Masters() {
		for _, e := range validateTree(m.tree) {
			errs = append(errs, m.part.name+": "+e)
		}
		for _, l := range m.Layouts() {
			for _, e := range validateTree(l.tree) {
				errs = append(errs, l.part.name+": "+e)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// validateTree reports id and name problems of one id space, plus chart
// series whose formulas cannot be parsed.
func validateTree(t *ShapeTree) []string {
	var errs []string
	ids := make(map[uint32]string)
	names := make(map[string]uint32)

	for _, n := range t.idRoot.Descendants("cNvPr") {
		id := readIdentity(n)
		if id.ID == 0 {
			errs = append(errs, fmt.Sprintf("shape %q has no positive id (%q)", id.Name, n.AttrOr("id", "")))
			continue
		}
		if other, dup := ids[id.ID]; dup {
			errs = append(errs, fmt.Sprintf("id %d is used by %q and %q", id.ID, other, id.Name))
		} else {
			ids[id.ID] = id.Name
		}
		// the tree element itself is unnamed in most files
		if id.Name == "" {
			continue
		}
		if other, dup := names[id.Name]; dup {
			errs = append(errs, fmt.Sprintf("name %q is used by ids %d and %d", id.Name, other, id.ID))
		} else {
			names[id.Name] = id.ID
		}
	}

	t.Walk(func(s *Shape) bool {
		if s.kind != ShapeChart {
			return true
		}
		c, err := s.Chart()
		if err != nil {
			errs = append(errs, fmt.Sprintf("chart %q: %v", s.Name(), err))
			return true
		}
		for i, ser := range c.Series() {
			if _, err := ser.Points(); err != nil {
				errs = append(errs, fmt.Sprintf("chart %q series %d: %v", s.Name(), i+1, err))
			}
		}
		return true
	})
	return errs
}
