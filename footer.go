package pptdom

import "fmt"

// Footer manages the footer placeholders of all slides.
type Footer struct {
	pres *Presentation
}

// Footer returns the footer manager of the presentation.
func (p *Presentation) Footer() *Footer { return &Footer{pres: p} }

func slideNumberShape(t *ShapeTree) (*Shape, bool) {
	for _, s := range t.Shapes() {
		if k, ok := s.Placeholder(); ok && k.Type == PlaceholderSlideNum {
			return s, true
		}
	}
	return nil, false
}

// SlideNumberAdded reports whether any slide shows a slide number.
func (f *Footer) SlideNumberAdded() bool {
	for _, s := range f.pres.slides {
		if _, ok := slideNumberShape(s.tree); ok {
			return true
		}
	}
	return false
}

// AddSlideNumber copies the layout's slide number placeholder onto every
// slide that has none. Slides whose layout defines no slide number
// placeholder are left alone.
func (f *Footer) AddSlideNumber() error {
	for _, s := range f.pres.slides {
		if _, ok := slideNumberShape(s.tree); ok {
			continue
		}
		layout, err := s.Layout()
		if err != nil {
			return fmt.Errorf("slide %d: %w", s.Number(), err)
		}
		src, ok := slideNumberShape(layout.tree)
		if !ok {
			f.pres.log.Debug("layout has no slide number placeholder", "slide", s.Number(), "layout", layout.part.name)
			continue
		}
		if _, err := s.tree.Clone(src); err != nil {
			return fmt.Errorf("slide %d: %w", s.Number(), err)
		}
	}
	return nil
}

// RemoveSlideNumber removes the slide number placeholders of all slides.
func (f *Footer) RemoveSlideNumber() error {
	for _, s := range f.pres.slides {
		for {
			sh, ok := slideNumberShape(s.tree)
			if !ok {
				break
			}
			if err := s.tree.Remove(sh); err != nil {
				return err
			}
		}
	}
	return nil
}
