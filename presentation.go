// Package pptdom provides a mutable document object model over PowerPoint
// presentation files (.pptx) following the Office Open XML (OOXML) standard.
//
// A Presentation keeps the package's XML parts as live node trees. Slides,
// layouts and masters expose their shape trees; shapes can be cloned,
// removed and edited in place, and every change is written back on Save.
// Geometry is available both in EMU and in device pixels at a resolution
// chosen by the caller.
//
// A Presentation is not safe for concurrent use.
package pptdom

import (
	"fmt"
	"log/slog"
	"strconv"
)

// Presentation is an open .pptx package.
type Presentation struct {
	pkg   *Package
	main  *Part
	opts  *Options
	units *UnitConverter
	media *MediaRegistry
	log   *slog.Logger

	slides  []*Slide
	layouts map[*Part]*Layout
	masters map[*Part]*Master
}

func newPresentation(pkg *Package, opts *Options) (*Presentation, error) {
	opts = opts.withDefaults()
	units, err := NewUnitConverter(opts.ResolutionX, opts.ResolutionY)
	if err != nil {
		return nil, err
	}
	main, err := pkg.MainPart()
	if err != nil {
		return nil, err
	}
	if _, err := main.Root(); err != nil {
		return nil, err
	}
	p := &Presentation{
		pkg:     pkg,
		main:    main,
		opts:    opts,
		units:   units,
		media:   NewMediaRegistry(),
		log:     opts.Logger,
		layouts: make(map[*Part]*Layout),
		masters: make(map[*Part]*Master),
	}
	if err := p.loadSlides(); err != nil {
		return nil, err
	}
	return p, nil
}

// loadSlides reads p:sldIdLst. Entries whose relationship cannot be
// resolved are skipped with a warning.
func (p *Presentation) loadSlides() error {
	root, _ := p.main.Root()
	for _, id := range root.Path("sldIdLst").ChildrenNamed("sldId") {
		relID, _ := id.Attr("r:id")
		part, err := p.main.Related(relID)
		if err != nil {
			p.log.Warn("skipping unresolvable slide", "rel", relID, "error", err)
			continue
		}
		s, err := p.newSlide(part)
		if err != nil {
			return fmt.Errorf("failed to read slide %s: %w", part.name, err)
		}
		p.slides = append(p.slides, s)
	}
	return nil
}

// Package returns the underlying part graph.
func (p *Presentation) Package() *Package { return p.pkg }

// Units returns the converter used for pixel getters and setters. Changing
// its resolution affects every shape of the presentation.
func (p *Presentation) Units() *UnitConverter { return p.units }

// Media returns the media de-duplication table of this presentation.
func (p *Presentation) Media() *MediaRegistry { return p.media }

// Logger returns the presentation's logger.
func (p *Presentation) Logger() *slog.Logger { return p.log }

// Slides returns the slides in presentation order.
func (p *Presentation) Slides() []*Slide {
	out := make([]*Slide, len(p.slides))
	copy(out, p.slides)
	return out
}

// Slide returns the slide with the given 1-based number.
func (p *Presentation) Slide(number int) (*Slide, error) {
	if number < 1 || number > len(p.slides) {
		return nil, fmt.Errorf("slide %d: %w (1-%d)", number, errOutOfRange, len(p.slides))
	}
	return p.slides[number-1], nil
}

// Masters returns the slide masters listed in p:sldMasterIdLst.
func (p *Presentation) Masters() []*Master {
	root, _ := p.main.Root()
	var out []*Master
	for _, id := range root.Path("sldMasterIdLst").ChildrenNamed("sldMasterId") {
		relID, _ := id.Attr("r:id")
		part, err := p.main.Related(relID)
		if err != nil {
			p.log.Warn("skipping unresolvable master", "rel", relID, "error", err)
			continue
		}
		m, err := p.master(part)
		if err != nil {
			p.log.Warn("skipping unreadable master", "part", part.name, "error", err)
			continue
		}
		out = append(out, m)
	}
	return out
}

func (p *Presentation) slideSize() (cx, cy int64) {
	root, _ := p.main.Root()
	sz := root.Child("sldSz")
	cx, _ = strconv.ParseInt(sz.AttrOr("cx", "0"), 10, 64)
	cy, _ = strconv.ParseInt(sz.AttrOr("cy", "0"), 10, 64)
	return cx, cy
}

// SlideWidth returns the slide width in EMU.
func (p *Presentation) SlideWidth() int64 {
	cx, _ := p.slideSize()
	return cx
}

// SlideHeight returns the slide height in EMU.
func (p *Presentation) SlideHeight() int64 {
	_, cy := p.slideSize()
	return cy
}

func (p *Presentation) SlideWidthPixels() float64 { return p.units.ToPixelsX(p.SlideWidth()) }
func (p *Presentation) SlideHeightPixels() float64 { return p.units.ToPixelsY(p.SlideHeight()) }

// SetSlideSize sets the slide size in EMU. Custom sizes drop the preset
// type attribute.
func (p *Presentation) SetSlideSize(cx, cy int64) error {
	if cx <= 0 || cy <= 0 {
		return fmt.Errorf("invalid slide size %dx%d", cx, cy)
	}
	root, _ := p.main.Root()
	sz := root.Child("sldSz")
	if sz == nil {
		pos := 0
		if l := root.Child("sldIdLst"); l != nil {
			pos = l.Index() + 1
		} else if l := root.Child("sldMasterIdLst"); l != nil {
			pos = l.Index() + 1
		}
		sz = root.InsertChildAt(pos, NewNode("p:sldSz"))
	}
	sz.SetAttr("cx", strconv.FormatInt(cx, 10))
	sz.SetAttr("cy", strconv.FormatInt(cy, 10))
	sz.RemoveAttr("type")
	return nil
}

// SetSlideSizePixels sets the slide size in pixels at the current resolution.
func (p *Presentation) SetSlideSizePixels(w, h float64) error {
	return p.SetSlideSize(p.units.ToEmuX(w), p.units.ToEmuY(h))
}

// Preset slide sizes, the values of p:sldSz@type.
const (
	LayoutScreen4x3   = "screen4x3"
	LayoutScreen16x9  = "screen16x9"
	LayoutScreen16x10 = "screen16x10"
	LayoutA4          = "A4"
	LayoutLetter      = "letter"
)

var slideSizePresets = map[string][2]int64{
	LayoutScreen4x3:   {9144000, 6858000},
	LayoutScreen16x9:  {12192000, 6858000},
	LayoutScreen16x10: {10972800, 6858000},
	LayoutA4:          {9906000, 6858000},
	LayoutLetter:      {9144000, 6858000},
}

// SetSlideSizePreset sets one of the predefined slide sizes.
func (p *Presentation) SetSlideSizePreset(name string) error {
	size, ok := slideSizePresets[name]
	if !ok {
		return fmt.Errorf("unknown slide size preset %q", name)
	}
	if err := p.SetSlideSize(size[0], size[1]); err != nil {
		return err
	}
	root, _ := p.main.Root()
	root.Child("sldSz").SetAttr("type", name)
	return nil
}
