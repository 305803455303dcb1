package pptdom

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strconv"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// pictureTemplate is the p:pic inserted by AddPicture. The id, name,
// relationship and extent are filled in before insertion.
const pictureTemplate = `<p:pic>` +
	`<p:nvPicPr><p:cNvPr id="0" name="Picture"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>` +
	`<p:blipFill><a:blip r:embed=""/><a:stretch><a:fillRect/></a:stretch></p:blipFill>` +
	`<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>` +
	`</p:pic>`

// svgSize is the extent used for SVG images, which carry no pixel size.
const svgSize = 96

type mediaType struct {
	ext  string
	mime string
}

// detectImage identifies the image format of data.
func detectImage(data []byte) (mediaType, error) {
	kind, err := filetype.Image(data)
	if err == nil && kind != filetype.Unknown {
		ext := kind.Extension
		if ext == "tif" {
			ext = "tiff"
		}
		return mediaType{ext: ext, mime: kind.MIME.Value}, nil
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.Contains(head, []byte("<svg")) {
		return mediaType{ext: "svg", mime: "image/svg+xml"}, nil
	}
	return mediaType{}, fmt.Errorf("%w: unrecognized image data", ErrUnsupportedMedia)
}

// imageSize returns the natural pixel size of an image.
func imageSize(data []byte, mt mediaType) (w, h int, err error) {
	if mt.ext == "svg" {
		return svgSize, svgSize, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrUnsupportedMedia, mt.mime, err)
	}
	return cfg.Width, cfg.Height, nil
}

// storeMedia returns the media part holding data, creating it on the first
// insertion of these bytes. Identical bytes are stored once per
// presentation.
func (p *Presentation) storeMedia(data []byte, mt mediaType) (*Part, error) {
	hash := p.opts.Hasher(data)
	if part, ok := p.media.Lookup(hash); ok {
		if _, still := p.pkg.Part(part.name); still {
			p.log.Debug("media de-duplicated", "part", part.name, "hash", hash)
			return part, nil
		}
	}
	name := p.pkg.UniquePartName("ppt/media/image", "."+mt.ext)
	part, err := p.pkg.AddPart(name, mt.mime, data)
	if err != nil {
		return nil, err
	}
	p.media.Register(hash, part)
	return part, nil
}

// AddPicture inserts an image at the top left corner of the tree at its
// natural size. The image bytes are stored once per presentation no matter
// how often they are inserted.
func (t *ShapeTree) AddPicture(data []byte) (*Shape, error) {
	if t.pres == nil || t.part == nil {
		return nil, fmt.Errorf("%w: shape tree is not hosted in a presentation", ErrPartNotFound)
	}
	mt, err := detectImage(data)
	if err != nil {
		return nil, err
	}
	w, h, err := imageSize(data, mt)
	if err != nil {
		return nil, err
	}
	// fail before touching the package
	if top, ok := t.maxID(); !ok || top == math.MaxUint32 {
		return nil, fmt.Errorf("%w: no fresh shape id for picture", ErrInvariantViolation)
	}

	media, err := t.pres.storeMedia(data, mt)
	if err != nil {
		return nil, err
	}
	relID, ok := t.part.RelationshipTo(media, RelTypeImage)
	if !ok {
		if relID, err = t.part.AddRelationship(RelTypeImage, media); err != nil {
			return nil, err
		}
	}

	pic := MustParseNode(pictureTemplate)
	pic.Path("nvPicPr", "cNvPr").SetAttr("name", numberedName("Picture", t.names()))
	pic.Path("blipFill", "blip").SetAttr("r:embed", relID)
	ext := pic.Path("spPr", "xfrm", "ext")
	ext.SetAttr("cx", strconv.FormatInt(t.units().ToEmuX(float64(w)), 10))
	ext.SetAttr("cy", strconv.FormatInt(t.units().ToEmuY(float64(h)), 10))

	n, err := t.CloneNode(pic)
	if err != nil {
		return nil, err
	}
	return t.handle(n), nil
}

// Image returns the bytes of a picture shape's image.
func (s *Shape) Image() ([]byte, error) {
	if s.kind != ShapePicture {
		return nil, fmt.Errorf("shape %q is a %s, not a picture", s.Name(), s.kind)
	}
	id := s.node.Path("blipFill", "blip").AttrOr("r:embed", "")
	if id == "" || s.tree.part == nil {
		return nil, fmt.Errorf("%w: picture %q has no embedded image", ErrRelationshipNotFound, s.Name())
	}
	part, err := s.tree.part.Related(id)
	if err != nil {
		return nil, err
	}
	return part.Data(), nil
}

// ImageType returns the content type of a picture shape's image.
func (s *Shape) ImageType() string {
	id := s.node.Path("blipFill", "blip").AttrOr("r:embed", "")
	if s.tree.part == nil {
		return ""
	}
	part, err := s.tree.part.Related(id)
	if err != nil {
		return ""
	}
	return strings.ToLower(part.contentType)
}
