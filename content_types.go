package pptdom

import (
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strings"
)

// XML namespace constants
const (
	nsContentTypes = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsPackageRels  = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// Relationship types.
const (
	RelTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelTypeSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	RelTypeSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	RelTypeSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	RelTypeTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RelTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelTypeChart          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart"
	RelTypeHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelTypeVideo          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/video"
	RelTypeAudio          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/audio"
	RelTypeMedia          = "http://schemas.microsoft.com/office/2007/relationships/media"
	RelTypeOLEObject      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/oleObject"
	RelTypePackage        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/package"
)

// Content types.
const (
	ctRels        = "application/vnd.openxmlformats-package.relationships+xml"
	ctXML         = "application/xml"
	ctOctetStream = "application/octet-stream"
)

const contentTypesPart = "[Content_Types].xml"

type xmlContentTypes struct {
	XMLName   xml.Name      `xml:"Types"`
	Xmlns     string        `xml:"xmlns,attr,omitempty"`
	Defaults  []xmlDefault  `xml:"Default"`
	Overrides []xmlOverride `xml:"Override"`
}

type xmlDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// contentTypes is the parsed form of [Content_Types].xml. Extensions are
// stored lower case; part names without the leading slash.
type contentTypes struct {
	defaults  map[string]string
	overrides map[string]string
}

func newContentTypes() *contentTypes {
	return &contentTypes{
		defaults: map[string]string{
			"rels": ctRels,
			"xml":  ctXML,
		},
		overrides: make(map[string]string),
	}
}

func parseContentTypes(data []byte) (*contentTypes, error) {
	var x xmlContentTypes
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", contentTypesPart, err)
	}
	ct := newContentTypes()
	for _, d := range x.Defaults {
		ct.defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range x.Overrides {
		ct.overrides[strings.TrimPrefix(o.PartName, "/")] = o.ContentType
	}
	return ct, nil
}

func extOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// lookup returns the content type of the named part, preferring an
// override over the extension default.
func (c *contentTypes) lookup(name string) string {
	if v, ok := c.overrides[name]; ok {
		return v
	}
	if v, ok := c.defaults[extOf(name)]; ok {
		return v
	}
	return ctOctetStream
}

// build regenerates the content types document for the given parts. Known
// defaults are kept, binary parts with an unseen extension get a new
// default, everything else that disagrees with its default is overridden.
func (c *contentTypes) build(parts []*Part) xmlContentTypes {
	defaults := make(map[string]string, len(c.defaults))
	for k, v := range c.defaults {
		defaults[k] = v
	}

	var overrides []xmlOverride
	for _, p := range parts {
		ext := extOf(p.name)
		def, ok := defaults[ext]
		switch {
		case ok && def == p.contentType:
		case !ok && ext != "" && !p.IsXML():
			defaults[ext] = p.contentType
		default:
			overrides = append(overrides, xmlOverride{PartName: "/" + p.name, ContentType: p.contentType})
		}
	}

	out := xmlContentTypes{Xmlns: nsContentTypes}
	exts := make([]string, 0, len(defaults))
	for k := range defaults {
		exts = append(exts, k)
	}
	sort.Strings(exts)
	for _, e := range exts {
		out.Defaults = append(out.Defaults, xmlDefault{Extension: e, ContentType: defaults[e]})
	}
	out.Overrides = overrides
	return out
}
