package pptdom

import (
	"time"
)

const (
	relTypeCoreProps = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	ctCoreProps      = "application/vnd.openxmlformats-package.core-properties+xml"
	corePropsPart    = "docProps/core.xml"

	nsCoreProperties = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC             = "http://purl.org/dc/elements/1.1/"
	nsDCTerms        = "http://purl.org/dc/terms/"
	nsXSI            = "http://www.w3.org/2001/XMLSchema-instance"
)

// DocumentProperties holds the core document properties (docProps/core.xml).
type DocumentProperties struct {
	Creator        string
	LastModifiedBy string
	Created        time.Time
	Modified       time.Time
	Title          string
	Description    string
	Subject        string
	Keywords       string
	Category       string
	Revision       string
}

type coreField struct {
	tag string
	get func(*DocumentProperties) *string
}

var coreTextFields = []coreField{
	{"dc:title", func(d *DocumentProperties) *string { return &d.Title }},
	{"dc:subject", func(d *DocumentProperties) *string { return &d.Subject }},
	{"dc:creator", func(d *DocumentProperties) *string { return &d.Creator }},
	{"cp:keywords", func(d *DocumentProperties) *string { return &d.Keywords }},
	{"dc:description", func(d *DocumentProperties) *string { return &d.Description }},
	{"cp:lastModifiedBy", func(d *DocumentProperties) *string { return &d.LastModifiedBy }},
	{"cp:revision", func(d *DocumentProperties) *string { return &d.Revision }},
	{"cp:category", func(d *DocumentProperties) *string { return &d.Category }},
}

func (p *Presentation) corePart() (*Part, bool) {
	parts, err := p.pkg.root.RelatedByType(relTypeCoreProps)
	if err != nil || len(parts) == 0 {
		return nil, false
	}
	return parts[0], true
}

// Properties returns a copy of the core document properties. A package
// without docProps/core.xml yields empty properties.
func (p *Presentation) Properties() (*DocumentProperties, error) {
	props := &DocumentProperties{}
	part, ok := p.corePart()
	if !ok {
		return props, nil
	}
	root, err := part.Root()
	if err != nil {
		return nil, err
	}
	for _, f := range coreTextFields {
		*f.get(props) = root.Child(splitQName(f.tag).Local).Text()
	}
	props.Created = parseW3CDTF(root.Child("created").Text())
	props.Modified = parseW3CDTF(root.Child("modified").Text())
	return props, nil
}

func parseW3CDTF(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SetProperties writes props into docProps/core.xml, creating the part
// when the package has none. Empty fields are removed.
func (p *Presentation) SetProperties(props *DocumentProperties) error {
	part, ok := p.corePart()
	if !ok {
		var err error
		root := NewNode("cp:coreProperties",
			"xmlns:cp", nsCoreProperties,
			"xmlns:dc", nsDC,
			"xmlns:dcterms", nsDCTerms,
			"xmlns:xsi", nsXSI)
		part, err = p.pkg.AddPart(p.pkg.uniqueOr(corePropsPart), ctCoreProps, root.Marshal())
		if err != nil {
			return err
		}
		if _, err := p.pkg.root.AddRelationship(relTypeCoreProps, part); err != nil {
			return err
		}
	}
	root, err := part.Root()
	if err != nil {
		return err
	}

	for _, f := range coreTextFields {
		setCoreChild(root, f.tag, *f.get(props), false)
	}
	setCoreChild(root, "dcterms:created", formatW3CDTF(props.Created), true)
	setCoreChild(root, "dcterms:modified", formatW3CDTF(props.Modified), true)
	return nil
}

func formatW3CDTF(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func setCoreChild(root *Node, tag, value string, dated bool) {
	local := splitQName(tag).Local
	c := root.Child(local)
	if value == "" {
		if c != nil {
			c.Remove()
		}
		return
	}
	if c == nil {
		c = root.AppendChild(NewNode(tag))
		if dated {
			c.SetAttr("xsi:type", "dcterms:W3CDTF")
		}
	}
	c.SetText(value)
}

// uniqueOr returns name when it is free, otherwise a numbered variant.
func (pkg *Package) uniqueOr(name string) string {
	if _, taken := pkg.parts[name]; !taken {
		return name
	}
	ext := extOf(name)
	return pkg.UniquePartName(name[:len(name)-len(ext)-1], "."+ext)
}
