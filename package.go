package pptdom

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
)

// maxZipEntrySize is the maximum allowed size for a single file extracted from a ZIP.
// This prevents zip bomb attacks. 50 MB is generous for any legitimate PPTX part.
const maxZipEntrySize = 50 << 20 // 50 MB

// maxZipTotalSize is the cumulative limit for all extracted content from a single ZIP.
const maxZipTotalSize = 200 << 20 // 200 MB

// maxZipEntries is the maximum number of files allowed in a ZIP archive.
const maxZipEntries = 10000

// TargetModeExternal marks a relationship whose target lives outside the
// package, such as a hyperlink.
const TargetModeExternal = "External"

// Relationship is one entry of a part's relationship list.
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// External reports whether the relationship points outside the package.
func (r *Relationship) External() bool { return r.TargetMode == TargetModeExternal }

type xmlRelationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

type xmlRelationships struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Xmlns         string            `xml:"xmlns,attr,omitempty"`
	Relationships []xmlRelationship `xml:"Relationship"`
}

// Part is a single entry of the package: an XML document or a binary
// stream, plus its outgoing relationships.
//
// XML parts are parsed on first call to Root. Once parsed, the node tree is
// the source of truth and is serialized again on save.
type Part struct {
	pkg         *Package
	name        string
	contentType string
	data        []byte
	root        *Node

	rels       []*Relationship
	relsLoaded bool
	relsData   []byte
}

// Name returns the part name without a leading slash, e.g. "ppt/slides/slide1.xml".
func (p *Part) Name() string { return p.name }

func (p *Part) ContentType() string { return p.contentType }

func (p *Part) Package() *Package { return p.pkg }

// IsXML reports whether the part holds an XML document.
func (p *Part) IsXML() bool {
	return strings.HasSuffix(p.contentType, "+xml") || strings.HasSuffix(p.contentType, "/xml") ||
		extOf(p.name) == "xml"
}

// Root returns the parsed XML tree of the part.
func (p *Part) Root() (*Node, error) {
	if p.root != nil {
		return p.root, nil
	}
	if !p.IsXML() {
		return nil, fmt.Errorf("part %s (%s) is not xml", p.name, p.contentType)
	}
	root, err := ParseNode(p.data)
	if err != nil {
		return nil, fmt.Errorf("part %s: %w", p.name, err)
	}
	p.root = root
	p.data = nil
	return root, nil
}

// Data returns the current bytes of the part, serializing the tree when it
// has been parsed.
func (p *Part) Data() []byte {
	if p.root != nil {
		return p.root.Marshal()
	}
	return p.data
}

// SetData replaces the content of the part and discards any parsed tree.
func (p *Part) SetData(data []byte) {
	p.data = data
	p.root = nil
}

// relsName returns the name of the relationships part belonging to p.
func (p *Part) relsName() string {
	if p.name == "" {
		return "_rels/.rels"
	}
	dir, base := path.Split(p.name)
	return dir + "_rels/" + base + ".rels"
}

func (p *Part) loadRels() error {
	if p.relsLoaded {
		return nil
	}
	p.relsLoaded = true
	if len(p.relsData) == 0 {
		return nil
	}
	var x xmlRelationships
	if err := xml.Unmarshal(p.relsData, &x); err != nil {
		return fmt.Errorf("failed to parse relationships %s: %w", p.relsName(), err)
	}
	p.relsData = nil
	for _, r := range x.Relationships {
		p.rels = append(p.rels, &Relationship{ID: r.ID, Type: r.Type, Target: r.Target, TargetMode: r.TargetMode})
	}
	return nil
}

// Relationships returns the outgoing relationships of the part.
func (p *Part) Relationships() ([]*Relationship, error) {
	if err := p.loadRels(); err != nil {
		return nil, err
	}
	out := make([]*Relationship, len(p.rels))
	copy(out, p.rels)
	return out, nil
}

// Relationship returns the relationship with the given id.
func (p *Part) Relationship(id string) (*Relationship, error) {
	if err := p.loadRels(); err != nil {
		return nil, err
	}
	for _, r := range p.rels {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrRelationshipNotFound, id, p.name)
}

// Related resolves a relationship id to the part it targets.
func (p *Part) Related(id string) (*Part, error) {
	r, err := p.Relationship(id)
	if err != nil {
		return nil, err
	}
	if r.External() {
		return nil, fmt.Errorf("%w: %s in %s targets external %s", ErrPartNotFound, id, p.name, r.Target)
	}
	name := resolveRelativePath(path.Dir(p.name), r.Target)
	target, ok := p.pkg.Part(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s (from %s %s)", ErrPartNotFound, name, p.name, id)
	}
	return target, nil
}

// RelatedByType returns the targets of all internal relationships of the given type
// in relationship order. Dangling targets are skipped.
func (p *Part) RelatedByType(relType string) ([]*Part, error) {
	if err := p.loadRels(); err != nil {
		return nil, err
	}
	var out []*Part
	for _, r := range p.rels {
		if r.Type != relType || r.External() {
			continue
		}
		t, err := p.Related(r.ID)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// RelationshipTo returns the id of an existing relationship of relType from p to target.
func (p *Part) RelationshipTo(target *Part, relType string) (string, bool) {
	if err := p.loadRels(); err != nil {
		return "", false
	}
	dir := path.Dir(p.name)
	for _, r := range p.rels {
		if r.Type == relType && !r.External() && resolveRelativePath(dir, r.Target) == target.name {
			return r.ID, true
		}
	}
	return "", false
}

// nextRelationshipID returns "rId" followed by one more than the highest
// numeric suffix in use.
func (p *Part) nextRelationshipID() string {
	highest := 0
	for _, r := range p.rels {
		suffix, ok := strings.CutPrefix(r.ID, "rId")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}
	return "rId" + strconv.Itoa(highest+1)
}

// AddRelationship adds a relationship from p to target and returns its new id.
func (p *Part) AddRelationship(relType string, target *Part) (string, error) {
	if err := p.loadRels(); err != nil {
		return "", err
	}
	id := p.nextRelationshipID()
	p.rels = append(p.rels, &Relationship{
		ID:     id,
		Type:   relType,
		Target: relativeTarget(path.Dir(p.name), target.name),
	})
	p.pkg.logger().Debug("relationship added", "part", p.name, "id", id, "target", target.name)
	return id, nil
}

// AddExternalRelationship adds a relationship to a target outside the package.
func (p *Part) AddExternalRelationship(relType, target string) (string, error) {
	if err := p.loadRels(); err != nil {
		return "", err
	}
	id := p.nextRelationshipID()
	p.rels = append(p.rels, &Relationship{ID: id, Type: relType, Target: target, TargetMode: TargetModeExternal})
	return id, nil
}

// RemoveRelationship deletes the relationship with the given id. The target
// part stays in the package.
func (p *Part) RemoveRelationship(id string) bool {
	if err := p.loadRels(); err != nil {
		return false
	}
	for i, r := range p.rels {
		if r.ID == id {
			p.rels = append(p.rels[:i], p.rels[i+1:]...)
			return true
		}
	}
	return false
}

// Package is an in-memory OPC package: a set of named parts with content
// types and relationships.
type Package struct {
	parts map[string]*Part
	root  *Part
	types *contentTypes
	log   *slog.Logger
}

// newPackage returns an empty package.
func newPackage(l *slog.Logger) *Package {
	pkg := &Package{
		parts: make(map[string]*Part),
		types: newContentTypes(),
		log:   l,
	}
	pkg.root = &Part{pkg: pkg, relsLoaded: true}
	return pkg
}

func (pkg *Package) logger() *slog.Logger {
	if pkg.log == nil {
		return discardLogger
	}
	return pkg.log
}

// Part returns the part with the given name. A leading slash is ignored.
func (pkg *Package) Part(name string) (*Part, bool) {
	p, ok := pkg.parts[strings.TrimPrefix(name, "/")]
	return p, ok
}

// Parts returns all parts sorted by name.
func (pkg *Package) Parts() []*Part {
	out := make([]*Part, 0, len(pkg.parts))
	for _, p := range pkg.parts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// RootPart is the pseudo part holding the package-level relationships
// (_rels/.rels). It has no name and no content.
func (pkg *Package) RootPart() *Part { return pkg.root }

// MainPart returns the target of the package's officeDocument relationship.
func (pkg *Package) MainPart() (*Part, error) {
	parts, err := pkg.root.RelatedByType(RelTypeOfficeDocument)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no officeDocument relationship", ErrPartNotFound)
	}
	return parts[0], nil
}

// AddPart creates a new part. It fails if the name is taken.
func (pkg *Package) AddPart(name, contentType string, data []byte) (*Part, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || name == contentTypesPart || strings.HasSuffix(name, ".rels") {
		return nil, fmt.Errorf("invalid part name %q", name)
	}
	if _, ok := pkg.parts[name]; ok {
		return nil, fmt.Errorf("part %s already exists", name)
	}
	p := &Part{pkg: pkg, name: name, contentType: contentType, data: data, relsLoaded: true}
	pkg.parts[name] = p
	return p, nil
}

// UniquePartName returns prefix+N+ext for the smallest N >= 1 that is not
// taken, e.g. UniquePartName("ppt/media/image", ".png") -> "ppt/media/image3.png".
func (pkg *Package) UniquePartName(prefix, ext string) string {
	for n := 1; ; n++ {
		name := prefix + strconv.Itoa(n) + ext
		if _, ok := pkg.parts[name]; !ok {
			return name
		}
	}
}

// readPackage loads every entry of the archive into memory, applying the
// zip bomb limits.
func readPackage(zr *zip.Reader, l *slog.Logger) (*Package, error) {
	if len(zr.File) > maxZipEntries {
		return nil, fmt.Errorf("zip archive contains too many entries (%d > %d)", len(zr.File), maxZipEntries)
	}

	pkg := newPackage(l)
	entries := make(map[string][]byte, len(zr.File))
	var total int64
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			return nil, err
		}
		total += int64(len(data))
		if total > maxZipTotalSize {
			return nil, fmt.Errorf("archive content exceeds maximum allowed size (%d bytes)", maxZipTotalSize)
		}
		entries[strings.TrimPrefix(f.Name, "/")] = data
	}

	if data, ok := entries[contentTypesPart]; ok {
		ct, err := parseContentTypes(data)
		if err != nil {
			return nil, err
		}
		pkg.types = ct
	} else {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, contentTypesPart)
	}

	for name, data := range entries {
		if name == contentTypesPart || isRelsName(name) {
			continue
		}
		pkg.parts[name] = &Part{pkg: pkg, name: name, contentType: pkg.types.lookup(name), data: data}
	}
	for _, p := range pkg.parts {
		p.relsData = entries[p.relsName()]
		p.relsLoaded = len(p.relsData) == 0
	}
	pkg.root.relsData = entries[pkg.root.relsName()]
	pkg.root.relsLoaded = len(pkg.root.relsData) == 0
	return pkg, nil
}

func isRelsName(name string) bool {
	return strings.HasSuffix(name, ".rels") && (strings.HasPrefix(name, "_rels/") || strings.Contains(name, "/_rels/"))
}

func readZipEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxZipEntrySize {
		return nil, fmt.Errorf("file %s exceeds maximum allowed size (%d bytes)", f.Name, maxZipEntrySize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in zip: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, int64(maxZipEntrySize)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from zip: %w", f.Name, err)
	}
	if int64(len(data)) > int64(maxZipEntrySize) {
		return nil, fmt.Errorf("file %s actual size exceeds maximum allowed size", f.Name)
	}
	return data, nil
}

// writeTo serializes the package as a zip archive. Entries are written in a
// stable order: content types, package relationships, then parts by name,
// each followed by its own relationships.
func (pkg *Package) writeTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	parts := pkg.Parts()

	ct := pkg.types.build(parts)
	if err := writeXMLToZip(zw, contentTypesPart, ct); err != nil {
		return err
	}
	if err := writeRels(zw, pkg.root); err != nil {
		return err
	}
	for _, p := range parts {
		fw, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("failed to create %s in zip: %w", p.name, err)
		}
		if _, err := fw.Write(p.Data()); err != nil {
			return fmt.Errorf("failed to write %s: %w", p.name, err)
		}
		if err := writeRels(zw, p); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeRels(zw *zip.Writer, p *Part) error {
	if !p.relsLoaded {
		// untouched since open, copy the original bytes
		fw, err := zw.Create(p.relsName())
		if err != nil {
			return fmt.Errorf("failed to create %s in zip: %w", p.relsName(), err)
		}
		_, err = fw.Write(p.relsData)
		return err
	}
	if len(p.rels) == 0 {
		return nil
	}
	x := xmlRelationships{Xmlns: nsPackageRels}
	for _, r := range p.rels {
		x.Relationships = append(x.Relationships, xmlRelationship{ID: r.ID, Type: r.Type, Target: r.Target, TargetMode: r.TargetMode})
	}
	return writeXMLToZip(zw, p.relsName(), x)
}

func writeXMLToZip(zw *zip.Writer, name string, v any) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s in zip: %w", name, err)
	}
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	_, err = fw.Write(buf.Bytes())
	return err
}

// resolveRelativePath resolves a relationship target against the directory
// of the source part. Targets starting with "/" are package absolute. The
// result never climbs above the package root.
func resolveRelativePath(base, rel string) string {
	if strings.HasPrefix(rel, "/") {
		return path.Clean(strings.TrimPrefix(rel, "/"))
	}

	var result []string
	if base != "" && base != "." {
		result = strings.Split(base, "/")
	}
	for _, part := range strings.Split(rel, "/") {
		switch part {
		case "..":
			if len(result) > 0 {
				result = result[:len(result)-1]
			}
		case ".", "":
		default:
			result = append(result, part)
		}
	}
	return strings.Join(result, "/")
}

// relativeTarget computes the relationship target from directory fromDir to
// the part named to, e.g. ("ppt/slides", "ppt/media/image1.png") -> "../media/image1.png".
func relativeTarget(fromDir, to string) string {
	if fromDir == "" || fromDir == "." {
		return to
	}
	from := strings.Split(fromDir, "/")
	dst := strings.Split(to, "/")
	i := 0
	for i < len(from) && i < len(dst)-1 && from[i] == dst[i] {
		i++
	}
	var sb strings.Builder
	for range from[i:] {
		sb.WriteString("../")
	}
	sb.WriteString(strings.Join(dst[i:], "/"))
	return sb.String()
}
