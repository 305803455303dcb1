package pptdom

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Open reads a PPTX file from disk with DefaultOptions.
func Open(path string) (*Presentation, error) {
	return OpenWithOptions(path, DefaultOptions())
}

// OpenWithOptions reads a PPTX file from disk.
func OpenWithOptions(path string, opts *Options) (*Presentation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return ReadFromWithOptions(f, info.Size(), opts)
}

// ReadFrom reads a PPTX from an io.ReaderAt with the given size.
func ReadFrom(r io.ReaderAt, size int64) (*Presentation, error) {
	return ReadFromWithOptions(r, size, DefaultOptions())
}

// ReadFromWithOptions reads a PPTX from an io.ReaderAt. A nil opts means
// DefaultOptions. All parts are loaded into memory, so r is not used after
// the call returns.
func ReadFromWithOptions(r io.ReaderAt, size int64, opts *Options) (*Presentation, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid reader size: %d", size)
	}
	if size > int64(maxZipTotalSize) {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed (%d bytes)", size, maxZipTotalSize)
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	pkg, err := readPackage(zr, opts.Logger)
	if err != nil {
		return nil, err
	}
	return newPresentation(pkg, opts)
}

// Save writes the presentation to a PPTX file. A partially written file is
// removed when writing fails.
func (p *Presentation) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	writeErr := p.WriteTo(f)
	closeErr := f.Close()

	if writeErr != nil {
		os.Remove(path)
		return writeErr
	}
	return closeErr
}

// WriteTo writes the presentation to w in PPTX format. Writing to a buffer
// is also the way to snapshot a presentation before a series of edits.
func (p *Presentation) WriteTo(w io.Writer) error {
	if p.pkg == nil {
		return fmt.Errorf("presentation is closed")
	}
	return p.pkg.writeTo(w)
}

// Close releases the parts, caches and media registry held by the
// presentation. It must not be used afterwards.
func (p *Presentation) Close() error {
	p.slides = nil
	p.layouts = nil
	p.masters = nil
	p.media = nil
	p.main = nil
	p.pkg = nil
	return nil
}
