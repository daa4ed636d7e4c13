package vfs

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"vfsemu/internal/logging"
	"vfsemu/internal/source"

	"golang.org/x/net/html/charset"
)

var (
	loadLogger = logging.GetLogger().WithPrefix("loader")
)

const (
	tagDirectory = "directory"
	tagFile      = "file"
	attrName     = "name"

	// DefaultName is given to directories and files without a name attribute
	DefaultName = "unnamed"
)

// LoadReport summarizes a successful load.
type LoadReport struct {
	Source      string
	Directories int
	Files       int
	Warnings    []DecodeWarning
}

// Load opens path with opener and parses it into a new tree. A missing source
// or a document that is not well-formed XML yields an *Error with Op OpLoad;
// files whose payload cannot be decoded only add warnings to the report.
func Load(ctx context.Context, opener source.Opener, path string) (*Tree, LoadReport, error) {
	loadLogger.Info("Loading VFS from %s", path)

	rc, err := opener.Open(ctx, path)
	if err != nil {
		if errors.Is(err, source.ErrNotExist) {
			return nil, LoadReport{}, &Error{Op: OpLoad, Path: path, Err: ErrSourceNotFound}
		}
		return nil, LoadReport{}, &Error{Op: OpLoad, Path: path, Err: err}
	}
	defer rc.Close()

	tree, report, err := Parse(rc)
	report.Source = path
	if err != nil {
		return nil, report, &Error{Op: OpLoad, Path: path, Err: err}
	}

	loadLogger.Info("Loaded %s: %d directories, %d files, %d undecodable",
		path, report.Directories, report.Files, len(report.Warnings))
	return tree, report, nil
}

type frameKind int

const (
	frameRoot frameKind = iota
	frameDir
	frameFile
	frameSkip
)

type frame struct {
	kind frameKind
	id   NodeID // directory being filled (root and dir frames)

	// file frames
	parent   NodeID
	name     string
	text     strings.Builder
	children bool
}

// Parse reads an XML document into a new tree. The outermost element stands
// for the root directory whatever its tag. Inside it, "directory" elements
// nest and "file" elements carry base64 text; any other element is skipped
// together with its content.
func Parse(r io.Reader) (*Tree, LoadReport, error) {
	var report LoadReport

	b := NewBuilder()
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	var (
		stack    []*frame
		rootDone bool
	)

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				if rootDone {
					return nil, report, fmt.Errorf("%w: line %d: content after document element", ErrMalformed, lineOf(d))
				}
				stack = append(stack, &frame{kind: frameRoot, id: RootID})
				continue
			}

			top := stack[len(stack)-1]
			switch top.kind {
			case frameRoot, frameDir:
				stack = append(stack, openElement(b, top.id, t, &report))
			case frameFile:
				top.children = true
				stack = append(stack, &frame{kind: frameSkip})
			case frameSkip:
				stack = append(stack, &frame{kind: frameSkip})
			}

		case xml.EndElement:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.kind == frameFile {
				closeFile(b, top, &report)
			}
			if len(stack) == 0 {
				rootDone = true
			}

		case xml.CharData:
			if len(stack) == 0 {
				if len(strings.TrimSpace(string(t))) > 0 {
					return nil, report, fmt.Errorf("%w: line %d: text outside document element", ErrMalformed, lineOf(d))
				}
				continue
			}
			if top := stack[len(stack)-1]; top.kind == frameFile && !top.children {
				top.text.Write(t)
			}
		}
	}

	if !rootDone {
		return nil, report, fmt.Errorf("%w: no document element", ErrMalformed)
	}

	return b.Build(), report, nil
}

func openElement(b *Builder, parent NodeID, el xml.StartElement, report *LoadReport) *frame {
	if el.Name.Space != "" {
		loadLogger.Trace("Skipping namespaced element <%s:%s>", el.Name.Space, el.Name.Local)
		return &frame{kind: frameSkip}
	}

	switch el.Name.Local {
	case tagDirectory:
		report.Directories++
		return &frame{kind: frameDir, id: b.Dir(parent, nameOf(el))}
	case tagFile:
		return &frame{kind: frameFile, parent: parent, name: nameOf(el)}
	default:
		loadLogger.Trace("Skipping unknown element <%s>", el.Name.Local)
		return &frame{kind: frameSkip}
	}
}

func closeFile(b *Builder, f *frame, report *LoadReport) {
	payload := f.text.String()
	id := b.File(f.parent, f.name, payload)
	report.Files++

	if _, err := DecodePayload(payload); err != nil {
		warning := DecodeWarning{Path: builderPath(b, id), Err: err}
		loadLogger.Warn("File %s is not base64 text, it will read as %q: %v", warning.Path, BinaryContent, err)
		report.Warnings = append(report.Warnings, warning)
	}
}

// nameOf returns the name attribute, or DefaultName when it is absent or
// empty.
func nameOf(el xml.StartElement) string {
	for _, attr := range el.Attr {
		if attr.Name.Space == "" && attr.Name.Local == attrName && attr.Value != "" {
			return attr.Value
		}
	}
	return DefaultName
}

func builderPath(b *Builder, id NodeID) string {
	var parts []string
	for cur := id; cur != RootID; cur = b.nodes[cur].parent {
		parts = append([]string{b.nodes[cur].name}, parts...)
	}
	return "/" + strings.Join(parts, "/")
}

func lineOf(d *xml.Decoder) int {
	line, _ := d.InputPos()
	return line
}
