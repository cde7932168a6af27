// Package entrypoint locates top-level functions and the outer attributes attached
// to them in a Rust source file.
package entrypoint

import (
	"bytes"
	"fmt"

	gotreesitter "github.com/odvcencio/gotreesitter"
	"github.com/odvcencio/gotreesitter/grammars"

	"github.com/toyz/infrabuilder/internal/errors"
)

// EntryFunction is the conventional name of a program's entry point.
const EntryFunction = "main"

// Attribute is an outer attribute such as #[route(GET, "/x")] as written in source.
type Attribute struct {
	Text     string
	Location errors.SourceLocation
}

// Function is a top-level function with the attributes directly above it.
type Function struct {
	Name       string
	Location   errors.SourceLocation
	Attributes []Attribute
}

// File is the result of scanning one source file.
type File struct {
	Path      string
	Functions []Function
}

// Entry returns the entry-point function, if present.
func (f *File) Entry() (Function, bool) {
	for _, fn := range f.Functions {
		if fn.Name == EntryFunction {
			return fn, true
		}
	}
	return Function{}, false
}

// Parse reads top-level functions and their attributes from Rust source.
func Parse(filename string, source []byte) (*File, error) {
	entry := grammars.DetectLanguage(filename)
	if entry == nil || entry.Name != "rust" {
		return nil, fmt.Errorf("unsupported entry-point file type: %s", filename)
	}

	file := &File{Path: filename}
	if len(source) == 0 {
		return file, nil
	}

	bt, err := grammars.ParseFile(filename, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer bt.Release()

	root := bt.RootNode()
	var pending []Attribute

	for i := 0; i < root.ChildCount(); i++ {
		child := root.Child(i)
		switch bt.NodeType(child) {
		case "attribute_item":
			pending = append(pending, Attribute{
				Text:     bt.NodeText(child),
				Location: location(filename, source, child),
			})
		case "line_comment", "block_comment":
			// comments may sit between attributes and the item they decorate
		case "function_item":
			file.Functions = append(file.Functions, Function{
				Name:       functionName(bt, child),
				Location:   location(filename, source, child),
				Attributes: pending,
			})
			pending = nil
		default:
			pending = nil
		}
	}

	return file, nil
}

func functionName(bt *gotreesitter.BoundTree, node *gotreesitter.Node) string {
	for i := 0; i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if bt.NodeType(child) == "identifier" {
			return bt.NodeText(child)
		}
	}
	return ""
}

func location(filename string, source []byte, node *gotreesitter.Node) errors.SourceLocation {
	start := int(node.StartByte())
	if start > len(source) {
		start = len(source)
	}
	lineStart := bytes.LastIndexByte(source[:start], '\n') + 1
	return errors.SourceLocation{
		File:   filename,
		Line:   int(node.StartPoint().Row) + 1,
		Column: start - lineStart + 1,
	}
}
