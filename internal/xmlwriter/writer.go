// =============================================================================
// enaxml - XML Writer Module
// =============================================================================
//
// This module holds the generic element tree built by the converters and
// serializes it with an XML declaration and indentation.
//
// XML STRUCTURE (sample converter):
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <SAMPLE_SET>                                  <!-- Root element -->
//     <SAMPLE alias="alias1" center_name="...">   <!-- One per valid row -->
//       <TITLE>Blood sample A</TITLE>
//       <SAMPLE_NAME>
//         <TAXON_ID>64286</TAXON_ID>
//         ...
//       </SAMPLE_NAME>
//       <SAMPLE_ATTRIBUTES>
//         <SAMPLE_ATTRIBUTE>
//           <TAG>collection date</TAG>
//           <VALUE>2021-01-01</VALUE>
//         </SAMPLE_ATTRIBUTE>
//       </SAMPLE_ATTRIBUTES>
//     </SAMPLE>
//   </SAMPLE_SET>
//
// Attribute order is preserved as inserted. Elements with neither text nor
// children are written self-closed (<SINGLE/>).
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls serialization.
type Options struct {
	// Indent is the string used for one level of indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration writes <?xml version=... encoding=...?>.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding named in the declaration. The writer always
	// emits UTF-8, so only change this for labelling purposes.
	// Default: "UTF-8"
	Encoding string
}

// DefaultOptions returns the default serialization options.
func DefaultOptions() Options {
	return Options{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
	}
}

// =============================================================================
// ELEMENT TREE
// =============================================================================

// Attr is an XML attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the document tree.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// NewElement creates an element with the given attributes, given as
// name/value pairs.
func NewElement(name string, attrs ...string) *Element {
	e := &Element{Name: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		e.SetAttr(attrs[i], attrs[i+1])
	}
	return e
}

// SetAttr sets an attribute, replacing an existing one with the same name.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Attr returns the value of the named attribute and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SubElement appends a new child and returns it.
func (e *Element) SubElement(name string, attrs ...string) *Element {
	child := NewElement(name, attrs...)
	e.Children = append(e.Children, child)
	return child
}

// TextElement appends a child holding only text and returns it.
func (e *Element) TextElement(name, text string) *Element {
	child := e.SubElement(name)
	child.Text = text
	return child
}

// Append adds existing elements as children.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Find returns the first direct child with the given name, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindAll returns every direct child with the given name.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// Marshal serializes the tree rooted at root with the default options.
func Marshal(root *Element) ([]byte, error) {
	return MarshalWithOptions(root, DefaultOptions())
}

// MarshalWithOptions serializes the tree rooted at root.
func MarshalWithOptions(root *Element, options Options) ([]byte, error) {
	var buffer bytes.Buffer
	if err := Write(&buffer, root, options); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Write serializes the tree rooted at root to w.
func Write(w io.Writer, root *Element, options Options) error {
	if root == nil {
		return fmt.Errorf("nil root element")
	}

	var buffer bytes.Buffer
	if options.IncludeXMLDeclaration {
		fmt.Fprintf(&buffer, "<?xml version=\"%s\" encoding=\"%s\"?>\n", options.XMLVersion, options.Encoding)
	}

	if err := writeElement(&buffer, root, options.Indent, 0); err != nil {
		return err
	}

	if _, err := w.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// WriteFile serializes the tree to path, overwriting any existing file.
// The file is closed on every return path.
func WriteFile(path string, root *Element, options Options) (err error) {
	data, err := MarshalWithOptions(root, options)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// writeElement writes one element and its subtree.
func writeElement(buffer *bytes.Buffer, element *Element, indent string, level int) error {
	if !validName(element.Name) {
		return fmt.Errorf("invalid element name %q", element.Name)
	}

	buffer.WriteString(strings.Repeat(indent, level))
	buffer.WriteString("<")
	buffer.WriteString(element.Name)

	for _, attr := range element.Attrs {
		if !validName(attr.Name) {
			return fmt.Errorf("invalid attribute name %q on <%s>", attr.Name, element.Name)
		}
		if r, bad := firstInvalidChar(attr.Value); bad {
			return fmt.Errorf("attribute %s of <%s> contains character %U not allowed in XML", attr.Name, element.Name, r)
		}
		fmt.Fprintf(buffer, " %s=\"%s\"", attr.Name, escapeXML(attr.Value))
	}

	if r, bad := firstInvalidChar(element.Text); bad {
		return fmt.Errorf("text of <%s> contains character %U not allowed in XML", element.Name, r)
	}

	if len(element.Children) == 0 && element.Text == "" {
		buffer.WriteString("/>\n")
		return nil
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		buffer.WriteString(escapeXML(element.Text))
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			if err := writeElement(buffer, child, indent, level+1); err != nil {
				return err
			}
		}
		buffer.WriteString(strings.Repeat(indent, level))
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")
	return nil
}

// validName is a conservative check for element and attribute names.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == ':' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		case i > 0 && (r == '-' || r == '.' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

// firstInvalidChar returns the first rune of s outside the XML 1.0 Char
// production. Such characters cannot be escaped, only rejected.
func firstInvalidChar(s string) (rune, bool) {
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return r, true
		}
	}
	return 0, false
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
