package chart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
)

type attr struct {
	key   string
	value string
}

// Element is a node of the drawing tree. Attributes keep insertion order so the
// serialized output is stable.
type Element struct {
	Name     string
	attrs    []attr
	children []*Element
	text     string
	parent   *Element
}

func NewElement(name string) *Element {
	return &Element{Name: name}
}

// Append creates a child element and returns it.
func (e *Element) Append(name string) *Element {
	return e.AppendChild(NewElement(name))
}

// AppendChild attaches c as the last child, detaching it from any previous parent.
func (e *Element) AppendChild(c *Element) *Element {
	if c.parent != nil {
		c.Remove()
	}
	c.parent = e
	e.children = append(e.children, c)
	return c
}

// Attr sets (or replaces) an attribute and returns e for chaining.
func (e *Element) Attr(key string, value any) *Element {
	v := formatValue(value)
	for i := range e.attrs {
		if e.attrs[i].key == key {
			e.attrs[i].value = v
			return e
		}
	}
	e.attrs = append(e.attrs, attr{key: key, value: v})
	return e
}

// Get returns the value of an attribute.
func (e *Element) Get(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.key == key {
			return a.value, true
		}
	}
	return "", false
}

func (e *Element) SetText(s string) *Element {
	e.text = s
	return e
}

func (e *Element) Text() string { return e.text }

func (e *Element) Parent() *Element { return e.parent }

// Children returns a copy of the direct children.
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// ChildrenNamed returns the direct children with the given tag name.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// FindAll returns every descendant with the given tag name, depth first.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.children {
		if c.Name == name {
			out = append(out, c)
		}
		out = append(out, c.FindAll(name)...)
	}
	return out
}

// Remove detaches e from its parent. Removing a detached element is a no-op.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

// Clone deep-copies e; the copy is detached.
func (e *Element) Clone() *Element {
	c := &Element{
		Name:  e.Name,
		attrs: append([]attr(nil), e.attrs...),
		text:  e.text,
	}
	for _, child := range e.children {
		c.AppendChild(child.Clone())
	}
	return c
}

// WriteTo serializes the subtree as XML.
func (e *Element) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	e.write(&buf)
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func (e *Element) String() string {
	var buf bytes.Buffer
	e.write(&buf)
	return buf.String()
}

func (e *Element) write(buf *bytes.Buffer) {
	buf.WriteByte('<')
	buf.WriteString(e.Name)
	for _, a := range e.attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.key)
		buf.WriteString(`="`)
		_ = xml.EscapeText(buf, []byte(a.value))
		buf.WriteByte('"')
	}
	if len(e.children) == 0 && e.text == "" {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	if e.text != "" {
		_ = xml.EscapeText(buf, []byte(e.text))
	}
	for _, c := range e.children {
		c.write(buf)
	}
	buf.WriteString("</")
	buf.WriteString(e.Name)
	buf.WriteByte('>')
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return formatNumber(t)
	case float32:
		return formatNumber(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// formatNumber trims float noise so coordinates read like 30.5 rather than 30.500000000000004.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	r := math.Round(f*1e6) / 1e6
	if r == 0 {
		r = 0 // normalise -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
