package pos

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is one element of a parsed POS document. Passport firmware versions
// nest the same fields differently, so lookups walk the whole tree by local
// name instead of fixed paths.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// ParseDocument builds the node tree for one XML document. Character data
// outside elements and unknown entities are ignored; the POS feed is plain
// ASCII element soup.
func ParseDocument(raw []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = false

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse pos document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				node.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					node.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else if root == nil {
				root = node
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 && root != nil {
				return root, nil
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("failed to parse pos document: no root element")
	}
	return root, nil
}

// Find returns the first element with the given local name, depth-first,
// including the node itself.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every element with the given local name, depth-first.
func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	if n.Name == name {
		out = append(out, n)
	}
	for _, c := range n.Children {
		out = append(out, c.FindAll(name)...)
	}
	return out
}

// Value returns the trimmed element text, falling back to the "value"
// attribute; the POS uses both shapes interchangeably.
func (n *Node) Value() string {
	if n == nil {
		return ""
	}
	if text := strings.TrimSpace(n.Text); text != "" {
		return text
	}
	return strings.TrimSpace(n.Attrs["value"])
}

// FirstValue returns the value of the first of the named elements that is
// present with a non-empty value.
func (n *Node) FirstValue(names ...string) string {
	for _, name := range names {
		if v := n.Find(name).Value(); v != "" {
			return v
		}
	}
	return ""
}
