package branding

import (
	"strings"

	"golang.org/x/net/html"
)

// Selector matches elements by tag, id, class, and attribute. Empty fields
// match anything. Within restricts matches to descendants of an element
// matching it.
type Selector struct {
	Tag          string    `yaml:"tag,omitempty" json:"tag,omitempty"`
	ID           string    `yaml:"id,omitempty" json:"id,omitempty"`
	Class        string    `yaml:"class,omitempty" json:"class,omitempty"`
	Attr         string    `yaml:"attr,omitempty" json:"attr,omitempty"`
	AttrValue    string    `yaml:"attr_value,omitempty" json:"attr_value,omitempty"`
	AttrContains string    `yaml:"attr_contains,omitempty" json:"attr_contains,omitempty"`
	Within       *Selector `yaml:"within,omitempty" json:"within,omitempty"`
}

func (s Selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.Tag != "" && !strings.EqualFold(n.Data, s.Tag) {
		return false
	}
	if s.ID != "" && attr(n, "id") != s.ID {
		return false
	}
	if s.Class != "" && !hasClass(n, s.Class) {
		return false
	}
	if s.Attr != "" {
		value, ok := lookupAttr(n, s.Attr)
		if !ok {
			return false
		}
		if s.AttrValue != "" && value != s.AttrValue {
			return false
		}
		if s.AttrContains != "" && !strings.Contains(value, s.AttrContains) {
			return false
		}
	}
	if s.Within != nil {
		for p := n.Parent; p != nil; p = p.Parent {
			if s.Within.matches(p) {
				return true
			}
		}
		return false
	}
	return true
}

// findAll returns every element under root matching any of sels, in
// document order.
func findAll(root *html.Node, sels []Selector) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for _, sel := range sels {
			if sel.matches(n) {
				out = append(out, n)
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func findFirst(root *html.Node, sels ...Selector) *html.Node {
	if matches := findAll(root, sels); len(matches) > 0 {
		return matches[0]
	}
	return nil
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func setAttr(n *html.Node, key, value string) bool {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			if a.Val == value {
				return false
			}
			n.Attr[i].Val = value
			return true
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
	return true
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}
