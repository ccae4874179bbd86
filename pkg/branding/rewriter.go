package branding

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// passes is how many times the rules run over a page. The second pass
// reaches elements produced by the first.
const passes = 2

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the rewriter logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Rewriter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPolicy replaces the sanitizer applied to injected fragments.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(r *Rewriter) {
		if policy != nil {
			r.policy = policy
		}
	}
}

// Rewriter applies branding rules to HTML pages. Missing elements are
// skipped; rewriting an already branded page changes nothing.
type Rewriter struct {
	rules  []Rule
	policy *bluemonday.Policy
	logger *zap.Logger
}

// NewRewriter builds a rewriter for rules.
func NewRewriter(rules []Rule, opts ...Option) *Rewriter {
	r := &Rewriter{
		rules:  append([]Rule(nil), rules...),
		policy: FragmentPolicy(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FragmentPolicy is the sanitizer for injected markup: user content rules
// plus class attributes and link targets.
func FragmentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	return p
}

// Rewrite returns the branded page. When the page cannot be parsed or
// rendered the original bytes are returned.
func (r *Rewriter) Rewrite(page []byte) []byte {
	out, _, err := r.RewriteCount(page)
	if err != nil {
		r.logger.Warn("branding skipped", zap.Error(err))
		return page
	}
	return out
}

// RewriteCount rewrites page and reports how many mutations were applied.
func (r *Rewriter) RewriteCount(page []byte) ([]byte, int, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return page, 0, err
	}
	applied := 0
	for pass := 0; pass < passes; pass++ {
		for _, rule := range r.rules {
			if r.apply(doc, rule) {
				applied++
				r.logger.Debug("branding rule applied", zap.String("rule", rule.Name), zap.Int("pass", pass))
			}
		}
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return page, 0, err
	}
	return buf.Bytes(), applied, nil
}

func (r *Rewriter) apply(doc *html.Node, rule Rule) bool {
	switch rule.Action {
	case ActionSetTitle:
		return setTitle(doc, rule.Text)
	case ActionStylesheet:
		return addStylesheet(doc, rule.Href)
	}

	target := r.target(doc, rule)
	if target == nil {
		return false
	}
	if rule.IfTextContains != "" && !strings.Contains(textContent(target), rule.IfTextContains) {
		return false
	}

	switch rule.Action {
	case ActionSetAttr:
		changed := false
		for key, value := range rule.Attrs {
			if setAttr(target, key, value) {
				changed = true
			}
		}
		return changed
	case ActionSetText:
		if target.Data == "input" {
			return setAttr(target, "value", rule.Text)
		}
		if textContent(target) == rule.Text {
			return false
		}
		removeChildren(target)
		target.AppendChild(&html.Node{Type: html.TextNode, Data: rule.Text})
		return true
	case ActionSetHTML:
		nodes := r.fragment(target, rule.HTML)
		if renderChildren(target) == renderNodes(nodes) {
			return false
		}
		removeChildren(target)
		for _, n := range nodes {
			target.AppendChild(n)
		}
		return true
	case ActionInsertBefore, ActionAppendChild:
		if findFirst(doc, Selector{ID: rule.GuardID}) != nil {
			return false
		}
		if rule.Action == ActionInsertBefore && target.Parent == nil {
			return false
		}
		wrapper := &html.Node{
			Type:     html.ElementNode,
			Data:     "div",
			DataAtom: atom.Div,
			Attr:     []html.Attribute{{Key: "id", Val: rule.GuardID}},
		}
		if rule.Class != "" {
			wrapper.Attr = append(wrapper.Attr, html.Attribute{Key: "class", Val: rule.Class})
		}
		for _, n := range r.fragment(wrapper, rule.HTML) {
			wrapper.AppendChild(n)
		}
		if rule.Action == ActionInsertBefore {
			target.Parent.InsertBefore(wrapper, target)
		} else {
			target.AppendChild(wrapper)
		}
		return true
	}
	return false
}

func (r *Rewriter) target(doc *html.Node, rule Rule) *html.Node {
	matches := findAll(doc, rule.Select)
	if len(matches) == 0 {
		return nil
	}
	if rule.Last {
		return matches[len(matches)-1]
	}
	return matches[0]
}

// fragment sanitizes markup and parses it in the context of parent.
func (r *Rewriter) fragment(parent *html.Node, markup string) []*html.Node {
	clean := r.policy.Sanitize(markup)
	scope := parent
	if scope.Type != html.ElementNode {
		scope = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	}
	nodes, err := html.ParseFragment(strings.NewReader(clean), scope)
	if err != nil {
		r.logger.Warn("dropping unparsable fragment", zap.Error(err))
		return nil
	}
	return nodes
}

func setTitle(doc *html.Node, title string) bool {
	head := findFirst(doc, Selector{Tag: "head"})
	if head == nil {
		return false
	}
	node := findFirst(head, Selector{Tag: "title"})
	if node == nil {
		node = &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
		head.AppendChild(node)
	} else if textContent(node) == title {
		return false
	}
	removeChildren(node)
	node.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	return true
}

func addStylesheet(doc *html.Node, href string) bool {
	head := findFirst(doc, Selector{Tag: "head"})
	if head == nil {
		return false
	}
	if findFirst(head, Selector{Tag: "link", Attr: "href", AttrValue: href}) != nil {
		return false
	}
	head.AppendChild(&html.Node{
		Type:     html.ElementNode,
		Data:     "link",
		DataAtom: atom.Link,
		Attr: []html.Attribute{
			{Key: "rel", Val: "stylesheet"},
			{Key: "type", Val: "text/css"},
			{Key: "href", Val: href},
		},
	})
	return true
}

func renderNodes(nodes []*html.Node) string {
	var buf bytes.Buffer
	for _, n := range nodes {
		_ = html.Render(&buf, n)
	}
	return buf.String()
}

func renderChildren(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}
