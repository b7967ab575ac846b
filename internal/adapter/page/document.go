package page

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"quiz-save/internal/domain"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is an answer page held as a parsed HTML tree. It implements
// domain.FeedbackDisplay and hands out domain.Control values for its radio
// inputs. All access to the tree goes through mu.
type Document struct {
	mu       sync.Mutex
	root     *html.Node
	anchorID string
}

// Parse reads an HTML page. anchorID names the element feedback is inserted
// in front of.
func Parse(r io.Reader, anchorID string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Document{root: root, anchorID: anchorID}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(s string, anchorID string) (*Document, error) {
	return Parse(strings.NewReader(s), anchorID)
}

// Controls binds every option of every question to its input element.
func (d *Document) Controls(questions domain.QuestionSet) (domain.ControlMap, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	controls := make(domain.ControlMap)
	for _, q := range questions {
		for _, o := range q.Options {
			n := findByID(d.root, o.ElementID)
			if n == nil {
				return nil, domain.NewElementNotFoundError(o.ElementID).
					WithContext("question", q.Key)
			}
			if !isInput(n) {
				return nil, domain.NewInvalidInputError(
					fmt.Sprintf("Element %s is <%s>, not an input", o.ElementID, n.Data))
			}
			controls[domain.ControlKey{Question: q.Key, Code: o.Code}] = &inputControl{doc: d, node: n}
		}
	}
	return controls, nil
}

// Check marks the input checked the way a click would: other radios sharing
// its name are cleared.
func (d *Document) Check(elementID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := findByID(d.root, elementID)
	if n == nil {
		return domain.NewElementNotFoundError(elementID)
	}
	if !isInput(n) {
		return domain.NewInvalidInputError(fmt.Sprintf("Element %s is <%s>, not an input", elementID, n.Data))
	}

	if name := attr(n, "name"); name != "" && strings.EqualFold(attr(n, "type"), "radio") {
		walk(d.root, func(other *html.Node) {
			if other != n && isInput(other) && attr(other, "name") == name {
				removeAttr(other, "checked")
			}
		})
	}
	setAttr(n, "checked", "")
	return nil
}

// Uncheck clears the checked state of the input.
func (d *Document) Uncheck(elementID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := findByID(d.root, elementID)
	if n == nil {
		return domain.NewElementNotFoundError(elementID)
	}
	removeAttr(n, "checked")
	return nil
}

// DisplayFeedback inserts a new <div> holding text right before the anchor.
// Every call adds another notice; none are ever removed.
func (d *Document) DisplayFeedback(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	anchor := findByID(d.root, d.anchorID)
	if anchor == nil || anchor.Parent == nil {
		return domain.NewAnchorNotFoundError(d.anchorID)
	}

	div := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	div.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	anchor.Parent.InsertBefore(div, anchor)
	return nil
}

// Render writes the current state of the page.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the page into a string.
func (d *Document) String() string {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return ""
	}
	return sb.String()
}

type inputControl struct {
	doc  *Document
	node *html.Node
}

func (c *inputControl) Checked() bool {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()
	return hasAttr(c.node, "checked")
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(root)
	return found
}

func isInput(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Input
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}
