package crawler

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/net/html"
)

// headingElements are the HTML elements whose inner text is collected as
// headings for the content sink.
var headingElements = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Extractor parses HTML content into the pieces the traversal engine and
// the content sink care about. It resolves every discovered reference
// against the URL of the page being parsed.
//
// Design decision: We use golang.org/x/net/html rather than regex because:
//  1. It correctly handles the malformed HTML common on the web
//  2. A single DOM walk collects links, media, forms, and text together
//  3. One bad attribute never aborts extraction of the rest
type Extractor struct {
	// baseURL is the parsed URL of the page being parsed, or nil when the
	// page URL itself was malformed. A nil base degrades resolution to
	// returning hrefs unchanged rather than failing the page.
	baseURL *url.URL
}

// ExtractResult contains everything pulled out of one HTML page.
type ExtractResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Links is the deduplicated set of absolute URLs from anchor hrefs,
	// in document order.
	Links []string

	// Headings holds the text of h1..h6 elements in document order.
	Headings []string

	// Paragraphs holds the text of <p> elements in document order.
	Paragraphs []string

	// MetaTags maps meta tag names to their content values.
	MetaTags map[string]string

	// Forms describes the HTML forms found on the page.
	Forms []FormInfo

	// Images contains resolved <img src> URLs.
	Images []string

	// Videos contains resolved <video src> and <source src> URLs.
	Videos []string

	// ScriptSources contains resolved external script URLs.
	ScriptSources []string

	// InlineScripts contains the bodies of inline <script> elements.
	InlineScripts []string

	// Emails contains unique email-like substrings found in the page text.
	Emails []string
}

// FormInfo describes an HTML form.
type FormInfo struct {
	// Action is the resolved form action URL.
	Action string

	// Method is the HTTP method, upper-cased; GET when unspecified.
	Method string

	// Fields holds the form's named input fields.
	Fields []FormField
}

// FormField is a single input, select, or textarea element inside a form.
type FormField struct {
	// Name is the field name attribute.
	Name string

	// Type is the input type (text, password, hidden, ...).
	Type string
}

// NewExtractor creates an extractor for a page at the given URL.
// A malformed base URL is not an error: resolution degrades to passing
// hrefs through unchanged.
func NewExtractor(baseURL string) *Extractor {
	u, err := url.Parse(baseURL)
	if err != nil {
		u = nil
	}
	return &Extractor{baseURL: u}
}

// Extract parses HTML content and collects links, text, and media
// references in a single DOM walk.
func (e *Extractor) Extract(content io.Reader) (*ExtractResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	result := &ExtractResult{
		MetaTags: make(map[string]string),
	}
	linkSet := mapset.NewThreadUnsafeSet[string]()

	var textContent strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			e.processElement(n, result, linkSet)
			// Script bodies are collected separately; do not descend into
			// them for page text.
			if n.Data == "script" {
				if getAttr(n, "src") == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.InlineScripts = append(result.InlineScripts, n.FirstChild.Data)
				}
				return
			}
		case html.TextNode:
			textContent.WriteString(n.Data)
			textContent.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	result.Emails = extractEmails(textContent.String())

	return result, nil
}

// ExtractLinks parses markup and returns the deduplicated absolute link
// set. This is the traversal engine's view of a page: everything else in
// ExtractResult exists for the content sink.
func (e *Extractor) ExtractLinks(markup string) []string {
	result, err := e.Extract(strings.NewReader(markup))
	if err != nil {
		return nil
	}
	return result.Links
}

// processElement handles a single HTML element node.
func (e *Extractor) processElement(n *html.Node, result *ExtractResult, linkSet mapset.Set[string]) {
	switch n.Data {
	case "title":
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		if href := getAttr(n, "href"); href != "" {
			resolved := e.ResolveLink(href)
			if resolved != "" && linkSet.Add(resolved) {
				result.Links = append(result.Links, resolved)
			}
		}

	case "h1", "h2", "h3", "h4", "h5", "h6":
		if text := innerText(n); text != "" {
			result.Headings = append(result.Headings, text)
		}

	case "p":
		if text := innerText(n); text != "" {
			result.Paragraphs = append(result.Paragraphs, text)
		}

	case "meta":
		name := getAttr(n, "name")
		if name == "" {
			name = getAttr(n, "property") // OpenGraph uses property
		}
		content := getAttr(n, "content")
		if name != "" && content != "" {
			result.MetaTags[name] = content
		}

	case "form":
		form := FormInfo{
			Action: e.ResolveLink(getAttr(n, "action")),
			Method: strings.ToUpper(getAttr(n, "method")),
		}
		if form.Method == "" {
			form.Method = "GET"
		}
		extractFormFields(n, &form)
		result.Forms = append(result.Forms, form)

	case "img":
		if src := getAttr(n, "src"); src != "" {
			if resolved := e.ResolveLink(src); resolved != "" {
				result.Images = append(result.Images, resolved)
			}
		}

	case "video", "source":
		if src := getAttr(n, "src"); src != "" {
			if resolved := e.ResolveLink(src); resolved != "" {
				result.Videos = append(result.Videos, resolved)
			}
		}

	case "script":
		if src := getAttr(n, "src"); src != "" {
			if resolved := e.ResolveLink(src); resolved != "" {
				result.ScriptSources = append(result.ScriptSources, resolved)
			}
		}
	}
}

// ResolveLink normalizes a single href to an absolute URL.
//
// Absolute links pass through unchanged regardless of base. Relative links
// are resolved against the page URL. When the page URL itself was
// malformed, the href is returned as-is: degraded but non-fatal, matching
// the extractor's best-effort contract. Non-navigable schemes and bare
// fragments resolve to "".
func (e *Extractor) ResolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	if e.baseURL == nil {
		return href
	}

	u, err := url.Parse(href)
	if err != nil {
		// One malformed link never aborts extraction of the rest.
		return ""
	}

	return e.baseURL.ResolveReference(u).String()
}

// extractFormFields recursively collects named fields from a form element.
func extractFormFields(n *html.Node, form *FormInfo) {
	if n.Type == html.ElementNode &&
		(n.Data == "input" || n.Data == "select" || n.Data == "textarea") {
		field := FormField{
			Name: getAttr(n, "name"),
			Type: getAttr(n, "type"),
		}
		if field.Type == "" {
			field.Type = n.Data
			if n.Data == "input" {
				field.Type = "text"
			}
		}
		if field.Name != "" {
			form.Fields = append(form.Fields, field)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractFormFields(c, form)
	}
}

// emailRegex is deliberately permissive: false positives are acceptable
// for harvesting, strict RFC 5322 parsing would miss real-world cases.
var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// extractEmails extracts unique, lower-cased email addresses from text.
func extractEmails(text string) []string {
	matches := emailRegex.FindAllString(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, email := range matches {
		lower := strings.ToLower(email)
		if !seen[lower] {
			seen[lower] = true
			unique = append(unique, lower)
		}
	}

	return unique
}

// innerText returns the trimmed concatenated text of a node's children.
func innerText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
