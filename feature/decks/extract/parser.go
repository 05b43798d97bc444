package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"deck-sync/core/record"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const linkBase = "https://www.notion.so/"

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	hashtagRegex    = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_:-]+)`)
)

// Page describes the exported page being parsed.
type Page struct {
	// ID is the page id used in provenance links. Links are omitted when empty.
	ID string
	// Namespace is the workspace segment of provenance links.
	Namespace string
	// Dir is the directory relative image paths are resolved against.
	Dir string
	// Root bounds which files may be read. Empty means no bound.
	Root string
}

// ParseHTML extracts one record per toggle block in the document.
func ParseHTML(r io.Reader, page Page, logger *zap.Logger) ([]record.Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	p := &pageParser{page: page, logger: logger, pageTag: titleTag(findTitle(doc))}

	var records []record.Record
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "details" {
			records = append(records, p.toggle(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)

	return records, nil
}

type pageParser struct {
	page    Page
	pageTag string
	logger  *zap.Logger
}

// toggle converts a <details> element into a record.
func (p *pageParser) toggle(n *html.Node) record.Record {
	var summary *html.Node
	var body []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if summary == nil && c.Type == html.ElementNode && c.Data == "summary" {
			summary = c
			continue
		}
		body = append(body, c)
	}

	rec := record.Record{}
	if summary != nil {
		rec.Front = cleanText(nodeText(summary))
	}

	seen := make(map[string]bool)
	var back strings.Builder
	var backText strings.Builder
	for _, c := range body {
		p.collectMedia(c, &rec, seen)
		if err := html.Render(&back, c); err != nil {
			p.logger.Warn("Failed to render toggle content", zap.Error(err))
		}
		backText.WriteString(nodeText(c))
		backText.WriteString(" ")
	}
	rec.Back = strings.TrimSpace(back.String())
	rec.Tags = p.tags(backText.String())

	if block := blockID(n); block != "" && p.page.ID != "" {
		rec.Source = p.link(block)
	}

	return rec
}

func (p *pageParser) link(block string) string {
	base := linkBase
	if p.page.Namespace != "" {
		base += strings.Trim(p.page.Namespace, "/") + "/"
	}
	return base + p.page.ID + "#" + strings.ReplaceAll(block, "-", "")
}

func (p *pageParser) tags(text string) []string {
	var tags []string
	seen := make(map[string]bool)
	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	add(p.pageTag)
	for _, m := range hashtagRegex.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	return tags
}

// collectMedia reads every local image under n and points its src at the stored filename.
func (p *pageParser) collectMedia(n *html.Node, rec *record.Record, seen map[string]bool) {
	if n.Type == html.ElementNode && n.Data == "img" {
		for i, attr := range n.Attr {
			if attr.Key != "src" {
				continue
			}
			media, ok := p.loadMedia(attr.Val)
			if !ok {
				break
			}
			n.Attr[i].Val = media.Filename
			if !seen[media.Filename] {
				seen[media.Filename] = true
				rec.Media = append(rec.Media, media)
			}
			break
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.collectMedia(c, rec, seen)
	}
}

func (p *pageParser) loadMedia(src string) (record.Media, bool) {
	if src == "" || strings.HasPrefix(src, "data:") {
		return record.Media{}, false
	}
	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		return record.Media{}, false
	}

	rel, err := url.PathUnescape(src)
	if err != nil {
		rel = src
	}
	full := filepath.Join(p.page.Dir, filepath.FromSlash(rel))

	if p.page.Root != "" {
		root := filepath.Clean(p.page.Root)
		if !strings.HasPrefix(full, root+string(os.PathSeparator)) {
			p.logger.Warn("Image outside export, skipping", zap.String("src", src))
			return record.Media{}, false
		}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		p.logger.Warn("Image not found, skipping", zap.String("src", src), zap.Error(err))
		return record.Media{}, false
	}

	sum := sha256.Sum256(data)
	return record.Media{
		Src:      src,
		Filename: hex.EncodeToString(sum[:8]) + strings.ToLower(filepath.Ext(full)),
		Data:     data,
	}, true
}

// blockID returns the block id of a toggle. It is taken from the <details>
// element, its toggle list wrapper, or the heading inside its <summary>.
// Page level ids are never used, so an unidentified toggle returns "".
func blockID(n *html.Node) string {
	if id := attrValue(n, "id"); id != "" {
		return id
	}

	// <ul class="toggle" id=…><li><details>
	for p := n.Parent; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if p.Data == "li" {
			if id := attrValue(p, "id"); id != "" {
				return id
			}
			continue
		}
		if p.Data == "ul" && hasClass(p, "toggle") {
			if id := attrValue(p, "id"); id != "" {
				return id
			}
		}
		break
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "summary" {
			return firstID(c)
		}
	}
	return ""
}

// firstID returns the first id found below n in document order.
func firstID(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if id := attrValue(c, "id"); id != "" {
			return id
		}
		if id := firstID(c); id != "" {
			return id
		}
	}
	return ""
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func findTitle(doc *html.Node) string {
	var title string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			title = nodeText(n)
			return
		}
		for c := n.FirstChild; c != nil && title == ""; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)
	return cleanText(title)
}

// titleTag turns a page title into a single tag.
func titleTag(title string) string {
	return strings.Join(strings.Fields(title), "_")
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var f func(*html.Node)
	f = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		if node.Type == html.ElementNode {
			switch node.Data {
			case "p", "div", "br", "li", "tr", "h1", "h2", "h3":
				b.WriteString(" ")
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return b.String()
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
