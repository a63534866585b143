// Package extract finds candidate video URLs in story pages: JSON payloads,
// key/value literals, Open Graph tags, raw .mp4 links and mobile redirect anchors.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	"golang.org/x/net/html"
)

// VideoKeys are the JSON fields that carry a playable URL, best quality first.
var VideoKeys = []string{
	"playable_url_quality_hd",
	"browser_native_hd_url",
	"playable_url_quality_sd",
	"browser_native_sd_url",
	"playable_url",
	"playback_url",
	"video_url",
}

// treeKeys extends VideoKeys with the DASH manifest, read only from parsed JSON.
var treeKeys = append(append([]string(nil), VideoKeys...), "dash_manifest_url")

// Page is a fetched document. The DOM and Open Graph views are parsed on first use.
type Page struct {
	Text string

	dom *goquery.Document
	og  *opengraph.OpenGraph
}

// NewPage wraps body text.
func NewPage(text string) *Page {
	return &Page{Text: text}
}

// DOM returns the parsed HTML document. Unparsable input yields an empty document.
func (p *Page) DOM() *goquery.Document {
	if p.dom != nil {
		return p.dom
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Text))
	if err != nil {
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	p.dom = doc
	return doc
}

// openGraph returns the Open Graph properties declared in the document head.
func (p *Page) openGraph() *opengraph.OpenGraph {
	if p.og != nil {
		return p.og
	}
	og := opengraph.NewOpenGraph()
	// A tokenizer error leaves whatever was read before it.
	_ = og.ProcessHTML(strings.NewReader(p.Text))
	p.og = og
	return og
}
