package internal

import (
	"strings"

	"golang.org/x/net/html"
)

// Structural markers unique to the verified payment-notification template.
const (
	amountMarkerClass = "amount-container"
	noteMarkerClass   = "payment-note"
)

type Format string

const (
	FormatVerified   Format = "VERIFIED"
	FormatUnverified Format = "UNVERIFIED"
)

// Notification is one inbound delivery from the mail-forwarding provider.
// It lives only for the duration of a single ingestion call.
type Notification struct {
	Sender    string
	Subject   string
	HTML      string
	Text      string
	Timestamp string
	Token     string
	Signature string
}

// Body prefers the HTML part and falls back to plain text.
func (n Notification) Body() string {
	if strings.TrimSpace(n.HTML) != "" {
		return n.HTML
	}
	return n.Text
}

// DetectFormat is total: a document without the verified template's amount
// container is classified unverified rather than rejected.
func DetectFormat(body string) Format {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return FormatUnverified
	}
	if findByClass(doc, amountMarkerClass) != nil {
		return FormatVerified
	}
	return FormatUnverified
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "class" && hasClass(a.Val, class) {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(attr, class string) bool {
	for _, c := range strings.Fields(attr) {
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
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
