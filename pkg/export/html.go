// Package export renders a bundle as a standalone HTML document with inline
// styles and inline media, viewable without any external resources.
package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/yuin/goldmark"
	ghtml "github.com/yuin/goldmark/renderer/html"

	"staticlink-core/internal/entity"
	"staticlink-core/pkg/codec"
)

// FileExtension is the conventional extension for exported documents.
const FileExtension = ".html"

var markdown = goldmark.New(
	// User notes are untrusted; keep raw HTML out of the output.
	goldmark.WithRendererOptions(ghtml.WithHardWraps()),
)

const style = `body{font-family:-apple-system,"Segoe UI",Roboto,sans-serif;max-width:720px;margin:2rem auto;padding:0 1rem;color:#1a1a1a}
h1{border-bottom:2px solid #eee;padding-bottom:.5rem}
.item{border:1px solid #e2e2e2;border-radius:8px;padding:1rem;margin:1rem 0}
.item h2{margin:0 0 .5rem;font-size:1.1rem}
.item .type{color:#888;font-size:.8rem;text-transform:uppercase;letter-spacing:.05em}
pre{background:#f6f6f6;padding:.75rem;border-radius:6px;overflow-x:auto}
img{max-width:100%;border-radius:6px}
ul.checklist{list-style:none;padding-left:0}
ul.checklist li{padding:.15rem 0}
table.fields td{padding:.15rem .5rem .15rem 0;vertical-align:top}
table.fields td:first-child{color:#666;white-space:nowrap}`

// AsDocument renders the bundle as a single self-contained HTML file. All
// user-provided text is escaped before it reaches the markup.
func AsDocument(b *entity.Bundle) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(b.Title))
	fmt.Fprintf(&sb, "<style>%s</style>\n</head>\n<body>\n", style)
	fmt.Fprintf(&sb, "<h1>%s</h1>\n", html.EscapeString(b.Title))

	for _, item := range b.Items {
		rendered, err := renderItem(item)
		if err != nil {
			return nil, fmt.Errorf("export: item %s: %w", item.Id, err)
		}
		sb.WriteString("<div class=\"item\">\n")
		fmt.Fprintf(&sb, "<div class=\"type\">%s</div>\n", html.EscapeString(string(item.Type)))
		if item.Title != "" {
			fmt.Fprintf(&sb, "<h2>%s</h2>\n", html.EscapeString(item.Title))
		}
		sb.WriteString(rendered)
		sb.WriteString("\n</div>\n")
	}

	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}

func renderItem(item entity.Item) (string, error) {
	payload, err := item.Unwrap()
	if err != nil {
		return "", err
	}

	switch v := payload.(type) {
	case entity.Link:
		u := html.EscapeString(v.URL)
		return fmt.Sprintf(`<a href="%s">%s</a>`, u, u), nil

	case entity.Note:
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(v.Text), &buf); err != nil {
			return "", err
		}
		return buf.String(), nil

	case entity.BinaryContent:
		return renderBinary(item.Type, v), nil

	case entity.Checklist:
		var sb strings.Builder
		sb.WriteString(`<ul class="checklist">`)
		for _, e := range entity.FlattenEntries(v.Entries) {
			mark := "&#9744;"
			if e.Checked {
				mark = "&#9745;"
			}
			fmt.Fprintf(&sb, `<li style="padding-left:%drem">%s %s</li>`, e.Depth, mark, html.EscapeString(e.Text))
		}
		sb.WriteString("</ul>")
		return sb.String(), nil

	case entity.Contact:
		fields := []struct{ label, value string }{
			{"Name", v.Name},
			{"Phone", v.Phone},
			{"Email", v.Email},
			{"Organization", v.Organization},
			{"Address", v.Address},
		}
		var sb strings.Builder
		sb.WriteString(`<table class="fields">`)
		for _, f := range fields {
			if f.value == "" {
				continue
			}
			fmt.Fprintf(&sb, "<tr><td>%s</td><td>%s</td></tr>", f.label, html.EscapeString(f.value))
		}
		sb.WriteString("</table>")
		return sb.String(), nil

	case entity.Location:
		label := v.Address
		if label == "" {
			label = fmt.Sprintf("%f, %f", v.Latitude, v.Longitude)
		}
		return fmt.Sprintf(`<a href="https://www.openstreetmap.org/?mlat=%f&amp;mlon=%f">%s</a>`,
			v.Latitude, v.Longitude, html.EscapeString(label)), nil

	case entity.Email:
		return fmt.Sprintf("<p><strong>To:</strong> %s<br><strong>Subject:</strong> %s</p><pre>%s</pre>",
			html.EscapeString(v.To), html.EscapeString(v.Subject), html.EscapeString(v.Body)), nil

	case entity.Code:
		return fmt.Sprintf(`<p class="type">%s</p><pre><code>%s</code></pre>`,
			html.EscapeString(v.Language), html.EscapeString(v.Text)), nil

	case entity.QrCode:
		png, err := qrcode.Encode(v.Content, qrcode.Medium, 256)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`<img src="%s" alt="%s">`,
			codec.EncodeDataURI(png, "image/png"), html.EscapeString(v.Content)), nil

	default:
		return "", fmt.Errorf("unsupported item type %q", item.Type)
	}
}

func renderBinary(t entity.ItemType, v entity.BinaryContent) string {
	name := html.EscapeString(v.FileName)
	switch {
	case t == entity.ItemTypeAudio:
		return fmt.Sprintf(`<audio controls src="%s"></audio>`, html.EscapeString(v.Content))
	case t == entity.ItemTypeDrawing, strings.HasPrefix(v.MimeType, "image/"):
		return fmt.Sprintf(`<img src="%s" alt="%s">`, html.EscapeString(v.Content), name)
	default:
		return fmt.Sprintf(`<p>%s (%s)</p><a href="%s" download="%s">Download</a>`,
			name, formatSize(v.Size), html.EscapeString(v.Content), name)
	}
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
