package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PayloadType tags a Payload.
type PayloadType string

const (
	PayloadImage PayloadType = "image"
	PayloadTable PayloadType = "table"
	PayloadHTML  PayloadType = "html"
	PayloadText  PayloadType = "text"
	PayloadGrid  PayloadType = "grid"
	PayloadChart PayloadType = "plotly"
	PayloadError PayloadType = "error"
)

// Payload is the tagged variant a pane renders to. Only the fields of the
// tagged variant are meaningful:
//
//	image:  Src, Alt
//	table:  Columns, Rows
//	html:   Content
//	text:   Content
//	grid:   Items, Span (items per row)
//	plotly: Figure
//	error:  Message
type Payload struct {
	Type    PayloadType     `json:"type"`
	Content string          `json:"content,omitempty"`
	Src     string          `json:"src,omitempty"`
	Alt     string          `json:"alt,omitempty"`
	Title   string          `json:"title,omitempty"`
	Columns []string        `json:"columns,omitempty"`
	Rows    [][]any         `json:"rows,omitempty"`
	Items   []Payload       `json:"items,omitempty"`
	Span    int             `json:"span,omitempty"`
	Figure  json.RawMessage `json:"figure,omitempty"`
	Message string          `json:"message,omitempty"`

	raw json.RawMessage
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	type plain Payload
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Payload(v)
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Text builds a text payload.
func Text(content string) *Payload {
	return &Payload{Type: PayloadText, Content: content}
}

// Table builds a table payload.
func Table(title string, columns []string, rows [][]any) *Payload {
	return &Payload{Type: PayloadTable, Title: title, Columns: columns, Rows: rows}
}

// Grid builds a grid of sub-payloads laid out span per row.
func Grid(span int, items ...Payload) *Payload {
	return &Payload{Type: PayloadGrid, Span: span, Items: items}
}

// Failure builds an error payload.
func Failure(format string, args ...any) *Payload {
	return &Payload{Type: PayloadError, Message: fmt.Sprintf(format, args...)}
}

var (
	payloadTitle = lipgloss.NewStyle().Bold(true)
	payloadError = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	payloadMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	tagPattern   = regexp.MustCompile(`(?s)<[^>]*>`)
	breakPattern = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/tr|/h[1-6])\s*/?>`)
)

// Render draws p for a terminal of the given width.
func Render(p *Payload, width int) string {
	if p == nil {
		return payloadMuted.Render("(no content)")
	}
	if width <= 0 {
		width = 80
	}

	var body string
	switch p.Type {
	case PayloadText:
		body = lipgloss.NewStyle().Width(width).Render(p.Content)
	case PayloadHTML:
		body = lipgloss.NewStyle().Width(width).Render(stripHTML(p.Content))
	case PayloadImage:
		alt := p.Alt
		if alt == "" {
			alt = "image"
		}
		body = payloadMuted.Render(fmt.Sprintf("[%s: %s]", alt, describeSource(p.Src)))
	case PayloadTable:
		body = renderTable(p.Columns, p.Rows, width)
	case PayloadGrid:
		body = renderGrid(p, width)
	case PayloadChart:
		body = describeFigure(p.Figure)
	case PayloadError:
		body = payloadError.Render("error: " + p.Message)
	default:
		body = dump(p)
	}

	if p.Title != "" && p.Type != PayloadError {
		return payloadTitle.Render(p.Title) + "\n" + body
	}
	return body
}

func renderTable(columns []string, rows [][]any, width int) string {
	cells := make([][]string, 0, len(rows)+1)
	if len(columns) > 0 {
		cells = append(cells, columns)
	}
	for _, row := range rows {
		line := make([]string, len(row))
		for i, v := range row {
			line[i] = cell(v)
		}
		cells = append(cells, line)
	}
	if len(cells) == 0 {
		return payloadMuted.Render("(empty table)")
	}

	widths := map[int]int{}
	for _, row := range cells {
		for i, c := range row {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for r, row := range cells {
		parts := make([]string, len(row))
		for i, c := range row {
			parts[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		line := strings.TrimRight(strings.Join(parts, "  "), " ")
		if r == 0 && len(columns) > 0 {
			line = payloadTitle.Render(line)
		}
		b.WriteString(line)
		if r < len(cells)-1 {
			b.WriteByte('\n')
		}
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
}

func renderGrid(p *Payload, width int) string {
	span := p.Span
	if span <= 0 {
		span = 1
	}
	colWidth := (width - 2*(span-1)) / span
	if colWidth < 10 {
		colWidth = width
		span = 1
	}

	var rows []string
	for i := 0; i < len(p.Items); i += span {
		end := i + span
		if end > len(p.Items) {
			end = len(p.Items)
		}
		cols := make([]string, 0, span)
		for j := i; j < end; j++ {
			item := p.Items[j]
			cols = append(cols, lipgloss.NewStyle().Width(colWidth).Render(Render(&item, colWidth)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(cols)...))
	}
	if len(rows) == 0 {
		return payloadMuted.Render("(empty grid)")
	}
	return strings.Join(rows, "\n\n")
}

func joinWithGap(cols []string) []string {
	out := make([]string, 0, 2*len(cols))
	for i, c := range cols {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, c)
	}
	return out
}

func describeFigure(raw json.RawMessage) string {
	var fig struct {
		Data []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"data"`
		Layout struct {
			Title any `json:"title"`
		} `json:"layout"`
	}
	if err := json.Unmarshal(raw, &fig); err != nil {
		return payloadMuted.Render("[chart]")
	}

	title := "chart"
	switch t := fig.Layout.Title.(type) {
	case string:
		title = t
	case map[string]any:
		if s, ok := t["text"].(string); ok {
			title = s
		}
	}
	lines := []string{payloadTitle.Render("[" + title + "]")}
	for _, tr := range fig.Data {
		kind := tr.Type
		if kind == "" {
			kind = "scatter"
		}
		name := tr.Name
		if name == "" {
			name = "(unnamed)"
		}
		lines = append(lines, fmt.Sprintf("  %s (%s)", name, kind))
	}
	return strings.Join(lines, "\n")
}

func describeSource(src string) string {
	if strings.HasPrefix(src, "data:") {
		mime := strings.TrimPrefix(strings.SplitN(src, ";", 2)[0], "data:")
		return fmt.Sprintf("%s, %d bytes inline", mime, len(src))
	}
	if src == "" {
		return "no source"
	}
	return src
}

func stripHTML(s string) string {
	s = breakPattern.ReplaceAllString(s, "\n")
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}

func dump(p *Payload) string {
	raw := p.raw
	if len(raw) == 0 {
		var err error
		if raw, err = json.Marshal(p); err != nil {
			return fmt.Sprintf("%+v", *p)
		}
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.6g", t)
	default:
		return fmt.Sprint(t)
	}
}
