package parser

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"rsc.io/pdf"
)

// ExtractText returns the text of every page in order. Glyphs of a page are
// joined into words and the words into one space-separated line; pages are
// separated by newlines.
func ExtractText(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	// rsc.io/pdf panics on malformed streams.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("decode pdf: %v", p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		b.WriteString(joinGlyphs(page.Content().Text))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// joinGlyphs inserts a space between glyphs that are on different baselines
// or separated by more than a fraction of the font size.
func joinGlyphs(glyphs []pdf.Text) string {
	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			size := prev.FontSize
			if size <= 0 {
				size = 1
			}
			newLine := math.Abs(g.Y-prev.Y) > size/2
			gap := g.X - (prev.X + prev.W)
			if newLine || gap > size*0.15 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
