// Package layout turns raw layout-engine output into a flat, reading-order
// sorted sequence of text blocks.
package layout

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/shikshalabs/qpaper/internal/ocr"
)

// TextBlock is one normalized unit of OCR text. X/Y are only a relative
// sort key within a document (normalized or pixel space, whichever the
// engine produced); they are never persisted.
type TextBlock struct {
	Page       int
	Text       string
	X          float64
	Y          float64
	Confidence float32
}

const (
	// defaultConfidence is assumed when the engine omits a score.
	defaultConfidence = 0.9

	// sameLineYThreshold treats two blocks on the same page as one line when
	// their anchors are this close vertically (normalized coordinates).
	sameLineYThreshold = 0.02
)

var (
	spacesRe   = regexp.MustCompile(`[ \t]+`)
	newlinesRe = regexp.MustCompile(`\n{3,}`)
)

// Normalize converts the engine's shard output into a globally ordered block
// sequence. Pages are numbered continuously across shards, 1-based. Elements
// with an unresolvable anchor or a degenerate bounding polygon are skipped,
// never fatal.
//
// The reading-order contract is (page, y, x) ascending: top-to-bottom,
// left-to-right. True multi-column layouts interleave under this sort; that
// is a documented limitation, not handled here.
func Normalize(shards []ocr.Shard) []TextBlock {
	var blocks []TextBlock
	page := 0

	for _, shard := range shards {
		for _, p := range shard.Pages {
			page++
			for _, el := range p.Units() {
				text := resolveAnchorText(shard.Text, el.Layout.TextAnchor)
				if text == "" {
					continue
				}
				anchor, ok := el.Layout.BoundingPoly.Anchor()
				if !ok {
					continue
				}
				conf := float32(defaultConfidence)
				if el.Layout.Confidence != nil {
					conf = *el.Layout.Confidence
				}
				blocks = append(blocks, TextBlock{
					Page:       page,
					Text:       text,
					X:          anchor.X,
					Y:          anchor.Y,
					Confidence: conf,
				})
			}
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	return mergeSameLine(blocks)
}

// resolveAnchorText slices the shard text buffer at the anchor offsets and
// normalizes whitespace: runs of spaces/tabs collapse to one space, 3+
// newlines collapse to 2, and the result is trimmed.
func resolveAnchorText(fullText string, anchor ocr.TextAnchor) string {
	if len(anchor.TextSegments) == 0 {
		return ""
	}
	var b strings.Builder
	n := int64(len(fullText))
	for _, seg := range anchor.TextSegments {
		start, end := seg.StartIndex, seg.EndIndex
		if start < 0 || end < start || start >= n {
			continue
		}
		if end > n {
			end = n
		}
		b.WriteString(fullText[start:end])
	}
	text := spacesRe.ReplaceAllString(b.String(), " ")
	text = newlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// mergeSameLine concatenates consecutive blocks on the same page whose
// anchors are within sameLineYThreshold vertically, keeping the minimum
// confidence of the merged constituents.
func mergeSameLine(blocks []TextBlock) []TextBlock {
	merged := make([]TextBlock, 0, len(blocks))
	for _, b := range blocks {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Page == b.Page && math.Abs(last.Y-b.Y) < sameLineYThreshold {
				last.Text += " " + b.Text
				if b.Confidence < last.Confidence {
					last.Confidence = b.Confidence
				}
				continue
			}
		}
		merged = append(merged, b)
	}
	return merged
}
