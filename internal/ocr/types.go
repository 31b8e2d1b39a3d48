// Package ocr defines the wire shape of the external layout-analysis
// engine's output. The engine is a black box: it returns, per shard, a
// full-text buffer plus positioned elements whose text anchors index into
// that buffer. Nothing here runs OCR.
package ocr

// Shard is one batch-output file of the layout engine. A document is a
// slice of shards; each shard covers one or more pages.
type Shard struct {
	Text  string `json:"text"`
	Pages []Page `json:"pages"`
}

// Page carries the structural units detected on one page. Engines emit
// different granularities; Units picks the best available.
type Page struct {
	Paragraphs []Element `json:"paragraphs,omitempty"`
	Blocks     []Element `json:"blocks,omitempty"`
	Lines      []Element `json:"lines,omitempty"`
}

// Units returns the finest structural unit the engine produced for this
// page: paragraphs, then blocks, then lines.
func (p Page) Units() []Element {
	if len(p.Paragraphs) > 0 {
		return p.Paragraphs
	}
	if len(p.Blocks) > 0 {
		return p.Blocks
	}
	return p.Lines
}

// Element is one positioned unit of text on a page.
type Element struct {
	Layout Layout `json:"layout"`
}

// Layout anchors an element into the shard text buffer and positions it on
// the page.
type Layout struct {
	TextAnchor   TextAnchor   `json:"textAnchor"`
	BoundingPoly BoundingPoly `json:"boundingPoly"`
	Confidence   *float32     `json:"confidence,omitempty"`
}

// TextAnchor references one or more spans of the shard's full text.
type TextAnchor struct {
	TextSegments []TextSegment `json:"textSegments"`
}

// TextSegment is a half-open [StartIndex, EndIndex) slice of the text buffer.
type TextSegment struct {
	StartIndex int64 `json:"startIndex"`
	EndIndex   int64 `json:"endIndex"`
}

// BoundingPoly is the element's bounding polygon. NormalizedVertices are in
// 0..1 page coordinates; Vertices are pixels. Engines set one or the other.
type BoundingPoly struct {
	Vertices           []Vertex `json:"vertices,omitempty"`
	NormalizedVertices []Vertex `json:"normalizedVertices,omitempty"`
}

// Vertex is a single polygon point.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Anchor returns the first vertex of the polygon, preferring normalized
// coordinates. The boolean is false when the polygon is degenerate (empty).
func (bp BoundingPoly) Anchor() (Vertex, bool) {
	if len(bp.NormalizedVertices) > 0 {
		return bp.NormalizedVertices[0], true
	}
	if len(bp.Vertices) > 0 {
		return bp.Vertices[0], true
	}
	return Vertex{}, false
}
