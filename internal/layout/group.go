package layout

import "sort"

// PageBlocks is the per-page batch handed to a page-scoped segmenter.
type PageBlocks struct {
	Page   int
	Blocks []TextBlock
}

// GroupByPage partitions an ordered block sequence by page number. The
// returned pages are sorted ascending; blocks keep their incoming order
// within a page.
func GroupByPage(blocks []TextBlock) []PageBlocks {
	byPage := make(map[int][]TextBlock)
	for _, b := range blocks {
		byPage[b.Page] = append(byPage[b.Page], b)
	}

	pages := make([]PageBlocks, 0, len(byPage))
	for page, bs := range byPage {
		pages = append(pages, PageBlocks{Page: page, Blocks: bs})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })
	return pages
}
