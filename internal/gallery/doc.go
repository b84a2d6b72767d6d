// Package gallery assembles rendered images into a single self-contained
// browsable HTML document.
//
// Images are grouped by (series number, description) and ordered by slice
// location then instance number; unknown values sort after all known ones and
// ties keep their original enumeration order, so the document is identical
// across runs on unchanged input. The page needs nothing at view time beyond
// the image files sitting next to it: styles and the full-view navigation are
// inlined, and prev/next stop at the sequence boundaries instead of wrapping.
package gallery
