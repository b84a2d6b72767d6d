// Package api exposes the two operations the command layer consumes:
// Extract, which materializes DICOM records out of an archive, and Render,
// which turns an extraction report into annotated images plus a gallery
// document. The api layer owns run identity and catalog recording; the
// packages underneath stay free of history side effects.
package api
