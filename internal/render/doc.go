// Package render converts extracted DICOM records into annotated PNG images.
//
// Each record's first pixel frame is stretched linearly to the 8-bit display
// range (per image, not per series) and stamped with a corner overlay of the
// key header fields. Font resolution happens once at renderer construction:
// a ranked list of TTF candidates is probed and a bundled bitmap face backs
// them all, so a missing font degrades the overlay, never the render.
//
// Records without pixel data, such as DICOMDIR indexes, are reported as "no
// image" rather than errors.
package render
