// Package dicomfile decides whether bytes are a DICOM record and extracts the
// header fields the renderer and gallery need.
//
// Classification inspects only a bounded prefix of an entry: the 128-byte
// preamble plus "DICM" magic, then a walk of the group 0002 file meta
// elements to spot DICOMDIR-style directory indexes by their Media Storage
// Directory SOP class. Pixel data is never touched.
//
// Metadata extraction parses the full header (still skipping pixel data) and
// maps absent fields to explicit unknown sentinels so downstream sorting and
// formatting never deal with missing values implicitly.
package dicomfile
