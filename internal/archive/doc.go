// Package archive exposes a uniform, restartable view over the two container
// formats medical-imaging discs ship in: ZIP archives and ISO 9660 images.
//
// Open detects the container kind from the file extension, falling back to
// magic-byte sniffing, and returns a Reader whose Entries method enumerates
// regular files in archive-native order. ZIP entries come from the central
// directory; ISO entries come from a depth-first, name-sorted walk of the
// primary volume descriptor's directory tree. Entry streams are lazy and can
// be reopened, so enumeration is cheap even for large images.
package archive
