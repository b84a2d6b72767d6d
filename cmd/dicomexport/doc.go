// Command dicomexport extracts DICOM records from ZIP and ISO 9660 archives
// and optionally renders them into annotated images with a browsable gallery.
package main
