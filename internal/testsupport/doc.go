// Package testsupport provides helpers for building test fixtures: synthetic
// DICOM part-10 files, ZIP and ISO archives containing them, and per-test
// configurations seeded with temporary directories.
package testsupport
