// Package extract drives archive enumeration through classification and
// materializes DICOM records into a destination tree.
//
// The engine is deliberately coarse about caching: a non-empty destination
// with overwrite off skips the whole run and reports the existing files, so
// re-extraction is all-or-nothing rather than per-file reconciliation.
// Conflicting names inside one run get numeric suffixes, individual write
// failures are recorded without aborting the batch, and only an archive that
// cannot be opened at all fails the run outright.
package extract
