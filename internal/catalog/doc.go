// Package catalog persists a history of extraction runs in SQLite so
// repeated invocations can be audited from the command line. The catalog is
// advisory: extraction and rendering never depend on it, and a disabled or
// broken catalog only costs the history listing.
package catalog
