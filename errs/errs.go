// Package errs declares the sentinel error values returned across the
// search-index-library packages. Call sites wrap these with fmt.Errorf's
// %w verb to add context, e.g. fmt.Errorf("%w: doc_id %d", errs.ErrDocIDTooLarge, id).
package errs

import "errors"

var (
	// ErrNotFound is returned when a required on-disk file is missing at
	// load time. Read-path lookups (term/doc_id misses) do not return this;
	// they return an absent result instead, per the read-path policy.
	ErrNotFound = errors.New("search-index-library: not found")

	// ErrMalformed is returned when on-disk data violates the wire format:
	// a length prefix overflows its container, a varint runs past the end
	// of its buffer, or a group control byte is inconsistent.
	ErrMalformed = errors.New("search-index-library: malformed data")

	// ErrDocIDTooLarge is returned when a doc_id does not fit the 26-bit
	// hierarchical posting-list id space (doc_id >= 2^26).
	ErrDocIDTooLarge = errors.New("search-index-library: doc_id exceeds 26 bits")

	// ErrEmbeddingCountTooLarge is returned when num_embeddings does not
	// fit the 28-bit embeddings_offset bitfield width.
	ErrEmbeddingCountTooLarge = errors.New("search-index-library: embedding count exceeds 28 bits")

	// ErrOffsetTooLarge is returned when a content or embeddings offset
	// overflows its 36-bit or 28-bit bitfield width.
	ErrOffsetTooLarge = errors.New("search-index-library: offset exceeds bitfield width")

	// ErrIO wraps an underlying OS-level file error encountered while
	// building or loading an index.
	ErrIO = errors.New("search-index-library: io error")
)
