// Package reembed regenerates the vectors of stored embedding records
// with a new or updated embedding model.
//
// Records are processed in batches with progress reporting and retrying
// of failed embedding calls. Vectors are normalized before being written
// back so cosine similarity comparisons stay well behaved.
package reembed
