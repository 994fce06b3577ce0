package types

import "fmt"

// EmbeddingError means the embedding provider call failed or returned an
// unusable vector. The caller must abort the enclosing operation rather than
// persist or return partial results.
type EmbeddingError struct {
	Err error
}

func (e EmbeddingError) Error() string {
	return fmt.Sprintf("embedding provider: %v", e.Err)
}

func (e EmbeddingError) Unwrap() error { return e.Err }

func NewEmbeddingError(err error) EmbeddingError {
	return EmbeddingError{Err: err}
}

// StorageError means the persistence layer rejected a read or write.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

func NewStorageError(op string, err error) StorageError {
	return StorageError{Op: op, Err: err}
}
