// Package storage provides an S3-compatible object storage client used to
// archive downloaded bulk exports.
//
// The Client interface abstracts the MinIO SDK so callers can be tested with
// the mock in the mocks subpackage.
package storage
