// Package filesystem provides implementations of types.FS: the OS filesystem
// for production and an afero-backed one for tests, plus copy and move
// helpers that work across both.
package filesystem
