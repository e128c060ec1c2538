// Package store defines persistence interfaces for grading jobs and the
// DBTX abstraction implementations build on. Concrete implementations live
// under internal/platform.
package store
