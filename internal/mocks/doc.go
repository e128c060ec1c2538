// Package mocks provides in-memory implementations of the service's
// collaborator interfaces for tests.
package mocks
