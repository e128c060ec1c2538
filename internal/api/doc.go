// Package api contains the HTTP handlers for the grading service: the
// public submission endpoint and the internal endpoint the task queue
// delivers grading work to.
package api
