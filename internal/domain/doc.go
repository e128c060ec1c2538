// Package domain contains the core entities of the grading service:
// jobs, answer submissions, grade results, and webhook events, along with
// the job status state machine and validation rules. It has no dependencies
// on transport, storage, or external platforms.
package domain
