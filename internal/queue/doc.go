// Package queue abstracts the external task queue that delivers grading
// work to the worker endpoint. The production enqueuer targets Google
// Cloud Tasks; a redis list plus a small dispatcher stands in for it
// during local development.
package queue
