// Package service contains the application's use cases: accepting grading
// submissions and processing delivered grading tasks. Services depend only
// on interfaces; platform implementations are injected at startup.
package service
