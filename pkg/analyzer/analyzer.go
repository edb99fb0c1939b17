// Package analyzer holds the pieces shared by the task analyzers: progress
// tracking and the ordered worker pool.
package analyzer
