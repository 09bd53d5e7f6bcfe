// Package capture runs stream capture tasks against station endpoints.
//
// A Task is one bounded recording attempt; the Executor drives the external
// ffmpeg process and normalizes every outcome into a Result with a status of
// success, failed, or timeout. Failure modes never escape as errors or
// panics: the batch runner depends on each task producing exactly one
// Result regardless of what the capture tool does.
//
// RunBatch bounds concurrency by executing tasks in strictly sequential
// groups, fully parallel within a group, with an optional stagger delay
// between groups to spread load for large bulk sets.
package capture
