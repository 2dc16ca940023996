// Package compose merges roles into the types that compose them.
//
// A composition run for one target resolves its transitive role set, checks
// self-type bindings, builds a member plan classifying every member name, and
// for concrete targets copies the planned members in. Nothing is attached to
// the target until the run's mutation context commits.
package compose
