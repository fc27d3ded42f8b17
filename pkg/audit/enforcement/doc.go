// Package enforcement aggregates the enforcement status document.
//
// The document groups rule status records into pre_commit, runtime, and
// prompt_only sections. Aggregate tallies every record by status, lists the
// records whose status is gap, pending, partial, or warning as gaps, and
// computes the share of enforced records as a percentage rounded to one
// decimal. An empty document has a coverage of 0.
package enforcement
