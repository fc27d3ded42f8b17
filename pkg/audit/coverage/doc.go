// Package coverage computes which agents each policy rule applies to.
//
// For every rule in a store.Snapshot the Analyzer resolves the rule's when
// field against the known agent set and classifies it as universal,
// partial, none, or error. Missing and unknown agent references are listed
// per rule, and a deterministic list of recommendations is produced in rule
// order. Rules named in the critical list are expected to be universal and
// raise a critical recommendation otherwise.
//
// The analysis is a pure function of the snapshot. Reports are built fresh
// on each call and never persisted here.
package coverage
