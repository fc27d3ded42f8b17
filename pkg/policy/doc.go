/*
Package policy defines the data model shared by the audit engine.

Rules, agents, and enforcement records are loaded from declarative YAML
documents. Each entity carries its own error instead of aborting a batch:
a malformed rule document becomes a Rule with Err set, and the analyzers
report it rather than failing.

Applicability:

A rule's when field is normalised once, at decode time, into an
Applicability value. Both list shapes found in policy repositories are
accepted and may be mixed:

	when: "*"
	when: [pilot, builder]
	when:
	  - agent: pilot
	  - agent: builder

Top-level errors:

Conditions that make a whole report impossible (a missing rules directory,
a missing status document) are represented by ReportError and attached to
the report as data, so batch callers can always obtain a structured result.
*/
package policy
