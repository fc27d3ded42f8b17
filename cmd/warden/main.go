// Warden audits a multi-agent automation setup against its declarative
// policy.
//
// It reads rule and agent definitions, execution logs, source files and the
// enforcement status document, and reports:
//   - Which rules apply to which agents (coverage)
//   - Banned delegations in execution logs
//   - Banned library imports in source files
//   - How many rules are enforced in code rather than only documented
//
// Usage:
//
//	# Run every audit against the current directory
//	warden audit
//
//	# Show the rules that apply to one agent
//	warden coverage --agent builder
//
//	# Scan the last day of execution logs
//	warden scan logs --hours 24
//
//	# Render the enforcement status as markdown
//	warden enforcement --format markdown
//
//	# Re-run coverage whenever a rule changes
//	warden watch
//
// Exit status is 0 when nothing was found, 1 for findings and 2 when
// required configuration is missing.
package main

func main() {
	Execute()
}
