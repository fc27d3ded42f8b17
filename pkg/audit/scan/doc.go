/*
Package scan finds banned patterns in execution logs and source text.

Two corpus shapes share one scanning contract:

  - Log records (LoadLogCorpus reads <dir>/<agent>/*.json). A violation is a
    tool invocation of the delegation tool whose sub-agent type is in the
    banned set.
  - Source files (LoadSourceCorpus walks a tree). A violation is an import
    statement naming a banned library. Module names are matched as whole
    tokens, so "import osrequestslib" never matches "requests".

For both shapes exemptions are checked first and exempt entries are neither
scanned nor reported. An optional since bound skips entries whose timestamp
is missing, unparseable, or older; those are counted, not flagged. The
resulting violations are sorted newest first.

A missing corpus location is not an error return: callers build a report
with MissingTarget and branch on Report.Error.
*/
package scan
