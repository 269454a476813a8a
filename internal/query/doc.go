// Package query compiles view state into an executable plan.
//
// Filters (plus an optional search term) are parsed into a small
// parameterized predicate AST (And/Or/Compare/IsEmpty) which lowers
// into SQL with bound arguments; user values are never interpolated
// into query text. Sorts lower into ORDER BY expressions with a
// defined missing-value policy, and the pagination planner selects a
// keyset or offset strategy per request.
package query
