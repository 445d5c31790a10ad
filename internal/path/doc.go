// Package path implements the expression engine used by Result queries,
// select projections, and paginator data extraction.
//
// An expression is compiled into an AST of segments and evaluated against a
// decoded JSON tree (map[string]any, []any, scalars). Supported syntax:
//
//   - optional root marker `$`
//   - dotted keys: `a.b.c`
//   - array index: `items[2]`
//   - wildcard: `items[*]`, `[*]`
//   - filter predicates: `items[?(@.price > 2.00)]` with the operators
//     ==  !=  <  <=  >  >=  over number, 'string', true/false, null
//     literals and `@`-relative dotted paths (`@` alone compares the
//     element itself)
//   - trailing element-wise arithmetic on the matched scalar set:
//     `items[*].price + 10` (also -, *, /)
//
// Compilation and evaluation are separate passes; compiled expressions are
// memoized by source text. Absence of a key or index is not an error during
// multi-value traversal; ResolveOne reports it for required single paths.
package path
