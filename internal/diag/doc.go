// Package diag provides structured compile-time diagnostics.
//
// A Diagnostic carries a code, a message, a primary Location and optional
// related locations. Producers accumulate diagnostics in a Collector per
// definition; collectors are merged by concatenation and the result is
// sorted by a total order on (source, start, end, message, code), so the
// serialized form is identical regardless of traversal order.
//
// Diagnostics (the slice type) implements error. Functions that either
// return a value or a diagnostic set use the (value, error) convention and
// return a Diagnostics value as the error; As recovers it.
package diag
