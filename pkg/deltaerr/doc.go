/*
Package deltaerr declares deltakit's error taxonomy: a single
typed Error carrying a Kind, an optional IO sub-kind, a wrapped cause, and a
structured context map for the detail a CLI needs to print a remediation
hint or a JSON error body.

Error is a small, %w-compatible extension of the standard fmt.Errorf
idiom rather than a deviation from it: errors.Is, errors.As, and
errors.Unwrap all work against it normally.
*/
package deltaerr
