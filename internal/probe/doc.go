// Package probe implements the informational pre-crawl checks.
//
// The robots.txt report lists every Disallow value found at the target,
// and the open-directory scan checks a fixed set of commonly exposed
// paths. Both run independently of the traversal engine and never
// influence which URLs it visits; their findings exist for the operator's
// benefit only.
package probe
