// Package crawler implements the traversal engine at the heart of
// webharvest.
//
// # Architecture
//
// The Spider type coordinates the per-page fetch/extract/decide loop in
// two modes. Scrape expands every reachable page depth-first with no depth
// limit; Hunt expands breadth-first, gated by a target phrase and a
// depth budget counted in expansion waves. Both modes share a VisitedSet
// that guarantees at most one fetch per distinct absolute URL per run.
//
// # Components
//
//   - Spider: the traversal engine; owns visited set and work list
//   - Extractor: HTML parser producing links, text, forms, and media refs
//   - VisitedSet / Frontier: at-most-once bookkeeping and the BFS queue
//   - Matches: the phrase-containment gate used by hunt mode
//
// # URL identity
//
// URLs are compared textually after absolute resolution. Two different
// spellings of the same resource (trailing slash, fragment, case) are
// distinct entries and will both be fetched. This is a deliberate,
// documented limitation.
//
// # Error policy
//
// Every failure - transport, HTTP status, body read, parse - is handled
// where it occurs: logged, counted in the run report, and the affected
// node stops expanding. A traversal run never fails because one page did.
package crawler
