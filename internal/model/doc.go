// Package model defines the data structures shared across webharvest.
//
// The two central types are Page, which represents a single fetched web
// page, and RunReport, which accumulates everything one traversal run
// produced. Model types carry no behavior beyond simple accessors and
// bookkeeping so that every other package can depend on them without
// pulling in I/O concerns.
package model
