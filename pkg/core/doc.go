// Package core defines the shared domain types for pagecheck: the
// four-level test catalog (Module, Page, Feature, TestCase), persisted
// run records, and the Store interface the rest of the system consumes.
//
// The package is deliberately free of persistence and execution logic so
// that the resolver, executors, and the run loop can depend on it without
// pulling in the SQLite store or the browser session.
package core
