// Package runstore keeps the history of analysis runs in SQLite.
//
// Each run is recorded when it starts and updated once it completes, fails,
// or is rejected for bad input, together with the counts needed by
// `vidscribe runs list` and the path of the manifest it produced. Schema
// changes bump the version in schema.go; users delete the database to adopt
// the new schema.
package runstore
