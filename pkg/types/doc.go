// Package types defines the Pantry interface, the row and snapshot types,
// configuration, and the standard errors for the pantry single-file
// storage engine.
package types
