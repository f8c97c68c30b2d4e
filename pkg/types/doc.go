// Package types defines the ingredient, parameter and session entities,
// the SessionStore interface, and the standard errors shared by the costbook
// draft store, costing engine, storage backends and lifecycle controller.
package types
