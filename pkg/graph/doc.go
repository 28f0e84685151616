// Package graph defines the design graph types for csgkit.
// The design graph is an immutable DAG of primitives, transforms, boolean
// operations, parts and groups produced by evaluating a script.
package graph
