// Package bsp implements binary space partitioning trees over convex
// polygon sets. It is the geometric core of the CSG engine: plane
// classification, polygon splitting and the clip/invert/merge tree
// operations that the boolean operators in package csg are built from.
//
// All vector math is single precision (mgl32). Nothing in this package
// holds global state; trees are owned by the caller that builds them.
package bsp
