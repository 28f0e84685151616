// Package csg implements boolean operations (union, intersection,
// difference) on indexed triangle meshes.
//
// Meshes are converted to polygon sets, each set is partitioned into a BSP
// tree (package bsp), the trees are combined by clip/invert/merge sequences
// and the surviving polygons are fan-triangulated back into a Mesh. Every
// operator call is self-contained: inputs are copied, trees are discarded
// when the call returns, and nothing is shared between calls, so
// independent calls may run concurrently.
//
// Results use 16-bit indices and therefore hold at most MaxVertices
// vertices. What happens when a result would exceed that is controlled by
// Options.Overflow.
package csg
