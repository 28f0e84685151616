package graph

import (
	"fmt"

	"github.com/chazu/csgkit/pkg/csg"
)

// validateGeometry runs the geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case PrimitiveData:
			errs = append(errs, validateDimensions(node.ID, d)...)
			warnings = append(warnings, validateTessellation(node.ID, d)...)
		case TransformData:
			if d.Translation == nil && d.Rotation == nil {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: "transform has neither translation nor rotation",
				})
			}
		}
	}

	return errs, warnings
}

func positive(id NodeID, what string, v float64) []ValidationError {
	if v > 0 {
		return nil
	}
	return []ValidationError{{
		NodeID:   id,
		Message:  fmt.Sprintf("%s is %.4f, must be positive", what, v),
		Severity: SeverityError,
	}}
}

// validateDimensions checks that every dimension of a primitive is positive
// and that rounding fits inside the box.
func validateDimensions(id NodeID, d PrimitiveData) []ValidationError {
	var errs []ValidationError

	switch d.Kind {
	case PrimBox, PrimRoundedBox:
		errs = append(errs, positive(id, d.Kind.String()+" dimension X", d.Size.X)...)
		errs = append(errs, positive(id, d.Kind.String()+" dimension Y", d.Size.Y)...)
		errs = append(errs, positive(id, d.Kind.String()+" dimension Z", d.Size.Z)...)
	case PrimSphere, PrimIcosphere:
		errs = append(errs, positive(id, d.Kind.String()+" radius", d.Radius)...)
	case PrimCylinder:
		errs = append(errs, positive(id, "cylinder radius", d.Radius)...)
		errs = append(errs, positive(id, "cylinder height", d.Height)...)
	default:
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf("unknown primitive kind %d", int(d.Kind)),
			Severity: SeverityError,
		})
	}

	if d.Kind == PrimRoundedBox {
		smallest := min(d.Size.X, d.Size.Y, d.Size.Z)
		switch {
		case d.Rounding < 0:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("rounding is %.4f, must not be negative", d.Rounding),
				Severity: SeverityError,
			})
		case smallest > 0 && 2*d.Rounding > smallest:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("rounding %.4f exceeds half the smallest dimension %.4f", d.Rounding, smallest),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateTessellation warns when a requested tessellation count will be
// clamped by the primitive generators.
func validateTessellation(id NodeID, d PrimitiveData) []ValidationWarning {
	var warnings []ValidationWarning
	check := func(what string, v, lo, hi int) {
		if v == 0 {
			return
		}
		if v < lo || v > hi {
			warnings = append(warnings, ValidationWarning{
				NodeID:  id,
				Message: fmt.Sprintf("%s %d is outside [%d, %d] and will be clamped", what, v, lo, hi),
			})
		}
	}

	switch d.Kind {
	case PrimSphere:
		check("segments", d.Segments, csg.MinSlices, csg.MaxSlices)
		check("stacks", d.Stacks, csg.MinStacks, csg.MaxStacks)
	case PrimCylinder:
		check("segments", d.Segments, csg.MinSlices, csg.MaxCylinderSlices)
	case PrimIcosphere:
		check("detail", d.Detail, 0, csg.MaxSubdivisions)
	}

	return warnings
}
