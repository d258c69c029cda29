package domain

const (
	// DefaultWeight is used for unknown departments and for plain (unannotated) ids.
	DefaultWeight = 0.5

	// DefaultOrderWeight applies when a billing order is expected but missing.
	DefaultOrderWeight = 0.5

	// DepartmentActing triggers the billing-order multiplier even without an order.
	DepartmentActing = "Acting"
)

// departmentWeights maps a contribution's department to its base importance.
var departmentWeights = map[string]float64{
	"Directing":  5.0,
	"Writing":    4.0,
	"Acting":     3.0,
	"Production": 2.0,
	"Sound":      1.5,
	"Camera":     1.0,
	"Editing":    1.0,
	"Art":        0.5,
	"Crew":       0.3,
}

// DepartmentWeight returns the base weight of a department, DefaultWeight when unknown.
func DepartmentWeight(department string) float64 {
	if w, ok := departmentWeights[department]; ok {
		return w
	}
	return DefaultWeight
}

// CastOrderWeight maps a billing order to a multiplier.
// Lead billing keeps the full weight, the long tail decays to 0.1.
func CastOrderWeight(order *int) float64 {
	if order == nil {
		return DefaultOrderWeight
	}

	switch o := *order; {
	case o <= 2:
		return 1.0
	case o <= 5:
		return 0.8
	case o <= 10:
		return 0.5
	case o <= 20:
		return 0.3
	default:
		return 0.1
	}
}

// ComputeEntityWeight scores a role-annotated contribution.
// The department falls back to KnownForDepartment; acting credits and any
// credit carrying a billing order are scaled by CastOrderWeight.
func ComputeEntityWeight(e RoleEntity) float64 {
	department := e.EffectiveDepartment()
	weight := DepartmentWeight(department)

	if department == DepartmentActing || e.Order != nil {
		weight *= CastOrderWeight(e.Order)
	}

	return weight
}
