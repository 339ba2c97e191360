package models

// OperatorReference names an operator and how many of the referenced
// routes it runs.
type OperatorReference struct {
	Name       string `json:"name"`
	RouteCount int    `json:"routeCount"`
}

// ReferencesModel collects the objects a response points at by ID.
type ReferencesModel struct {
	Operators []OperatorReference `json:"operators"`
	Routes    []RouteModel        `json:"routes"`
}

func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Operators: []OperatorReference{},
		Routes:    []RouteModel{},
	}
}

// OperatorReferences counts routes per operator, keeping first-seen order.
func OperatorReferences(list []RouteModel) []OperatorReference {
	refs := []OperatorReference{}
	index := make(map[string]int)
	for _, route := range list {
		i, ok := index[route.Operator]
		if !ok {
			i = len(refs)
			index[route.Operator] = i
			refs = append(refs, OperatorReference{Name: route.Operator})
		}
		refs[i].RouteCount++
	}
	return refs
}
