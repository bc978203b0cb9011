package workflow

// ActionSet is an unordered set of actions.
type ActionSet map[Action]struct{}

var displayOrder = []Action{ActionSubmit, ActionApprove, ActionReject, ActionEdit, ActionDelete}

func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// Sorted lists the members in the order the detail view shows them.
func (s ActionSet) Sorted() []Action {
	out := make([]Action, 0, len(s))
	for _, a := range displayOrder {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s ActionSet) Clone() ActionSet {
	c := make(ActionSet, len(s))
	for a := range s {
		c[a] = struct{}{}
	}
	return c
}
