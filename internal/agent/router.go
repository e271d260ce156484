package agent

// RouteTable maps a normalized intent label to the next workflow node. The
// table is plain data so new labels or targets plug in without touching the
// engine. Routing is total: any label outside the table resolves to the
// fallback entry, so a route lookup can never fail.
type RouteTable struct {
	routes   map[string]NodeID
	fallback NodeID
}

// NewRouteTable builds the table from the configured label set. Every label
// currently targets the generate node; intent shapes the prompt, not the
// topology.
func NewRouteTable(labels []string, fallbackLabel string) RouteTable {
	routes := make(map[string]NodeID, len(labels)+1)
	for _, label := range labels {
		routes[label] = NodeGenerate
	}
	routes[fallbackLabel] = NodeGenerate

	return RouteTable{
		routes:   routes,
		fallback: routes[fallbackLabel],
	}
}

// Route resolves the next node for a label, falling back for anything
// unrecognized (including the empty string a failed classification leaves).
func (t RouteTable) Route(label string) NodeID {
	if node, ok := t.routes[label]; ok {
		return node
	}
	return t.fallback
}

// Known reports whether the label belongs to the configured set.
func (t RouteTable) Known(label string) bool {
	_, ok := t.routes[label]
	return ok
}
