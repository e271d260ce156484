package retrieval

import "context"

// Noop always reports that no context matched. It stands in when the vector
// backend is not configured, which degrades the assistant to the scoped
// no-context behavior instead of failing startup.
type Noop struct{}

// Retrieve implements Retriever.
func (Noop) Retrieve(context.Context, string, int) string { return "" }
