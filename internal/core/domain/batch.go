package domain

// BatchProgress is reported after each item of a batch operation.
type BatchProgress struct {
	Current int
	Total   int
}

// BatchItem is the outcome of one batch entry.
type BatchItem struct {
	ID     string
	Bundle *ContentBundle
	Err    error
}

// BatchResult summarises a batch operation.
type BatchResult struct {
	Succeeded int
	Failed    int
	Total     int
	Items     []BatchItem
}

// Bundles returns the successful bundles in input order.
func (r *BatchResult) Bundles() []*ContentBundle {
	out := make([]*ContentBundle, 0, r.Succeeded)
	for _, it := range r.Items {
		if it.Err == nil && it.Bundle != nil {
			out = append(out, it.Bundle)
		}
	}
	return out
}
