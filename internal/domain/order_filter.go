package domain

// OrderFilter has AND semantics across fields, OR semantics within each
// field slice. An empty filter matches all orders (admin listing).
type OrderFilter struct {
	IDs       []int64
	UserIDs   []int64
	VendorIDs []int64
	Statuses  []OrderStatus
}

func (f OrderFilter) Empty() bool {
	return len(f.IDs) == 0 && len(f.UserIDs) == 0 && len(f.VendorIDs) == 0 && len(f.Statuses) == 0
}
