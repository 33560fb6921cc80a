package domain

// Capabilities is the set of operations an actor may perform on one order.
type Capabilities struct {
	Read         bool
	UpdateStatus bool
}

// OrderCapabilities computes the capability set for an actor against an
// order. vendorCompanyID is the company of the order's vendor (nil when
// the vendor has none); the caller resolves it from the user store.
//
// Rules: the buyer reads their own orders; the selling vendor reads and
// manages orders for products they sold; vendors of the same company share
// both rights; admins hold every capability; everyone else gets none.
func OrderCapabilities(actor Actor, order Order, vendorCompanyID *int64) Capabilities {
	if actor.Role == RoleAdmin {
		return Capabilities{Read: true, UpdateStatus: true}
	}

	var caps Capabilities

	if order.UserID == actor.UserID {
		caps.Read = true
	}

	if actor.Role == RoleVendor {
		if order.VendorID == actor.UserID {
			caps.Read = true
			caps.UpdateStatus = true
		}

		if actor.CompanyID != nil && vendorCompanyID != nil && *actor.CompanyID == *vendorCompanyID {
			caps.Read = true
			caps.UpdateStatus = true
		}
	}

	return caps
}
