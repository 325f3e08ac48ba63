package domain

// AccessScope is the resolved multi-tenant visibility of a caller. It is
// passed explicitly into every core operation; nothing in the engine
// reads session or global state.
type AccessScope struct {
	// FullAccess grants visibility over every merchant of the customer.
	// When set, MerchantIDs is ignored by all filters.
	FullAccess bool `json:"full_access"`

	CustomerID  string   `json:"customer_id"`
	MerchantIDs []string `json:"merchant_ids,omitempty"`
}

// Empty reports whether the scope can never match any row. Queries must
// short-circuit on an empty scope instead of running an unfiltered
// statement: an empty merchant list means "nothing", never "everything".
func (s AccessScope) Empty() bool {
	return !s.FullAccess && len(s.MerchantIDs) == 0
}
