package billing

// Placeholder values written by older client versions. They must never
// overwrite previously good data during reconciliation.
func isUsableValue(v string) bool {
	switch v {
	case "", "00", "undefined", "null":
		return false
	default:
		return true
	}
}

// ResolveField picks the value to persist for one profile field. Priority is
// fixed: checkout metadata > pending registration > stored account value >
// default. A candidate is skipped when it is empty or a known placeholder.
// No type validation happens here; malformed strings pass through unchanged.
func ResolveField(meta, staging, current, def string) string {
	if isUsableValue(meta) {
		return meta
	}
	if isUsableValue(staging) {
		return staging
	}
	if isUsableValue(current) {
		return current
	}
	return def
}

// ResolveEmail resolves the account email. The payment provider's verified
// customer email wins over every other source when present.
func ResolveEmail(sessionEmail, meta, staging, current string) string {
	if sessionEmail != "" {
		return sessionEmail
	}
	return ResolveField(meta, staging, current, "")
}

// ResolveCustomerID keeps the stripe customer reference sticky: a new value
// from the event wins, otherwise the stored one is kept. There is no default;
// once set it is never cleared.
func ResolveCustomerID(eventCustomer, current string) string {
	if eventCustomer != "" {
		return eventCustomer
	}
	return current
}

// ResolvePlan resolves the selected plan. Pending registrations do not carry
// a plan selection, so this is a three-way resolution only.
func ResolvePlan(meta, current, def string) string {
	return ResolveField(meta, "", current, def)
}
