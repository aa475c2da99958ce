package entitlement

// ResolvePlan returns the plan of the highest-tier catalog product of groupID
// that has a non-expired status. Revoked statuses still count until they expire.
func ResolvePlan(groupID string, statuses []SubscriptionStatus, catalog []ProductDescriptor) Plan {
	active := make(map[string]struct{}, len(statuses))
	for _, status := range statuses {
		if status.State == StateExpired || status.Outcome == nil {
			continue
		}
		active[status.Outcome.Record().ProductID] = struct{}{}
	}

	var best *ProductDescriptor
	for i := range catalog {
		product := &catalog[i]
		if product.Subscription == nil || product.Subscription.GroupID != groupID {
			continue
		}
		if _, ok := active[product.ID]; !ok {
			continue
		}
		if best == nil || product.Subscription.TierLevel > best.Subscription.TierLevel {
			best = product
		}
	}

	if best == nil {
		return PlanFree
	}
	return PlanFromProductID(best.ID)
}
