package catalog

import (
	"fmt"

	"purchase-manager/core/entitlement"
)

// Document is the catalog as published to storage.
type Document struct {
	Products []entitlement.ProductDescriptor `json:"products"`
}

// Revision is one archived catalog publication.
type Revision struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

// Validate checks that product ids are unique and that auto-renewable products
// name their subscription group. Kinds this build does not know are accepted.
func (d Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Products))
	for i, p := range d.Products {
		if p.ID == "" {
			return fmt.Errorf("product %d has no id", i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("product %s is listed twice", p.ID)
		}
		seen[p.ID] = struct{}{}

		switch p.Kind {
		if p.Kind == entitlement.KindAutoRenewable && (p.Subscription == nil || p.Subscription.GroupID == "") {
			return fmt.Errorf("subscription %s has no group", p.ID)
		}
	}
	return nil
}

// UnknownKinds returns the ids of products whose kind is not one of the four
// known kinds.
func (d Document) UnknownKinds() []string {
	var unknown []string
	for _, p := range d.Products {
		switch p.Kind {
		case entitlement.KindConsumable, entitlement.KindNonConsumable, entitlement.KindAutoRenewable, entitlement.KindNonRenewable:
		default:
			unknown = append(unknown, p.ID)
		}
	}
	return unknown
}

// Filter returns the products whose id is in ids, in catalog order.
func (d Document) Filter(ids []string) []entitlement.ProductDescriptor {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	products := make([]entitlement.ProductDescriptor, 0, len(ids))
	for _, p := range d.Products {
		if _, ok := wanted[p.ID]; ok {
			products = append(products, p)
		}
	}
	return products
}
