// Package notifications receives transactions and subscription statuses pushed
// by the platform and appends them to the local journal, which streams them to
// the entitlement manager as live updates. Payloads are stored as signed;
// verification happens when the manager consumes them.
package notifications
