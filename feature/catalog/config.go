package catalog

import "time"

// Config holds configuration for the product catalog.
type Config struct {
	// Object is the storage object holding the published catalog.
	Object string `mapstructure:"object" default:"catalog/products.json"`
	// ArchivePrefix is where every published revision is kept.
	ArchivePrefix string `mapstructure:"archive_prefix" default:"catalog/archive/"`
	// ProductIDs are the products the application offers.
	ProductIDs []string `mapstructure:"product_ids" default:"consumable.gachaStone.100,consumable.gachaStone.500,consumable.gachaStone.1000,consumable.gachaStone.10000,nonconsumable.removeAds,subscription.autoRenew.features.plus,subscription.autoRenew.features.premium"`
	// SubscriptionGroupID is the group resolved into the user's plan.
	SubscriptionGroupID string `mapstructure:"subscription_group_id" default:"C4E9A6CF"`
	// ConsumableIdentifier must appear in every consumable product id.
	ConsumableIdentifier string `mapstructure:"consumable_identifier" default:"gachaStone"`
	// CacheTTL is how long a fetched catalog is served before refetching.
	CacheTTL time.Duration `mapstructure:"cache_ttl" default:"5m"`
}
