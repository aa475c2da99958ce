// Package config provides configuration management for the purchase manager.
//
// Values come from environment variables, optionally overlaid by a .env file.
// Every section declares its keys with mapstructure tags and its defaults with
// default tags; LoadConfig registers them by reflection so that any key can be
// overridden as an upper-case variable (store.backend -> STORE_BACKEND).
//
// # Sections
//
//   - Server: port, API key, notification ingest toggle
//   - Log: level and format
//   - Database: journal database (sqlite or mysql)
//   - Storage: S3/MinIO bucket holding the catalog
//   - Redis: connection for the Redis balance backend
//   - Store: balance backend and key
//   - Catalog: catalog object, offered products, subscription group
//   - Verifier: algorithm and key material for signed transactions
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
