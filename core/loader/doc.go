// Package loader provides the feature loading system.
//
// Each feature implements the Feature interface, which names it, reports
// whether it is enabled and mounts its routes. The Manager keeps the registry
// and loads enabled features in registration order, so catalog, entitlements
// and notifications can be developed and tested in isolation.
package loader
