// Package app composes the leaderboard application: it wires the stores,
// cache and domain services together and manages their lifecycle through
// the system.Manager.
//
// Callers construct an Application with New, optionally Attach additional
// lifecycle-managed services, then Start and Stop it. Sub-packages hold the
// actual behavior:
//
//   - domain/     pure models and the rank assignment algorithm
//   - storage/    store interfaces plus memory and postgres implementations
//   - cache/      the read cache abstraction (memory and redis)
//   - services/   user directory and the ranking engine
//   - httpapi/    the REST surface
//   - metrics/    prometheus instrumentation
//   - system/     service lifecycle primitives
package app
