// Package testutil provides test helpers for migration integration tests.
// This includes legacy row builders, legacy database seeding and a complete
// source and destination environment.
//
// Key components:
//   - Builders: Fluent API for creating legacy rows with sensible defaults
//   - LegacySeeder: Seeds the legacy tables
//   - Fixture: A small legacy dataset covering every entity
//   - TestContext: Complete test environment setup and teardown
package testutil
