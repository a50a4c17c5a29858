// Package harness runs compiler fixtures and compares their output with
// golden files.
//
// # Fixture Format
//
// A fixture is a .graphql file under testdata/fixtures. Text after an
// %extensions% marker is SDL added to the test schema:
//
//	fragment Pronouns on User {
//	  pronouns @required(action: LOG)
//	}
//
//	%extensions%
//
//	extend type User {
//	  pronouns: String
//	}
//
// A fixture whose name ends in .invalid must fail; every other fixture
// must succeed.
//
// # Golden Files
//
// Each fixture has a golden file testdata/golden/<name>.golden holding the
// input followed by the printed program or the sorted diagnostics.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
