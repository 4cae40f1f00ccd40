// Package types contains the core domain types and interfaces shared across
// the optimizer packages.
//
// This package has no dependencies on other packages in this module, which
// allows the engine, objective, strategy, and reporting packages to depend on
// it without import cycles.
package types
