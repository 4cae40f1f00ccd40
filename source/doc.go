// Package source provides built-in dataset loaders.
//
// Sources load the TPM roster and program portfolio for optimization.
// The package includes:
//
//   - CSV: Header-driven CSV files for rosters and portfolios
//
// Loaded entities are validated before they are returned, so a dataset
// that loads without error is ready for the optimizer.
package source
