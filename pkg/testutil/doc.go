// Package testutil provides helpers shared by instkit tests.
//
// Key components:
//   - FileTree: declarative file layouts written into an afero filesystem
//   - IsolateEnv: points the config and state directories at temp dirs
//   - RandomBytes: reproducible incompressible data for volume tests
//   - AssertFileContent / AssertExists: filesystem assertions
//
// Tests should use afero.NewMemMapFs() and define their data inline.
package testutil
