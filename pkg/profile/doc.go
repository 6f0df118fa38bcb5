// Package profile records scope timings into Chrome trace event files.
//
// Invariants:
// - A recorder has at most one open session; records written without one are dropped.
// - Each write reaches the file before WriteRecord returns, so a crash loses at most the footer.
// - Records after the first are comma separated, and name is the only escaped field.
// - Timer stops are idempotent and End is never before Start.
//
// Usage:
//
//	profile.BeginSession("Startup", "startup.json")
//	defer profile.EndSession()
//
//	func LoadAssets() {
//		defer profile.Func()()
//		// ...
//	}
package profile
