package reflectable

// Package reflectable provides:
//
// - Opt-in member introspection through ReflectMembers declarations
//   (names, ordered ordinals, attributes such as Required and Ignore)
// - A generic tree-value codec (Save/Load) with partial-update loads and
//   prefix-based name dispatch over the declared members
// - Dotted-path string loading (LoadPath) for command-line style overrides
// - Required-member tracking across sequential loads via Tracker
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep the whole runtime surface in the root package; wire formats live
//   under codec/, the file-loading front end under config/, and the CLI
//   under cmd/reflectable.
// - Per-type registries build once and never mutate; loads and saves stay
//   synchronous and allocation-light.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	cfg := defaultConfig()
//	tr := reflectable.NewTracker(cfg)
//	err := reflectable.LoadTracked(tr, tree, cfg)
//	err = reflectable.LoadPathTracked(tr, "server.port.8080", cfg)
//	ok := tr.Complete()
//
//	tree, err := reflectable.Save(cfg)
