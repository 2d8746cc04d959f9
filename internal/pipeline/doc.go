// Package pipeline implements the stages that turn a multi-file web client
// into one self-contained HTML document embedded in a firmware header.
//
// The stages are:
//   - Stylesheet asset inlining (url(...) references become data URIs)
//   - Module bundling via esbuild, with ordered per-file transforms
//   - JS minification via esbuild
//   - HTML composition (entry script removal, inline script injection)
//   - HTML minification via tdewolff/minify
//   - String-literal escaping and header rendering
//
// Each stage is a plain value with a narrow interface so the root webembed
// package can sequence them and tests can replace any of them. The package
// performs no logging and writes no files; diagnostics are returned to the
// caller, which decides how to surface them.
package pipeline
