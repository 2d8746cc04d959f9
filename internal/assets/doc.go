// Package assets provides the header templates used to embed a built web
// client into firmware sources.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in templates)
//	    ├── FilesystemLoader  - loads from a project directory on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// EmbeddedLoader provides the built-in header templates ("arduino", the
// default, and "progmem") compiled into the binary.
//
// FilesystemLoader reads project templates from {basePath}/templates, with
// path traversal protection and symlink resolution.
//
// Resolver is the loader used by the builder. It tries the project
// directory first, falling back to the embedded templates when a name is
// not found there. This lets a project override a built-in template by
// name.
//
// # Directory Structure
//
//	{basePath}/
//	└── templates/
//	    └── {name}.tmpl          # text/template header (e.g., arduino.tmpl)
//
// # Template Data
//
// Templates are executed with pipeline.HeaderData: .Type, .Variable,
// .Literal (already escaped), .Generator and .Command.
//
// # Security
//
// Template names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
