// Package webembed packages a multi-file web client into one self-contained
// HTML page and embeds that page as a string constant in a C/C++ header,
// typically the client.h of an Arduino or ESP32 firmware.
//
// # Quick Start
//
// Create a builder and run it against a project directory:
//
//	b, err := webembed.NewBuilder()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := b.Build(ctx, webembed.Input{BaseDir: "Website"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.HeaderPath, len(result.Header))
//
// Empty Input fields take the standard layout: entry src/main.js, shell
// src/index.html, debug copy dist.html and header ../Arduino/client.h,
// all relative to BaseDir.
//
// # Build Pipeline
//
// A build runs these stages strictly in order:
//
//  1. Bundle the entry module graph with esbuild. Imported stylesheets
//     have their url(...) assets inlined as data URIs, relative to the
//     stylesheet that declares them, and become CSSStyleSheet modules.
//  2. Minify the bundle with esbuild.
//  3. Remove the entry script tag from the HTML shell and inject the
//     minified bundle as an inline script before the injection marker.
//  4. Minify the HTML with tdewolff/minify.
//  5. Escape the HTML as a string literal and render the header template.
//
// Both outputs are staged as temporary files before either is renamed into
// place, so a failed build never leaves a partial output behind.
//
// # Configuration
//
// Use functional options to customize the builder:
//
//	b, err := webembed.NewBuilder(
//	    webembed.WithLogger(logger),
//	    webembed.WithTemplate("progmem"),
//	    webembed.WithAssetConcurrency(4),
//	)
//
// # Error Handling
//
// Errors wrap the sentinels declared in this package; test them with
// errors.Is:
//
//	if errors.Is(err, webembed.ErrStructural) {
//	    // the shell lacks the entry script tag or the marker
//	}
package webembed
