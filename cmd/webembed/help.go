package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: webembed [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Package a web client into a C/C++ header for device firmware.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Bundle, inline and minify the client, then write the header (default)")
	fmt.Fprintln(w, "  serve      Serve the debug HTML and a mock settings endpoint")
	fmt.Fprintln(w, "  set        Send settings to a device")
	fmt.Fprintln(w, "  verify     Load the debug HTML in headless Chrome and report exceptions")
	fmt.Fprintln(w, "  doctor     Check the project and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'webembed help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Project:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: webembed.yaml in base)")
	fmt.Fprintln(w, "  -C, --base <dir>          Project base directory (default: .)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show stage timings and details")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: webembed build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Bundle the entry module, inline it into the HTML shell, minify the")
	fmt.Fprintln(w, "result and write the debug HTML and the header. Nothing is written")
	fmt.Fprintln(w, "unless every stage succeeds.")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Layout:")
	fmt.Fprintln(w, "      --entry <path>        Entry module (default: src/main.js)")
	fmt.Fprintln(w, "      --shell <path>        HTML shell (default: src/index.html)")
	fmt.Fprintln(w, "      --module-ref <s>      Script src to replace (default: ./main.js)")
	fmt.Fprintln(w, "      --marker <s>          Injection comment (default: <!--inline main.js inject position-->)")
	fmt.Fprintln(w, "      --debug-html <path>   Debug HTML output (default: dist.html)")
	fmt.Fprintln(w, "      --header <path>       Header output (default: ../Arduino/client.h)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Header:")
	fmt.Fprintln(w, "      --escape <mode>       Literal escaping: full, quotes")
	fmt.Fprintln(w, "      --template <s>        Template name or .tmpl path (default: arduino)")
	fmt.Fprintln(w, "      --type <s>            Constant type (default: String)")
	fmt.Fprintln(w, "      --variable <s>        Constant name (default: HTML)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Bundle:")
	fmt.Fprintln(w, "      --format <s>          Bundle format: esm, iife")
	fmt.Fprintln(w, "      --target <s>          Language target, e.g. es2020")
	fmt.Fprintln(w, "      --minify-css          Minify stylesheets (default: true)")
	fmt.Fprintln(w, "  -n, --dry-run             Run every stage without writing")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	w := env.Stdout
	switch args[0] {
	case "build":
		printBuildUsage(w)
	case "serve":
		fmt.Fprintln(w, "Usage: webembed serve [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Serve the debug HTML on / (re-read on every request), record")
		fmt.Fprintln(w, "settings sent to /set and list them on /settings.")
		fmt.Fprintln(w)
		printCommonUsage(w)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default: 127.0.0.1:8080)")
	case "set":
		fmt.Fprintln(w, "Usage: webembed set [flags] key=value...")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Send each setting to <device>/set in its own request. Spaces are")
		fmt.Fprintln(w, "removed from keys, booleans are sent as True/False.")
		fmt.Fprintln(w)
		printCommonUsage(w)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -d, --device <url>        Device base URL (default: http://192.168.4.1)")
		fmt.Fprintln(w, "      --retries <n>         Retries after a failed connection (default: 2)")
		fmt.Fprintln(w, "  -t, --timeout <d>         Per request timeout (default: 5s)")
	case "verify":
		fmt.Fprintln(w, "Usage: webembed verify [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Load the debug HTML in headless Chrome and fail on uncaught exceptions.")
		fmt.Fprintln(w)
		printCommonUsage(w)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (default: 30s)")
	case "doctor":
		fmt.Fprintln(w, "Usage: webembed doctor [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check the project layout, output directories and Chrome.")
		fmt.Fprintln(w)
		printCommonUsage(w)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --json                Print the report as JSON")
	case "version":
		fmt.Fprintln(w, "Usage: webembed version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	case "help":
		fmt.Fprintln(w, "Usage: webembed help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
