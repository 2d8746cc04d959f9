package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

const testShell = `<!DOCTYPE html>
<html>
  <head>
    <script type="module" src="./main.js"></script>
  </head>
  <body>
    <p id="out"></p>
    <!--inline main.js inject position-->
  </body>
</html>
`

// testEnv returns an Environment backed by vars and capturing output.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			sort.Strings(out)
			return out
		},
		NoColor: true,
	}
	return env, stdout, stderr
}

// writeFile creates dir/name with content, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// newProject lays out a minimal client under <tmp>/Website and returns
// that directory. Default outputs land in Website/dist.html and
// <tmp>/Arduino/client.h.
func newProject(t *testing.T) string {
	t.Helper()

	base := filepath.Join(t.TempDir(), "Website")
	writeFile(t, base, "src/index.html", testShell)
	writeFile(t, base, "src/main.js", `import { greet } from "./greet.js";
document.getElementById("out").textContent = greet("device");
`)
	writeFile(t, base, "src/greet.js", `export const greet = (n) => "hello " + n;
`)
	return base
}
