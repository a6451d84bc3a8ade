package filetest

import (
	"os"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

const expectMarker = "// expect: "

// Expectations extracts the "// expect: <text>" markers of a script file,
// in order. The expected output of running the script is exactly that
// sequence of texts, one per line.
func Expectations(t *testing.T, path string) []string {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var expects []string
	for _, line := range strings.Split(string(b), "\n") {
		if ix := strings.Index(line, expectMarker); ix >= 0 {
			expects = append(expects, line[ix+len(expectMarker):])
		}
	}
	return expects
}

// FilterOutput splits the combined stdout+stderr of a script run into
// lines, dropping the trailing empty line and any line prefixed with
// "Elapsed time: ".
func FilterOutput(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "Elapsed time: ") {
			continue
		}
		lines = append(lines, line)
	}
	// drop the trailing empty line of a newline-terminated output
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// DiffExpectations compares the filtered script output line-for-line
// against the script's expect markers.
func DiffExpectations(t *testing.T, path, output string) {
	t.Helper()

	want := strings.Join(Expectations(t, path), "\n")
	got := strings.Join(FilterOutput(output), "\n")
	if patch := diff.Diff(want, got); patch != "" {
		t.Errorf("diff expectations:\n%s\n", patch)
	}
}
