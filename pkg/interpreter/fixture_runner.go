package interpreter

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"

	"tinylang/interpreter-go/pkg/driver"
)

// testingT captures the subset of testing.T used by fixture helpers.
type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

// runExecFixture loads a fixture directory as a project (setup files first,
// then the entry), runs it and checks stdout or the expected error.
func runExecFixture(t testingT, dir string) {
	t.Helper()
	manifest := readFixtureManifest(t, dir)
	entry := manifest.Entry
	if entry == "" {
		entry = fixtureSourceName
	}
	project := &driver.Manifest{
		Path:    filepath.Join(dir, driver.ManifestName),
		Name:    filepath.Base(dir),
		Entry:   entry,
		Include: manifest.Setup,
	}

	var stdout bytes.Buffer
	program, err := driver.NewLoader(driver.LoaderOptions{CacheRoot: dir}).LoadProject(project)
	if err == nil {
		interp := New(Options{
			Stdout:  &stdout,
			Stdin:   strings.NewReader(manifest.Stdin),
			BaseDir: dir,
		})
		err = interp.EvaluateProgram(program)
	}

	if want := manifest.Expect.Error; want != nil {
		if err == nil {
			t.Fatalf("fixture %s: expected %s error, got none (stdout %q)", dir, want.Kind, stdout.String())
		}
		if got := fixtureErrorKind(err); got != want.Kind {
			t.Fatalf("fixture %s: expected %s error, got %s: %v", dir, want.Kind, got, err)
		}
		if want.Message != "" && !strings.Contains(err.Error(), want.Message) {
			t.Fatalf("fixture %s: expected error containing %q, got %v", dir, want.Message, err)
		}
	} else if err != nil {
		t.Fatalf("fixture %s: %s", dir, DescribeError(err))
	}

	if manifest.Expect.Stdout != nil || manifest.Expect.Error == nil {
		got := splitOutputLines(stdout.String())
		want := manifest.Expect.Stdout
		if len(got) == 0 && len(want) == 0 {
			return
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("fixture %s: stdout mismatch\nwant %q\ngot  %q", dir, want, got)
		}
	}
}

func splitOutputLines(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
