package interpreter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tinylang/interpreter-go/pkg/runtime"
)

// readInput reads one whitespace-delimited integer from stdin.
func (i *Interpreter) readInput() (runtime.Value, error) {
	n, err := scanInteger(i.stdin)
	if err != nil {
		return nil, newRuntimeError(InputFailure, "input(): %v", err)
	}
	return runtime.IntegerValue{Val: n}, nil
}

// readFile reads the first whitespace-delimited integer of a file. Relative
// paths resolve against the interpreter's base directory.
func (i *Interpreter) readFile(path string) (runtime.Value, error) {
	resolved := path
	if !filepath.IsAbs(resolved) && i.baseDir != "" {
		resolved = filepath.Join(i.baseDir, resolved)
	}
	file, err := os.Open(resolved)
	if err != nil {
		return nil, newRuntimeError(InputFailure, "read(%q): cannot open file", path)
	}
	defer file.Close()
	n, err := scanInteger(bufio.NewReader(file))
	if err != nil {
		return nil, newRuntimeError(InputFailure, "read(%q): %v", path, err)
	}
	return runtime.IntegerValue{Val: n}, nil
}

func scanInteger(r io.Reader) (int64, error) {
	var n int64
	if _, err := fmt.Fscan(r, &n); err != nil {
		if err == io.EOF {
			return 0, fmt.Errorf("no integer available")
		}
		return 0, fmt.Errorf("expected an integer: %w", err)
	}
	return n, nil
}
