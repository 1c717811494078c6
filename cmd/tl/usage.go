package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  tl [--lenient] run [file.tl]")
	fmt.Fprintln(os.Stderr, "  tl [--lenient] <file.tl>")
	fmt.Fprintln(os.Stderr, "  tl [--lenient] tokens <file.tl>")
	fmt.Fprintln(os.Stderr, "  tl [--lenient] ast <file.tl>")
	fmt.Fprintln(os.Stderr, "  tl deps install")
	fmt.Fprintln(os.Stderr, "  tl deps update [dependency ...]")
	fmt.Fprintln(os.Stderr, "  tl --version")
}
