//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package main

import (
	"os"

	"github.com/charmbracelet/x/ansi"
)

func isTerminal(*os.File) bool {
	return false
}

func stripANSI(s string) string {
	return ansi.Strip(s)
}
