//go:build linux || darwin || freebsd || netbsd || openbsd

package main

import (
	"os"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/sys/unix"
)

func isTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), ioctlReadTermios)
	return err == nil
}

func stripANSI(s string) string {
	return ansi.Strip(s)
}
