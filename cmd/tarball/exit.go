//go:build !windows

package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

// exit terminates with status 1 unless err is nil or the help message.
func exit(err error) {
	if err == nil || flags.WroteHelp(err) {
		return
	}

	os.Exit(1)
}
