//go:build windows

package main

import "github.com/spf13/cobra"

// daemonize is always false on Windows: --daemonize/-d is not
// registered there, matching the source's own Windows build, which
// never defines the daemonize flag at all.
var daemonize = false

func registerDaemonizeFlag(cmd *cobra.Command) {}
