//go:build !windows

package main

import "github.com/spf13/cobra"

// daemonize records whether --daemonize/-d was passed. Actually
// detaching from the controlling terminal is the out-of-scope
// supervisor's job (spec's Non-goals: "process supervision... beyond
// the --daemonize/--worker flag surface itself"); here it's carried
// through to Config purely as the flag spec §6 says the CLI must
// expose.
var daemonize bool

func registerDaemonizeFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&daemonize, "daemonize", "d", false, "Flag the process as daemonized")
}
