package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/laggyluke/bud/internal/budconfig"
)

// errNoConfig is returned when bud is invoked with no --config and no
// --default-config: usage is printed (to stdout, like --help), but the
// invocation itself is not a successful one, so main() must still exit
// non-zero.
var errNoConfig = errors.New("bud: no --config given")

// worker is set by --worker (long-only, no shorthand, matching the
// numeric-code-1000 long option of the source this was distilled
// from); it marks this process as a pool worker sharing a
// SO_REUSEPORT listener with its siblings rather than the one that
// should, say, print --default-config and exit.
var worker bool

// newRootCommand builds the bud command tree: spec §6's whole flag
// surface lives on the root command itself (there are no
// subcommands), grounded in caddy/cmd/cobra.go's single-root-command
// shape but without Caddy's admin-API subcommand tree, which this
// spec has no equivalent of.
func newRootCommand() *cobra.Command {
	var configPath string
	var printDefault bool

	cmd := &cobra.Command{
		Use:           "bud",
		Short:         "TLS context manager for a reverse proxy front end",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if printDefault {
				out, err := budconfig.DefaultJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			if configPath == "" {
				// spec §6: any invocation that isn't --default-config or
				// --config prints usage on stdout, not stderr — cobra's
				// Help() (unlike Usage()) writes to OutOrStdout. Printing
				// usage isn't success, though: the process must still exit
				// non-zero, so the branch returns errNoConfig after Help()
				// writes its output.
				if err := cmd.Help(); err != nil {
					return err
				}
				return errNoConfig
			}
			return run(configPath, worker)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	// An unknown or malformed flag also prints usage on stdout before
	// the parse error is returned.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		if herr := c.Help(); herr != nil {
			return herr
		}
		return err
	})

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the JSON configuration file")
	cmd.Flags().BoolVar(&printDefault, "default-config", false, "Print the default configuration as JSON and exit")
	cmd.Flags().BoolVar(&worker, "worker", false, "Run as a pool worker sharing the front-end listener")

	registerDaemonizeFlag(cmd)

	cmd.SetOut(os.Stdout)
	return cmd
}
