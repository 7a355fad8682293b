// Command bud is a TLS-terminating reverse proxy's context-manager
// process: it loads configuration, builds the TLS contexts it serves,
// wires the SNI/stapling collaborators, arms a shared listener, and
// terminates TLS on every accepted connection; proxying the bytes past
// the handshake is the out-of-scope data plane's job and is not done
// here.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	undoMaxProcs, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "bud: "+format+"\n", args...)
	}))
	defer undoMaxProcs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bud: failed to set GOMAXPROCS: %v\n", err)
	}

	_, _ = memlimit.SetGoMemLimitWithOpts(
		memlimit.WithLogger(slog.Default()),
		memlimit.WithProvider(
			memlimit.ApplyFallback(memlimit.FromCgroup, memlimit.FromSystem),
		),
	)

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
