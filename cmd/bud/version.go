package main

import "fmt"

// VersionMajor and VersionMinor back --version's "v<major>.<minor>"
// output (spec §6); there is no patch component in the source's
// version scheme.
const (
	VersionMajor = 1
	VersionMinor = 0
)

func versionString() string {
	return fmt.Sprintf("v%d.%d", VersionMajor, VersionMinor)
}
