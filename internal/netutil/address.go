// Package netutil implements the small, dependency-free address and
// wire-format utilities the rest of bud builds on: socket address
// parsing, base64 encoding, and the NPN wire format.
package netutil

import (
	"fmt"
	"net"
)

// ErrBadAddress is returned by ParseHostPort when host is neither a
// valid IPv4 nor IPv6 literal. bud never performs DNS resolution on
// front-end or back-end addresses.
var ErrBadAddress = fmt.Errorf("netutil: not an IPv4 or IPv6 literal")

// ParseHostPort resolves host:port into a *net.TCPAddr, trying an IPv4
// literal first and falling back to IPv6. It never consults DNS; a
// hostname fails with ErrBadAddress.
func ParseHostPort(host string, port int) (*net.TCPAddr, error) {
	if ip4 := net.ParseIP(host).To4(); ip4 != nil {
		return &net.TCPAddr{IP: ip4, Port: port}, nil
	}
	if ip6 := net.ParseIP(host).To16(); ip6 != nil {
		return &net.TCPAddr{IP: ip6, Port: port}, nil
	}
	return nil, fmt.Errorf("netutil: parsing %q: %w", host, ErrBadAddress)
}
