package cidr

import (
	"fmt"
	"net/netip"

	"go4.org/netipx"
)

// ErrInvalidRange is returned when a range cannot be expressed as prefixes.
var ErrInvalidRange = fmt.Errorf("Invalid address range")

// Prefixes returns the minimal list of CIDR blocks exactly covering
// [first, last], in ascending order.
func Prefixes(first, last netip.Addr) ([]netip.Prefix, error) {
	r := netipx.IPRangeFrom(first, last)
	if !r.IsValid() {
		return nil, ErrInvalidRange
	}
	return r.Prefixes(), nil
}

// Bounds returns the first and last address of a network. IPv4-mapped
// prefixes are not unmapped.
func Bounds(network netip.Prefix) (netip.Addr, netip.Addr, error) {
	if !network.IsValid() {
		return netip.Addr{}, netip.Addr{}, ErrInvalidRange
	}
	r := netipx.RangeOfPrefix(network.Masked())
	return r.From(), r.To(), nil
}
