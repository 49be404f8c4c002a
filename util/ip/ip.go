/*
Package ip provides utility functions for working with IPs (netip.Addr) as
128 bit unsigned integers.
*/
package ip

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"lukechampine.com/uint128"
)

// ErrNotIPv4Error is returned when IPv4 operations is performed on IPv6.
var ErrNotIPv4Error = fmt.Errorf("IP is not IPv4")

// ErrInvalidAddress is returned for the zero netip.Addr.
var ErrInvalidAddress = fmt.Errorf("invalid IP address")

// IPv4ToUint32 converts ipV4 to uint32.
func IPv4ToUint32(addr netip.Addr) (uint32, error) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return 0, ErrNotIPv4Error
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:]), nil
}

// Uint32ToIPv4 converts uint32 to an IPv4 netip.Addr.
func Uint32ToIPv4(nn uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], nn)
	return netip.AddrFrom4(b)
}

// ToUint128 returns the numeric value of addr. IPv4 addresses occupy the low
// 32 bits, so keys of different families must never share a sorted sequence.
func ToUint128(addr netip.Addr) (uint128.Uint128, error) {
	switch {
	case !addr.IsValid():
		return uint128.Zero, ErrInvalidAddress
	case addr.Is4():
		v, _ := IPv4ToUint32(addr)
		return uint128.From64(uint64(v)), nil
	default:
		b := addr.As16()
		return uint128.FromBytesBE(b[:]), nil
	}
}

// FromUint128 is the inverse of ToUint128.
func FromUint128(n uint128.Uint128, is4 bool) netip.Addr {
	if is4 {
		return Uint32ToIPv4(uint32(n.Lo))
	}
	var b [16]byte
	n.PutBytesBE(b[:])
	return netip.AddrFrom16(b)
}

// NextIP returns the next sequential ip. The last address of a family wraps
// to the first.
func NextIP(addr netip.Addr) netip.Addr {
	if next := addr.Next(); next.IsValid() {
		return next
	}
	if addr.Is4() {
		return netip.IPv4Unspecified()
	}
	return netip.IPv6Unspecified()
}

// PreviousIP returns the previous sequential ip. The first address of a
// family wraps to the last.
func PreviousIP(addr netip.Addr) netip.Addr {
	if prev := addr.Prev(); prev.IsValid() {
		return prev
	}
	if addr.Is4() {
		return netip.AddrFrom4([4]byte{255, 255, 255, 255})
	}
	return FromUint128(uint128.Max, false)
}

// NumberOfIPsInRange returns the amount of addresses in [first, last].
// Both addresses have to be of the same family. The full IPv6 space does not
// fit and saturates at uint128.Max.
func NumberOfIPsInRange(first, last netip.Addr) (uint128.Uint128, error) {
	if first.Is4() != last.Is4() {
		return uint128.Zero, fmt.Errorf("address family mismatch: %s - %s", first, last)
	}
	from, err := ToUint128(first)
	if err != nil {
		return uint128.Zero, err
	}
	to, err := ToUint128(last)
	if err != nil {
		return uint128.Zero, err
	}
	if to.Cmp(from) < 0 {
		return uint128.Zero, fmt.Errorf("range end %s before start %s", last, first)
	}
	span := to.Sub(from)
	if span.Equals(uint128.Max) {
		return uint128.Max, nil
	}
	return span.Add64(1), nil
}
