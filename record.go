package asnranger

import (
	"fmt"
	"net/netip"

	"lukechampine.com/uint128"

	"github.com/Ramzeth/asnranger/util/cidr"
	"github.com/Ramzeth/asnranger/util/ip"
)

// Record is a range of addresses announced by a single autonomous system.
// Bounds are inclusive and always belong to the same address family.
type Record struct {
	FirstIP     netip.Addr
	LastIP      netip.Addr
	Number      uint32
	Country     string
	Description string
}

// Is4 reports whether the record describes an IPv4 range.
func (r Record) Is4() bool {
	return r.FirstIP.Is4()
}

// Contains reports whether addr lies within the record's range.
func (r Record) Contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() || addr.Is4() != r.Is4() {
		return false
	}
	return r.FirstIP.Compare(addr) <= 0 && addr.Compare(r.LastIP) <= 0
}

// Prefixes returns the CIDR blocks covering the record's range.
func (r Record) Prefixes() ([]netip.Prefix, error) {
	return cidr.Prefixes(r.FirstIP, r.LastIP)
}

// Size returns the number of addresses in the range. It is zero for a record
// NewTable would reject.
func (r Record) Size() uint128.Uint128 {
	n, err := ip.NumberOfIPsInRange(r.FirstIP.Unmap(), r.LastIP.Unmap())
	if err != nil {
		return uint128.Zero
	}
	return n
}

func (r Record) String() string {
	return fmt.Sprintf("%s-%s AS%d %s %q", r.FirstIP, r.LastIP, r.Number, r.Country, r.Description)
}
