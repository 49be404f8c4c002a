package asnranger

import (
	"net/netip"
)

// bruteTable is a brute force implementation of the range table. Records are
// kept per address family in insertion order and every lookup scans them
// linearly, so one can assume a worst case performance of O(N). The main
// purpose of this implementation is for testing because the correctness of
// this implementation can be easily guaranteed, and used as the ground truth
// when running a wider range of 'random' tests on Table.
type bruteTable struct {
	ipV4Records []Record
	ipV6Records []Record
}

// newBruteTable returns a new bruteTable holding records. It performs no
// validation.
func newBruteTable(records []Record) *bruteTable {
	b := &bruteTable{}
	for _, record := range records {
		if record.FirstIP.Unmap().Is4() {
			b.ipV4Records = append(b.ipV4Records, record)
		} else {
			b.ipV6Records = append(b.ipV6Records, record)
		}
	}
	return b
}

// Lookup returns the first record containing addr.
func (b *bruteTable) Lookup(addr netip.Addr) (Record, bool) {
	matches := b.containingRecords(addr)
	if len(matches) == 0 {
		return Record{}, false
	}
	return matches[0], true
}

// containingRecords returns all records addr is a part of. For a well formed
// table the result never holds more than one record.
func (b *bruteTable) containingRecords(addr netip.Addr) []Record {
	addr = addr.Unmap()
	if !addr.IsValid() || addr.Zone() != "" {
		return nil
	}
	records := b.ipV6Records
	if addr.Is4() {
		records = b.ipV4Records
	}
	var results []Record
	for _, record := range records {
		if record.Contains(addr) {
			results = append(results, record)
		}
	}
	return results
}
