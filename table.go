package asnranger

import (
	"net/netip"
	"slices"

	"lukechampine.com/uint128"

	"github.com/Ramzeth/asnranger/util/ip"
)

// ranges is one address family's sorted, non-overlapping sequence of
// records. Bounds are kept as 128 bit keys in parallel slices so the binary
// search only touches the keys.
type ranges struct {
	firsts  []uint128.Uint128
	lasts   []uint128.Uint128
	records []Record
}

func newRanges(records []Record) ranges {
	r := ranges{
		firsts:  make([]uint128.Uint128, len(records)),
		lasts:   make([]uint128.Uint128, len(records)),
		records: records,
	}
	for i, record := range records {
		// Bounds were validated by NewTable.
		r.firsts[i], _ = ip.ToUint128(record.FirstIP)
		r.lasts[i], _ = ip.ToUint128(record.LastIP)
	}
	return r
}

// find returns the index of the range containing key. It locates the last
// range whose first address is <= key and then checks its last address; a
// miss there means key falls into a gap.
func (r *ranges) find(key uint128.Uint128) (int, bool) {
	lo, hi := 0, len(r.firsts)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if r.firsts[mid].Cmp(key) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	i := lo - 1
	if i < 0 || r.lasts[i].Cmp(key) < 0 {
		return 0, false
	}
	return i, true
}

// Table is an immutable range table mapping addresses to the AS record
// announcing them. IPv4 and IPv6 ranges live in separate sorted sequences, so
// an address can only ever match a record of its own family.
//
// A Table is safe for concurrent use by any number of readers.
type Table struct {
	ipV4Ranges ranges
	ipV6Ranges ranges
}

// EmptyTable returns a table without any records.
func EmptyTable() *Table {
	return &Table{}
}

// NewTable builds a table from records. The input does not need to be sorted
// and is not retained. IPv4-mapped IPv6 bounds are treated as IPv4. It
// returns a *MalformedTableError if a record has invalid bounds or overlaps
// another record.
func NewTable(records []Record) (*Table, error) {
	sorted := make([]Record, len(records))
	for i, record := range records {
		record.FirstIP = record.FirstIP.Unmap()
		record.LastIP = record.LastIP.Unmap()
		if err := validateRecord(i, record); err != nil {
			return nil, err
		}
		sorted[i] = record
	}
	slices.SortFunc(sorted, compareRecords)

	split := len(sorted)
	for i, record := range sorted {
		if !record.Is4() {
			split = i
			break
		}
	}
	for i := 1; i < len(sorted); i++ {
		if i == split {
			continue
		}
		if sorted[i].FirstIP.Compare(sorted[i-1].LastIP) <= 0 {
			return nil, &MalformedTableError{
				Index:  i,
				Record: sorted[i],
				Reason: "overlaps " + sorted[i-1].String(),
			}
		}
	}

	return &Table{
		ipV4Ranges: newRanges(sorted[:split:split]),
		ipV6Ranges: newRanges(sorted[split:]),
	}, nil
}

func validateRecord(index int, record Record) error {
	var reason string
	switch {
	case !record.FirstIP.IsValid() || !record.LastIP.IsValid():
		reason = "invalid bound"
	case record.FirstIP.Is4() != record.LastIP.Is4():
		reason = "address family mismatch"
	case record.FirstIP.Zone() != "" || record.LastIP.Zone() != "":
		reason = "zoned address"
	case record.LastIP.Less(record.FirstIP):
		reason = "first address after last address"
	default:
		return nil
	}
	return &MalformedTableError{Index: index, Record: record, Reason: reason}
}

// compareRecords orders IPv4 ranges before IPv6 ranges, then by first
// address. Ties are broken by last address only to keep sorting stable for
// input that is about to be rejected anyway.
func compareRecords(a, b Record) int {
	if a.Is4() != b.Is4() {
		if a.Is4() {
			return -1
		}
		return 1
	}
	if c := a.FirstIP.Compare(b.FirstIP); c != 0 {
		return c
	}
	return a.LastIP.Compare(b.LastIP)
}

// Lookup returns the record whose range contains addr. IPv4-mapped IPv6
// addresses are looked up as IPv4. The second result is false when addr is
// not announced by any record, is not a valid address or carries a zone.
func (t *Table) Lookup(addr netip.Addr) (Record, bool) {
	if addr.Zone() != "" {
		return Record{}, false
	}
	addr = addr.Unmap()
	r := t.getRangesForIP(addr)
	if r == nil {
		return Record{}, false
	}
	key, err := ip.ToUint128(addr)
	if err != nil {
		return Record{}, false
	}
	i, found := r.find(key)
	if !found {
		return Record{}, false
	}
	return r.records[i], true
}

// Len returns number of records in the table.
func (t *Table) Len() int {
	return t.Len4() + t.Len6()
}

// Len4 returns number of IPv4 records in the table.
func (t *Table) Len4() int {
	return len(t.ipV4Ranges.records)
}

// Len6 returns number of IPv6 records in the table.
func (t *Table) Len6() int {
	return len(t.ipV6Ranges.records)
}

// Coverage returns the number of IPv4 and IPv6 addresses announced by the
// table. The IPv6 count saturates at uint128.Max.
func (t *Table) Coverage() (v4, v6 uint128.Uint128) {
	return t.ipV4Ranges.coverage(), t.ipV6Ranges.coverage()
}

func (r *ranges) coverage() uint128.Uint128 {
	total := uint128.Zero
	for _, record := range r.records {
		n := record.Size()
		if uint128.Max.Sub(total).Cmp(n) < 0 {
			return uint128.Max
		}
		total = total.Add(n)
	}
	return total
}

// Records returns a copy of all records, IPv4 first, each family in ascending
// order.
func (t *Table) Records() []Record {
	out := make([]Record, 0, t.Len())
	out = append(out, t.ipV4Ranges.records...)
	return append(out, t.ipV6Ranges.records...)
}

func (t *Table) getRangesForIP(addr netip.Addr) *ranges {
	if !addr.IsValid() {
		return nil
	}
	if addr.Is4() {
		return &t.ipV4Ranges
	}
	return &t.ipV6Ranges
}
