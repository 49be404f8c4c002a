package asnranger

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBruteTable(t *testing.T) {
	recordIPv4 := newRecord("0.0.1.0", "0.0.1.255", 1, "AA", "v4")
	recordIPv6 := newRecord("8000::", "8000::ffff:ffff", 2, "BB", "v6")
	recordMapped := newRecord("::ffff:0.0.2.0", "::ffff:0.0.2.255", 3, "CC", "mapped")

	b := newBruteTable([]Record{recordIPv4, recordIPv6, recordMapped})

	assert.Equal(t, []Record{recordIPv4, recordMapped}, b.ipV4Records)
	assert.Equal(t, []Record{recordIPv6}, b.ipV6Records)
}

func TestBruteLookup(t *testing.T) {
	b := newBruteTable([]Record{
		newRecord("0.0.1.0", "0.0.1.255", 1, "AA", ""),
		newRecord("8000::", "8000::ffff", 2, "BB", ""),
	})

	cases := []struct {
		ip       netip.Addr
		found    bool
		expected uint32
		name     string
	}{
		{netip.MustParseAddr("0.0.1.255"), true, 1, "IPv4 should contain"},
		{netip.MustParseAddr("0.0.0.255"), false, 0, "IPv4 shouldn't contain"},
		{netip.MustParseAddr("8000::ffff"), true, 2, "IPv6 should contain"},
		{netip.MustParseAddr("8000::1:ffff"), false, 0, "IPv6 shouldn't contain"},
		{netip.MustParseAddr("::ffff:0.0.1.3"), true, 1, "IPv4-mapped should contain"},
		{netip.Addr{}, false, 0, "Invalid IP"},
		{netip.MustParseAddr("8000::ff%eth0"), false, 0, "Zoned IP"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record, found := b.Lookup(tc.ip)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.expected, record.Number)
		})
	}
}

func TestBruteContainingRecords(t *testing.T) {
	record1 := newRecord("0.0.1.0", "0.0.1.255", 1, "", "")
	record2 := newRecord("0.0.1.0", "0.0.1.127", 2, "", "")
	record3 := newRecord("8000::", "8000::ffff", 3, "", "")
	record4 := newRecord("8000::", "8000::7fff", 4, "", "")
	b := newBruteTable([]Record{record1, record2, record3, record4})

	cases := []struct {
		ip       netip.Addr
		expected []Record
		name     string
	}{
		{netip.MustParseAddr("0.0.1.255"), []Record{record1}, "IPv4 should contain"},
		{netip.MustParseAddr("0.0.1.127"), []Record{record1, record2}, "IPv4 should contain both"},
		{netip.MustParseAddr("0.0.0.127"), nil, "IPv4 should contain none"},
		{netip.MustParseAddr("8000::ffff"), []Record{record3}, "IPv6 should contain"},
		{netip.MustParseAddr("8000::7fff"), []Record{record3, record4}, "IPv6 should contain both"},
		{netip.MustParseAddr("8000::1:7fff"), nil, "IPv6 should contain none"},
		{netip.Addr{}, nil, "Invalid IP"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, b.containingRecords(tc.ip))
		})
	}
}
