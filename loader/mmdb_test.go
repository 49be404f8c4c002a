package loader

import (
	"bytes"
	"context"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramzeth/asnranger"
)

type mmdbNetwork struct {
	cidr   string
	number uint32
	org    string
}

var asnNetworks = []mmdbNetwork{
	{"1.0.0.0/25", 13335, "CLOUDFLARENET"},
	{"1.0.0.128/25", 13335, "CLOUDFLARENET"},
	{"1.0.1.0/24", 0, "Not routed"},
	{"8.8.8.0/24", 15169, "GOOGLE"},
	{"2001:db8::/32", 64496, "Documentation"},
}

// buildMMDB returns a database of type dbType holding networks.
func buildMMDB(t *testing.T, dbType string, networks []mmdbNetwork) []byte {
	t.Helper()
	writer, err := mmdbwriter.New(mmdbwriter.Options{
		DatabaseType:            dbType,
		IncludeReservedNetworks: true,
		RecordSize:              24,
	})
	require.NoError(t, err)
	for _, network := range networks {
		_, ipNet, err := net.ParseCIDR(network.cidr)
		require.NoError(t, err)
		require.NoError(t, writer.Insert(ipNet, mmdbtype.Map{
			"autonomous_system_number":       mmdbtype.Uint32(network.number),
			"autonomous_system_organization": mmdbtype.String(network.org),
		}))
	}
	var buf bytes.Buffer
	_, err = writer.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseMMDB(t *testing.T) {
	records, err := ParseMMDB(buildMMDB(t, "GeoLite2-ASN", asnNetworks))
	require.NoError(t, err)

	expected := []asnranger.Record{
		{
			FirstIP:     netip.MustParseAddr("1.0.0.0"),
			LastIP:      netip.MustParseAddr("1.0.0.255"),
			Number:      13335,
			Description: "CLOUDFLARENET",
		},
		{
			FirstIP:     netip.MustParseAddr("8.8.8.0"),
			LastIP:      netip.MustParseAddr("8.8.8.255"),
			Number:      15169,
			Description: "GOOGLE",
		},
		{
			FirstIP:     netip.MustParseAddr("2001:db8::"),
			LastIP:      netip.MustParseAddr("2001:db8:ffff:ffff:ffff:ffff:ffff:ffff"),
			Number:      64496,
			Description: "Documentation",
		},
	}
	assert.Equal(t, expected, records)
}

func TestParseMMDBUnsupportedType(t *testing.T) {
	_, err := ParseMMDB(buildMMDB(t, "GeoLite2-Country", asnNetworks[:1]))
	assert.ErrorIs(t, err, ErrUnsupportedDatabase)
}

func TestLoadFileMMDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GeoLite2-ASN.mmdb")
	require.NoError(t, os.WriteFile(path, buildMMDB(t, "GeoLite2-ASN", asnNetworks), 0o644))

	records, err := LoadMMDB(path)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len4())
	assert.Equal(t, 1, table.Len6())

	cases := []struct {
		ip       string
		found    bool
		expected uint32
		name     string
	}{
		{"1.0.0.1", true, 13335, "first block"},
		{"1.0.0.200", true, 13335, "merged second block"},
		{"1.0.1.1", false, 0, "AS 0 is a gap"},
		{"::ffff:8.8.8.8", true, 15169, "IPv4-mapped"},
		{"2001:db8:1::1", true, 64496, "IPv6"},
		{"9.9.9.9", false, 0, "not in database"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record, found := table.Lookup(netip.MustParseAddr(tc.ip))
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.expected, record.Number)
		})
	}
}

func TestUpdaterRefreshMMDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GeoLite2-ASN.mmdb")
	require.NoError(t, os.WriteFile(path, buildMMDB(t, "GeoLite2-ASN", asnNetworks), 0o644))

	store := asnranger.NewStore(nil)
	updater, err := NewUpdater(store, UpdaterOptions{Source: path, Logger: quietLogger()})
	require.NoError(t, err)
	published, err := updater.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, published)

	_, found := store.Acquire().Lookup(netip.MustParseAddr("8.8.4.4"))
	assert.False(t, found)
	record, found := store.Acquire().Lookup(netip.MustParseAddr("8.8.8.8"))
	require.True(t, found)
	assert.Equal(t, "GOOGLE", record.Description)
}

func TestParseMMDBInvalid(t *testing.T) {
	_, err := ParseMMDB([]byte("definitely not a maxmind database"))
	assert.Error(t, err)
}

func TestLoadFileMMDBInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GeoLite2-ASN.mmdb")
	assert.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	_, err := LoadFile(path)
	assert.Error(t, err)

	_, err = LoadMMDB(filepath.Join(t.TempDir(), "missing.mmdb"))
	assert.Error(t, err)
}

func TestIsASNDatabase(t *testing.T) {
	cases := []struct {
		dbType   string
		expected bool
	}{
		{"GeoLite2-ASN", true},
		{"DBIP-ASN-Lite (compat=GeoLite2-ASN)", true},
		{"sing-asn", true},
		{"GeoIP2-ISP", true},
		{"GeoLite2-Country", false},
		{"GeoLite2-City", false},
	}
	for _, tc := range cases {
		t.Run(tc.dbType, func(t *testing.T) {
			assert.Equal(t, tc.expected, isASNDatabase(tc.dbType))
		})
	}
}

func TestMergeAdjacent(t *testing.T) {
	record := func(first, last string, number uint32, description string) asnranger.Record {
		return asnranger.Record{
			FirstIP:     netip.MustParseAddr(first),
			LastIP:      netip.MustParseAddr(last),
			Number:      number,
			Description: description,
		}
	}
	cases := []struct {
		input    []asnranger.Record
		expected []asnranger.Record
		name     string
	}{
		{nil, nil, "empty"},
		{
			[]asnranger.Record{
				record("1.0.0.0", "1.0.0.127", 1, "A"),
				record("1.0.0.128", "1.0.0.255", 1, "A"),
				record("1.0.1.0", "1.0.1.255", 1, "A"),
			},
			[]asnranger.Record{record("1.0.0.0", "1.0.1.255", 1, "A")},
			"touching blocks of one AS",
		},
		{
			[]asnranger.Record{
				record("1.0.0.0", "1.0.0.127", 1, "A"),
				record("1.0.0.128", "1.0.0.255", 2, "B"),
			},
			[]asnranger.Record{
				record("1.0.0.0", "1.0.0.127", 1, "A"),
				record("1.0.0.128", "1.0.0.255", 2, "B"),
			},
			"different AS",
		},
		{
			[]asnranger.Record{
				record("1.0.0.0", "1.0.0.127", 1, "A"),
				record("1.0.1.0", "1.0.1.255", 1, "A"),
			},
			[]asnranger.Record{
				record("1.0.0.0", "1.0.0.127", 1, "A"),
				record("1.0.1.0", "1.0.1.255", 1, "A"),
			},
			"gap between blocks",
		},
		{
			[]asnranger.Record{
				record("255.255.255.0", "255.255.255.255", 1, "A"),
				record("::", "::ff", 1, "A"),
			},
			[]asnranger.Record{
				record("255.255.255.0", "255.255.255.255", 1, "A"),
				record("::", "::ff", 1, "A"),
			},
			"family boundary",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, mergeAdjacent(tc.input))
		})
	}
}
