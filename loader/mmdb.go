package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oschwald/maxminddb-golang"
	"go4.org/netipx"

	"github.com/Ramzeth/asnranger"
	"github.com/Ramzeth/asnranger/util/cidr"
)

// ErrUnsupportedDatabase is returned for MaxMind databases that carry no AS
// data.
var ErrUnsupportedDatabase = errors.New("unsupported database type")

// mmdbASNRecord is the record layout of GeoLite2-ASN and compatible
// databases. Country is only present in combined databases.
type mmdbASNRecord struct {
	AutonomousSystemNumber       uint   `maxminddb:"autonomous_system_number"`
	AutonomousSystemOrganization string `maxminddb:"autonomous_system_organization"`
	Country                      struct {
		IsoCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// LoadMMDB reads all announced networks of the MaxMind database at path.
func LoadMMDB(path string) ([]asnranger.Record, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()
	return recordsFromMMDB(reader)
}

// ParseMMDB is like LoadMMDB for a database held in memory.
func ParseMMDB(data []byte) ([]asnranger.Record, error) {
	reader, err := maxminddb.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer reader.Close()
	return recordsFromMMDB(reader)
}

func recordsFromMMDB(reader *maxminddb.Reader) ([]asnranger.Record, error) {
	dbType := reader.Metadata.DatabaseType
	if !isASNDatabase(dbType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDatabase, dbType)
	}

	var records []asnranger.Record
	networks := reader.Networks(maxminddb.SkipAliasedNetworks)
	for networks.Next() {
		var entry mmdbASNRecord
		network, err := networks.Network(&entry)
		if err != nil {
			return nil, fmt.Errorf("decode network: %w", err)
		}
		if entry.AutonomousSystemNumber == notRoutedAS {
			continue
		}
		prefix, ok := netipx.FromStdIPNet(network)
		if !ok {
			return nil, fmt.Errorf("invalid network %s", network)
		}
		first, last, err := cidr.Bounds(prefix)
		if err != nil {
			return nil, err
		}
		records = append(records, asnranger.Record{
			FirstIP:     first.Unmap(),
			LastIP:      last.Unmap(),
			Number:      uint32(entry.AutonomousSystemNumber),
			Country:     entry.Country.IsoCode,
			Description: entry.AutonomousSystemOrganization,
		})
	}
	if err := networks.Err(); err != nil {
		return nil, fmt.Errorf("walk networks: %w", err)
	}
	return mergeAdjacent(records), nil
}

func isASNDatabase(dbType string) bool {
	lower := strings.ToLower(dbType)
	return strings.Contains(lower, "asn") || strings.Contains(lower, "isp")
}

// mergeAdjacent joins consecutive records describing the same AS whose
// ranges touch. Databases store one record per CIDR block, so a single
// announced range is usually split over several of them.
func mergeAdjacent(records []asnranger.Record) []asnranger.Record {
	if len(records) == 0 {
		return records
	}
	merged := records[:1]
	for _, record := range records[1:] {
		prev := &merged[len(merged)-1]
		if prev.Number == record.Number &&
			prev.Country == record.Country &&
			prev.Description == record.Description &&
			prev.LastIP.Next() == record.FirstIP {
			prev.LastIP = record.LastIP
			continue
		}
		merged = append(merged, record)
	}
	return merged
}
