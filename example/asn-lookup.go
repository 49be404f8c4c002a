/*
	Example of building an AS range table and serving lookups from it

	Ranges are given as first/last address pairs; the table is published
	into a store so it can later be swapped for a fresh one while lookups
	keep running.
*/
package main

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/Ramzeth/asnranger"
)

// entry point
func main() {

	// build a table from announced ranges
	table, err := asnranger.NewTable([]asnranger.Record{
		{
			FirstIP:     netip.MustParseAddr("192.168.1.0"),
			LastIP:      netip.MustParseAddr("192.168.1.255"),
			Number:      1,
			Country:     "US",
			Description: "FIRST-NET",
		},
		{
			FirstIP:     netip.MustParseAddr("128.168.1.0"),
			LastIP:      netip.MustParseAddr("128.168.2.127"),
			Number:      2,
			Country:     "FR",
			Description: "SECOND-NET",
		},
	})
	if err != nil {
		fmt.Println("asnranger.NewTable()", err.Error())
		os.Exit(1)
	}

	store := asnranger.NewStore(table)
	resolver := asnranger.NewResolver(store)

	for _, ip := range []string{"128.168.1.7", "192.168.1.42", "10.0.0.1"} {
		record, found := resolver.Resolve(netip.MustParseAddr(ip))
		if !found {
			fmt.Printf("%s: not announced\n", ip)
			continue
		}
		fmt.Printf("%s: AS%d %s\n", ip, record.Number, record.Description)

		// a range is not always a single CIDR block
		prefixes, err := record.Prefixes()
		if err != nil {
			fmt.Println("record.Prefixes()", err.Error())
			os.Exit(1)
		}
		for _, p := range prefixes {
			fmt.Println("\t", p)
		}
	}

	// swap in a new table; lookups already running keep their old one
	version := store.Publish(asnranger.EmptyTable())
	_, found := resolver.Resolve(netip.MustParseAddr("192.168.1.42"))
	fmt.Println("version", version, "found:", found)
}
