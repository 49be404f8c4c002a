/*
Package asnranger resolves IP addresses to the autonomous system announcing
them.

To build a range table from records:

			table, err := asnranger.NewTable([]asnranger.Record{{
				FirstIP:     netip.MustParseAddr("10.0.0.0"),
				LastIP:      netip.MustParseAddr("10.0.0.255"),
				Number:      65000,
				Country:     "US",
				Description: "Example Net",
			}})

To serve it and swap in newer tables while lookups are running:

			store := asnranger.NewStore(table)
			resolver := asnranger.NewResolver(store)

			// returns Record, bool
			record, found := resolver.Resolve(netip.MustParseAddr("10.0.0.5"))

			store.Publish(newerTable)

Lookups that started before a publish finish against the table they started
with.
*/
package asnranger
