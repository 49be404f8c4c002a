package main

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ramzeth/asnranger"
	"github.com/Ramzeth/asnranger/loader"
)

var lookupSource string

var errNoSource = errors.New("no dataset: set --source or IPTOASN_SOURCE")

var commandLookup = &cobra.Command{
	Use:   "lookup <ip>...",
	Short: "Resolve addresses against a local dataset",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if lookupSource == "" {
			return errNoSource
		}
		table, err := loader.LoadFile(lookupSource)
		if err != nil {
			return err
		}
		return lookup(cmd.OutOrStdout(), asnranger.NewResolver(asnranger.NewStore(table)), args)
	},
}

func init() {
	commandLookup.Flags().StringVarP(&lookupSource, "source", "s", envOr("IPTOASN_SOURCE", ""), "local dataset path (.tsv, .tsv.gz or .mmdb)")
	mainCommand.AddCommand(commandLookup)
}

func lookup(w io.Writer, resolver *asnranger.Resolver, args []string) error {
	for _, arg := range args {
		addr, err := netip.ParseAddr(arg)
		if err != nil {
			return fmt.Errorf("invalid address %q", arg)
		}
		record, found := resolver.Resolve(addr)
		if !found {
			fmt.Fprintf(w, "%s\tnot announced\n", arg)
			continue
		}
		prefixes, err := record.Prefixes()
		if err != nil {
			return err
		}
		cover := make([]string, len(prefixes))
		for i, prefix := range prefixes {
			cover[i] = prefix.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", arg, record, strings.Join(cover, ","))
	}
	return nil
}
