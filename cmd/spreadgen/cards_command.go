package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spreadgen/internal/cards"
)

func newCardsCommand(ctx *commandContext) *cobra.Command {
	var (
		name    string
		faction string
		rarity  int
		altOnly bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:         "cards",
		Short:       "List catalog cards",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := cards.DefaultCatalog()
			if err != nil {
				return err
			}
			query := cards.Query{Name: name, Rarity: rarity, AltOnly: altOnly}
			if strings.TrimSpace(faction) != "" {
				parsed, ok := cards.ParseFaction(faction)
				if !ok {
					return fmt.Errorf("unknown faction %q (use ft, bl, fc, or 1-3)", faction)
				}
				query.Faction = parsed
			}

			matches := cards.Filter(catalog.All(), query)
			if asJSON {
				return writeJSON(cmd, matches)
			}
			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintln(out, "No cards match")
				return nil
			}
			rows := make([][]string, 0, len(matches))
			for _, meta := range matches {
				rows = append(rows, []string{
					meta.Token,
					meta.ID,
					meta.Name,
					meta.Faction.Name(),
					meta.RarityLabel(),
					yesNo(!meta.Unminted),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Token", "ID", "Name", "Faction", "Rarity", "Minted"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d of %d cards\n", len(matches), catalog.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Case-insensitive name substring")
	cmd.Flags().StringVar(&faction, "faction", "", "Faction code, number, or name")
	cmd.Flags().IntVar(&rarity, "rarity", 0, "Rarity tier (1-3)")
	cmd.Flags().BoolVar(&altOnly, "alt", false, "Only alt rares")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
