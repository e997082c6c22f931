package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"pagewright/internal/keyselect"
)

func newKeysCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Inspect per-image key selection",
	}
	cmd.AddCommand(newKeysDeriveCommand(ctx))
	return cmd
}

func newKeysDeriveCommand(ctx *commandContext) *cobra.Command {
	var src tableSource

	cmd := &cobra.Command{
		Use:   "derive <image-ref>...",
		Short: "Show the key pair and scheme selected for image references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.loadTables(cmd.Context(), src)
			if err != nil {
				return err
			}
			if err := loaded.tables.Require("ptbl", "ctbl"); err != nil {
				return err
			}

			type derived struct {
				Ref string `json:"ref"`
				keyselect.Selection
			}
			classify := ctx.classifier()
			selections := make([]derived, 0, len(args))
			for _, ref := range args {
				sel, err := keyselect.SelectWith(ref, loaded.tables["ptbl"], loaded.tables["ctbl"], classify)
				if err != nil {
					return err
				}
				selections = append(selections, derived{Ref: ref, Selection: sel})
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, selections)
			}

			rows := make([][]string, 0, len(selections))
			for _, d := range selections {
				rows = append(rows, []string{
					d.Ref,
					strconv.Itoa(d.IndexS),
					strconv.Itoa(d.IndexH),
					d.Kind.String(),
					d.KeyS,
					d.KeyH,
				})
			}
			writeRows(cmd, []string{"Ref", "S", "H", "Scheme", "Key S", "Key H"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight})
			return nil
		},
	}
	cmd.Flags().StringVarP(&src.infoPath, "info", "i", "", "Content-info JSON document")
	cmd.Flags().StringVarP(&src.key, "key", "k", "", "Initial key the tables were issued for")
	cmd.Flags().StringVar(&src.contentID, "content-id", "", "Use cached tables for this content id")
	return cmd
}
