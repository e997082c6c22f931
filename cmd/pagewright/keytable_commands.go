package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pagewright/internal/keytable"
)

func newKeyTableCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keytable",
		Short: "Decrypt and encrypt key tables",
	}
	cmd.AddCommand(newKeyTableDecryptCommand(ctx))
	cmd.AddCommand(newKeyTableEncryptCommand(ctx))
	return cmd
}

func newKeyTableDecryptCommand(ctx *commandContext) *cobra.Command {
	var infoPath string
	var key string

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt the key tables of a content-info document",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.decryptInfo(cmd.Context(), infoPath, key)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"content_id": loaded.contentID,
					"title":      loaded.title,
					"cached":     loaded.cached,
					"tables":     loaded.tables,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Content: %s (%s)\n", loaded.contentID, loaded.title)
			rows := make([][]string, 0, len(loaded.tables))
			for _, kind := range loaded.tables.Kinds() {
				table := loaded.tables[kind]
				rows = append(rows, []string{kind, strconv.Itoa(len(table)), strings.Join(table, " ")})
			}
			writeRows(cmd, []string{"Kind", "Entries", "Keys"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft})
			if loaded.cached {
				fmt.Fprintln(out, "Key tables cached")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&infoPath, "info", "i", "", "Content-info JSON document")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Initial key the tables were issued for")
	_ = cmd.MarkFlagRequired("info")
	return cmd
}

func newKeyTableEncryptCommand(ctx *commandContext) *cobra.Command {
	var contentID string
	var key string

	cmd := &cobra.Command{
		Use:   "encrypt <entry>...",
		Short: "Encrypt key-table entries for a content id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := ctx.initialKey(key)
			if err != nil {
				return err
			}
			table := keytable.Table(args)
			if err := table.Validate(); err != nil {
				return err
			}
			encrypted, err := keytable.EncryptTable(contentID, initial, table)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{"content_id": contentID, "encrypted": encrypted})
			}
			fmt.Fprintln(cmd.OutOrStdout(), encrypted)
			return nil
		},
	}
	cmd.Flags().StringVar(&contentID, "content-id", "", "Content id the table belongs to")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Initial key to encrypt against")
	_ = cmd.MarkFlagRequired("content-id")
	return cmd
}
