package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pagewright/internal/reqtoken"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var verify string

	cmd := &cobra.Command{
		Use:         "token <content-id>",
		Short:       "Generate or verify a request token",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			contentID := args[0]
			out := cmd.OutOrStdout()
			if verify != "" {
				if err := reqtoken.Verify(contentID, verify); err != nil {
					return err
				}
				fmt.Fprintln(out, "Token valid")
				return nil
			}

			token, err := reqtoken.Generate(contentID)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{
					"content_id": contentID,
					"token":      token.Value,
					"nonce":      token.Nonce,
					"checksum":   token.Checksum(),
				})
			}
			fmt.Fprintf(out, "Token:    %s\n", token.Value)
			fmt.Fprintf(out, "Nonce:    %s\n", token.Nonce)
			fmt.Fprintf(out, "Checksum: %s\n", token.Checksum())
			return nil
		},
	}
	cmd.Flags().StringVar(&verify, "verify", "", "Check that a token was built for the content id")
	return cmd
}
