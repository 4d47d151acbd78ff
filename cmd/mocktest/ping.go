package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the connection to the AI provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, message := a.Service.TestConnection(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.Service.ProviderName(), message)
			if !ok {
				return errors.New(message)
			}
			return nil
		},
	}
}
