package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List boards, or the subjects and topics for a board and grade",
		RunE: func(cmd *cobra.Command, args []string) error {
			board, _ := cmd.Flags().GetString("board")
			grade, _ := cmd.Flags().GetInt("grade")

			a, err := openApp(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			catalog := a.Catalog
			if board == "" {
				fmt.Fprintln(out, "Boards:")
				for _, b := range catalog.Boards() {
					fmt.Fprintf(out, "  %s\n", b)
				}
				return nil
			}
			if !catalog.HasBoard(board) {
				return fmt.Errorf("unknown board %q", board)
			}
			if grade == 0 {
				return fmt.Errorf("--grade is required with --board")
			}

			subjects := catalog.Subjects(board, grade)
			if len(subjects) == 0 {
				return fmt.Errorf("%s offers no subjects for grade %d", board, grade)
			}
			fmt.Fprintf(out, "%s Grade %d\n", board, grade)
			for _, s := range subjects {
				fmt.Fprintf(out, "  %s\n", s)
				if topics := catalog.Topics(board, s, grade); len(topics) > 0 {
					fmt.Fprintf(out, "    topics: %s\n", strings.Join(topics, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().String("board", "", "Board name")
	cmd.Flags().Int("grade", 0, "Grade (1-12)")
	return cmd
}
