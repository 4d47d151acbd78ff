package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ii-tuitions/mocktest/internal/quiz"
)

func newCheckTopicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-topic <topic>",
		Short: "Check whether a topic belongs to a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			topic := strings.Join(args, " ")

			a, err := openApp(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			v, suggestions := a.Service.CheckTopic(topic, subject)
			if v.Relevant {
				fmt.Fprintf(out, "'%s' is valid for %s\n", topic, subject)
				return nil
			}

			fmt.Fprintln(out, quiz.OffSubjectMessage(topic, subject))
			fmt.Fprintf(out, "Try topics related to %s:\n", subject)
			for _, col := range suggestions {
				for _, s := range col {
					fmt.Fprintf(out, "  - %s\n", s)
				}
			}
			return fmt.Errorf("topic %q does not match %s", topic, subject)
		},
	}
	cmd.Flags().String("subject", "", "Subject to check against")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
