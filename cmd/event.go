package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/progresstrack/internal/app"
	"github.com/abhisek/progresstrack/internal/store"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage learner interaction events",
}

var eventAddCmd = &cobra.Command{
	Use:   "add <source> [json|-]",
	Short: "Append an event; the payload is read from stdin when omitted or -",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		if studentID == "" {
			return fmt.Errorf("--student is required")
		}

		var data string
		if len(args) == 2 && args[1] != "-" {
			data = args[1]
		} else {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			data = string(b)
		}
		data = strings.TrimSpace(data)
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("payload is not valid JSON")
		}

		return withApp(cmd, func(a *app.App) error {
			seq, err := a.Store.EventRepo().Append(cmd.Context(), store.EventData{
				StudentID: studentID,
				Source:    args[0],
				Data:      data,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), seq)
			return nil
		})
	},
}

func init() {
	eventAddCmd.Flags().String("student", "", "Student id")
	eventCmd.AddCommand(eventAddCmd)
}
