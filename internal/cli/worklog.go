package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewWorkLogCmd создаёт группу команд для журнала работ.
func NewWorkLogCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worklog",
		Short: "Browse the work log",
	}

	cmd.AddCommand(
		newWorkLogListCmd(clientFn, outputFn),
	)

	return cmd
}

func newWorkLogListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var userID, workType, fieldName, from, to string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			logs, err := client.ListWorkLogs(ListWorkLogsOpts{
				UserID:    userID,
				WorkType:  workType,
				FieldName: fieldName,
				From:      from,
				To:        to,
				Limit:     limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "DATE", "WORK_TYPE", "FIELD", "QUANTITY", "USER"}
			rows := make([][]string, len(logs))
			for i, l := range logs {
				qty := ""
				if l.Quantity > 0 {
					qty = fmt.Sprintf("%.1f %s", l.Quantity, l.Unit)
				}
				rows[i] = []string{l.ID, l.WorkDate, l.WorkType, l.FieldName, qty, l.UserID}
			}

			out.Print(headers, rows, logs)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Filter by user ID")
	cmd.Flags().StringVar(&workType, "work-type", "", "Filter by work type")
	cmd.Flags().StringVar(&fieldName, "field", "", "Filter by field name substring")
	cmd.Flags().StringVar(&from, "from", "", "From date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "To date YYYY-MM-DD")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}
