package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTaskCmd создаёт группу команд для задач.
func NewTaskCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage scheduled tasks",
	}

	cmd.AddCommand(
		newTaskListCmd(clientFn, outputFn),
		newTaskCreateCmd(clientFn, outputFn),
		newTaskShowCmd(clientFn, outputFn),
		newTaskCompleteCmd(clientFn, outputFn),
		newTaskPostponeCmd(clientFn, outputFn),
	)

	return cmd
}

func newTaskListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var status, workType, fieldID, day string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			tasks, err := client.ListTasks(ListTasksOpts{
				Status:   status,
				WorkType: workType,
				FieldID:  fieldID,
				Day:      day,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "WORK_TYPE", "SCHEDULED", "PRIORITY", "STATUS"}
			rows := make([][]string, len(tasks))
			for i, t := range tasks {
				rows[i] = []string{t.ID, t.WorkType, t.ScheduledDate, t.Priority, t.Status}
			}

			out.Print(headers, rows, tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, DONE, CANCELLED)")
	cmd.Flags().StringVar(&workType, "work-type", "", "Filter by work type")
	cmd.Flags().StringVar(&fieldID, "field-id", "", "Filter by field ID")
	cmd.Flags().StringVar(&day, "day", "", "Tasks scheduled for a day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newTaskCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var fieldID, workType, description, date, priority, assignedTo string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			task, err := client.CreateTask(CreateTaskRequest{
				FieldID:       fieldID,
				WorkType:      workType,
				Description:   description,
				ScheduledDate: date + "T00:00:00Z",
				Priority:      priority,
				AssignedTo:    assignedTo,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Task created: %s", task.ID))
			out.Print(
				[]string{"ID", "WORK_TYPE", "SCHEDULED", "STATUS"},
				[][]string{{task.ID, task.WorkType, task.ScheduledDate, task.Status}},
				task,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&fieldID, "field-id", "", "Field ID (required)")
	cmd.Flags().StringVar(&workType, "work-type", "", "Work type (required)")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&date, "date", "", "Scheduled date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low, medium, high)")
	cmd.Flags().StringVar(&assignedTo, "assigned-to", "", "Assignee")
	cmd.MarkFlagRequired("field-id")
	cmd.MarkFlagRequired("work-type")
	cmd.MarkFlagRequired("date")

	return cmd
}

func newTaskShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			task, err := client.GetTask(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "FIELD_ID", "WORK_TYPE", "SCHEDULED", "STATUS", "VERSION"},
				[][]string{{task.ID, task.FieldID, task.WorkType, task.ScheduledDate, task.Status, fmt.Sprintf("%d", task.Version)}},
				task,
			)
			return nil
		},
	}
}

func newTaskCompleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "complete ID",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			result, err := client.CompleteTask(args[0], by)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Task completed: %s", result.Task.ID))
			if result.Next != nil {
				out.Success(fmt.Sprintf("Next occurrence scheduled: %s (%s)",
					result.Next.ID, result.Next.ScheduledDate))
			}
			out.Print(
				[]string{"ID", "WORK_TYPE", "STATUS", "COMPLETED_BY"},
				[][]string{{result.Task.ID, result.Task.WorkType, result.Task.Status, result.Task.CompletedBy}},
				result,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "cli", "Who completed the task")

	return cmd
}

func newTaskPostponeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var until string

	cmd := &cobra.Command{
		Use:   "postpone ID",
		Short: "Postpone a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			task, err := client.PostponeTask(args[0], until+"T00:00:00Z")
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Task postponed: %s -> %s", task.ID, task.ScheduledDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&until, "until", "", "New date YYYY-MM-DD (required)")
	cmd.MarkFlagRequired("until")

	return cmd
}
