package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFieldCmd создаёт группу команд для участков.
func NewFieldCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Manage fields",
	}

	cmd.AddCommand(
		newFieldListCmd(clientFn, outputFn),
		newFieldCreateCmd(clientFn, outputFn),
		newFieldShowCmd(clientFn, outputFn),
		newFieldCropCmd(clientFn, outputFn),
	)

	return cmd
}

func newFieldListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			fields, err := client.ListFields()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "CROP", "AREA_SQM"}
			rows := make([][]string, len(fields))
			for i, f := range fields {
				rows[i] = []string{f.ID, f.Name, f.CurrentCrop, fmt.Sprintf("%.0f", f.AreaSqm)}
			}

			out.Print(headers, rows, fields)
			return nil
		},
	}
}

func newFieldCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name, crop, notes string
	var area float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a field",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			field, err := client.CreateField(CreateFieldRequest{
				Name:        name,
				AreaSqm:     area,
				CurrentCrop: crop,
				Notes:       notes,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Field created: %s", field.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Field name (required)")
	cmd.Flags().Float64Var(&area, "area", 0, "Area in square meters")
	cmd.Flags().StringVar(&crop, "crop", "", "Current crop")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newFieldShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show field details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			field, err := client.GetField(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "CROP", "PLANTED", "AREA_SQM", "NOTES"},
				[][]string{{field.ID, field.Name, field.CurrentCrop, field.PlantedAt, fmt.Sprintf("%.0f", field.AreaSqm), field.Notes}},
				field,
			)
			return nil
		},
	}
}

func newFieldCropCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "crop ID CROP",
		Short: "Set the current crop of a field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			field, err := client.SetFieldCrop(args[0], args[1])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Field %s now growing %s", field.Name, field.CurrentCrop))
			return nil
		},
	}
}
