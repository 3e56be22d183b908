package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewMessageCmd создаёт группу команд для сообщений.
func NewMessageCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send messages to the assistant",
	}

	cmd.AddCommand(
		newMessageSendCmd(clientFn, outputFn),
		newMessageShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newMessageSendCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var sender string
	var wait bool

	cmd := &cobra.Command{
		Use:   "send TEXT...",
		Short: "Send a message and optionally wait for the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			msg, err := client.SubmitMessage(sender, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Message accepted: %s", msg.ID))

			if !wait {
				out.Print(
					[]string{"ID", "STATUS"},
					[][]string{{msg.ID, msg.Status}},
					msg,
				)
				return nil
			}

			// Обработка асинхронная: ждём финального статуса
			for i := 0; i < 30; i++ {
				time.Sleep(time.Second)

				msg, err = client.GetMessage(msg.ID)
				if err != nil {
					return err
				}
				if msg.Status == "DONE" || msg.Status == "FAILED" {
					break
				}
			}

			out.Print(
				[]string{"ID", "STATUS", "REPLY"},
				[][]string{{msg.ID, msg.Status, msg.ReplyText}},
				msg,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "cli", "Sender ID")
	cmd.Flags().BoolVar(&wait, "wait", true, "Wait for the reply")

	return cmd
}

func newMessageShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show message processing status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			msg, err := client.GetMessage(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "SENDER", "STATUS", "REPLY", "ERROR"},
				[][]string{{msg.ID, msg.SenderID, msg.Status, msg.ReplyText, msg.Error}},
				msg,
			)
			return nil
		},
	}
}
