package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kvfabric/internal/wireclient"
)

var clientAddr string

var clientCmd = &cobra.Command{
	Use:   "client [command...]",
	Short: "Send one request frame to a running kvfabric server and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClient,
}

func init() {
	clientCmd.Flags().StringVar(&clientAddr, "addr", "127.0.0.1:12345", "server address to connect to")
}

func runClient(cmd *cobra.Command, args []string) error {
	command := strings.Join(args, " ")
	reply, err := wireclient.Send(clientAddr, [][]byte{[]byte(command)})
	if err != nil {
		return fmt.Errorf("kvfabric client: %w", err)
	}
	for _, seg := range reply {
		fmt.Println(string(seg))
	}
	return nil
}
