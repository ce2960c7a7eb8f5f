package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/txwarden/txwarden/internal/client"
	"github.com/txwarden/txwarden/internal/model"
)

var (
	submitServer string
	submitFile   string
)

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVar(&submitServer, "server", "http://localhost:8000", "Admission server base URL")
	submitCmd.Flags().StringVarP(&submitFile, "file", "f", "-", "Transaction request JSON file, or - for stdin")
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a transaction for admission",
	Long:  "Reads a transaction request as JSON and submits it to a running\nadmission server. Blocks until the terminal decision and prints the\nresponse envelope. Exits 1 if the transaction was rejected.",
	RunE:  runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if submitFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(submitFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}

	var req model.TransactionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}

	resp, err := client.New(submitServer).Submit(cmd.Context(), req)
	if err != nil {
		return err
	}

	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(out))

	if strings.Contains(resp.Message, string(model.Rejected)) {
		os.Exit(1)
	}
	return nil
}
