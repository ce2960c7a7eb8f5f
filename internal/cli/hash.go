package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/txwarden/txwarden/internal/correlate"
	"github.com/txwarden/txwarden/internal/model"
)

var hashFile string

func init() {
	rootCmd.AddCommand(hashCmd)
	hashCmd.Flags().StringVarP(&hashFile, "file", "f", "-", "Transaction request JSON file, or - for stdin")
}

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Compute the correlation id of a transaction request",
	Long:  "Prints the deterministic content hash a request would be assigned at\ningress, without submitting it. Useful for matching rater warnings and\naudit entries to a request.",
	RunE:  runHash,
}

func runHash(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if hashFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(hashFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}

	var req model.TransactionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}

	id, err := correlate.Correlate(req)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}
