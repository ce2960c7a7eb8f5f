package hub

import "github.com/txwarden/txwarden/internal/model"

// Message types on the rater wire. Anything else is a decode error and the
// message is discarded; the connection is only dropped on transport failure.
const (
	TypeTransaction = "transaction"
	TypeWarning     = "warning"
)

// TransactionMessage is the server→rater broadcast frame.
type TransactionMessage struct {
	Type string             `json:"type"`
	Data TransactionPayload `json:"data"`
}

// TransactionPayload carries the transfers plus the correlation id raters
// must echo back when warning.
type TransactionPayload struct {
	Transactions []model.TransferInstruction `json:"transactions"`
	Hash         string                      `json:"hash"`
}

// WarningMessage is the rater→server advisory frame.
type WarningMessage struct {
	Type            string `json:"type"`
	Message         string `json:"message"`
	TransactionHash string `json:"transaction_hash"`
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
}
