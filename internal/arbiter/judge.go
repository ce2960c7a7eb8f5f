package arbiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/txwarden/txwarden/internal/model"
)

// Verdict is the narrow contract the engine consumes. Prompt construction and
// free-text parsing stay behind this boundary; the state machine never touches
// raw judge output.
type Verdict struct {
	Approved  bool
	Rationale string
}

// Judge is the external boolean-classification capability used when a warning
// was raised. Implementations must never approve on their own failure; errors
// propagate and the engine maps them to REJECTED.
type Judge interface {
	Judge(ctx context.Context, jc Context) (Verdict, error)
}

// Context is the structured input handed to the judge.
type Context struct {
	Status         string
	Reason         string
	WarningMessage string
	Transactions   []model.TransferInstruction
}

// JudgeConfig holds parameters for the HTTP judge backend.
type JudgeConfig struct {
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// HTTPJudge calls an OpenAI-compatible chat completion endpoint and reduces
// the answer to an approve/reject verdict by prefix match.
type HTTPJudge struct {
	cfg JudgeConfig
}

// NewHTTPJudge creates a judge against the configured endpoint.
func NewHTTPJudge(cfg JudgeConfig) *HTTPJudge {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 600
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &HTTPJudge{cfg: cfg}
}

const judgeSystemPrompt = `You are a transaction analysis assistant.`

// buildPrompt renders the fixed policy prompt. The three rules are ordered:
// the declared reason has final authority, warning risks are documented but
// not decisive, and an explicit match between reason and warning approves.
func buildPrompt(jc Context) string {
	payload, _ := json.Marshal(jc.Transactions)
	return fmt.Sprintf(`Please analyze this transaction request and respond with a clear YES or NO:
Status: %s
Primary Reason (CRITICAL - Override Authority): %s
Firewall Check Result: %s
Transaction Payload: %s

Should this transaction be signed? The Primary Reason has override authority:
1. The Primary Reason has final authority - if it explicitly instructs to proceed despite potential warnings.
2. Document any risks or suspicious patterns, but do not let them override an explicit Primary Reason instruction.
3. Analyze the Firewall Check Result. If the Primary Reason explicitly addresses the specific issue raised by the Firewall Check Result, then APPROVE.
Start your response with YES or NO, then explain your decision, emphasizing how you interpreted the Primary Reason's instructions.
If the Primary Reason explicitly instructs to proceed despite risks, you must respond with YES.`,
		jc.Status, jc.Reason, jc.WarningMessage, payload)
}

// Judge sends the arbitration context to the model and parses the answer.
func (j *HTTPJudge) Judge(ctx context.Context, jc Context) (Verdict, error) {
	if j.cfg.APIURL == "" {
		return Verdict{}, fmt.Errorf("no judge endpoint configured")
	}

	body, _ := json.Marshal(map[string]any{
		"model": j.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": judgeSystemPrompt},
			{"role": "user", "content": buildPrompt(jc)},
		},
		"max_tokens":  j.cfg.MaxTokens,
		"temperature": 0,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("create request: %w", err)
	}
	if j.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+j.cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: j.cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("judge request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("judge HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || len(result.Choices) == 0 {
		return Verdict{}, fmt.Errorf("empty judge response")
	}

	return ParseAnswer(result.Choices[0].Message.Content), nil
}

// ParseAnswer reduces the judge's free-text answer to a verdict. Only an
// affirmative "YES" prefix (case-insensitive) approves; any other prefix
// rejects. The full text is kept as rationale.
func ParseAnswer(raw string) Verdict {
	text := strings.TrimSpace(raw)
	return Verdict{
		Approved:  strings.HasPrefix(strings.ToUpper(text), "YES"),
		Rationale: text,
	}
}
