package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/payment-verifier/internal/verify"
)

type VerifyPaymentRequest struct {
	UserHint string   `json:"user_hint,omitempty" jsonschema:"user or account identifier claimed by the payer"`
	Amount   *float64 `json:"amount,omitempty" jsonschema:"claimed payment amount"`
	TxID     string   `json:"tx_id,omitempty" jsonschema:"claimed transaction reference"`
}

type VerifyPaymentResponse struct {
	Decision         string `json:"decision" jsonschema:"VALIDER or REFUSER"`
	Reason           string `json:"reason" jsonschema:"why the decision was taken"`
	MatchedMessageID string `json:"matched_message_id,omitempty" jsonschema:"inbox message that backed the decision"`
	MatchedSnippet   string `json:"matched_snippet,omitempty" jsonschema:"snippet of the matching message"`
}

func NewVerifyPayment(svc verifySvc) *VerifyPayment {
	return &VerifyPayment{
		svc: svc,
	}
}

type VerifyPayment struct {
	svc verifySvc
}

func (t *VerifyPayment) VerifyPayment(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input VerifyPaymentRequest,
) (*mcp.CallToolResult, VerifyPaymentResponse, error) {
	ev := verify.FromClaim(input.UserHint, input.Amount, input.TxID)

	result, err := t.svc.VerifyAgainstInbox(ctx, ev)
	if err != nil {
		return nil, VerifyPaymentResponse{}, fmt.Errorf("svc.VerifyAgainstInbox failed: %w", err)
	}

	return nil, VerifyPaymentResponse{
		Decision:         string(result.Decision),
		Reason:           result.Reason,
		MatchedMessageID: result.MatchedMessageID,
		MatchedSnippet:   result.MatchedSnippet,
	}, nil
}
