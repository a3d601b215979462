// Package tool exposes payment verification over the Model Context
// Protocol.
package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/payment-verifier/internal/verify"
)

type verifySvc interface {
	VerifyAgainstInbox(ctx context.Context, ev verify.Evidence) (verify.Result, error)
}

// NewServer creates an MCP server with the verification tool.
func NewServer(svc verifySvc) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "payment-verifier", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "verify_payment",
		Description: "Verify a claimed payment against recent inbox evidence",
	}, NewVerifyPayment(svc).VerifyPayment)

	return server
}
