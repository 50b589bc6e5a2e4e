package mcpServer

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
)

type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to look up in the indexed documents"`
}

type SearchOutput struct {
	Context string   `json:"context"`
	Sources []string `json:"sources"`
	Found   bool     `json:"found"`
}

type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
}

type AskOutput struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	NoContext bool     `json:"no_context"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Retrieve matching passages and their source files from the document index",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_documents",
		Description: "Answer a question using passages retrieved from the document index",
	}, s.handleAsk)
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, SearchOutput{}, errors.New("query is required")
	}

	rc, err := s.service.Search(ctx, query)
	if err != nil {
		return nil, SearchOutput{}, s.toolError(ctx, "search_documents", err)
	}

	sources := rc.Sources
	if sources == nil {
		sources = []string{}
	}
	return nil, SearchOutput{Context: rc.Text, Sources: sources, Found: !rc.Empty}, nil
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	answer, err := s.service.Answer(ctx, question)
	if err != nil {
		return nil, AskOutput{}, s.toolError(ctx, "ask_documents", err)
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	return nil, AskOutput{Answer: answer.Answer, Sources: sources, NoContext: answer.NoContext}, nil
}

// toolError logs the full error and hands the client the same safe
// message the HTTP API would.
func (s *Server) toolError(ctx context.Context, tool string, err error) error {
	s.logger.WithTrace(ctx).Error("Tool call failed", "tool", tool, "error", err)
	_, message := errs.HTTPStatus(err)
	return errors.New(message)
}
