// Package mcpServer exposes document search and question answering as MCP
// tools over streamable HTTP, mounted next to the REST routes.
package mcpServer

import (
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/surajvast1/Doc-Manager/internal/rag"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

const Version = "1.0.0"

var ErrMissingService = errors.New("mcp: rag service is required")

type Server struct {
	service rag.Service
	server  *mcp.Server
	logger  *logger_i.Logger
}

func NewServer(service rag.Service) (*Server, error) {
	if service == nil {
		return nil, ErrMissingService
	}

	s := &Server{
		service: service,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "doc-manager",
			Version: Version,
		}, nil),
		logger: logger_i.NewLogger("MCP"),
	}
	s.registerTools()
	return s, nil
}

// Handler serves the MCP streamable HTTP transport. Every request shares
// the one server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
