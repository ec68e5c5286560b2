package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"congressd/internal/api"
	"congressd/internal/config"
	"congressd/internal/congress"
	"congressd/internal/health"
	"congressd/internal/logging"
	"congressd/internal/metrics"
	"congressd/internal/ratelimit"
	"congressd/internal/search"
)

// ServerName and ServerVersion identify this server to MCP clients.
const (
	ServerName    = "congressd"
	ServerVersion = "1.0.0"
)

// dataClient is the slice of the API client the tool handlers need.
type dataClient interface {
	Committees(ctx context.Context, cong int, chamber congress.Chamber, limit, offset int) (*congress.CommitteeList, error)
	CommitteeDetail(ctx context.Context, chamber congress.Chamber, systemCode string) (*congress.CommitteeDetail, error)
	CommitteeMeetings(ctx context.Context, cong int, chamber congress.Chamber, limit, offset int) (*congress.CommitteeMeetingList, error)
	Hearings(ctx context.Context, cong int, window api.DateRange, limit, offset int) (*congress.HearingList, error)
	Bills(ctx context.Context, cong int, billType congress.BillType, window api.DateRange, limit, offset int) (*congress.BillList, error)
	Laws(ctx context.Context, cong, limit, offset int) (*congress.BillList, error)
	BillDetail(ctx context.Context, cong int, billType congress.BillType, number string) (*congress.BillDetail, error)
	Members(ctx context.Context, cong, limit, offset int) (*congress.MemberList, error)
	MembersByState(ctx context.Context, state string, limit, offset int) (*congress.MemberList, error)
	MemberDetail(ctx context.Context, bioguideID string) (*congress.MemberDetail, error)
	RateLimitStatus() ratelimit.Status
}

// searcher ranks entities against queries and topics.
type searcher interface {
	SearchAll(ctx context.Context, query string, cong, limit int, types []string) ([]search.Result, error)
	SearchByTopic(ctx context.Context, topic string, cong, limit int) ([]search.Result, error)
}

// healthReporter produces the aggregated health report.
type healthReporter interface {
	Report(ctx context.Context) (*health.Report, error)
}

// Server represents an MCP server instance using mcp-go.
type Server struct {
	config    *config.Config
	logger    *logging.AppLogger
	data      dataClient
	search    searcher
	health    healthReporter
	metrics   *metrics.Metrics
	mcpServer *server.MCPServer
}

// NewServer wires a server over already-constructed collaborators. The
// shared cache and rate limiter live inside the data client.
func NewServer(cfg *config.Config, logger *logging.AppLogger, data dataClient, eng searcher, monitor healthReporter, m *metrics.Metrics) *Server {
	return &Server{
		config:  cfg,
		logger:  logger,
		data:    data,
		search:  eng,
		health:  monitor,
		metrics: m,
	}
}

// Start registers tools and resources and serves over stdio until the
// client disconnects.
func (s *Server) Start() error {
	s.logger.Info("Initializing MCP server", "name", ServerName, "version", ServerVersion)

	s.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithRecovery(),
	)

	s.registerTools()
	s.registerResources()

	s.logger.Info("MCP server created, starting stdio communication")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the MCP server.
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	// The mcp-go server handles cleanup when the stdio stream closes.
	return nil
}

// toolResult maps a failure onto the MCP result. Missing entities and bad
// arguments are resolved locally as plain "no result" text; everything
// else is an error result.
func (s *Server) toolResult(tool string, err error) *mcp.CallToolResult {
	msg := s.toolError(tool, err)
	switch api.KindOf(err) {
	case api.KindNotFound, api.KindInvalidArgument:
		return mcp.NewToolResultText(msg)
	default:
		return mcp.NewToolResultError(msg)
	}
}

// toolError converts a client failure into a user-facing message. The raw
// error is logged with request context; the credential is never part of
// either.
func (s *Server) toolError(tool string, err error) string {
	s.logger.Error("tool call failed", "tool", tool, "kind", api.KindOf(err).String(), "error", err)

	switch api.KindOf(err) {
	case api.KindRateLimited:
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			return fmt.Sprintf("Rate limit reached. Retry in %s.", apiErr.RetryAfter.Round(time.Second))
		}
		return "Rate limit reached. Please retry shortly."
	case api.KindUpstreamUnavailable:
		return "The Congress.gov API is currently unavailable. Please try again later."
	case api.KindUpstreamRejected:
		return "The Congress.gov API rejected the request. Check the server's API key and parameters."
	case api.KindParse:
		return "The Congress.gov API returned data in an unexpected format."
	case api.KindNotFound:
		return "No matching record was found."
	case api.KindInvalidArgument:
		return "Invalid arguments: " + err.Error()
	default:
		return "Request failed: " + err.Error()
	}
}
