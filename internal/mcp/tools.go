package mcp

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"congressd/internal/api"
	"congressd/internal/congress"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_committees",
		mcp.WithDescription("List congressional committees, optionally filtered by chamber and congress number."),
		mcp.WithString("chamber", mcp.Description("Chamber filter: house, senate, or joint.")),
		mcp.WithNumber("congress", mcp.Description("Congress number, e.g. 118. Defaults to the current congress.")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return (default 20, max 250).")),
		mcp.WithNumber("offset", mcp.Description("Pagination offset.")),
	), s.instrument("get_committees", s.handleGetCommittees))

	s.mcpServer.AddTool(mcp.NewTool("get_committee_details",
		mcp.WithDescription("Get details for one committee, including subcommittees and parent."),
		mcp.WithString("chamber", mcp.Required(), mcp.Description("Chamber the committee belongs to: house, senate, or joint.")),
		mcp.WithString("committee_code", mcp.Required(), mcp.Description("Committee system code, e.g. hsag00.")),
	), s.instrument("get_committee_details", s.handleGetCommitteeDetails))

	s.mcpServer.AddTool(mcp.NewTool("get_committee_hearings",
		mcp.WithDescription("List scheduled meetings and hearings for one committee."),
		mcp.WithString("committee_code", mcp.Required(), mcp.Description("Committee system code, e.g. hsag00.")),
		mcp.WithString("chamber", mcp.Description("Chamber filter: house or senate.")),
		mcp.WithNumber("congress", mcp.Description("Congress number. Defaults to the current congress.")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return.")),
	), s.instrument("get_committee_hearings", s.handleGetCommitteeHearings))

	s.mcpServer.AddTool(mcp.NewTool("get_hearings",
		mcp.WithDescription("List congressional hearings for a congress."),
		mcp.WithNumber("congress", mcp.Description("Congress number. Defaults to the current congress.")),
		mcp.WithString("from_date", mcp.Description("Only hearings updated on or after this date (YYYY-MM-DD).")),
		mcp.WithString("to_date", mcp.Description("Only hearings updated on or before this date (YYYY-MM-DD).")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return.")),
		mcp.WithNumber("offset", mcp.Description("Pagination offset.")),
	), s.instrument("get_hearings", s.handleGetHearings))

	s.mcpServer.AddTool(mcp.NewTool("get_bills",
		mcp.WithDescription("List bills, optionally filtered by congress and bill type."),
		mcp.WithNumber("congress", mcp.Description("Congress number. Defaults to the current congress.")),
		mcp.WithString("bill_type", mcp.Description("Bill type: hr, s, hjres, sjres, hconres, sconres, hres, or sres.")),
		mcp.WithString("from_date", mcp.Description("Only bills updated on or after this date (YYYY-MM-DD).")),
		mcp.WithString("to_date", mcp.Description("Only bills updated on or before this date (YYYY-MM-DD).")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return.")),
		mcp.WithNumber("offset", mcp.Description("Pagination offset.")),
	), s.instrument("get_bills", s.handleGetBills))

	s.mcpServer.AddTool(mcp.NewTool("get_bill_details",
		mcp.WithDescription("Get details for one bill: sponsors, latest action, and law status."),
		mcp.WithNumber("congress", mcp.Required(), mcp.Description("Congress number, e.g. 118.")),
		mcp.WithString("bill_type", mcp.Required(), mcp.Description("Bill type, e.g. hr or s.")),
		mcp.WithString("bill_number", mcp.Required(), mcp.Description("Bill number, e.g. 3684.")),
	), s.instrument("get_bill_details", s.handleGetBillDetails))

	s.mcpServer.AddTool(mcp.NewTool("get_members",
		mcp.WithDescription("List members of Congress, by congress number or by state."),
		mcp.WithNumber("congress", mcp.Description("Congress number. Ignored when state is given.")),
		mcp.WithString("state", mcp.Description("Two-letter state code, e.g. CA.")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return.")),
		mcp.WithNumber("offset", mcp.Description("Pagination offset.")),
	), s.instrument("get_members", s.handleGetMembers))

	s.mcpServer.AddTool(mcp.NewTool("get_member_details",
		mcp.WithDescription("Get details for one member of Congress by bioguide identifier."),
		mcp.WithString("bioguide_id", mcp.Required(), mcp.Description("Bioguide identifier, e.g. P000197.")),
	), s.instrument("get_member_details", s.handleGetMemberDetails))

	s.mcpServer.AddTool(mcp.NewTool("search_all",
		mcp.WithDescription("Search bills, hearings, committees, and members with one query, ranked by relevance."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text search query.")),
		mcp.WithArray("types", mcp.Description("Entity types to search: bill, hearing, committee, member. Empty means all.")),
		mcp.WithNumber("congress", mcp.Description("Congress number to search within. Defaults to the current congress.")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return (default 20).")),
	), s.instrument("search_all", s.handleSearchAll))

	s.mcpServer.AddTool(mcp.NewTool("search_by_topic",
		mcp.WithDescription("Search legislative activity for a policy topic such as healthcare or transportation."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Policy topic name.")),
		mcp.WithNumber("congress", mcp.Description("Congress number to search within.")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return.")),
	), s.instrument("search_by_topic", s.handleSearchByTopic))

	s.mcpServer.AddTool(mcp.NewTool("get_congress_info",
		mcp.WithDescription("Report the current congress number and its session years."),
	), s.instrument("get_congress_info", s.handleGetCongressInfo))

	s.mcpServer.AddTool(mcp.NewTool("get_rate_limit_status",
		mcp.WithDescription("Report the local rate limiter's window usage."),
	), s.instrument("get_rate_limit_status", s.handleGetRateLimitStatus))

	s.mcpServer.AddTool(mcp.NewTool("get_health_status",
		mcp.WithDescription("Run the server health checks and report the aggregated status."),
	), s.instrument("get_health_status", s.handleGetHealthStatus))

	s.mcpServer.AddTool(mcp.NewTool("get_system_metrics",
		mcp.WithDescription("Report server uptime and request counters."),
	), s.instrument("get_system_metrics", s.handleGetSystemMetrics))
}

type toolHandler = server.ToolHandlerFunc

// instrument counts every invocation under the tool's name.
func (s *Server) instrument(name string, h toolHandler) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.metrics.ToolCalls.WithLabelValues(name).Inc()
		s.logger.Debug("tool call", "tool", name)
		return h(ctx, request)
	}
}

// congressArg reads the congress number, defaulting to the sitting one.
func congressArg(request mcp.CallToolRequest) int {
	return request.GetInt("congress", congress.CurrentCongress(time.Now()))
}

// dateRangeArg reads the optional from_date/to_date pair.
func dateRangeArg(request mcp.CallToolRequest) (api.DateRange, error) {
	return api.ParseDateRange(request.GetString("from_date", ""), request.GetString("to_date", ""))
}

func (s *Server) handleGetCommittees(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chamber := congress.ParseChamber(request.GetString("chamber", ""))
	cong := congressArg(request)
	limit := request.GetInt("limit", 20)
	offset := request.GetInt("offset", 0)

	list, err := s.data.Committees(ctx, cong, chamber, limit, offset)
	if err != nil && !api.IsStale(err) {
		return s.toolResult("get_committees", err), nil
	}
	return mcp.NewToolResultText(staleNotice(renderCommitteeList(list, cong), err)), nil
}

func (s *Server) handleGetCommitteeDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chamberRaw, err := request.RequireString("chamber")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code, err := request.RequireString("committee_code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detail, err := s.data.CommitteeDetail(ctx, congress.ParseChamber(chamberRaw), strings.ToLower(strings.TrimSpace(code)))
	if err != nil && !api.IsStale(err) {
		return s.toolResult("get_committee_details", err), nil
	}
	return mcp.NewToolResultText(staleNotice(renderCommitteeDetail(detail), err)), nil
}

func (s *Server) handleGetCommitteeHearings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("committee_code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code = strings.ToLower(strings.TrimSpace(code))
	chamber := congress.ParseChamber(request.GetString("chamber", ""))
	cong := congressArg(request)
	limit := request.GetInt("limit", 20)

	// The upstream lists meetings per congress and chamber; the committee
	// filter is applied here.
	list, err := s.data.CommitteeMeetings(ctx, cong, chamber, 250, 0)
	if err != nil && !api.IsStale(err) {
		return s.toolResult("get_committee_hearings", err), nil
	}

	var matched []congress.CommitteeMeeting
	for _, m := range list.Meetings {
		if m.Committee != nil && strings.EqualFold(m.Committee.SystemCode, code) {
			matched = append(matched, m)
			if len(matched) >= limit {
				break
			}
		}
	}
	return mcp.NewToolResultText(staleNotice(renderCommitteeMeetings(code, cong, matched), err)), nil
}

func (s *Server) handleGetHearings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cong := congressArg(request)
	limit := request.GetInt("limit", 20)
	offset := request.GetInt("offset", 0)
	window, err := dateRangeArg(request)
	if err != nil {
		return s.toolResult("get_hearings", err), nil
	}

	list, err := s.data.Hearings(ctx, cong, window, limit, offset)
	if err != nil && !api.IsStale(err) {
		return s.toolResult("get_hearings", err), nil
	}
	return mcp.NewToolResultText(staleNotice(renderHearingList(list, cong), err)), nil
}

func (s *Server) handleGetBills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cong := congressArg(request)
	billType := congress.ParseBillType(request.GetString("bill_type", ""))
	limit := request.GetInt("limit", 20)
	offset := request.GetInt("offset", 0)
	window, err := dateRangeArg(request)
	if err != nil {
		return s.toolResult("get_bills", err), nil
	}

	list, err := s.data.Bills(ctx, cong, billType, window, limit, offset)
	if err != nil && !api.IsStale(err) {
		return s.toolResult("get_bills", err), nil
	}
	return mcp.NewToolResultText(staleNotice(renderBillList(list, cong), err)), nil
}

func (s *Server) handleGetBillDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cong := request.GetInt("congress", 0)
	if cong <= 0 {
		return mcp.NewToolResultError("congress must be a positive number"), nil
	}
	billTypeRaw, err := request.RequireString("bill_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := request.RequireString("bill_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detail, err := s.data.BillDetail(ctx, cong, congress.ParseBillType(billTypeRaw), strings.TrimSpace(number))
	if err != nil && !api.IsStale(err) {
		return s.toolResult("get_bill_details", err), nil
	}
	return mcp.NewToolResultText(staleNotice(renderBillDetail(detail), err)), nil
}

func (s *Server) handleGetMembers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := strings.TrimSpace(request.GetString("state", ""))
	limit := request.GetInt("limit", 20)
	offset := request.GetInt("offset", 0)

	var list *congress.MemberList
	var err error
	if state != "" {
		list, err = s.data.MembersByState(ctx, state, limit, offset)
	} else {
		list, err = s.data.Members(ctx, congressArg(request), limit, offset)
	}
	if err != nil && !api.IsStale(err) {
		return s.toolResult("get_members", err), nil
	}
	return mcp.NewToolResultText(staleNotice(renderMemberList(list, state), err)), nil
}

func (s *Server) handleGetMemberDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bioguideID, err := request.RequireString("bioguide_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detail, err := s.data.MemberDetail(ctx, bioguideID)
	if err != nil && !api.IsStale(err) {
		return s.toolResult("get_member_details", err), nil
	}
	return mcp.NewToolResultText(staleNotice(renderMemberDetail(detail), err)), nil
}

func (s *Server) handleSearchAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cong := congressArg(request)
	limit := request.GetInt("limit", 20)
	types := request.GetStringSlice("types", nil)

	results, err := s.search.SearchAll(ctx, query, cong, limit, types)
	if err != nil {
		return s.toolResult("search_all", err), nil
	}
	return mcp.NewToolResultText(renderSearchResults("Search results for "+strconv.Quote(query), results)), nil
}

func (s *Server) handleSearchByTopic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cong := congressArg(request)
	limit := request.GetInt("limit", 20)

	results, err := s.search.SearchByTopic(ctx, topic, cong, limit)
	if err != nil {
		return s.toolResult("search_by_topic", err), nil
	}
	return mcp.NewToolResultText(renderTopicResults(topic, results)), nil
}

func (s *Server) handleGetCongressInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(renderCongressInfo(time.Now())), nil
}

func (s *Server) handleGetRateLimitStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(renderRateLimitStatus(s.data.RateLimitStatus())), nil
}

func (s *Server) handleGetHealthStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.health.Report(ctx)
	if err != nil {
		return s.toolResult("get_health_status", err), nil
	}
	return mcp.NewToolResultText(renderHealthReport(report)), nil
}

func (s *Server) handleGetSystemMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.metrics.Snapshot()
	if err != nil {
		return s.toolResult("get_system_metrics", err), nil
	}
	return mcp.NewToolResultText(renderMetricsSnapshot(snap)), nil
}
