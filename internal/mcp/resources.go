package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"congressd/internal/api"
	"congressd/internal/congress"
	"congressd/internal/search"
)

// Resource URIs exposed alongside the tools. Resources carry JSON so a
// client can consume them programmatically.
const (
	resourceCurrentCongress  = "congress://current"
	resourceTopics           = "congress://topics"
	resourceRateLimit        = "congress://rate-limit"
	resourceHealth           = "congress://health"
	resourceHouseCommittees  = "congress://committees/house"
	resourceSenateCommittees = "congress://committees/senate"
	resourceRecentHearings   = "congress://hearings/recent"
	resourceRecentBills      = "congress://bills/recent"
	resourceEnactedBills     = "congress://bills/enacted"
	resourceHouseMembers     = "congress://members/house"
	resourceSenateMembers    = "congress://members/senate"
)

// resourcePageSize bounds how much each data-backed resource pulls.
const resourcePageSize = 50

// The member roster spans both chambers (535 seats plus delegates), so the
// chamber resources page through it up to a hard cap.
const (
	memberPageSize = 250
	memberFetchCap = 1000
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		resourceCurrentCongress,
		"Current Congress",
		mcp.WithResourceDescription("The sitting Congress number and its session years."),
		mcp.WithMIMEType("application/json"),
	), s.readCurrentCongress)

	s.mcpServer.AddResource(mcp.NewResource(
		resourceTopics,
		"Search Topics",
		mcp.WithResourceDescription("Policy topics supported by search_by_topic."),
		mcp.WithMIMEType("application/json"),
	), s.readTopics)

	s.mcpServer.AddResource(mcp.NewResource(
		resourceRateLimit,
		"Rate Limit Status",
		mcp.WithResourceDescription("Current rolling-window usage against the API rate limits."),
		mcp.WithMIMEType("application/json"),
	), s.readRateLimit)

	s.mcpServer.AddResource(mcp.NewResource(
		resourceHealth,
		"Server Health",
		mcp.WithResourceDescription("Aggregated health of the server's dependencies."),
		mcp.WithMIMEType("application/json"),
	), s.readHealth)

	s.mcpServer.AddResource(mcp.NewResource(
		resourceHouseCommittees,
		"House Committees",
		mcp.WithResourceDescription("Committees of the House in the current Congress."),
		mcp.WithMIMEType("application/json"),
	), s.readCommittees(resourceHouseCommittees, congress.ChamberHouse))

	s.mcpServer.AddResource(mcp.NewResource(
		resourceSenateCommittees,
		"Senate Committees",
		mcp.WithResourceDescription("Committees of the Senate in the current Congress."),
		mcp.WithMIMEType("application/json"),
	), s.readCommittees(resourceSenateCommittees, congress.ChamberSenate))

	s.mcpServer.AddResource(mcp.NewResource(
		resourceRecentHearings,
		"Recent Hearings",
		mcp.WithResourceDescription("Recently updated hearings in the current Congress."),
		mcp.WithMIMEType("application/json"),
	), s.readRecentHearings)

	s.mcpServer.AddResource(mcp.NewResource(
		resourceRecentBills,
		"Recent Bills",
		mcp.WithResourceDescription("Recently updated bills in the current Congress."),
		mcp.WithMIMEType("application/json"),
	), s.readRecentBills)

	s.mcpServer.AddResource(mcp.NewResource(
		resourceEnactedBills,
		"Enacted Bills",
		mcp.WithResourceDescription("Bills of the current Congress that became law."),
		mcp.WithMIMEType("application/json"),
	), s.readEnactedBills)

	s.mcpServer.AddResource(mcp.NewResource(
		resourceHouseMembers,
		"House Members",
		mcp.WithResourceDescription("Members currently serving in the House."),
		mcp.WithMIMEType("application/json"),
	), s.readMembers(resourceHouseMembers, congress.ChamberHouse))

	s.mcpServer.AddResource(mcp.NewResource(
		resourceSenateMembers,
		"Senate Members",
		mcp.WithResourceDescription("Members currently serving in the Senate."),
		mcp.WithMIMEType("application/json"),
	), s.readMembers(resourceSenateMembers, congress.ChamberSenate))
}

func jsonResource(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) readCurrentCongress(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	number := congress.CurrentCongress(time.Now())
	start, end := congress.CongressYears(number)
	return jsonResource(resourceCurrentCongress, map[string]interface{}{
		"congress":   number,
		"ordinal":    congress.Ordinal(number),
		"start_year": start,
		"end_year":   end,
	})
}

func (s *Server) readTopics(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(resourceTopics, map[string]interface{}{
		"topics": search.Topics(),
	})
}

func (s *Server) readRateLimit(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(resourceRateLimit, s.data.RateLimitStatus())
}

func (s *Server) readHealth(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	report, err := s.health.Report(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(resourceHealth, report)
}

func (s *Server) readCommittees(uri string, chamber congress.Chamber) server.ResourceHandlerFunc {
	return func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.data.Committees(ctx, congress.CurrentCongress(time.Now()), chamber, resourcePageSize, 0)
		if err != nil && !api.IsStale(err) {
			return nil, err
		}
		return jsonResource(uri, list)
	}
}

func (s *Server) readRecentHearings(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.data.Hearings(ctx, congress.CurrentCongress(time.Now()), api.DateRange{}, resourcePageSize, 0)
	if err != nil && !api.IsStale(err) {
		return nil, err
	}
	return jsonResource(resourceRecentHearings, list)
}

func (s *Server) readRecentBills(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.data.Bills(ctx, congress.CurrentCongress(time.Now()), "", api.DateRange{}, resourcePageSize, 0)
	if err != nil && !api.IsStale(err) {
		return nil, err
	}
	return jsonResource(resourceRecentBills, list)
}

func (s *Server) readEnactedBills(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.data.Laws(ctx, congress.CurrentCongress(time.Now()), resourcePageSize, 0)
	if err != nil && !api.IsStale(err) {
		return nil, err
	}
	return jsonResource(resourceEnactedBills, list)
}

// readMembers narrows the member list to one chamber. The upstream list
// endpoint has no chamber filter and one page cannot hold the full House
// roster, so this walks pages and cuts here.
func (s *Server) readMembers(uri string, chamber congress.Chamber) server.ResourceHandlerFunc {
	return func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		var members []congress.Member
		for offset := 0; offset < memberFetchCap; offset += memberPageSize {
			list, err := s.data.Members(ctx, congress.CurrentCongress(time.Now()), memberPageSize, offset)
			if err != nil && !api.IsStale(err) {
				return nil, err
			}
			for _, m := range list.Members {
				if m.CurrentChamber() == chamber {
					members = append(members, m)
				}
			}
			if len(list.Members) < memberPageSize || api.IsStale(err) {
				break
			}
		}
		return jsonResource(uri, map[string]interface{}{
			"chamber": chamber.Display(),
			"members": members,
		})
	}
}
