package mcp

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"congressd/internal/api"
	"congressd/internal/config"
	"congressd/internal/congress"
	"congressd/internal/health"
	"congressd/internal/logging"
	"congressd/internal/metrics"
	"congressd/internal/ratelimit"
	"congressd/internal/search"
)

type stubData struct {
	committees *congress.CommitteeList
	detail     *congress.CommitteeDetail
	meetings   *congress.CommitteeMeetingList
	hearings   *congress.HearingList
	bills      *congress.BillList
	bill       *congress.BillDetail
	members    *congress.MemberList
	member     *congress.MemberDetail
	err        error

	// memberPages, when set, serves Members by offset instead of members.
	memberPages map[int]*congress.MemberList

	lastCongress  int
	lastChamber   congress.Chamber
	lastState     string
	memberOffsets []int
}

func (d *stubData) Committees(_ context.Context, cong int, chamber congress.Chamber, _, _ int) (*congress.CommitteeList, error) {
	d.lastCongress, d.lastChamber = cong, chamber
	return d.committees, d.err
}

func (d *stubData) CommitteeDetail(_ context.Context, chamber congress.Chamber, _ string) (*congress.CommitteeDetail, error) {
	d.lastChamber = chamber
	return d.detail, d.err
}

func (d *stubData) CommitteeMeetings(_ context.Context, cong int, chamber congress.Chamber, _, _ int) (*congress.CommitteeMeetingList, error) {
	d.lastCongress, d.lastChamber = cong, chamber
	return d.meetings, d.err
}

func (d *stubData) Hearings(_ context.Context, cong int, _ api.DateRange, _, _ int) (*congress.HearingList, error) {
	d.lastCongress = cong
	return d.hearings, d.err
}

func (d *stubData) Bills(_ context.Context, cong int, _ congress.BillType, _ api.DateRange, _, _ int) (*congress.BillList, error) {
	d.lastCongress = cong
	return d.bills, d.err
}

func (d *stubData) Laws(_ context.Context, cong, _, _ int) (*congress.BillList, error) {
	d.lastCongress = cong
	return d.bills, d.err
}

func (d *stubData) BillDetail(_ context.Context, cong int, _ congress.BillType, _ string) (*congress.BillDetail, error) {
	d.lastCongress = cong
	return d.bill, d.err
}

func (d *stubData) Members(_ context.Context, cong, _, offset int) (*congress.MemberList, error) {
	d.lastCongress = cong
	d.memberOffsets = append(d.memberOffsets, offset)
	if d.memberPages != nil {
		return d.memberPages[offset], d.err
	}
	return d.members, d.err
}

func (d *stubData) MembersByState(_ context.Context, state string, _, _ int) (*congress.MemberList, error) {
	d.lastState = state
	return d.members, d.err
}

func (d *stubData) MemberDetail(_ context.Context, _ string) (*congress.MemberDetail, error) {
	return d.member, d.err
}

func (d *stubData) RateLimitStatus() ratelimit.Status {
	return ratelimit.Status{
		"hour":   {Used: 12, Limit: 4500, Remaining: 4488, RetryAfter: 0},
		"minute": {Used: 2, Limit: 75, Remaining: 73, RetryAfter: 0},
	}
}

type stubSearch struct {
	results   []search.Result
	err       error
	lastTypes []string
}

func (s *stubSearch) SearchAll(_ context.Context, _ string, _, _ int, types []string) ([]search.Result, error) {
	s.lastTypes = types
	return s.results, s.err
}

func (s *stubSearch) SearchByTopic(_ context.Context, _ string, _, _ int) ([]search.Result, error) {
	return s.results, s.err
}

type stubHealth struct {
	report *health.Report
	err    error
}

func (s *stubHealth) Report(_ context.Context) (*health.Report, error) {
	return s.report, s.err
}

func newTestServer(data *stubData, eng *stubSearch, mon *stubHealth) *Server {
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key"
	logger, _ := logging.NewTestLogger()
	return NewServer(&cfg, logger, data, eng, mon, metrics.New())
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestHandleGetCommittees(t *testing.T) {
	data := &stubData{committees: &congress.CommitteeList{
		Committees: []congress.Committee{
			{SystemCode: "hsag00", Name: "Agriculture", Chamber: "House",
				Subcommittees: []congress.CommitteeRef{{SystemCode: "hsag14", Name: "Conservation"}}},
		},
	}}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetCommittees(context.Background(),
		callRequest("get_committees", map[string]interface{}{"chamber": "house", "congress": 118}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "118th Congress")
	assert.Contains(t, text, "hsag00")
	assert.Contains(t, text, "1 subcommittees")
	assert.Equal(t, congress.ChamberHouse, data.lastChamber)
	assert.Equal(t, 118, data.lastCongress)
}

func TestHandleGetCommitteesDefaultsToCurrentCongress(t *testing.T) {
	data := &stubData{committees: &congress.CommitteeList{}}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	_, err := srv.handleGetCommittees(context.Background(), callRequest("get_committees", nil))
	require.NoError(t, err)
	assert.Equal(t, congress.CurrentCongress(time.Now()), data.lastCongress)
}

func TestHandleGetCommitteesUpstreamError(t *testing.T) {
	data := &stubData{err: &api.Error{Kind: api.KindUpstreamUnavailable, Endpoint: "/committee"}}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetCommittees(context.Background(), callRequest("get_committees", nil))
	require.NoError(t, err, "tool failures surface as error results, not Go errors")
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "currently unavailable")
}

func TestStaleSnapshotRendersWithNotice(t *testing.T) {
	fetched := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	data := &stubData{
		committees: &congress.CommitteeList{
			Committees: []congress.Committee{{SystemCode: "hsag00", Name: "Agriculture", Chamber: "House"}},
		},
		err: &api.StaleError{Endpoint: "/committee", FetchedAt: fetched,
			Err: &api.Error{Kind: api.KindUpstreamUnavailable, Endpoint: "/committee"}},
	}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetCommittees(context.Background(), callRequest("get_committees", nil))
	require.NoError(t, err)
	assert.False(t, res.IsError, "a stale snapshot is degraded, not failed")
	text := resultText(t, res)
	assert.Contains(t, text, "Agriculture")
	assert.Contains(t, text, "cached snapshot from 2026-08-29T10:00:00Z")

	contents, rerr := srv.readCommittees(resourceHouseCommittees, congress.ChamberHouse)(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, rerr, "resources keep serving through an outage")
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, "hsag00")
}

func TestHandleGetCommitteeDetailsRequiresArgs(t *testing.T) {
	srv := newTestServer(&stubData{}, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetCommitteeDetails(context.Background(),
		callRequest("get_committee_details", map[string]interface{}{"chamber": "house"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleGetCommitteeHearingsFiltersByCommittee(t *testing.T) {
	data := &stubData{meetings: &congress.CommitteeMeetingList{
		Meetings: []congress.CommitteeMeeting{
			{EventID: "1", Title: "Farm Bill Markup", Date: "2026-03-10",
				Committee: &congress.CommitteeRef{SystemCode: "hsag00"}},
			{EventID: "2", Title: "Unrelated Session",
				Committee: &congress.CommitteeRef{SystemCode: "hsju00"}},
			{EventID: "3", Title: "No Committee Attached"},
		},
	}}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetCommitteeHearings(context.Background(),
		callRequest("get_committee_hearings", map[string]interface{}{
			"committee_code": "HSAG00", "congress": 118,
		}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "Farm Bill Markup")
	assert.NotContains(t, text, "Unrelated Session")
	assert.NotContains(t, text, "No Committee Attached")
}

func TestHandleGetBillDetails(t *testing.T) {
	data := &stubData{bill: &congress.BillDetail{Bill: &congress.Bill{
		Congress: 118, Type: "hr", Number: "3684",
		Title:          "Infrastructure Investment and Jobs Act",
		Sponsors:       []congress.BillSponsor{{FullName: "Rep. DeFazio, Peter A."}},
		LatestAction:   &congress.Action{ActionDate: "2021-11-15", Text: "Became Public Law No: 117-58."},
		Laws:           []congress.BillLaw{{Number: "117-58", Type: "Public Law"}},
		IntroducedDate: "2021-06-04",
	}}}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetBillDetails(context.Background(),
		callRequest("get_bill_details", map[string]interface{}{
			"congress": 118, "bill_type": "hr", "bill_number": "3684",
		}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "HR 3684")
	assert.Contains(t, text, "enacted into law")
	assert.Contains(t, text, "DeFazio")
}

func TestHandleGetBillDetailsRejectsBadCongress(t *testing.T) {
	srv := newTestServer(&stubData{}, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetBillDetails(context.Background(),
		callRequest("get_bill_details", map[string]interface{}{
			"bill_type": "hr", "bill_number": "1",
		}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleGetMembersByState(t *testing.T) {
	data := &stubData{members: &congress.MemberList{
		Members: []congress.Member{{BioguideID: "P000197", Name: "Nancy Pelosi", Party: "D", State: "California"}},
	}}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetMembers(context.Background(),
		callRequest("get_members", map[string]interface{}{"state": "CA"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "CA", data.lastState)
	assert.Contains(t, resultText(t, res), "Nancy Pelosi")
}

func TestHandleSearchAll(t *testing.T) {
	eng := &stubSearch{results: []search.Result{
		{Type: search.TypeBill, Identifier: "HR 3684", Title: "Infrastructure Investment and Jobs Act", Score: 2.1},
		{Type: search.TypeCommittee, Identifier: "hspw00", Title: "Transportation and Infrastructure", Score: 2.0},
	}}
	srv := newTestServer(&stubData{}, eng, &stubHealth{})

	res, err := srv.handleSearchAll(context.Background(),
		callRequest("search_all", map[string]interface{}{
			"query": "infrastructure",
			"types": []interface{}{"bill", "hearing"},
		}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "2 matches")
	assert.Contains(t, text, "HR 3684")
	assert.Contains(t, text, "hspw00")
	assert.Equal(t, []string{"bill", "hearing"}, eng.lastTypes)
}

func TestNotFoundIsSoftResult(t *testing.T) {
	data := &stubData{err: &api.Error{Kind: api.KindNotFound, Endpoint: "/bill/118/hr/99999"}}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetBillDetails(context.Background(),
		callRequest("get_bill_details", map[string]interface{}{
			"congress": 118, "bill_type": "hr", "bill_number": "99999",
		}))
	require.NoError(t, err)
	assert.False(t, res.IsError, "a missing entity is a result, not a failure")
	assert.Contains(t, resultText(t, res), "No matching record")
}

func TestHandleSearchAllRequiresQuery(t *testing.T) {
	srv := newTestServer(&stubData{}, &stubSearch{}, &stubHealth{})

	res, err := srv.handleSearchAll(context.Background(), callRequest("search_all", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleSearchByTopicUnknownTopic(t *testing.T) {
	srv := newTestServer(&stubData{}, &stubSearch{results: []search.Result{}}, &stubHealth{})

	res, err := srv.handleSearchByTopic(context.Background(),
		callRequest("search_by_topic", map[string]interface{}{"topic": "astrology"}))
	require.NoError(t, err)
	require.False(t, res.IsError, "unknown topics are empty results, not errors")
	assert.Contains(t, resultText(t, res), "Known topics")
}

func TestHandleGetCongressInfo(t *testing.T) {
	srv := newTestServer(&stubData{}, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetCongressInfo(context.Background(), callRequest("get_congress_info", nil))
	require.NoError(t, err)

	number := congress.CurrentCongress(time.Now())
	assert.Contains(t, resultText(t, res), congress.Ordinal(number))
}

func TestHandleGetRateLimitStatus(t *testing.T) {
	srv := newTestServer(&stubData{}, &stubSearch{}, &stubHealth{})

	res, err := srv.handleGetRateLimitStatus(context.Background(), callRequest("get_rate_limit_status", nil))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "hour window: 12/4500")
	assert.Contains(t, text, "minute window: 2/75")
}

func TestHandleGetHealthStatus(t *testing.T) {
	mon := &stubHealth{report: &health.Report{
		Status: health.StatusDegraded,
		Checks: []health.Check{
			{Name: "system", Status: health.StatusHealthy, Detail: "memory usage 41.0%"},
			{Name: "api_connectivity", Status: health.StatusDegraded, Detail: "responded in 6s"},
		},
		CheckedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}}
	srv := newTestServer(&stubData{}, &stubSearch{}, mon)

	res, err := srv.handleGetHealthStatus(context.Background(), callRequest("get_health_status", nil))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "Overall status: degraded")
	assert.Contains(t, text, "api_connectivity: degraded")
}

func TestHandleGetSystemMetrics(t *testing.T) {
	srv := newTestServer(&stubData{}, &stubSearch{}, &stubHealth{})
	srv.metrics.CacheHits.Inc()

	res, err := srv.handleGetSystemMetrics(context.Background(), callRequest("get_system_metrics", nil))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "Uptime:")
	assert.Contains(t, text, "congressd_cache_hits_total: 1")
}

func TestInstrumentCountsToolCalls(t *testing.T) {
	data := &stubData{committees: &congress.CommitteeList{}}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	h := srv.instrument("get_committees", srv.handleGetCommittees)
	_, err := h(context.Background(), callRequest("get_committees", nil))
	require.NoError(t, err)
	_, err = h(context.Background(), callRequest("get_committees", nil))
	require.NoError(t, err)

	snap, err := srv.metrics.Snapshot()
	require.NoError(t, err)
	found := false
	for _, c := range snap.Counters {
		if c.Name == "congressd_tool_calls_total" && c.Labels["tool"] == "get_committees" {
			found = true
			assert.Equal(t, 2.0, c.Value)
		}
	}
	assert.True(t, found)
}

func TestToolErrorMessagesNeverLeakInternals(t *testing.T) {
	srv := newTestServer(&stubData{}, &stubSearch{}, &stubHealth{})

	tests := []struct {
		kind   api.Kind
		expect string
	}{
		{api.KindRateLimited, "Rate limit"},
		{api.KindUpstreamUnavailable, "unavailable"},
		{api.KindUpstreamRejected, "rejected"},
		{api.KindParse, "unexpected format"},
		{api.KindNotFound, "No matching record"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			msg := srv.toolError("x", &api.Error{Kind: tt.kind, Err: fmt.Errorf("wrapped cause")})
			assert.Contains(t, msg, tt.expect)
		})
	}
}

func TestToolErrorRateLimitIncludesRetryAfter(t *testing.T) {
	srv := newTestServer(&stubData{}, &stubSearch{}, &stubHealth{})

	msg := srv.toolError("x", &api.Error{Kind: api.KindRateLimited, RetryAfter: 42 * time.Second})
	assert.Contains(t, msg, "42s")
}

func TestResourcesRenderJSON(t *testing.T) {
	srv := newTestServer(&stubData{}, &stubSearch{}, &stubHealth{report: &health.Report{Status: health.StatusHealthy}})
	ctx := context.Background()

	contents, err := srv.readCurrentCongress(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, resourceCurrentCongress, text.URI)
	assert.Contains(t, text.Text, `"congress"`)

	contents, err = srv.readTopics(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	text = contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, "healthcare")

	contents, err = srv.readRateLimit(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	text = contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, `"limit"`)

	contents, err = srv.readHealth(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	text = contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, "healthy")
}

func TestDataBackedResources(t *testing.T) {
	data := &stubData{
		committees: &congress.CommitteeList{
			Committees: []congress.Committee{{SystemCode: "hsag00", Name: "Agriculture", Chamber: "House"}},
		},
		bills: &congress.BillList{
			Bills: []congress.Bill{{Congress: 118, Type: "hr", Number: "3684",
				Title: "Infrastructure Investment and Jobs Act",
				Laws:  []congress.BillLaw{{Number: "117-58", Type: "Public Law"}}}},
		},
	}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})
	ctx := context.Background()

	contents, err := srv.readCommittees(resourceHouseCommittees, congress.ChamberHouse)(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	text := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, resourceHouseCommittees, text.URI)
	assert.Contains(t, text.Text, "hsag00")
	assert.Equal(t, congress.ChamberHouse, data.lastChamber)

	contents, err = srv.readEnactedBills(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	text = contents[0].(mcp.TextResourceContents)
	assert.Equal(t, resourceEnactedBills, text.URI)
	assert.Contains(t, text.Text, "117-58")
}

func TestMemberResourceFiltersByChamber(t *testing.T) {
	data := &stubData{members: &congress.MemberList{
		Members: []congress.Member{
			{BioguideID: "P000197", Name: "Nancy Pelosi",
				Terms: &congress.MemberTerms{Items: []congress.MemberTerm{{Congress: 118, Chamber: "House of Representatives"}}}},
			{BioguideID: "S000148", Name: "Charles E. Schumer",
				Terms: &congress.MemberTerms{Items: []congress.MemberTerm{{Congress: 118, Chamber: "Senate"}}}},
		},
	}}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	contents, err := srv.readMembers(resourceSenateMembers, congress.ChamberSenate)(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	text := contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, "Schumer")
	assert.NotContains(t, text.Text, "Pelosi")
}

func TestMemberResourcePagesThroughFullRoster(t *testing.T) {
	houseTerms := &congress.MemberTerms{Items: []congress.MemberTerm{{Congress: 119, Chamber: "House of Representatives"}}}
	first := &congress.MemberList{}
	for i := 0; i < 250; i++ {
		first.Members = append(first.Members, congress.Member{
			BioguideID: fmt.Sprintf("H%06d", i),
			Name:       fmt.Sprintf("Representative %d", i),
			Terms:      houseTerms,
		})
	}
	second := &congress.MemberList{Members: []congress.Member{
		{BioguideID: "O000172", Name: "Alexandria Ocasio-Cortez", Terms: houseTerms},
		{BioguideID: "S000148", Name: "Charles E. Schumer",
			Terms: &congress.MemberTerms{Items: []congress.MemberTerm{{Congress: 119, Chamber: "Senate"}}}},
	}}
	data := &stubData{memberPages: map[int]*congress.MemberList{0: first, 250: second}}
	srv := newTestServer(data, &stubSearch{}, &stubHealth{})

	contents, err := srv.readMembers(resourceHouseMembers, congress.ChamberHouse)(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	text := contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, "Representative 249", "full first page survives the cut")
	assert.Contains(t, text.Text, "Ocasio-Cortez", "second page is fetched for the overflow")
	assert.NotContains(t, text.Text, "Schumer")
	assert.Equal(t, []int{0, 250}, data.memberOffsets, "short second page ends the walk")
}
