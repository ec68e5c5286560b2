package mcp

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"congressd/internal/api"
	"congressd/internal/congress"
	"congressd/internal/health"
	"congressd/internal/metrics"
	"congressd/internal/ratelimit"
	"congressd/internal/search"
)

// The renderers turn typed results into the plain-text blocks the MCP
// client displays. Keep them deterministic: same input, same text.

// staleNotice appends a footer when the payload came from an expired cache
// snapshot served during an upstream outage.
func staleNotice(text string, err error) string {
	var stale *api.StaleError
	if errors.As(err, &stale) {
		return text + "\n\nNote: Congress.gov is currently unavailable; showing a cached snapshot from " +
			stale.FetchedAt.Format(time.RFC3339) + "."
	}
	return text
}

func renderCommitteeList(list *congress.CommitteeList, cong int) string {
	if len(list.Committees) == 0 {
		return fmt.Sprintf("No committees found for the %s Congress.", congress.Ordinal(cong))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Committees (%s Congress):\n", congress.Ordinal(cong))
	for i := range list.Committees {
		c := &list.Committees[i]
		fmt.Fprintf(&b, "- %s [%s]", c.Label(), c.SystemCode)
		if len(c.Subcommittees) > 0 {
			fmt.Fprintf(&b, " (%d subcommittees)", len(c.Subcommittees))
		}
		b.WriteString("\n")
	}
	appendPagination(&b, list.Pagination, len(list.Committees))
	return strings.TrimRight(b.String(), "\n")
}

func renderCommitteeDetail(detail *congress.CommitteeDetail) string {
	c := detail.Committee
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", c.Name)
	fmt.Fprintf(&b, "System code: %s\n", c.SystemCode)
	fmt.Fprintf(&b, "Chamber: %s\n", c.DisplayChamber())
	if c.TypeCode != "" {
		fmt.Fprintf(&b, "Type: %s\n", c.TypeCode)
	}
	if c.Parent != nil {
		fmt.Fprintf(&b, "Parent committee: %s [%s]\n", c.Parent.Name, c.Parent.SystemCode)
	}
	if len(c.Subcommittees) > 0 {
		b.WriteString("Subcommittees:\n")
		for _, sub := range c.Subcommittees {
			fmt.Fprintf(&b, "- %s [%s]\n", sub.Name, sub.SystemCode)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCommitteeMeetings(code string, cong int, meetings []congress.CommitteeMeeting) string {
	if len(meetings) == 0 {
		return fmt.Sprintf("No scheduled meetings found for committee %s in the %s Congress.", code, congress.Ordinal(cong))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Meetings for committee %s (%s Congress):\n", code, congress.Ordinal(cong))
	for i := range meetings {
		m := &meetings[i]
		title := m.Title
		if title == "" {
			title = "Untitled meeting"
		}
		fmt.Fprintf(&b, "- %s", title)
		if m.Date != "" {
			fmt.Fprintf(&b, " (%s)", m.Date)
		}
		if m.Type != "" {
			fmt.Fprintf(&b, " [%s]", m.Type)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderHearingList(list *congress.HearingList, cong int) string {
	if len(list.Hearings) == 0 {
		return fmt.Sprintf("No hearings found for the %s Congress.", congress.Ordinal(cong))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hearings (%s Congress):\n", congress.Ordinal(cong))
	for i := range list.Hearings {
		h := &list.Hearings[i]
		fmt.Fprintf(&b, "- %s", h.DisplayTitle())
		if h.Committee != nil {
			fmt.Fprintf(&b, " | %s", h.CommitteeName())
		}
		if h.Date != "" {
			fmt.Fprintf(&b, " | %s", h.Date)
		}
		fmt.Fprintf(&b, " [jacket %s]\n", h.JacketNumber)
	}
	appendPagination(&b, list.Pagination, len(list.Hearings))
	return strings.TrimRight(b.String(), "\n")
}

func renderBillList(list *congress.BillList, cong int) string {
	if len(list.Bills) == 0 {
		return fmt.Sprintf("No bills found for the %s Congress.", congress.Ordinal(cong))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Bills (%s Congress):\n", congress.Ordinal(cong))
	for i := range list.Bills {
		bill := &list.Bills[i]
		fmt.Fprintf(&b, "- %s: %s\n", bill.Identifier(), bill.Title)
		fmt.Fprintf(&b, "  Latest action: %s (%s)\n", bill.LatestActionText(), bill.LatestActionDate())
	}
	appendPagination(&b, list.Pagination, len(list.Bills))
	return strings.TrimRight(b.String(), "\n")
}

func renderBillDetail(detail *congress.BillDetail) string {
	bill := detail.Bill
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", bill.Label())
	fmt.Fprintf(&b, "Origin chamber: %s\n", bill.DisplayChamber())
	fmt.Fprintf(&b, "Sponsor: %s\n", bill.SponsorName())
	if bill.IntroducedDate != "" {
		fmt.Fprintf(&b, "Introduced: %s\n", bill.IntroducedDate)
	}
	fmt.Fprintf(&b, "Latest action: %s (%s)\n", bill.LatestActionText(), bill.LatestActionDate())
	if bill.IsEnacted() {
		b.WriteString("Status: enacted into law\n")
	}
	if len(bill.Actions) > 0 {
		b.WriteString("Recent actions:\n")
		shown := bill.Actions
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, a := range shown {
			fmt.Fprintf(&b, "- %s: %s\n", a.ActionDate, a.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderMemberList(list *congress.MemberList, state string) string {
	if len(list.Members) == 0 {
		if state != "" {
			return fmt.Sprintf("No members found for state %s.", strings.ToUpper(state))
		}
		return "No members found."
	}
	var b strings.Builder
	if state != "" {
		fmt.Fprintf(&b, "Members for %s:\n", strings.ToUpper(state))
	} else {
		b.WriteString("Members of Congress:\n")
	}
	for i := range list.Members {
		m := &list.Members[i]
		fmt.Fprintf(&b, "- %s (%s, %s) [%s]\n", m.DisplayName(), m.DisplayParty(), m.State, m.BioguideID)
	}
	appendPagination(&b, list.Pagination, len(list.Members))
	return strings.TrimRight(b.String(), "\n")
}

func renderMemberDetail(detail *congress.MemberDetail) string {
	m := detail.Member
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.DisplayName())
	fmt.Fprintf(&b, "Bioguide ID: %s\n", m.BioguideID)
	fmt.Fprintf(&b, "Party: %s\n", m.DisplayParty())
	fmt.Fprintf(&b, "State: %s\n", m.State)
	if chamber := m.CurrentChamber(); chamber != "" {
		fmt.Fprintf(&b, "Chamber: %s\n", chamber.Display())
		if chamber == congress.ChamberHouse {
			fmt.Fprintf(&b, "District: %s\n", m.DisplayDistrict())
		}
	}
	if positions := m.LeadershipPositions(); len(positions) > 0 {
		fmt.Fprintf(&b, "Leadership: %s\n", strings.Join(positions, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSearchResults(header string, results []search.Result) string {
	if len(results) == 0 {
		return header + ": no matches."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d matches):\n", header, len(results))
	for _, r := range results {
		fmt.Fprintf(&b, "- [%s] %s: %s", r.Type, r.Identifier, r.Title)
		if r.Detail != "" {
			fmt.Fprintf(&b, " (%s)", r.Detail)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTopicResults(topic string, results []search.Result) string {
	if len(results) == 0 {
		known := strings.Join(search.Topics(), ", ")
		return fmt.Sprintf("No results for topic %q. Known topics: %s.", topic, known)
	}
	return renderSearchResults("Results for topic "+strings.ToLower(strings.TrimSpace(topic)), results)
}

func renderCongressInfo(now time.Time) string {
	number := congress.CurrentCongress(now)
	start, end := congress.CongressYears(number)
	return fmt.Sprintf("The current Congress is the %s Congress (%d-%d).", congress.Ordinal(number), start, end)
}

func renderRateLimitStatus(status ratelimit.Status) string {
	names := make([]string, 0, len(status))
	for name := range status {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Rate limit status:\n")
	for _, name := range names {
		win := status[name]
		fmt.Fprintf(&b, "- %s window: %d/%d used, %d remaining", name, win.Used, win.Limit, win.Remaining)
		if win.RetryAfter > 0 {
			fmt.Fprintf(&b, ", next slot in %s", win.RetryAfter.Round(time.Second))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderHealthReport(report *health.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall status: %s", report.Status)
	if report.Cached {
		b.WriteString(" (cached)")
	}
	b.WriteString("\n")
	for _, c := range report.Checks {
		fmt.Fprintf(&b, "- %s: %s", c.Name, c.Status)
		if c.Detail != "" {
			fmt.Fprintf(&b, " (%s)", c.Detail)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Checked at %s\n", report.CheckedAt.Format(time.RFC3339))
	return strings.TrimRight(b.String(), "\n")
}

func renderMetricsSnapshot(snap *metrics.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Uptime: %s\n", snap.Uptime.Round(time.Second))
	b.WriteString("Counters:\n")
	for _, c := range snap.Counters {
		fmt.Fprintf(&b, "- %s", c.Name)
		if len(c.Labels) > 0 {
			names := make([]string, 0, len(c.Labels))
			for name := range c.Labels {
				names = append(names, name)
			}
			sort.Strings(names)
			pairs := make([]string, 0, len(names))
			for _, name := range names {
				pairs = append(pairs, name+"="+c.Labels[name])
			}
			fmt.Fprintf(&b, "{%s}", strings.Join(pairs, ","))
		}
		fmt.Fprintf(&b, ": %.0f\n", c.Value)
	}
	return strings.TrimRight(b.String(), "\n")
}

func appendPagination(b *strings.Builder, p *congress.Pagination, shown int) {
	if p == nil || p.Count <= shown {
		return
	}
	fmt.Fprintf(b, "Showing %d of %d total.\n", shown, p.Count)
}
