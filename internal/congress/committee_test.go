package congress

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const committeeListPayload = `{
	"committees": [
		{
			"systemCode": "hsag00",
			"name": "Agriculture Committee",
			"chamber": "House",
			"committeeTypeCode": "Standing",
			"subcommittees": [
				{"systemCode": "hsag14", "name": "General Farm Commodities"},
				{"systemCode": "hsag29", "name": "Biotechnology"}
			]
		},
		{
			"systemCode": "hsag14",
			"name": "General Farm Commodities",
			"chamber": "House",
			"parent": {"systemCode": "hsag00", "name": "Agriculture Committee"}
		}
	],
	"pagination": {"count": 2}
}`

func TestCommitteeListRoundTrip(t *testing.T) {
	var list CommitteeList
	require.NoError(t, json.Unmarshal([]byte(committeeListPayload), &list))
	require.NoError(t, list.Validate())
	require.Len(t, list.Committees, 2)

	parent := &list.Committees[0]
	assert.Equal(t, "hsag00", parent.SystemCode)
	assert.Equal(t, ChamberHouse, parent.ChamberKind())
	assert.False(t, parent.IsSubcommittee())
	assert.Equal(t, "Agriculture Committee (House)", parent.Label())

	sub := &list.Committees[1]
	assert.True(t, sub.IsSubcommittee())
	assert.Equal(t, "hsag00", sub.Parent.SystemCode)

	assert.Equal(t, 2, list.Pagination.Count)
}

func TestDanglingSubcommitteeRefs(t *testing.T) {
	var list CommitteeList
	require.NoError(t, json.Unmarshal([]byte(committeeListPayload), &list))

	// hsag29 is referenced but not present in the batch.
	dangling := list.DanglingSubcommitteeRefs()
	assert.Equal(t, []string{"hsag29"}, dangling)

	// Adding it resolves the reference.
	list.Committees = append(list.Committees, Committee{SystemCode: "hsag29"})
	assert.Empty(t, list.DanglingSubcommitteeRefs())
}

func TestCommitteeValidate(t *testing.T) {
	c := Committee{Name: "No Code"}
	assert.Error(t, c.Validate())

	c.SystemCode = "ssfr00"
	assert.NoError(t, c.Validate())
}

func TestCommitteeDetailValidate(t *testing.T) {
	d := CommitteeDetail{}
	assert.Error(t, d.Validate())

	d.Committee = &Committee{SystemCode: "hsif00", Name: "Energy and Commerce"}
	assert.NoError(t, d.Validate())
}
