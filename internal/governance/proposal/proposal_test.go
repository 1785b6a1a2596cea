package proposal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func i64(v int64) *int64 {
	return &v
}

func TestTypeText(t *testing.T) {
	tests := []struct {
		typ    Type
		custom string
		want   string
	}{
		{Standard, "Custom Label", "Custom Label"},
		{OffchainOptimistic, "", "Optimistic Proposal"},
		{OffchainStandard, "", "Standard Proposal"},
		{OffchainApproval, "", "Approval Vote Proposal"},
		{Optimistic, "", "Optimistic Proposal"},
		{Snapshot, "", "Snapshot Proposal"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, TypeText(tt.typ, tt.custom))
		})
	}
}

func TestTypeValid(t *testing.T) {
	assert.True(t, OffchainOptimisticTiered.Valid())
	assert.False(t, Type("HYBRID_STANDARD").Valid())
	assert.True(t, OffchainApproval.Offchain())
	assert.False(t, Approval.Offchain())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Upgrade the bridge", Title("# Upgrade the bridge\n\nBody"))
	assert.Equal(t, "Plain", Title("Plain"))
}

func TestParseDataStandardTopLevel(t *testing.T) {
	d, err := ParseData(Standard, `{"targets":["0xabc"],"values":["0"],"signatures":[""],"calldatas":["0x1234"]}`)
	require.NoError(t, err)
	require.Len(t, d.Options, 1)
	assert.Equal(t, []string{"0xabc"}, d.Options[0].Targets)
	assert.False(t, d.NoCalldata())
}

func TestParseDataApproval(t *testing.T) {
	raw := `{"options":[{"description":"A","targets":["0x0000000000000000000000000000000000000000"],"calldatas":["0x"]},{"description":"B"}],
		"proposalSettings":{"maxApprovals":2,"criteria":1,"criteriaValue":"3"}}`

	d, err := ParseData(Approval, raw)
	require.NoError(t, err)
	assert.Equal(t, CriteriaTopChoices, d.Settings.Criteria)
	assert.True(t, d.Settings.CriteriaValue.Equal(dec("3")))
	assert.Len(t, d.Options, 2)
	assert.True(t, d.NoCalldata())
}

func TestParseDataEmptyAndMalformed(t *testing.T) {
	d, err := ParseData(Standard, "")
	require.NoError(t, err)
	assert.True(t, d.NoCalldata())
	assert.Equal(t, CriteriaThreshold, d.Settings.Criteria)

	_, err = ParseData(Standard, "{not json")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestNoCalldata(t *testing.T) {
	tests := []struct {
		name string
		data Data
		want bool
	}{
		{"offchain", Data{Type: OffchainStandard}, true},
		{"optimistic", Data{Type: Optimistic}, true},
		{"standard without options", Data{Type: Standard}, true},
		{"standard blank calldata", Data{Type: Standard, Options: []Option{{Targets: []string{"0xabc"}, Calldatas: []string{" 0x "}}}}, true},
		{"standard zero target", Data{Type: Standard, Options: []Option{{Targets: []string{zeroAddress}, Calldatas: []string{"0x12"}}}}, true},
		{"standard executes", Data{Type: Standard, Options: []Option{{Targets: []string{"0xabc"}, Calldatas: []string{"0x12"}}}}, false},
		{"approval one option executes", Data{Type: Approval, Options: []Option{{}, {Targets: []string{"0xabc"}, Calldatas: []string{"0x12"}}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.data.NoCalldata())
		})
	}
}

func TestParseResults(t *testing.T) {
	t.Run("standard order is against, for, abstain", func(t *testing.T) {
		r, err := ParseResults(Data{Type: Standard}, `{"standard":["10","20","5"]}`, ResultsOptions{})
		require.NoError(t, err)
		assert.True(t, r.For.Equal(dec("20")))
		assert.True(t, r.Against.Equal(dec("10")))
		assert.True(t, r.Abstain.Equal(dec("5")))
	})

	t.Run("approval options by param", func(t *testing.T) {
		d := Data{Type: Approval, Options: []Option{{Description: "A"}, {Description: "B"}}}

		r, err := ParseResults(d, `{"standard":["1","2","3"],"approval":[{"param":"1","votes":"7"}]}`, ResultsOptions{})
		require.NoError(t, err)
		require.Len(t, r.Options, 2)
		assert.True(t, r.Options[0].Votes.IsZero())
		assert.True(t, r.Options[1].Votes.Equal(dec("7")))
		assert.True(t, r.For.Equal(dec("2")))
	})

	t.Run("legacy approval tally", func(t *testing.T) {
		r, err := ParseResults(Data{Type: Approval}, `{"standard":["9","4"]}`, ResultsOptions{StartBlock: 10, LegacyApprovalBlock: 100})
		require.NoError(t, err)
		assert.True(t, r.For.Equal(dec("9")))
		assert.True(t, r.Abstain.Equal(dec("4")))
		assert.True(t, r.Against.IsZero())
	})

	t.Run("snapshot scores", func(t *testing.T) {
		r, err := ParseResults(Data{Type: Snapshot, State: "closed"}, `{"scores":[1.5,2]}`, ResultsOptions{})
		require.NoError(t, err)
		assert.Equal(t, []float64{1.5, 2}, r.Scores)
		assert.Equal(t, "closed", r.SnapshotState)
	})

	t.Run("offchain houses", func(t *testing.T) {
		raw := `{"APP":{"0":"2","1":"5"},"USER":{"1":"10","2":"1"},"CHAIN":{"0":"1"}}`

		r, err := ParseResults(Data{Type: OffchainOptimistic}, raw, ResultsOptions{})
		require.NoError(t, err)
		assert.True(t, r.For.Equal(dec("15")))
		assert.True(t, r.Against.Equal(dec("3")))
		assert.True(t, r.Houses[HouseUser].Abstain.Equal(dec("1")))
	})

	t.Run("offchain approval", func(t *testing.T) {
		d := Data{Type: OffchainApproval, Choices: []string{"A", "B"}}
		raw := `{"APP":[{"param":"0","votes":2}],"USER":{"0":"3","1":"4"}}`

		r, err := ParseResults(d, raw, ResultsOptions{})
		require.NoError(t, err)
		require.Len(t, r.Options, 2)
		assert.True(t, r.Options[0].Votes.Equal(dec("5")))
		assert.True(t, r.Options[1].Votes.Equal(dec("4")))
		assert.Equal(t, CriteriaThreshold, r.Criteria)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseResults(Data{Type: Standard}, `{"standard":"x"}`, ResultsOptions{})
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestStatus(t *testing.T) {
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	head := &Head{Number: 1000, Time: now}
	ended := Timeline{StartBlock: 100, EndBlock: 200}
	quorum := dec("100")

	standard := func(forVotes, against, abstain string) Results {
		return Results{Type: Standard, Tally: Tally{For: dec(forVotes), Against: dec(against), Abstain: dec(abstain)}}
	}

	tests := []struct {
		name string
		in   StatusInput
		want Status
	}{
		{
			name: "snapshot uses its state",
			in:   StatusInput{Data: Data{Type: Snapshot}, Results: Results{SnapshotState: "closed"}},
			want: StatusClosed,
		},
		{
			name: "cancelled",
			in:   StatusInput{Data: Data{Type: Standard}, Timeline: Timeline{CancelledBlock: i64(5)}, Latest: head},
			want: StatusCancelled,
		},
		{
			name: "cancelled attestation",
			in:   StatusInput{Data: Data{Type: OffchainStandard, CancelledAttestationHash: "0x1"}, Latest: head},
			want: StatusCancelled,
		},
		{
			name: "executed",
			in:   StatusInput{Data: Data{Type: Standard}, Timeline: Timeline{ExecutedBlock: i64(5)}, Latest: head},
			want: StatusExecuted,
		},
		{
			name: "recently queued",
			in: StatusInput{
				Data:     Data{Type: Standard},
				Timeline: Timeline{QueuedBlock: i64(999)},
				Latest:   head,
			},
			want: StatusQueued,
		},
		{
			name: "queued long ago without calldata passes",
			in: StatusInput{
				Data:     Data{Type: Standard},
				Timeline: Timeline{QueuedBlock: i64(1), QueuedTime: func() *time.Time { v := now.Add(-11 * 24 * time.Hour); return &v }()},
				Latest:   head,
			},
			want: StatusPassed,
		},
		{
			name: "queued long ago with calldata stays queued",
			in: StatusInput{
				Data:      Data{Type: Standard, Options: []Option{{Targets: []string{"0xabc"}, Calldatas: []string{"0x12"}}}},
				Timeline:  Timeline{QueuedBlock: i64(1)},
				Latest:    head,
				BlockTime: time.Hour,
			},
			want: StatusQueued,
		},
		{
			name: "pending",
			in:   StatusInput{Data: Data{Type: Standard}, Timeline: Timeline{StartBlock: 2000, EndBlock: 3000}, Latest: head},
			want: StatusPending,
		},
		{
			name: "pending without head",
			in:   StatusInput{Data: Data{Type: Standard}, Timeline: ended},
			want: StatusPending,
		},
		{
			name: "active",
			in:   StatusInput{Data: Data{Type: Standard}, Timeline: Timeline{StartBlock: 900, EndBlock: 3000}, Latest: head},
			want: StatusActive,
		},
		{
			name: "timestamp tenant active",
			in: StatusInput{
				Data:          Data{Type: Standard},
				Timeline:      Timeline{StartTime: func() *time.Time { v := now.Add(-time.Hour); return &v }()},
				Latest:        head,
				UseTimestamps: true,
			},
			want: StatusActive,
		},
		{
			name: "succeeded",
			in:   StatusInput{Data: Data{Type: Standard}, Results: standard("90", "10", "20"), Timeline: ended, Latest: head, Quorum: &quorum},
			want: StatusSucceeded,
		},
		{
			name: "quorum missed",
			in:   StatusInput{Data: Data{Type: Standard}, Results: standard("50", "10", "20"), Timeline: ended, Latest: head, Quorum: &quorum},
			want: StatusDefeated,
		},
		{
			name: "uniswap counts only for votes",
			in: StatusInput{
				Data: Data{Type: Standard}, Results: standard("90", "10", "20"), Timeline: ended, Latest: head,
				Quorum: &quorum, QuorumCounting: QuorumFor,
			},
			want: StatusDefeated,
		},
		{
			name: "approval threshold missed",
			in: StatusInput{
				Data: Data{Type: Standard}, Results: standard("60", "40", "0"), Timeline: ended, Latest: head,
				ApprovalThreshold: i64(7500),
			},
			want: StatusDefeated,
		},
		{
			name: "tie fails",
			in:   StatusInput{Data: Data{Type: Standard}, Results: standard("10", "10", "0"), Timeline: ended, Latest: head},
			want: StatusFailed,
		},
		{
			name: "optimistic vetoed",
			in: StatusInput{
				Data: Data{Type: Optimistic}, Results: Results{Tally: Tally{Against: dec("51")}},
				Timeline: ended, Latest: head, VotableSupply: dec("100"),
			},
			want: StatusDefeated,
		},
		{
			name: "optimistic passes",
			in: StatusInput{
				Data: Data{Type: Optimistic}, Results: Results{Tally: Tally{Against: dec("50")}},
				Timeline: ended, Latest: head, VotableSupply: dec("100"),
			},
			want: StatusSucceeded,
		},
		{
			name: "approval threshold met",
			in: StatusInput{
				Data: Data{Type: Approval},
				Results: Results{
					Criteria: CriteriaThreshold, CriteriaValue: dec("5"),
					Options: []OptionVotes{{Option: "A", Votes: dec("3")}, {Option: "B", Votes: dec("6")}},
				},
				Timeline: ended, Latest: head,
			},
			want: StatusSucceeded,
		},
		{
			name: "approval threshold not met",
			in: StatusInput{
				Data:     Data{Type: Approval},
				Results:  Results{Criteria: CriteriaThreshold, CriteriaValue: dec("5"), Options: []OptionVotes{{Option: "A", Votes: dec("5")}}},
				Timeline: ended, Latest: head,
			},
			want: StatusDefeated,
		},
		{
			name: "approval top choices",
			in: StatusInput{
				Data:     Data{Type: Approval},
				Results:  Results{Criteria: CriteriaTopChoices, Tally: Tally{For: dec("200")}},
				Timeline: ended, Latest: head, Quorum: &quorum,
			},
			want: StatusSucceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.in))
		})
	}
}

func TestOffchainOptimisticVeto(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)
	head := &Head{Number: 1, Time: end.Add(time.Hour)}

	results := Results{Houses: map[House]Tally{
		HouseApp:   {Against: dec("30")},
		HouseUser:  {Against: dec("300")},
		HouseChain: {Against: dec("3")},
	}}

	in := StatusInput{
		Data:     Data{Type: OffchainOptimistic},
		Results:  results,
		Timeline: Timeline{StartTime: &start, EndTime: &end},
		Latest:   head,
	}
	assert.Equal(t, StatusDefeated, Derive(in), "average 26.7% vetoes at 20%")

	in.Data.Type = OffchainOptimisticTiered
	assert.Equal(t, StatusSucceeded, Derive(in), "tiered needs 55%")

	in.Latest = &Head{Number: 1, Time: start.Add(time.Hour)}
	assert.Equal(t, StatusActive, Derive(in))
}
