package tenant

import (
	"time"

	"github.com/GoAgora/go-agora/internal/governance/proposal"
)

// Namespaces of the built-in tenants.
const (
	Optimism = "optimism"
	ENS      = "ens"
	Etherfi  = "etherfi"
	Uniswap  = "uniswap"
	Cyber    = "cyber"
	Derive   = "derive"
	Shape    = "shape"
)

// Feature toggles read by the api.
const (
	ToggleProposals       = "proposals"
	ToggleDelegates       = "delegates"
	ToggleDelegatesEdit   = "delegates/edit"
	ToggleStaking         = "staking"
	ToggleRetroFunding    = "retrofunding"
	ToggleCitizens        = "citizens"
	ToggleSnapshot        = "snapshot"
	ToggleUseTimestamps   = "use-timestamp-for-proposals"
	ToggleShowParticipate = "show-participation"
	ToggleCodeOfConduct   = "delegates/code-of-conduct"
	ToggleDAOPrinciples   = "delegates/dao-principles"
)

var (
	mainnet = Chain{ID: 1, Name: "Ethereum", RPCURL: "https://eth-mainnet.g.alchemy.com/v2/", BlockTime: 12 * time.Second}
	opChain = Chain{ID: 10, Name: "OP Mainnet", RPCURL: "https://opt-mainnet.g.alchemy.com/v2/", BlockTime: 2 * time.Second}
)

func builtins() []*Tenant {
	return []*Tenant{
		{
			Namespace: Optimism,
			Slug:      "OP",
			Title:     "Optimism Agora",
			Chain:     opChain,
			Token:     Token{Symbol: "OP", Decimals: 18},
			Contracts: Contracts{
				Token:    "0x4200000000000000000000000000000000000042",
				Governor: "0xcDF27F107725988f2261Ce2256bDfCdE8B382B10",
			},
			DelegationModel: DelegationPartial,
			QuorumCounting:  proposal.QuorumForAbstain,
			Toggles: map[string]bool{
				ToggleProposals:       true,
				ToggleDelegates:       true,
				ToggleDelegatesEdit:   true,
				ToggleRetroFunding:    true,
				ToggleCitizens:        true,
				ToggleShowParticipate: true,
				ToggleCodeOfConduct:   true,
			},
		},
		{
			Namespace: ENS,
			Slug:      "ENS",
			Title:     "ENS Agora",
			Chain:     mainnet,
			Token:     Token{Symbol: "ENS", Decimals: 18},
			Contracts: Contracts{
				Token:    "0xC18360217D8F7Ab5e7c516566761Ea12Ce7F9D72",
				Governor: "0x323A76393544d5ecca80cd6ef2A560C6a395b7E3",
				Timelock: "0xFe89cc7aBB2C4183683ab71653C4cdc9B02D44b7",
			},
			DelegationModel: DelegationFull,
			QuorumCounting:  proposal.QuorumForAbstain,
			Toggles: map[string]bool{
				ToggleProposals:     true,
				ToggleDelegates:     true,
				ToggleDelegatesEdit: true,
				ToggleSnapshot:      true,
			},
		},
		{
			Namespace: Etherfi,
			Slug:      "ETHERFI",
			Title:     "EtherFi Agora",
			Chain:     mainnet,
			Token:     Token{Symbol: "ETHFI", Decimals: 18},
			Contracts: Contracts{
				Token: "0xFe0c30065B384F05761f15d0CC899D4F9F9Cc0eB",
			},
			DelegationModel: DelegationFull,
			QuorumCounting:  proposal.QuorumForAbstain,
			Toggles: map[string]bool{
				ToggleProposals:     true,
				ToggleDelegates:     true,
				ToggleDelegatesEdit: true,
				ToggleSnapshot:      true,
			},
		},
		{
			Namespace: Uniswap,
			Slug:      "UNI",
			Title:     "Uniswap Agora",
			Chain:     mainnet,
			Token:     Token{Symbol: "UNI", Decimals: 18},
			Contracts: Contracts{
				Token:    "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984",
				Governor: "0x408ED6354d4973f66138C91495F2f2FCbd8724C3",
				Timelock: "0x1a9C8182C09F50C8318d769245beA52c32BE35BC",
				Staker:   "0xE3071e87a7E6dD19A911Dbf1127BA9dD67Aa6fc8",
			},
			DelegationModel: DelegationFull,
			QuorumCounting:  proposal.QuorumFor,
			Toggles: map[string]bool{
				ToggleProposals:       true,
				ToggleDelegates:       true,
				ToggleDelegatesEdit:   true,
				ToggleStaking:         false,
				ToggleShowParticipate: true,
			},
		},
		{
			Namespace: Cyber,
			Slug:      "CYBER",
			Title:     "Cyber Agora",
			Chain:     Chain{ID: 7560, Name: "Cyber", RPCURL: "https://cyber.alt.technology", BlockTime: 2 * time.Second},
			Token:     Token{Symbol: "CYBER", Decimals: 18},
			Contracts: Contracts{
				Token:          "0x522d3a9c2bc14ce1c4d210ed41ab239fded02f2b",
				Governor:       "0x58E53131c339aA3cBA35904538eA5948f751050a",
				Timelock:       "0x11caA7DF2a1FCAea7149fc01aC8D2DB5d3C82421",
				ProposalTypes:  "0x36a8529335AdBE769Dd9180C275e9b8eCD3C6C72",
				ApprovalModule: "0x751a4989E01776522B6989511D0B969311Dd5f4e",
			},
			DelegationModel: DelegationFull,
			QuorumCounting:  proposal.QuorumForAbstain,
			Toggles: map[string]bool{
				ToggleProposals:     true,
				ToggleDelegates:     true,
				ToggleDelegatesEdit: true,
			},
		},
		{
			Namespace: Derive,
			Slug:      "DERIVE",
			Title:     "Derive Agora",
			Chain:     Chain{ID: 957, Name: "Derive", RPCURL: "https://rpc.derive.xyz/", BlockTime: 2 * time.Second},
			Token:     Token{Symbol: "DRV", Decimals: 18},
			Contracts: Contracts{
				Token:          "0x7499d654422023a407d92e1D83D387d81BC68De1",
				Governor:       "0x3CdCbB7dBfb4BC02009f2879dAd7620619046b1A",
				Timelock:       "0x239dcb72dF956e27a64f458cB49FEf0732B1f291",
				ProposalTypes:  "0xd828b681F717E5a03C41540Bc6A31b146b5C1Ac6",
				ApprovalModule: "0x5d729d4c0BF5d0a2Fa0F801c6e0023BD450c4fd6",
			},
			DelegationModel: DelegationPartial,
			QuorumCounting:  proposal.QuorumForAbstain,
			Toggles: map[string]bool{
				ToggleProposals:     true,
				ToggleDelegates:     true,
				ToggleDelegatesEdit: true,
			},
		},
		{
			Namespace: Shape,
			Slug:      "SHAPE",
			Title:     "Shape Agora",
			Chain:     Chain{ID: 11011, Name: "Shape Sepolia", RPCURL: "https://shape-sepolia.g.alchemy.com/v2/", BlockTime: 2 * time.Second},
			Token:     Token{Symbol: "SHAPE", Decimals: 18},
			Contracts: Contracts{
				Token:         "0x10374c5D846179BA9aC03b468497B58E13C5f74e",
				Governor:      "0x90193C961A926261B756D1E5bb255e67ff9498A1",
				Timelock:      "0x34A1D3fff3958843C43aD80F30b94c510645C316",
				ProposalTypes: "0x98607C6D56bD3Ea5a1B516Ce77E07CA54e5f3FFf",
			},
			DelegationModel: DelegationFull,
			QuorumCounting:  proposal.QuorumForAbstain,
			Toggles: map[string]bool{
				ToggleProposals:     true,
				ToggleDelegates:     true,
				ToggleDelegatesEdit: true,
				ToggleUseTimestamps: true,
			},
		},
	}
}
