package models

// All returns every model for AutoMigrate.
func All() []any {
	return []any{
		&Setting{},
		&Proposal{},
		&Vote{},
		&Delegate{},
		&Delegation{},
		&VotingPowerSnapshot{},
		&VotableSupply{},
		&DelegateStatement{},
		&StakingDeposit{},
		&Project{},
		&Ballot{},
		&ProjectAllocation{},
		&Citizen{},
		&APIUser{},
		&KV{},
	}
}
