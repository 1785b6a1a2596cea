package models

import "time"

// StakingDeposit is a deposit into the tenant staker contract.
type StakingDeposit struct {
	ID          uint64    `gorm:"primaryKey" json:"-"`
	Namespace   string    `gorm:"size:32;not null;uniqueIndex:idx_deposit_ns_id" json:"-"`
	DepositID   string    `gorm:"size:78;not null;uniqueIndex:idx_deposit_ns_id" json:"id"`
	Depositor   string    `gorm:"size:42;not null;index" json:"depositor"`
	Delegatee   string    `gorm:"size:42" json:"delegatee"`
	Beneficiary string    `gorm:"size:42" json:"beneficiary"`
	Amount      Amount    `gorm:"type:numeric(65,0)" json:"amount"`
	BlockNumber int64     `json:"blockNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}
