// Package statement stores the delegate statements published per DAO.
package statement

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoAgora/go-agora/internal/db/models"
)

var (
	// ErrStatementNotFound is returned when the address has no statement for the DAO.
	ErrStatementNotFound = errors.New("delegate statement not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Topic is a typed entry of the top issues or top stakeholders lists.
type Topic struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ProposalRef points at a proposal by number.
type ProposalRef struct {
	Number string `json:"number"`
}

// Payload is the free form part of a statement.
type Payload struct {
	DelegateStatement         string        `json:"delegateStatement"`
	TopIssues                 []Topic       `json:"topIssues"`
	TopStakeholders           []Topic       `json:"topStakeholders"`
	OpenToSponsoringProposals *string       `json:"openToSponsoringProposals"`
	MostValuableProposals     []ProposalRef `json:"mostValuableProposals"`
	LeastValuableProposals    []ProposalRef `json:"leastValuableProposals"`
}

// NotificationPreferences are "prompt", "prompted" or a boolean per email kind.
type NotificationPreferences struct {
	WantsProposalCreatedEmail    any `json:"wants_proposal_created_email"`
	WantsProposalEndingSoonEmail any `json:"wants_proposal_ending_soon_email"`
}

// Form is a statement with every field filled, as the statement editor expects it.
type Form struct {
	Address                 string                  `json:"address"`
	DAOSlug                 string                  `json:"daoSlug"`
	AgreeCodeOfConduct      bool                    `json:"agreeCodeConduct"`
	AgreeDAOPrinciples      bool                    `json:"agreeDaoPrinciples"`
	Discord                 string                  `json:"discord"`
	Email                   string                  `json:"email"`
	Twitter                 string                  `json:"twitter"`
	Warpcast                string                  `json:"warpcast"`
	Signature               string                  `json:"signature,omitempty"`
	MessageHash             string                  `json:"messageHash,omitempty"`
	NotificationPreferences NotificationPreferences `json:"notificationPreferences"`
	Payload
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	LastUpdated time.Time  `json:"last_updated"`
}

// Requirements are the tenant toggles that decide the agreement defaults.
type Requirements struct {
	CodeOfConduct bool
	DAOPrinciples bool
}

// MessageHash is the hex sha256 of a signed statement message.
func MessageHash(message string) string {
	sum := sha256.Sum256([]byte(message))
	return hex.EncodeToString(sum[:])
}

// ParsePayload decodes the stored payload, tolerating malformed entries.
func ParsePayload(raw string) Payload {
	var p Payload

	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &p)
	}

	if p.TopIssues == nil {
		p.TopIssues = []Topic{}
	}

	if p.TopStakeholders == nil {
		p.TopStakeholders = []Topic{}
	}

	p.MostValuableProposals = validRefs(p.MostValuableProposals)
	p.LeastValuableProposals = validRefs(p.LeastValuableProposals)

	return p
}

func validRefs(refs []ProposalRef) []ProposalRef {
	out := []ProposalRef{}

	for _, r := range refs {
		if r.Number != "" {
			out = append(out, r)
		}
	}

	return out
}

// NewForm fills a form from st. A nil st yields the empty form for a new statement.
func NewForm(st *models.DelegateStatement, slug string, req Requirements, now time.Time) Form {
	f := Form{
		DAOSlug:            slug,
		AgreeCodeOfConduct: !req.CodeOfConduct,
		AgreeDAOPrinciples: !req.DAOPrinciples,
		NotificationPreferences: NotificationPreferences{
			WantsProposalCreatedEmail:    "prompt",
			WantsProposalEndingSoonEmail: "prompt",
		},
		Payload:     ParsePayload(""),
		LastUpdated: now.UTC(),
	}

	if st == nil {
		return f
	}

	f.Address = st.Address
	f.Discord = st.DiscordHandle
	f.Email = st.Email
	f.Twitter = st.TwitterHandle
	f.Warpcast = st.WarpcastHandle
	f.Signature = st.Signature
	f.MessageHash = st.MessageHash
	f.Payload = ParsePayload(st.Payload)
	f.AgreeCodeOfConduct = f.AgreeCodeOfConduct || st.AgreeCodeOfConduct
	f.AgreeDAOPrinciples = f.AgreeDAOPrinciples || st.AgreeDAOPrinciples

	created := st.CreatedAt
	f.CreatedAt = &created

	if st.NotificationPreferences != "" {
		_ = json.Unmarshal([]byte(st.NotificationPreferences), &f.NotificationPreferences)
	}

	return f
}

// Get returns the statement of address for slug.
func Get(db *gorm.DB, address, slug string) (*models.DelegateStatement, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var st models.DelegateStatement

	err := db.Where("address = ? AND dao_slug = ?", strings.ToLower(address), slug).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStatementNotFound
	}

	if err != nil {
		return nil, err
	}

	return &st, nil
}

// ByAddresses returns the statements of addresses for slug keyed by address.
func ByAddresses(db *gorm.DB, slug string, addresses []string) (map[string]models.DelegateStatement, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := map[string]models.DelegateStatement{}
	if len(addresses) == 0 {
		return out, nil
	}

	var rows []models.DelegateStatement

	if err := db.Where("dao_slug = ? AND address IN ?", slug, addresses).Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		out[r.Address] = r
	}

	return out, nil
}

// Upsert creates or replaces the statement of st.Address for st.DAOSlug.
func Upsert(db *gorm.DB, st *models.DelegateStatement) error {
	if db == nil {
		return ErrDBNil
	}

	st.Address = strings.ToLower(st.Address)

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}, {Name: "dao_slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"signature", "message_hash", "payload", "twitter_handle", "discord_handle",
			"warpcast_handle", "email", "agree_code_of_conduct", "agree_dao_principles",
			"notification_preferences", "updated_at",
		}),
	}).Create(st).Error
}
