// Package model defines the enrichment domain types: the canonical entity a
// query resolves to, the accumulating profile, and the streamed snapshots.
package model

// OriginTable identifies which record set a canonical entity came from.
// Secondary-origin entities carry no address and their region may be the
// known-bad sentinel value that stage 1 must correct.
type OriginTable string

const (
	OriginPrimary   OriginTable = "primary"   // QD_customer
	OriginSecondary OriginTable = "secondary" // QD_enterprise_chain_leader
)

// Confidence grades an extracted name.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// NameSource records which mechanism produced an extracted name.
type NameSource string

const (
	SourceLocalPattern    NameSource = "local_pattern"
	SourceSearchInference NameSource = "search_inference"
)

// ExtractedName is the result of pulling a candidate company name out of
// free text. Consumed once by the resolver; never persisted.
type ExtractedName struct {
	Name       string     `json:"name"`
	IsComplete bool       `json:"is_complete"`
	Confidence Confidence `json:"confidence"`
	Source     NameSource `json:"source"`
}

// Entity is the canonical record a query resolved to. Read-only downstream
// of the resolver.
type Entity struct {
	ID              int64       `json:"id"`
	DisplayName     string      `json:"display_name"`
	Region          string      `json:"region"`
	Address         string      `json:"address"`
	Industry        string      `json:"industry"`
	DataSource      string      `json:"data_source"`
	Origin          OriginTable `json:"origin_table"`
	IndustryID      int64       `json:"industry_id,omitempty"`
	BrainID         int64       `json:"brain_id,omitempty"`
	BrainName       string      `json:"brain_name,omitempty"`
	ChainLeaderID   int64       `json:"chain_leader_id,omitempty"`
	ChainLeaderName string      `json:"chain_leader_name,omitempty"`
}
