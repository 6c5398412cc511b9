package model

// Lead is one document of the tp2_leads target collection. The base build
// pass writes the qualified lead plus its embedded closed record; the
// enrichment pass merges the income fields in afterwards without touching
// the base fields.
type Lead struct {
	MqlID            string         `bson:"mql_id"`
	FirstContactDate *string        `bson:"first_contact_date,omitempty"`
	Origin           *string        `bson:"origin,omitempty"`
	Closed           *ClosedLeadEmb `bson:"leads_closed_emb,omitempty"`
	EstMonthlyIncome *float64       `bson:"est_monthly_income,omitempty"`
	IncomeBest       *float64       `bson:"income_best,omitempty"`
}

// ClosedLeadEmb is the closed-deal record embedded in a Lead.
type ClosedLeadEmb struct {
	SellerID               string      `bson:"seller_id"`
	WonDate                *string     `bson:"won_date,omitempty"`
	BusinessSegment        *string     `bson:"business_segment,omitempty"`
	LeadType               *string     `bson:"lead_type,omitempty"`
	DeclaredMonthlyRevenue interface{} `bson:"declared_monthly_revenue,omitempty"`
}

// LeadIncome carries the computed income fields for the enrichment merge
// pass. A nil field means "absent": the writer unsets it so re-runs
// converge to the same document.
type LeadIncome struct {
	MqlID            string
	EstMonthlyIncome *float64
	IncomeBest       *float64
}
