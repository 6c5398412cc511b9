package store

import (
	"context"

	"github.com/storelake/remodel-cli/internal/model"
)

// Target collection names. The keys are fixed by the downstream analytics
// queries and must not change.
const (
	CollOrders     = "tp2_orders"
	CollProducts   = "tp2_products"
	CollSellersGeo = "tp2_sellers_geo"
	CollLeads      = "tp2_leads"
	CollRuns       = "remodel_runs"
)

// Source collection names.
const (
	SrcOrders              = "orders"
	SrcCustomers           = "customers"
	SrcGeolocation         = "geolocation"
	SrcOrderItems          = "order_items"
	SrcPayments            = "order_payments"
	SrcReviews             = "order_reviews"
	SrcProducts            = "products"
	SrcCategoryTranslation = "product_category_name_translation"
	SrcSellers             = "sellers"
	SrcLeadsQualified      = "leads_qualified"
	SrcLeadsClosed         = "leads_closed"
)

// Store defines the persistence interface for the remodeling pipeline.
// All writes are idempotent upserts keyed on the target's unique field.
type Store interface {
	// Source reads
	SourceOrders(ctx context.Context) ([]model.SourceOrder, error)
	SourceCustomers(ctx context.Context) ([]model.SourceCustomer, error)
	Geolocation(ctx context.Context) ([]model.GeolocationRow, error)
	SourceOrderItems(ctx context.Context) ([]model.SourceOrderItem, error)
	SourcePayments(ctx context.Context) ([]model.SourcePayment, error)
	SourceReviews(ctx context.Context) ([]model.SourceReview, error)
	SourceProducts(ctx context.Context) ([]model.SourceProduct, error)
	CategoryTranslations(ctx context.Context) ([]model.CategoryTranslation, error)
	SourceSellers(ctx context.Context) ([]model.SourceSeller, error)
	QualifiedLeads(ctx context.Context) ([]model.QualifiedLead, error)
	ClosedLeads(ctx context.Context) ([]model.ClosedLead, error)

	// Built reads (the lead enrichment pass queries the committed orders)
	BuiltOrderSales(ctx context.Context) ([]model.Order, error)
	BuiltLeads(ctx context.Context) ([]model.Lead, error)

	// Upsert writers: replace-on-match for full documents, merge-on-match
	// for the lead income fields.
	UpsertOrders(ctx context.Context, docs []model.Order) error
	UpsertProducts(ctx context.Context, docs []model.Product) error
	UpsertSellers(ctx context.Context, docs []model.SellerGeo) error
	UpsertLeads(ctx context.Context, docs []model.Lead) error
	MergeLeadIncomes(ctx context.Context, incomes []model.LeadIncome) error

	// Normalize pass over the *_norm fields of the built collections.
	NormalizeOrders(ctx context.Context, clean func(string) string) (int64, error)
	NormalizeSellers(ctx context.Context, clean func(string) string) (int64, error)

	// Source import
	DropSource(ctx context.Context, coll string) error
	InsertSourceRows(ctx context.Context, coll string, rows []interface{}) error

	// Maintenance and run records
	EnsureIndexes(ctx context.Context) error
	Counts(ctx context.Context) (map[string]int64, error)
	OrdersMissingState(ctx context.Context) (int64, error)
	CreateRun(ctx context.Context) (*model.Run, error)
	SaveRun(ctx context.Context, run *model.Run) error
	LatestRun(ctx context.Context) (*model.Run, error)

	// Lifecycle
	Close(ctx context.Context) error
}
