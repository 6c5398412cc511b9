package pipeline

import (
	"context"
	"sync"

	"github.com/storelake/remodel-cli/internal/model"
)

// fakeStore implements store.Store in memory. Reads of the built
// collections reflect what the pipeline upserted, which is exactly the
// read-after-write behavior the enrichment pass depends on. Method calls
// are recorded in order; errOn injects a failure into a named method.
type fakeStore struct {
	mu    sync.Mutex
	calls []string
	errOn map[string]error

	orders       []model.SourceOrder
	customers    []model.SourceCustomer
	geolocation  []model.GeolocationRow
	items        []model.SourceOrderItem
	payments     []model.SourcePayment
	reviews      []model.SourceReview
	products     []model.SourceProduct
	translations []model.CategoryTranslation
	sellers      []model.SourceSeller
	qualified    []model.QualifiedLead
	closed       []model.ClosedLead

	upsertedOrders   []model.Order
	upsertedProducts []model.Product
	upsertedSellers  []model.SellerGeo
	upsertedLeads    []model.Lead
	mergedIncomes    []model.LeadIncome

	savedRun *model.Run
}

func newFakeStore() *fakeStore {
	return &fakeStore{errOn: map[string]error{}}
}

func (f *fakeStore) record(name string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	return f.errOn[name]
}

func (f *fakeStore) callIndex(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.calls {
		if c == name {
			return i
		}
	}
	return -1
}

func (f *fakeStore) SourceOrders(context.Context) ([]model.SourceOrder, error) {
	return f.orders, f.record("SourceOrders")
}

func (f *fakeStore) SourceCustomers(context.Context) ([]model.SourceCustomer, error) {
	return f.customers, f.record("SourceCustomers")
}

func (f *fakeStore) Geolocation(context.Context) ([]model.GeolocationRow, error) {
	return f.geolocation, f.record("Geolocation")
}

func (f *fakeStore) SourceOrderItems(context.Context) ([]model.SourceOrderItem, error) {
	return f.items, f.record("SourceOrderItems")
}

func (f *fakeStore) SourcePayments(context.Context) ([]model.SourcePayment, error) {
	return f.payments, f.record("SourcePayments")
}

func (f *fakeStore) SourceReviews(context.Context) ([]model.SourceReview, error) {
	return f.reviews, f.record("SourceReviews")
}

func (f *fakeStore) SourceProducts(context.Context) ([]model.SourceProduct, error) {
	return f.products, f.record("SourceProducts")
}

func (f *fakeStore) CategoryTranslations(context.Context) ([]model.CategoryTranslation, error) {
	return f.translations, f.record("CategoryTranslations")
}

func (f *fakeStore) SourceSellers(context.Context) ([]model.SourceSeller, error) {
	return f.sellers, f.record("SourceSellers")
}

func (f *fakeStore) QualifiedLeads(context.Context) ([]model.QualifiedLead, error) {
	return f.qualified, f.record("QualifiedLeads")
}

func (f *fakeStore) ClosedLeads(context.Context) ([]model.ClosedLead, error) {
	return f.closed, f.record("ClosedLeads")
}

func (f *fakeStore) BuiltOrderSales(context.Context) ([]model.Order, error) {
	return f.upsertedOrders, f.record("BuiltOrderSales")
}

func (f *fakeStore) BuiltLeads(context.Context) ([]model.Lead, error) {
	return f.upsertedLeads, f.record("BuiltLeads")
}

func (f *fakeStore) UpsertOrders(_ context.Context, docs []model.Order) error {
	f.upsertedOrders = docs
	return f.record("UpsertOrders")
}

func (f *fakeStore) UpsertProducts(_ context.Context, docs []model.Product) error {
	f.upsertedProducts = docs
	return f.record("UpsertProducts")
}

func (f *fakeStore) UpsertSellers(_ context.Context, docs []model.SellerGeo) error {
	f.upsertedSellers = docs
	return f.record("UpsertSellers")
}

func (f *fakeStore) UpsertLeads(_ context.Context, docs []model.Lead) error {
	f.upsertedLeads = docs
	return f.record("UpsertLeads")
}

func (f *fakeStore) MergeLeadIncomes(_ context.Context, incomes []model.LeadIncome) error {
	f.mergedIncomes = incomes
	return f.record("MergeLeadIncomes")
}

func (f *fakeStore) NormalizeOrders(_ context.Context, clean func(string) string) (int64, error) {
	err := f.record("NormalizeOrders")
	if err != nil {
		return 0, err
	}
	var n int64
	for i := range f.upsertedOrders {
		c := f.upsertedOrders[i].Customer
		if c == nil || c.CityNorm == nil {
			continue
		}
		if cleaned := clean(*c.CityNorm); cleaned != *c.CityNorm {
			c.CityNorm = &cleaned
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) NormalizeSellers(_ context.Context, clean func(string) string) (int64, error) {
	err := f.record("NormalizeSellers")
	if err != nil {
		return 0, err
	}
	var n int64
	for i := range f.upsertedSellers {
		s := &f.upsertedSellers[i]
		if s.CityNorm == nil {
			continue
		}
		if cleaned := clean(*s.CityNorm); cleaned != *s.CityNorm {
			s.CityNorm = &cleaned
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DropSource(_ context.Context, coll string) error {
	return f.record("DropSource:" + coll)
}

func (f *fakeStore) InsertSourceRows(_ context.Context, coll string, _ []interface{}) error {
	return f.record("InsertSourceRows:" + coll)
}

func (f *fakeStore) EnsureIndexes(context.Context) error {
	return f.record("EnsureIndexes")
}

func (f *fakeStore) Counts(context.Context) (map[string]int64, error) {
	return map[string]int64{}, f.record("Counts")
}

func (f *fakeStore) OrdersMissingState(context.Context) (int64, error) {
	return 0, f.record("OrdersMissingState")
}

func (f *fakeStore) CreateRun(context.Context) (*model.Run, error) {
	return &model.Run{ID: "run-1", Status: model.RunStatusRunning}, f.record("CreateRun")
}

func (f *fakeStore) SaveRun(_ context.Context, run *model.Run) error {
	f.savedRun = run
	return f.record("SaveRun")
}

func (f *fakeStore) LatestRun(context.Context) (*model.Run, error) {
	return f.savedRun, f.record("LatestRun")
}

func (f *fakeStore) Close(context.Context) error {
	return f.record("Close")
}
