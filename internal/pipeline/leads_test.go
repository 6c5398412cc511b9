package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelake/remodel-cli/internal/model"
)

const window30d = 30 * 24 * time.Hour

func saleOrder(ts time.Time, sellerID string, price float64, qty *int) model.Order {
	return model.Order{
		OrderID:           "o-" + ts.Format("20060102"),
		PurchaseTimestamp: &ts,
		Items:             []model.OrderItem{{SellerID: sellerID, Price: price, Quantity: qty}},
	}
}

func closedLead(mql, seller string, wonDate *string, declared interface{}) model.Lead {
	return model.Lead{
		MqlID: mql,
		Closed: &model.ClosedLeadEmb{
			SellerID:               seller,
			WonDate:                wonDate,
			DeclaredMonthlyRevenue: declared,
		},
	}
}

func TestBuildLeadsEmbedsClosedRecord(t *testing.T) {
	qualified := []model.QualifiedLead{
		{MqlID: "m1", FirstContactDate: ptr("2018-01-01"), Origin: ptr("organic_search")},
		{MqlID: "m2", Origin: ptr("paid_search")},
	}
	closed := []model.ClosedLead{
		{MqlID: "m1", SellerID: "s1", WonDate: ptr("2018-02-01 00:00:00"), BusinessSegment: ptr("pet")},
	}

	leads := buildLeads(qualified, closed)
	require.Len(t, leads, 2)

	require.NotNil(t, leads[0].Closed)
	assert.Equal(t, "s1", leads[0].Closed.SellerID)
	assert.Equal(t, "pet", *leads[0].Closed.BusinessSegment)

	assert.Nil(t, leads[1].Closed)
}

func TestBuildLeadsDuplicateClosedPicksFirst(t *testing.T) {
	closed := []model.ClosedLead{
		{MqlID: "m1", SellerID: "first"},
		{MqlID: "m1", SellerID: "second"},
	}
	leads := buildLeads([]model.QualifiedLead{{MqlID: "m1"}}, closed)

	require.NotNil(t, leads[0].Closed)
	assert.Equal(t, "first", leads[0].Closed.SellerID)
}

func TestEstimateIncomesWindow(t *testing.T) {
	lead := closedLead("m1", "s1", ptr("2018-01-01 00:00:00"), nil)

	t.Run("order inside window counts price times quantity", func(t *testing.T) {
		orders := []model.Order{saleOrder(datetime(2018, 1, 15, 0, 0), "s1", 100, ptr(2))}
		incomes := estimateIncomes([]model.Lead{lead}, orders, window30d)

		require.Len(t, incomes, 1)
		require.NotNil(t, incomes[0].EstMonthlyIncome)
		assert.InDelta(t, 200, *incomes[0].EstMonthlyIncome, 0.001)
	})

	t.Run("order outside window contributes nothing", func(t *testing.T) {
		orders := []model.Order{saleOrder(datetime(2018, 2, 5, 0, 0), "s1", 100, ptr(2))}
		incomes := estimateIncomes([]model.Lead{lead}, orders, window30d)

		assert.Nil(t, incomes[0].EstMonthlyIncome)
	})

	t.Run("window start is inclusive", func(t *testing.T) {
		orders := []model.Order{saleOrder(datetime(2018, 1, 1, 0, 0), "s1", 80, nil)}
		incomes := estimateIncomes([]model.Lead{lead}, orders, window30d)

		require.NotNil(t, incomes[0].EstMonthlyIncome)
		assert.InDelta(t, 80, *incomes[0].EstMonthlyIncome, 0.001)
	})

	t.Run("window end is exclusive", func(t *testing.T) {
		orders := []model.Order{saleOrder(datetime(2018, 1, 31, 0, 0), "s1", 80, nil)}
		incomes := estimateIncomes([]model.Lead{lead}, orders, window30d)

		assert.Nil(t, incomes[0].EstMonthlyIncome)
	})

	t.Run("other sellers' items are filtered out", func(t *testing.T) {
		orders := []model.Order{
			saleOrder(datetime(2018, 1, 10, 0, 0), "s1", 100, nil),
			saleOrder(datetime(2018, 1, 11, 0, 0), "other", 999, nil),
		}
		incomes := estimateIncomes([]model.Lead{lead}, orders, window30d)

		require.NotNil(t, incomes[0].EstMonthlyIncome)
		assert.InDelta(t, 100, *incomes[0].EstMonthlyIncome, 0.001)
	})
}

func TestEstimateIncomesQuantityDefaults(t *testing.T) {
	lead := closedLead("m1", "s1", ptr("2018-01-01 00:00:00"), nil)

	tests := []struct {
		name     string
		qty      *int
		expected float64
	}{
		{"absent quantity counts as one", nil, 100},
		{"zero quantity counts as one", ptr(0), 100},
		{"quantity scales", ptr(3), 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := []model.Order{saleOrder(datetime(2018, 1, 10, 0, 0), "s1", 100, tt.qty)}
			incomes := estimateIncomes([]model.Lead{lead}, orders, window30d)

			require.NotNil(t, incomes[0].EstMonthlyIncome)
			assert.InDelta(t, tt.expected, *incomes[0].EstMonthlyIncome, 0.001)
		})
	}
}

func TestEstimateIncomesSkipsUnparseableWonDate(t *testing.T) {
	lead := closedLead("m1", "s1", ptr("garbage"), 500.0)
	orders := []model.Order{saleOrder(datetime(2018, 1, 10, 0, 0), "s1", 100, nil)}

	incomes := estimateIncomes([]model.Lead{lead}, orders, window30d)

	assert.Nil(t, incomes[0].EstMonthlyIncome)
	// declared revenue still drives income_best
	require.NotNil(t, incomes[0].IncomeBest)
	assert.InDelta(t, 500, *incomes[0].IncomeBest, 0.001)
}

func TestEstimateIncomesNoClosedRecord(t *testing.T) {
	incomes := estimateIncomes([]model.Lead{{MqlID: "m1"}}, nil, window30d)

	require.Len(t, incomes, 1)
	assert.Nil(t, incomes[0].EstMonthlyIncome)
	assert.Nil(t, incomes[0].IncomeBest)
}

func TestEstimateIncomesIgnoresOrdersWithoutPurchaseTime(t *testing.T) {
	lead := closedLead("m1", "s1", ptr("2018-01-01 00:00:00"), nil)
	orders := []model.Order{{
		OrderID: "o1",
		Items:   []model.OrderItem{{SellerID: "s1", Price: 100}},
	}}

	incomes := estimateIncomes([]model.Lead{lead}, orders, window30d)
	assert.Nil(t, incomes[0].EstMonthlyIncome)
}

func TestBestIncomeSelection(t *testing.T) {
	tests := []struct {
		name      string
		declared  *float64
		estimated *float64
		expected  *float64
	}{
		{"declared wins", ptr(500.0), ptr(200.0), ptr(500.0)},
		{"zero declared falls back to estimate", ptr(0.0), ptr(200.0), ptr(200.0)},
		{"absent declared falls back to estimate", nil, ptr(200.0), ptr(200.0)},
		{"negative estimate is not best", nil, ptr(-5.0), nil},
		{"both absent", nil, nil, nil},
		{"both zero", ptr(0.0), ptr(0.0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bestIncome(tt.declared, tt.estimated)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.InDelta(t, *tt.expected, *got, 0.001)
			}
		})
	}
}

func TestDeclaredRevenueCoercion(t *testing.T) {
	tests := []struct {
		name     string
		in       interface{}
		expected *float64
	}{
		{"float64", 1200.5, ptr(1200.5)},
		{"int32", int32(300), ptr(300.0)},
		{"int64", int64(400), ptr(400.0)},
		{"numeric string", "250.75", ptr(250.75)},
		{"padded numeric string", " 99 ", ptr(99.0)},
		{"garbage string", "lots", nil},
		{"nil", nil, nil},
		{"bool", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := declaredRevenue(tt.in)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.InDelta(t, *tt.expected, *got, 0.001)
			}
		})
	}
}

// The order-value aggregations use price plus freight without quantity
// scaling, while the revenue estimator multiplies price by quantity. Both
// behaviors are pinned here so neither gets unified by accident.
func TestLineTotalAndEstimatorDisagreeOnPurpose(t *testing.T) {
	item := model.OrderItem{SellerID: "s1", Price: 100, Quantity: ptr(2), FreightValue: 10}
	assert.InDelta(t, 110, item.LineTotal(), 0.001)

	lead := closedLead("m1", "s1", ptr("2018-01-01 00:00:00"), nil)
	ts := datetime(2018, 1, 10, 0, 0)
	orders := []model.Order{{OrderID: "o1", PurchaseTimestamp: &ts, Items: []model.OrderItem{item}}}
	incomes := estimateIncomes([]model.Lead{lead}, orders, window30d)

	require.NotNil(t, incomes[0].EstMonthlyIncome)
	assert.InDelta(t, 200, *incomes[0].EstMonthlyIncome, 0.001)
}
