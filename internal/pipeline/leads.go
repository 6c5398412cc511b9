package pipeline

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/storelake/remodel-cli/internal/model"
)

// BuildLeads builds and commits the tp2_leads base documents: each
// qualified lead with its closed record embedded when one exists. The
// income fields are layered on afterwards by EnrichLeads.
func (p *Pipeline) BuildLeads(ctx context.Context) (int, error) {
	qualified, err := p.store.QualifiedLeads(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read qualified leads")
	}
	closed, err := p.store.ClosedLeads(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read closed leads")
	}

	docs := buildLeads(qualified, closed)
	if err := p.store.UpsertLeads(ctx, docs); err != nil {
		return 0, eris.Wrap(err, "pipeline: write leads")
	}
	return len(docs), nil
}

// EnrichLeads computes est_monthly_income and income_best for every
// committed lead and merges them onto the base documents. It reads the
// committed tp2_orders collection, so it must only run after BuildOrders
// has finished.
func (p *Pipeline) EnrichLeads(ctx context.Context) (int, error) {
	leads, err := p.store.BuiltLeads(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read built leads")
	}
	orders, err := p.store.BuiltOrderSales(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read built orders")
	}

	window := time.Duration(p.cfg.Build.WindowDays) * 24 * time.Hour
	incomes := estimateIncomes(leads, orders, window)
	if err := p.store.MergeLeadIncomes(ctx, incomes); err != nil {
		return 0, eris.Wrap(err, "pipeline: merge lead incomes")
	}
	return len(incomes), nil
}

func buildLeads(qualified []model.QualifiedLead, closed []model.ClosedLead) []model.Lead {
	closedByMql := indexFirst(closed, func(c model.ClosedLead) (string, bool) {
		return c.MqlID, c.MqlID != ""
	})

	out := make([]model.Lead, 0, len(qualified))
	for _, q := range qualified {
		lead := model.Lead{
			MqlID:            q.MqlID,
			FirstContactDate: q.FirstContactDate,
			Origin:           q.Origin,
		}
		if c := closedByMql[q.MqlID]; c != nil {
			lead.Closed = &model.ClosedLeadEmb{
				SellerID:               c.SellerID,
				WonDate:                c.WonDate,
				BusinessSegment:        c.BusinessSegment,
				LeadType:               c.LeadType,
				DeclaredMonthlyRevenue: c.DeclaredMonthlyRevenue,
			}
		}
		out = append(out, lead)
	}
	return out
}

// sale is one line item a seller sold, pinned to its order's purchase time.
type sale struct {
	ts     time.Time
	amount float64
}

// sellerSales expands committed orders into per-seller sales. Orders whose
// purchase timestamp failed to parse carry no time and cannot fall in any
// window, so they are dropped here. Amount is price times quantity with
// quantity defaulting to 1, unlike the order-value aggregations, which use
// price plus freight unscaled.
func sellerSales(orders []model.Order) map[string][]sale {
	out := make(map[string][]sale)
	for _, o := range orders {
		if o.PurchaseTimestamp == nil {
			continue
		}
		for _, it := range o.Items {
			qty := 1
			if it.Quantity != nil && *it.Quantity > 1 {
				qty = *it.Quantity
			}
			out[it.SellerID] = append(out[it.SellerID], sale{
				ts:     *o.PurchaseTimestamp,
				amount: it.Price * float64(qty),
			})
		}
	}
	return out
}

// estimateIncomes computes the income fields for each lead. A lead without
// a closed record, or whose won date fails to parse, is left with both
// fields absent; that is policy, not an error.
func estimateIncomes(leads []model.Lead, orders []model.Order, window time.Duration) []model.LeadIncome {
	sales := sellerSales(orders)

	out := make([]model.LeadIncome, 0, len(leads))
	for _, l := range leads {
		inc := model.LeadIncome{MqlID: l.MqlID}
		if l.Closed != nil {
			if won := parseDate(l.Closed.WonDate); won != nil {
				inc.EstMonthlyIncome = windowRevenue(sales[l.Closed.SellerID], *won, window)
			}
			inc.IncomeBest = bestIncome(declaredRevenue(l.Closed.DeclaredMonthlyRevenue), inc.EstMonthlyIncome)
		}
		out = append(out, inc)
	}
	return out
}

// windowRevenue sums a seller's sales inside the half-open window
// [start, start+window). Zero matching sales yields nil, not zero: an
// estimate only exists when the seller actually sold in the window.
func windowRevenue(sales []sale, start time.Time, window time.Duration) *float64 {
	end := start.Add(window)
	var sum float64
	matched := false
	for _, s := range sales {
		if s.ts.Before(start) || !s.ts.Before(end) {
			continue
		}
		sum += s.amount
		matched = true
	}
	if !matched {
		return nil
	}
	return &sum
}

// bestIncome picks the best available income figure: declared revenue when
// positive, else the estimate when positive, else absent.
func bestIncome(declared, estimated *float64) *float64 {
	if declared != nil && *declared > 0 {
		return declared
	}
	if estimated != nil && *estimated > 0 {
		return estimated
	}
	return nil
}

// declaredRevenue coerces the declared monthly revenue to a float. The
// export may have produced a number or numeric text; anything else counts
// as absent. This is looser than the geo coordinate check on purpose:
// revenue text is parsed, coordinates are not.
func declaredRevenue(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int32:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}
