package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/storelake/remodel-cli/internal/model"
)

// BuildOrders builds and commits tp2_orders: each source order with its
// customer snapshot (geo-resolved), line items, payments and review
// embedded. Returns the number of documents written.
func (p *Pipeline) BuildOrders(ctx context.Context) (int, error) {
	orders, err := p.store.SourceOrders(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read orders")
	}
	customers, err := p.store.SourceCustomers(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read customers")
	}
	geo, err := p.store.Geolocation(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read geolocation")
	}
	items, err := p.store.SourceOrderItems(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read order items")
	}
	payments, err := p.store.SourcePayments(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read payments")
	}
	reviews, err := p.store.SourceReviews(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read reviews")
	}

	docs := buildOrders(orders, customers, geo, items, payments, reviews)
	if err := p.store.UpsertOrders(ctx, docs); err != nil {
		return 0, eris.Wrap(err, "pipeline: write orders")
	}
	return len(docs), nil
}

func buildOrders(
	orders []model.SourceOrder,
	customers []model.SourceCustomer,
	geo []model.GeolocationRow,
	items []model.SourceOrderItem,
	payments []model.SourcePayment,
	reviews []model.SourceReview,
) []model.Order {
	custByID := indexFirst(customers, func(c model.SourceCustomer) (string, bool) {
		return c.CustomerID, c.CustomerID != ""
	})
	geoByZip := indexGeoByZip(geo)
	itemsByOrder := indexAll(items, func(it model.SourceOrderItem) (string, bool) {
		return it.OrderID, it.OrderID != ""
	})
	paymentsByOrder := indexAll(payments, func(pay model.SourcePayment) (string, bool) {
		return pay.OrderID, pay.OrderID != ""
	})
	reviewByOrder := indexFirst(reviews, func(r model.SourceReview) (string, bool) {
		return r.OrderID, r.OrderID != ""
	})

	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, model.Order{
			OrderID:               o.OrderID,
			Status:                o.Status,
			PurchaseTimestamp:     parseDate(o.PurchaseTimestamp),
			ApprovedAt:            parseDate(o.ApprovedAt),
			DeliveredCarrierDate:  parseDate(o.DeliveredCarrierDate),
			DeliveredCustomerDate: parseDate(o.DeliveredCustomerDate),
			EstimatedDeliveryDate: parseDate(o.EstimatedDeliveryDate),
			Customer:              buildCustomer(custByID[o.CustomerID], geoByZip),
			Items:                 embedItems(itemsByOrder[o.OrderID]),
			Payments:              embedPayments(paymentsByOrder[o.OrderID]),
			Review:                buildReview(reviewByOrder[o.OrderID]),
		})
	}
	return out
}

func indexGeoByZip(geo []model.GeolocationRow) map[int]*model.GeolocationRow {
	return indexFirst(geo, func(g model.GeolocationRow) (int, bool) {
		if g.ZipPrefix == nil {
			return 0, false
		}
		return *g.ZipPrefix, true
	})
}

// buildCustomer resolves the embedded customer snapshot. City precedence:
// raw city, else geocoded city. State precedence: explicit state, else
// geocoded state, always upper-cased.
func buildCustomer(c *model.SourceCustomer, geoByZip map[int]*model.GeolocationRow) *model.CustomerEmb {
	if c == nil {
		return nil
	}

	var geoRow *model.GeolocationRow
	if c.ZipPrefix != nil {
		geoRow = geoByZip[*c.ZipPrefix]
	}
	var geoCity, geoState *string
	if geoRow != nil {
		geoCity = geoRow.City
		geoState = geoRow.State
	}

	emb := &model.CustomerEmb{
		UniqueID: c.UniqueID,
		CityNorm: firstNonNil(c.CityRaw, geoCity),
		State:    upper(firstNonNil(c.State, geoState)),
	}
	if gp := buildGeoPoint(geoRow); gp != nil {
		emb.Geo = gp
		emb.HasGeo = true
	}
	return emb
}

func upper(s *string) *string {
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}

func embedItems(rows []model.SourceOrderItem) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.OrderItem{
			OrderID:      r.OrderID,
			ProductID:    r.ProductID,
			SellerID:     r.SellerID,
			Price:        r.Price,
			Quantity:     r.Quantity,
			FreightValue: r.FreightValue,
		})
	}
	return out
}

func embedPayments(rows []model.SourcePayment) []model.Payment {
	out := make([]model.Payment, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Payment{
			OrderID:      r.OrderID,
			Type:         r.Type,
			Installments: r.Installments,
			Value:        r.Value,
		})
	}
	return out
}

// buildReview embeds at most one review. The message falls back from the
// cleaned text to the raw text; the normalized message starts as the first
// non-null of raw and cleaned (the normalize pass rewrites it later). A
// pre-existing normalized value would take precedence over both, but the
// source rows never carry one, so the chain starts at raw.
func buildReview(r *model.SourceReview) *model.ReviewEmb {
	if r == nil {
		return nil
	}
	return &model.ReviewEmb{
		OrderID:            r.OrderID,
		Score:              r.Score,
		CommentMessage:     firstNonNil(r.CommentMessage, r.CommentRaw),
		CommentMessageNorm: firstNonNil(r.CommentRaw, r.CommentMessage),
		CreationDate:       r.CreationDate,
	}
}
