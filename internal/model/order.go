package model

import "time"

// Order is one document of the tp2_orders target collection: the source
// order enriched with its customer snapshot, line items, payments and
// review. Lifecycle timestamps that fail to parse stay null, matching the
// source data's convention; optional substructures are omitted entirely
// when absent, never written as null.
type Order struct {
	OrderID               string       `bson:"order_id"`
	Status                *string      `bson:"order_status,omitempty"`
	PurchaseTimestamp     *time.Time   `bson:"order_purchase_timestamp"`
	ApprovedAt            *time.Time   `bson:"order_approved_at"`
	DeliveredCarrierDate  *time.Time   `bson:"order_delivered_carrier_date"`
	DeliveredCustomerDate *time.Time   `bson:"order_delivered_customer_date"`
	EstimatedDeliveryDate *time.Time   `bson:"order_estimated_delivery_date"`
	Customer              *CustomerEmb `bson:"customer,omitempty"`
	Items                 []OrderItem  `bson:"items"`
	Payments              []Payment    `bson:"payments"`
	Review                *ReviewEmb   `bson:"review,omitempty"`
}

// CustomerEmb is the customer snapshot embedded in an Order. City and state
// are reconciled values: city falls back from the raw city to the geocoded
// city, state falls back from the explicit state to the geocoded state and
// is always upper-cased.
type CustomerEmb struct {
	UniqueID string    `bson:"customer_unique_id"`
	CityNorm *string   `bson:"customer_city_norm,omitempty"`
	State    *string   `bson:"customer_state,omitempty"`
	HasGeo   bool      `bson:"has_geo"`
	Geo      *GeoPoint `bson:"geo,omitempty"`
}

// OrderItem is one embedded line item.
type OrderItem struct {
	OrderID      string  `bson:"order_id"`
	ProductID    string  `bson:"product_id"`
	SellerID     string  `bson:"seller_id"`
	Price        float64 `bson:"price"`
	Quantity     *int    `bson:"quantity,omitempty"`
	FreightValue float64 `bson:"freight_value"`
}

// LineTotal is the item's contribution to an order's value: price plus
// freight, not scaled by quantity. The lead revenue estimator deliberately
// uses price times quantity instead; the two aggregations disagree in the
// source data's own queries and that asymmetry is kept.
func (it OrderItem) LineTotal() float64 {
	return it.Price + it.FreightValue
}

// Payment is one embedded payment record.
type Payment struct {
	OrderID      string  `bson:"order_id"`
	Type         *string `bson:"payment_type,omitempty"`
	Installments *int    `bson:"payment_installments,omitempty"`
	Value        float64 `bson:"payment_value"`
}

// ReviewEmb is the single review embedded in an Order. The comment message
// falls back to the raw variant; the normalized message starts as the first
// non-null of raw and cleaned and is rewritten by the normalize pass.
type ReviewEmb struct {
	OrderID            string  `bson:"order_id"`
	Score              *int    `bson:"review_score,omitempty"`
	CommentMessage     *string `bson:"review_comment_message,omitempty"`
	CommentMessageNorm *string `bson:"review_comment_message_norm,omitempty"`
	CreationDate       *string `bson:"review_creation_date,omitempty"`
}

// GeoPoint is a GeoJSON point plus the geolocation row it was derived
// from. It is only ever materialized when both coordinates were strictly
// numeric in the source.
type GeoPoint struct {
	Location  GeoJSON `bson:"location"`
	ZipPrefix *int    `bson:"geolocation_zip_code_prefix,omitempty"`
	City      *string `bson:"geolocation_city,omitempty"`
	State     *string `bson:"geolocation_state,omitempty"`
}

// GeoJSON is the geometry subdocument, longitude first.
type GeoJSON struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}
