package model

// Source-row structs mirror the normalized source collections. Nullable
// columns decode into pointers so a missing value stays distinguishable from
// a zero value. Latitude/longitude decode into interface{} on purpose: the
// geo-point builder needs to see the stored type, not a coerced number.

// SourceOrder is one row of the orders source collection. The lifecycle
// date fields arrive as text and are parsed during the build.
type SourceOrder struct {
	OrderID               string  `bson:"order_id"`
	CustomerID            string  `bson:"customer_id"`
	Status                *string `bson:"order_status"`
	PurchaseTimestamp     *string `bson:"order_purchase_timestamp"`
	ApprovedAt            *string `bson:"order_approved_at"`
	DeliveredCarrierDate  *string `bson:"order_delivered_carrier_date"`
	DeliveredCustomerDate *string `bson:"order_delivered_customer_date"`
	EstimatedDeliveryDate *string `bson:"order_estimated_delivery_date"`
}

// SourceCustomer is one row of the customers source collection.
type SourceCustomer struct {
	CustomerID string  `bson:"customer_id"`
	UniqueID   string  `bson:"customer_unique_id"`
	CityRaw    *string `bson:"customer_city_raw"`
	State      *string `bson:"customer_state"`
	ZipPrefix  *int    `bson:"customer_zip_code_prefix"`
}

// GeolocationRow is one row of the geolocation source collection.
type GeolocationRow struct {
	ZipPrefix *int        `bson:"geolocation_zip_code_prefix"`
	City      *string     `bson:"geolocation_city"`
	State     *string     `bson:"geolocation_state"`
	Lat       interface{} `bson:"geolocation_lat"`
	Lng       interface{} `bson:"geolocation_lng"`
}

// SourceOrderItem is one row of the order_items source collection.
type SourceOrderItem struct {
	OrderID      string  `bson:"order_id"`
	ProductID    string  `bson:"product_id"`
	SellerID     string  `bson:"seller_id"`
	Price        float64 `bson:"price"`
	Quantity     *int    `bson:"quantity"`
	FreightValue float64 `bson:"freight_value"`
}

// SourcePayment is one row of the order_payments source collection.
type SourcePayment struct {
	OrderID      string  `bson:"order_id"`
	Type         *string `bson:"payment_type"`
	Installments *int    `bson:"payment_installments"`
	Value        float64 `bson:"payment_value"`
}

// SourceReview is one row of the order_reviews source collection. The
// comment text carries a cleaned and a raw variant; either may be missing.
type SourceReview struct {
	OrderID        string  `bson:"order_id"`
	Score          *int    `bson:"review_score"`
	CommentMessage *string `bson:"review_comment_message"`
	CommentRaw     *string `bson:"review_comment_message_raw"`
	CreationDate   *string `bson:"review_creation_date"`
}

// SourceProduct is one row of the products source collection.
type SourceProduct struct {
	ProductID    string  `bson:"product_id"`
	CategoryName *string `bson:"product_category_name"`
}

// CategoryTranslation maps a category name to its English translation.
type CategoryTranslation struct {
	CategoryName string  `bson:"product_category_name"`
	English      *string `bson:"product_category_name_english"`
}

// SourceSeller is one row of the sellers source collection.
type SourceSeller struct {
	SellerID  string  `bson:"seller_id"`
	CityRaw   *string `bson:"seller_city_raw"`
	ZipPrefix *int    `bson:"seller_zip_code_prefix"`
}

// QualifiedLead is one row of the leads_qualified source collection.
type QualifiedLead struct {
	MqlID            string  `bson:"mql_id"`
	FirstContactDate *string `bson:"first_contact_date"`
	Origin           *string `bson:"origin"`
}

// ClosedLead is one row of the leads_closed source collection. Declared
// revenue arrives in whatever type the export produced (number or text) and
// is coerced during enrichment.
type ClosedLead struct {
	MqlID                  string      `bson:"mql_id"`
	SellerID               string      `bson:"seller_id"`
	WonDate                *string     `bson:"won_date"`
	BusinessSegment        *string     `bson:"business_segment"`
	LeadType               *string     `bson:"lead_type"`
	DeclaredMonthlyRevenue interface{} `bson:"declared_monthly_revenue"`
}
