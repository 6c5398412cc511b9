package model

// Product is one document of the tp2_products target collection. Category
// is the English translation of the category name; it is omitted when no
// translation row exists.
type Product struct {
	ProductID    string  `bson:"product_id"`
	CategoryName *string `bson:"product_category_name,omitempty"`
	Category     *string `bson:"category,omitempty"`
}

// SellerGeo is one document of the tp2_sellers_geo target collection.
type SellerGeo struct {
	SellerID  string    `bson:"seller_id"`
	ZipPrefix *int      `bson:"seller_zip_code_prefix,omitempty"`
	CityNorm  *string   `bson:"seller_city_norm,omitempty"`
	HasGeo    bool      `bson:"has_geo"`
	Geo       *GeoPoint `bson:"geo,omitempty"`
}
