package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/storelake/remodel-cli/internal/config"
	"github.com/storelake/remodel-cli/internal/model"
)

// Mongo implements Store on a MongoDB database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	batch  int
}

// NewMongo connects to the configured MongoDB instance and verifies the
// connection with a ping.
func NewMongo(ctx context.Context, cfg config.MongoConfig, batchSize int) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, eris.Wrap(err, "mongo: connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, eris.Wrap(err, "mongo: ping")
	}
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Mongo{
		client: client,
		db:     client.Database(cfg.Database),
		batch:  batchSize,
	}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return eris.Wrap(err, "mongo: disconnect")
	}
	return nil
}

func readAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, eris.Wrapf(err, "mongo: find %s", coll.Name())
	}
	defer cur.Close(ctx)

	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, eris.Wrapf(err, "mongo: decode %s", coll.Name())
	}
	return out, nil
}

func (m *Mongo) SourceOrders(ctx context.Context) ([]model.SourceOrder, error) {
	return readAll[model.SourceOrder](ctx, m.db.Collection(SrcOrders), bson.D{})
}

func (m *Mongo) SourceCustomers(ctx context.Context) ([]model.SourceCustomer, error) {
	return readAll[model.SourceCustomer](ctx, m.db.Collection(SrcCustomers), bson.D{})
}

func (m *Mongo) Geolocation(ctx context.Context) ([]model.GeolocationRow, error) {
	return readAll[model.GeolocationRow](ctx, m.db.Collection(SrcGeolocation), bson.D{})
}

func (m *Mongo) SourceOrderItems(ctx context.Context) ([]model.SourceOrderItem, error) {
	return readAll[model.SourceOrderItem](ctx, m.db.Collection(SrcOrderItems), bson.D{})
}

func (m *Mongo) SourcePayments(ctx context.Context) ([]model.SourcePayment, error) {
	return readAll[model.SourcePayment](ctx, m.db.Collection(SrcPayments), bson.D{})
}

func (m *Mongo) SourceReviews(ctx context.Context) ([]model.SourceReview, error) {
	return readAll[model.SourceReview](ctx, m.db.Collection(SrcReviews), bson.D{})
}

func (m *Mongo) SourceProducts(ctx context.Context) ([]model.SourceProduct, error) {
	return readAll[model.SourceProduct](ctx, m.db.Collection(SrcProducts), bson.D{})
}

func (m *Mongo) CategoryTranslations(ctx context.Context) ([]model.CategoryTranslation, error) {
	return readAll[model.CategoryTranslation](ctx, m.db.Collection(SrcCategoryTranslation), bson.D{})
}

func (m *Mongo) SourceSellers(ctx context.Context) ([]model.SourceSeller, error) {
	return readAll[model.SourceSeller](ctx, m.db.Collection(SrcSellers), bson.D{})
}

func (m *Mongo) QualifiedLeads(ctx context.Context) ([]model.QualifiedLead, error) {
	return readAll[model.QualifiedLead](ctx, m.db.Collection(SrcLeadsQualified), bson.D{})
}

func (m *Mongo) ClosedLeads(ctx context.Context) ([]model.ClosedLead, error) {
	return readAll[model.ClosedLead](ctx, m.db.Collection(SrcLeadsClosed), bson.D{})
}

// BuiltOrderSales reads the committed tp2_orders projection the revenue
// estimator needs: purchase timestamp plus seller, price and quantity per
// item.
func (m *Mongo) BuiltOrderSales(ctx context.Context) ([]model.Order, error) {
	proj := bson.D{
		{Key: "order_id", Value: 1},
		{Key: "order_purchase_timestamp", Value: 1},
		{Key: "items.seller_id", Value: 1},
		{Key: "items.price", Value: 1},
		{Key: "items.quantity", Value: 1},
	}
	return readAll[model.Order](ctx, m.db.Collection(CollOrders), bson.D{}, options.Find().SetProjection(proj))
}

// BuiltLeads reads the committed base leads for the enrichment pass.
func (m *Mongo) BuiltLeads(ctx context.Context) ([]model.Lead, error) {
	proj := bson.D{
		{Key: "mql_id", Value: 1},
		{Key: "leads_closed_emb", Value: 1},
	}
	return readAll[model.Lead](ctx, m.db.Collection(CollLeads), bson.D{}, options.Find().SetProjection(proj))
}

// bulkWrite executes write models in unordered batches and returns the
// number of modified documents.
func (m *Mongo) bulkWrite(ctx context.Context, coll string, models []mongo.WriteModel) (int64, error) {
	var modified int64
	for start := 0; start < len(models); start += m.batch {
		end := min(start+m.batch, len(models))
		res, err := m.db.Collection(coll).BulkWrite(ctx, models[start:end], options.BulkWrite().SetOrdered(false))
		if err != nil {
			return modified, eris.Wrapf(err, "mongo: bulk write %s", coll)
		}
		modified += res.ModifiedCount
	}
	return modified, nil
}

func replaceModel(keyField, key string, doc interface{}) mongo.WriteModel {
	return mongo.NewReplaceOneModel().
		SetFilter(bson.D{{Key: keyField, Value: key}}).
		SetReplacement(doc).
		SetUpsert(true)
}

func (m *Mongo) UpsertOrders(ctx context.Context, docs []model.Order) error {
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		models = append(models, replaceModel("order_id", d.OrderID, d))
	}
	_, err := m.bulkWrite(ctx, CollOrders, models)
	return err
}

func (m *Mongo) UpsertProducts(ctx context.Context, docs []model.Product) error {
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		models = append(models, replaceModel("product_id", d.ProductID, d))
	}
	_, err := m.bulkWrite(ctx, CollProducts, models)
	return err
}

func (m *Mongo) UpsertSellers(ctx context.Context, docs []model.SellerGeo) error {
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		models = append(models, replaceModel("seller_id", d.SellerID, d))
	}
	_, err := m.bulkWrite(ctx, CollSellersGeo, models)
	return err
}

func (m *Mongo) UpsertLeads(ctx context.Context, docs []model.Lead) error {
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		models = append(models, replaceModel("mql_id", d.MqlID, d))
	}
	_, err := m.bulkWrite(ctx, CollLeads, models)
	return err
}

// MergeLeadIncomes layers the computed income fields onto the base lead
// documents. Present fields are $set, absent ones $unset, so a re-run
// converges to the same document instead of leaving stale values behind.
func (m *Mongo) MergeLeadIncomes(ctx context.Context, incomes []model.LeadIncome) error {
	models := make([]mongo.WriteModel, 0, len(incomes))
	for _, inc := range incomes {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "mql_id", Value: inc.MqlID}}).
			SetUpdate(leadIncomeUpdate(inc)).
			SetUpsert(true))
	}
	_, err := m.bulkWrite(ctx, CollLeads, models)
	return err
}

func leadIncomeUpdate(inc model.LeadIncome) bson.D {
	set := bson.D{}
	unset := bson.D{}
	if inc.EstMonthlyIncome != nil {
		set = append(set, bson.E{Key: "est_monthly_income", Value: *inc.EstMonthlyIncome})
	} else {
		unset = append(unset, bson.E{Key: "est_monthly_income", Value: ""})
	}
	if inc.IncomeBest != nil {
		set = append(set, bson.E{Key: "income_best", Value: *inc.IncomeBest})
	} else {
		unset = append(unset, bson.E{Key: "income_best", Value: ""})
	}

	update := bson.D{}
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update
}

type orderNormDoc struct {
	OrderID  string `bson:"order_id"`
	Customer *struct {
		CityNorm *string `bson:"customer_city_norm"`
	} `bson:"customer"`
	Review *struct {
		CommentNorm *string `bson:"review_comment_message_norm"`
	} `bson:"review"`
}

// NormalizeOrders rewrites customer.customer_city_norm and
// review.review_comment_message_norm in place through clean. Returns the
// number of documents modified.
func (m *Mongo) NormalizeOrders(ctx context.Context, clean func(string) string) (int64, error) {
	proj := bson.D{
		{Key: "order_id", Value: 1},
		{Key: "customer.customer_city_norm", Value: 1},
		{Key: "review.review_comment_message_norm", Value: 1},
	}
	docs, err := readAll[orderNormDoc](ctx, m.db.Collection(CollOrders), bson.D{}, options.Find().SetProjection(proj))
	if err != nil {
		return 0, err
	}

	var models []mongo.WriteModel
	for _, d := range docs {
		set := bson.D{}
		if d.Customer != nil && d.Customer.CityNorm != nil {
			if cleaned := clean(*d.Customer.CityNorm); cleaned != *d.Customer.CityNorm {
				set = append(set, bson.E{Key: "customer.customer_city_norm", Value: cleaned})
			}
		}
		if d.Review != nil && d.Review.CommentNorm != nil {
			if cleaned := clean(*d.Review.CommentNorm); cleaned != *d.Review.CommentNorm {
				set = append(set, bson.E{Key: "review.review_comment_message_norm", Value: cleaned})
			}
		}
		if len(set) == 0 {
			continue
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "order_id", Value: d.OrderID}}).
			SetUpdate(bson.D{{Key: "$set", Value: set}}))
	}
	return m.bulkWrite(ctx, CollOrders, models)
}

type sellerNormDoc struct {
	SellerID string  `bson:"seller_id"`
	CityNorm *string `bson:"seller_city_norm"`
}

// NormalizeSellers rewrites seller_city_norm in place through clean.
func (m *Mongo) NormalizeSellers(ctx context.Context, clean func(string) string) (int64, error) {
	proj := bson.D{
		{Key: "seller_id", Value: 1},
		{Key: "seller_city_norm", Value: 1},
	}
	docs, err := readAll[sellerNormDoc](ctx, m.db.Collection(CollSellersGeo), bson.D{}, options.Find().SetProjection(proj))
	if err != nil {
		return 0, err
	}

	var models []mongo.WriteModel
	for _, d := range docs {
		if d.CityNorm == nil {
			continue
		}
		cleaned := clean(*d.CityNorm)
		if cleaned == *d.CityNorm {
			continue
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "seller_id", Value: d.SellerID}}).
			SetUpdate(bson.D{{Key: "$set", Value: bson.D{{Key: "seller_city_norm", Value: cleaned}}}}))
	}
	return m.bulkWrite(ctx, CollSellersGeo, models)
}

// DropSource removes a source collection ahead of a fresh import.
func (m *Mongo) DropSource(ctx context.Context, coll string) error {
	if err := m.db.Collection(coll).Drop(ctx); err != nil {
		return eris.Wrapf(err, "mongo: drop %s", coll)
	}
	return nil
}

// InsertSourceRows appends imported rows to a source collection.
func (m *Mongo) InsertSourceRows(ctx context.Context, coll string, rows []interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	opts := options.InsertMany().SetOrdered(false)
	if _, err := m.db.Collection(coll).InsertMany(ctx, rows, opts); err != nil {
		return eris.Wrapf(err, "mongo: insert %s", coll)
	}
	return nil
}

// indexModels is the full index set: unique target keys, working indexes
// on the sources, and the post-build query indexes (timestamp, text,
// geospatial).
func indexModels() map[string][]mongo.IndexModel {
	unique := options.Index().SetUnique(true)

	return map[string][]mongo.IndexModel{
		CollOrders: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "order_purchase_timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "order_delivered_carrier_date", Value: 1}}},
			{Keys: bson.D{{Key: "order_delivered_customer_date", Value: 1}}},
			{Keys: bson.D{{Key: "items.seller_id", Value: 1}, {Key: "order_purchase_timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "customer.customer_state", Value: 1}, {Key: "order_purchase_timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "customer.customer_unique_id", Value: 1}}},
			{Keys: bson.D{{Key: "customer.geo.location", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "customer.geo.geolocation_state", Value: 1}, {Key: "order_purchase_timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "review.review_comment_message", Value: "text"}}},
		},
		CollProducts: {
			{Keys: bson.D{{Key: "product_id", Value: 1}}, Options: unique},
		},
		CollSellersGeo: {
			{Keys: bson.D{{Key: "seller_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "geo.location", Value: "2dsphere"}}},
		},
		CollLeads: {
			{Keys: bson.D{{Key: "mql_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "first_contact_date", Value: 1}}},
			{Keys: bson.D{{Key: "leads_closed_emb.won_date", Value: 1}}},
		},
		SrcOrders:         {{Keys: bson.D{{Key: "order_id", Value: 1}}}},
		SrcOrderItems:     {{Keys: bson.D{{Key: "order_id", Value: 1}}}},
		SrcPayments:       {{Keys: bson.D{{Key: "order_id", Value: 1}}}},
		SrcReviews:        {{Keys: bson.D{{Key: "order_id", Value: 1}}}},
		SrcProducts:       {{Keys: bson.D{{Key: "product_id", Value: 1}}}},
		SrcSellers:        {{Keys: bson.D{{Key: "seller_id", Value: 1}}}},
		SrcLeadsClosed:    {{Keys: bson.D{{Key: "mql_id", Value: 1}}}},
		SrcLeadsQualified: {{Keys: bson.D{{Key: "mql_id", Value: 1}}}},
		SrcGeolocation:    {{Keys: bson.D{{Key: "geolocation_zip_code_prefix", Value: 1}}}},
		SrcCustomers: {
			{Keys: bson.D{{Key: "customer_id", Value: 1}}},
			{Keys: bson.D{{Key: "customer_zip_code_prefix", Value: 1}}},
		},
	}
}

// EnsureIndexes creates the full index set. CreateMany is a no-op for
// indexes that already exist, so this is safe to run every time.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	for coll, indexes := range indexModels() {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return eris.Wrapf(err, "mongo: create indexes %s", coll)
		}
	}
	return nil
}

// Counts returns the document count of each target collection.
func (m *Mongo) Counts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, 4)
	for _, coll := range []string{CollOrders, CollProducts, CollSellersGeo, CollLeads} {
		n, err := m.db.Collection(coll).CountDocuments(ctx, bson.D{})
		if err != nil {
			return nil, eris.Wrapf(err, "mongo: count %s", coll)
		}
		out[coll] = n
	}
	return out, nil
}

// OrdersMissingState counts built orders whose customer state could not be
// resolved from any candidate source.
func (m *Mongo) OrdersMissingState(ctx context.Context) (int64, error) {
	filter := bson.M{"customer.customer_state": bson.M{"$in": []interface{}{nil, ""}}}
	n, err := m.db.Collection(CollOrders).CountDocuments(ctx, filter)
	if err != nil {
		return 0, eris.Wrap(err, "mongo: count orders missing state")
	}
	return n, nil
}

func (m *Mongo) CreateRun(ctx context.Context) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.NewString(),
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
		Stages:    []model.StageResult{},
	}
	if _, err := m.db.Collection(CollRuns).InsertOne(ctx, run); err != nil {
		return nil, eris.Wrap(err, "mongo: insert run")
	}
	return run, nil
}

func (m *Mongo) SaveRun(ctx context.Context, run *model.Run) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := m.db.Collection(CollRuns).ReplaceOne(ctx, bson.D{{Key: "_id", Value: run.ID}}, run, opts); err != nil {
		return eris.Wrap(err, "mongo: save run")
	}
	return nil
}

func (m *Mongo) LatestRun(ctx context.Context) (*model.Run, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})
	var run model.Run
	err := m.db.Collection(CollRuns).FindOne(ctx, bson.D{}, opts).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "mongo: latest run")
	}
	return &run, nil
}
