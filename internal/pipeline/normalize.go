package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/storelake/remodel-cli/internal/textnorm"
)

// Normalize cleans the *_norm text fields of the built collections in
// place: customer city and review comment on tp2_orders, seller city on
// tp2_sellers_geo. Cleaning is idempotent, so rerunning is harmless.
// Returns the total number of documents modified.
func (p *Pipeline) Normalize(ctx context.Context) (int64, error) {
	log := zap.L()

	orders, err := p.store.NormalizeOrders(ctx, textnorm.Clean)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: normalize orders")
	}
	log.Info("pipeline: normalized order fields", zap.Int64("modified", orders))

	sellers, err := p.store.NormalizeSellers(ctx, textnorm.Clean)
	if err != nil {
		return orders, eris.Wrap(err, "pipeline: normalize sellers")
	}
	log.Info("pipeline: normalized seller fields", zap.Int64("modified", sellers))

	return orders + sellers, nil
}
