package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/storelake/remodel-cli/internal/model"
)

// BuildProducts builds and commits tp2_products: each product with the
// English translation of its category, when one exists.
func (p *Pipeline) BuildProducts(ctx context.Context) (int, error) {
	products, err := p.store.SourceProducts(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read products")
	}
	translations, err := p.store.CategoryTranslations(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read category translations")
	}

	docs := buildProducts(products, translations)
	if err := p.store.UpsertProducts(ctx, docs); err != nil {
		return 0, eris.Wrap(err, "pipeline: write products")
	}
	return len(docs), nil
}

func buildProducts(products []model.SourceProduct, translations []model.CategoryTranslation) []model.Product {
	trByName := indexFirst(translations, func(t model.CategoryTranslation) (string, bool) {
		return t.CategoryName, t.CategoryName != ""
	})

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		doc := model.Product{
			ProductID:    p.ProductID,
			CategoryName: p.CategoryName,
		}
		if p.CategoryName != nil {
			if tr := trByName[*p.CategoryName]; tr != nil {
				doc.Category = tr.English
			}
		}
		out = append(out, doc)
	}
	return out
}
