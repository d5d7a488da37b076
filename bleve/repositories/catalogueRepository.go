package repositories

import (
	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/db/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Each tenant gets its own catalogue index so searches never cross
// tenant boundaries.
func catalogueIndexName(tenantID uuid.UUID) string {
	return "catalogue_" + tenantID.String()
}

type catalogueItemDocument struct {
	ID          string `json:"id"`
	HexCode     string `json:"hex_code"`
	Designation string `json:"designation"`
	Matiere     string `json:"matiere"`
	Unite       string `json:"unite"`
}

func newCatalogueItemDocument(item models.CatalogueItem) catalogueItemDocument {
	doc := catalogueItemDocument{
		ID:          item.ID.String(),
		HexCode:     item.HexCode,
		Designation: item.Designation,
	}
	if item.Matiere != nil {
		doc.Matiere = *item.Matiere
	}
	if item.Unite != nil {
		doc.Unite = *item.Unite
	}
	return doc
}

// SearchCatalogueItems combines exact, prefix and fuzzy matching over
// the searchable catalogue fields, exact matches ranked highest.
func (r *BleveRepository) SearchCatalogueItems(tenantID uuid.UUID, queryString string) (*bleve.SearchResult, error) {
	booleanQuery := bleve.NewBooleanQuery()

	fieldsToSearch := []string{"hex_code", "designation", "matiere", "unite"}

	for _, field := range fieldsToSearch {
		fieldMatchQuery := bleve.NewMatchQuery(queryString)
		fieldMatchQuery.SetField(field)
		fieldMatchQuery.SetBoost(3.0)
		booleanQuery.AddShould(fieldMatchQuery)

		fieldPrefixQuery := bleve.NewPrefixQuery(queryString)
		fieldPrefixQuery.SetField(field)
		fieldPrefixQuery.SetBoost(2.0)
		booleanQuery.AddShould(fieldPrefixQuery)

		fieldFuzzyQuery := bleve.NewFuzzyQuery(queryString)
		fieldFuzzyQuery.SetField(field)
		fieldFuzzyQuery.SetFuzziness(1)
		fieldFuzzyQuery.SetBoost(1.0)
		booleanQuery.AddShould(fieldFuzzyQuery)
	}

	booleanQuery.SetMinShould(1)

	return r.indexer.SearchIndex(catalogueIndexName(tenantID), booleanQuery, 20)
}

func (r *BleveRepository) IndexSingleCatalogueItem(item models.CatalogueItem) error {
	err := r.indexer.IndexDocument(catalogueIndexName(item.TenantID), item.ID.String(), newCatalogueItemDocument(item))
	if err != nil {
		config.Logger.Error("Failed to index catalogue item into Bleve",
			zap.Error(err),
			zap.String("item_id", item.ID.String()),
			zap.String("hex_code", item.HexCode),
		)
		return err
	}

	config.Logger.Debug("Indexed catalogue item into Bleve",
		zap.String("item_id", item.ID.String()),
		zap.String("hex_code", item.HexCode),
	)
	return nil
}

// UpdateCatalogueItem deletes the existing document and re-indexes the
// updated item.
func (r *BleveRepository) UpdateCatalogueItem(item models.CatalogueItem) error {
	if err := r.indexer.DeleteDocument(catalogueIndexName(item.TenantID), item.ID.String()); err != nil {
		config.Logger.Error("Failed to delete catalogue item document for update in Bleve",
			zap.Error(err),
			zap.String("item_id", item.ID.String()),
		)
		return err
	}
	return r.IndexSingleCatalogueItem(item)
}

func (r *BleveRepository) DeleteCatalogueItem(tenantID uuid.UUID, itemID string) error {
	err := r.indexer.DeleteDocument(catalogueIndexName(tenantID), itemID)
	if err != nil {
		config.Logger.Error("Failed to delete catalogue item from Bleve",
			zap.Error(err),
			zap.String("item_id", itemID),
		)
		return err
	}
	return nil
}

// IndexExistingCatalogueItems bulk-indexes items, grouped per tenant.
func (r *BleveRepository) IndexExistingCatalogueItems(items []models.CatalogueItem) error {
	perTenant := map[uuid.UUID]map[string]interface{}{}
	for _, item := range items {
		docs, ok := perTenant[item.TenantID]
		if !ok {
			docs = map[string]interface{}{}
			perTenant[item.TenantID] = docs
		}
		docs[item.ID.String()] = newCatalogueItemDocument(item)
	}

	for tenantID, docs := range perTenant {
		config.Logger.Info("Bulk indexing catalogue items into Bleve",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("count", len(docs)),
		)
		if err := r.indexer.BulkIndexDocuments(catalogueIndexName(tenantID), docs); err != nil {
			config.Logger.Error("Failed to bulk index catalogue items into Bleve",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}
