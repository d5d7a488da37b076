package repositories

import (
	bleveindex "dpgf-quoting-backend/bleve/services"
	"dpgf-quoting-backend/db/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"
)

type BleveRepository struct {
	indexer *bleveindex.IndexingService
}

type BleveRepositoryInterface interface {
	// ==== Catalogue item indexing ====
	IndexSingleCatalogueItem(item models.CatalogueItem) error
	IndexExistingCatalogueItems(items []models.CatalogueItem) error
	UpdateCatalogueItem(item models.CatalogueItem) error
	DeleteCatalogueItem(tenantID uuid.UUID, itemID string) error
	SearchCatalogueItems(tenantID uuid.UUID, queryString string) (*bleve.SearchResult, error)
}

// Constructor returning both the struct and the interface
func NewBleveRepository(indexer *bleveindex.IndexingService) (*BleveRepository, BleveRepositoryInterface) {
	repo := &BleveRepository{indexer: indexer}
	return repo, repo
}
