package bootstrap

import (
	"context"

	bleveRepositories "dpgf-quoting-backend/bleve/repositories"
	catalogue_repositories "dpgf-quoting-backend/catalogue/repositories"
	"dpgf-quoting-backend/config"

	"go.uber.org/zap"
)

// IndexBleveData rebuilds the catalogue search indexes from the
// database at startup.
func IndexBleveData(
	ctx context.Context,
	catalogueRepo catalogue_repositories.CatalogueRepository,
	bleveRepo bleveRepositories.BleveRepositoryInterface,
) {
	items, err := catalogueRepo.GetAllCatalogueItems()
	if err != nil {
		config.Logger.Error("Error fetching catalogue items for Bleve indexing", zap.Error(err))
		return
	}

	if len(items) == 0 {
		config.Logger.Info("No catalogue items to index into Bleve")
		return
	}

	if err := bleveRepo.IndexExistingCatalogueItems(items); err != nil {
		config.Logger.Error("Failed to index catalogue items into Bleve", zap.Error(err))
		return
	}

	config.Logger.Info("Catalogue search indexes rebuilt", zap.Int("item_count", len(items)))
}
