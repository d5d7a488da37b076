package services

import (
	"encoding/json"
	"fmt"
	"time"

	catalogue_repositories "dpgf-quoting-backend/catalogue/repositories"
	"dpgf-quoting-backend/db/models"
	quote_repositories "dpgf-quoting-backend/quotes/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// StaleNotifier receives quotes newly flagged as requiring an update.
type StaleNotifier interface {
	NotifyQuoteStale(tenantID, quoteID uuid.UUID, reference string)
}

// CalculatorService materializes quote lines from storage, runs the
// pricing engine over them and persists the results. The engine itself
// stays pure; all I/O lives here.
type CalculatorService struct {
	quoteRepo     quote_repositories.QuoteRepository
	catalogueRepo catalogue_repositories.CatalogueRepository
	engine        *Engine
	logger        *zap.Logger
	notifier      StaleNotifier
}

// SetStaleNotifier attaches the optional listener informed when the
// sweep flags a quote.
func (s *CalculatorService) SetStaleNotifier(notifier StaleNotifier) {
	s.notifier = notifier
}

func NewCalculatorService(
	quoteRepo quote_repositories.QuoteRepository,
	catalogueRepo catalogue_repositories.CatalogueRepository,
	engine *Engine,
	logger *zap.Logger,
) *CalculatorService {
	return &CalculatorService{
		quoteRepo:     quoteRepo,
		catalogueRepo: catalogueRepo,
		engine:        engine,
		logger:        logger,
	}
}

// buildLineInputs loads every line's catalogue item, candidate
// supplier prices and last material index, in bulk where possible.
func (s *CalculatorService) buildLineInputs(quote *models.Quote) ([]QuoteLineInput, error) {
	itemIDs := make([]uuid.UUID, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		itemIDs = append(itemIDs, line.CatalogueItemID)
	}

	pricesByItem, err := s.catalogueRepo.GetSupplierPricesForItems(quote.TenantID, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier prices: %w", err)
	}

	// One index lookup per distinct material.
	indexByMatiere := map[string]*models.MaterialIndex{}

	context := PricingContext{
		TauxHoraireEur: quote.TauxHoraireEur,
		MargePct:       quote.MargePct,
		BaseCost:       quote.BaseCost,
	}
	if quote.Lot != nil {
		context.Lot = *quote.Lot
	}

	inputs := make([]QuoteLineInput, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		item := line.CatalogueItem
		if item == nil {
			loaded, err := s.catalogueRepo.GetCatalogueItemByID(quote.TenantID, line.CatalogueItemID)
			if err != nil {
				return nil, fmt.Errorf("failed to load catalogue item for line %s: %w", line.ID, err)
			}
			item = loaded
		}

		var lastIndex *models.MaterialIndex
		if item.Matiere != nil && *item.Matiere != "" {
			cached, seen := indexByMatiere[*item.Matiere]
			if !seen {
				cached, err = s.catalogueRepo.GetLastMaterialIndex(quote.TenantID, *item.Matiere)
				if err != nil {
					return nil, fmt.Errorf("failed to load material index for %q: %w", *item.Matiere, err)
				}
				indexByMatiere[*item.Matiere] = cached
			}
			lastIndex = cached
		}

		inputs = append(inputs, QuoteLineInput{
			Quantite:          line.Quantite,
			CatalogueItem:     *item,
			SupplierPrices:    pricesByItem[line.CatalogueItemID],
			LastMaterialIndex: lastIndex,
			Context:           context,
		})
	}

	return inputs, nil
}

// CalculateQuote runs the full pricing pass for a quote and persists
// calculated lines and totals. It returns the persisted quote, the raw
// calculation result and the aggregated quality report.
func (s *CalculatorService) CalculateQuote(tenantID, quoteID uuid.UUID) (*models.Quote, *CalculationResult, *QualityReport, error) {
	quote, err := s.quoteRepo.GetQuoteByID(tenantID, quoteID)
	if err != nil {
		return nil, nil, nil, err
	}

	inputs, err := s.buildLineInputs(quote)
	if err != nil {
		return nil, nil, nil, err
	}

	result := s.engine.Quote(inputs)
	report := GenerateQualityReport(inputs, result.Lines)

	updatedLines := make([]models.QuoteLine, len(quote.Lines))
	for i, line := range quote.Lines {
		calculated := result.Lines[i]
		flagsJSON, err := json.Marshal(calculated.Flags)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode flags for line %s: %w", line.ID, err)
		}

		line.CoutAchatU = calculated.CoutAchatU
		line.MoU = calculated.MoU
		line.PvU = calculated.PvU
		line.TotalLigne = calculated.TotalLigne
		line.Flags = datatypes.JSON(flagsJSON)
		updatedLines[i] = line
	}

	quote.TotalAchats = result.TotalAchats
	quote.TotalMO = result.TotalMO
	quote.TotalPV = result.TotalPV

	calculatedAt := time.Now()
	if err := s.quoteRepo.SaveCalculation(quote, updatedLines, calculatedAt); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to persist calculation: %w", err)
	}

	s.logger.Info("quote calculated",
		zap.String("quote_id", quote.ID.String()),
		zap.Int("lines", len(updatedLines)),
		zap.Int("lines_with_flags", report.LinesWithFlags),
	)

	quote.Status = models.QuoteStatusCalculated
	quote.RequiresUpdate = false
	quote.CalculatedAt = &calculatedAt
	return quote, &result, &report, nil
}

// QualityReportFor recomputes the quality report for a quote without
// persisting anything.
func (s *CalculatorService) QualityReportFor(tenantID, quoteID uuid.UUID) (*QualityReport, error) {
	quote, err := s.quoteRepo.GetQuoteByID(tenantID, quoteID)
	if err != nil {
		return nil, err
	}

	inputs, err := s.buildLineInputs(quote)
	if err != nil {
		return nil, err
	}

	calculated := make([]CalculatedQuoteLine, len(inputs))
	for i, input := range inputs {
		calculated[i] = s.engine.QuoteLine(input)
	}

	report := GenerateQualityReport(inputs, calculated)
	return &report, nil
}

// SweepStalePricing walks active quotes and marks those whose lines'
// structural pricing inputs have degraded (expired prices, removed
// indices, cleared unit times). Runs from the nightly cron job.
func (s *CalculatorService) SweepStalePricing() error {
	flagged := 0
	err := s.quoteRepo.ListActiveQuotes(100, func(batch []models.Quote) error {
		for i := range batch {
			quote := batch[i]
			inputs, err := s.buildLineInputs(&quote)
			if err != nil {
				s.logger.Error("stale sweep failed to load quote inputs",
					zap.String("quote_id", quote.ID.String()), zap.Error(err))
				continue
			}

			requiresUpdate := false
			for _, input := range inputs {
				if s.engine.RequiresUpdate(input) {
					requiresUpdate = true
					break
				}
			}

			if requiresUpdate != quote.RequiresUpdate {
				if err := s.quoteRepo.SetRequiresUpdate(quote.ID, requiresUpdate); err != nil {
					s.logger.Error("stale sweep failed to update quote",
						zap.String("quote_id", quote.ID.String()), zap.Error(err))
					continue
				}
				if requiresUpdate {
					flagged++
					if s.notifier != nil {
						s.notifier.NotifyQuoteStale(quote.TenantID, quote.ID, quote.Reference)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("stale pricing sweep failed: %w", err)
	}

	s.logger.Info("stale pricing sweep finished", zap.Int("quotes_flagged", flagged))
	return nil
}
