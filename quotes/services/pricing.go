package services

import (
	"time"

	"dpgf-quoting-backend/db/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultBaseCost is the reference cost applied when a quote line has
// neither a valid supplier price nor an explicit base cost in its
// pricing context.
var DefaultBaseCost = decimal.NewFromInt(100)

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
	two        = decimal.NewFromInt(2)
)

// PricingContext carries the per-quote pricing knobs. BaseCost of zero
// means "use the package default".
type PricingContext struct {
	TauxHoraireEur decimal.Decimal `json:"taux_horaire_eur"`
	MargePct       decimal.Decimal `json:"marge_pct"`
	BaseCost       decimal.Decimal `json:"base_cost"`
	Lot            string          `json:"lot,omitempty"`
}

// QuoteLineInput bundles everything needed to price one line. All data
// is materialized by the caller; the engine performs no I/O.
type QuoteLineInput struct {
	Quantite          decimal.Decimal
	CatalogueItem     models.CatalogueItem
	SupplierPrices    []models.SupplierPrice
	LastMaterialIndex *models.MaterialIndex
	Context           PricingContext
}

// CalculatedQuoteLine is the pure-function output for one line.
type CalculatedQuoteLine struct {
	CoutAchatU decimal.Decimal `json:"cout_achat_u"`
	MoU        decimal.Decimal `json:"mo_u"`
	PvU        decimal.Decimal `json:"pv_u"`
	TotalLigne decimal.Decimal `json:"total_ligne"`
	Flags      []QualityFlag   `json:"flags"`
}

// CalculationResult aggregates a full quote. TotalAchats and TotalMO
// sum unit values; TotalPV sums quantity-scaled line totals. The
// asymmetry is deliberate and callers depend on it.
type CalculationResult struct {
	Lines       []CalculatedQuoteLine `json:"lines"`
	TotalAchats decimal.Decimal       `json:"total_achats"`
	TotalMO     decimal.Decimal       `json:"total_mo"`
	TotalPV     decimal.Decimal       `json:"total_pv"`
}

// Engine prices quote lines. The clock and logger are injected so
// expiry checks are deterministic under test and the invalid-margin
// warning never relies on ambient logging state.
type Engine struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger, now: time.Now}
}

// NewEngineAt builds an engine with a fixed reference clock.
func NewEngineAt(logger *zap.Logger, now func() time.Time) *Engine {
	return &Engine{logger: logger, now: now}
}

// validPrices filters supplier prices to those whose validity end is
// nil (never expires) or strictly after the reference time.
func validPrices(prices []models.SupplierPrice, refTime time.Time) []models.SupplierPrice {
	valid := make([]models.SupplierPrice, 0, len(prices))
	for _, p := range prices {
		if p.ValiditeFin == nil || p.ValiditeFin.After(refTime) {
			valid = append(valid, p)
		}
	}
	return valid
}

// CoutAchatU computes the unit purchase cost: the cheapest valid
// supplier net price wins; with no usable price the material index
// coefficient scales the reference base cost; with no index either the
// base cost passes through unchanged.
func (e *Engine) CoutAchatU(prices []models.SupplierPrice, lastIndex *models.MaterialIndex, baseCost decimal.Decimal) decimal.Decimal {
	valid := validPrices(prices, e.now())

	if len(valid) == 0 {
		if lastIndex == nil {
			return baseCost
		}
		return baseCost.Mul(lastIndex.Coefficient)
	}

	minimum := valid[0].PrixNet
	for _, p := range valid[1:] {
		if p.PrixNet.LessThan(minimum) {
			minimum = p.PrixNet
		}
	}
	return minimum
}

// MOU computes unit labor cost. Missing or non-positive unit time
// yields zero rather than an error.
func (e *Engine) MOU(tempsUnitaireH *decimal.Decimal, tauxHoraireEur decimal.Decimal) decimal.Decimal {
	if tempsUnitaireH == nil || !tempsUnitaireH.IsPositive() {
		return decimal.Zero
	}
	return tempsUnitaireH.Mul(tauxHoraireEur)
}

// PVU computes the unit sale price: (achats + MO) / (1 - marge). A
// margin of 100% or more cannot be divided through; the cost is
// doubled instead and the anomaly logged at warn level.
func (e *Engine) PVU(coutAchatU, moU, margePct decimal.Decimal) decimal.Decimal {
	total := coutAchatU.Add(moU)
	fraction := margePct.Div(oneHundred)

	if fraction.GreaterThanOrEqual(one) {
		e.logger.Warn("invalid margin, falling back to doubled cost",
			zap.String("marge_pct", margePct.String()))
		return total.Mul(two)
	}

	return total.Div(one.Sub(fraction))
}

// TotalLigne is quantity x unit sale price.
func (e *Engine) TotalLigne(quantite, pvU decimal.Decimal) decimal.Decimal {
	return quantite.Mul(pvU)
}

// QuoteLine orchestrates the full per-line calculation: purchase cost,
// labor, sale price, line total, then quality flags.
func (e *Engine) QuoteLine(line QuoteLineInput) CalculatedQuoteLine {
	baseCost := line.Context.BaseCost
	if !baseCost.IsPositive() {
		baseCost = DefaultBaseCost
	}

	coutAchatU := e.CoutAchatU(line.SupplierPrices, line.LastMaterialIndex, baseCost)
	moU := e.MOU(line.CatalogueItem.TempsUnitaireH, line.Context.TauxHoraireEur)
	pvU := e.PVU(coutAchatU, moU, line.Context.MargePct)
	totalLigne := e.TotalLigne(line.Quantite, pvU)

	calculated := CalculatedQuoteLine{
		CoutAchatU: coutAchatU,
		MoU:        moU,
		PvU:        pvU,
		TotalLigne: totalLigne,
		Flags:      []QualityFlag{},
	}
	calculated.Flags = e.QualityFlags(line, calculated)

	return calculated
}

// Quote calculates every line and aggregates the quote totals.
func (e *Engine) Quote(lines []QuoteLineInput) CalculationResult {
	result := CalculationResult{
		Lines:       make([]CalculatedQuoteLine, 0, len(lines)),
		TotalAchats: decimal.Zero,
		TotalMO:     decimal.Zero,
		TotalPV:     decimal.Zero,
	}

	for _, line := range lines {
		calculated := e.QuoteLine(line)
		result.Lines = append(result.Lines, calculated)
		result.TotalAchats = result.TotalAchats.Add(calculated.CoutAchatU)
		result.TotalMO = result.TotalMO.Add(calculated.MoU)
		result.TotalPV = result.TotalPV.Add(calculated.TotalLigne)
	}

	return result
}

// CalculatePrixNet derives a net price from a gross price and discount
// percentage: prix_net = prix_brut x (1 - remise/100). Used wherever a
// net price is not authoritative from storage.
func CalculatePrixNet(prixBrut, remisePct decimal.Decimal) decimal.Decimal {
	return prixBrut.Mul(one.Sub(remisePct.Div(oneHundred)))
}
