package services

import (
	"testing"
	"time"

	"dpgf-quoting-backend/db/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngineAt(zap.NewNop(), func() time.Time { return testNow })
}

func timePtr(t time.Time) *time.Time { return &t }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func price(prixNet string, validiteFin *time.Time) models.SupplierPrice {
	return models.SupplierPrice{
		PrixNet:     decimal.RequireFromString(prixNet),
		ValiditeFin: validiteFin,
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func assertDecimalNear(t *testing.T, name string, got decimal.Decimal, want float64) {
	t.Helper()
	if diff := got.InexactFloat64() - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("%s = %s, want approx %v", name, got, want)
	}
}

func TestCoutAchatUCheapestValidPriceWins(t *testing.T) {
	e := testEngine()
	prices := []models.SupplierPrice{
		price("95", timePtr(testNow.AddDate(0, 1, 0))),
		price("90", nil),
		price("70", timePtr(testNow.AddDate(0, -1, 0))), // expired
	}

	got := e.CoutAchatU(prices, nil, decimal.NewFromInt(100))
	assertDecimal(t, "CoutAchatU", got, "90")
}

func TestCoutAchatUFallbacks(t *testing.T) {
	e := testEngine()
	index := &models.MaterialIndex{
		Matiere:     "acier",
		Date:        testNow.AddDate(0, -2, 0),
		Coefficient: decimal.RequireFromString("1.2"),
	}

	tests := []struct {
		name     string
		prices   []models.SupplierPrice
		index    *models.MaterialIndex
		baseCost string
		expect   string
	}{
		{"no prices with index", nil, index, "200", "240"},
		{"no prices no index", nil, nil, "150", "150"},
		{"only expired prices with index", []models.SupplierPrice{
			price("70", timePtr(testNow.AddDate(0, -1, 0))),
		}, index, "100", "120"},
		{"only expired prices no index", []models.SupplierPrice{
			price("70", timePtr(testNow.AddDate(0, -1, 0))),
		}, nil, "100", "100"},
		{"expiry exactly now is invalid", []models.SupplierPrice{
			price("70", timePtr(testNow)),
		}, nil, "100", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.CoutAchatU(tt.prices, tt.index, decimal.RequireFromString(tt.baseCost))
			assertDecimal(t, "CoutAchatU", got, tt.expect)
		})
	}
}

func TestMOU(t *testing.T) {
	e := testEngine()
	taux := decimal.NewFromInt(60)

	tests := []struct {
		name   string
		temps  *decimal.Decimal
		expect string
	}{
		{"nil time", nil, "0"},
		{"zero time", decPtr("0"), "0"},
		{"negative time", decPtr("-1"), "0"},
		{"ninety minutes", decPtr("1.5"), "90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, "MOU", e.MOU(tt.temps, taux), tt.expect)
		})
	}
}

func TestPVU(t *testing.T) {
	e := testEngine()

	t.Run("normal margin", func(t *testing.T) {
		got := e.PVU(decimal.NewFromInt(80), decimal.NewFromInt(90), decimal.NewFromInt(25))
		assertDecimalNear(t, "PVU", got, 170.0/0.75)
	})

	t.Run("zero margin", func(t *testing.T) {
		got := e.PVU(decimal.NewFromInt(80), decimal.NewFromInt(20), decimal.Zero)
		assertDecimal(t, "PVU", got, "100")
	})

	t.Run("margin at 100 doubles cost", func(t *testing.T) {
		got := e.PVU(decimal.NewFromInt(50), decimal.NewFromInt(50), decimal.NewFromInt(100))
		assertDecimal(t, "PVU", got, "200")
	})

	t.Run("margin above 100 doubles cost", func(t *testing.T) {
		got := e.PVU(decimal.NewFromInt(50), decimal.Zero, decimal.NewFromInt(150))
		assertDecimal(t, "PVU", got, "100")
	})
}

func TestCalculatePrixNet(t *testing.T) {
	tests := []struct {
		name      string
		prixBrut  string
		remisePct string
		expect    string
	}{
		{"no discount", "100", "0", "100"},
		{"ten percent", "100", "10", "90"},
		{"fractional", "19.90", "25", "14.925"},
		{"full discount", "80", "100", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePrixNet(decimal.RequireFromString(tt.prixBrut), decimal.RequireFromString(tt.remisePct))
			assertDecimal(t, "CalculatePrixNet", got, tt.expect)
		})
	}
}

func TestQuoteLineFullCalculation(t *testing.T) {
	e := testEngine()
	line := QuoteLineInput{
		Quantite: decimal.NewFromInt(5),
		CatalogueItem: models.CatalogueItem{
			HexCode:        "HX-1",
			Designation:    "Poutre acier",
			TempsUnitaireH: decPtr("1.5"),
		},
		SupplierPrices: []models.SupplierPrice{
			price("80", timePtr(testNow.AddDate(0, 3, 0))),
		},
		Context: PricingContext{
			TauxHoraireEur: decimal.NewFromInt(60),
			MargePct:       decimal.NewFromInt(25),
		},
	}

	calculated := e.QuoteLine(line)

	assertDecimal(t, "CoutAchatU", calculated.CoutAchatU, "80")
	assertDecimal(t, "MoU", calculated.MoU, "90")
	assertDecimalNear(t, "PvU", calculated.PvU, 170.0/0.75)
	assertDecimalNear(t, "TotalLigne", calculated.TotalLigne, 5*170.0/0.75)
	if len(calculated.Flags) != 0 {
		t.Errorf("flags = %v, want none", calculated.Flags)
	}
}

func TestQuoteLineUsesContextBaseCost(t *testing.T) {
	e := testEngine()
	index := &models.MaterialIndex{Coefficient: decimal.RequireFromString("1.1")}

	line := QuoteLineInput{
		Quantite:          decimal.NewFromInt(1),
		CatalogueItem:     models.CatalogueItem{TempsUnitaireH: decPtr("1")},
		LastMaterialIndex: index,
		Context: PricingContext{
			TauxHoraireEur: decimal.NewFromInt(60),
			MargePct:       decimal.NewFromInt(20),
			BaseCost:       decimal.NewFromInt(500),
		},
	}

	calculated := e.QuoteLine(line)
	assertDecimal(t, "CoutAchatU", calculated.CoutAchatU, "550")

	// Zero base cost falls back to the package default of 100.
	line.Context.BaseCost = decimal.Zero
	calculated = e.QuoteLine(line)
	assertDecimal(t, "CoutAchatU", calculated.CoutAchatU, "110")
}

func TestQuoteAggregationAsymmetry(t *testing.T) {
	e := testEngine()

	lineA := QuoteLineInput{
		Quantite:      decimal.NewFromInt(5),
		CatalogueItem: models.CatalogueItem{TempsUnitaireH: decPtr("1.5")},
		SupplierPrices: []models.SupplierPrice{
			price("80", nil),
		},
		Context: PricingContext{
			TauxHoraireEur: decimal.NewFromInt(60),
			MargePct:       decimal.NewFromInt(25),
		},
	}
	lineB := QuoteLineInput{
		Quantite:      decimal.NewFromInt(2),
		CatalogueItem: models.CatalogueItem{}, // no unit time -> temps_manquant
		LastMaterialIndex: &models.MaterialIndex{
			Coefficient: decimal.RequireFromString("1.1"),
		},
		Context: PricingContext{
			TauxHoraireEur: decimal.NewFromInt(60),
			MargePct:       decimal.NewFromInt(25),
		},
	}

	result := e.Quote([]QuoteLineInput{lineA, lineB})
	if len(result.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(result.Lines))
	}

	calcA, calcB := result.Lines[0], result.Lines[1]
	assertDecimal(t, "lineB.CoutAchatU", calcB.CoutAchatU, "110")
	if len(calcB.Flags) != 1 || calcB.Flags[0] != FlagTempsManquant {
		t.Errorf("lineB flags = %v, want [temps_manquant]", calcB.Flags)
	}

	// Purchase and labor totals sum unit values, unscaled by quantity.
	wantAchats := calcA.CoutAchatU.Add(calcB.CoutAchatU)
	if !result.TotalAchats.Equal(wantAchats) {
		t.Errorf("TotalAchats = %s, want unit sum %s", result.TotalAchats, wantAchats)
	}
	wantMO := calcA.MoU.Add(calcB.MoU)
	if !result.TotalMO.Equal(wantMO) {
		t.Errorf("TotalMO = %s, want unit sum %s", result.TotalMO, wantMO)
	}

	// The sale total sums line totals, already quantity-scaled.
	wantPV := calcA.TotalLigne.Add(calcB.TotalLigne)
	if !result.TotalPV.Equal(wantPV) {
		t.Errorf("TotalPV = %s, want line-total sum %s", result.TotalPV, wantPV)
	}
	if result.TotalPV.Equal(calcA.PvU.Add(calcB.PvU)) {
		t.Error("TotalPV must not sum unit sale prices")
	}
}

func TestQuoteEmpty(t *testing.T) {
	e := testEngine()
	result := e.Quote(nil)
	if len(result.Lines) != 0 {
		t.Errorf("lines = %d, want 0", len(result.Lines))
	}
	assertDecimal(t, "TotalAchats", result.TotalAchats, "0")
	assertDecimal(t, "TotalMO", result.TotalMO, "0")
	assertDecimal(t, "TotalPV", result.TotalPV, "0")
}

func TestQuoteLineDeterministic(t *testing.T) {
	e := testEngine()
	line := QuoteLineInput{
		Quantite:      decimal.NewFromInt(3),
		CatalogueItem: models.CatalogueItem{TempsUnitaireH: decPtr("0.5")},
		SupplierPrices: []models.SupplierPrice{
			price("42", timePtr(testNow.AddDate(1, 0, 0))),
		},
		Context: PricingContext{
			TauxHoraireEur: decimal.NewFromInt(55),
			MargePct:       decimal.NewFromInt(30),
		},
	}

	first := e.QuoteLine(line)
	second := e.QuoteLine(line)
	if !first.PvU.Equal(second.PvU) || !first.TotalLigne.Equal(second.TotalLigne) {
		t.Errorf("calculation not deterministic: %+v vs %+v", first, second)
	}
}
