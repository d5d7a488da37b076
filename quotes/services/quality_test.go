package services

import (
	"testing"

	"dpgf-quoting-backend/db/models"

	"github.com/shopspring/decimal"
)

func flagsOf(e *Engine, line QuoteLineInput) []QualityFlag {
	return e.QualityFlags(line, CalculatedQuoteLine{Flags: []QualityFlag{}})
}

func hasFlag(flags []QualityFlag, flag QualityFlag) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

func TestQualityFlagsTempsManquant(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name  string
		temps *decimal.Decimal
		want  bool
	}{
		{"nil", nil, true},
		{"zero", decPtr("0"), true},
		{"negative", decPtr("-2"), true},
		{"positive", decPtr("0.25"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := QuoteLineInput{
				CatalogueItem: models.CatalogueItem{TempsUnitaireH: tt.temps},
				SupplierPrices: []models.SupplierPrice{
					price("10", nil),
				},
			}
			got := hasFlag(flagsOf(e, line), FlagTempsManquant)
			if got != tt.want {
				t.Errorf("temps_manquant = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQualityFlagsPricingBranches(t *testing.T) {
	e := testEngine()
	index := &models.MaterialIndex{Coefficient: decimal.RequireFromString("1.2")}

	tests := []struct {
		name         string
		prices       []models.SupplierPrice
		index        *models.MaterialIndex
		wantManquant bool
		wantObsolete bool
	}{
		{"no prices no index", nil, nil, true, false},
		{"no prices but index", nil, index, false, false},
		{"only expired prices", []models.SupplierPrice{
			price("70", timePtr(testNow.AddDate(0, -2, 0))),
		}, nil, false, true},
		{"expired prices with index still obsolete", []models.SupplierPrice{
			price("70", timePtr(testNow.AddDate(0, -2, 0))),
		}, index, false, true},
		{"valid dated price", []models.SupplierPrice{
			price("70", timePtr(testNow.AddDate(0, 1, 0))),
		}, nil, false, false},
		{"open-ended price", []models.SupplierPrice{
			price("70", nil),
		}, nil, false, false},
		{"open-ended beats near-expiry for staleness", []models.SupplierPrice{
			price("70", nil),
			price("80", timePtr(testNow.AddDate(0, 0, 1))),
		}, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := QuoteLineInput{
				CatalogueItem:     models.CatalogueItem{TempsUnitaireH: decPtr("1")},
				SupplierPrices:    tt.prices,
				LastMaterialIndex: tt.index,
			}
			flags := flagsOf(e, line)
			if got := hasFlag(flags, FlagPrixManquant); got != tt.wantManquant {
				t.Errorf("prix_manquant = %v, want %v (flags %v)", got, tt.wantManquant, flags)
			}
			if got := hasFlag(flags, FlagPrixObsolete); got != tt.wantObsolete {
				t.Errorf("prix_obsolete = %v, want %v (flags %v)", got, tt.wantObsolete, flags)
			}
		})
	}
}

func TestOldestValidPrice(t *testing.T) {
	nearFin := timePtr(testNow.AddDate(0, 0, 7))
	farFin := timePtr(testNow.AddDate(0, 2, 0))

	tests := []struct {
		name   string
		prices []models.SupplierPrice
		want   string
	}{
		{"single dated", []models.SupplierPrice{price("10", nearFin)}, "10"},
		{"earliest end wins", []models.SupplierPrice{
			price("10", farFin),
			price("20", nearFin),
		}, "20"},
		{"open-ended first is terminal", []models.SupplierPrice{
			price("10", nil),
			price("20", nearFin),
		}, "10"},
		{"open-ended mid-scan displaces dated", []models.SupplierPrice{
			price("10", nearFin),
			price("20", nil),
			price("30", timePtr(testNow.AddDate(0, 0, 1))),
		}, "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := oldestValidPrice(tt.prices)
			if got.PrixNet.String() != tt.want {
				t.Errorf("oldestValidPrice picked prix_net %s, want %s", got.PrixNet, tt.want)
			}
		})
	}
}

func TestQualityFlagsIncoherenceUMNeverEmitted(t *testing.T) {
	e := testEngine()
	line := QuoteLineInput{
		CatalogueItem:  models.CatalogueItem{Unite: nil},
		SupplierPrices: []models.SupplierPrice{price("10", nil)},
	}
	if hasFlag(flagsOf(e, line), FlagIncoherenceUM) {
		t.Error("incoherence_um is reserved and must never be emitted")
	}
}

func TestRequiresUpdate(t *testing.T) {
	e := testEngine()

	healthy := QuoteLineInput{
		CatalogueItem:  models.CatalogueItem{TempsUnitaireH: decPtr("1")},
		SupplierPrices: []models.SupplierPrice{price("10", nil)},
	}
	if e.RequiresUpdate(healthy) {
		t.Error("healthy line should not require update")
	}

	missingTime := QuoteLineInput{
		CatalogueItem:  models.CatalogueItem{},
		SupplierPrices: []models.SupplierPrice{price("10", nil)},
	}
	if !e.RequiresUpdate(missingTime) {
		t.Error("line without unit time should require update")
	}

	noPricing := QuoteLineInput{
		CatalogueItem: models.CatalogueItem{TempsUnitaireH: decPtr("1")},
	}
	if !e.RequiresUpdate(noPricing) {
		t.Error("line without pricing signal should require update")
	}
}

func TestGenerateQualityReport(t *testing.T) {
	lines := []QuoteLineInput{{}, {}, {}}
	calculated := []CalculatedQuoteLine{
		{Flags: []QualityFlag{FlagTempsManquant, FlagPrixManquant}},
		{Flags: []QualityFlag{}},
		{Flags: []QualityFlag{FlagTempsManquant}},
	}

	report := GenerateQualityReport(lines, calculated)

	if report.TotalLines != 3 {
		t.Errorf("TotalLines = %d, want 3", report.TotalLines)
	}
	if report.LinesWithFlags != 2 {
		t.Errorf("LinesWithFlags = %d, want 2", report.LinesWithFlags)
	}
	if !report.RequiresAction {
		t.Error("RequiresAction should be true")
	}
	if report.FlagCounts[FlagTempsManquant] != 2 {
		t.Errorf("temps_manquant count = %d, want 2", report.FlagCounts[FlagTempsManquant])
	}
	if report.FlagCounts[FlagPrixManquant] != 1 {
		t.Errorf("prix_manquant count = %d, want 1", report.FlagCounts[FlagPrixManquant])
	}
	// Unseen flags are still present in the tally.
	if count, ok := report.FlagCounts[FlagIncoherenceUM]; !ok || count != 0 {
		t.Errorf("incoherence_um count = %d (present %v), want 0 present", count, ok)
	}
	if count, ok := report.FlagCounts[FlagPrixObsolete]; !ok || count != 0 {
		t.Errorf("prix_obsolete count = %d (present %v), want 0 present", count, ok)
	}
}

func TestGenerateQualityReportClean(t *testing.T) {
	report := GenerateQualityReport([]QuoteLineInput{{}}, []CalculatedQuoteLine{{Flags: []QualityFlag{}}})
	if report.RequiresAction || report.LinesWithFlags != 0 {
		t.Errorf("clean quote should not require action: %+v", report)
	}
}
