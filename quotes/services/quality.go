package services

import (
	"dpgf-quoting-backend/db/models"

	"github.com/shopspring/decimal"
)

type QualityFlag string

const (
	FlagPrixObsolete  QualityFlag = "prix_obsolete"
	FlagPrixManquant  QualityFlag = "prix_manquant"
	FlagIncoherenceUM QualityFlag = "incoherence_um"
	FlagTempsManquant QualityFlag = "temps_manquant"
)

// allQualityFlags fixes the report tally key set so every flag kind
// appears in FlagCounts even at zero.
var allQualityFlags = []QualityFlag{
	FlagPrixObsolete,
	FlagPrixManquant,
	FlagIncoherenceUM,
	FlagTempsManquant,
}

// staleAfterDays is the age beyond which a still-valid price counts as
// obsolete.
const staleAfterDays = 90

// QualityReport summarizes flag occurrences across a calculated quote.
type QualityReport struct {
	TotalLines     int                 `json:"total_lines"`
	LinesWithFlags int                 `json:"lines_with_flags"`
	FlagCounts     map[QualityFlag]int `json:"flag_counts"`
	RequiresAction bool                `json:"requires_action"`
}

// QualityFlags derives the data-quality flags for one line.
//
// incoherence_um is reserved for a unit-of-measure consistency check
// and never emitted yet.
func (e *Engine) QualityFlags(line QuoteLineInput, calculated CalculatedQuoteLine) []QualityFlag {
	flags := []QualityFlag{}

	if line.CatalogueItem.TempsUnitaireH == nil || !line.CatalogueItem.TempsUnitaireH.IsPositive() {
		flags = append(flags, FlagTempsManquant)
	}

	if len(line.SupplierPrices) == 0 {
		// No supplier price and no material index means no pricing
		// signal at all.
		if line.LastMaterialIndex == nil {
			flags = append(flags, FlagPrixManquant)
		}
	} else {
		refTime := e.now()
		valid := validPrices(line.SupplierPrices, refTime)

		if len(valid) == 0 {
			flags = append(flags, FlagPrixObsolete)
		} else {
			oldest := oldestValidPrice(valid)

			// The validity filter above only keeps future or open-ended
			// dates, so this age check cannot currently fire. It is kept
			// for the day ValiditeFin stops being a hard expiry; see
			// DESIGN.md.
			if oldest.ValiditeFin != nil {
				daysOld := int(refTime.Sub(*oldest.ValiditeFin).Hours() / 24)
				if daysOld > staleAfterDays {
					flags = append(flags, FlagPrixObsolete)
				}
			}
		}
	}

	return flags
}

// oldestValidPrice picks the aging candidate among valid prices. An
// open-ended validity is terminal when it holds the candidate slot, but
// an open-ended price encountered mid-scan still displaces a dated one.
func oldestValidPrice(valid []models.SupplierPrice) models.SupplierPrice {
	oldest := valid[0]
	for _, p := range valid[1:] {
		if oldest.ValiditeFin == nil {
			break
		}
		if p.ValiditeFin == nil {
			oldest = p
			continue
		}
		if p.ValiditeFin.Before(*oldest.ValiditeFin) {
			oldest = p
		}
	}
	return oldest
}

// RequiresUpdate reports whether a line's structural pricing inputs
// (prices, indices, unit time) would flag it regardless of calculated
// values.
func (e *Engine) RequiresUpdate(line QuoteLineInput) bool {
	skeleton := CalculatedQuoteLine{
		CoutAchatU: decimal.Zero,
		MoU:        decimal.Zero,
		PvU:        decimal.Zero,
		TotalLigne: decimal.Zero,
		Flags:      []QualityFlag{},
	}
	return len(e.QualityFlags(line, skeleton)) > 0
}

// GenerateQualityReport aggregates already-computed flags; it never
// recomputes them.
func GenerateQualityReport(lines []QuoteLineInput, calculatedLines []CalculatedQuoteLine) QualityReport {
	flagCounts := make(map[QualityFlag]int, len(allQualityFlags))
	for _, flag := range allQualityFlags {
		flagCounts[flag] = 0
	}

	linesWithFlags := 0
	for _, calculated := range calculatedLines {
		if len(calculated.Flags) == 0 {
			continue
		}
		linesWithFlags++
		for _, flag := range calculated.Flags {
			flagCounts[flag]++
		}
	}

	return QualityReport{
		TotalLines:     len(lines),
		LinesWithFlags: linesWithFlags,
		FlagCounts:     flagCounts,
		RequiresAction: linesWithFlags > 0,
	}
}
