// Package report turns aggregation results into the JSON results document and persists it.
package report

import (
	"time"

	"github.com/KaramelBytes/dietloom-cli/internal/analysis"
	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
)

// Macros is the per-diet average entry, keyed like the source columns.
type Macros struct {
	Protein float64 `json:"Protein(g)"`
	Carbs   float64 `json:"Carbs(g)"`
	Fat     float64 `json:"Fat(g)"`
}

// TopRecipe is one flattened entry of the top protein selection.
type TopRecipe struct {
	DietType   string  `json:"Diet_type"`
	RecipeName string  `json:"Recipe_name"`
	Protein    float64 `json:"Protein(g)"`
}

// Document is the results document. Field order is part of the output format.
type Document struct {
	Timestamp             string            `json:"timestamp"`
	TotalRecords          int               `json:"total_records"`
	DietTypes             int               `json:"diet_types"`
	AverageMacronutrients map[string]Macros `json:"average_macronutrients"`
	TopProteinRecipes     []TopRecipe       `json:"top_protein_recipes"`
}

// RatioEntry is one row of derived ratios; undefined ratios encode as null.
type RatioEntry struct {
	DietType       string         `json:"Diet_type"`
	RecipeName     string         `json:"Recipe_name"`
	ProteinToCarbs analysis.Ratio `json:"Protein_to_Carbs_ratio"`
	CarbsToFat     analysis.Ratio `json:"Carbs_to_Fat_ratio"`
}

// ExtendedDocument adds the per-record ratios computed over the raw table.
type ExtendedDocument struct {
	Document
	Ratios []RatioEntry `json:"ratios"`
}

// Serializer builds documents. Now defaults to time.Now.
type Serializer struct {
	Now func() time.Time
}

// TimestampLayout is the ISO-8601 layout of Document.Timestamp.
const TimestampLayout = time.RFC3339Nano

// Serialize builds the document from the engine outputs. The top recipes follow the
// iteration order of avg, each group keeping its ranking.
func (s Serializer) Serialize(cleaned *dataset.Table, avg analysis.Averages, sel analysis.Selection) Document {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	doc := Document{
		Timestamp:             now().Format(TimestampLayout),
		TotalRecords:          cleaned.Len(),
		DietTypes:             len(avg),
		AverageMacronutrients: make(map[string]Macros, len(avg)),
		TopProteinRecipes:     make([]TopRecipe, 0, sel.Len()),
	}
	for _, m := range avg {
		doc.AverageMacronutrients[m.DietType] = Macros{Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fat}
		for _, r := range sel.Lookup(m.DietType) {
			doc.TopProteinRecipes = append(doc.TopProteinRecipes, TopRecipe{
				DietType:   r.DietType,
				RecipeName: r.RecipeName,
				Protein:    r.Protein.V,
			})
		}
	}
	return doc
}

// SerializeExtended builds the document plus the ratio rows.
func (s Serializer) SerializeExtended(cleaned *dataset.Table, avg analysis.Averages, sel analysis.Selection, ratios []analysis.RatioRow) ExtendedDocument {
	ext := ExtendedDocument{
		Document: s.Serialize(cleaned, avg, sel),
		Ratios:   make([]RatioEntry, 0, len(ratios)),
	}
	for _, r := range ratios {
		ext.Ratios = append(ext.Ratios, RatioEntry{
			DietType:       r.DietType,
			RecipeName:     r.RecipeName,
			ProteinToCarbs: r.ProteinToCarbs,
			CarbsToFat:     r.CarbsToFat,
		})
	}
	return ext
}
