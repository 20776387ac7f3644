package domain

import "strings"

// Category trait tables. The scoring heuristics classify catalog
// categories three ways; the lists live here so every component shares
// one taxonomy.
//
// Complex and high-variance checks match by substring so that compound
// catalog labels ("Surgery, O.R. & Delivery") pick up the base trait.
// The common-category check is an exact match: bare "Medicine" is
// common, "Discharge Medicine" is not.

var complexCategories = []string{
	"Surgery",
	"Laboratory",
	"X-Ray",
	"Procedures",
	"Discharge Medicine",
	"Halo, O2, NO2, etc.",
	"Medicine, ORS & Anesthesia, Ket, Spinal",
}

var highVarianceCategories = []string{
	"Surgery",
	"Procedures",
	"Laboratory",
}

var commonCategories = map[string]bool{
	"Registration Fees": true,
	"Dr. Fees":          true,
	"Medic Fee":         true,
	"Medicine":          true,
}

// TrendCategories is the fixed category list the analytics aggregator
// reports trends for.
var TrendCategories = []string{
	"Registration Fees",
	"Laboratory",
	"Medicine",
	"Surgery",
	"X-Ray",
}

// DemandCategories is the fixed category list for demand forecasting.
var DemandCategories = []string{
	"Registration Fees",
	"Laboratory",
	"Medicine",
	"Surgery",
	"X-Ray",
	"Physical Therapy",
}

// IsComplexCategory reports whether a category counts toward the
// complexity fraction.
func IsComplexCategory(category string) bool {
	return matchesAny(category, complexCategories)
}

// IsHighVarianceCategory reports whether a category has historically
// volatile pricing.
func IsHighVarianceCategory(category string) bool {
	return matchesAny(category, highVarianceCategories)
}

// IsCommonCategory reports whether a category is routine enough to
// raise estimate confidence.
func IsCommonCategory(category string) bool {
	return commonCategories[category]
}

func matchesAny(category string, list []string) bool {
	for _, c := range list {
		if strings.Contains(category, c) {
			return true
		}
	}
	return false
}
