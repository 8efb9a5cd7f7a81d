package series

import "strings"

// demonyms maps feed location names to the Grand Prix name prefix.
// Multi-venue countries are special-cased below by city substring.
var demonyms = map[string]string{
	"saudi arabia":         "Saudi Arabian",
	"australia":            "Australian",
	"japan":                "Japanese",
	"china":                "Chinese",
	"united states":        "United States",
	"canada":               "Canadian",
	"austria":              "Austrian",
	"united kingdom":       "British",
	"hungary":              "Hungarian",
	"belgium":              "Belgian",
	"netherlands":          "Dutch",
	"mexico":               "Mexico City",
	"brazil":               "São Paulo",
	"united arab emirates": "Abu Dhabi",
}

// GrandPrixName canonicalizes a feed session's location into the
// human-readable event name, e.g. "japan" -> "Japanese Grand Prix".
// Countries hosting several rounds are disambiguated by a case-insensitive
// city match in the session summary.
func GrandPrixName(summary, location string) string {
	prefix := grandPrixPrefix(summary, location)
	return prefix + " Grand Prix"
}

func grandPrixPrefix(summary, location string) string {
	switch strings.ToLower(location) {
	case "united states":
		if containsFold(summary, "miami") {
			return "Miami"
		}
		if containsFold(summary, "las vegas") {
			return "Las Vegas"
		}
		return "United States"
	case "italy":
		if containsFold(summary, "romagna") {
			return "Emilia Romagna"
		}
		return "Italian"
	case "spain":
		if containsFold(summary, "barcelona") {
			return "Barcelona"
		}
		return "Spanish"
	}
	if prefix, ok := demonyms[strings.ToLower(location)]; ok {
		return prefix
	}
	// Unmapped locations keep their original spelling.
	return strings.TrimSpace(location)
}
