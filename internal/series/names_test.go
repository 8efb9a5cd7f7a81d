package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrandPrixNameDemonyms(t *testing.T) {
	cases := []struct {
		summary  string
		location string
		want     string
	}{
		{"FORMULA 1 JAPANESE GRAND PRIX - Race", "Japan", "Japanese Grand Prix"},
		{"FORMULA 1 BRITISH GRAND PRIX - Race", "United Kingdom", "British Grand Prix"},
		{"FORMULA 1 GRANDE PREMIO DE SAO PAULO - Race", "Brazil", "São Paulo Grand Prix"},
		{"FORMULA 1 ETIHAD AIRWAYS ABU DHABI GRAND PRIX - Race", "United Arab Emirates", "Abu Dhabi Grand Prix"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GrandPrixName(tc.summary, tc.location), "location %q", tc.location)
	}
}

func TestGrandPrixNameMultiVenueCountries(t *testing.T) {
	assert.Equal(t, "Miami Grand Prix",
		GrandPrixName("FORMULA 1 CRYPTO.COM MIAMI GRAND PRIX - Race", "United States"))
	assert.Equal(t, "Las Vegas Grand Prix",
		GrandPrixName("FORMULA 1 HEINEKEN SILVER LAS VEGAS GRAND PRIX - Race", "United States"))
	assert.Equal(t, "United States Grand Prix",
		GrandPrixName("FORMULA 1 PIRELLI UNITED STATES GRAND PRIX - Race", "United States"))

	assert.Equal(t, "Emilia Romagna Grand Prix",
		GrandPrixName("FORMULA 1 GRAN PREMIO DEL MADE IN ITALY E DELL'EMILIA-ROMAGNA - Race", "Italy"))
	assert.Equal(t, "Italian Grand Prix",
		GrandPrixName("FORMULA 1 GRAN PREMIO D'ITALIA - Race", "Italy"))

	assert.Equal(t, "Barcelona Grand Prix",
		GrandPrixName("FORMULA 1 BARCELONA GRAND PRIX - Race", "Spain"))
	assert.Equal(t, "Spanish Grand Prix",
		GrandPrixName("FORMULA 1 GRAN PREMIO DE ESPAÑA - Race", "Spain"))
}

func TestGrandPrixNameUnmappedLocationKeepsSpelling(t *testing.T) {
	assert.Equal(t, "Monaco Grand Prix",
		GrandPrixName("FORMULA 1 GRAND PRIX DE MONACO - Race", "Monaco"))
	assert.Equal(t, "Bahrain Grand Prix",
		GrandPrixName("FORMULA 1 GULF AIR BAHRAIN GRAND PRIX - Race", " Bahrain "))
}
