// services/feed_catalog.go
package services

import "cleanup-jobs-system/models"

// coastalLocation is a shoreline hotspot with recurring marine debris activity
type coastalLocation struct {
	Name string
	Lat  float64
	Lng  float64
	City string
}

// Coastal locations with high marine debris activity, from Marine Debris
// Tracker hotspot data.
var coastalLocations = []coastalLocation{
	// Southeast Asia
	{Name: "Manila Bay", Lat: 14.5639, Lng: 120.9726, City: "Manila, Philippines"},
	{Name: "Kuta Beach", Lat: -8.7185, Lng: 115.1690, City: "Bali, Indonesia"},
	{Name: "Pattaya Beach", Lat: 12.9236, Lng: 100.8825, City: "Pattaya, Thailand"},
	{Name: "Vung Tau Beach", Lat: 10.3460, Lng: 107.0843, City: "Vung Tau, Vietnam"},

	// South Asia
	{Name: "Juhu Beach", Lat: 19.0990, Lng: 72.8267, City: "Mumbai, India"},
	{Name: "Versova Beach", Lat: 19.1342, Lng: 72.8119, City: "Mumbai, India"},
	{Name: "Cox's Bazar", Lat: 21.4272, Lng: 92.0058, City: "Chittagong, Bangladesh"},
	{Name: "Karachi Beach", Lat: 24.8230, Lng: 67.0285, City: "Karachi, Pakistan"},

	// Africa
	{Name: "Labadi Beach", Lat: 5.5467, Lng: -0.1515, City: "Accra, Ghana"},
	{Name: "Lekki Beach", Lat: 6.4281, Lng: 3.4219, City: "Lagos, Nigeria"},
	{Name: "Durban Beach", Lat: -29.8587, Lng: 31.0218, City: "Durban, South Africa"},
	{Name: "Mombasa Beach", Lat: -4.0435, Lng: 39.6682, City: "Mombasa, Kenya"},

	// Latin America
	{Name: "Copacabana Beach", Lat: -22.9711, Lng: -43.1822, City: "Rio de Janeiro, Brazil"},
	{Name: "Cartagena Beach", Lat: 10.3932, Lng: -75.4832, City: "Cartagena, Colombia"},
	{Name: "Lima Beaches", Lat: -12.0464, Lng: -77.0428, City: "Lima, Peru"},
	{Name: "Santo Domingo Beach", Lat: 18.4861, Lng: -69.9312, City: "Santo Domingo, Dominican Republic"},

	// Caribbean
	{Name: "Kingston Harbor", Lat: 17.9714, Lng: -76.7931, City: "Kingston, Jamaica"},
	{Name: "Port-au-Prince Bay", Lat: 18.5944, Lng: -72.3074, City: "Port-au-Prince, Haiti"},

	// Middle East
	{Name: "Alexandria Beach", Lat: 31.2001, Lng: 29.9187, City: "Alexandria, Egypt"},
	{Name: "Jeddah Beach", Lat: 21.5433, Lng: 39.1728, City: "Jeddah, Saudi Arabia"},
}

// debrisItem ties a debris type to its severity grade and payout baseline
type debrisItem struct {
	Type       string
	Urgency    models.Urgency
	BaseReward int
}

type debrisCategory struct {
	Category models.JobCategory
	Items    []debrisItem
}

var debrisCatalog = []debrisCategory{
	{
		Category: models.JobCategoryTrash,
		Items: []debrisItem{
			{Type: "Plastic bottles", Urgency: models.UrgencyHigh, BaseReward: 15},
			{Type: "Food wrappers", Urgency: models.UrgencyMedium, BaseReward: 10},
			{Type: "Cigarette butts", Urgency: models.UrgencyHigh, BaseReward: 12},
			{Type: "Plastic bags", Urgency: models.UrgencyHigh, BaseReward: 15},
			{Type: "Straws and stirrers", Urgency: models.UrgencyMedium, BaseReward: 8},
		},
	},
	{
		Category: models.JobCategoryPollution,
		Items: []debrisItem{
			{Type: "Oil spill residue", Urgency: models.UrgencyCritical, BaseReward: 25},
			{Type: "Chemical containers", Urgency: models.UrgencyCritical, BaseReward: 30},
			{Type: "Medical waste", Urgency: models.UrgencyCritical, BaseReward: 35},
			{Type: "Industrial debris", Urgency: models.UrgencyHigh, BaseReward: 20},
		},
	},
	{
		Category: models.JobCategoryReporting,
		Items: []debrisItem{
			{Type: "Abandoned fishing gear", Urgency: models.UrgencyHigh, BaseReward: 18},
			{Type: "Large debris accumulation", Urgency: models.UrgencyMedium, BaseReward: 12},
			{Type: "Wildlife hazard", Urgency: models.UrgencyCritical, BaseReward: 20},
			{Type: "Illegal dumping site", Urgency: models.UrgencyHigh, BaseReward: 22},
		},
	},
}
