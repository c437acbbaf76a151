package simulation

import "time"

// stop is one waypoint in a simulated journey. Offset is relative to the
// scenario's base time.
type stop struct {
	Offset    time.Duration
	Location  string
	Latitude  float64
	Longitude float64
	EventType string
}

// scenario is one end-to-end supply-chain story with an expected verdict.
type scenario struct {
	Name           string
	Batch          batchRequest
	Journey        []stop
	ExpectedStatus string
}

// Well-known coordinates used across scenarios.
var (
	bangalore = [2]float64{12.9716, 77.5946}
	chennai   = [2]float64{13.0827, 80.2707}
	mumbai    = [2]float64{19.0760, 72.8777}
	delhi     = [2]float64{28.7041, 77.1025}
)

// scenarios returns the built-in supply-chain stories.
func scenarios() []scenario {
	return []scenario{
		{
			Name: "authentic_journey",
			Batch: batchRequest{
				DrugName:     "Paracetamol 500mg",
				GenericName:  "Acetaminophen",
				Manufacturer: "Acme Pharma",
				LicenseNo:    "KA-MFG-2024-1234",
				MRP:          30,
				Quantity:     1,
				Location:     "Bangalore",
				Latitude:     bangalore[0],
				Longitude:    bangalore[1],
			},
			Journey: []stop{
				{4 * time.Hour, "Chennai", chennai[0], chennai[1], "Quality Check"},
				{30 * time.Hour, "Mumbai", mumbai[0], mumbai[1], "Warehouse Receipt"},
			},
			ExpectedStatus: "SAFE",
		},
		{
			Name: "delayed_shipment",
			Batch: batchRequest{
				DrugName:     "Dolo 650",
				GenericName:  "Paracetamol",
				Manufacturer: "Acme Pharma",
				LicenseNo:    "MH-MFG-2023-8872",
				MRP:          32,
				Quantity:     1,
				Location:     "Mumbai",
				Latitude:     mumbai[0],
				Longitude:    mumbai[1],
			},
			Journey: []stop{
				{96 * time.Hour, "Delhi", delhi[0], delhi[1], "Warehouse Receipt"},
				{200 * time.Hour, "Delhi", delhi[0], delhi[1], "Retail Distribution"},
			},
			ExpectedStatus: "SAFE",
		},
		{
			Name: "cloned_identifier",
			Batch: batchRequest{
				DrugName:     "Amoxicillin 250mg",
				Manufacturer: "Acme Pharma",
				LicenseNo:    "KA-MFG-2024-1234",
				MRP:          85,
				Quantity:     1,
				Location:     "Mumbai",
				Latitude:     mumbai[0],
				Longitude:    mumbai[1],
			},
			Journey: []stop{
				{10 * time.Minute, "Delhi", delhi[0], delhi[1], "Consumer Scan"},
			},
			ExpectedStatus: "SUSPICIOUS",
		},
		{
			Name: "burst_scans",
			Batch: batchRequest{
				DrugName:     "Azithromycin 500mg",
				Manufacturer: "Acme Pharma",
				LicenseNo:    "KA-MFG-2024-1234",
				MRP:          120,
				Quantity:     1,
				Location:     "Mumbai",
				Latitude:     mumbai[0],
				Longitude:    mumbai[1],
			},
			Journey:        burstJourney(11, 5*time.Minute),
			ExpectedStatus: "SUSPICIOUS",
		},
	}
}

// burstJourney generates n rapid consumer scans at one retail counter,
// spaced by interval. Used to trip the scan-rate guard.
func burstJourney(n int, interval time.Duration) []stop {
	stops := make([]stop, 0, n)
	for i := 1; i <= n; i++ {
		stops = append(stops, stop{
			Offset:    time.Duration(i) * interval,
			Location:  "Mumbai",
			Latitude:  mumbai[0],
			Longitude: mumbai[1],
			EventType: "Consumer Scan",
		})
	}
	return stops
}
