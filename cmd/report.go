package cmd

import (
	"fmt"

	sim "github.com/roadsim/kernel/sim"
)

// printReport renders the final state and congestion report to stdout
// as an end-of-run summary.
func printReport(state sim.StateSnapshot, report sim.CongestionReport) {
	fmt.Println("=== Simulation State ===")
	fmt.Printf("Step                 : %d\n", state.Step)
	fmt.Printf("Total Spawned        : %d\n", state.TotalSpawned)
	fmt.Printf("Active / Arrived     : %d / %d\n", state.VehicleStatistics.ActiveVehicles, state.VehicleStatistics.ArrivedVehicles)
	fmt.Printf("Average Travel Time  : %.2f s\n", state.VehicleStatistics.AverageTravelTime)
	fmt.Printf("Total Reroutes       : %d\n", state.VehicleStatistics.TotalReroutes)

	fmt.Println("--- Congestion Report ---")
	fmt.Printf("Congested Edges      : %d / %d (factor %.2f)\n",
		report.Global.CongestedEdges, report.Global.TotalEdges, report.Global.CongestionFactor)
	for _, b := range report.Bottlenecks {
		fmt.Printf("  %-12s mult=%.2f occupancy=%d\n", b.Edge.String(), b.Multiplier, b.Occupancy)
	}
}
