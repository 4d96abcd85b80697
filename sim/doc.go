// Package sim provides the core simulation kernel for a multi-entity
// road-network traffic simulator.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - agent.go: Agent kinematic state and path cursor (one mobile entity)
//   - registry.go: AgentRegistry, owning every agent and edge occupancy
//   - weightfield.go: WeightField, the per-edge congestion multiplier table
//   - incidents.go: IncidentBook, accident lifecycle and manual road blocks
//   - router.go: A* shortest-path search over a live WeightField snapshot
//   - kernel.go: the tick orchestrator tying all of the above together
//
// # Architecture
//
// Graph loading, coordinate provisioning, and transport/serialization are
// external collaborators and out of this package's scope; Graph and
// Coordinates (graph.go) are the read-only contracts the kernel consumes.
// TrafficAnalyzer (analyzer.go) is likewise an external collaborator
// contract, with one concrete in-process implementation (DensityAnalyzer)
// shipped so the kernel runs standalone.
//
// # Key Interfaces
//
// The extension points are small, single-purpose interfaces:
//   - TrafficAnalyzer: statistical views over live congestion
//   - HeuristicFunc: admissible distance estimate for the A* search
//
// See DESIGN.md at the repository root for the grounding ledger mapping
// each file to the design rationale and example it was built from.
package sim
