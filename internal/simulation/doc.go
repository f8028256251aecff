// Package simulation derives respondent choices from a conjoint design.
//
// Every respondent is assigned a version up front. In each task the
// respondent picks the concept whose level on a single driver attribute is
// highest; ties go to the first such row in design order. One driver is used
// for the whole run.
//
// All randomness comes from one explicitly seeded stream, drawn in a fixed
// order: the driver (only when none is given), then one version per
// respondent.
//
// Usage:
//
//	table, err := design.Generate(cfg, design.MethodRandom, 999)
//	...
//	responses, err := simulation.Simulate(table, cfg, simulation.Options{
//	    Driver:      "price",
//	    Respondents: 50,
//	}, 999)
package simulation
