// Package model defines the core data structures used throughout userclean.
//
// This package contains the following main types:
//   - RawRecord: One loosely typed input element as decoded from JSON
//   - CleanRecord: A validated and normalized user record
//   - FrequencyTable: Key counts that remember first-insertion order
//   - PipelineResult: The output of one aggregation pass
//   - Run: The state carried through the pipeline driver
//   - Summary: A condensed, serializable view of a run for reporting
package model
