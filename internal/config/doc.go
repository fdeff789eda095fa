// Package config loads the derive manifest: the package to analyze, the
// types to generate round-trip functions for and the alias functions to
// apply.
//
// Example roundtrip.yaml:
//
//	version: "1"
//	package: ./examples/deriving
//	output: roundtrip_gen.go
//	types:
//	  - Msg
//	  - name: TestEnum
//	    func: RoundTripEnum
//	  - name: Draft
//	    target: Note
//	aliases:
//	  - FoldLabel
package config
