// Package notetrack computes habit and progress trackers from a folder of
// markdown notes.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/notetrack/engine"
//	    "github.com/spektr-org/notetrack/store"
//	    "github.com/spektr-org/notetrack/tracker"
//	)
//
//	cfgs, err := tracker.Parse(blockText)
//	notes, err := store.NewOSFS("/path/to/vault")
//	data, err := engine.New(notes).Execute(ctx, cfgs[0], "Daily/2026-10-19.md")
//
// The tracker package parses ```tracker blocks into validated configs. The
// engine scans tables and patterns through a store and returns counts,
// goals, streaks and time series. Rendering is left to the render package
// or to the caller. Nothing is written back to the notes.
package notetrack

// Version is the release of the module and its CLI.
const Version = "0.3.0"
