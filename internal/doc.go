// Package internal runs the per-file analysis of plint.
//
// Engine: parses a file with tree-sitter, walks the tree once with the
// rule callbacks of the active rule set (see package checker), removes the
// issues silenced by `# noqa` comments (see package nolint) and, in fix
// mode, applies conflict-free fixes until the file stops changing (see
// package fixer).
//
// Cache: stores the issues of a lint pass in sqlite, keyed by the file
// contents, the rule set and the engine version.
//
// Watcher: re-runs a callback for source files changed on disk.
//
// Usage:
//
//	engine := internal.NewEngine(internal.WithLogger(logger))
//	set := engine.Registry().RuleSet([]string{"F"}, nil, nil)
//	res := engine.Run(ctx, "pkg/mod.py", set)
//	for _, issue := range res.Issues {
//	    fmt.Println(issue.Start, issue.Rule, issue.Message)
//	}
package internal
