package ui

// Symbols used in status and diagnostic output.
const (
	SymbolWhale = "🐳" // Prefix for compact status-line output
	SymbolFail  = "✗"  // Failed operation
)
