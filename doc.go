// Package folio values a personal equity portfolio from its trade ledger.
//
// The ledger is a list of immutable buy and sell transactions. Combined with a
// snapshot of price quotes, it is folded by Aggregate into open positions and a
// portfolio summary:
//   - Cost Basis: weighted average cost, buy fees capitalized, sell fees ignored.
//   - Profit and Loss: unrealized on open positions, realized across the whole
//     ledger history, and the day's move from the quotes.
//   - Analytics: NewReport derives read-only views from the aggregation, such as
//     sector allocation, winners and losers, annualized return, a trading
//     activity heatmap, and a diversification score.
//
// The engine is pure: it performs no I/O, reads no clock and returns no error.
// Reading and writing the ledger, fetching quotes and producing AI commentary
// belong to the collaborator packages (store, sheet, sqlite, agent, news).
//
// This package serves as the foundational logic for the `pcs` command-line
// tool.
package folio
