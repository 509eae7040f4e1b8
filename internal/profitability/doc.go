// Package profitability implements the sales profitability pipeline: record
// filtering, grouped aggregation with ratio-of-sums margins, two-axis median
// classification, Pareto concentration analysis, monthly margin volatility,
// KPI summaries and rule-based insights.
//
// Every stage is a pure function of its inputs. Aggregate tables, labels and
// thresholds are rebuilt from scratch on each run; nothing is mutated
// incrementally, so cached record sets can be shared across concurrent runs
// without locking.
package profitability
