// Package report turns a solver result into per-family assignment tables, a
// cost breakdown and post-solve property checks.
package report
