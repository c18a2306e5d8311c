// Package cmd implements the capcol CLI: a cobra command tree for driving
// a capped collection over Redis from a terminal or a script.
package cmd
