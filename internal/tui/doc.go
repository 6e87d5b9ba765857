// Package tui implements the interactive terminal browser for a budget data
// tree. Two modes share one model: tree mode expands folders in place and
// drill mode shows a single folder with breadcrumbs and a back-stack.
//
// Loads run as tea.Cmds. Every result message carries the generation it was
// started under and is dropped when the navigator or loader moved on.
package tui
