// Package listview provides a virtually scrolled list for Bubble Tea views.
//
// Only the rows inside the viewport are rendered, so
// folders with thousands of budget titles stay responsive. The list handles
// cursor movement itself; the owning model decides what Enter means.
package listview
