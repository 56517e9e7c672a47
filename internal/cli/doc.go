// Package cli implements the council command: configuration loading, the
// interactive group-chat loop and terminal rendering.
package cli
