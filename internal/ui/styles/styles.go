// Package styles provides shared lipgloss styles for terminal output.
//
// It also maps the registry's worktree color palette to terminal
// colors, so a worktree renders with the same color in every command.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/DarrenTsung/checkout-pr/internal/registry"
)

// Core colors used throughout the output.
var (
	// Success is used for checkmarks and positive outcomes (green)
	Success color.Color = lipgloss.Color("82")

	// Error is used for error messages (red)
	Error color.Color = lipgloss.Color("196")

	// Warning is used for dirty/stale indicators (orange)
	Warning color.Color = lipgloss.Color("214")

	// Muted is used for secondary text (gray)
	Muted color.Color = lipgloss.Color("240")

	// Accent is used for paths and identifiers (cyan/teal)
	Accent color.Color = lipgloss.Color("62")
)

// Common styles.
var (
	Bold         = lipgloss.NewStyle().Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	AccentStyle  = lipgloss.NewStyle().Foreground(Accent)
)

// palette maps registry color names to terminal colors.
var palette = map[registry.Color]color.Color{
	"red":     lipgloss.Color("196"),
	"green":   lipgloss.Color("82"),
	"yellow":  lipgloss.Color("226"),
	"blue":    lipgloss.Color("33"),
	"magenta": lipgloss.Color("201"),
	"cyan":    lipgloss.Color("51"),
	"orange":  lipgloss.Color("214"),
	"violet":  lipgloss.Color("135"),
}

// WorktreeStyle returns a style rendering text in the worktree's
// assigned palette color. Unknown names fall back to Muted.
func WorktreeStyle(c registry.Color) lipgloss.Style {
	if col, ok := palette[c]; ok {
		return lipgloss.NewStyle().Foreground(col)
	}
	return MutedStyle
}
