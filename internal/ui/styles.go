// Package ui renders the colored task and epic listings.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange/Yellow
	ColorText      = lipgloss.Color("252") // White/Gray
	ColorCyan      = lipgloss.Color("87")  // Cyan for epics
	ColorBlue      = lipgloss.Color("75")  // Blue for drafts

	// Base Styles
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleText    = lipgloss.NewStyle().Foreground(ColorText)
	StyleEpic    = lipgloss.NewStyle().Foreground(ColorCyan)
	StyleDraft   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleHash    = lipgloss.NewStyle().Foreground(ColorWarning)
)
