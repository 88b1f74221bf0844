package tui

// Color constants for the punch TUI theme
const (
	ColorCardBackground = "#1B1530" // Dark purple
	ColorBorder         = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7" // Purple-tinted grey
	ColorDisabledText  = "#6D7383"
	ColorHelpText      = "240"

	// Accent Colors
	ColorAccentMain   = "#7C3AED"
	ColorAccentBright = "#A78BFA"

	// State Colors
	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)
