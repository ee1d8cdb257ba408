package ui

// Color accessors read the active theme, so output follows InitTheme and
// --no-color without callers threading the theme through.

// ColorReset returns the reset sequence.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorBold returns the bold sequence.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorPrimary returns the accent color.
func ColorPrimary() string { return GetCurrentTheme().Primary }

// ColorDim returns the secondary color.
func ColorDim() string { return GetCurrentTheme().Secondary }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorBlue returns the info color.
func ColorBlue() string { return GetCurrentTheme().Info }

// CLIColorProvider implements apperrors.ColorProvider on top of the active
// theme.
type CLIColorProvider struct{}

// Yellow returns the warning color.
func (CLIColorProvider) Yellow() string { return ColorYellow() }

// Red returns the error color.
func (CLIColorProvider) Red() string { return ColorRed() }

// Reset returns the reset sequence.
func (CLIColorProvider) Reset() string { return ColorReset() }
