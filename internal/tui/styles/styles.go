package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	DriveBlue  = lipgloss.Color("#4285F4")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Yellow     = lipgloss.Color("#F59E0B")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(DriveBlue)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Yellow)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)
)

// Pin indicator
const PinChar = "📌"

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// Favorite bar styles
var (
	SlotStyle = lipgloss.NewStyle().
			Foreground(DriveBlue).
			Bold(true)

	SlotLabelStyle = lipgloss.NewStyle().
			Foreground(LightGray)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(DriveBlue)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Extras prompt style
var (
	PromptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DriveBlue).
			Padding(0, 1)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(DriveBlue)
)

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
