package config

// Year range covered by every dataset. Column headers run
// "1990/91" through "2019/20"; the leading year is the key.
const (
	YearMin = 1990
	YearMax = 2019
)

// ExportSentinel is the placeholder written into the export dataset
// where no measurement exists. It is int32 min and must never reach
// an aggregation.
const ExportSentinel = -2147483648

// Coffee palette shared by every chart. Order matters: builders cycle
// through it when a series needs more colors than entries.
var CoffeePalette = []string{
	"#4A2C2A", // dark roast
	"#6B4226", // roast
	"#967259", // medium
	"#B99C6B", // light
	"#F5EBDC", // cream
}

// Chart surface colors.
const (
	ColorPaper = "#FAF7F2"
	ColorInk   = "#33211F"
)

// Years returns the full list of dataset years in ascending order.
func Years() []int {
	years := make([]int, 0, YearMax-YearMin+1)
	for y := YearMin; y <= YearMax; y++ {
		years = append(years, y)
	}
	return years
}
