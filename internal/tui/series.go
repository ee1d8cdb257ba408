package tui

// Series holds the most recent samples of one gauge, oldest first. The TUI
// keeps one per chart line: parallel efficiency per sweep size, host CPU
// load and host memory load. Samples are percentages in [0, 100].
type Series struct {
	samples []float64
	limit   int
}

// NewSeries returns an empty series keeping at most limit samples.
func NewSeries(limit int) *Series {
	return &Series{limit: max(limit, 1)}
}

// Add appends v, dropping the oldest sample once the limit is reached.
func (s *Series) Add(v float64) {
	s.samples = append(s.samples, v)
	s.trim()
}

// Len returns the number of samples held.
func (s *Series) Len() int { return len(s.samples) }

// Limit returns the maximum number of samples held.
func (s *Series) Limit() int { return s.limit }

// Latest returns the newest sample, or 0 when the series is empty.
func (s *Series) Latest() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	return s.samples[len(s.samples)-1]
}

// Values returns a copy of the samples, oldest first.
func (s *Series) Values() []float64 {
	if len(s.samples) == 0 {
		return nil
	}
	return append([]float64(nil), s.samples...)
}

// SetLimit changes the window size. Shrinking keeps the newest samples.
func (s *Series) SetLimit(limit int) {
	s.limit = max(limit, 1)
	s.trim()
}

// Clear drops every sample and keeps the limit.
func (s *Series) Clear() {
	s.samples = s.samples[:0]
}

func (s *Series) trim() {
	if over := len(s.samples) - s.limit; over > 0 {
		s.samples = append(s.samples[:0], s.samples[over:]...)
	}
}

func clampPercent(v float64) float64 {
	return min(max(v, 0), 100)
}

// sparkLevels are the eight block heights of a one-line sparkline.
var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders percentages as a single line of block characters.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	top := len(sparkLevels) - 1
	out := make([]rune, len(values))
	for i, v := range values {
		out[i] = sparkLevels[int(clampPercent(v)/100*float64(top))]
	}
	return string(out)
}

// brailleBlank is the empty braille pattern. Each braille cell is a 2x4 dot
// grid; brailleBits[row][col] is the bit lighting one dot.
const brailleBlank = 0x2800

var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// BrailleChart plots percentages as a dot chart of rows lines by width
// cells. Each cell holds two samples, so the newest 2*width samples are
// drawn, right-aligned, with 100 on the top dot row.
func BrailleChart(values []float64, width, rows int) []string {
	if width <= 0 || rows <= 0 || len(values) == 0 {
		return nil
	}
	dotCols, dotRows := width*2, rows*4
	visible := values[max(len(values)-dotCols, 0):]
	offset := dotCols - len(visible)

	cells := make([][]rune, rows)
	for r := range cells {
		cells[r] = make([]rune, width)
		for c := range cells[r] {
			cells[r][c] = brailleBlank
		}
	}
	for i, v := range visible {
		col := offset + i
		row := dotRows - 1 - int(clampPercent(v)/100*float64(dotRows-1))
		cells[row/4][col/2] |= brailleBits[row%4][col%2]
	}

	lines := make([]string, rows)
	for r, line := range cells {
		lines[r] = string(line)
	}
	return lines
}
