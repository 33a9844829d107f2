// Package output renders run progress and writes result files.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wesleyorama2/latbench/internal/bench"
)

// ConsoleConfig contains configuration for Console.
type ConsoleConfig struct {
	Writer  io.Writer
	NoColor bool
	Quiet   bool

	// ForceColors enables colors even when Writer is not a terminal
	ForceColors bool
}

// Console prints run progress the way the measurement unfolds: a banner per
// endpoint/identity pair, a dot per call and a one-line summary.
type Console struct {
	writer    io.Writer
	colors    *ColorScheme
	useColors bool
	quiet     bool
}

// NewConsole creates a Console. Colors are used only on a terminal unless
// forced, and never when NoColor is set.
func NewConsole(config ConsoleConfig) *Console {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}

	useColors := !config.NoColor && (config.ForceColors || (IsTerminal(config.Writer) && supportsColors()))
	colors := NoColorScheme()
	if useColors {
		colors = DefaultColorScheme()
		for _, c := range colors.all() {
			c.EnableColor()
		}
	}

	return &Console{
		writer:    config.Writer,
		colors:    colors,
		useColors: useColors,
		quiet:     config.Quiet,
	}
}

// TestStarted implements bench.Observer.
func (c *Console) TestStarted(endpoint bench.Endpoint, id bench.Identity, target string) {
	if c.quiet {
		return
	}
	mode := "with mocking"
	if !id.IsMocked() {
		mode = "without mocking"
	}
	fmt.Fprintf(c.writer, "Testing %s %s... (%s)\n",
		c.colors.Name.Sprint(endpoint.Name), mode, c.colors.URL.Sprint(target))
}

// PhaseStarted implements bench.Observer.
func (c *Console) PhaseStarted(phase bench.Phase, rounds int) {
	if c.quiet {
		return
	}
	switch phase {
	case bench.PhaseWarmup:
		fmt.Fprint(c.writer, c.colors.Phase.Sprint("Warming up"))
	case bench.PhaseSampling:
		fmt.Fprint(c.writer, c.colors.Phase.Sprint("Calling"))
	}
}

// CallCompleted implements bench.Observer.
func (c *Console) CallCompleted(phase bench.Phase, sample bench.Sample) {
	if c.quiet {
		return
	}
	fmt.Fprint(c.writer, c.colors.Progress.Sprint("."))
}

// PhaseFinished implements bench.Observer.
func (c *Console) PhaseFinished(phase bench.Phase) {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.writer)
}

// ResultReady implements bench.Observer.
func (c *Console) ResultReady(result bench.AggregateResult) {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.writer, c.Summary(result))
}

// Summary formats result as "<count> <min>ms - <max>ms - <avg>ms".
func (c *Console) Summary(result bench.AggregateResult) string {
	return fmt.Sprintf("%s %s - %s - %s",
		c.colors.Count.Sprint(result.Count),
		c.colors.Latency.Sprintf("%dms", result.Min),
		c.colors.Latency.Sprintf("%dms", result.Max),
		c.colors.Latency.Sprintf("%.2fms", result.RoundedAverage()))
}

// Message prints a status line unless quiet.
func (c *Console) Message(format string, args ...interface{}) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.writer, format+"\n", args...)
}

// Success prints a success line, even when quiet.
func (c *Console) Success(format string, args ...interface{}) {
	fmt.Fprintf(c.writer, "%s %s\n", SuccessIcon(!c.useColors), fmt.Sprintf(format, args...))
}

// Failure prints a failure line, even when quiet.
func (c *Console) Failure(format string, args ...interface{}) {
	fmt.Fprintf(c.writer, "%s %s\n", ErrorIcon(!c.useColors), c.colors.Error.Sprintf(format, args...))
}

// Table prints the results as an aligned table with percentiles.
func (c *Console) Table(results []bench.AggregateResult) {
	if c.quiet {
		return
	}
	fmt.Fprint(c.writer, renderTable(results, c.colors))
}

var _ bench.Observer = (*Console)(nil)

func renderTable(results []bench.AggregateResult, colors *ColorScheme) string {
	nameWidth := len("Endpoint")
	for _, r := range results {
		if len(r.Endpoint) > nameWidth {
			nameWidth = len(r.Endpoint)
		}
	}

	var sb strings.Builder
	header := fmt.Sprintf("%-*s  %-8s %6s %7s %7s %9s %7s %7s %7s",
		nameWidth, "Endpoint", "Identity", "Count", "Min", "Max", "Avg", "P50", "P90", "P99")
	sb.WriteString(colors.Header.Sprint(header))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("━", len(header)))
	sb.WriteString("\n")

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%-*s  %-8s %6d %7s %7s %9s %7s %7s %7s\n",
			nameWidth, r.Endpoint, r.Identity,
			r.Count,
			fmt.Sprintf("%dms", r.Min),
			fmt.Sprintf("%dms", r.Max),
			fmt.Sprintf("%.2fms", r.RoundedAverage()),
			fmt.Sprintf("%dms", r.Percentiles.P50),
			fmt.Sprintf("%dms", r.Percentiles.P90),
			fmt.Sprintf("%dms", r.Percentiles.P99)))
	}
	return sb.String()
}
