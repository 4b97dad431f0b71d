package logging

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"utsc/common"
	"utsc/diag"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a standard Go error to the console
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintWarningMessage prints a warning message to the console
func PrintWarningMessage(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// -----------------------------------------------------------------------------

// displaySyntaxError displays a syntax error with a banner and, when the
// error carries a location, the offending source line.
func displaySyntaxError(se *diag.SyntaxError, inputDir string) {
	fmt.Print("\n\n-- ")
	ErrorStyleBG.Print("Syntax Error")
	fmt.Print(" ")

	fileName := "<unknown>"
	if se.File != "" {
		fileName = filepath.Base(se.File)
	}

	bannerLen := pterm.GetTerminalWidth() / 2
	if bannerLen > 50 {
		bannerLen = 50
	}

	dashCount := bannerLen - len(fileName) - len("Syntax Error") - 1
	if dashCount < 3 {
		dashCount = 3
	}

	fmt.Print(strings.Repeat("-", dashCount) + " ")
	InfoColorFG.Println(fileName)

	fmt.Println(se.Error())

	if se.File != "" && se.Line > 0 {
		path := se.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(inputDir, path)
		}

		displayCodeLine(path, se.Line, se.Column)
	}
}

// displayCodeLine displays the erroneous line (with its line number) and marks
// the error column.  Nothing is shown if the file cannot be read.
func displayCodeLine(path string, line, col int) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanLines)

	var text string
	found := false
	for lineNumber := 1; sc.Scan(); lineNumber++ {
		if lineNumber == line {
			text = sc.Text()
			found = true
			break
		}
	}

	if !found {
		return
	}

	// trim leading whitespace so deeply nested code stays readable
	expanded := strings.ReplaceAll(text, "\t", "    ")
	trimmed := strings.TrimLeft(expanded, " ")
	indent := len(expanded) - len(trimmed)

	lineNumberWidth := len(strconv.Itoa(line)) + 1
	lineNumberFmtStr := "%-" + strconv.Itoa(lineNumberWidth) + "v"

	fmt.Println()
	InfoColorFG.Print(fmt.Sprintf(lineNumberFmtStr, line))
	fmt.Print("|  ")
	fmt.Println(trimmed)

	fmt.Print(strings.Repeat(" ", lineNumberWidth), "|  ")
	caretCol := col - 1 - indent
	if caretCol < 0 {
		caretCol = 0
	}

	fmt.Print(strings.Repeat(" ", caretCol))
	ErrorColorFG.Println("^")
	fmt.Println()
}

// -----------------------------------------------------------------------------

// displayHeader displays the compiler information before compilation starts
func displayHeader(platform common.Platform, mode string, caching bool) {
	fmt.Print("utsc ")
	InfoColorFG.Print("v" + common.UTSCVersion)
	fmt.Print(" -- platform: ")
	InfoColorFG.Print(platform.String())
	fmt.Print(" -- mode: ")
	InfoColorFG.Println(mode)

	if caching {
		fmt.Println("compiling using cache")
	}
}

// phase stores the state of the current phase spinner
var phase struct {
	m         sync.Mutex
	spinner   *pterm.SpinnerPrinter
	name      string
	startTime time.Time
}

const maxPhaseLength = len("Compiling")

// displayBeginPhase displays the beginning of a compilation phase.  The
// spinner is only animated on color terminals.
func displayBeginPhase(name string, animate bool) {
	phase.m.Lock()
	defer phase.m.Unlock()

	phase.name = name
	phase.startTime = time.Now()
	phaseText := name + "..." + strings.Repeat(" ", padding(name))

	if !animate {
		fmt.Println(phaseText)
		return
	}

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))
	spinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}

	spinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	phase.spinner, _ = spinner.Start(phaseText)
}

// displayEndPhase displays the end of a compilation phase
func displayEndPhase(success bool) {
	phase.m.Lock()
	defer phase.m.Unlock()

	if phase.spinner == nil {
		return
	}

	if success {
		phase.spinner.Success(
			phase.name+strings.Repeat(" ", padding(phase.name)),
			fmt.Sprintf("(%.3fs)", time.Since(phase.startTime).Seconds()),
		)
	} else {
		phase.spinner.Fail(phase.name + strings.Repeat(" ", padding(phase.name)))
	}

	phase.spinner = nil
}

func padding(name string) int {
	if len(name) > maxPhaseLength {
		return 2
	}

	return maxPhaseLength - len(name) + 2
}

// displayFinished displays a compilation finished message
func displayFinished(success bool, errorCount, warningCount int) {
	fmt.Print("\n")

	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Println(" warnings)")
	case 1:
		WarnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		WarnColorFG.Print(warningCount)
		fmt.Println(" warnings)")
	}
}
