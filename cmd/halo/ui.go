package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleKey     = lipgloss.NewStyle().Foreground(colorDim).Width(16)
	styleValue   = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
)

// plainOutput reports whether stdout is not a terminal, in which case
// output stays free of escape codes.
func plainOutput() bool {
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if plainOutput() {
		fmt.Println(msg)
		return
	}
	fmt.Println(styleSuccess.Render(iconSuccess) + " " + msg)
}

func printWarning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleWarning.Render(iconWarning)+" "+styleWarning.Render(msg))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, styleError.Render(iconError)+" "+err.Error())
}

// printField prints one "key value" line of a status block.
func printField(key string, value any) {
	if plainOutput() {
		fmt.Printf("%s: %v\n", key, value)
		return
	}
	fmt.Println(styleKey.Render(key) + styleValue.Render(fmt.Sprint(value)))
}

func printTitle(title string) {
	if plainOutput() {
		return
	}
	fmt.Println(styleTitle.Render(title))
}

func dim(s string) string {
	if plainOutput() {
		return s
	}
	return styleDim.Render(s)
}
