// Command fleetmon is a Bubble Tea TUI that polls a robotd fleet snapshot
// endpoint and displays live robot status.
//
// Usage:
//
//	./fleetmon [--addr http://127.0.0.1:9998] [--interval 2s]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stlalpha/robotd/internal/fleetmon"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:9998", "robotd fleet snapshot endpoint")
	interval := flag.Duration("interval", 2*time.Second, "poll interval")
	flag.Parse()

	model := fleetmon.New(*addr, *interval)

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
