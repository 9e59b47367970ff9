package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// cliPrompter asks confirmations on the terminal. When stdin is not a TTY
// every confirmation is refused unless --yes was given.
type cliPrompter struct {
	in          *bufio.Reader
	out         io.Writer
	yes         bool
	interactive bool
}

func newPrompter(in io.Reader, out io.Writer, yes bool) *cliPrompter {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &cliPrompter{in: bufio.NewReader(in), out: out, yes: yes, interactive: interactive}
}

func (p *cliPrompter) Confirm(message string) bool {
	if p.yes {
		return true
	}
	if !p.interactive {
		fmt.Fprintf(p.out, "%s (refusing without a terminal; pass --yes)\n", message)
		return false
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", message)
	line, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (p *cliPrompter) Alert(message string) {
	fmt.Fprintln(p.out, message)
}

// stderrNavigator tells the operator where to sign in.
type stderrNavigator struct {
	w io.Writer
}

func (n stderrNavigator) Navigate(url string) {
	fmt.Fprintf(n.w, "Sign-in required. Open %s in a browser, then update auth.session_cookie.\n", url)
}
