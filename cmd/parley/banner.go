package main

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/samcharles93/parley/internal/config"
)

const bannerArt = `
 _ __   __ _ _ __| | ___ _   _
| '_ \ / _` + "`" + ` | '__| |/ _ \ | | |
| |_) | (_| | |  | |  __/ |_| |
| .__/ \__,_|_|  |_|\___|\__, |
|_|                      |___/`

const instructions = `*Usage*
  Enter an instruction and press enter (%Q quits).

*Examples*
  - Write an email to grandma thanking her for the cookies.
  - What are some historical attractions to visit around Massachusetts?
  - Compute the nth fibonacci number in javascript.
  - Write a standup comedy bit about GPU programming.
`

// printBanner clears the screen and shows the banner, the effective
// configuration, and usage instructions. Nothing prints below verbosity 1.
func printBanner(w io.Writer, cfg config.Config, endpoint string) {
	if cfg.Verbosity < 1 {
		return
	}
	fmt.Fprint(w, "\033[2J\033[1;1H")
	fmt.Fprintln(w, bannerArt)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Engine endpoint               : %s\n", endpoint)
	fmt.Fprintf(w, "Max tokens                    : %d\n", cfg.MaxTokens)
	fmt.Fprintf(w, "Max generated tokens          : %d\n", cfg.MaxGeneratedTokens)
	fmt.Fprintf(w, "Multiturn                     : %t\n", cfg.Multiturn)
	fmt.Fprintf(w, "Deterministic                 : %t\n", cfg.Deterministic)
	if cfg.Verbosity >= 2 {
		fmt.Fprintf(w, "Date & Time                   : %s\n", time.Now().Format(time.ANSIC))
		fmt.Fprintf(w, "Hardware concurrency          : %d\n", runtime.NumCPU())
		fmt.Fprintf(w, "Engine worker threads         : %d\n", cfg.NumThreads)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, instructions)
	fmt.Fprintln(w)
}
