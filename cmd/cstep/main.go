package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/tinyrange/cstep/internal/check"
	"github.com/tinyrange/cstep/internal/config"
	"github.com/tinyrange/cstep/internal/interp"
	"github.com/tinyrange/cstep/internal/parser"
)

const historyFile = ".cstep_history"

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cstep [-config cfg.yaml] [-step] [-trace] [-max-steps n] <file.c>")
}

func main() {
	var (
		srcPath  string
		cfgPath  string
		step     bool
		trace    bool
		maxSteps int
	)
	// Minimal arg parsing; flags may appear anywhere
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-config" && i+1 < len(args):
			cfgPath = args[i+1]
			i++
		case a == "-max-steps" && i+1 < len(args):
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n < 0 {
				fmt.Fprintf(os.Stderr, "invalid -max-steps %q\n", args[i+1])
				os.Exit(2)
			}
			maxSteps = n
			i++
		case a == "-step":
			step = true
		case a == "-trace":
			trace = true
		case a == "-h" || a == "-help":
			usage()
			os.Exit(0)
		case srcPath == "" && len(a) > 0 && a[0] != '-':
			srcPath = a
		default:
			fmt.Fprintf(os.Stderr, "unexpected argument %q\n", a)
			usage()
			os.Exit(2)
		}
	}
	if srcPath == "" {
		usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.LoadFile(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		os.Exit(1)
	}
	f, err := parser.ParseFile(srcPath, string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
		os.Exit(1)
	}
	tu, err := check.Check(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	rt, err := interp.New(tu, cfg, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
		os.Exit(1)
	}
	if trace {
		rt.SetTrace(os.Stderr)
	}

	if step {
		err = stepper(rt)
	} else {
		err = rt.Run(maxSteps)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	code, ok := rt.ExitCode()
	if !ok {
		os.Exit(1)
	}
	os.Exit(code)
}

// stepper drives rt from an interactive prompt until the program exits or
// the user quits.
func stepper(rt *interp.Runtime) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	last := "s"
	for {
		if _, done := rt.ExitCode(); done {
			return nil
		}
		line, err := ln.Prompt(fmt.Sprintf("[%d] ", rt.Steps()))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			line = last
		} else {
			ln.AppendHistory(line)
		}
		last = line
		fields := strings.Fields(line)
		switch fields[0] {
		case "s":
			n := 1
			if len(fields) > 1 {
				if n, err = strconv.Atoi(fields[1]); err != nil || n < 1 {
					fmt.Println("usage: s [n]")
					continue
				}
			}
			for i := 0; i < n; i++ {
				if err := rt.Step(); err != nil {
					if errors.Is(err, interp.ErrAgendaEmpty) {
						break
					}
					return err
				}
			}
			printAgendaTop(os.Stdout, rt.View())
		case "c":
			return rt.Run(0)
		case "v":
			printView(os.Stdout, rt.View())
		case "q":
			return nil
		default:
			fmt.Println("commands: s [n] step, c continue, v view, q quit")
		}
	}
}

func printAgendaTop(w io.Writer, v *interp.View) {
	if len(v.Agenda) == 0 {
		fmt.Fprintln(w, "agenda empty")
		return
	}
	top := v.Agenda[len(v.Agenda)-1]
	fmt.Fprintf(w, "next: %s lvalue=%t (agenda %d, stash %d)\n", top.Desc, top.LValue, len(v.Agenda), len(v.Stash))
}

func printView(w io.Writer, v *interp.View) {
	fmt.Fprintf(w, "steps %d, blocks entered %d exited %d\n", v.Steps, v.BlocksEntered, v.BlocksExited)
	fmt.Fprintln(w, "agenda (top first):")
	for i := len(v.Agenda) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "  %s lvalue=%t\n", v.Agenda[i].Desc, v.Agenda[i].LValue)
	}
	fmt.Fprintln(w, "stash (top first):")
	for i := len(v.Stash) - 1; i >= 0; i-- {
		s := v.Stash[i]
		fmt.Fprintf(w, "  %s % x", s.Type, s.Bytes)
		if s.HasAddr {
			fmt.Fprintf(w, " @0x%x", s.Addr)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "frames:")
	for _, f := range v.Frames {
		fmt.Fprintf(w, "  %s [0x%x, 0x%x)\n", f.Function, f.Base, f.Top)
	}
	fmt.Fprintln(w, "objects:")
	for _, o := range v.Objects {
		fmt.Fprintf(w, "  %s %s %s @0x%x\n", o.Scope, o.Type, o.Name, o.Addr)
	}
	fmt.Fprintf(w, "heap: %d bytes in %d blocks\n", v.HeapUsage, len(v.Heap))
	if v.ExitCode != nil {
		fmt.Fprintf(w, "exit code %d\n", *v.ExitCode)
	}
}
