// Package console implements the stdin command console that drives the control panel
// from a terminal.
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
	"github.com/google/shlex"
)

var (
	// ErrUnknownCommand is returned for a command name the console does not know.
	ErrUnknownCommand = errors.New("console: unknown command")

	// ErrUsage is returned when a known command gets the wrong arguments.
	ErrUsage = errors.New("console: usage")

	// ErrPresetsDisabled is returned by preset commands when no store is attached.
	ErrPresetsDisabled = errors.New("console: presets are disabled")
)

// PresetStore is the subset of the presets store the console uses.
type PresetStore interface {
	Save(name string, s controls.Snapshot) error
	Load(name string) (controls.Snapshot, error)
	List() ([]string, error)
	Delete(name string) error
}

// command is one console command.
type command struct {
	usage string
	run   func(c *console, args []string) (string, error)
}

// console is the implementation of the Console interface.
type console struct {
	ctrl    controls.Controls
	in      io.Reader
	out     io.Writer
	presets PresetStore
	onQuit  func()
}

// Console parses command lines with shell quoting rules and applies them to the controls.
type Console interface {
	// Execute runs a single command line.
	//
	// Parameters:
	//   - line: the command line; blank lines are ignored
	//
	// Returns:
	//   - string: the command's output, possibly empty
	//   - error: ErrUnknownCommand, ErrUsage, or the error of the underlying operation
	Execute(line string) (string, error)

	// Run reads lines from the console's input until EOF or ctx is done, writing each
	// command's output or error to the console's output.
	//
	// Parameters:
	//   - ctx: stops the loop when cancelled
	//
	// Returns:
	//   - error: a read error, or nil on EOF and cancellation
	Run(ctx context.Context) error
}

var _ Console = &console{}

// NewConsole creates a console reading commands from in and writing replies to out.
// It panics if ctrl is nil.
//
// Parameters:
//   - ctrl: the controls to drive
//   - in: command input, usually os.Stdin
//   - out: reply output, usually os.Stdout
//   - options: functional options
//
// Returns:
//   - Console: the console
func NewConsole(ctrl controls.Controls, in io.Reader, out io.Writer, options ...ConsoleOption) Console {
	if ctrl == nil {
		panic("console: NewConsole requires non-nil Controls")
	}
	c := &console{
		ctrl: ctrl,
		in:   in,
		out:  out,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":         {usage: "help", run: runHelp},
		"get":          {usage: "get", run: runGet},
		"tesselations": {usage: "tesselations <0-8>", run: runTessellations},
		"color":        {usage: "color <r> <g> <b>", run: runColor},
		"background":   {usage: "background [on|off]", run: runBackground},
		"deformation":  {usage: "deformation [on|off]", run: runDeformation},
		"load":         {usage: "load", run: runLoad},
		"preset":       {usage: "preset save|load|delete <name> | preset list", run: runPreset},
		"quit":         {usage: "quit", run: runQuit},
	}
}

func (c *console) Execute(line string) (string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return "", nil
	}

	name := strings.ToLower(args[0])
	// both spellings of the slider name are accepted
	if name == "tessellations" {
		name = "tesselations"
	}
	cmd, ok := commands[name]
	if !ok {
		return "", fmt.Errorf("%q: %w", args[0], ErrUnknownCommand)
	}
	return cmd.run(c, args[1:])
}

func (c *console) Run(ctx context.Context) error {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errs
			}
			reply, err := c.Execute(line)
			if err != nil {
				log.Printf("[Console] %v", err)
				fmt.Fprintf(c.out, "error: %v\n", err)
				continue
			}
			if reply != "" {
				fmt.Fprintln(c.out, reply)
			}
		}
	}
}

func usage(name string) error {
	return fmt.Errorf("%s: %w", commands[name].usage, ErrUsage)
}

func runHelp(_ *console, _ []string) (string, error) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString("commands:")
	for _, name := range names {
		b.WriteString("\n  " + commands[name].usage)
	}
	b.WriteString("\nkeys:")
	keys := make([]int, 0, len(controls.KeyBindings))
	for k := range controls.KeyBindings {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %c  %s", rune(k), controls.KeyBindings[k])
	}
	b.WriteString("\n  0-8  set tessellations")
	return b.String(), nil
}

func runGet(c *console, args []string) (string, error) {
	if len(args) != 0 {
		return "", usage("get")
	}
	data, err := json.Marshal(c.ctrl.Snapshot())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func runTessellations(c *console, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("tesselations")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return "", usage("tesselations")
	}
	if err := c.ctrl.SetTessellations(n); err != nil {
		return "", err
	}
	return fmt.Sprintf("tesselations = %d", n), nil
}

func runColor(c *console, args []string) (string, error) {
	if len(args) != 3 {
		return "", usage("color")
	}
	var rgb [3]int
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return "", usage("color")
		}
		rgb[i] = v
	}
	if err := c.ctrl.SetColorRGB(rgb[0], rgb[1], rgb[2]); err != nil {
		return "", err
	}
	return fmt.Sprintf("colorRGB = %v", rgb), nil
}

// parseSwitch accepts on/off and everything strconv.ParseBool accepts.
func parseSwitch(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, true
	case "off", "no":
		return false, true
	}
	v, err := strconv.ParseBool(s)
	return v, err == nil
}

// runSwitch sets a boolean control, or toggles it when no argument is given.
func runSwitch(name string, args []string, get func() bool, set func(bool)) (string, error) {
	switch len(args) {
	case 0:
		set(!get())
	case 1:
		v, ok := parseSwitch(args[0])
		if !ok {
			return "", usage(name)
		}
		set(v)
	default:
		return "", usage(name)
	}
	return fmt.Sprintf("%s = %v", name, get()), nil
}

func runBackground(c *console, args []string) (string, error) {
	return runSwitch("background", args, c.ctrl.Background, c.ctrl.SetBackground)
}

func runDeformation(c *console, args []string) (string, error) {
	return runSwitch("deformation", args, c.ctrl.Deformation, c.ctrl.SetDeformation)
}

func runLoad(c *console, args []string) (string, error) {
	if len(args) != 0 {
		return "", usage("load")
	}
	c.ctrl.RequestLoadScene()
	return "scene reload requested", nil
}

func runPreset(c *console, args []string) (string, error) {
	if c.presets == nil {
		return "", ErrPresetsDisabled
	}
	if len(args) == 1 && args[0] == "list" {
		names, err := c.presets.List()
		if err != nil {
			return "", err
		}
		if len(names) == 0 {
			return "no presets", nil
		}
		return strings.Join(names, "\n"), nil
	}
	if len(args) != 2 {
		return "", usage("preset")
	}

	name := args[1]
	switch args[0] {
	case "save":
		if err := c.presets.Save(name, c.ctrl.Snapshot()); err != nil {
			return "", err
		}
		return fmt.Sprintf("saved preset %q", name), nil
	case "load":
		s, err := c.presets.Load(name)
		if err != nil {
			return "", err
		}
		if err := c.ctrl.Restore(s); err != nil {
			return "", err
		}
		return fmt.Sprintf("loaded preset %q", name), nil
	case "delete":
		if err := c.presets.Delete(name); err != nil {
			return "", err
		}
		return fmt.Sprintf("deleted preset %q", name), nil
	default:
		return "", usage("preset")
	}
}

func runQuit(c *console, args []string) (string, error) {
	if len(args) != 0 {
		return "", usage("quit")
	}
	if c.onQuit != nil {
		c.onQuit()
	}
	return "bye", nil
}
