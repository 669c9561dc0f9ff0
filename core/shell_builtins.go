package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

var (
	colorRunning = color.New(color.FgGreen, color.Bold)
	colorDone    = color.New(color.FgBlue, color.Bold)
	colorName    = color.New(color.FgCyan, color.Bold)
)

// builtinCommand parses a builtin's flags and provides --help.
type builtinCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the builtin.
	Short string

	flags *getopt.Set
}

// Flags gets the builtin's flag set.
func (b *builtinCommand) Flags() *getopt.Set {
	if b.flags == nil {
		b.flags = getopt.New()
	}

	return b.flags
}

// PrintHelp writes help for the builtin to the given writer.
func (b *builtinCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, b.Use)
	fmt.Fprintln(w, b.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	b.Flags().PrintOptions(w)
}

// Run parses args, if parsing was successful the callback gets the
// remaining operands.
func (b *builtinCommand) Run(s *Shell, args []string, callback func(operands []string) int) int {
	opts := b.Flags()
	showHelp := opts.BoolLong("help", 'h', "show this help and exit")

	if err := opts.Getopt(args, nil); err != nil {
		fmt.Fprintf(s.stderr, "%s: %s\n", args[0], err)
		b.PrintHelp(s.stderr)
		return 1
	}

	if *showHelp {
		b.PrintHelp(s.stdout)
		return 0
	}

	return callback(opts.Args())
}

// Cd is the cd shell builtin
func Cd(s *Shell, args []string) int {
	cmd := &builtinCommand{
		Use:   "cd [DIR]",
		Short: "Change the working directory, to the home directory without DIR.",
	}

	return cmd.Run(s, args, func(operands []string) int {
		var dir string
		switch len(operands) {
		case 0:
			dir = s.config.HomeDir()
			if dir == "" {
				fmt.Fprintf(s.stderr, "%s: HOME not set\n", args[0])
				return 1
			}
		case 1:
			dir = operands[0]
		default:
			fmt.Fprintf(s.stderr, "%s: too many arguments\n", args[0])
			return 1
		}

		if err := os.Chdir(dir); err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				err = pathErr.Err
			}
			fmt.Fprintf(s.stderr, "%s: %s: %v\n", args[0], dir, err)
			return 1
		}
		return 0
	})
}

// Status prints how the last foreground job finished.
func Status(s *Shell, args []string) int {
	cmd := &builtinCommand{
		Use:   "status",
		Short: "Print the exit value or terminating signal of the last foreground command.",
	}

	return cmd.Run(s, args, func([]string) int {
		fmt.Fprintln(s.stdout, s.status.Report())
		return 0
	})
}

// Exit quits the shell after terminating background jobs.
func Exit(s *Shell, args []string) int {
	cmd := &builtinCommand{
		Use:   "exit",
		Short: "Terminate background jobs and exit the shell.",
	}

	return cmd.Run(s, args, func([]string) int {
		s.Exit()
		return 0
	})
}

// Jobs lists outstanding background jobs.
func Jobs(s *Shell, args []string) int {
	cmd := &builtinCommand{
		Use:   "jobs",
		Short: "List background jobs that haven't been reported as done.",
	}

	return cmd.Run(s, args, func([]string) int {
		for i, r := range s.jobs.Jobs() {
			state := colorRunning.Sprint("Running")
			if r.Poll() {
				state = colorDone.Sprint("Done")
			}
			fmt.Fprintf(s.stdout, "[%d] %d %s %s\n", i+1, r.PID, state, strings.Join(r.Command, " "))
		}
		return 0
	})
}

func Help(s *Shell, args []string) int {
	cmd := &builtinCommand{
		Use:   "help",
		Short: "List the shell builtins.",
	}

	return cmd.Run(s, args, func([]string) int {
		w := s.stdout
		fmt.Fprintln(w, "smallsh, a small shell.")
		fmt.Fprintln(w, "These shell commands are defined internally. Type `NAME --help' to find out more about NAME.")
		fmt.Fprintln(w)

		for _, name := range BuiltinNames() {
			colorName.Fprintln(w, name)
		}
		return 0
	})
}

// BuiltinNames returns the sorted names of all builtins.
func BuiltinNames() []string {
	var builtins []string
	for k := range AllBuiltins {
		builtins = append(builtins, k)
	}
	sort.Strings(builtins)
	return builtins
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["status"] = ShellBuiltinFunc(Status)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["jobs"] = ShellBuiltinFunc(Jobs)
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
}
