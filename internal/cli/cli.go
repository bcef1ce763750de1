package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/app"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/store/cborstore"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

// Exit codes: 0 ok, 1 runtime or storage error, 2 usage or bad index.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// exitErr carries an exit code through cobra's error path. The message has
// already been printed when msg is empty.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// rootFlags apply to every subcommand.
type rootFlags struct {
	configPath string
	dataPath   string
	theme      string
	noColor    bool
}

// env is what every command needs after flags are parsed.
type env struct {
	ctrl   *app.Controller
	stdout io.Writer
	stderr io.Writer
	notice string
}

// runTUI is swapped out in tests; the real one needs a terminal.
var runTUI = tui.Run

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitOK
	}
	var ee *exitErr
	if errors.As(err, &ee) {
		if ee.msg != "" {
			ui.Fail(stderr, ee.msg)
		}
		return ee.code
	}
	// cobra parse errors: unknown command, bad flag, wrong arg count
	ui.Fail(stderr, err.Error())
	fmt.Fprintln(stderr, root.UsageString())
	return exitUsage
}

// NewRootCommand builds the command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "todo",
		Short:         "A tiny persistent to-do list",
		Long:          "todo keeps an ordered to-do list in a single binary file. Run without arguments for the interactive list.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(flags, stdout, stderr, true)
			if err != nil {
				return err
			}
			return doInteractive(e)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (YAML, or TOML with a .toml extension)")
	pf.StringVar(&flags.dataPath, "data", "", "Data file path (default from config, else .todo.dat)")
	pf.StringVar(&flags.theme, "theme", "", "Theme: "+strings.Join(ui.Themes, ", "))
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	uiCmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(flags, stdout, stderr, true)
			if err != nil {
				return err
			}
			return doInteractive(e)
		},
	}

	var group bool
	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(flags, stdout, stderr, false)
			if err != nil {
				return err
			}
			return doList(e, group)
		},
	}
	lsCmd.Flags().BoolVar(&group, "group", false, "Group output by pending/done")

	addCmd := &cobra.Command{
		Use:     "add <text...>",
		Short:   "Add a new item at the top of the list",
		Example: `  todo add "Buy milk"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(flags, stdout, stderr, false)
			if err != nil {
				return err
			}
			return doAdd(e, strings.Join(args, " "))
		},
	}

	doneCmd := &cobra.Command{
		Use:     "done <index>",
		Short:   "Toggle done for the item at a 1-based index",
		Example: "  todo done 2",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseIndex("done", args[0])
			if err != nil {
				return err
			}
			e, err := setup(flags, stdout, stderr, false)
			if err != nil {
				return err
			}
			return doToggle(e, n)
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm <index>",
		Short:   "Remove the item at a 1-based index",
		Example: "  todo rm 3",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseIndex("rm", args[0])
			if err != nil {
				return err
			}
			e, err := setup(flags, stdout, stderr, false)
			if err != nil {
				return err
			}
			return doRemove(e, n)
		},
	}

	root.AddCommand(uiCmd, lsCmd, addCmd, doneCmd, rmCmd)
	return root
}

func parseIndex(cmd, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &exitErr{code: exitUsage, msg: cmd + ": not a number: " + s}
	}
	return n, nil
}

// setup loads config, applies flag overrides, builds the logger and the
// controller, and hydrates the list. A corrupt store is reported and the
// command continues on the empty list. Interactive runs drop diagnostic logs:
// stderr shares the terminal with the alt screen and errors already reach the
// status line.
func setup(flags rootFlags, stdout, stderr io.Writer, interactive bool) (*env, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, &exitErr{code: exitFailure, msg: "config: " + err.Error()}
	}
	if flags.dataPath != "" {
		cfg.DataPath = flags.dataPath
	}
	if flags.theme != "" {
		cfg.Theme = flags.theme
	}
	if err := cfg.Validate(); err != nil {
		return nil, &exitErr{code: exitUsage, msg: "config: " + err.Error()}
	}

	if flags.noColor {
		ui.DisableColor()
		color.NoColor = true
	}
	ui.SetTheme(cfg.Theme)
	logOut := stderr
	if interactive {
		logOut = io.Discard
	}
	e := &env{
		ctrl: app.New(app.Options{
			Path:   cfg.DataPath,
			Logger: logging.New(cfg.Logging, logOut),
		}),
		stdout: stdout,
		stderr: stderr,
	}
	if err := e.ctrl.LoadOnStartup(); err != nil {
		if !errors.Is(err, cborstore.ErrStorageCorrupt) {
			return nil, &exitErr{code: exitFailure, msg: err.Error()}
		}
		e.notice = err.Error() + " (moved aside, starting empty)"
		ui.Fail(stderr, e.notice)
	}
	return e, nil
}

// -------------- subcommand impls ----------------

func doInteractive(e *env) error {
	if err := runTUI(e.ctrl, e.notice); err != nil {
		return &exitErr{code: exitFailure, msg: "tui: " + err.Error()}
	}
	return nil
}

func doList(e *env, group bool) error {
	items := e.ctrl.Items()
	t := ui.Current()
	d, p := ui.Stats(items)

	var lines []string
	lines = append(lines, ui.Header(items))
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")
	if group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	fmt.Fprintln(e.stdout, ui.Panel(lines))
	return nil
}

func doAdd(e *env, text string) error {
	err := e.ctrl.AddItem(text)
	if errors.Is(err, app.ErrEmptyDescription) || errors.Is(err, app.ErrInvalidDescription) {
		return &exitErr{code: exitUsage, msg: "add: " + err.Error()}
	}
	if err != nil {
		return &exitErr{code: exitFailure, msg: "save: " + err.Error()}
	}
	ui.OK(e.stdout, "added")
	return nil
}

func doToggle(e *env, userIndex int) error {
	if err := e.ctrl.ToggleItem(userIndex - 1); err != nil {
		return mutationError(e, userIndex, err)
	}
	ui.OK(e.stdout, "toggled")
	return nil
}

func doRemove(e *env, userIndex int) error {
	it, err := e.ctrl.RemoveItem(userIndex - 1)
	if err != nil {
		return mutationError(e, userIndex, err)
	}
	ui.OK(e.stdout, "removed "+it.Description)
	return nil
}

func mutationError(e *env, userIndex int, err error) error {
	if errors.Is(err, store.ErrIndexOutOfRange) {
		ui.Fail(e.stderr, fmt.Sprintf("index out of range: have %d, got %d", len(e.ctrl.Items()), userIndex))
		ui.Hint(e.stderr, "run `todo ls` to see valid indexes")
		return &exitErr{code: exitUsage}
	}
	return &exitErr{code: exitFailure, msg: "save: " + err.Error()}
}

// -------------- rendering helpers --------------

func flatLines(items []model.Item) []string {
	if len(items) == 0 {
		return []string{ui.Current().Muted.Render(ui.EmptyText)}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, ui.Line(i+1, it, 80))
	}
	return out
}

// groupLines keeps each item's list number so `done`/`rm` still apply.
func groupLines(items []model.Item) []string {
	t := ui.Current()
	var pend, done []string
	for i, it := range items {
		if it.Completed {
			done = append(done, ui.Line(i+1, it, 80))
		} else {
			pend = append(pend, ui.Line(i+1, it, 80))
		}
	}
	none := []string{t.Muted.Render("(none)")}
	if len(pend) == 0 {
		pend = none
	}
	if len(done) == 0 {
		done = none
	}

	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	lines = append(lines, pend...)
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	lines = append(lines, done...)
	return lines
}
