package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/halo/internal/config"
	"github.com/1broseidon/halo/internal/desktop"
	"github.com/1broseidon/halo/internal/ipc"
	"github.com/1broseidon/halo/internal/platform"
	"github.com/1broseidon/halo/internal/radial"
	"github.com/1broseidon/halo/internal/setup"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "show":
		os.Exit(runSimple("show", os.Args[2:], (*ipc.Client).Show))
	case "hide":
		os.Exit(runSimple("hide", os.Args[2:], (*ipc.Client).Hide))
	case "toggle":
		os.Exit(runSimple("toggle", os.Args[2:], (*ipc.Client).Toggle))
	case "reload":
		os.Exit(runSimple("reload", os.Args[2:], (*ipc.Client).Reload))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "raise":
		os.Exit(runRaise(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "setup":
		os.Exit(runSetup(os.Args[2:]))
	case "render":
		os.Exit(runRender(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: halo <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the halo daemon (foreground)")
	fmt.Fprintln(w, "  show                Open the menu at the cursor")
	fmt.Fprintln(w, "  hide                Close the menu")
	fmt.Fprintln(w, "  toggle              Open or close the menu")
	fmt.Fprintln(w, "  reload              Re-read the configuration")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  layout              Print the current layout as JSON")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  raise <app>         Focus a window of app or launch it")
	fmt.Fprintln(w, "  render              Render the menu to a PNG file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config init         Write the default configuration")
	fmt.Fprintln(w, "  setup               Bind slots interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'halo <command> --help' for command-specific options.")
}

// runSimple sends a command without payload to the daemon.
func runSimple(name string, args []string, send func(*ipc.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: halo %s\n", name)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	if err := send(ipc.NewClient()); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: halo status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		if errors.Is(err, ipc.ErrNoDaemon) {
			printWarning(os.Stderr, "daemon not running (start it with 'halo daemon')")
			return 1
		}
		printError(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(status)
	}

	printTitle("halo")
	printField("visible", status.Visible)
	printField("phase", status.Phase)
	if status.Hovered != nil {
		printField("hovered", radial.DirectionFromIndex(*status.Hovered))
	}
	printField("backend", status.Backend)
	printField("config", status.ConfigPath)
	printField("scale_factor", fmt.Sprintf("%.2f", status.ScaleFactor))
	printField("subslots", status.SubslotCount)
	printField("uptime_seconds", status.UptimeSeconds)
	for i, app := range status.Slots {
		if app == "" {
			app = dim("-")
		}
		printField(radial.DirectionFromIndex(i).String(), app)
	}
	return 0
}

func runLayout(args []string) int {
	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: halo layout")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the geometry of the last layout pass as JSON.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	layout, err := ipc.NewClient().GetLayout()
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return printJSON(layout)
}

func runRaise(args []string) int {
	fs := flag.NewFlagSet("raise", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	class := fs.String("c", "", "Window class to match (default: from the desktop entry)")
	command := fs.String("e", "", "Command to run when no window matches (default: from the desktop entry)")
	backendName := fs.String("backend", "", "Backend: auto, x11 or hyprland (default: from config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: halo raise <app> [-c class] [-e exec] [--backend NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Focus the best matching window of app, or launch it when none is open.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}

	// Accept the app name before or after the flags.
	var name string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if name == "" && fs.NArg() > 0 {
		name = fs.Arg(0)
	}
	if name == "" && *class == "" && *command == "" {
		fmt.Fprintln(os.Stderr, "raise requires an app, -c or -e")
		fs.Usage()
		return 2
	}

	cfg, _, _ := config.LoadOrSetup()
	if *backendName == "" {
		*backendName = cfg.Backend
	}

	app := radial.App{Name: name, Class: name, Exec: *command}
	if name != "" {
		registry := desktop.NewRegistry(desktop.ApplicationDirs(), nil, nil)
		if err := registry.Refresh(); err != nil {
			printWarning(os.Stderr, "failed to scan desktop entries: %v", err)
		}
		app = registry.Resolve(name, *class, *command)
	} else if *class != "" {
		app.Class = *class
	}

	backend, closeBackend, err := openBackend(*backendName, nil)
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}
	defer closeBackend()

	res, err := platform.RunOrRaise(backend, app.Class, app.Exec, nil)
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}
	if res.Raised {
		printSuccess("raised %s %s", res.Window.Class, dim(fmt.Sprintf("(%s, %s match)", res.Window.ID, res.Score)))
	} else {
		printSuccess("launched %s", app.Exec)
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  halo config path")
		fmt.Fprintln(os.Stderr, "  halo config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  halo config print [--path PATH] [--defaults] [--format yaml|toml]")
		fmt.Fprintln(os.Stderr, "  halo config explain [--path PATH] <yaml.path>")
		fmt.Fprintln(os.Stderr, "  halo config init [--path PATH]")
		return 2
	}

	switch args[0] {
	case "path":
		path, err := config.ResolvePath()
		if err != nil {
			printError(os.Stderr, err)
			return 1
		}
		fmt.Println(path)
		return 0

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/halo/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			printError(os.Stderr, err)
			return 1
		}
		printSuccess("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/halo/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		format := fs.String("format", "yaml", "Output format: yaml or toml")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		f := config.Format(strings.ToLower(*format))
		if f != config.FormatYAML && f != config.FormatTOML {
			fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
			return 2
		}

		var (
			cfg *config.Config
			err error
		)
		switch {
		case *printDefaults:
			cfg = config.DefaultConfig()
		case *path != "":
			cfg, err = config.LoadFromPath(*path)
		default:
			cfg, err = config.Load()
		}
		if err != nil {
			printError(os.Stderr, err)
			return 1
		}
		data, err := cfg.Marshal(f)
		if err != nil {
			printError(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/halo/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		var (
			cfg *config.Config
			err error
		)
		if *path == "" {
			cfg, err = config.Load()
		} else {
			cfg, err = config.LoadFromPath(*path)
		}
		if err != nil {
			printError(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(cfg, queryPath)
		if err != nil {
			printError(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			printError(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", src)
		fmt.Printf("value:\n%s", string(out))
		return 0

	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/halo/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		target := *path
		if target == "" {
			p, err := config.DefaultConfigPath()
			if err != nil {
				printError(os.Stderr, err)
				return 1
			}
			target = p
		}
		written, err := config.WriteDefault(target)
		if err != nil {
			printError(os.Stderr, err)
			return 1
		}
		printSuccess("config: %s", written)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runSetup(args []string) int {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/halo/config.yaml)")
	noReload := fs.Bool("no-reload", false, "Do not ask a running daemon to reload")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: halo setup [--path PATH] [--no-reload]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Bind applications to directions interactively and save the config.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	target := *path
	if target == "" {
		p, err := config.ResolvePath()
		if err != nil {
			printError(os.Stderr, err)
			return 1
		}
		target = p
	}

	cfg, err := config.LoadFromPath(target)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			printError(os.Stderr, err)
			return 1
		}
		cfg = config.DefaultConfig()
	}

	registry := desktop.NewRegistry(desktop.ApplicationDirs(), nil, nil)
	if err := registry.Refresh(); err != nil {
		printWarning(os.Stderr, "failed to scan desktop entries: %v", err)
	}
	var apps []string
	for _, e := range registry.Entries() {
		apps = append(apps, e.Name)
	}

	updated, err := setup.Run(cfg, apps)
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}
	if err := updated.Save(target); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	printSuccess("saved %s", target)

	if !*noReload {
		if err := ipc.NewClient().Reload(); err == nil {
			printSuccess("daemon reloaded")
		} else if !errors.Is(err, ipc.ErrNoDaemon) {
			printWarning(os.Stderr, "reload failed: %v", err)
		}
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}
