package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pders01/scene-state/internal/config"
	"github.com/pders01/scene-state/internal/registry"
	"github.com/pders01/scene-state/internal/saveable"
	"github.com/pders01/scene-state/internal/scene"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start an interactive session against a live scene host",
	Long: `Start a line-oriented session that keeps scenes and objects live between
commands, so state can be changed, saved and loaded back.

Commands:
  scenes                          loaded scenes, active one marked
  catalog                         scenes available to open
  objects                         live objects and their transforms
  open <scene> [additive]         load a scene
  active <scene>                  make a loaded scene active
  move <id> <x> <y> <z>           set an object's position
  rotate <id> <x> <y> <z> <w>     set an object's rotation
  scale <id> <x> <y> <z>          set an object's scale
  save                            write the save file
  load                            restore the save file
  quit                            leave the session

Object IDs may be shortened to any unique prefix. Changes to save.pretty
in the config file are picked up while the session runs.`,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			rt.engine.SetPretty(config.GetPretty())
			rt.logger.Info("config reloaded", "file", e.Name)
		})
		viper.WatchConfig()
	}

	ctx := commandContext(cmd)
	if startup := config.GetStartupScenes(); len(startup) > 0 {
		if err := rt.boot(ctx, startup); err != nil {
			return err
		}
	}

	var in io.Reader = os.Stdin
	if cmd != nil {
		in = cmd.InOrStdin()
	}
	return (&session{rt: rt, out: outWriter(cmd)}).run(ctx, in)
}

type session struct {
	rt  *runtime
	out io.Writer
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		quit, err := s.exec(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the session should end.
func (s *session) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	host := s.rt.host
	switch verb, args := fields[0], fields[1:]; verb {
	case "quit", "exit":
		return true, nil

	case "help":
		fmt.Fprintln(s.out, "commands: scenes catalog objects open active move rotate scale save load quit")

	case "scenes":
		active := host.ActiveScene()
		for _, name := range host.LoadedScenes() {
			marker := " "
			if name == active {
				marker = "*"
			}
			fmt.Fprintf(s.out, "%s %s\n", marker, name)
		}

	case "catalog":
		for _, name := range s.rt.catalog.Names() {
			fmt.Fprintln(s.out, name)
		}

	case "objects":
		for _, name := range host.LoadedScenes() {
			for _, obj := range host.Registry().InScene(name) {
				t, ok := obj.(*saveable.Transform)
				if !ok {
					continue
				}
				st := t.State()
				p, r, sc := st.LocalPosition, st.LocalRotation, st.LocalScale
				fmt.Fprintf(s.out, "%s  %-12s %-12s pos(%g, %g, %g) rot(%g, %g, %g, %g) scale(%g, %g, %g)\n",
					t.SaveID(), name, t.Name(), p.X, p.Y, p.Z, r.X, r.Y, r.Z, r.W, sc.X, sc.Y, sc.Z)
			}
		}

	case "open":
		if len(args) < 1 || len(args) > 2 {
			return false, fmt.Errorf("usage: open <scene> [additive]")
		}
		mode := scene.Single
		if len(args) == 2 {
			if args[1] != "additive" {
				return false, fmt.Errorf("unknown load mode %q", args[1])
			}
			mode = scene.Additive
		}
		if err := waitForScene(ctx, host.LoadScene(args[0], mode)); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "opened %s (%s)\n", args[0], mode)

	case "active":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: active <scene>")
		}
		return false, host.SetActiveScene(args[0])

	case "move", "scale":
		if len(args) != 4 {
			return false, fmt.Errorf("usage: %s <id> <x> <y> <z>", verb)
		}
		t, err := s.find(args[0])
		if err != nil {
			return false, err
		}
		v, err := parseFloats(args[1:])
		if err != nil {
			return false, err
		}
		vec := saveable.Vec3{X: v[0], Y: v[1], Z: v[2]}
		if verb == "move" {
			t.SetPosition(vec)
		} else {
			t.SetScale(vec)
		}

	case "rotate":
		if len(args) != 5 {
			return false, fmt.Errorf("usage: rotate <id> <x> <y> <z> <w>")
		}
		t, err := s.find(args[0])
		if err != nil {
			return false, err
		}
		v, err := parseFloats(args[1:])
		if err != nil {
			return false, err
		}
		t.SetRotation(saveable.Quaternion{X: v[0], Y: v[1], Z: v[2], W: v[3]})

	case "save":
		if err := s.rt.manager.Save(ctx); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "saved %s\n", s.rt.manager.Path())

	case "load":
		pending, ok := s.rt.manager.Load(ctx)
		if !ok {
			return false, fmt.Errorf("could not load %s", s.rt.manager.Path())
		}
		report, err := waitForLoad(ctx, pending)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "loaded %s: %d restored, %d missing\n", pending.Path(), report.Restored, len(report.Missing))

	default:
		return false, fmt.Errorf("unknown command %q (try help)", verb)
	}
	return false, nil
}

// find resolves a save ID or a unique prefix of one to a live transform.
func (s *session) find(prefix string) (*saveable.Transform, error) {
	var match *saveable.Transform
	for _, t := range registry.FindAll[*saveable.Transform](s.rt.host.Registry()) {
		if !strings.HasPrefix(t.SaveID(), prefix) {
			continue
		}
		if t.SaveID() == prefix {
			return t, nil
		}
		if match != nil {
			return nil, fmt.Errorf("ambiguous object id %q", prefix)
		}
		match = t
	}
	if match == nil {
		return nil, fmt.Errorf("no object with id %q", prefix)
	}
	return match, nil
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := cast.ToFloat64E(a)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", a, err)
		}
		out[i] = f
	}
	return out, nil
}
