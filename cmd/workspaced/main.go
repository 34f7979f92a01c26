// Command workspaced is a single-process command-line front end for the
// workspace server. Each invocation opens one server, a project rooted at
// the given path, performs one operation, and prints the result as JSON.
// It exists to exercise internal/workspace end to end, the same role
// cmd/lci/main.go plays for standardbeagle-lci's indexer.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/wspace/internal/workspace"
	"github.com/standardbeagle/wspace/internal/wtypes"
)

const appVersion = "0.1.0"

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openProjectForPath(s *workspace.Server, c *cli.Context, path string) (wtypes.ProjectKey, error) {
	return s.OpenProject(path, c.Bool("uninitialized"))
}

func main() {
	app := &cli.App{
		Name:                   "workspaced",
		Usage:                  "drive the workspace server from the command line",
		Version:                appVersion,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "uninitialized",
				Usage: "treat the project root as unconfigured if no root config file is found",
			},
			&cli.BoolFlag{
				Name:  "persist-cache",
				Usage: "request parse-acceleration cache persistence on open, as an editor would",
			},
		},
		Commands: []*cli.Command{
			openProjectCommand(),
			openCommand(),
			changeCommand(),
			closeCommand(),
			formatCommand(),
			formatRangeCommand(),
			formatOnTypeCommand(),
			lintCommand(),
			pullActionsCommand(),
			fixFileCommand(),
			renameCommand(),
			searchCommand(),
			scanCommand(),
			syntaxTreeCommand(),
			controlFlowCommand(),
			formatterIRCommand(),
			rageCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "workspaced:", err)
		os.Exit(1)
	}
}

func openProjectCommand() *cli.Command {
	return &cli.Command{
		Name:      "open-project",
		Usage:     "discover a project root containing PATH and print its key",
		ArgsUsage: "PATH",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("open-project requires a PATH argument", 1)
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"project_key": key})
		},
	}
}

func openCommand() *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "open a file's content and parse it",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content", Usage: "content to open (defaults to reading PATH from disk)"},
			&cli.IntFlag{Name: "version", Value: 1},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("open requires a PATH argument", 1)
			}
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, int32(c.Int("version")), nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			outcome, err := s.GetParse(path)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"project_key": key,
				"has_errors":  outcome.HasErrors(),
				"diagnostics": outcome.Diagnostics,
			})
		},
	}
}

func changeCommand() *cli.Command {
	return &cli.Command{
		Name:      "change",
		Usage:     "replace an already-open document's content",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content", Required: true},
			&cli.IntFlag{Name: "version", Value: 2},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("change requires a PATH argument", 1)
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, "", 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			if err := s.ChangeFile(key, path, c.String("content"), int32(c.Int("version"))); err != nil {
				return err
			}
			content, err := s.GetFileContent(path)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"content": content})
		},
	}
}

func closeCommand() *cli.Command {
	return &cli.Command{
		Name:      "close",
		Usage:     "close an open document",
		ArgsUsage: "PATH",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("close requires a PATH argument", 1)
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, "", 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			if err := s.CloseFile(path); err != nil {
				return err
			}
			return printJSON(map[string]any{"closed": path})
		},
	}
}

func formatCommand() *cli.Command {
	return &cli.Command{
		Name:      "format",
		Usage:     "format an open document",
		ArgsUsage: "PATH",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("format requires a PATH argument", 1)
			}
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			formatted, err := s.FormatFile(key, path)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"formatted": formatted})
		},
	}
}

func formatRangeCommand() *cli.Command {
	return &cli.Command{
		Name:      "format-range",
		Usage:     "format a line/column range of an open document",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "start-line"},
			&cli.IntFlag{Name: "start-column"},
			&cli.IntFlag{Name: "end-line"},
			&cli.IntFlag{Name: "end-column"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("format-range requires a PATH argument", 1)
			}
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			rng := wtypes.Range{
				Start: wtypes.Position{Line: c.Int("start-line"), Column: c.Int("start-column")},
				End:   wtypes.Position{Line: c.Int("end-line"), Column: c.Int("end-column")},
			}
			edits, err := s.FormatRange(key, path, rng)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"edits": edits})
		},
	}
}

func formatOnTypeCommand() *cli.Command {
	return &cli.Command{
		Name:      "format-on-type",
		Usage:     "format the position a just-typed trigger character landed at",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "line"},
			&cli.IntFlag{Name: "column"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("format-on-type requires a PATH argument", 1)
			}
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			pos := wtypes.Position{Line: c.Int("line"), Column: c.Int("column")}
			edits, err := s.FormatOnType(key, path, pos)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"edits": edits})
		},
	}
}

func lintCommand() *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "pull diagnostics for an open document",
		ArgsUsage: "PATH",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("lint requires a PATH argument", 1)
			}
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			diags, err := s.PullDiagnostics(path)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"diagnostics": diags})
		},
	}
}

func pullActionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "pull-actions",
		Usage:     "pull code actions (quick fixes) for a range of an open document",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "start-line"},
			&cli.IntFlag{Name: "start-column"},
			&cli.IntFlag{Name: "end-line"},
			&cli.IntFlag{Name: "end-column"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("pull-actions requires a PATH argument", 1)
			}
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			rng := wtypes.Range{
				Start: wtypes.Position{Line: c.Int("start-line"), Column: c.Int("start-column")},
				End:   wtypes.Position{Line: c.Int("end-line"), Column: c.Int("end-column")},
			}
			actions, err := s.PullActions(path, rng)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"actions": actions})
		},
	}
}

func fixFileCommand() *cli.Command {
	return &cli.Command{
		Name:      "fix-file",
		Usage:     "apply every available automatic fix to an open document",
		ArgsUsage: "PATH",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("fix-file requires a PATH argument", 1)
			}
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			fixed, err := s.FixFile(key, path)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"fixed": fixed})
		},
	}
}

func renameCommand() *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "rename the identifier at a position in an open document",
		ArgsUsage: "PATH NEW_NAME",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "line"},
			&cli.IntFlag{Name: "column"},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return cli.Exit("rename requires PATH and NEW_NAME arguments", 1)
			}
			path := c.Args().Get(0)
			newName := c.Args().Get(1)
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			pos := wtypes.Position{Line: c.Int("line"), Column: c.Int("column")}
			edits, err := s.Rename(path, pos, newName)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"edits": edits})
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "search an open document for a pattern",
		ArgsUsage: "PATH PATTERN",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return cli.Exit("search requires PATH and PATTERN arguments", 1)
			}
			path := c.Args().Get(0)
			pattern := c.Args().Get(1)
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			id, err := s.ParsePattern(pattern)
			if err != nil {
				return err
			}
			defer s.DropPattern(id)
			ranges, err := s.SearchPattern(id, path)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"pattern_id": id, "matches": ranges})
		},
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "walk a project folder opening every matching file",
		ArgsUsage: "PATH",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("scan requires a PATH argument", 1)
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			result, err := s.ScanProjectFolder(key, "")
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

func syntaxTreeCommand() *cli.Command {
	return &cli.Command{
		Name:      "syntax-tree",
		Usage:     "dump the parsed syntax tree of an open document",
		ArgsUsage: "PATH",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("syntax-tree requires a PATH argument", 1)
			}
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			tree, err := s.GetSyntaxTree(path)
			if err != nil {
				return err
			}
			fmt.Println(tree)
			return nil
		},
	}
}

func controlFlowCommand() *cli.Command {
	return &cli.Command{
		Name:      "control-flow",
		Usage:     "dump a control-flow summary of an open document",
		ArgsUsage: "PATH",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("control-flow requires a PATH argument", 1)
			}
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			summary, err := s.GetControlFlowGraph(path)
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}
}

func formatterIRCommand() *cli.Command {
	return &cli.Command{
		Name:      "formatter-ir",
		Usage:     "dump the formatter intermediate representation of an open document",
		ArgsUsage: "PATH",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("formatter-ir requires a PATH argument", 1)
			}
			content, err := resolveContent(c, path)
			if err != nil {
				return err
			}
			s := workspace.New()
			key, err := openProjectForPath(s, c, path)
			if err != nil {
				return err
			}
			if err := s.OpenFile(key, path, content, 1, nil, c.Bool("persist-cache")); err != nil {
				return err
			}
			ir, err := s.GetFormatterIR(path)
			if err != nil {
				return err
			}
			fmt.Println(ir)
			return nil
		},
	}
}

func rageCommand() *cli.Command {
	return &cli.Command{
		Name:  "rage",
		Usage: "print a snapshot of server load",
		Action: func(c *cli.Context) error {
			s := workspace.New()
			return printJSON(s.Rage())
		},
	}
}

// resolveContent returns the --content flag's value if set, otherwise reads
// path from disk.
func resolveContent(c *cli.Context, path string) (string, error) {
	if c.IsSet("content") {
		return c.String("content"), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\x00"), nil
}
