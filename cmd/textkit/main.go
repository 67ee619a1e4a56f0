// Command textkit is the command line front end for the snippet
// engine: expand templates, lint snippet files, list configured
// snippets, and try sessions interactively.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/textkit/snippet"
	"github.com/dshills/textkit/snippet/loader"
	"github.com/dshills/textkit/snippet/resolve"
	"github.com/dshills/textkit/snippet/session"
)

var version = "0.1.0"

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "textkit:", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "textkit",
		Short:         "snippet engine toolkit",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(expandCommand(), lintCommand(), listCommand(), demoCommand())
	return root
}

func expandCommand() *cobra.Command {
	var (
		vars      []string
		path      string
		selection string
	)
	cmd := &cobra.Command{
		Use:   "expand BODY",
		Short: "expand a snippet body and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildResolver(vars, path, selection)
			if err != nil {
				return err
			}
			text, err := expandBody(args[0], res)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "variable as NAME=VALUE, repeatable")
	cmd.Flags().StringVar(&path, "path", "", "file path for the TM_FILE* variables")
	cmd.Flags().StringVar(&selection, "selection", "", "value of TM_SELECTED_TEXT")
	return cmd
}

// expandBody runs body through a scratch buffer session and returns
// the rendered text with placeholders in place.
func expandBody(body string, res snippet.Resolver) (string, error) {
	buf := session.NewBuffer("expand", "")
	reg := session.NewRegistry()
	s, err := reg.Expand(buf, body, 0, res)
	if err != nil {
		return "", err
	}
	if s != nil {
		_ = reg.Stop(buf.DocumentID())
	}
	return buf.Text(), nil
}

func buildResolver(vars []string, path, selection string) (snippet.Resolver, error) {
	table := resolve.Map{}
	for _, kv := range vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, want NAME=VALUE", kv)
		}
		table[name] = value
	}
	wd, _ := os.Getwd()
	builtin := resolve.NewBuiltin(resolve.Context{
		Path:          path,
		WorkspaceRoot: wd,
		Selection:     selection,
		Clipboard:     resolve.SystemClipboard(),
	})
	return resolve.NewMemoized(resolve.Chain(table, builtin)), nil
}

func lintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint FILE...",
		Short: "check snippet files for syntax errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			okMark := color.New(color.FgGreen).Sprint("ok")
			failMark := color.New(color.FgRed).Sprint("fail")
			out := cmd.OutOrStdout()

			bad := 0
			for _, path := range args {
				snippets, err := loader.LoadFile(path)
				if err != nil {
					bad++
					fmt.Fprintf(out, "%s  %s: %v\n", failMark, path, err)
					continue
				}
				for _, sn := range snippets {
					if err := checkBody(sn.Body); err != nil {
						bad++
						fmt.Fprintf(out, "%s  %s [%s]: %v\n", failMark, path, sn.Name, err)
						continue
					}
					fmt.Fprintf(out, "%s  %s [%s]\n", okMark, path, sn.Name)
				}
			}
			if bad > 0 {
				return fmt.Errorf("%d invalid snippet(s)", bad)
			}
			return nil
		},
	}
	return cmd
}

func checkBody(body string) error {
	tree, err := snippet.Parse(body)
	if err != nil {
		return err
	}
	_, err = snippet.Normalize(tree, nil)
	return err
}

func listCommand() *cobra.Command {
	var dirs []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list configured snippets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(dirs) == 0 {
				dirs = loader.DefaultDirs()
			}
			set := loader.NewSet()
			for _, dir := range dirs {
				snippets, err := loader.LoadDir(dir)
				if err != nil {
					return err
				}
				set.Add(snippets...)
			}

			all := set.All()
			sort.Slice(all, func(i, j int) bool { return all[i].Prefix < all[j].Prefix })

			prefix := color.New(color.FgCyan, color.Bold).SprintFunc()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			for _, sn := range all {
				fmt.Fprintf(w, "%s\t%s\t%s\n", prefix(sn.Prefix), sn.Name, sn.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringArrayVar(&dirs, "dir", nil, "snippet directory, repeatable; defaults to the XDG path")
	return cmd
}
