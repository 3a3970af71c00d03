package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"

	"github.com/idilsaglam/lw/internal/ui"
)

const listTimeLayout = "2006-01-02 15:04"

func addAdd(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "add <content...>",
		Short: "Add an entry without opening the UI",
		Example: `
lw add "reviewed the storage patch"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if strings.TrimSpace(content) == "" && !e.cfg.AllowEmpty {
				return fmt.Errorf("add: empty entry")
			}
			s, err := e.openStore()
			if err != nil {
				return err
			}
			if _, err := s.Insert(content); err != nil {
				return fmt.Errorf("save: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "added")
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addList(topLevel *cobra.Command, e *env) {
	asJSON := false
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List entries, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := e.openStore()
			if err != nil {
				return err
			}
			entries := s.Entries()
			out := cmd.OutOrStdout()

			if asJSON {
				b, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("json marshal: %w", err)
				}
				_, err = fmt.Fprintln(out, string(b))
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, ui.Current().Muted.Render("no entries"))
				return nil
			}
			faint := color.New(color.Faint).SprintFunc()
			table := uitable.New()
			table.MaxColWidth = 100
			table.AddRow("#", "CREATED", "LOG")
			for i, en := range entries {
				table.AddRow(
					faint(fmt.Sprintf("%2d.", i+1)),
					en.CreatedAt.Local().Format(listTimeLayout),
					truncate.StringWithTail(en.Title(), 80, "..."),
				)
			}
			_, err = fmt.Fprintln(out, table)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON.")
	topLevel.AddCommand(cmd)
}

func addRemove(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the entry at a 1-based index from `lw ls`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("rm: not a number: %s", args[0])
			}
			s, err := e.openStore()
			if err != nil {
				return err
			}
			entries := s.Entries()
			if n < 1 || n > len(entries) {
				return fmt.Errorf("index out of range: have %d, got %d\nHint: run `lw ls` to see valid indexes", len(entries), n)
			}
			if err := s.Remove(entries[n-1].ID); err != nil {
				return fmt.Errorf("save: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "removed")
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addVersion(topLevel *cobra.Command) {
	shortened := false
	version := "dev"
	commit := "none"
	date := "unknown"
	output := "json"
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the lw version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			resp := goversion.FuncWithOutput(shortened, version, commit, date, output)
			fmt.Fprint(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Print just the version number.")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format. One of 'yaml' or 'json'.")
	topLevel.AddCommand(cmd)
}
