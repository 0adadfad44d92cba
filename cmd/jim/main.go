package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"jim/internal/app"
)

type ExitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		var ex ExitCoder
		if errors.As(err, &ex) {
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(ex.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var storeRoot string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:           "jim",
		Short:         "Manage installed runtime instances and the current selection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&storeRoot, "dir", "", "store root directory (overrides JIM_DIR)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	newSvc := func() (*app.Service, error) {
		return app.New(app.Options{ConfigPath: configPath, StoreRoot: storeRoot, LogOutput: cmd.ErrOrStderr()})
	}

	cmd.AddCommand(newListCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newAddCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newGetCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newSetCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newDoctorCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newConfigCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newVersionCmd(&jsonOutput))

	return cmd
}

func newListCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var sortBy string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List installed instances",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			names, err := svc.List(sortBy)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(cmd.OutOrStdout(), true, names, "")
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", app.SortByName, "sort order: name|version")
	return cmd
}

type addJSONItem struct {
	Input       string `json:"input"`
	Name        string `json:"name,omitempty"`
	Dest        string `json:"dest,omitempty"`
	DuplicateOf string `json:"duplicateOf,omitempty"`
	ElapsedMs   int64  `json:"elapsedMs"`
	Error       string `json:"error,omitempty"`
}

func newAddCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var quiet bool
	var verbose bool
	cmd := &cobra.Command{
		Use:     "add <path>...",
		Aliases: []string{"install"},
		Short:   "Copy runtime directories into the store",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			results, addErr := svc.Add(cmd.Context(), args)
			if results == nil && addErr != nil {
				return addErr
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			if !cmd.Flags().Changed("verbose") {
				verbose = isTerminal(out)
			}
			if quiet {
				verbose = false
			}
			failed := 0
			items := make([]addJSONItem, 0, len(results))
			for _, r := range results {
				item := addJSONItem{Input: r.Input, Name: r.Name, Dest: r.Dest, DuplicateOf: r.DuplicateOf, ElapsedMs: r.Elapsed.Milliseconds()}
				switch {
				case r.Err != nil:
					failed++
					item.Error = r.Err.Error()
					fmt.Fprintf(errOut, "%s: %v\n", r.Input, r.Err)
				case r.DuplicateOf != "":
					if verbose && !*jsonOutput {
						fmt.Fprintf(out, "skipped %s: same directory as %s\n", r.Input, r.DuplicateOf)
					}
				default:
					if verbose && !*jsonOutput {
						fmt.Fprintf(out, "successfully installed %s (%dms)\n", r.Name, r.Elapsed.Milliseconds())
					}
				}
				items = append(items, item)
			}
			if *jsonOutput {
				if err := print(out, true, items, ""); err != nil {
					return err
				}
			}
			if failed > 0 {
				return &exitError{code: 1, msg: fmt.Sprintf("ADD_FAILED: %d of %d inputs failed", failed, len(results))}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print per-instance confirmations")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print per-instance confirmations even when not on a terminal")
	return cmd
}

func newGetCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "get",
		Aliases: []string{"current"},
		Short:   "Print the selected instance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			name, ok, err := svc.Get()
			if err != nil {
				return err
			}
			if *jsonOutput {
				if err := print(cmd.OutOrStdout(), true, map[string]any{"current": name, "set": ok}, ""); err != nil {
					return err
				}
			} else if ok {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			if !ok {
				return &exitError{code: 1, msg: "GET_UNSET: no instance set"}
			}
			return nil
		},
	}
}

func newSetCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "set <name>",
		Aliases: []string{"use", "select"},
		Short:   "Select an installed instance",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			if err := svc.Set(args[0]); err != nil {
				return err
			}
			return print(cmd.OutOrStdout(), *jsonOutput, map[string]string{"current": args[0]}, "")
		},
	}
}

func newDoctorCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"diag", "checkup"},
		Short:   "Check the store and selection for problems",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			report := svc.DoctorRun(cmd.Context())
			out := cmd.OutOrStdout()
			if *jsonOutput {
				if err := print(out, true, report, ""); err != nil {
					return err
				}
			} else {
				if report.Healthy {
					fmt.Fprintln(out, "healthy")
				} else {
					fmt.Fprintln(out, "issues found:")
				}
				for _, f := range report.Findings {
					fmt.Fprintf(out, "- [%s] %s: %s\n", f.Level, f.Code, f.Message)
				}
			}
			if !report.Healthy {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

func newConfigCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	configCmd := &cobra.Command{Use: "config", Aliases: []string{"cfg"}, Short: "Inspect or create the config file"}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			return print(cmd.OutOrStdout(), *jsonOutput, map[string]string{"path": svc.ConfigPath, "storeRoot": svc.StoreRoot}, svc.ConfigPath)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(cmd.OutOrStdout(), true, svc.Config, "")
			}
			blob, err := svc.ConfigShow()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(blob)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			if _, err := svc.ConfigInit(force); err != nil {
				return err
			}
			return print(cmd.OutOrStdout(), *jsonOutput, map[string]string{"path": svc.ConfigPath}, "wrote "+svc.ConfigPath)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(pathCmd, showCmd, initCmd)
	return configCmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func print(w io.Writer, jsonOutput bool, payload any, message string) error {
	if jsonOutput {
		blob, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(blob))
		return nil
	}
	if message != "" {
		fmt.Fprintln(w, strings.TrimRight(message, "\n"))
	}
	return nil
}
