package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/smp-planner/spmp/internal/config"
	"github.com/smp-planner/spmp/internal/i18n"
	"github.com/smp-planner/spmp/internal/plan"
	"github.com/smp-planner/spmp/internal/report"
	"github.com/smp-planner/spmp/internal/views"
)

func (c *cli) askCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := c.textArg(args)
			if err != nil {
				return err
			}
			chatMode := c.effective().Mode()
			if mode != "" {
				m, ok := plan.ParseChatMode(mode)
				if !ok {
					return fmt.Errorf("unknown mode %q (want child, normal or detailed)", mode)
				}
				chatMode = m
			}

			resp, err := c.client(c.logger).Ask(cmd.Context(), question, string(chatMode))
			if err != nil {
				return c.unavailable(err)
			}
			answer, serr := plan.NormalizeAnswer(resp.Status, resp.Body)
			if serr != nil {
				return c.rejected(serr)
			}

			if c.v.GetBool("json") {
				return c.printJSON(map[string]string{"answer": answer, "mode": string(chatMode)})
			}
			fmt.Fprintln(c.out, answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "answer detail: child, normal or detailed (default from config)")
	return cmd
}

func (c *cli) planCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "plan <project description>",
		Short: "Generate a full plan: WBS, schedule and risk register",
		Long: `Generate a full plan for a software project.

The description can be given as arguments or read from stdin with "-".
Use --format markdown or --format html to write a shareable report.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reportFormat report.Format
			if format != "" {
				f, err := report.ParseFormat(format)
				if err != nil {
					return err
				}
				reportFormat = f
			}
			description, err := c.textArg(args)
			if err != nil {
				return err
			}

			resp, err := c.client(c.logger).FullPlan(cmd.Context(), description)
			if err != nil {
				return c.unavailable(err)
			}
			data, serr := plan.NormalizeFullPlan(resp.Status, resp.Body, description)
			if serr != nil {
				return c.rejected(serr)
			}

			if output == "" {
				return c.writePlan(c.out, data, reportFormat)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			if err := c.writePlan(f, data, reportFormat); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write output file: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "report format: markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// writePlan 按 --json、--format 或终端视图写出计划
func (c *cli) writePlan(w io.Writer, data *plan.ProjectData, format report.Format) error {
	switch {
	case c.v.GetBool("json"):
		return writeJSON(w, data)
	case format != "":
		return report.Write(w, data, format, report.Options{Locale: c.locale(), Now: time.Now()})
	default:
		_, err := fmt.Fprintln(w, views.RenderPlan(data, c.viewOptions()))
		return err
	}
}

// scopeFlags 单视图命令共用的参数
type scopeFlags struct {
	projectID string
	scope     string
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.projectID, "project-id", "", "project id returned by a previous plan")
	cmd.Flags().StringVar(&f.scope, "scope", "", "project scope text")
	_ = cmd.MarkFlagRequired("scope")
}

func (c *cli) wbsCmd() *cobra.Command {
	var f scopeFlags
	cmd := &cobra.Command{
		Use:   "wbs",
		Short: "Generate only the work breakdown structure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.client(c.logger).WBS(cmd.Context(), f.projectID, f.scope)
			if err != nil {
				return c.unavailable(err)
			}
			wbs, serr := plan.NormalizeWBS(resp.Status, resp.Body)
			if serr != nil {
				return c.rejected(serr)
			}
			if c.v.GetBool("json") {
				return c.printJSON(wbs)
			}
			data := &plan.ProjectData{ProjectName: wbs.ProjectName, WBS: wbs}
			if data.ProjectName == "" {
				data.ProjectName = plan.DefaultProjectName
			}
			fmt.Fprintln(c.out, views.RenderWBS(data, c.viewOptions()))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) ganttCmd() *cobra.Command {
	var f scopeFlags
	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Generate only the schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.client(c.logger).Gantt(cmd.Context(), f.projectID, f.scope)
			if err != nil {
				return c.unavailable(err)
			}
			raw, serr := plan.NormalizeGantt(resp.Status, resp.Body)
			if serr != nil {
				return c.rejected(serr)
			}
			data := &plan.ProjectData{Gantt: raw}
			if c.v.GetBool("json") {
				return c.printJSON(data.GanttTasks())
			}
			fmt.Fprintln(c.out, views.RenderGantt(data, c.viewOptions()))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) risksCmd() *cobra.Command {
	var f scopeFlags
	cmd := &cobra.Command{
		Use:   "risks",
		Short: "Generate only the risk register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.client(c.logger).Risks(cmd.Context(), f.projectID, f.scope)
			if err != nil {
				return c.unavailable(err)
			}
			risks, serr := plan.NormalizeRisks(resp.Status, resp.Body)
			if serr != nil {
				return c.rejected(serr)
			}
			if c.v.GetBool("json") {
				return c.printJSON(risks)
			}
			fmt.Fprintln(c.out, views.RenderRiskTable(risks, c.viewOptions()))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Show or change settings"}

	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eff := c.effective()
			path, err := config.Path()
			if err != nil {
				return err
			}
			if c.v.GetBool("json") {
				values := map[string]string{"path": path}
				for _, key := range config.Keys() {
					values[key], _ = eff.Get(key)
				}
				return c.printJSON(values)
			}

			t := table.NewWriter()
			t.SetOutputMirror(c.out)
			t.SetStyle(table.StyleLight)
			t.Style().Format.Header = text.FormatDefault
			t.Style().Format.Footer = text.FormatDefault
			t.AppendHeader(table.Row{"Key", "Value"})
			for _, key := range config.Keys() {
				value, _ := eff.Get(key)
				t.AppendRow(table.Row{key, value})
			}
			t.AppendFooter(table.Row{"file", path})
			t.Render()
			return nil
		},
	})

	cfg.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting in the config file",
		Long:  "Change a setting in the config file. Keys: " + strings.Join(config.Keys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.file.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.SaveConfig(c.file); err != nil {
				return err
			}
			value, _ := c.file.Get(args[0])
			fmt.Fprintf(c.out, "%s = %s\n", args[0], value)
			return nil
		},
	})

	cfg.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, path)
			return nil
		},
	})
	return cfg
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.v.GetBool("json") {
				return c.printJSON(map[string]string{"version": Version})
			}
			fmt.Fprintf(c.out, "spmp %s\n", Version)
			return nil
		},
	}
}

// textArg 把参数拼成请求文本，单个 "-" 表示从 stdin 读取
func (c *cli) textArg(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(c.in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		args = []string{string(data)}
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", errors.New("empty input")
	}
	return text, nil
}

func (c *cli) locale() i18n.Locale {
	return c.effective().Locale()
}

func (c *cli) viewOptions() views.Options {
	return views.Options{Locale: c.locale()}
}

// unavailable 传输失败：没有收到任何响应
func (c *cli) unavailable(err error) error {
	return fmt.Errorf("%s: %w", c.locale().T("errors."+plan.NetworkUnavailable), err)
}

// rejected 后端返回了结构化错误
func (c *cli) rejected(serr *plan.StructuredError) error {
	loc := c.locale()
	parts := []string{loc.ErrorText(serr.Kind)}
	if serr.Message != "" && serr.Message != string(serr.Kind) {
		parts = append(parts, serr.Message)
	}
	if serr.Status != 0 && (serr.Status < http.StatusOK || serr.Status >= http.StatusMultipleChoices) {
		parts = append(parts, loc.Tf("status.httpStatus", serr.Status))
	}
	return &displayError{msg: loc.T("status.errorTitle") + ": " + strings.Join(parts, " · "), err: serr}
}

// displayError 用本地化文本替换底层错误的描述，同时保留错误链
type displayError struct {
	msg string
	err error
}

func (e *displayError) Error() string { return e.msg }

func (e *displayError) Unwrap() error { return e.err }

func (c *cli) printJSON(v any) error {
	return writeJSON(c.out, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
