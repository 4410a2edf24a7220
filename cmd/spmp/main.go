package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smp-planner/spmp/internal/api"
	"github.com/smp-planner/spmp/internal/config"
	"github.com/smp-planner/spmp/internal/logging"
	"github.com/smp-planner/spmp/internal/state"
	"github.com/smp-planner/spmp/internal/tui"
)

var (
	Version = "dev"
)

func main() {
	// 添加panic恢复
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "spmp panicked: %v\n", r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// cli 保存一次命令执行的配置和输入输出
type cli struct {
	v      *viper.Viper
	file   *config.Config
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger

	// interactive 判断是否可以启动 TUI，测试中替换
	interactive func() bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{
		v:           viper.New(),
		in:          in,
		out:         out,
		errOut:      errOut,
		logger:      logging.Discard(),
		interactive: isTerminal,
	}

	root := &cobra.Command{
		Use:   "spmp",
		Short: "Software project planning assistant",
		Long: `spmp talks to a project-planning backend that turns a free-text description
of a software project into a work breakdown structure, a schedule and a risk register.

Run without arguments to start the interactive interface, or use a subcommand
for one-off requests. Settings are read from flags, then SPMP_* environment
variables, then the config file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetVersionTemplate("spmp {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.String("base-url", "", "backend base URL (env SPMP_BASE_URL)")
	flags.String("lang", "", "interface language: en or ar (env SPMP_LANG)")
	flags.Bool("json", false, "output JSON")
	flags.Bool("debug", false, "enable debug logging")
	_ = c.v.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = c.v.BindPFlag("language", flags.Lookup("lang"))
	_ = c.v.BindPFlag("json", flags.Lookup("json"))
	_ = c.v.BindPFlag("debug", flags.Lookup("debug"))

	root.AddCommand(c.askCmd())
	root.AddCommand(c.planCmd())
	root.AddCommand(c.wbsCmd())
	root.AddCommand(c.ganttCmd())
	root.AddCommand(c.risksCmd())
	root.AddCommand(c.configCmd())
	root.AddCommand(c.versionCmd())
	return root
}

// init 读取配置文件并建立 flag > env > file > default 的优先级
func (c *cli) init() error {
	file, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.file = file

	c.v.SetEnvPrefix("SPMP")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	_ = c.v.BindEnv("language", "SPMP_LANG")

	c.v.SetDefault("base_url", file.BaseURL)
	c.v.SetDefault("language", file.Language)
	c.v.SetDefault("chat_mode", file.ChatMode)
	c.v.SetDefault("timeout_seconds", file.TimeoutSeconds)

	c.logger = logging.New(c.errOut, logging.Level(c.v.GetBool("debug")))
	slog.SetDefault(c.logger)
	return nil
}

// effective 返回合并 flag、环境变量和配置文件之后的设置
func (c *cli) effective() *config.Config {
	return &config.Config{
		BaseURL:        c.v.GetString("base_url"),
		Language:       c.v.GetString("language"),
		ChatMode:       c.v.GetString("chat_mode"),
		TimeoutSeconds: c.v.GetInt("timeout_seconds"),
	}
}

func (c *cli) client(logger *slog.Logger) *api.Client {
	eff := c.effective()
	return api.NewClient(eff.BaseURL, api.WithTimeout(eff.Timeout()), api.WithLogger(logger))
}

func (c *cli) runTUI(ctx context.Context) error {
	if !c.interactive() {
		return errors.New(`spmp needs an interactive terminal; use a subcommand such as "spmp ask" or "spmp plan"`)
	}
	if err := c.firstRun(); err != nil {
		return err
	}

	logger, closeLog, err := c.tuiLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	// TUI 占用终端，规范化过程中的默认日志也必须离开 stderr
	slog.SetDefault(logger)

	eff := c.effective()
	loc := eff.Locale()
	ctrl := state.NewController(c.client(logger),
		state.WithLogger(logger),
		state.WithPhrases(tui.Phrases(loc)),
	)
	ctrl.SetChatMode(eff.Mode())

	tui.Version = Version
	model := tui.NewModel(ctrl, tui.WithLocale(loc), tui.WithLogger(logger))
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}

// tuiLogger 只有 --debug 时写日志文件，否则丢弃
func (c *cli) tuiLogger() (*slog.Logger, func(), error) {
	if !c.v.GetBool("debug") {
		return logging.Discard(), func() {}, nil
	}
	path, err := config.LogPath()
	if err != nil {
		return nil, nil, err
	}
	logger, closer, err := logging.OpenFile(path, slog.LevelDebug)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(c.errOut, "debug log: %s\n", path)
	return logger, func() { _ = closer.Close() }, nil
}

// firstRun 配置文件不存在时询问后端地址并保存
func (c *cli) firstRun() error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	fmt.Fprintln(c.out, lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("Welcome to spmp!"))
	fmt.Fprintf(c.out, "Backend URL [%s]: ", c.file.BaseURL)

	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read backend url: %w", err)
	}
	if v := strings.TrimSpace(line); v != "" {
		if err := c.file.Set("base_url", v); err != nil {
			return err
		}
	}
	if err := config.SaveConfig(c.file); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	c.v.SetDefault("base_url", c.file.BaseURL)

	fmt.Fprintln(c.out, lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("Configuration saved to "+path))
	return nil
}

func isTerminal() bool {
	isTTY := func(f *os.File) bool {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return isTTY(os.Stdin) && isTTY(os.Stdout)
}
