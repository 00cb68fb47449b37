package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ByLCY/packlist/config"
	"github.com/ByLCY/packlist/invoice"
	"github.com/ByLCY/packlist/layout"
	"github.com/ByLCY/packlist/packlist"
	"github.com/ByLCY/packlist/server"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "packlist: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	renderFlags := []cli.Flag{
		&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "发票 JSON 路径（- 表示标准输入）", Value: "-"},
		&cli.StringFlag{Name: "strategy", Usage: "布局策略：flow 或 fixed"},
		&cli.StringFlag{Name: "backend", Usage: "渲染后端：canvas 或 fpdf"},
		&cli.StringFlag{Name: "theme", Usage: "主题文件路径"},
		&cli.StringFlag{Name: "background", Usage: "背景图路径"},
		&cli.StringFlag{Name: "logo", Usage: "logo 路径"},
	}
	return &cli.App{
		Name:  "packlist",
		Usage: "生成 Invoice cum Packing List PDF",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML 配置文件路径", EnvVars: []string{"PACKLIST_CONFIG"}},
		},
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "把发票 JSON 渲染为 PDF",
				Flags: append(renderFlags,
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "PDF 输出路径", Value: "invoice_codex.pdf"},
					&cli.StringFlag{Name: "debug", Usage: "布局调试 JSON 输出路径"},
				),
				Action: renderAction,
			},
			{
				Name:  "layout",
				Usage: "只计算布局并输出调试 JSON",
				Flags: append(renderFlags,
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "JSON 输出路径（- 表示标准输出）", Value: "-"},
				),
				Action: layoutAction,
			},
			{
				Name:  "serve",
				Usage: "启动 HTTP 服务",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "监听地址"},
				},
				Action: serveAction,
			},
		},
	}
}

// setup 读取配置并用命令行参数覆盖。
func setup(c *cli.Context) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, nil, err
	}
	overrides := map[string]*string{
		"strategy":   &cfg.Render.Strategy,
		"backend":    &cfg.Render.Backend,
		"theme":      &cfg.Render.Theme,
		"background": &cfg.Render.Background,
		"logo":       &cfg.Render.Logo,
		"addr":       &cfg.Server.Addr,
	}
	for name, dst := range overrides {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	logger, err := cfg.Log.NewLogger(c.App.ErrWriter)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func renderAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	doc, opts, err := prepare(c, cfg, logger)
	if err != nil {
		return err
	}

	data, res, err := packlist.RenderLayout(doc, opts)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if debugPath := c.String("debug"); debugPath != "" {
		if err := writeDebug(res, debugPath); err != nil {
			return err
		}
	}
	out := c.String("out")
	if err := writeOutput(out, data); err != nil {
		return err
	}
	logger.Info("已生成 PDF", slog.String("path", out), slog.Int("bytes", len(data)))
	return nil
}

func layoutAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	doc, opts, err := prepare(c, cfg, logger)
	if err != nil {
		return err
	}
	res, err := packlist.Layout(doc, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	if out := c.String("out"); out != "-" {
		return writeDebug(res, out)
	}
	return layout.WriteDebugJSON(c.App.Writer, res)
}

func serveAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	opts, err := cfg.Options(logger)
	if err != nil {
		return err
	}
	srv := server.New(server.Config{
		Options:        opts,
		Filename:       cfg.Render.Filename,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	}, nil, logger)
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
}

// prepare 读取并校验发票 JSON，生成渲染选项。
func prepare(c *cli.Context, cfg config.Config, logger *slog.Logger) (*invoice.Document, packlist.Options, error) {
	opts, err := cfg.Options(logger)
	if err != nil {
		return nil, packlist.Options{}, err
	}
	in := c.String("in")
	var r io.Reader = c.App.Reader
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return nil, packlist.Options{}, fmt.Errorf("无法打开发票文件 %s: %w", in, err)
		}
		defer f.Close()
		r = f
	}
	payload, err := invoice.Decode(r)
	if err != nil {
		return nil, packlist.Options{}, err
	}
	if err := payload.Validate(); err != nil {
		return nil, packlist.Options{}, err
	}
	return invoice.NewDocument(payload), opts, nil
}

// writeOutput 一次性写入完整的 PDF；失败时删除残缺文件。
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("%w: %v", layout.ErrOutputWrite, err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if dir := filepath.Dir(debugPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
	}
	if err := layout.SaveDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
