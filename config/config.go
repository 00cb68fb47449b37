// Package config 读取命令行与 HTTP 服务使用的 YAML 配置。
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/packlist/fonts"
	"github.com/ByLCY/packlist/layout"
	"github.com/ByLCY/packlist/packlist"
	"github.com/ByLCY/packlist/theme"
)

// Config 是配置文件的完整结构。
type Config struct {
	Server Server `yaml:"server"`
	Render Render `yaml:"render"`
	Fonts  Fonts  `yaml:"fonts"`
	Log    Log    `yaml:"log"`
}

// Server 配置 HTTP 服务。
type Server struct {
	Addr            string        `yaml:"addr"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// Render 配置文档渲染。
type Render struct {
	Strategy   string `yaml:"strategy"`
	Backend    string `yaml:"backend"`
	Theme      string `yaml:"theme"` // 主题文件路径，为空时使用内置主题
	Background string `yaml:"background"`
	Logo       string `yaml:"logo"`
	Filename   string `yaml:"filename"` // 下载时的文件名
}

// Fonts 配置 canvas 后端字体，值可以是文件路径或 "embed:Go-Bold" 这样的内置字体。
type Fonts struct {
	Family  string `yaml:"family"`
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
}

// Log 配置日志输出。
type Log struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Render: Render{
			Strategy: string(layout.StrategyFlow),
			Backend:  string(packlist.BackendCanvas),
			Filename: "invoice_codex.pdf",
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load 读取 path 并覆盖默认值；path 为空时直接返回默认配置。未知字段视为错误。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: 读取 %s 失败: %w", path, err)
	}
	defer f.Close()
	if err := cfg.decode(f); err != nil {
		return Config{}, fmt.Errorf("config: 解析 %s 失败: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate 检查取值是否合法，返回所有问题。
func (c Config) Validate() error {
	var errs []error
	if _, err := layout.ParseStrategy(c.Render.Strategy); err != nil {
		errs = append(errs, err)
	}
	if _, err := packlist.ParseBackend(c.Render.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Server.RequestTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("server.max_body_bytes must not be negative"))
	}
	return errors.Join(errs...)
}

// Options 把渲染配置转换为引擎选项；主题与字体文件在这里读取。
func (c Config) Options(logger *slog.Logger) (packlist.Options, error) {
	strategy, err := layout.ParseStrategy(c.Render.Strategy)
	if err != nil {
		return packlist.Options{}, err
	}
	backend, err := packlist.ParseBackend(c.Render.Backend)
	if err != nil {
		return packlist.Options{}, err
	}
	opts := packlist.Options{
		Strategy:   strategy,
		Backend:    backend,
		Background: c.Render.Background,
		Logo:       c.Render.Logo,
		Logger:     logger,
	}
	if c.Render.Theme != "" {
		if opts.Theme, err = theme.Load(c.Render.Theme); err != nil {
			return packlist.Options{}, err
		}
	}
	if c.Fonts != (Fonts{}) {
		if opts.Fonts, err = fonts.LoadFamily(c.Fonts.Family, c.Fonts.Regular, c.Fonts.Bold); err != nil {
			return packlist.Options{}, err
		}
	}
	return opts, nil
}

// NewLogger 按日志配置创建 slog.Logger。
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	}
	return slog.New(slog.NewTextHandler(w, hopts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
