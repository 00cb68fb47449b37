// Package server 提供生成发票 PDF 的 HTTP 接口。
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ByLCY/packlist/invoice"
	"github.com/ByLCY/packlist/packlist"
)

// RenderFunc 把文档渲染为 PDF，默认为 packlist.Render。
type RenderFunc func(*invoice.Document, packlist.Options) ([]byte, error)

// Config 配置 HTTP 服务。
type Config struct {
	Options        packlist.Options
	Filename       string
	RequestTimeout time.Duration // 0 表示不限
	MaxBodyBytes   int64         // 0 表示不限
}

// Server 持有路由与渲染依赖，可安全地被并发请求使用。
type Server struct {
	cfg    Config
	render RenderFunc
	log    *slog.Logger
	router *mux.Router
}

// New 创建服务；logger 为空时丢弃日志，render 为空时使用 packlist.Render。
func New(cfg Config, render RenderFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if render == nil {
		render = packlist.Render
	}
	if cfg.Filename == "" {
		cfg.Filename = "invoice_codex.pdf"
	}
	cfg.Options.Logger = logger
	s := &Server{cfg: cfg, render: render, log: logger, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/generate-invoice-pdf/", s.handleGenerate).Methods(http.MethodPost)
	s.router.HandleFunc("/generate-invoice-pdf", s.handleGenerate).Methods(http.MethodPost)
	s.router.Use(s.logRequests)
}

// Handler 返回带超时控制的 http.Handler。
func (s *Server) Handler() http.Handler {
	if s.cfg.RequestTimeout <= 0 {
		return s.router
	}
	return http.TimeoutHandler(s.router, s.cfg.RequestTimeout, `{"error":"request timed out"}`)
}

// Run 在 addr 上启动服务，ctx 结束时优雅关闭，等待进行中的请求最多 shutdownTimeout。
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down", slog.String("addr", addr))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return <-errCh
}

const indexMessage = "Invoice generator is live. Use POST /generate-invoice-pdf"

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": indexMessage})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	payload, err := invoice.Decode(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	data, err := s.render(invoice.NewDocument(payload), s.cfg.Options)
	if err != nil {
		s.log.Error("render failed", slog.String("invoice_no", payload.InvoiceNo), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, errors.New("failed to render invoice"))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", s.cfg.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := bytes.NewReader(data).WriteTo(w); err != nil {
		s.log.Warn("write response failed", slog.Any("err", err))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("elapsed", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
