// Package venv prepares the isolated Python environment the generation
// library runs in.
//
// Preparation is idempotent but not cached: packages and the Playwright
// browser are (re)installed on every run.
package venv

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/dkarlovi/podcastfy/internal/deps"
	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/process"
	"github.com/dkarlovi/podcastfy/internal/settings"
)

const stage = "prepare"

// Packages are installed into the environment on every run.
var Packages = []string{"podcastfy", "playwright"}

// Preparer creates or reuses the virtualenv and installs dependencies.
type Preparer struct {
	settings settings.Settings
	logger   *slog.Logger
	output   io.Writer
}

// NewPreparer builds a Preparer. Child process output goes to output, or to
// stderr when output is nil.
func NewPreparer(s settings.Settings, logger *slog.Logger, output io.Writer) *Preparer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Preparer{settings: s, logger: logger, output: output}
}

// Prepare runs every preparation step in order and stops at the first failure.
func (p *Preparer) Prepare(ctx context.Context) error {
	if err := p.EnsureFFmpeg(); err != nil {
		return err
	}
	if err := p.EnsureVenv(ctx); err != nil {
		return err
	}
	if err := p.EnsurePackages(ctx); err != nil {
		return err
	}
	return p.EnsureBrowser(ctx)
}

// EnsureFFmpeg fails when ffmpeg is not reachable through PATH.
func (p *Preparer) EnsureFFmpeg() error {
	status := deps.Check(deps.FFmpeg)
	if !status.Available {
		return faults.Wrap(faults.ErrPrerequisite, stage, "ffmpeg", status.Detail, nil)
	}
	p.logger.Debug("ffmpeg found", "path", status.Resolved)
	return nil
}

// EnsureVenv creates the virtualenv unless both its interpreter and pip exist.
func (p *Preparer) EnsureVenv(ctx context.Context) error {
	if fileExists(p.settings.VenvPython()) && fileExists(p.settings.VenvPip()) {
		p.logger.Debug("reusing virtualenv", "dir", p.settings.VenvDir)
		return nil
	}

	p.logger.Info("creating virtualenv", "dir", p.settings.VenvDir)
	if err := p.run(ctx, p.settings.Python, "-m", "venv", p.settings.VenvDir); err != nil {
		return faults.Wrap(faults.ErrSubprocess, stage, "venv", "create virtualenv", err)
	}
	if err := p.run(ctx, p.settings.VenvPip(), "install", "--upgrade", "pip"); err != nil {
		return faults.Wrap(faults.ErrSubprocess, stage, "venv", "upgrade pip", err)
	}
	return nil
}

// EnsurePackages installs or upgrades the generation library and Playwright.
func (p *Preparer) EnsurePackages(ctx context.Context) error {
	p.logger.Info("installing packages", "packages", Packages)
	args := append([]string{"install", "-U"}, Packages...)
	if err := p.run(ctx, p.settings.VenvPip(), args...); err != nil {
		return faults.Wrap(faults.ErrSubprocess, stage, "pip", "install packages", err)
	}
	return nil
}

// EnsureBrowser installs the Chromium build Playwright uses for web extraction.
func (p *Preparer) EnsureBrowser(ctx context.Context) error {
	p.logger.Info("installing playwright chromium")
	if err := p.run(ctx, p.settings.VenvPython(), "-m", "playwright", "install", "chromium"); err != nil {
		return faults.Wrap(faults.ErrSubprocess, stage, "playwright", "failed to install Playwright Chromium", err)
	}
	return nil
}

func (p *Preparer) run(ctx context.Context, name string, args ...string) error {
	return process.Run(ctx, p.logger, process.Command{
		Name:   name,
		Args:   args,
		Stdout: p.output,
		Stderr: p.output,
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
