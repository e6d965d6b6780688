// Command import loads a directory of markdown files into the configured post
// storage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/debemdeboas/archive-admin/internal/config"
	"github.com/debemdeboas/archive-admin/internal/logger"
	"github.com/debemdeboas/archive-admin/internal/repository"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := pflag.NewFlagSet("import", pflag.ExitOnError)
	dir := fs.StringP("dir", "d", "", "directory containing .md files")
	configPath := fs.StringP("config", "c", envOr("CONFIG_PATH", "config.yaml"), "path to the config file")
	dryRun := fs.Bool("dry-run", false, "parse files without storing them")
	skipExisting := fs.Bool("skip-existing", false, "leave posts whose slug is already stored untouched")
	fs.Parse(os.Args[1:])

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "--dir is required")
		fs.Usage()
		return 2
	}

	log := logger.New("warn")
	config.SetLogger(log)
	repository.SetLogger(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load config")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	repo, closeRepo, err := repository.New(ctx, cfg, repository.S3Credentials{
		AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		log.Error().Err(err).Msgf(config.ErrCreateRepositoryFmt, err)
		return 1
	}
	defer closeRepo()

	rep, err := importDir(ctx, repo, *dir, importOptions{DryRun: *dryRun, SkipExisting: *skipExisting})
	fmt.Print(renderReport(rep, cfg.Storage.Backend, *dryRun))
	if err != nil {
		log.Error().Err(err).Str("dir", *dir).Msg("Import aborted")
		return 1
	}
	if len(rep.Failed) > 0 {
		return 1
	}
	return 0
}

func renderReport(rep report, backend string, dryRun bool) string {
	var b strings.Builder

	heading := fmt.Sprintf("Import into %s", backend)
	if dryRun {
		heading += " (dry run)"
	}
	b.WriteString(titleStyle.Render(heading) + "\n")

	for _, r := range rep.Imported {
		b.WriteString(okStyle.Render("  + ") + fmt.Sprintf("%s -> %s (%q)\n", r.File, r.Slug, r.Title))
	}
	for _, r := range rep.Skipped {
		b.WriteString(skipStyle.Render("  = ") + fmt.Sprintf("%s -> %s already stored\n", r.File, r.Slug))
	}
	for _, r := range rep.Failed {
		b.WriteString(failStyle.Render("  ! ") + fmt.Sprintf("%s: %v\n", r.File, r.Err))
	}

	b.WriteString(fmt.Sprintf("%d imported, %d skipped, %d failed\n", len(rep.Imported), len(rep.Skipped), len(rep.Failed)))
	return b.String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
