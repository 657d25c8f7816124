package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Jezza/wuxia-dl/internal/config"
	"github.com/Jezza/wuxia-dl/internal/downloader"
	"github.com/Jezza/wuxia-dl/internal/epub"
	"github.com/Jezza/wuxia-dl/internal/fetch"
	"github.com/Jezza/wuxia-dl/internal/toc"
	"github.com/Jezza/wuxia-dl/internal/ui"
	"github.com/Jezza/wuxia-dl/internal/util"

	"github.com/spf13/cobra"
)

var (
	// runtime
	flagOutput  string
	flagWorkers int
	flagTimeout int
	flagAuthor  string
	flagDryRun  bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
	flagBypassCF   bool
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download <toc-url>",
		Short: "Download every chapter of a novel and produce an EPUB. Uses the defaults from the selected config, overwritten by CLI flags",
		Args:  cobra.ArbitraryArgs,
		RunE:  runDownload,
	}

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for the EPUB file")
	downloadCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel chapter downloads (default: number of CPUs)")
	downloadCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "per-request timeout in seconds")
	downloadCmd.Flags().StringVar(&flagAuthor, "author", "", "author metadata for the EPUB")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show the chapter list, don't download")

	// headers/auth
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	downloadCmd.Flags().BoolVar(&flagBypassCF, "bypass-cloudflare", false, "add Cloudflare bypass headers to every request")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		// Wrong argument count is not a failure, just show usage.
		return cmd.Usage()
	}

	tocURL, err := url.Parse(args[0])
	if err != nil {
		return fmt.Errorf("unable to parse URL %q: %w", args[0], err)
	}
	if !tocURL.IsAbs() {
		return fmt.Errorf("TOC URL %q is not absolute", args[0])
	}

	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:     flagIgnoreConfig,
		Debug:            flagDebug,
		Output:           flagOutput,
		Workers:          flagWorkers,
		TimeoutSeconds:   flagTimeout,
		Author:           flagAuthor,
		Cookie:           flagCookie,
		CookieFile:       flagCookieFile,
		UserAgent:        flagUserAgent,
		BypassCloudflare: flagBypassCF,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          cfg.Timeout(),
		UserAgent:        util.PickUserAgent(cfg.UserAgent),
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		BypassCloudflare: cfg.BypassCloudflare,
		DebugLogger:      logSvc,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	util.SetupInterruptHandler(cancel)

	fetcher := fetch.New(client)

	fmt.Println("Downloading:", tocURL)
	page, err := fetcher.Fetch(ctx, tocURL.String())
	if err != nil {
		return fmt.Errorf("fetch TOC page: %w", err)
	}

	book, err := toc.Parse(page.Doc, page.URL)
	if err != nil {
		return fmt.Errorf("parse TOC page %s: %w", page.URL, err)
	}

	fmt.Printf("Found %q with %d chapters at %s\n", book.Title, len(book.Chapters), page.URL)

	if flagDryRun {
		for _, ch := range book.Chapters {
			fmt.Printf("%4d) %s\n      %s\n", ch.Index, ch.Title, ch.URL)
		}
		return nil
	}

	pm := ui.NewProgressManager()
	ph := pm.Register(book.Title)
	ph.SetTotal(len(book.Chapters))

	stats := &ui.Stats{}
	start := time.Now()

	dl := downloader.New(fetcher, cfg.Workers, logSvc)
	chapters, err := dl.FetchBook(ctx, book, ph)
	pm.Close()
	if err != nil {
		return fmt.Errorf("download %q: %w", book.Title, err)
	}

	stats.TotalChapters.Store(int64(len(chapters)))
	for _, ch := range chapters {
		stats.TotalBytes.Add(int64(len(ch.HTML)))
	}

	built, err := epub.Assemble(book.Title, cfg.Author, chapters)
	if err != nil {
		return fmt.Errorf("assemble %q: %w", book.Title, err)
	}

	path := filepath.Join(cfg.Output, epub.OutputName(book.Title))
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("File (%q) already exists. Deleting...\n", path)
	}
	if err := epub.WriteFile(built, path); err != nil {
		return err
	}

	fmt.Printf("Generated epub file @ %q for %q\n", path, book.Title)
	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Chapters: %d\n", stats.TotalChapters.Load())
	fmt.Printf("Content:  %s\n", util.Human(stats.TotalBytes.Load()))
	fmt.Printf("Time:     %s\n", time.Since(start).Round(time.Second))

	return nil
}
