package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/studio-interiors/site-server/config"
	"github.com/studio-interiors/site-server/internal/cms"
	"github.com/studio-interiors/site-server/internal/sitemap"
	"github.com/studio-interiors/site-server/pkg/httpclient"
	"github.com/studio-interiors/site-server/pkg/logger"
	"github.com/studio-interiors/site-server/pkg/objectstore"
	"github.com/studio-interiors/site-server/pkg/retry"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	outputPath string
	baseURL    string
	skipPing   bool
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Generate sitemap.xml from static routes and CMS content",
	Long: `sitemap lists the site's fixed pages plus every published project and
blog post, writes sitemap.xml and notifies search engines.

Configuration comes from the same environment variables as the server.

Example:
  sitemap --output dist/sitemap.xml --base-url https://www.example.com`,
	SilenceUsage: true,
	RunE:         run,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default SITEMAP_OUTPUT_PATH)")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "public site URL (default BASE_URL)")
	rootCmd.Flags().BoolVar(&skipPing, "skip-ping", false, "do not notify search engines")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cfg)

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName + "-sitemap",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.NewStandardClient()
	cmsClient := cms.NewClient(cfg.CMS.URL, httpClient, cms.WithTimeout(cfg.SitemapFetchTimeout()))

	generatorCfg := sitemap.Config{
		BaseURL:    cfg.Server.BaseURL,
		OutputPath: cfg.Sitemap.OutputPath,
		SitemapURL: cfg.SitemapURL(),
		PingURLs:   cfg.Sitemap.PingURLs,
		PublishKey: cfg.Sitemap.Bucket.Key,
		Retry:      retry.SitemapConfig(),
	}

	var opts []sitemap.Option
	if publisher := newPublisher(cfg.Sitemap.Bucket); publisher != nil {
		opts = append(opts, sitemap.WithPublisher(publisher))
	}

	logger.Info("Generating sitemap",
		zap.String("output", generatorCfg.OutputPath),
		zap.String("base_url", generatorCfg.BaseURL),
		zap.String("cms_url", cmsClient.BaseURL()))

	result, err := sitemap.NewGenerator(cmsClient, httpClient, generatorCfg, opts...).Run(ctx)
	if err != nil {
		logger.LogError(err, "Sitemap generation failed", zap.String("output", generatorCfg.OutputPath))
		return err
	}

	logger.Info("Sitemap generation complete",
		zap.Int("entries", result.Entries),
		zap.Int("bytes", result.Bytes),
		zap.Int("pings_sent", result.PingsSent),
		zap.String("published_to", result.PublishedTo))
	return nil
}

func applyFlags(cfg *config.Config) {
	if outputPath != "" {
		cfg.Sitemap.OutputPath = outputPath
	}
	if baseURL != "" {
		cfg.Server.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if skipPing {
		cfg.Sitemap.PingURLs = nil
	}
}

// newPublisher returns nil when no bucket is configured or the client
// cannot be built; publishing is optional.
func newPublisher(bucket config.BucketConfig) sitemap.Publisher {
	if bucket.Name == "" {
		return nil
	}
	client, err := objectstore.NewStorageClient(objectstore.Options{
		AccessKeyID:     bucket.AccessKeyID,
		SecretAccessKey: bucket.SecretAccessKey,
		BucketName:      bucket.Name,
		Endpoint:        bucket.Endpoint,
		Region:          bucket.Region,
	})
	if err != nil {
		logger.Warn("Sitemap publishing disabled", zap.Error(err))
		return nil
	}
	return client
}
