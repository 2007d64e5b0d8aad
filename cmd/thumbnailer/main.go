package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ironsheep/thumbnailer/internal/config"
	"github.com/ironsheep/thumbnailer/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// cli carries state shared by every subcommand.
type cli struct {
	v      *viper.Viper
	out    io.Writer
	cfg    *config.Config
	logger logging.Interface
}

func main() {
	if err := newRootCmd(config.NewViper(), os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper, out io.Writer) *cobra.Command {
	c := &cli{v: v, out: out}

	root := &cobra.Command{
		Use:          "thumbnailer",
		Short:        "Resize and crop images from S3 or local storage, with a blob cache",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return c.load()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.String("cache-bucket", "", "cache container: bucket, bucket/sub/dir or a URI (env CACHE_BUCKET)")
	flags.Int("min-edge", 0, "smallest accepted dimension in pixels (env MIN_EDGE)")
	flags.Int("max-edge", 0, "largest accepted dimension in pixels (env MAX_EDGE)")
	flags.Int("jpeg-quality", 0, "JPEG quality 1-100 (env JPEG_QUALITY)")
	flags.String("background", "", "color transparent pixels are flattened onto (env BACKGROUND)")
	flags.Bool("debug", false, "debug logging and detailed error responses (env DEBUG)")
	flags.String("log-level", "", "DEBUG, INFO, WARN or ERROR (env LOG_LEVEL)")
	flags.String("log-file", "", "also log to this rotated file (env LOG_FILE)")
	flags.String("aws-region", "", "AWS region (env AWS_REGION)")
	flags.String("s3-endpoint", "", "S3-compatible endpoint URL (env S3_ENDPOINT)")
	bindFlags(v, flags, map[string]string{
		"cache-bucket": config.KeyCacheBucket,
		"min-edge":     config.KeyMinEdge,
		"max-edge":     config.KeyMaxEdge,
		"jpeg-quality": config.KeyJPEGQuality,
		"background":   config.KeyBackground,
		"debug":        config.KeyDebug,
		"log-level":    config.KeyLogLevel,
		"log-file":     config.KeyLogFile,
		"aws-region":   config.KeyAWSRegion,
		"s3-endpoint":  config.KeyS3Endpoint,
	})

	root.AddCommand(
		newServeCmd(c),
		newResizeCmd(c),
		newFitCmd(c),
		newInfoCmd(c),
		newVersionCmd(c),
	)
	return root
}

// bindFlags binds each flag to its viper key. Flags win over the environment
// only when set explicitly.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func (c *cli) load() error {
	cfg, err := config.Load(c.v)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{Debug: cfg.Debug, Level: level, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(c.out, "thumbnailer %s\n", Version)
			fmt.Fprintf(c.out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(c.out, "  Git commit: %s\n", GitCommit)
		},
	}
}
