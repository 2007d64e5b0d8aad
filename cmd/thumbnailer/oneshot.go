package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/thumbnailer/internal/imaging"
	"github.com/ironsheep/thumbnailer/internal/location"
)

const stdout = "-"

func newResizeCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "resize <uri> <long-edge>",
		Short: "Resize an image so its longer side has the given length",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			edge, err := imaging.ParseDimension("long-edge", args[1])
			if err != nil {
				return err
			}
			return c.transform(cmd.Context(), args[0], imaging.LongEdge(edge), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", stdout, "destination path or URI, - for stdout")
	return cmd
}

func newFitCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "fit <uri> <width> <height>",
		Short: "Scale and center-crop an image to exactly width x height",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := imaging.ParseDimension("width", args[1])
			if err != nil {
				return err
			}
			height, err := imaging.ParseDimension("height", args[2])
			if err != nil {
				return err
			}
			return c.transform(cmd.Context(), args[0], imaging.FitBox(width, height), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", stdout, "destination path or URI, - for stdout")
	return cmd
}

func newInfoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info <uri>",
		Short: "Print the size, format and palette of an image as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := location.Parse(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(c.cfg, c.logger, appOptions{allowLocal: true})
			if err != nil {
				return err
			}
			info, err := a.svc.Info(cmd.Context(), src)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				URI string `json:"uri"`
				imaging.Info
			}{src.String(), info})
		},
	}
}

// transform runs one request through the service and writes the result to
// output, which may be any location the storage layer understands.
func (c *cli) transform(ctx context.Context, uri string, p imaging.Params, output string) error {
	src, err := location.Parse(uri)
	if err != nil {
		return err
	}
	a, err := newApp(c.cfg, c.logger, appOptions{allowLocal: true})
	if err != nil {
		return err
	}

	res, err := a.svc.Thumbnail(ctx, src, p)
	if err != nil {
		return err
	}
	c.logger.WithField("status", string(res.Status)).Infof("Transformed %s @ %s", src, p)
	if res.CacheWriteFailed() {
		c.logger.WithError(res.CacheErr).Warn("Result not cached")
	}

	if output == stdout {
		_, err := c.out.Write(res.Data)
		return err
	}
	dst, err := location.Parse(output)
	if err != nil {
		return err
	}
	ok, err := a.store.Write(ctx, dst, res.Data)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("failed to write %s", dst)
	}
	return nil
}
