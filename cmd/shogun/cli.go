package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/client"
	"github.com/hpungsan/shogun/internal/errors"
	"github.com/hpungsan/shogun/internal/ops"
	"github.com/hpungsan/shogun/internal/shortcode"
	"github.com/hpungsan/shogun/internal/web"
)

// maxContentBytes bounds shortcode content read from stdin.
const maxContentBytes = 1 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(rt *runtime) *cli.App {
	app := &cli.App{
		Name:    "shogun",
		Usage:   "Animated slogans, typewriters and neon text",
		Version: Version,
		Commands: []*cli.Command{
			listCmd(rt),
			showCmd(rt),
			cssCmd(rt),
			renderCmd(rt),
			previewCmd(rt),
			playCmd(rt),
			exportCmd(rt),
			cacheCmd(rt),
			serveCmd(rt),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// listCmd creates the list command.
func listCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List registered animations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category: text|visual|interactive|advanced"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListAnimations(rt.env, ops.ListAnimationsInput{
				Category: c.String("category"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show an animation definition and its parameters",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			name, err := requireName(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.GetAnimation(rt.env, ops.GetAnimationInput{Name: name})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// cssCmd creates the css command.
func cssCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "css",
		Usage:     "Generate the stylesheet for an animation",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "Parameter as key=value (repeatable)"},
			&cli.StringFlag{Name: "selector", Aliases: []string{"s"}, Usage: "Custom selector instead of the generated class"},
			&cli.BoolFlag{Name: "no-cache", Usage: "Bypass the CSS cache"},
			&cli.BoolFlag{Name: "raw", Usage: "Print only the stylesheet"},
		},
		Action: func(c *cli.Context) error {
			name, err := requireName(c)
			if err != nil {
				return outputError(err)
			}
			params, err := parseParams(c.StringSlice("param"))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			input := ops.GenerateCSSInput{
				Animation:  name,
				Parameters: params,
				Selector:   c.String("selector"),
			}
			if c.Bool("no-cache") {
				useCache := false
				input.UseCache = &useCache
			}

			output, err := ops.GenerateCSS(c.Context, rt.env, input)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("raw") {
				_, err := fmt.Fprintln(c.App.Writer, output.CSS)
				return err
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// renderOutput is the result of the render command.
type renderOutput struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

// renderCmd creates the render command.
func renderCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Expand shortcodes (reads content from stdin) into HTML and one style block",
		Action: func(c *cli.Context) error {
			if !hasPipedInput(c.App.Reader) {
				return outputError(errors.NewInvalidRequest("content must be piped via stdin"))
			}
			content, err := readStdin(c.App.Reader, maxContentBytes)
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			if content == "" {
				return outputError(errors.NewInvalidRequest("content is required"))
			}

			html, css, err := shortcode.Expand(c.Context, rt.env, content)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, renderOutput{HTML: html, CSS: css})
		},
	}
}

// previewCmd creates the preview command.
func previewCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Compile an uncached preview of an animation",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Preview text"},
			&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "Parameter as key=value (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			name, err := requireName(c)
			if err != nil {
				return outputError(err)
			}
			params, err := parseParams(c.StringSlice("param"))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			output, err := ops.Preview(c.Context, rt.env, ops.PreviewInput{
				Animation:  name,
				Text:       c.String("text"),
				Parameters: params,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// playCmd creates the play command.
func playCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play an animation in the terminal, one frame per line",
		ArgsUsage: "<typewriter|fade|slide|bounce|animation>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Text to animate"},
			&cli.IntFlag{Name: "speed", Usage: "Typing speed or duration in milliseconds"},
			&cli.StringFlag{Name: "cursor", Usage: "Typewriter cursor"},
			&cli.BoolFlag{Name: "loop", Aliases: []string{"l"}, Usage: "Loop until interrupted"},
			&cli.BoolFlag{Name: "reduced-motion", Usage: "Render the final frame at once"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format: text|json"},
			&cli.DurationFlag{Name: "timeout", Usage: "Stop after this long (e.g., 10s)"},
		},
		Action: func(c *cli.Context) error {
			name, err := requireName(c)
			if err != nil {
				return outputError(err)
			}
			kind, effect := playTarget(name)
			if kind == client.KindAnimated && !rt.env.Registry.Has(effect) {
				return outputError(errors.NewAnimationNotFound(effect))
			}
			format := c.String("format")
			if format != "text" && format != "json" {
				return outputError(errors.NewInvalidRequest("format must be text or json"))
			}

			text := animation.CleanText(c.String("text"))
			if text == "" {
				text = animation.DefaultText
			}
			attrs := make(map[string]string)
			if speed := c.Int("speed"); speed > 0 {
				attrs["data-speed"] = strconv.Itoa(speed)
			}
			if c.Bool("loop") {
				attrs["data-loop"] = "true"
			}

			opts := client.OptionsFromConfig(rt.env.Config)
			opts.Logger = rt.logger
			opts.ReducedMotion = c.Bool("reduced-motion")

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout := c.Duration("timeout"); timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			enc := json.NewEncoder(c.App.Writer)
			err = client.Play(ctx, client.PlayOptions{
				Kind:    kind,
				Effect:  effect,
				Text:    text,
				Cursor:  c.String("cursor"),
				Attrs:   attrs,
				Options: opts,
			}, func(f client.Frame) error {
				if format == "json" {
					return enc.Encode(f)
				}
				return writeFrame(c.App.Writer, f)
			})
			if err != nil && ctx.Err() == nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// exportCmd creates the export command.
func exportCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export animations to a YAML catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.shogun/exports/animations-<timestamp>.yaml)"},
			&cli.StringSliceFlag{Name: "name", Aliases: []string{"n"}, Usage: "Animation to export (repeatable, default: all)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportCatalog(c.Context, rt.env, ops.ExportCatalogInput{
				Path:  c.String("path"),
				Names: c.StringSlice("name"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// cacheCmd creates the cache command and its subcommands.
func cacheCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and clear the CSS cache",
		Subcommands: []*cli.Command{
			{
				Name:      "clear",
				Usage:     "Clear one cache entry, or all of them",
				ArgsUsage: "[cache_key]",
				Action: func(c *cli.Context) error {
					output, err := ops.ClearCache(c.Context, rt.env, ops.ClearCacheInput{
						CacheKey: c.Args().First(),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:  "stats",
				Usage: "Show what the cache holds",
				Action: func(c *cli.Context) error {
					output, err := ops.CacheStats(c.Context, rt.env)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, newCacheStatsView(output))
				},
			},
			{
				Name:  "purge",
				Usage: "Drop expired cache entries",
				Action: func(c *cli.Context) error {
					output, err := ops.PurgeCache(c.Context, rt.env)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the REST API, the preview stream and the gallery",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}
			srv := web.NewServer(rt.env, Version, c.String("bind"), port, rt.registry)
			return web.Run(srv, rt.logger)
		},
	}
}

// Helper functions

// cacheStatsView adds human-readable sizes to cache stats.
type cacheStatsView struct {
	*ops.CacheStatsOutput
	Size string `json:"size"`
	TTL  string `json:"ttl"`
}

func newCacheStatsView(out *ops.CacheStatsOutput) cacheStatsView {
	return cacheStatsView{
		CacheStatsOutput: out,
		Size:             humanize.Bytes(uint64(max(out.Stats.Bytes, 0))),
		TTL:              (time.Duration(out.TTLSeconds) * time.Second).String(),
	}
}

// playTarget maps a play argument onto an instance kind and effect.
func playTarget(name string) (kind, effect string) {
	switch name {
	case client.KindTypewriter:
		return client.KindTypewriter, ""
	case client.EffectFade, client.EffectSlide, client.EffectBounce:
		return client.KindSlogan, name
	default:
		return client.KindAnimated, name
	}
}

// writeFrame prints a frame as one line of text.
func writeFrame(w io.Writer, f client.Frame) error {
	if f.Type == client.FrameEvent && f.Event != nil {
		_, err := fmt.Fprintf(w, "[%s] %s\n", f.Event.Name, f.Snapshot.Displayed)
		return err
	}
	line := f.Snapshot.Displayed
	if f.Opacity != "" || f.Transform != "" {
		line = fmt.Sprintf("%s  (opacity=%s transform=%s)", line, f.Opacity, f.Transform)
	}
	_, err := fmt.Fprintf(w, "%6dms %s\n", f.ElapsedMS, line)
	return err
}

// requireName returns the first positional argument.
func requireName(c *cli.Context) (string, error) {
	name := strings.TrimSpace(c.Args().First())
	if name == "" {
		return "", errors.NewInvalidRequest("animation name is required")
	}
	return name, nil
}

// parseParams turns key=value pairs into raw animation parameters.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", p)
		}
		params[k] = v
	}
	return params, nil
}

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if sErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// hasPipedInput returns true unless r is a terminal.
func hasPipedInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes from r.
func readStdin(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("input exceeds %s", humanize.Bytes(uint64(limit)))
	}
	return strings.TrimSpace(string(data)), nil
}
