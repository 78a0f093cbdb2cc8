package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/glorpus-work/reqfile/internal/logger"
	"github.com/glorpus-work/reqfile/pkg/auth"
	"github.com/glorpus-work/reqfile/pkg/config"
	"github.com/glorpus-work/reqfile/pkg/errors"
	"github.com/glorpus-work/reqfile/pkg/fetch"
	"github.com/glorpus-work/reqfile/pkg/header"
	"github.com/glorpus-work/reqfile/pkg/hooks"
	"github.com/glorpus-work/reqfile/pkg/metrics"
	"github.com/glorpus-work/reqfile/pkg/sink"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type getOptions struct {
	headers     []string
	output      string
	print       bool
	hookFile    string
	metricsFile string
	vars        []string
	user        string
	bearer      string
}

// result is the rendered form of a finished fetch.
type result struct {
	RequestID string `json:"request_id"`
	URL       string `json:"url"`
	Status    uint16 `json:"status"`
	Size      uint64 `json:"size"`
	Dest      string `json:"dest,omitempty"`
	Persisted bool   `json:"persisted"`
	Payload   []byte `json:"payload,omitempty"`
}

// NewGetCmd creates the get command.
func NewGetCmd() *cobra.Command {
	var opts getOptions

	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Fetch a URL and optionally save the body",
		Long: `Send an HTTP GET request, buffer the whole response body and report
its status code and size. With --output the body is written to a local path or
an s3://bucket/key destination, but only when the status is below 400 and the
body is not empty.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, `request header as "Name: value" (repeatable)`)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "destination path or s3://bucket/key")
	cmd.Flags().BoolVar(&opts.print, "print", false, "write the response body to stdout")
	cmd.Flags().StringVar(&opts.hookFile, "hook", "", "post-fetch hook script (.tengo)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the fetch")
	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, "hook variable as key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.user, "user", "u", "", `basic auth credentials as "user:password"`)
	cmd.Flags().StringVar(&opts.bearer, "bearer", "", "bearer token")

	return cmd
}

func runGet(cmd *cobra.Command, rawURL string, opts getOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	logger.With(logger.Fields{"request_id": requestID})

	hdr, err := buildHeader(cfg, authenticator(cfg, rawURL, opts), opts.headers)
	if err != nil {
		logger.Error("Invalid request header", logger.Fields{"error": err})
		return err
	}

	executor, err := loadHooks(cfg, opts.hookFile)
	if err != nil {
		return err
	}
	vars, err := parseVars(opts.vars)
	if err != nil {
		return err
	}

	m := metrics.New(MetricsNamespace)
	objects, err := objectStore(ctx, cfg, opts.output)
	if err != nil {
		return err
	}
	fetcher := fetch.NewFetcher(m.InstrumentClient(&http.Client{}), sink.NewRouter(objects))

	logger.Debug("Starting fetch", logger.Fields{"url": rawURL, "dest": opts.output})
	pending := fetcher.Go(ctx, fetch.Request{
		URL:        rawURL,
		Header:     hdr,
		Dest:       opts.output,
		ReturnBody: opts.print,
	})
	out, err := pending.Wait(ctx)
	m.Observe(out, err)

	metricsFile := opts.metricsFile
	if metricsFile == "" {
		metricsFile = cfg.Settings.MetricsFile
	}
	if metricsFile != "" {
		if werr := m.WriteFile(metricsFile); werr != nil {
			logger.Warn("Failed to write metrics", logger.Fields{"path": metricsFile, "error": werr})
		}
	}

	if err != nil {
		logger.Error("Fetch failed", logger.Fields{"url": rawURL, "kind": errors.KindOf(err).String(), "error": err})
		hookErr := executor.Execute(hooks.OnFailure, hooks.FetchContext{
			URL:   rawURL,
			Dest:  opts.output,
			Kind:  errors.KindOf(err).String(),
			Error: err.Error(),
			Vars:  vars,
		})
		if hookErr != nil {
			logger.Warn("on-failure hook failed", logger.Fields{"error": hookErr})
		}
		return err
	}

	logger.Success("Fetch completed", logger.Fields{
		"url":       rawURL,
		"code":      out.Status,
		"size":      out.Size,
		"persisted": out.Persisted,
	})

	err = executor.Execute(hooks.PostFetch, hooks.FetchContext{
		URL:       rawURL,
		Dest:      opts.output,
		Status:    int(out.Status),
		Size:      int64(out.Size),
		Persisted: out.Persisted,
		Vars:      vars,
	})
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), cfg.Settings.Format, result{
		RequestID: requestID,
		URL:       rawURL,
		Status:    out.Status,
		Size:      out.Size,
		Dest:      opts.output,
		Persisted: out.Persisted,
		Payload:   out.Payload,
	}, opts.print)
}

// authenticator picks the credentials for rawURL: command line flags first,
// then the auth entry configured for the URL's host.
func authenticator(cfg *config.Config, rawURL string, opts getOptions) auth.Authenticator {
	switch {
	case opts.user != "":
		return auth.ParseUser(opts.user)
	case opts.bearer != "":
		return auth.BearerAuth{Token: opts.bearer}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return cfg.AuthFor(u.Hostname())
}

// buildHeader layers the configured user agent, the configured default headers,
// the credentials and the -H arguments, later entries replacing earlier ones.
func buildHeader(cfg *config.Config, creds auth.Authenticator, args []string) (http.Header, error) {
	var pairs []header.Pair
	if cfg.Settings.UserAgent != "" {
		pairs = append(pairs, header.Pair{Name: "User-Agent", Value: cfg.Settings.UserAgent})
	}
	pairs = append(pairs, header.SortedPairs(cfg.Settings.DefaultHeaders)...)
	if creds != nil {
		logger.Debug("Using credentials", logger.Fields{"type": string(creds.Type())})
		pairs = append(pairs, creds.Pairs()...)
	}

	for _, arg := range args {
		p, err := header.ParsePair(arg)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return header.FromPairs(pairs)
}

func loadHooks(cfg *config.Config, hookFile string) (*hooks.TengoExecutor, error) {
	executor := hooks.NewTengoExecutor()
	if cfg.Settings.HooksDir != "" {
		if err := hooks.LoadDir(executor, cfg.Settings.HooksDir); err != nil {
			return nil, err
		}
	}
	if hookFile != "" {
		if err := hooks.LoadFile(executor, hooks.PostFetch, hookFile); err != nil {
			return nil, err
		}
	}
	return executor, nil
}

func parseVars(args []string) (map[string]interface{}, error) {
	vars := make(map[string]interface{}, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid hook variable %q, expected key=value", arg)
		}
		vars[k] = v
	}
	return vars, nil
}

// objectStore returns the S3 sink when dest is an object URL and nil otherwise.
// It runs before the request is sent, so its failures are not persistence failures.
func objectStore(ctx context.Context, cfg *config.Config, dest string) (sink.Sink, error) {
	if !sink.IsObjectURL(dest) {
		return nil, nil
	}
	s3Sink, err := sink.NewS3(ctx, sink.S3Options{
		Region:          cfg.Settings.S3.Region,
		Endpoint:        cfg.Settings.S3.Endpoint,
		UsePathStyle:    cfg.Settings.S3.UsePathStyle,
		AccessKeyID:     cfg.Settings.S3.AccessKeyID,
		SecretAccessKey: cfg.Settings.S3.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", errors.ErrNoObjectStore, dest, err)
	}
	return s3Sink, nil
}

func render(w io.Writer, format string, res result, printBody bool) error {
	if format == string(logger.FormatJSON) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if printBody {
		_, err := w.Write(res.Payload)
		return err
	}

	_, err := fmt.Fprintf(w, "%d %d bytes", res.Status, res.Size)
	if err != nil {
		return err
	}
	if res.Persisted {
		_, err = fmt.Fprintf(w, " -> %s", res.Dest)
	}
	if err == nil {
		_, err = fmt.Fprintln(w)
	}
	return err
}
