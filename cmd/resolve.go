package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fbstory/internal/credential"
	"fbstory/internal/detect"
	"fbstory/internal/httputil"
	"fbstory/internal/media"
	"fbstory/internal/provider"
)

// ErrNoURL is returned when the command is run without a link.
var ErrNoURL = errors.New("no URL provided")

func resolveRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return ErrNoURL
	}

	req := media.Request{
		TargetURL:  strings.TrimSpace(args[0]),
		CookieFile: cfg.CookieFile,
		ProxyFile:  cfg.ProxyFile,
	}
	if len(args) > 1 {
		req.CookieFile = args[1]
	}
	if len(args) > 2 {
		req.ProxyFile = args[2]
	}

	ctx := logger.WithContext(cmd.Context())
	resolver, err := newResolver(ctx, req)
	if err != nil {
		return err
	}

	verdict := resolver.Resolve(ctx, req.TargetURL)
	zerolog.Ctx(ctx).Debug().
		Str("outcome", verdict.Outcome.String()).
		Str("video_url", verdict.VideoURL).
		Msg("Resolution finished")

	return writeResult(cmd.OutOrStdout(), verdict.Output())
}

// newResolver builds the fetcher for req's credentials. Credential files are read once here.
func newResolver(ctx context.Context, req media.Request) (provider.Resolver, error) {
	log := zerolog.Ctx(ctx)
	settings := cfg.Settings()

	jar, n, err := credential.LoadCookieJar(req.CookieFile)
	if err != nil {
		return nil, fmt.Errorf("loading cookies: %w", err)
	}
	if jar == nil {
		log.Debug().Str("file", req.CookieFile).Msg("No cookie file, fetching anonymously")
	} else {
		log.Debug().Str("file", req.CookieFile).Int("cookies", n).Msg("Loaded cookies")
	}

	proxy, err := credential.LoadProxy(req.ProxyFile, cfg.ProxyEnv)
	if err != nil {
		return nil, fmt.Errorf("loading proxy: %w", err)
	}
	if proxy != nil {
		log.Debug().Str("scheme", proxy.Scheme).Str("host", proxy.Host).Msg("Using proxy")
	}

	client := httputil.NewClient(settings, httputil.Options{Jar: jar, Proxy: proxy})
	return provider.NewFacebook(client, detect.New(settings)), nil
}

// writeResult prints out as a single JSON line. URLs are written without HTML escaping.
func writeResult(w io.Writer, out media.Output) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func writeError(w io.Writer, err error) error {
	msg := err.Error()
	if errors.Is(err, ErrNoURL) {
		msg = "No URL provided"
	}
	return writeResult(w, media.Output{Error: msg})
}
