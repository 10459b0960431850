package site

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultFontsURL = "https://fonts.googleapis.com"

var ErrFontFetch = errors.New("failed to fetch font")

// Google serves woff2 only to user agents it recognises as modern browsers
const fontUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

var fontURLPattern = regexp.MustCompile(`url\((https?://[^)\s]+)\)`)

// FontVariant is one weight/style of a family
type FontVariant struct {
	Weight int  `yaml:"weight"`
	Italic bool `yaml:"italic"`
}

// FontImporter inlines web fonts so the page needs no font requests
type FontImporter struct {
	baseURL    string
	httpClient *http.Client
}

// NewFontImporter creates an importer against a Google Fonts compatible
// CSS endpoint. A nil client gets a 30s timeout.
func NewFontImporter(baseURL string, httpClient *http.Client) *FontImporter {
	if baseURL == "" {
		baseURL = DefaultFontsURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &FontImporter{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// cssURL builds a css2 query, e.g. family=Work+Sans:ital,wght@0,400;0,700
func (f *FontImporter) cssURL(family string, variants []FontVariant) string {
	sorted := append([]FontVariant(nil), variants...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Italic != sorted[j].Italic {
			return !sorted[i].Italic
		}
		return sorted[i].Weight < sorted[j].Weight
	})

	tuples := make([]string, 0, len(sorted))
	for _, v := range sorted {
		ital := "0"
		if v.Italic {
			ital = "1"
		}
		tuples = append(tuples, ital+","+strconv.Itoa(v.Weight))
	}

	query := strings.ReplaceAll(family, " ", "+")
	if len(tuples) > 0 {
		query += ":ital,wght@" + strings.Join(tuples, ";")
	}
	return f.baseURL + "/css2?family=" + query + "&display=swap"
}

// Import fetches the stylesheet of family and returns it as a style element
// with every font file embedded as a data URI
func (f *FontImporter) Import(ctx context.Context, family string, variants []FontVariant) (template.HTML, error) {
	cssURL := f.cssURL(family, variants)
	css, _, err := f.fetch(ctx, cssURL)
	if err != nil {
		return "", err
	}

	src := string(css)
	matches := fontURLPattern.FindAllStringSubmatch(src, -1)

	var mu sync.Mutex
	inlined := make(map[string]string, len(matches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, m := range matches {
		fontURL := m[1]
		mu.Lock()
		_, seen := inlined[fontURL]
		inlined[fontURL] = ""
		mu.Unlock()
		if seen {
			continue
		}

		g.Go(func() error {
			data, contentType, err := f.fetch(gctx, fontURL)
			if err != nil {
				return err
			}
			uri := "data:" + fontMIME(fontURL, contentType) + ";base64," + base64.StdEncoding.EncodeToString(data)
			mu.Lock()
			inlined[fontURL] = uri
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	src = fontURLPattern.ReplaceAllStringFunc(src, func(match string) string {
		u := fontURLPattern.FindStringSubmatch(match)[1]
		return "url(" + inlined[u] + ")"
	})

	slog.Info("font imported", "family", family, "variants", len(variants), "files", len(inlined))
	return template.HTML("<style>\n" + src + "</style>"), nil
}

func (f *FontImporter) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrFontFetch, rawURL, err)
	}
	req.Header.Set("User-Agent", fontUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrFontFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s: HTTP %d", ErrFontFetch, rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrFontFetch, rawURL, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func fontMIME(rawURL, contentType string) string {
	if strings.HasPrefix(contentType, "font/") {
		return strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	switch path.Ext(p) {
	case ".woff2":
		return "font/woff2"
	case ".woff":
		return "font/woff"
	case ".ttf":
		return "font/ttf"
	case ".otf":
		return "font/otf"
	default:
		return "application/octet-stream"
	}
}
