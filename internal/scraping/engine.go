package scraping

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	DefaultTimeout   = 30 * time.Second
)

// Session issues GET requests that share one cookie jar and one set of
// request headers.
type Session struct {
	collector *colly.Collector
	headers   map[string]string
}

type SessionOption func(*sessionConfig)

type sessionConfig struct {
	userAgent string
	timeout   time.Duration
	headers   map[string]string
}

func WithUserAgent(ua string) SessionOption {
	return func(c *sessionConfig) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHeader(key, value string) SessionOption {
	return func(c *sessionConfig) {
		c.headers[key] = value
	}
}

func NewSession(opts ...SessionOption) *Session {
	cfg := sessionConfig{
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		headers: map[string]string{
			"Accept-Language": "ru-RU,ru;q=0.9,en;q=0.8",
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.userAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.SetRequestTimeout(cfg.timeout)

	return &Session{
		collector: c,
		headers:   cfg.headers,
	}
}

// Page is a fetched and parsed HTML document.
type Page struct {
	URL        *url.URL
	StatusCode int
	Body       []byte
	Doc        *goquery.Document

	response *colly.Response
}

// Text returns the text of the whole document.
func (p *Page) Text() string {
	return p.Doc.Text()
}

// Get fetches target with params merged into its query string. Any status
// other than 200 is reported as *HTTPStatusError.
func (s *Session) Get(ctx context.Context, target string, params url.Values) (*Page, error) {
	ctx, span := otel.Tracer("scraping").Start(ctx, "get")
	defer span.End()

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", target, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	span.SetAttributes(attribute.String("url", u.String()))

	// clones share the http backend and cookie jar but not callbacks
	c := s.collector.Clone()
	var resp *colly.Response
	c.OnRequest(InjectRequestHeaders(s.headers))
	c.OnRequest(AddOutgoingContext(ctx))
	c.OnResponse(LogResponses(c))
	c.OnResponse(func(r *colly.Response) {
		resp = r
	})
	c.OnError(func(r *colly.Response, err error) {
		zap.L().Debug("request failed", zap.String("url", u.String()), zap.Error(err))
	})

	// resp is only read after done delivers, the visit may outlive a
	// cancelled ctx until the collector timeout fires
	done := make(chan error, 1)
	go func() {
		done <- c.Visit(u.String())
	}()

	var visitErr error
	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, ctx.Err().Error())
		return nil, ctx.Err()
	case visitErr = <-done:
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if resp == nil {
		if visitErr == nil {
			visitErr = errors.New("no response")
		}
		span.RecordError(visitErr)
		span.SetStatus(codes.Error, visitErr.Error())
		return nil, fmt.Errorf("get %s: %w", u, visitErr)
	}

	span.SetAttributes(attribute.Int("status", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		err := &HTTPStatusError{URL: u.String(), StatusCode: resp.StatusCode}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u, err)
	}

	return &Page{
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Doc:        doc,
		response:   resp,
	}, nil
}

// First returns the first element matching selector.
func First(p *Page, selector string) (*colly.HTMLElement, error) {
	sel := p.Doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, &MissingElementError{URL: p.URL.String(), Selector: selector}
	}
	return colly.NewHTMLElementFromSelectionNode(p.response, sel, sel.Nodes[0], 0), nil
}

// Collect transforms every element matching selector. The first transform
// error stops the walk.
func Collect[OUT any](
	p *Page,
	selector string,
	transformElement func(*colly.HTMLElement) (OUT, error),
) ([]OUT, error) {
	var (
		out []OUT
		err error
	)
	p.Doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		e := colly.NewHTMLElementFromSelectionNode(p.response, s, s.Nodes[0], i)
		var hit OUT
		hit, err = transformElement(e)
		if err != nil {
			return false
		}
		out = append(out, hit)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeSpace collapses runs of whitespace, no-break spaces included, into
// single spaces.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func LogResponses(c *colly.Collector) func(r *colly.Response) {
	return func(r *colly.Response) {
		cookies := c.Cookies(r.Request.URL.String())
		zap.L().Debug("response",
			zap.Int("status", r.StatusCode),
			zap.String("url", r.Request.URL.String()),
			zap.Int("bytes", len(r.Body)),
			zap.Any("cookies", cookies),
		)
	}
}

func InjectRequestHeaders(headers map[string]string) func(r *colly.Request) {
	return func(r *colly.Request) {
		for k, v := range headers {
			r.Headers.Set(k, v)
		}
	}
}

func AddOutgoingContext(ctx context.Context) func(r *colly.Request) {
	return func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	}
}
