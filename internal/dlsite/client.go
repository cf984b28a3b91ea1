package dlsite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dust/internal/catalogid"
	"dust/internal/services"
)

// Age category codes served by the product info endpoint.
const (
	AgeAllAges = 1
	AgeR15     = 2
	AgeR18     = 3
)

const imageHost = "https://img.dlsite.jp"

// Work is the subset of DLSite product metadata the add flow records.
type Work struct {
	ProductID   string
	Title       string
	Maker       string
	WorkType    string
	AgeCategory int
	Genres      []string
	Description string
	CoverURL    string
	RegistDate  string
}

// Developer returns the circle name, falling back to "Unknown" when the
// endpoint omits one.
func (w *Work) Developer() string {
	if w.Maker != "" {
		return w.Maker
	}
	return "Unknown"
}

// GenreLabel returns the coarse genre recorded on new library entries.
func (w *Work) GenreLabel() string {
	if w.AgeCategory == AgeR18 {
		return "Adult Game"
	}
	return "Game"
}

// AgeRating returns the age category name written to sidecar files, or an
// empty string when the endpoint omits the category.
func (w *Work) AgeRating() string {
	switch w.AgeCategory {
	case AgeAllAges:
		return "ALL_AGES"
	case AgeR15:
		return "R15"
	case AgeR18:
		return "R18"
	default:
		return ""
	}
}

// workPayload models one entry of the product info response, which is a JSON
// object keyed by product ID.
type workPayload struct {
	WorkName    string    `json:"work_name"`
	MakerName   string    `json:"maker_name"`
	WorkType    string    `json:"work_type"`
	AgeCategory int       `json:"age_category"`
	WorkImage   string    `json:"work_image"`
	RegistDate  string    `json:"regist_date"`
	Intro       string    `json:"intro_s"`
	Genre       genreList `json:"genre"`
}

func (p *workPayload) toWork(productID string) *Work {
	return &Work{
		ProductID:   productID,
		Title:       strings.TrimSpace(p.WorkName),
		Maker:       strings.TrimSpace(p.MakerName),
		WorkType:    strings.TrimSpace(p.WorkType),
		AgeCategory: p.AgeCategory,
		Genres:      p.Genre,
		Description: strings.TrimSpace(p.Intro),
		CoverURL:    absoluteImageURL(p.WorkImage),
		RegistDate:  strings.TrimSpace(p.RegistDate),
	}
}

// genreList tolerates both a single string and an array of strings; the
// endpoint serves either depending on the work category.
type genreList []string

func (g *genreList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*g = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if strings.TrimSpace(one) == "" {
		*g = nil
		return nil
	}
	*g = genreList{one}
	return nil
}

// absoluteImageURL resolves the image paths served by the endpoint, which are
// either protocol-relative or relative to the image host.
func absoluteImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return imageHost + raw
	default:
		return raw
	}
}

// Fetcher defines the DLSite lookup operation used by the add flow.
type Fetcher interface {
	FetchWork(ctx context.Context, id string) (*Work, error)
}

// Client provides access to the DLSite product info endpoint.
type Client struct {
	baseURL    string
	category   string
	userAgent  string
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent overrides the User-Agent header sent with lookups.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithTimeout overrides the request timeout on the client in use.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a DLSite client.
func New(baseURL, category string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("dlsite base url required")
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = "maniax"
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		category:   category,
		userAgent:  "Mozilla/5.0 (compatible; Dust/1.0)",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchWork looks up product metadata for a catalog identifier. The raw
// identifier is canonicalized first, so lowercase and truncated forms are
// accepted the same way the add flow accepts them.
func (c *Client) FetchWork(ctx context.Context, id string) (*Work, error) {
	canonical, err := catalogid.Normalize(id)
	if err != nil {
		return nil, err
	}
	endpoint, err := url.Parse(fmt.Sprintf("%s/%s/product/info/ajax", c.baseURL, c.category))
	if err != nil {
		return nil, fmt.Errorf("parse dlsite url: %w", err)
	}
	params := url.Values{}
	params.Set("product_id", canonical)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		// A cancelled context is the caller abandoning the lookup, not an
		// upstream failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrMetadataUnavailable, "dlsite", "fetch work",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrMetadataUnavailable, "dlsite", "fetch work",
			fmt.Sprintf("product info returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload map[string]*workPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrMetadataUnavailable, "dlsite", "fetch work",
			"decode product info", err)
	}
	entry, ok := payload[canonical]
	if !ok || entry == nil {
		return nil, services.Wrap(services.ErrNotFound, "dlsite", "fetch work",
			fmt.Sprintf("no work published under %s", canonical), nil)
	}
	return entry.toWork(canonical), nil
}
