package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultOverpassURL is the public Overpass API interpreter.
const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

// OverpassClient geocodes railway stations through the OpenStreetMap
// Overpass API.
type OverpassClient struct {
	baseURL    string
	httpClient *http.Client
}

// OverpassConfig configures an OverpassClient.
type OverpassConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewOverpassClient returns a client; zero values fall back to the public
// endpoint and a 90 second timeout.
func NewOverpassClient(cfg OverpassConfig) *OverpassClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOverpassURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &OverpassClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *Point            `json:"center"`
	Tags   map[string]string `json:"tags"`
}

func (e overpassElement) point() (Point, bool) {
	if e.Lat != nil && e.Lon != nil {
		return Point{Lat: *e.Lat, Lon: *e.Lon}, true
	}
	if e.Center != nil {
		return *e.Center, true
	}
	return Point{}, false
}

// Lookup finds a station whose name equals name ignoring case. Nodes, ways
// and relations are queried; an element tagged railway=station wins over
// other matches.
func (c *OverpassClient) Lookup(ctx context.Context, name string) (Coordinate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Coordinate{}, ErrNotFound
	}
	pattern := quoteOverpass("^" + regexp.QuoteMeta(name) + "$")
	query := fmt.Sprintf(`[out:json][timeout:90];
(
  node["railway"~"station|halt|yard"]["name"~"%[1]s",i];
  way["railway"~"station|halt|yard"]["name"~"%[1]s",i];
  relation["railway"~"station|halt|yard"]["name"~"%[1]s",i];
);
out center;`, pattern)

	resp, err := c.query(ctx, query)
	if err != nil {
		return Coordinate{}, err
	}

	var best *overpassElement
	for i := range resp.Elements {
		el := &resp.Elements[i]
		if _, ok := el.point(); !ok {
			continue
		}
		if best == nil {
			best = el
		}
		if el.Tags["railway"] == "station" {
			best = el
			break
		}
	}
	if best == nil {
		return Coordinate{}, ErrNotFound
	}
	p, _ := best.point()
	matched := best.Tags["name"]
	if matched == "" {
		matched = name
	}
	return Coordinate{Code: esrCode(best.Tags), MatchedName: matched, Point: p}, nil
}

// StationsWithCodes lists stations carrying an ESR code inside the named
// area, for seeding the cache by code.
func (c *OverpassClient) StationsWithCodes(ctx context.Context, area string) ([]Coordinate, error) {
	query := fmt.Sprintf(`[out:json][timeout:90];
area["name:en"="%s"]->.searchArea;
(
  node["railway"="station"]["esr:user"](area.searchArea);
  node["railway"="station"]["ref:esr"](area.searchArea);
);
out body;`, quoteOverpass(area))

	resp, err := c.query(ctx, query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []Coordinate
	for _, el := range resp.Elements {
		code := esrCode(el.Tags)
		p, ok := el.point()
		if code == "" || !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, Coordinate{Code: code, MatchedName: el.Tags["name"], Point: p})
	}
	return out, nil
}

func (c *OverpassClient) query(ctx context.Context, query string) (*overpassResponse, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "rail_distance/1.0")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, res.StatusCode, strings.TrimSpace(string(body)))
	}
	var out overpassResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return &out, nil
}

// esrCode returns the station's ESR code padded to six digits, or "".
func esrCode(tags map[string]string) string {
	raw := strings.TrimSpace(tags["esr:user"])
	if raw == "" {
		raw = strings.TrimSpace(tags["ref:esr"])
	}
	if len(raw) < 5 || len(raw) > 6 {
		return ""
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return strings.Repeat("0", 6-len(raw)) + raw
}

func quoteOverpass(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
