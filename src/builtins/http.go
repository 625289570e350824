package builtins

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/csml-sh/csml-engine/src/primitive"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPBuilder implements the `HTTP(url).get/.post/.put/.patch/.delete()
// .set_header(k,v).set_body(v).set_query(k,v).send()` builder chain
// (spec §4.3 table). There is no upstream reference implementation to
// carry behavior from beyond spec.md's table (the retrieved original
// source's http.rs is an unfinished ureq-based stub); this follows the
// builder chain literally over net/http.
type HTTPBuilder struct {
	method  string
	rawURL  string
	headers http.Header
	query   url.Values
	body    []byte
}

// HTTP starts a new request builder for url.
func HTTP(rawURL string) *HTTPBuilder {
	return &HTTPBuilder{method: http.MethodGet, rawURL: rawURL, headers: http.Header{}, query: url.Values{}}
}

func (b *HTTPBuilder) Get() *HTTPBuilder    { b.method = http.MethodGet; return b }
func (b *HTTPBuilder) Post() *HTTPBuilder   { b.method = http.MethodPost; return b }
func (b *HTTPBuilder) Put() *HTTPBuilder    { b.method = http.MethodPut; return b }
func (b *HTTPBuilder) Patch() *HTTPBuilder  { b.method = http.MethodPatch; return b }
func (b *HTTPBuilder) Delete() *HTTPBuilder { b.method = http.MethodDelete; return b }

func (b *HTTPBuilder) SetHeader(k, v string) *HTTPBuilder { b.headers.Set(k, v); return b }
func (b *HTTPBuilder) SetQuery(k, v string) *HTTPBuilder   { b.query.Set(k, v); return b }

// SetBody accepts any Literal and marshals its JSON projection.
func (b *HTTPBuilder) SetBody(v *primitive.Literal) *HTTPBuilder {
	data, err := json.Marshal(v.ToJSON())
	if err != nil {
		Logger.Warn("http set_body marshal failed", zap.Error(err))
		return b
	}
	b.body = data
	if b.headers.Get("Content-Type") == "" {
		b.headers.Set("Content-Type", "application/json")
	}
	return b
}

// Send executes the built request. Network/transport failures are
// RuntimeIO per spec §7: translated to Null, never an abort; the caller
// (package interpreter) is responsible for emitting the accompanying
// diagnostic Message.
func (b *HTTPBuilder) Send(ctx context.Context) (*primitive.Literal, error) {
	u, err := url.Parse(b.rawURL)
	if err != nil {
		Logger.Debug("http invalid url", zap.String("url", b.rawURL), zap.Error(err))
		return primitive.Null(), err
	}
	if len(b.query) > 0 {
		q := u.Query()
		for k, vs := range b.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var bodyReader io.Reader
	if b.body != nil {
		bodyReader = bytes.NewReader(b.body)
	}

	reqCtx, cancel := context.WithTimeout(ctx, defaultHTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, b.method, u.String(), bodyReader)
	if err != nil {
		return primitive.Null(), err
	}
	req.Header = b.headers

	client := &http.Client{Timeout: defaultHTTPTimeout}
	if disableSSLVerify() {
		client.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}

	resp, err := client.Do(req)
	if err != nil {
		Logger.Debug("http request failed", zap.String("url", b.rawURL), zap.Error(err))
		return primitive.Null(), err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return primitive.Null(), err
	}
	if len(data) == 0 {
		return primitive.Null(), nil
	}
	lit, err := primitive.ParseJSON(data)
	if err != nil {
		// Non-JSON response body: surface as a raw string rather than Null,
		// the request itself succeeded.
		return primitive.Str(string(data)), nil
	}
	return lit, nil
}
