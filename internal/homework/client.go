package homework

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	logx "hwbot/pkg/logx"
)

// DefaultEndpoint is the homework status API.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

const maxLoggedBody = 512

type Config struct {
	Endpoint string
	Token    string
	// HTTPClient defaults to a client without its own timeout; a stuck
	// request is bounded only by ctx and the transport defaults.
	HTTPClient *http.Client
}

// Client issues the timestamped status query. It never retries: the poll
// loop's next cycle is the retry.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	log      logx.Logger
}

func NewClient(cfg Config, log logx.Logger) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{endpoint: endpoint, token: cfg.Token, http: hc, log: log}
}

// Document is a decoded JSON answer of the status API.
type Document struct {
	root gjson.Result
}

// ParseDocument decodes raw bytes into a Document.
func ParseDocument(b []byte) (Document, error) {
	if !gjson.ValidBytes(b) {
		return Document{}, &Error{Kind: KindMalformedBody, Msg: "ответ API не является JSON-документом"}
	}
	return Document{root: gjson.ParseBytes(b)}, nil
}

// Raw returns the document's JSON text.
func (d Document) Raw() string { return d.root.Raw }

// FetchStatus queries homework statuses changed since cursor (unix seconds).
func (c *Client) FetchStatus(ctx context.Context, cursor int64) (Document, error) {
	if cursor < 0 {
		return Document{}, shapeError("метка времени запроса не может быть отрицательной: " + strconv.FormatInt(cursor, 10))
	}
	params := c.describe(cursor)

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return Document{}, &Error{Kind: KindTransport, Msg: "некорректный адрес API; " + params, Err: err}
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(cursor, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Document{}, &Error{Kind: KindTransport, Msg: "не удалось подготовить запрос; " + params, Err: err}
	}
	req.Header.Set("Authorization", "OAuth "+c.token)

	c.log.Info("status request started", logx.Int64("from_date", cursor))
	res, err := c.http.Do(req)
	if err != nil {
		return Document{}, &Error{Kind: KindTransport, Msg: "нет соединения с сервером; " + params, Err: unwrapURLError(err)}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return Document{}, &Error{
			Kind: KindStatusCode,
			Code: res.StatusCode,
			Msg:  fmt.Sprintf("API возвращает код, отличный от 200: %d; %s", res.StatusCode, params),
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Document{}, &Error{Kind: KindTransport, Msg: "обрыв соединения при чтении ответа; " + params, Err: err}
	}
	doc, err := ParseDocument(body)
	if err != nil {
		return Document{}, err
	}
	c.log.Info("status request succeeded", logx.Int64("from_date", cursor))
	c.log.Debug("status response", logx.String("body", truncate(doc.Raw(), maxLoggedBody)))
	return doc, nil
}

// describe renders request parameters for diagnostics. The token is never included.
func (c *Client) describe(cursor int64) string {
	return fmt.Sprintf("параметры запроса: endpoint=%s from_date=%d", c.endpoint, cursor)
}

// unwrapURLError drops *url.Error's "Get <url>:" prefix; the URL is already
// part of the message.
func unwrapURLError(err error) error {
	if ue, ok := err.(*url.Error); ok && ue.Err != nil {
		return ue.Err
	}
	return err
}

func truncate(s string, maxN int) string {
	if len(s) <= maxN {
		return s
	}
	cut := maxN
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
