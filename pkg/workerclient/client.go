// Package workerclient — Go-клиент data-plane API воркера.
package workerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ycycse/alluxio/internal/models"
	"github.com/ycycse/alluxio/pkg/workerproto"
)

// Client ходит в HTTP API воркера.
type Client struct {
	base string
	c    *http.Client
}

// New создаёт клиента для воркера по базовому URL.
func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		c:    &http.Client{},
	}
}

// ReadPage читает length байт страницы со смещения offset. Отрицательные
// offset/length опускают соответствующий параметр.
func (c *Client) ReadPage(ctx context.Context, fileID string, pageIndex int64, offset, length int64) ([]byte, error) {
	u := fmt.Sprintf(workerproto.PagePathFormat, c.base, url.PathEscape(fileID), pageIndex)
	q := url.Values{}
	if offset >= 0 {
		q.Set(workerproto.ParamOffset, strconv.FormatInt(offset, 10))
	}
	if length >= 0 {
		q.Set(workerproto.ParamLength, strconv.FormatInt(length, 10))
	}
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: fileId %s, pageIndex %d", models.ErrPageNotFound, fileID, pageIndex)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page GET failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// WritePage записывает страницу и возвращает исход из тела ответа.
func (c *Client) WritePage(ctx context.Context, fileID string, pageIndex int64, data []byte) (models.WriteOutcome, error) {
	u := fmt.Sprintf(workerproto.PagePathFormat, c.base, url.PathEscape(fileID), pageIndex)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return models.WriteOutcome{}, err
	}
	req.ContentLength = int64(len(data))

	resp, err := c.c.Do(req)
	if err != nil {
		return models.WriteOutcome{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.WriteOutcome{}, fmt.Errorf("page PUT failed: %s", resp.Status)
	}

	var outcome models.WriteOutcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return models.WriteOutcome{}, err
	}
	return outcome, nil
}

// ListFiles возвращает записи каталога path.
func (c *Client) ListFiles(ctx context.Context, path string) ([]models.FileEntry, error) {
	return c.entries(ctx, workerproto.FilesPath, path)
}

// GetFileStatus возвращает статус одного файла (одноэлементный массив).
func (c *Client) GetFileStatus(ctx context.Context, path string) ([]models.FileEntry, error) {
	return c.entries(ctx, workerproto.InfoPath, path)
}

func (c *Client) entries(ctx context.Context, endpoint, path string) ([]models.FileEntry, error) {
	q := url.Values{}
	q.Set(workerproto.ParamPath, escapeReserved(path))

	body, err := c.getText(ctx, endpoint, q)
	if err != nil {
		return nil, err
	}

	var entries []models.FileEntry
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Load ставит/останавливает/опрашивает загрузку path; params — прочие
// опции запроса.
func (c *Client) Load(ctx context.Context, path string, params url.Values) (string, error) {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set(workerproto.ParamPath, escapeReserved(path))
	return c.getText(ctx, workerproto.LoadPath, q)
}

// Health возвращает строку liveness-пробы.
func (c *Client) Health(ctx context.Context) (string, error) {
	return c.getText(ctx, workerproto.HealthPath, nil)
}

func (c *Client) getText(ctx context.Context, endpoint string, q url.Values) (string, error) {
	u := c.base + endpoint
	if len(q) > 0 {
		u += "?" + encodeRaw(q)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s failed: %s: %s", endpoint, resp.Status, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

// escapeReserved кодирует зарезервированные символы пути так, как их
// ожидает воркер: %2F, %3A, %3F.
func escapeReserved(path string) string {
	r := strings.NewReplacer("/", "%2F", ":", "%3A", "?", "%3F")
	return r.Replace(path)
}

// encodeRaw собирает query без повторного экранирования значений: пути уже
// закодированы escapeReserved, а воркер не декодирует параметры сам.
func encodeRaw(q url.Values) string {
	var b strings.Builder
	for k, vs := range q {
		for _, v := range vs {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}
