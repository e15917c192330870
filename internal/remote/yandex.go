package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Ermachok/yandex-drive-sych/internal/version"
	"github.com/dustin/go-humanize"
	"github.com/imroc/req/v3"
)

const (
	DefaultYandexBaseURL = "https://cloud-api.yandex.net/v1/disk/resources"

	yandexUploadEndpoint = "/upload"
	yandexListPageSize   = 100
)

// YandexStorage talks to the Yandex Disk REST API.
type YandexStorage struct {
	client   *req.Client // api calls, carries the OAuth header
	uploader *req.Client // PUTs to the returned upload href, no auth
	folder   string
}

func NewYandexStorage(cfg *YandexConfig, folder string) *YandexStorage {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultYandexBaseURL
	}

	client := req.C().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetUserAgent(version.UserAgent()).
		SetCommonHeader("Authorization", "OAuth "+cfg.Token).
		SetCommonHeader("Accept", "application/json").
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	uploader := req.C().
		SetUserAgent(version.UserAgent())

	return &YandexStorage{
		client:   client,
		uploader: uploader,
		folder:   strings.TrimRight(folder, "/"),
	}
}

func (y *YandexStorage) Name() string {
	return "Yandex Drive"
}

// Upload asks for an upload link (overwriting any existing file) and PUTs
// the file body to it. A failed link request is returned as the Result.
func (y *YandexStorage) Upload(ctx context.Context, localPath string) (*Result, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, localPath)
		}
		return nil, fmt.Errorf("stat file: %w", err)
	}

	remotePath := y.remotePath(filepath.Base(localPath))

	var link operationLink
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"path":      remotePath,
			"overwrite": "true",
		}).
		SetSuccessResult(&link).
		Get(yandexUploadEndpoint)
	if err != nil {
		return nil, fmt.Errorf("yandex upload link: %w", err)
	}
	if !resp.IsSuccessState() {
		return responseResult(resp), nil
	}
	if link.Href == "" {
		return nil, ErrNoUploadLink
	}

	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	resp, err = y.uploader.R().
		SetContext(ctx).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(file).
		Put(link.Href)
	if err != nil {
		return nil, fmt.Errorf("yandex upload: %w", err)
	}

	slog.Debug("yandex upload", "path", remotePath, "size", humanize.Bytes(uint64(info.Size())), "status", resp.StatusCode)
	return responseResult(resp), nil
}

// Update re-uploads the file. The upload link is requested with overwrite=true.
func (y *YandexStorage) Update(ctx context.Context, localPath string) (*Result, error) {
	return y.Upload(ctx, localPath)
}

// Delete removes the entry permanently. Yandex answers 204 when done or 202
// with an operation href when the deletion runs asynchronously.
func (y *YandexStorage) Delete(ctx context.Context, name string) (*Result, error) {
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"path":        y.remotePath(name),
			"permanently": "true",
		}).
		Delete("")
	if err != nil {
		return nil, fmt.Errorf("yandex delete: %w", err)
	}
	return responseResult(resp), nil
}

func (y *YandexStorage) List(ctx context.Context) ([]*Entry, error) {
	folder := y.folder
	if folder == "" {
		folder = "/"
	}

	entries := make([]*Entry, 0)
	for offset := 0; ; {
		var page yandexResource
		resp, err := y.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"path":   folder,
				"limit":  strconv.Itoa(yandexListPageSize),
				"offset": strconv.Itoa(offset),
			}).
			SetSuccessResult(&page).
			Get("")
		if err != nil {
			return nil, fmt.Errorf("yandex list: %w", err)
		}
		if !resp.IsSuccessState() {
			return nil, fmt.Errorf("yandex list: unexpected status %d: %s", resp.StatusCode, resp.Bytes())
		}
		if page.Embedded == nil || len(page.Embedded.Items) == 0 {
			break
		}

		entries = append(entries, page.Embedded.Items...)
		offset += len(page.Embedded.Items)
		if offset >= page.Embedded.Total {
			break
		}
	}

	return entries, nil
}

func (y *YandexStorage) remotePath(name string) string {
	return y.folder + "/" + name
}

func responseResult(resp *req.Response) *Result {
	return &Result{
		StatusCode: resp.StatusCode,
		Body:       resp.Bytes(),
	}
}

var _ Storage = (*YandexStorage)(nil)
