package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"vsix-sync/internal/shared"
	"vsix-sync/internal/types"
)

// Microsoft gallery wire constants. Flags 914 requests versions, files,
// version properties, installation targets, and asset URIs in one query.
const (
	defaultGalleryEndpoint = "https://marketplace.visualstudio.com/_apis/public/gallery/extensionquery"
	galleryAcceptHeader    = "application/json;api-version=3.0-preview.1"
	galleryQueryFlags      = 914
	galleryFilterTypeName  = 7

	enginePropertyKey = "Microsoft.VisualStudio.Code.Engine"
	vsixAssetType     = "Microsoft.VisualStudio.Services.VSIXPackage"

	vsixFallbackURL = "https://marketplace.visualstudio.com/_apis/public/gallery/publishers/%s/vsextensions/%s/%s/vspackage"
)

const defaultGalleryTimeout = 60 * time.Second
const defaultGalleryRetries = 3
const defaultGalleryRetryDelay = 200 * time.Millisecond
const maxGalleryRetryDelay = 2 * time.Second

// GalleryAdapter implements the catalog port against a VS Code style
// extension gallery.
type GalleryAdapter struct {
	Endpoint   string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration

	client *http.Client
}

func NewGalleryAdapter(endpoint string, timeoutSec int, retries int, retryDelayMs int) *GalleryAdapter {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultGalleryEndpoint
	}
	timeout := defaultGalleryTimeout
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	if retries <= 0 {
		retries = defaultGalleryRetries
	}
	retryDelay := defaultGalleryRetryDelay
	if retryDelayMs > 0 {
		retryDelay = time.Duration(retryDelayMs) * time.Millisecond
	}
	return &GalleryAdapter{
		Endpoint:   endpoint,
		Timeout:    timeout,
		Retries:    retries,
		RetryDelay: retryDelay,
		client:     &http.Client{Timeout: timeout},
	}
}

type galleryQuery struct {
	Filters    []galleryFilter `json:"filters"`
	AssetTypes []string        `json:"assetTypes"`
	Flags      int             `json:"flags"`
}

type galleryFilter struct {
	Criteria   []galleryCriterion `json:"criteria"`
	PageNumber int                `json:"pageNumber"`
	PageSize   int                `json:"pageSize"`
	SortBy     int                `json:"sortBy"`
	SortOrder  int                `json:"sortOrder"`
}

type galleryCriterion struct {
	FilterType int    `json:"filterType"`
	Value      string `json:"value"`
}

type galleryResponse struct {
	Results []struct {
		Extensions []galleryExtension `json:"extensions"`
	} `json:"results"`
}

type galleryExtension struct {
	ExtensionName string `json:"extensionName"`
	Publisher     struct {
		PublisherName string `json:"publisherName"`
	} `json:"publisher"`
	Versions []galleryVersion `json:"versions"`
}

type galleryVersion struct {
	Version    string `json:"version"`
	Properties []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"properties"`
	Files []struct {
		AssetType string `json:"assetType"`
		Source    string `json:"source"`
	} `json:"files"`
}

func (a *GalleryAdapter) ListReleases(ctx context.Context, packageID string) ([]types.PackageRelease, error) {
	id := shared.NormalizeExtensionID(packageID)
	if id == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("extension id is empty")
	}
	extension, err := a.queryExtension(ctx, id)
	if err != nil {
		return nil, err
	}
	var releases []types.PackageRelease
	for _, version := range extension.Versions {
		releases = append(releases, types.PackageRelease{
			PackageID:   id,
			Version:     version.Version,
			EngineRange: versionEngineRange(version),
			ArtifactURL: versionArtifactURL(extension, version),
		})
	}
	return releases, nil
}

func (a *GalleryAdapter) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid artifact url").
			WithCause(err)
	}
	response, err := a.httpClient().Do(request)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("artifact download failed").
			WithCause(err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		_ = response.Body.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("artifact download failed").
			WithCause(shared.HTTPStatusError(response.StatusCode, url))
	}
	return response.Body, nil
}

func (a *GalleryAdapter) queryExtension(ctx context.Context, id string) (galleryExtension, error) {
	payload, err := json.Marshal(galleryQuery{
		Filters: []galleryFilter{{
			Criteria:   []galleryCriterion{{FilterType: galleryFilterTypeName, Value: id}},
			PageNumber: 1,
			PageSize:   1,
		}},
		AssetTypes: []string{},
		Flags:      galleryQueryFlags,
	})
	if err != nil {
		return galleryExtension{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode gallery query").
			WithCause(err)
	}

	var lastErr error
	delay := a.RetryDelay
	for attempt := 0; attempt <= a.Retries; attempt++ {
		if attempt > 0 {
			log.Debug().Str("extension", id).Int("attempt", attempt).
				Msg("retrying gallery query")
			select {
			case <-ctx.Done():
				return galleryExtension{}, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxGalleryRetryDelay {
				delay = maxGalleryRetryDelay
			}
		}
		extension, retryable, err := a.queryOnce(ctx, payload)
		if err == nil {
			return extension, nil
		}
		lastErr = err
		if !retryable {
			return galleryExtension{}, err
		}
	}
	return galleryExtension{}, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("gallery query failed after retries").
		WithCause(lastErr)
}

func (a *GalleryAdapter) queryOnce(ctx context.Context, payload []byte) (galleryExtension, bool, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return galleryExtension{}, false, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", galleryAcceptHeader)

	response, err := a.httpClient().Do(request)
	if err != nil {
		return galleryExtension{}, true, err
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		retryable := response.StatusCode >= 500
		return galleryExtension{}, retryable, shared.HTTPStatusError(response.StatusCode, a.Endpoint)
	}
	var decoded galleryResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return galleryExtension{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode gallery response").
			WithCause(err)
	}
	if len(decoded.Results) == 0 || len(decoded.Results[0].Extensions) == 0 {
		return galleryExtension{}, false, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("extension not found in gallery")
	}
	return decoded.Results[0].Extensions[0], false, nil
}

func (a *GalleryAdapter) httpClient() *http.Client {
	if a.client == nil {
		a.client = &http.Client{Timeout: a.Timeout}
	}
	return a.client
}

func versionEngineRange(version galleryVersion) string {
	for _, property := range version.Properties {
		if property.Key == enginePropertyKey {
			return property.Value
		}
	}
	return ""
}

// versionArtifactURL prefers the gallery's VSIXPackage file source and
// falls back to the well-known vspackage URL when the file list is empty.
func versionArtifactURL(extension galleryExtension, version galleryVersion) string {
	for _, file := range version.Files {
		if file.AssetType == vsixAssetType && file.Source != "" {
			return file.Source
		}
	}
	if extension.Publisher.PublisherName != "" && extension.ExtensionName != "" {
		return fmt.Sprintf(vsixFallbackURL, extension.Publisher.PublisherName, extension.ExtensionName, version.Version)
	}
	return ""
}
