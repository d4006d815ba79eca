package selfhosted

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/captain-yun7/facefalcon-sub001/internal/errors"
	"github.com/captain-yun7/facefalcon-sub001/internal/logger"
	"github.com/captain-yun7/facefalcon-sub001/internal/provider"
	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// Provider is the self-hosted inference adapter. It talks JSON to the
// in-house insightface service, which scores everything on [0,1] and
// names boxes x/y; normalization lives in normalize.go.
type Provider struct {
	baseURL string
	client  *http.Client
}

// New builds the adapter against the service base URL.
func New(baseURL string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	// Connection pool sized for a single upstream host
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Name identifies the backend
func (p *Provider) Name() models.ProviderID {
	return models.ProviderSelfHosted
}

// DetectFaces calls POST /analyze and normalizes the response.
func (p *Provider) DetectFaces(ctx context.Context, image string) ([]models.Face, error) {
	if err := provider.ValidateImage("image", image); err != nil {
		return nil, err
	}

	var resp analyzeResponse
	if err := p.post(ctx, "/analyze", analyzeRequest{Image: image}, &resp); err != nil {
		return nil, err
	}
	return normalizeAnalyze(&resp)
}

// CompareFaces calls POST /compare. The engine threshold is a 0-100
// percentage; the service wants its native [0,1], so it is rescaled on
// the way in, mirroring the result rescale on the way out.
func (p *Provider) CompareFaces(ctx context.Context, sourceImage, targetImage string, similarityThreshold float64) (*models.FaceComparisonResult, error) {
	if err := provider.ValidateImage("sourceImage", sourceImage); err != nil {
		return nil, err
	}
	if err := provider.ValidateImage("targetImage", targetImage); err != nil {
		return nil, err
	}
	if err := provider.ValidateThreshold(similarityThreshold); err != nil {
		return nil, err
	}

	var resp compareResponse
	req := compareRequest{
		SourceImage: sourceImage,
		TargetImage: targetImage,
		Threshold:   similarityThreshold / 100,
	}
	if err := p.post(ctx, "/compare", req, &resp); err != nil {
		return nil, err
	}
	return normalizeCompare(&resp)
}

// FindSimilarFaces calls the service's native batch endpoint
// POST /find-similar and normalizes the ranking.
func (p *Provider) FindSimilarFaces(ctx context.Context, sourceImage string, candidateImages []string) (*models.FindSimilarResponse, error) {
	if err := provider.ValidateImage("sourceImage", sourceImage); err != nil {
		return nil, err
	}
	if err := provider.ValidateCandidates(candidateImages); err != nil {
		return nil, err
	}

	var resp findSimilarResponse
	req := findSimilarRequest{SourceImage: sourceImage, TargetImages: candidateImages}
	if err := p.post(ctx, "/find-similar", req, &resp); err != nil {
		return nil, err
	}
	return normalizeFindSimilar(&resp, len(candidateImages))
}

func (p *Provider) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewInternalError("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		logger.WithError(err).WithFields(logrus.Fields{
			"provider": models.ProviderSelfHosted,
			"path":     path,
		}).Warn("Self-hosted inference call failed")
		return apperrors.NewProviderUnavailableError("self-hosted inference service is unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return apperrors.NewProviderUnavailableError("failed reading self-hosted response", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return apperrors.NewProviderUnavailableError(
			fmt.Sprintf("self-hosted inference service returned %s", resp.Status), errorFromBody(data))
	case resp.StatusCode >= 400:
		return apperrors.NewInvalidInputError(
			fmt.Sprintf("self-hosted inference service rejected the request (%s)", resp.Status), errorFromBody(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewNormalizationError("self-hosted response is not valid JSON", path, err)
	}
	return nil
}

func errorFromBody(data []byte) error {
	var e errorResponse
	if err := json.Unmarshal(data, &e); err == nil && e.Detail != "" {
		return errors.New(e.Detail)
	}
	return nil
}
