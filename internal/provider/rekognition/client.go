package rekognition

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	apperrors "github.com/captain-yun7/facefalcon-sub001/internal/errors"
	"github.com/captain-yun7/facefalcon-sub001/internal/logger"
	"github.com/captain-yun7/facefalcon-sub001/internal/provider"
	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// API is the slice of the Rekognition service the adapter uses. Tests
// substitute a fake.
type API interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
	CompareFaces(ctx context.Context, params *rekognition.CompareFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.CompareFacesOutput, error)
}

// Provider is the metered cloud adapter. Rekognition already speaks
// the canonical conventions (0-100 scores, fractional Left/Top boxes),
// so normalization is required-field checking and field mapping.
type Provider struct {
	api     API
	timeout time.Duration
	workers int
}

// Options configures the adapter.
type Options struct {
	Region  string
	Timeout time.Duration
	// Workers bounds the per-candidate compare fan-out in
	// FindSimilarFaces
	Workers int
}

// New builds the adapter with a real Rekognition client resolved from
// the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Provider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, err
	}
	return NewWithAPI(rekognition.NewFromConfig(cfg), opts), nil
}

// NewWithAPI builds the adapter on an injected API, used by tests.
func NewWithAPI(api API, opts Options) *Provider {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Provider{api: api, timeout: timeout, workers: workers}
}

// Name identifies the backend
func (p *Provider) Name() models.ProviderID {
	return models.ProviderRekognition
}

// DetectFaces runs Rekognition DetectFaces with all attributes and
// normalizes the response.
func (p *Provider) DetectFaces(ctx context.Context, image string) ([]models.Face, error) {
	if err := provider.ValidateImage("image", image); err != nil {
		return nil, err
	}
	imgBytes, err := decodeImage("image", image)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: imgBytes},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return nil, mapAWSError(err)
	}
	return normalizeDetect(out)
}

// CompareFaces runs Rekognition CompareFaces and normalizes the
// response. The threshold is already a 0-100 percentage, Rekognition's
// native scale.
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
	srcBytes, err := decodeImage("sourceImage", sourceImage)
	if err != nil {
		return nil, err
	}
	tgtBytes, err := decodeImage("targetImage", targetImage)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.api.CompareFaces(ctx, &rekognition.CompareFacesInput{
		SourceImage:         &types.Image{Bytes: srcBytes},
		TargetImage:         &types.Image{Bytes: tgtBytes},
		SimilarityThreshold: aws.Float32(float32(similarityThreshold)),
	})
	if err != nil {
		// Rekognition rejects images with no detectable source face;
		// the contract wants an empty comparison instead
		if isNoFaceError(err) {
			return &models.FaceComparisonResult{
				FaceMatches:    []models.FaceMatch{},
				UnmatchedFaces: []models.Face{},
			}, nil
		}
		return nil, mapAWSError(err)
	}
	return normalizeCompare(out)
}

// FindSimilarFaces ranks candidates by comparing each against the
// source. Rekognition has no one-shot multi-image similarity call, so
// the adapter fans out one CompareFaces per candidate on a bounded
// worker pool; the 1-10 candidate cap bounds total spend.
func (p *Provider) FindSimilarFaces(ctx context.Context, sourceImage string, candidateImages []string) (*models.FindSimilarResponse, error) {
	if err := provider.ValidateImage("sourceImage", sourceImage); err != nil {
		return nil, err
	}
	if err := provider.ValidateCandidates(candidateImages); err != nil {
		return nil, err
	}
	srcBytes, err := decodeImage("sourceImage", sourceImage)
	if err != nil {
		return nil, err
	}
	candBytes := make([][]byte, len(candidateImages))
	for i, candidate := range candidateImages {
		b, err := decodeImage("targetImages", candidate)
		if err != nil {
			return nil, err
		}
		candBytes[i] = b
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results := make([]models.SimilarityResult, len(candidateImages))
	pool := newComparePool(p.workers)
	err = pool.run(ctx, len(candidateImages), func(i int) error {
		out, err := p.api.CompareFaces(ctx, &rekognition.CompareFacesInput{
			SourceImage: &types.Image{Bytes: srcBytes},
			TargetImage: &types.Image{Bytes: candBytes[i]},
			// Threshold zero so every candidate gets a score
			SimilarityThreshold: aws.Float32(0),
		})
		if err != nil {
			if isNoFaceError(err) {
				results[i] = models.SimilarityResult{ImageIndex: i, Similarity: 0}
				return nil
			}
			return mapAWSError(err)
		}
		result, err := normalizeSimilarity(i, out)
		if err != nil {
			return err
		}
		results[i] = *result
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			err = mapAWSError(err)
		}
		return nil, err
	}
	return provider.BuildFindSimilarResponse(results), nil
}

// decodeImage turns the caller's base64 payload into raw bytes. A data
// URL prefix from browser uploads is tolerated.
func decodeImage(field, image string) ([]byte, error) {
	if idx := strings.Index(image, ","); idx >= 0 && strings.HasPrefix(image, "data:") {
		image = image[idx+1:]
	}
	b, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(field+" is not valid base64", err)
	}
	return b, nil
}

func mapAWSError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewProviderUnavailableError("rekognition request timed out", err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidParameterException", "InvalidImageFormatException", "ImageTooLargeException":
			return apperrors.NewInvalidInputError("rekognition rejected the request", err)
		}
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"provider": models.ProviderRekognition,
	}).Warn("Rekognition call failed")
	return apperrors.NewProviderUnavailableError("rekognition is unavailable", err)
}

// isNoFaceError detects Rekognition's rejection of images without a
// detectable face, which the engine treats as an empty result
func isNoFaceError(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "InvalidParameterException" &&
		strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "no face")
}
