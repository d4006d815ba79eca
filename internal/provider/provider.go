package provider

import (
	"context"

	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// FaceProvider is the capability interface both face-analysis backends
// implement. The set is closed: the cloud adapter (Rekognition) and
// the self-hosted adapter are the only implementations, and the router
// holds one instance of each.
//
// Images are opaque base64 payloads already size-reduced by the
// caller; adapters never re-encode or re-compress. Every call is
// billable on the backend side once it leaves the process.
type FaceProvider interface {
	// Name identifies the backend for routing and observability
	Name() models.ProviderID

	// DetectFaces returns every face found in the image with extended
	// details, all scores normalized to 0-100
	DetectFaces(ctx context.Context, image string) ([]models.Face, error)

	// CompareFaces compares the largest face in the source image
	// against faces in the target image. The threshold is a 0-100
	// percentage; matches below it land in UnmatchedFaces.
	CompareFaces(ctx context.Context, sourceImage, targetImage string, similarityThreshold float64) (*models.FaceComparisonResult, error)

	// FindSimilarFaces ranks 1-10 candidate images by similarity to
	// the source face, descending with ties by ascending index
	FindSimilarFaces(ctx context.Context, sourceImage string, candidateImages []string) (*models.FindSimilarResponse, error)
}
