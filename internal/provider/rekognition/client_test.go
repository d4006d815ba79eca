package rekognition

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/captain-yun7/facefalcon-sub001/internal/errors"
)

// fakeAPI serves canned responses keyed by target image content
type fakeAPI struct {
	mu           sync.Mutex
	detectCalls  int
	compareCalls int

	detectOut  *rekognition.DetectFacesOutput
	detectErr  error
	compareErr error
	// similarityByTarget keys decoded target bytes to a similarity
	similarityByTarget map[string]float32
}

func (f *fakeAPI) DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detectCalls++
	if f.detectErr != nil {
		return nil, f.detectErr
	}
	return f.detectOut, nil
}

func (f *fakeAPI) CompareFaces(ctx context.Context, params *rekognition.CompareFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.CompareFacesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compareCalls++
	if f.compareErr != nil {
		return nil, f.compareErr
	}

	similarity := float32(0)
	if f.similarityByTarget != nil {
		similarity = f.similarityByTarget[string(params.TargetImage.Bytes)]
	}
	return &rekognition.CompareFacesOutput{
		FaceMatches: []types.CompareFacesMatch{{
			Similarity: aws.Float32(similarity),
			Face: &types.ComparedFace{
				BoundingBox: &types.BoundingBox{
					Left: aws.Float32(0.1), Top: aws.Float32(0.1),
					Width: aws.Float32(0.5), Height: aws.Float32(0.5),
				},
				Confidence: aws.Float32(99),
			},
		}},
	}, nil
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestDetectFaces_PassThroughScales(t *testing.T) {
	api := &fakeAPI{
		detectOut: &rekognition.DetectFacesOutput{
			FaceDetails: []types.FaceDetail{{
				BoundingBox: &types.BoundingBox{
					Left: aws.Float32(0.25), Top: aws.Float32(0.1),
					Width: aws.Float32(0.5), Height: aws.Float32(0.6),
				},
				Confidence: aws.Float32(99.5),
				AgeRange:   &types.AgeRange{Low: aws.Int32(25), High: aws.Int32(35)},
				Gender: &types.Gender{
					Value:      types.GenderTypeFemale,
					Confidence: aws.Float32(98.5),
				},
				Smile: &types.Smile{Value: true, Confidence: aws.Float32(88)},
			}},
		},
	}
	p := NewWithAPI(api, Options{})

	faces, err := p.DetectFaces(context.Background(), b64("img"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("Expected 1 face, got %d", len(faces))
	}

	face := faces[0]
	// Rekognition is already 0-100; values pass through unchanged
	if face.Confidence != 99.5 {
		t.Errorf("Expected confidence 99.5 unchanged, got %g", face.Confidence)
	}
	if face.BoundingBox.Left != 0.25 {
		t.Errorf("Expected left 0.25 unchanged, got %g", face.BoundingBox.Left)
	}
	if face.Details == nil || face.Details.AgeRange == nil || face.Details.AgeRange.Low != 25 {
		t.Errorf("Expected age range low 25, got %+v", face.Details)
	}
	if face.Details.Gender == nil || face.Details.Gender.Confidence != 98.5 {
		t.Errorf("Expected gender confidence 98.5, got %+v", face.Details.Gender)
	}
	if face.Details.Smile == nil || !face.Details.Smile.Value || face.Details.Smile.Confidence != 88 {
		t.Errorf("Expected smile true at 88, got %+v", face.Details.Smile)
	}
}

func TestDetectFaces_MissingConfidenceFailsNormalization(t *testing.T) {
	api := &fakeAPI{
		detectOut: &rekognition.DetectFacesOutput{
			FaceDetails: []types.FaceDetail{{
				BoundingBox: &types.BoundingBox{
					Left: aws.Float32(0.1), Top: aws.Float32(0.1),
					Width: aws.Float32(0.5), Height: aws.Float32(0.5),
				},
			}},
		},
	}
	p := NewWithAPI(api, Options{})

	_, err := p.DetectFaces(context.Background(), b64("img"))
	if err == nil {
		t.Fatal("Expected normalization error for missing confidence")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeNormalization {
		t.Fatalf("Expected normalization error, got %v", err)
	}
	if appErr.FieldPath != "faceDetails[0].confidence" {
		t.Errorf("Expected field path faceDetails[0].confidence, got %q", appErr.FieldPath)
	}
}

func TestDetectFaces_InvalidBase64IsInvalidInput(t *testing.T) {
	api := &fakeAPI{}
	p := NewWithAPI(api, Options{})

	_, err := p.DetectFaces(context.Background(), "not base64!!!")
	if err == nil {
		t.Fatal("Expected error for invalid base64")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeInvalidInput) {
		t.Errorf("Expected invalid_input, got %v", err)
	}
	if api.detectCalls != 0 {
		t.Errorf("Expected no backend call for invalid payload, got %d", api.detectCalls)
	}
}

func TestCompareFaces_ThrottlingIsProviderUnavailable(t *testing.T) {
	api := &fakeAPI{
		compareErr: &smithy.GenericAPIError{Code: "ThrottlingException", Message: "rate exceeded"},
	}
	p := NewWithAPI(api, Options{})

	_, err := p.CompareFaces(context.Background(), b64("src"), b64("tgt"), 80)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !apperrors.IsProviderUnavailable(err) {
		t.Errorf("Expected provider_unavailable for throttling, got %v", err)
	}
}

func TestCompareFaces_NoFaceIsEmptyResult(t *testing.T) {
	api := &fakeAPI{
		compareErr: &smithy.GenericAPIError{
			Code:    "InvalidParameterException",
			Message: "There are no faces in the image",
		},
	}
	p := NewWithAPI(api, Options{})

	result, err := p.CompareFaces(context.Background(), b64("src"), b64("tgt"), 1)
	if err != nil {
		t.Fatalf("Expected empty comparison without error, got %v", err)
	}
	if result.Similarity != 0 || len(result.FaceMatches) != 0 || len(result.UnmatchedFaces) != 0 {
		t.Errorf("Expected empty comparison result, got %+v", result)
	}
}

func TestFindSimilarFaces_RanksCandidates(t *testing.T) {
	api := &fakeAPI{
		similarityByTarget: map[string]float32{
			"a": 90,
			"b": 90,
			"c": 40,
		},
	}
	p := NewWithAPI(api, Options{Workers: 2})

	resp, err := p.FindSimilarFaces(context.Background(), b64("src"), []string{b64("a"), b64("b"), b64("c")})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if api.compareCalls != 3 {
		t.Errorf("Expected one compare per candidate, got %d", api.compareCalls)
	}
	if len(resp.Matches) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(resp.Matches))
	}

	// Ties keep ascending candidate index: a (0) before b (1)
	wantOrder := []struct {
		index      int
		similarity float64
	}{{0, 90}, {1, 90}, {2, 40}}
	for i, want := range wantOrder {
		got := resp.Matches[i]
		if got.ImageIndex != want.index || got.Similarity != want.similarity {
			t.Errorf("Match %d: expected index=%d similarity=%g, got index=%d similarity=%g",
				i, want.index, want.similarity, got.ImageIndex, got.Similarity)
		}
	}
	if resp.BestMatch == nil || resp.BestMatch.ImageIndex != 0 || resp.BestMatch.Similarity != 90 {
		t.Errorf("Expected best match index=0 similarity=90, got %+v", resp.BestMatch)
	}
}

func TestFindSimilarFaces_CandidateBoundsFailFast(t *testing.T) {
	api := &fakeAPI{}
	p := NewWithAPI(api, Options{})

	if _, err := p.FindSimilarFaces(context.Background(), b64("src"), nil); err == nil {
		t.Error("Expected error for empty candidate list")
	} else if !apperrors.IsType(err, apperrors.ErrorTypeInvalidInput) {
		t.Errorf("Expected invalid_input, got %v", err)
	}

	eleven := make([]string, 11)
	for i := range eleven {
		eleven[i] = b64("x")
	}
	if _, err := p.FindSimilarFaces(context.Background(), b64("src"), eleven); err == nil {
		t.Error("Expected error for 11 candidates")
	} else if !apperrors.IsType(err, apperrors.ErrorTypeInvalidInput) {
		t.Errorf("Expected invalid_input, got %v", err)
	}

	if api.compareCalls != 0 {
		t.Errorf("Expected no backend calls for invalid candidate counts, got %d", api.compareCalls)
	}
}

func TestFindSimilarFaces_BackendOutageFailsWhole(t *testing.T) {
	api := &fakeAPI{
		compareErr: &smithy.GenericAPIError{Code: "InternalServerError", Message: "boom"},
	}
	p := NewWithAPI(api, Options{Workers: 2})

	_, err := p.FindSimilarFaces(context.Background(), b64("src"), []string{b64("a"), b64("b")})
	if err == nil {
		t.Fatal("Expected error when compares fail")
	}
	if !apperrors.IsProviderUnavailable(err) {
		t.Errorf("Expected provider_unavailable, got %v", err)
	}
}
