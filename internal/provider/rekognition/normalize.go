package rekognition

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	apperrors "github.com/captain-yun7/facefalcon-sub001/internal/errors"
	"github.com/captain-yun7/facefalcon-sub001/internal/provider"
	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// Rekognition already reports confidences and similarities as 0-100
// percentages and bounding boxes as Left/Top fractions, so the scale
// rule here is pass-through. Required fields are still checked
// per-field; a missing pointer is a schema drift, never a default.

func normalizeDetect(out *rekognition.DetectFacesOutput) ([]models.Face, error) {
	faces := make([]models.Face, 0, len(out.FaceDetails))
	for i, detail := range out.FaceDetails {
		face, err := normalizeFaceDetail(fmt.Sprintf("faceDetails[%d]", i), detail)
		if err != nil {
			return nil, err
		}
		faces = append(faces, *face)
	}
	return faces, nil
}

func normalizeCompare(out *rekognition.CompareFacesOutput) (*models.FaceComparisonResult, error) {
	result := &models.FaceComparisonResult{
		FaceMatches:    make([]models.FaceMatch, 0, len(out.FaceMatches)),
		UnmatchedFaces: make([]models.Face, 0, len(out.UnmatchedFaces)),
	}

	for i, match := range out.FaceMatches {
		path := fmt.Sprintf("faceMatches[%d]", i)
		similarity, err := requireFloat32(path+".similarity", match.Similarity)
		if err != nil {
			return nil, err
		}
		if match.Face == nil {
			return nil, apperrors.NewNormalizationError("missing face", path+".face", nil)
		}
		face, err := normalizeComparedFace(path+".face", *match.Face)
		if err != nil {
			return nil, err
		}
		result.FaceMatches = append(result.FaceMatches, models.FaceMatch{
			Similarity: similarity,
			Face:       *face,
		})
	}
	provider.SortFaceMatches(result.FaceMatches)
	if len(result.FaceMatches) > 0 {
		result.Similarity = result.FaceMatches[0].Similarity
	}

	for i, unmatched := range out.UnmatchedFaces {
		face, err := normalizeComparedFace(fmt.Sprintf("unmatchedFaces[%d]", i), unmatched)
		if err != nil {
			return nil, err
		}
		result.UnmatchedFaces = append(result.UnmatchedFaces, *face)
	}

	if out.SourceImageFace != nil {
		box, err := normalizeBoundingBox("sourceImageFace.boundingBox", out.SourceImageFace.BoundingBox)
		if err != nil {
			return nil, err
		}
		confidence, err := requireFloat32("sourceImageFace.confidence", out.SourceImageFace.Confidence)
		if err != nil {
			return nil, err
		}
		result.SourceImageFace = &models.Face{BoundingBox: *box, Confidence: confidence}
	}
	return result, nil
}

// normalizeSimilarity reduces one candidate's comparison to its best
// match score. No match means similarity zero, not an error.
func normalizeSimilarity(index int, out *rekognition.CompareFacesOutput) (*models.SimilarityResult, error) {
	result := &models.SimilarityResult{ImageIndex: index}
	for i, match := range out.FaceMatches {
		similarity, err := requireFloat32(fmt.Sprintf("faceMatches[%d].similarity", i), match.Similarity)
		if err != nil {
			return nil, err
		}
		if similarity > result.Similarity {
			result.Similarity = similarity
		}
	}
	return result, nil
}

func normalizeFaceDetail(path string, detail types.FaceDetail) (*models.Face, error) {
	box, err := normalizeBoundingBox(path+".boundingBox", detail.BoundingBox)
	if err != nil {
		return nil, err
	}
	confidence, err := requireFloat32(path+".confidence", detail.Confidence)
	if err != nil {
		return nil, err
	}

	face := &models.Face{
		BoundingBox: *box,
		Confidence:  confidence,
		Landmarks:   normalizeLandmarks(detail.Landmarks),
	}
	if detail.Pose != nil {
		face.Pose = &models.Pose{
			Roll:  float32Value(detail.Pose.Roll),
			Yaw:   float32Value(detail.Pose.Yaw),
			Pitch: float32Value(detail.Pose.Pitch),
		}
	}
	if detail.Quality != nil {
		face.Quality = &models.Quality{
			Brightness: float32Value(detail.Quality.Brightness),
			Sharpness:  float32Value(detail.Quality.Sharpness),
		}
	}

	details := &models.FaceDetails{}
	if detail.AgeRange != nil && detail.AgeRange.Low != nil && detail.AgeRange.High != nil {
		details.AgeRange = &models.AgeRange{
			Low:  int(*detail.AgeRange.Low),
			High: int(*detail.AgeRange.High),
		}
	}
	if detail.Gender != nil {
		confidence, err := requireFloat32(path+".gender.confidence", detail.Gender.Confidence)
		if err != nil {
			return nil, err
		}
		details.Gender = &models.Gender{
			Value:      string(detail.Gender.Value),
			Confidence: confidence,
		}
	}
	for i, emotion := range detail.Emotions {
		confidence, err := requireFloat32(fmt.Sprintf("%s.emotions[%d].confidence", path, i), emotion.Confidence)
		if err != nil {
			return nil, err
		}
		details.Emotions = append(details.Emotions, models.Emotion{
			Type:       string(emotion.Type),
			Confidence: confidence,
		})
	}
	if detail.Smile != nil {
		details.Smile = normalizeAttribute(detail.Smile.Value, detail.Smile.Confidence)
	}
	if detail.Eyeglasses != nil {
		details.Eyeglasses = normalizeAttribute(detail.Eyeglasses.Value, detail.Eyeglasses.Confidence)
	}
	if detail.Sunglasses != nil {
		details.Sunglasses = normalizeAttribute(detail.Sunglasses.Value, detail.Sunglasses.Confidence)
	}
	if detail.Beard != nil {
		details.Beard = normalizeAttribute(detail.Beard.Value, detail.Beard.Confidence)
	}
	if detail.Mustache != nil {
		details.Mustache = normalizeAttribute(detail.Mustache.Value, detail.Mustache.Confidence)
	}
	if detail.EyesOpen != nil {
		details.EyesOpen = normalizeAttribute(detail.EyesOpen.Value, detail.EyesOpen.Confidence)
	}
	if detail.MouthOpen != nil {
		details.MouthOpen = normalizeAttribute(detail.MouthOpen.Value, detail.MouthOpen.Confidence)
	}
	face.Details = details
	return face, nil
}

func normalizeComparedFace(path string, compared types.ComparedFace) (*models.Face, error) {
	box, err := normalizeBoundingBox(path+".boundingBox", compared.BoundingBox)
	if err != nil {
		return nil, err
	}
	confidence, err := requireFloat32(path+".confidence", compared.Confidence)
	if err != nil {
		return nil, err
	}
	face := &models.Face{
		BoundingBox: *box,
		Confidence:  confidence,
		Landmarks:   normalizeLandmarks(compared.Landmarks),
	}
	if compared.Pose != nil {
		face.Pose = &models.Pose{
			Roll:  float32Value(compared.Pose.Roll),
			Yaw:   float32Value(compared.Pose.Yaw),
			Pitch: float32Value(compared.Pose.Pitch),
		}
	}
	if compared.Quality != nil {
		face.Quality = &models.Quality{
			Brightness: float32Value(compared.Quality.Brightness),
			Sharpness:  float32Value(compared.Quality.Sharpness),
		}
	}
	return face, nil
}

func normalizeBoundingBox(path string, box *types.BoundingBox) (*models.BoundingBox, error) {
	if box == nil {
		return nil, apperrors.NewNormalizationError("missing bounding box", path, nil)
	}
	left, err := requireFloat32(path+".left", box.Left)
	if err != nil {
		return nil, err
	}
	top, err := requireFloat32(path+".top", box.Top)
	if err != nil {
		return nil, err
	}
	width, err := requireFloat32(path+".width", box.Width)
	if err != nil {
		return nil, err
	}
	height, err := requireFloat32(path+".height", box.Height)
	if err != nil {
		return nil, err
	}
	return &models.BoundingBox{Left: left, Top: top, Width: width, Height: height}, nil
}

func normalizeLandmarks(landmarks []types.Landmark) []models.Landmark {
	if len(landmarks) == 0 {
		return nil
	}
	out := make([]models.Landmark, 0, len(landmarks))
	for _, landmark := range landmarks {
		out = append(out, models.Landmark{
			Type: string(landmark.Type),
			X:    float32Value(landmark.X),
			Y:    float32Value(landmark.Y),
		})
	}
	return out
}

func normalizeAttribute(value bool, confidence *float32) *models.Attribute {
	return &models.Attribute{Value: value, Confidence: float32Value(confidence)}
}

func requireFloat32(path string, value *float32) (float64, error) {
	if value == nil {
		return 0, apperrors.NewNormalizationError("missing required numeric field", path, nil)
	}
	return float64(*value), nil
}

func float32Value(value *float32) float64 {
	if value == nil {
		return 0
	}
	return float64(*value)
}
