package selfhosted

import (
	"fmt"

	apperrors "github.com/captain-yun7/facefalcon-sub001/internal/errors"
	"github.com/captain-yun7/facefalcon-sub001/internal/provider"
	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// The self-hosted service scores on [0,1]; every score is multiplied
// by 100 independently, field by field, never assuming a whole
// response shares one scale. Box x/y map to canonical left/top.

func normalizeAnalyze(resp *analyzeResponse) ([]models.Face, error) {
	faces := make([]models.Face, 0, len(resp.Faces))
	for i, wire := range resp.Faces {
		face, err := normalizeFace(fmt.Sprintf("faces[%d]", i), &wire)
		if err != nil {
			return nil, err
		}
		faces = append(faces, *face)
	}
	return faces, nil
}

func normalizeCompare(resp *compareResponse) (*models.FaceComparisonResult, error) {
	result := &models.FaceComparisonResult{
		FaceMatches:    make([]models.FaceMatch, 0, len(resp.Matches)),
		UnmatchedFaces: make([]models.Face, 0, len(resp.UnmatchedFaces)),
	}

	// Absent top-level similarity with no matches is a valid "no
	// faces" outcome, not schema drift
	if resp.Similarity != nil {
		result.Similarity = *resp.Similarity * 100
	} else if len(resp.Matches) > 0 {
		return nil, apperrors.NewNormalizationError("missing required numeric field", "similarity", nil)
	}

	for i, match := range resp.Matches {
		path := fmt.Sprintf("matches[%d]", i)
		similarity, err := requireUnitScore(path+".similarity", match.Similarity)
		if err != nil {
			return nil, err
		}
		if match.Face == nil {
			return nil, apperrors.NewNormalizationError("missing face", path+".face", nil)
		}
		face, err := normalizeFace(path+".face", match.Face)
		if err != nil {
			return nil, err
		}
		result.FaceMatches = append(result.FaceMatches, models.FaceMatch{
			Similarity: similarity,
			Face:       *face,
		})
	}
	provider.SortFaceMatches(result.FaceMatches)

	for i, wire := range resp.UnmatchedFaces {
		face, err := normalizeFace(fmt.Sprintf("unmatched_faces[%d]", i), &wire)
		if err != nil {
			return nil, err
		}
		result.UnmatchedFaces = append(result.UnmatchedFaces, *face)
	}

	if resp.SourceFace != nil {
		face, err := normalizeFace("source_face", resp.SourceFace)
		if err != nil {
			return nil, err
		}
		result.SourceImageFace = face
	}
	return result, nil
}

func normalizeFindSimilar(resp *findSimilarResponse, candidates int) (*models.FindSimilarResponse, error) {
	matches := make([]models.SimilarityResult, 0, len(resp.Matches))
	for i, wire := range resp.Matches {
		path := fmt.Sprintf("matches[%d]", i)
		if wire.Index == nil {
			return nil, apperrors.NewNormalizationError("missing required numeric field", path+".index", nil)
		}
		if *wire.Index < 0 || *wire.Index >= candidates {
			return nil, apperrors.NewNormalizationError(
				fmt.Sprintf("candidate index %d out of range [0,%d)", *wire.Index, candidates), path+".index", nil)
		}
		similarity, err := requireUnitScore(path+".similarity", wire.Similarity)
		if err != nil {
			return nil, err
		}
		result := models.SimilarityResult{
			ImageIndex: *wire.Index,
			Similarity: similarity,
		}
		if wire.Face != nil {
			face, err := normalizeFace(path+".face", wire.Face)
			if err != nil {
				return nil, err
			}
			result.FaceDetails = face.Details
		}
		matches = append(matches, result)
	}
	return provider.BuildFindSimilarResponse(matches), nil
}

func normalizeFace(path string, wire *wireFace) (*models.Face, error) {
	box, err := normalizeBbox(path+".bbox", wire.Bbox)
	if err != nil {
		return nil, err
	}
	confidence, err := requireUnitScore(path+".score", wire.Score)
	if err != nil {
		return nil, err
	}

	face := &models.Face{
		BoundingBox: *box,
		Confidence:  confidence,
	}
	for i, landmark := range wire.Landmarks {
		lpath := fmt.Sprintf("%s.landmarks[%d]", path, i)
		if landmark.X == nil || landmark.Y == nil {
			return nil, apperrors.NewNormalizationError("missing required numeric field", lpath, nil)
		}
		face.Landmarks = append(face.Landmarks, models.Landmark{
			Type: landmark.Type,
			X:    *landmark.X,
			Y:    *landmark.Y,
		})
	}
	if wire.Pose != nil {
		face.Pose = &models.Pose{Roll: wire.Pose.Roll, Yaw: wire.Pose.Yaw, Pitch: wire.Pose.Pitch}
	}
	if wire.Quality != nil {
		// Quality is reported on [0,1] like every other score
		face.Quality = &models.Quality{
			Brightness: wire.Quality.Brightness * 100,
			Sharpness:  wire.Quality.Sharpness * 100,
		}
	}

	details, err := normalizeDetails(path, wire)
	if err != nil {
		return nil, err
	}
	face.Details = details
	return face, nil
}

func normalizeDetails(path string, wire *wireFace) (*models.FaceDetails, error) {
	details := &models.FaceDetails{}
	if wire.Age != nil {
		details.AgeRange = &models.AgeRange{Low: wire.Age.Low, High: wire.Age.High}
	}
	if wire.Gender != nil {
		score, err := requireUnitScore(path+".gender.score", wire.Gender.Score)
		if err != nil {
			return nil, err
		}
		details.Gender = &models.Gender{Value: wire.Gender.Value, Confidence: score}
	}
	for i, emotion := range wire.Emotions {
		score, err := requireUnitScore(fmt.Sprintf("%s.emotions[%d].score", path, i), emotion.Score)
		if err != nil {
			return nil, err
		}
		details.Emotions = append(details.Emotions, models.Emotion{Type: emotion.Type, Confidence: score})
	}
	if wire.Attrs != nil {
		attrs := []struct {
			name string
			wire *wireAttr
			dst  **models.Attribute
		}{
			{"smile", wire.Attrs.Smile, &details.Smile},
			{"eyeglasses", wire.Attrs.Eyeglasses, &details.Eyeglasses},
			{"sunglasses", wire.Attrs.Sunglasses, &details.Sunglasses},
			{"beard", wire.Attrs.Beard, &details.Beard},
			{"mustache", wire.Attrs.Mustache, &details.Mustache},
			{"eyes_open", wire.Attrs.EyesOpen, &details.EyesOpen},
			{"mouth_open", wire.Attrs.MouthOpen, &details.MouthOpen},
		}
		for _, attr := range attrs {
			if attr.wire == nil {
				continue
			}
			score, err := requireUnitScore(fmt.Sprintf("%s.attributes.%s.score", path, attr.name), attr.wire.Score)
			if err != nil {
				return nil, err
			}
			*attr.dst = &models.Attribute{Value: attr.wire.Value, Confidence: score}
		}
	}
	return details, nil
}

func normalizeBbox(path string, bbox *wireBbox) (*models.BoundingBox, error) {
	if bbox == nil {
		return nil, apperrors.NewNormalizationError("missing bounding box", path, nil)
	}
	for name, value := range map[string]*float64{
		"x": bbox.X, "y": bbox.Y, "width": bbox.Width, "height": bbox.Height,
	} {
		if value == nil {
			return nil, apperrors.NewNormalizationError("missing required numeric field", path+"."+name, nil)
		}
	}
	return &models.BoundingBox{
		Left:   *bbox.X,
		Top:    *bbox.Y,
		Width:  *bbox.Width,
		Height: *bbox.Height,
	}, nil
}

// requireUnitScore converts a [0,1] score to a 0-100 percentage,
// failing on absence rather than defaulting.
func requireUnitScore(path string, value *float64) (float64, error) {
	if value == nil {
		return 0, apperrors.NewNormalizationError("missing required numeric field", path, nil)
	}
	return *value * 100, nil
}
