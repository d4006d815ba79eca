package provider

import (
	"sort"

	"github.com/captain-yun7/facefalcon-sub001/pkg/models"
)

// SortMatches orders find-similar results descending by similarity.
// Ties keep ascending original candidate index so the ordering is
// deterministic regardless of the order the backend returned them in.
func SortMatches(matches []models.SimilarityResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ImageIndex < matches[j].ImageIndex
	})
}

// SortFaceMatches orders comparison matches descending by similarity.
func SortFaceMatches(matches []models.FaceMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
}

// BuildFindSimilarResponse sorts the matches and derives BestMatch
// from the first element, absent when there are no matches.
func BuildFindSimilarResponse(matches []models.SimilarityResult) *models.FindSimilarResponse {
	SortMatches(matches)
	resp := &models.FindSimilarResponse{Matches: matches}
	if len(matches) > 0 {
		resp.BestMatch = &models.BestMatch{
			ImageIndex: matches[0].ImageIndex,
			Similarity: matches[0].Similarity,
		}
	}
	return resp
}
