package models

// ProviderID identifies one of the two face-analysis backends.
type ProviderID string

const (
	// ProviderRekognition is the metered AWS Rekognition backend
	ProviderRekognition ProviderID = "rekognition"
	// ProviderSelfHosted is the self-hosted inference backend
	ProviderSelfHosted ProviderID = "selfhosted"
)

// Operation names one of the engine's billable operations.
type Operation string

const (
	OperationDetectFaces      Operation = "detectFaces"
	OperationCompareFaces     Operation = "compareFaces"
	OperationFindSimilarFaces Operation = "findSimilarFaces"
)

// Operations lists every billable operation in a stable order.
var Operations = []Operation{
	OperationDetectFaces,
	OperationCompareFaces,
	OperationFindSimilarFaces,
}

// BoundingBox locates a face as fractions of the image dimensions.
// All fields are in [0,1]; Left+Width and Top+Height stay <= 1 up to
// adapter rounding.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Landmark is a named facial point in fractional image coordinates.
type Landmark struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Pose describes face orientation in degrees, each in [-180,180].
type Pose struct {
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Quality holds image quality scores, each in [0,100].
type Quality struct {
	Brightness float64 `json:"brightness"`
	Sharpness  float64 `json:"sharpness"`
}

// Face is a single detected face. Confidence is always a 0-100
// percentage regardless of the provider's native scale.
type Face struct {
	BoundingBox BoundingBox  `json:"boundingBox"`
	Confidence  float64      `json:"confidence"`
	Landmarks   []Landmark   `json:"landmarks,omitempty"`
	Pose        *Pose        `json:"pose,omitempty"`
	Quality     *Quality     `json:"quality,omitempty"`
	Details     *FaceDetails `json:"details,omitempty"`
}

// AgeRange is the estimated age interval for a face.
type AgeRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Gender is a gender prediction with its confidence.
type Gender struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Emotion is a single emotion prediction with its confidence.
type Emotion struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Attribute is a boolean facial attribute with its confidence.
type Attribute struct {
	Value      bool    `json:"value"`
	Confidence float64 `json:"confidence"`
}

// FaceDetails carries the extended per-face attributes. Every
// confidence is normalized to 0-100.
type FaceDetails struct {
	AgeRange   *AgeRange  `json:"ageRange,omitempty"`
	Gender     *Gender    `json:"gender,omitempty"`
	Emotions   []Emotion  `json:"emotions,omitempty"`
	Smile      *Attribute `json:"smile,omitempty"`
	Eyeglasses *Attribute `json:"eyeglasses,omitempty"`
	Sunglasses *Attribute `json:"sunglasses,omitempty"`
	Beard      *Attribute `json:"beard,omitempty"`
	Mustache   *Attribute `json:"mustache,omitempty"`
	EyesOpen   *Attribute `json:"eyesOpen,omitempty"`
	MouthOpen  *Attribute `json:"mouthOpen,omitempty"`
}

// FaceMatch pairs a matched face with its similarity to the source
// face, as a 0-100 percentage.
type FaceMatch struct {
	Similarity float64 `json:"similarity"`
	Face       Face    `json:"face"`
}

// FaceComparisonResult is the canonical outcome of a two-image face
// comparison. FaceMatches is ordered descending by similarity.
type FaceComparisonResult struct {
	Similarity      float64     `json:"similarity"`
	FaceMatches     []FaceMatch `json:"faceMatches"`
	SourceImageFace *Face       `json:"sourceImageFace,omitempty"`
	UnmatchedFaces  []Face      `json:"unmatchedFaces"`
}

// SimilarityResult scores one candidate image against the source.
// ImageIndex is the zero-based index into the candidate list.
type SimilarityResult struct {
	ImageIndex  int          `json:"imageIndex"`
	Similarity  float64      `json:"similarity"`
	FaceDetails *FaceDetails `json:"faceDetails,omitempty"`
}

// BestMatch identifies the highest-similarity candidate.
type BestMatch struct {
	ImageIndex int     `json:"imageIndex"`
	Similarity float64 `json:"similarity"`
}

// FindSimilarResponse is the canonical outcome of a find-similar
// request. Matches is sorted descending by similarity with ties broken
// by ascending original candidate index; BestMatch mirrors the first
// element and is absent when Matches is empty.
type FindSimilarResponse struct {
	Matches   []SimilarityResult `json:"matches"`
	BestMatch *BestMatch         `json:"bestMatch,omitempty"`
}
