package selfhosted

// Wire types for the self-hosted inference API. The service reports
// scores and similarities on a [0,1] scale and boxes as fractional
// x/y/width/height; normalization rescales and renames per field.
// Numeric fields are pointers so a missing field is detectable instead
// of silently defaulting.

type analyzeRequest struct {
	Image string `json:"image"`
}

type analyzeResponse struct {
	Faces []wireFace `json:"faces"`
}

type compareRequest struct {
	SourceImage string  `json:"source_image"`
	TargetImage string  `json:"target_image"`
	Threshold   float64 `json:"threshold"`
}

type compareResponse struct {
	Similarity     *float64        `json:"similarity"`
	Matches        []wireFaceMatch `json:"matches"`
	UnmatchedFaces []wireFace      `json:"unmatched_faces"`
	SourceFace     *wireFace       `json:"source_face"`
}

type findSimilarRequest struct {
	SourceImage  string   `json:"source_image"`
	TargetImages []string `json:"target_images"`
}

type findSimilarResponse struct {
	Matches []wireSimilarity `json:"matches"`
}

type wireSimilarity struct {
	Index      *int      `json:"index"`
	Similarity *float64  `json:"similarity"`
	Face       *wireFace `json:"face"`
}

type wireFaceMatch struct {
	Similarity *float64  `json:"similarity"`
	Face       *wireFace `json:"face"`
}

type wireFace struct {
	Bbox      *wireBbox      `json:"bbox"`
	Score     *float64       `json:"score"`
	Landmarks []wireLandmark `json:"landmarks"`
	Pose      *wirePose      `json:"pose"`
	Quality   *wireQuality   `json:"quality"`
	Age       *wireAge       `json:"age"`
	Gender    *wireGender    `json:"gender"`
	Emotions  []wireEmotion  `json:"emotions"`
	Attrs     *wireAttrs     `json:"attributes"`
}

type wireBbox struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

type wireLandmark struct {
	Type string   `json:"type"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
}

type wirePose struct {
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

type wireQuality struct {
	Brightness float64 `json:"brightness"`
	Sharpness  float64 `json:"sharpness"`
}

type wireAge struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

type wireGender struct {
	Value string   `json:"value"`
	Score *float64 `json:"score"`
}

type wireEmotion struct {
	Type  string   `json:"type"`
	Score *float64 `json:"score"`
}

type wireAttrs struct {
	Smile      *wireAttr `json:"smile"`
	Eyeglasses *wireAttr `json:"eyeglasses"`
	Sunglasses *wireAttr `json:"sunglasses"`
	Beard      *wireAttr `json:"beard"`
	Mustache   *wireAttr `json:"mustache"`
	EyesOpen   *wireAttr `json:"eyes_open"`
	MouthOpen  *wireAttr `json:"mouth_open"`
}

type wireAttr struct {
	Value bool     `json:"value"`
	Score *float64 `json:"score"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
