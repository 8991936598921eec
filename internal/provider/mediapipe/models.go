package mediapipe

// FaceMeshRequest for POST /face_mesh
type FaceMeshRequest struct {
	Img                    string  `json:"img"` // base64 encoded image
	MaxNumFaces            int     `json:"max_num_faces"`
	RefineLandmarks        bool    `json:"refine_landmarks"` // adds iris points 468-477
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
}

// FaceMeshResponse from POST /face_mesh
type FaceMeshResponse struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Faces  []FaceMeshFace `json:"faces"`
}

// FaceMeshFace lists landmarks in model order; the slice position is the
// landmark index.
type FaceMeshFace struct {
	Landmarks []Landmark `json:"landmarks"`
	Score     float64    `json:"score"`
}

type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
