package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// GazeResponse is the classification of one image
type GazeResponse struct {
	Direction string  `json:"direction" example:"right"`
	Command   string  `json:"command,omitempty" example:"yes"`
	Message   string  `json:"message" example:"Detected that you are looking RIGHT (command: YES)."`
	DX        float64 `json:"dx,omitempty" example:"7"`
	DY        float64 `json:"dy,omitempty" example:"-1"`
}

// ErrorResponse is a result with the "error" direction
type ErrorResponse struct {
	Direction string `json:"direction" example:"error"`
	Message   string `json:"message" example:"No face detected in the image"`
	Code      string `json:"code" example:"NO_FACE_DETECTED"`
}

// HealthResponse is returned by the liveness and readiness probes
type HealthResponse struct {
	Status  string            `json:"status" example:"ready"`
	Version string            `json:"version,omitempty" example:"0.3.0"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger(version string) *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Mirada Gaze API",
		Version:     version,
		Description: "Classifies gaze direction and eye state from a photo and maps it to a yes/no/help/center/thanks command",
		Host:        "localhost:5000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /process_image - classify one photo
		endpoint.New(
			endpoint.POST,
			"/process_image",
			endpoint.WithTags("Gaze"),
			endpoint.WithSummary("Classify gaze from an uploaded photo"),
			endpoint.WithDescription("Accepts a multipart upload in the \"file\" field. Eyes closed wins over any direction; otherwise the left iris offset from the eye centre decides right, left, up or center."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(GazeResponse{}, "200", "Classification result"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Direction: "error", Code: "BAD_REQUEST", Message: "Invalid request: no file field in request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Direction: "error", Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "400", "No face"),
				response.New(ErrorResponse{Direction: "error", Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Direction: "error", Code: "DETECTOR_UNAVAILABLE", Message: "Landmark detector unavailable"}, "503", "Service Unavailable"),
			}),
		),

		// GET /ws/gaze - stream of frames
		endpoint.New(
			endpoint.GET,
			"/ws/gaze",
			endpoint.WithTags("Gaze"),
			endpoint.WithSummary("Classify a stream of frames"),
			endpoint.WithDescription("Websocket endpoint. Every binary message is one encoded image and is answered with one JSON result; failures are answered with an error result and the stream stays open."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(GazeResponse{}, "101", "Switching protocols"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Direction: "error", Code: "HTTP_ERROR", Message: "Upgrade Required"}, "426", "Upgrade Required"),
			}),
		),

		// Health endpoints
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is alive"),
			}),
		),
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Pings the database and the landmark detector when they are configured."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthResponse{Status: "unavailable"}, "503", "A dependency is down"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)
	return sw
}
