package dto

import "github.com/noah-isme/gema-grader/internal/grading"

// GradeRequest is one question/answer triple submitted for grading.
type GradeRequest struct {
	Modality            string   `json:"modality" validate:"required,max=32"`
	Question            string   `json:"question" validate:"max=10000"`
	TeacherAnswer       string   `json:"teacher_answer" validate:"max=10000"`
	StudentAnswer       string   `json:"student_answer" validate:"max=10000"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// GradeBatchRequest grades several triples in one call.
type GradeBatchRequest struct {
	Items []GradeRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// GradeResponse is the verdict returned to API consumers.
type GradeResponse struct {
	Correct    bool     `json:"correct"`
	Modality   string   `json:"modality"`
	Stage      string   `json:"stage"`
	Label      string   `json:"label,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// GradeBatchResponse lists verdicts in request order.
type GradeBatchResponse struct {
	Items []GradeResponse `json:"items"`
}

// NewGradeResponse builds a response DTO from a grading verdict.
func NewGradeResponse(verdict grading.Verdict) GradeResponse {
	response := GradeResponse{
		Correct:    verdict.Correct,
		Modality:   string(verdict.Modality),
		Stage:      string(verdict.Stage),
		Label:      string(verdict.Label),
		Similarity: verdict.Similarity,
	}

	if verdict.Label != "" {
		confidence := verdict.Confidence
		response.Confidence = &confidence
	}

	return response
}
