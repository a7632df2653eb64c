package dto

import "github.com/noah-isme/school-board-api/internal/models"

// CreatePostRequest is the payload for holidays and key information.
type CreatePostRequest struct {
	Text string `json:"text" validate:"present"`
}

// CreatePaymentDueRequest appends a payment due notice to a class.
type CreatePaymentDueRequest struct {
	ClassCode string `json:"classCode" validate:"present"`
	Text      string `json:"text" validate:"present"`
}

// CreateFacultyPostRequest appends a homework, assignment or subject post to a class.
type CreateFacultyPostRequest struct {
	ClassCode   string `json:"classCode" validate:"present"`
	Type        string `json:"type" validate:"present"`
	Text        string `json:"text" validate:"present"`
	FacultyCode string `json:"facultyCode" validate:"present"`
}

// PostResponse is returned after a post has been stored.
type PostResponse struct {
	Success bool        `json:"success"`
	Post    models.Post `json:"post"`
}

// DeleteResponse is returned by the delete endpoint.
type DeleteResponse struct {
	Success bool `json:"success"`
}
