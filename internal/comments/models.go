package comments

// AddCommentRequest is the body of a comment submission; the phone number comes from the path
type AddCommentRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10,max=15,phonekey"`
	Text        string `json:"text" validate:"required,min=10,max=500"`
}
