package types

const (
	FormFieldFile     = "file"
	FormFieldQuestion = "question"
)

// AskRequest is the non-file part of an ask form.
type AskRequest struct {
	Question string `form:"question" json:"question"`
}
