package dto

type IndexDocumentRequest struct {
	Collection string                 `json:"collection" validate:"required,oneof=patients notes devices guidelines literature"`
	Text       string                 `json:"text" validate:"required"`
	Metadata   map[string]interface{} `json:"metadata"`
}

type IndexDocumentResponse struct {
	Id         string `json:"id"`
	Collection string `json:"collection"`
}

type DeleteDocumentResponse struct {
	Id         string `json:"id"`
	Collection string `json:"collection"`
}

// IndexDocumentMessage is the payload published on the index topic.
type IndexDocumentMessage struct {
	Id         string                 `json:"id"`
	Collection string                 `json:"collection"`
	Text       string                 `json:"text"`
	Metadata   map[string]interface{} `json:"metadata"`
}
