package models

// ExtractRequest is the JSON body of the extraction-only endpoint
type ExtractRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

// ParseOptions are the query options accepted by the parse endpoints
type ParseOptions struct {
	IncludeMarkdown bool `query:"include_markdown"`
}
