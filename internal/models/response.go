package models

// APIStatus defines the status values used in API responses.
type APIStatus string

const (
	// APIStatusOK indicates a successful operation.
	APIStatusOK APIStatus = "ok"
	// APIStatusSent indicates a reply was dispatched for the inbound message.
	APIStatusSent APIStatus = "sent"
	// APIStatusIgnored indicates the inbound message was a no-op.
	APIStatusIgnored APIStatus = "ignored"
	// APIStatusError indicates a failed operation.
	APIStatusError APIStatus = "error"
)

// APIResponse is the uniform JSON envelope returned by every endpoint.
type APIResponse struct {
	Status  string `json:"status,omitempty"`  // status of the API response
	Message string `json:"message,omitempty"` // optional human-readable detail
	Error   string `json:"error,omitempty"`   // error description for failures
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{
		response: APIResponse{},
	}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithError sets the error field of the API response.
func (b *APIResponseBuilder) WithError(message string) *APIResponseBuilder {
	b.response.Error = message
	return b
}

// Build returns the constructed APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Success creates a successful API response with the given status.
func Success(status APIStatus) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(status).
		Build()
}

// SuccessWithMessage creates a successful API response with a message.
func SuccessWithMessage(status APIStatus, message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(status).
		WithMessage(message).
		Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithError(message).
		Build()
}
