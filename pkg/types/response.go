package types

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

// MessageBody is returned by mutations that have nothing else to report.
type MessageBody struct {
	Message string `json:"message"`
}
