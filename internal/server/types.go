package server

// CallRequest is the body accepted by POST /tools/call.
type CallRequest struct {
	Name string         `json:"name"`
	Args map[string]any `json:"arguments"`
}
