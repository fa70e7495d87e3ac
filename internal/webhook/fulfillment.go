// Package webhook implements the fulfillment webhook the sample agent calls
// from its page entry fulfillment.
package webhook

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cxkit/pkg/logging"
)

// Tags understood by the handler.
const (
	TagSetSessionParam = "set_session_param"
)

// SessionParamReply is the text returned after setting a session parameter.
const SessionParamReply = "Session parameter set"

// Request is the subset of the Dialogflow CX WebhookRequest the handler
// reads.
type Request struct {
	Text            string          `json:"text"`
	FulfillmentInfo FulfillmentInfo `json:"fulfillmentInfo"`
	IntentInfo      *IntentInfo     `json:"intentInfo,omitempty"`
}

type FulfillmentInfo struct {
	Tag string `json:"tag"`
}

type IntentInfo struct {
	DisplayName string                    `json:"displayName,omitempty"`
	Parameters  map[string]ParameterValue `json:"parameters,omitempty"`
}

type ParameterValue struct {
	OriginalValue string `json:"originalValue,omitempty"`
	ResolvedValue any    `json:"resolvedValue,omitempty"`
}

// Response is the WebhookResponse shape returned to Dialogflow.
type Response struct {
	FulfillmentResponse FulfillmentResponse `json:"fulfillment_response"`
	SessionInfo         *SessionInfo        `json:"session_info,omitempty"`
}

type FulfillmentResponse struct {
	Messages []Message `json:"messages"`
}

type Message struct {
	Text Text `json:"text"`
}

type Text struct {
	Text []string `json:"text"`
}

type SessionInfo struct {
	Parameters map[string]any `json:"parameters"`
}

// NewRequest builds the request body Dialogflow would send for text and tag.
func NewRequest(tag, text string) Request {
	return Request{Text: text, FulfillmentInfo: FulfillmentInfo{Tag: tag}}
}

// Reply is the text the default fulfillment answers with.
func Reply(text, tag string) string {
	return fmt.Sprintf("Webhook received: %s (Tag: %s)", text, tag)
}

// TextResponse wraps a single text message in a Response.
func TextResponse(text string) Response {
	return Response{
		FulfillmentResponse: FulfillmentResponse{
			Messages: []Message{{Text: Text{Text: []string{text}}}},
		},
	}
}

// ExtractText returns the first text of the first message, or "" if there
// is none.
func ExtractText(resp Response) string {
	msgs := resp.FulfillmentResponse.Messages
	if len(msgs) == 0 || len(msgs[0].Text.Text) == 0 {
		return ""
	}
	return msgs[0].Text.Text[0]
}

// Fulfill computes the response for req.
func Fulfill(req Request) Response {
	if req.FulfillmentInfo.Tag == TagSetSessionParam {
		return setSessionParam(req)
	}
	return TextResponse(Reply(req.Text, req.FulfillmentInfo.Tag))
}

// ExpectedReply runs Fulfill for tag and text and returns the reply text.
// Test cases use it so expectations stay in step with the handler.
func ExpectedReply(tag, text string) string {
	return ExtractText(Fulfill(NewRequest(tag, text)))
}

// setSessionParam stores the intent's "val" parameter in the session under
// the name carried by its "key" parameter.
func setSessionParam(req Request) Response {
	resp := TextResponse(SessionParamReply)
	if req.IntentInfo == nil {
		return resp
	}
	key, ok := req.IntentInfo.Parameters["key"]
	if !ok {
		return resp
	}
	name := fmt.Sprint(key.ResolvedValue)
	if key.ResolvedValue == nil {
		name = key.OriginalValue
	}
	val := req.IntentInfo.Parameters["val"]
	value := val.ResolvedValue
	if value == nil {
		value = val.OriginalValue
	}
	resp.SessionInfo = &SessionInfo{Parameters: map[string]any{name: value}}
	return resp
}

// Handler serves the fulfillment webhook over HTTP.
type Handler struct {
	// Observe, when set, is called once per request with the tag and the
	// response status code.
	Observe func(tag string, status int)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Warn("Webhook", "Rejected malformed request: %v", err)
		h.observe("", http.StatusBadRequest)
		http.Error(w, "invalid webhook request", http.StatusBadRequest)
		return
	}

	resp := Fulfill(req)
	logging.Debug("Webhook", "Tag %q text %q -> %q", req.FulfillmentInfo.Tag, req.Text, ExtractText(resp))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("Webhook", err, "Failed to write response")
	}
	h.observe(req.FulfillmentInfo.Tag, http.StatusOK)
}

func (h *Handler) observe(tag string, status int) {
	if h.Observe != nil {
		h.Observe(tag, status)
	}
}
