package records

import (
	"bytes"
	"encoding/json"

	"github.com/odyssey-erp/cadastro/internal/apiclient"
)

// ServerErrorMessage replaces any backend 500 response.
const ServerErrorMessage = "Erro no sistema, entre em contato com o suporte."

// failureMessages turns a submit failure into the messages of the error
// dialog. ok is false when the failure carries no message the user can act
// on, e.g. a transport error.
func failureMessages(err error) (messages []string, ok bool) {
	respErr, isResp := apiclient.AsResponseError(err)
	if !isResp {
		return nil, false
	}
	if respErr.IsServerError() {
		return []string{ServerErrorMessage}, true
	}
	messages, ok = payloadMessages(respErr.Body)
	return messages, ok && len(messages) > 0
}

// payloadMessages reads the values of a JSON object in document order.
func payloadMessages(body []byte) ([]string, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, isDelim := tok.(json.Delim); !isDelim || delim != '{' {
		return nil, false
	}
	var out []string
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false
		}
		out = append(out, valueText(raw)...)
	}
	return out, true
}

func valueText(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []string
		for _, item := range list {
			out = append(out, valueText(item)...)
		}
		return out
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return []string{string(raw)}
	}
	return []string{buf.String()}
}
