package interpreter

import (
	"encoding/json"
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/csml-sh/csml-engine/src/errs"
	"github.com/csml-sh/csml-engine/src/host"
	"github.com/csml-sh/csml-engine/src/primitive"
	"github.com/csml-sh/csml-engine/src/sink"
)

// tokenEncoder is lazily initialized on first use; a bot never pays the
// BPE-rank load cost unless it actually emits a Text/Question/Card message.
var tokenEncoder *tiktoken.Tiktoken

func tokenCount(s string) (int, bool) {
	if tokenEncoder == nil {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, false
		}
		tokenEncoder = enc
	}
	return len(tokenEncoder.Encode(s, nil, nil)), true
}

// annotatedContentTypes get a soft `additional_info.approx_tokens` cost
// signal alongside the hard 16,000-byte cap (spec §4.4.5).
var annotatedContentTypes = map[string]bool{
	"text": true, "question": true, "card": true,
}

// emitMessage implements spec §4.4.5: a Message is appended in program
// order and streamed via the sink; payloads over maxMessageBytes are
// dropped and replaced with an error Message (spec §7's PayloadTooLarge).
func (in *Interpreter) emitMessage(v *primitive.Literal) {
	if annotatedContentTypes[v.ContentType] {
		if n, ok := tokenCount(v.String()); ok {
			v = v.WithAdditionalInfo("approx_tokens", primitive.Int(int64(n)))
		}
	}

	payload := v.ToMessageJSON()
	raw, err := json.Marshal(payload)
	if err != nil {
		ee := errs.New(errs.KindPayloadTooLarge, fmt.Sprintf("message could not be serialized: %s", err), v.Interval, in.currentFlow, in.currentStep)
		in.emitErrorMessage(ee)
		return
	}
	if len(raw) > maxMessageBytes {
		ee := errs.New(errs.KindPayloadTooLarge, fmt.Sprintf("message payload of %d bytes exceeds the %d byte limit", len(raw), maxMessageBytes), v.Interval, in.currentFlow, in.currentStep)
		in.emitErrorMessage(ee)
		return
	}

	msg := host.Message{ContentType: v.ContentType, Content: payload}
	in.messages = append(in.messages, msg)
	in.sink.Emit(sink.Event{Kind: sink.EventMessage, Message: v, Flow: in.currentFlow, Step: in.currentStep})
}

// emitErrorMessage appends the "error"-typed Message spec §4.4.6/§7
// prescribes for every recovered runtime fault, without going through the
// byte-cap check (an error string is never large enough to matter, and a
// dropped error message would hide the very fault it reports).
func (in *Interpreter) emitErrorMessage(ee *errs.EngineError) {
	content := map[string]interface{}{"error": ee.UserVisibleMessage()}
	in.messages = append(in.messages, host.Message{ContentType: "error", Content: content})
	errLit := primitive.Str(ee.UserVisibleMessage()).WithContentType("error")
	in.sink.Emit(sink.Event{Kind: sink.EventMessage, Message: errLit, Flow: in.currentFlow, Step: in.currentStep})
}

func sinkLogEvent(text, flow, step string) sink.Event {
	return sink.Event{Kind: sink.EventLog, Text: text, Flow: flow, Step: step}
}

func hostMemoryWrite(key string, value *primitive.Literal, forget bool) host.MemoryWrite {
	return host.MemoryWrite{Key: key, Value: value, Forget: forget}
}
