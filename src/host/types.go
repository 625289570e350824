// Package host defines the types the embedding host and package
// interpreter exchange across the Interpret boundary (spec §3, §6):
// Client, Bot, Event, Context, Hold, MessageData, and the abstract Store
// interface a host implements for persistence.
package host

import "github.com/csml-sh/csml-engine/src/primitive"

// Client is the triple identifying a conversation endpoint (spec §3).
type Client struct {
	BotID     string
	ChannelID string
	UserID    string
}

// Flow is the bundle-level reference to a parsed flow; the AST itself
// lives in package ast/parser — Bot only needs source text plus name so
// ValidateBot/Interpret can parse (and re-parse after a hold-hash check)
// without the bundle type depending on package ast.
type Flow struct {
	Name   string
	Source string
}

// Bot is the bundle record from spec §3.
type Bot struct {
	ID               string
	Name             string
	Flows            []Flow
	DefaultFlow      string
	NativeComponents bool
	CustomComponents map[string]interface{} // raw JSON schema form; folded in at ValidateBot time
	Env              map[string]string
	Modules          []string // remote flow sources spliced in before parsing (spec §4.1)
}

// ApiInfo carries a bot's fn_endpoint and related call-out configuration.
type ApiInfo struct {
	FnEndpoint string
}

// Hold is the resume snapshot (spec §3).
type Hold struct {
	CommandIndex   int
	LoopIndexStack []int
	StepVars       map[string]*primitive.Literal
	StepName       string
	FlowName       string
	Hash           string // MD5 of the flow source at snapshot time
}

// Context is the per-conversation runtime state (spec §3).
type Context struct {
	Current  map[string]*primitive.Literal // persistent, survives across steps
	Metadata map[string]*primitive.Literal // read-only event metadata
	Flow     string
	Step     string
	Hold     *Hold
	ApiInfo  *ApiInfo
}

// Event is the inbound payload envelope (spec §3, §6).
type Event struct {
	RequestID   string
	Client      Client
	CallbackURL string
	ContentType string // "text" | "payload" | "flow_trigger" | ...
	Content     map[string]interface{}
	Metadata    map[string]interface{}
}

// Message is one outbound item of MessageData.
type Message struct {
	ContentType string
	Content     interface{} // JSON-shaped (primitive.Literal.ToMessageJSON())
}

// ExitCondition is MessageData's terminal reason (spec §3).
type ExitCondition int

const (
	ExitGoto ExitCondition = iota
	ExitEnd
	ExitError
	ExitBreak
	ExitHold
)

func (e ExitCondition) String() string {
	switch e {
	case ExitGoto:
		return "Goto"
	case ExitEnd:
		return "End"
	case ExitError:
		return "Error"
	case ExitBreak:
		return "Break"
	case ExitHold:
		return "Hold"
	default:
		return "Unknown"
	}
}

// MemoryWrite is one `remember`/`forget` side effect recorded for the
// host's append_messages/put_memory bookkeeping.
type MemoryWrite struct {
	Key    string
	Value  *primitive.Literal // nil for a forget
	Forget bool
}

// MessageData is interpret()'s return value (spec §3, §4.4).
type MessageData struct {
	Messages  []Message
	Memories  []MemoryWrite
	NextFlow  string
	NextStep  string
	Exit      ExitCondition
	HoldState *Hold // non-nil only when Exit == ExitHold
}
