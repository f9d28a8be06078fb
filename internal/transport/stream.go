package transport

import (
	"bufio"
	"encoding/json"
	"io"
	"sort"
	"strings"
)

// doneSentinel terminates an SSE chat-completion stream.
const doneSentinel = "[DONE]"

// streamChunk is one decoded SSE frame of a streamed chat completion.
type streamChunk struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int          `json:"index"`
		Delta        deltaMessage `json:"delta"`
		FinishReason string       `json:"finish_reason"`
	} `json:"choices"`
}

// deltaMessage is the incremental message payload inside a chunk.
type deltaMessage struct {
	Role      string          `json:"role,omitempty"`
	Content   string          `json:"content,omitempty"`
	ToolCalls []deltaToolCall `json:"tool_calls,omitempty"`
}

// deltaToolCall is a tool-call fragment. Index ties fragments of the same
// call together across chunks; Arguments arrive as string pieces that must be
// concatenated in order.
type deltaToolCall struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// collectStream drains an SSE body and reconstructs the assistant message so
// that streaming callers see the same response shape as the blocking path.
// Frames that fail to decode are skipped rather than failing the call; an
// empty stream yields a response with no choices and StreamChunks == 0.
func collectStream(body io.Reader) (*ChatResponse, error) {
	reader := bufio.NewReader(io.LimitReader(body, maxResponseBodySize))

	resp := &ChatResponse{}
	msg := ChatMessage{Role: "assistant"}
	calls := map[int]*ToolCall{}
	finish := ""

	for {
		line, readErr := reader.ReadString('\n')

		if data, ok := strings.CutPrefix(strings.TrimSpace(line), "data:"); ok {
			data = strings.TrimSpace(data)
			if data == doneSentinel {
				break
			}
			var chunk streamChunk
			if jerr := json.Unmarshal([]byte(data), &chunk); jerr == nil {
				applyChunk(resp, &msg, calls, &finish, chunk)
				resp.StreamChunks++
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, classifyTransportErr(readErr)
		}
	}

	if resp.StreamChunks == 0 {
		return resp, nil
	}

	idxs := make([]int, 0, len(calls))
	for i := range calls {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	for _, i := range idxs {
		msg.ToolCalls = append(msg.ToolCalls, *calls[i])
	}

	resp.Choices = []Choice{{Index: 0, Message: msg, FinishReason: finish}}
	return resp, nil
}

// applyChunk folds one frame into the accumulated response. Only the first
// choice is reconstructed; the harness never requests n > 1.
func applyChunk(resp *ChatResponse, msg *ChatMessage, calls map[int]*ToolCall, finish *string, chunk streamChunk) {
	if resp.ID == "" {
		resp.ID = chunk.ID
	}
	if resp.Model == "" {
		resp.Model = chunk.Model
	}
	if resp.Created == 0 {
		resp.Created = chunk.Created
	}

	for _, choice := range chunk.Choices {
		if choice.Index != 0 {
			continue
		}
		if choice.Delta.Role != "" {
			msg.Role = choice.Delta.Role
		}
		msg.Content += choice.Delta.Content

		for _, frag := range choice.Delta.ToolCalls {
			call, seen := calls[frag.Index]
			if !seen {
				call = &ToolCall{Type: "function"}
				calls[frag.Index] = call
			}
			if frag.ID != "" {
				call.ID = frag.ID
			}
			if frag.Type != "" {
				call.Type = frag.Type
			}
			if frag.Function.Name != "" {
				call.Function.Name = frag.Function.Name
			}
			call.Function.Arguments += frag.Function.Arguments
		}

		if choice.FinishReason != "" {
			*finish = choice.FinishReason
		}
	}
}
