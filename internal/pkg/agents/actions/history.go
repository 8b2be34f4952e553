package actions

import (
	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

func lastWhere(msgs []schema.Message, match func(schema.Message) bool) (schema.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if match(msgs[i]) {
			return msgs[i], true
		}
	}
	return schema.Message{}, false
}

func lastMessage(mem Memory) (schema.Message, bool) {
	msgs := mem.All()
	if len(msgs) == 0 {
		return schema.Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// latestDocument returns the newest message of kind from any sender.
func latestDocument(mem Memory, role string, kind schema.ActionKind) (string, error) {
	msg, ok := lastWhere(mem.All(), func(m schema.Message) bool { return m.CauseBy == kind })
	if !ok {
		return "", schema.MissingHistory(role, kind)
	}
	return msg.Content, nil
}

func chatRole(msg schema.Message) string {
	if msg.Role == schema.RoleUser {
		return providers.ChatRoleUser
	}
	return providers.ChatRoleAssistant
}

// dialogue converts the kickoff request and the Communicate exchange into a
// chat history. dropEnd leaves the end markers out.
func dialogue(msgs []schema.Message, dropEnd bool) []providers.ChatMessage {
	var out []providers.ChatMessage
	for _, m := range msgs {
		switch m.CauseBy {
		case schema.KindExternal:
			out = append(out, providers.ChatMessage{Role: providers.ChatRoleUser, Content: m.Content})
		case KindCommunicate:
			if dropEnd && m.IsEnd() {
				continue
			}
			out = append(out, providers.ChatMessage{Role: chatRole(m), Content: m.Content})
		}
	}
	return out
}

// thread collects a two-party exchange: messages of theirs sent by peer
// become user turns, messages of mine sent by me become assistant turns.
// When peer is set, my messages must also be addressed to peer.
func thread(msgs []schema.Message, self, peer string, theirs, mine schema.ActionKind) []providers.ChatMessage {
	var out []providers.ChatMessage
	for _, m := range msgs {
		switch {
		case m.CauseBy == theirs && m.SentFrom == peer:
			out = append(out, providers.ChatMessage{Role: providers.ChatRoleUser, Content: m.Content})
		case m.CauseBy == mine && m.SentFrom == self && (peer == "" || m.IsAddressedTo(peer)):
			out = append(out, providers.ChatMessage{Role: providers.ChatRoleAssistant, Content: m.Content})
		}
	}
	return out
}
