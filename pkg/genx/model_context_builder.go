package genx

import "iter"

var _ ModelContext = (*modelContext)(nil)

// ModelContextBuilder accumulates the messages of a request. Consecutive
// messages from the same producer are merged into one.
type ModelContextBuilder struct {
	Messages []*Message
}

func (mcb *ModelContextBuilder) Build() ModelContext {
	return &modelContext{messages: mcb.Messages}
}

func (mcb *ModelContextBuilder) AddMessage(msg *Message) {
	if n := len(mcb.Messages); n > 0 {
		last := mcb.Messages[n-1]
		if last.Role == msg.Role && last.Name == msg.Name {
			last.Contents = append(last.Contents, msg.Contents...)
			return
		}
	}
	mcb.Messages = append(mcb.Messages, msg)
}

func (mcb *ModelContextBuilder) UserText(name, text string) {
	mcb.AddMessage(&Message{Role: RoleUser, Name: name, Contents: Contents{Text(text)}})
}

type modelContext struct {
	messages []*Message
}

func (mc *modelContext) Messages() iter.Seq[*Message] {
	return func(yield func(*Message) bool) {
		for _, m := range mc.messages {
			if !yield(m) {
				return
			}
		}
	}
}
