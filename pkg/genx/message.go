package genx

import "slices"

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

var (
	_ Part = (*Blob)(nil)
	_ Part = (*Text)(nil)
)

type Role string

func (r Role) String() string {
	return string(r)
}

type MessageChunk struct {
	Role Role
	Name string
	Part Part
}

func (c *MessageChunk) Clone() *MessageChunk {
	chk := &MessageChunk{
		Role: c.Role,
		Name: c.Name,
	}
	if c.Part != nil {
		chk.Part = c.Part.clone()
	}
	return chk
}

type Message struct {
	Role     Role
	Name     string
	Contents Contents
}

type Contents []Part

type Part interface {
	isPart()
	clone() Part
}

type Blob struct {
	MIMEType string
	Data     []byte
}

func (b *Blob) clone() Part {
	return &Blob{
		MIMEType: b.MIMEType,
		Data:     slices.Clone(b.Data),
	}
}

func (*Blob) isPart() {}

type Text string

func (t Text) clone() Part {
	return t
}

func (Text) isPart() {}
